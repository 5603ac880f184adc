package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/ye-spencer/ACMWebsitePort-sub000/internal/reservations/service"
	apperrors "github.com/ye-spencer/ACMWebsitePort-sub000/pkg/errors"
	httputil "github.com/ye-spencer/ACMWebsitePort-sub000/pkg/http"
	"github.com/ye-spencer/ACMWebsitePort-sub000/pkg/logger"
	"github.com/ye-spencer/ACMWebsitePort-sub000/pkg/middleware"
	"github.com/ye-spencer/ACMWebsitePort-sub000/pkg/model"
)

type ReservationHandler struct {
	service service.ReservationService
	log     *logger.Logger
}

func NewReservationHandler(service service.ReservationService, log *logger.Logger) *ReservationHandler {
	return &ReservationHandler{
		service: service,
		log:     log,
	}
}

// Create commits one booking attempt for the caller identified by the
// request headers. The owner id and membership flag come from the identity
// middleware, never from the body.
func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		if writeErr := httputil.WriteError(w, apperrors.Forbidden("Caller identity is missing")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	var req model.ReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}
	req.OwnerID = identity.OwnerID
	req.Member = identity.Member

	booking, err := h.service.AttemptBooking(r.Context(), &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

// ListWeek returns the bookings of the current rolling week.
func (h *ReservationHandler) ListWeek(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	bookings, window, err := h.service.ListWeek(r.Context())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListWeek", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if bookings == nil {
		bookings = []*model.Booking{}
	}
	if err := httputil.WriteSuccess(w, map[string]any{
		"window_start": window.Start,
		"window_end":   window.End,
		"reservations": bookings,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "ListWeek", "operation", "WriteSuccess", "error", err)
	}
}

// Availability returns the 7-day half-hour occupancy grid.
func (h *ReservationHandler) Availability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	week, err := h.service.WeekAvailability(r.Context())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Availability", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, week); err != nil {
		h.log.Error("failed to write success response", "handler", "Availability", "operation", "WriteSuccess", "error", err)
	}
}

// Delete cancels a reservation owned by the caller.
func (h *ReservationHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		if writeErr := httputil.WriteError(w, apperrors.Forbidden("Caller identity is missing")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Delete", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	id := ps.ByName("id")
	if err := h.service.Delete(r.Context(), identity.OwnerID, id); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Delete", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *ReservationHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/reservations", h.Create)
	router.GET("/api/v1/reservations", h.ListWeek)
	router.GET("/api/v1/reservations/availability", h.Availability)
	router.DELETE("/api/v1/reservations/id/:id", h.Delete)
}
