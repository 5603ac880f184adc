// Package errors defines the refusal taxonomy of the reservation engine.
// Every failed booking attempt maps to exactly one of these codes so the
// site can show a precise message instead of a generic error.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	apperrors "github.com/ye-spencer/ACMWebsitePort-sub000/pkg/errors"
)

const (
	CodeInvalidRange       = "INVALID_RANGE"
	CodeNotAMember         = "NOT_A_MEMBER"
	CodeAlreadyBookedToday = "ALREADY_BOOKED_TODAY"
	CodeDurationExceeded   = "DURATION_EXCEEDED"
	CodeSlotConflict       = "SLOT_CONFLICT"
	CodeNotOwner           = "NOT_OWNER"
	CodeStoreUnavailable   = "STORE_UNAVAILABLE"
)

// Repository sentinels, translated to AppErrors at the service layer.
var (
	ErrNotFound     = errors.New("reservation not found")
	ErrDuplicateKey = errors.New("duplicate key")
)

func InvalidRange(message string) *apperrors.AppError {
	return apperrors.New(CodeInvalidRange, message, http.StatusBadRequest)
}

func NotAMember() *apperrors.AppError {
	return apperrors.New(CodeNotAMember,
		"Room reservations are a member benefit. Become a member to book the room.",
		http.StatusForbidden)
}

func AlreadyBookedToday(day string) *apperrors.AppError {
	return apperrors.New(CodeAlreadyBookedToday,
		"You already have a reservation on this day. One reservation per member per day.",
		http.StatusConflict).WithDetails(map[string]any{"day": day})
}

func DurationExceeded(requested float64, maxHours float64) *apperrors.AppError {
	return apperrors.New(CodeDurationExceeded,
		fmt.Sprintf("Reservations are limited to %.1f hours, requested %.2f", maxHours, requested),
		http.StatusUnprocessableEntity)
}

func SlotConflict(start, end time.Time) *apperrors.AppError {
	return apperrors.New(CodeSlotConflict,
		fmt.Sprintf("The room is already reserved between %s and %s",
			start.Format(time.RFC3339), end.Format(time.RFC3339)),
		http.StatusConflict)
}

// SlotContention is the SLOT_CONFLICT refusal for lock contention. The
// competing attempt has not committed yet, so there is no interval to report.
func SlotContention() *apperrors.AppError {
	return apperrors.New(CodeSlotConflict,
		"The room is being booked by another request, please retry",
		http.StatusConflict)
}

func NotOwner() *apperrors.AppError {
	return apperrors.New(CodeNotOwner,
		"Only the member who made a reservation can cancel it",
		http.StatusForbidden)
}

func StoreUnavailable(err error) *apperrors.AppError {
	return apperrors.Wrap(err, CodeStoreUnavailable,
		"The reservation store is temporarily unavailable, please retry",
		http.StatusServiceUnavailable)
}
