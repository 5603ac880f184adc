package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ye-spencer/ACMWebsitePort-sub000/internal/reservations/availability"
	reserrors "github.com/ye-spencer/ACMWebsitePort-sub000/internal/reservations/errors"
	"github.com/ye-spencer/ACMWebsitePort-sub000/internal/reservations/policy"
	"github.com/ye-spencer/ACMWebsitePort-sub000/internal/reservations/repository"
	"github.com/ye-spencer/ACMWebsitePort-sub000/internal/reservations/validator"
	"github.com/ye-spencer/ACMWebsitePort-sub000/pkg/config"
	apperrors "github.com/ye-spencer/ACMWebsitePort-sub000/pkg/errors"
	"github.com/ye-spencer/ACMWebsitePort-sub000/pkg/kafka"
	"github.com/ye-spencer/ACMWebsitePort-sub000/pkg/model"
	"github.com/ye-spencer/ACMWebsitePort-sub000/pkg/sanitizer"
)

const (
	EventReservationCreated = "reservation.created"
	EventReservationDeleted = "reservation.deleted"
)

// EventPublisher is the slice of the Kafka producer the service needs.
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// ReservationEvent is the payload published on reservation.created and
// reservation.deleted.
type ReservationEvent struct {
	BookingID string    `json:"booking_id"`
	OwnerID   string    `json:"owner_id"`
	Room      string    `json:"room"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type ReservationService interface {
	AttemptBooking(ctx context.Context, req *model.ReservationRequest) (*model.Booking, error)
	Delete(ctx context.Context, ownerID string, bookingID string) error
	ListWeek(ctx context.Context) ([]*model.Booking, model.WeekWindow, error)
	WeekAvailability(ctx context.Context) (*availability.Week, error)
}

type reservationService struct {
	repo      repository.BookingRepository
	lockRepo  repository.RoomLockRepository
	validator *validator.ReservationValidator
	publisher EventPublisher
	cfg       *config.Config
	now       func() time.Time
}

func NewReservationService(
	repo repository.BookingRepository,
	lockRepo repository.RoomLockRepository,
	validator *validator.ReservationValidator,
	publisher EventPublisher,
	cfg *config.Config,
) ReservationService {
	return &reservationService{
		repo:      repo,
		lockRepo:  lockRepo,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
	}
}

// AttemptBooking runs the full admission sequence for one booking attempt.
// Checks run cheapest first: interval ordering, then the membership gate,
// then field validation. Quota and conflict checks read committed state, so
// they run under the room lock inside a transaction together with the
// insert; the checks and the write see one consistent snapshot.
func (s *reservationService) AttemptBooking(ctx context.Context, req *model.ReservationRequest) (*model.Booking, error) {
	if !req.EndTime.After(req.StartTime) {
		return nil, reserrors.InvalidRange("end_time must be strictly after start_time")
	}

	if err := policy.CheckMembership(req.Member); err != nil {
		s.cfg.Log.Info("Booking refused at membership gate", "owner_id", req.OwnerID)
		return nil, err
	}

	req.Purpose = sanitizer.SanitizePurpose(req.Purpose)
	if err := s.validator.Validate(req); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "owner_id", req.OwnerID, "error", err)
		return nil, apperrors.InvalidInput("Invalid reservation input").
			WithDetails(map[string]any{"error": err.Error()})
	}

	candidate := req.Interval()
	dayKey := model.DayKey(req.StartTime, s.cfg.Location)
	booking := &model.Booking{
		Key:       model.BookingKey(req.OwnerID, dayKey),
		BookingID: uuid.New().String(),
		OwnerID:   req.OwnerID,
		Purpose:   req.Purpose,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}

	if err := s.acquireRoomLock(ctx, booking.BookingID); err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := s.lockRepo.Release(ctx, s.cfg.RoomName, booking.BookingID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release room lock", "room", s.cfg.RoomName, "error", releaseErr)
		}
	}()

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		own, err := s.repo.FindByOwner(sessCtx, req.OwnerID)
		if err != nil {
			return s.storeError(err)
		}
		if quotaErr := policy.CheckQuota(candidate, own, s.cfg.MaxReservationDuration, s.cfg.Location); quotaErr != nil {
			return quotaErr
		}

		existing, err := s.repo.FindOverlapping(sessCtx, candidate.Start, candidate.End)
		if err != nil {
			return s.storeError(err)
		}
		if conflict := policy.FindConflict(candidate, existing); conflict != nil {
			return reserrors.SlotConflict(conflict.StartTime, conflict.EndTime)
		}

		if err := s.repo.Create(sessCtx, booking); err != nil {
			// The composite key catches a same-day booking that committed
			// after the quota read.
			if errors.Is(err, reserrors.ErrDuplicateKey) {
				return reserrors.AlreadyBookedToday(dayKey)
			}
			return s.storeError(err)
		}
		return nil
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			appErr := apperrors.AsAppError(err)
			s.cfg.Log.Info("Booking refused",
				"owner_id", req.OwnerID,
				"code", appErr.Code,
				"start_time", req.StartTime,
			)
			return nil, appErr
		}
		s.cfg.Log.Error("Failed to commit booking", "owner_id", req.OwnerID, "error", err)
		return nil, s.storeError(err)
	}

	s.cfg.Log.Info("Reservation committed",
		"booking_id", booking.BookingID,
		"owner_id", booking.OwnerID,
		"start_time", booking.StartTime,
		"end_time", booking.EndTime,
	)
	s.publishEvent(ctx, EventReservationCreated, booking)

	return booking, nil
}

// acquireRoomLock takes the room-wide advisory lock. One retry after
// LockRetryDelay lets the loser of a race re-check against the winner's
// committed state instead of refusing outright.
func (s *reservationService) acquireRoomLock(ctx context.Context, holderID string) error {
	err := s.lockRepo.Acquire(ctx, s.cfg.RoomName, holderID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, reserrors.ErrDuplicateKey) {
		return s.storeError(err)
	}

	select {
	case <-time.After(s.cfg.LockRetryDelay):
	case <-ctx.Done():
		return s.storeError(ctx.Err())
	}

	err = s.lockRepo.Acquire(ctx, s.cfg.RoomName, holderID)
	if err == nil {
		return nil
	}
	if errors.Is(err, reserrors.ErrDuplicateKey) {
		return reserrors.SlotContention()
	}
	return s.storeError(err)
}

func (s *reservationService) Delete(ctx context.Context, ownerID string, bookingID string) error {
	if ownerID == "" || bookingID == "" {
		return apperrors.InvalidInput("Owner ID and booking ID are required")
	}

	var deleted *model.Booking
	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		booking, err := s.repo.FindByBookingID(sessCtx, bookingID)
		if err != nil {
			if errors.Is(err, reserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Reservation", bookingID)
			}
			return s.storeError(err)
		}
		if booking.OwnerID != ownerID {
			return reserrors.NotOwner()
		}

		if err := s.repo.Delete(sessCtx, booking.Key); err != nil {
			if errors.Is(err, reserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Reservation", bookingID)
			}
			return s.storeError(err)
		}

		deleted = booking
		return nil
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return apperrors.AsAppError(err)
		}
		s.cfg.Log.Error("Failed to delete reservation", "booking_id", bookingID, "error", err)
		return s.storeError(err)
	}

	s.cfg.Log.Info("Reservation deleted", "booking_id", bookingID, "owner_id", ownerID)
	s.publishEvent(ctx, EventReservationDeleted, deleted)
	return nil
}

// ListWeek returns the bookings intersecting the rolling week window
// starting at local midnight today, sorted by start time.
func (s *reservationService) ListWeek(ctx context.Context) ([]*model.Booking, model.WeekWindow, error) {
	window := model.CurrentWeekWindow(s.now(), s.cfg.Location)

	bookings, err := s.repo.FindOverlapping(ctx, window.Start, window.End)
	if err != nil {
		s.cfg.Log.Error("Failed to list week reservations", "error", err)
		return nil, window, s.storeError(err)
	}

	return bookings, window, nil
}

func (s *reservationService) WeekAvailability(ctx context.Context) (*availability.Week, error) {
	bookings, window, err := s.ListWeek(ctx)
	if err != nil {
		return nil, err
	}

	return &availability.Week{
		WindowStart: window.Start,
		WindowEnd:   window.End,
		Days:        availability.Project(window, bookings),
	}, nil
}

// publishEvent emits a reservation event when Kafka is wired. Publication is
// best effort; a broker outage never fails a committed booking.
func (s *reservationService) publishEvent(ctx context.Context, eventType string, booking *model.Booking) {
	if s.publisher == nil {
		return
	}

	msg := kafka.NewMessage().
		WithKey(booking.OwnerID).
		WithValue(ReservationEvent{
			BookingID: booking.BookingID,
			OwnerID:   booking.OwnerID,
			Room:      s.cfg.RoomName,
			StartTime: booking.StartTime,
			EndTime:   booking.EndTime,
		}).
		WithEventType(eventType).
		WithSource("reservations").
		WithHeader(kafka.HeaderSchemaVersion, "1").
		Build()

	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.cfg.Log.Warn("Failed to publish reservation event",
			"event_type", eventType,
			"booking_id", booking.BookingID,
			"error", err,
		)
	}
}

func (s *reservationService) storeError(err error) *apperrors.AppError {
	if errors.Is(err, context.DeadlineExceeded) {
		return reserrors.StoreUnavailable(err)
	}
	if apperrors.IsAppError(err) {
		return apperrors.AsAppError(err)
	}
	return reserrors.StoreUnavailable(err)
}
