package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	reserrors "github.com/ye-spencer/ACMWebsitePort-sub000/internal/reservations/errors"
	"github.com/ye-spencer/ACMWebsitePort-sub000/internal/reservations/repository"
	"github.com/ye-spencer/ACMWebsitePort-sub000/internal/reservations/validator"
	"github.com/ye-spencer/ACMWebsitePort-sub000/pkg/config"
	mongotx "github.com/ye-spencer/ACMWebsitePort-sub000/pkg/db/mongo"
	apperrors "github.com/ye-spencer/ACMWebsitePort-sub000/pkg/errors"
	"github.com/ye-spencer/ACMWebsitePort-sub000/pkg/kafka"
	"github.com/ye-spencer/ACMWebsitePort-sub000/pkg/logger"
	"github.com/ye-spencer/ACMWebsitePort-sub000/pkg/model"
)

// In-memory repository backed by a map keyed the way the real store is. The
// room lock serializes writers, so a plain mutex is a faithful stand-in for
// the transaction.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]*model.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[string]*model.Booking)}
}

func (f *fakeBookingRepo) Create(ctx context.Context, booking *model.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.bookings[booking.Key]; exists {
		return reserrors.ErrDuplicateKey
	}
	booking.CreatedAt = time.Now().UTC()
	clone := *booking
	f.bookings[booking.Key] = &clone
	return nil
}

func (f *fakeBookingRepo) FindByBookingID(ctx context.Context, bookingID string) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, b := range f.bookings {
		if b.BookingID == bookingID {
			clone := *b
			return &clone, nil
		}
	}
	return nil, reserrors.ErrNotFound
}

func (f *fakeBookingRepo) FindByOwner(ctx context.Context, ownerID string) ([]*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*model.Booking
	for _, b := range f.bookings {
		if b.OwnerID == ownerID {
			clone := *b
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) FindOverlapping(ctx context.Context, start, end time.Time) ([]*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*model.Booking
	for _, b := range f.bookings {
		if b.StartTime.Before(end) && b.EndTime.After(start) {
			clone := *b
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.bookings[key]; !exists {
		return reserrors.ErrNotFound
	}
	delete(f.bookings, key)
	return nil
}

func (f *fakeBookingRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

var _ repository.BookingRepository = (*fakeBookingRepo)(nil)

type fakeLockRepo struct {
	mu    sync.Mutex
	locks map[string]string // room -> holder
}

func newFakeLockRepo() *fakeLockRepo {
	return &fakeLockRepo{locks: make(map[string]string)}
}

func (f *fakeLockRepo) Acquire(ctx context.Context, room string, holderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, held := f.locks[room]; held {
		return reserrors.ErrDuplicateKey
	}
	f.locks[room] = holderID
	return nil
}

func (f *fakeLockRepo) Release(ctx context.Context, room string, holderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.locks[room] == holderID {
		delete(f.locks, room)
	}
	return nil
}

var _ repository.RoomLockRepository = (*fakeLockRepo)(nil)

type fakePublisher struct {
	mu       sync.Mutex
	messages []kafka.Message
}

func (f *fakePublisher) Publish(ctx context.Context, msg kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakePublisher) eventTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var types []string
	for _, m := range f.messages {
		types = append(types, m.Headers[kafka.HeaderEventType])
	}
	return types
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})

	return &config.Config{
		Log:                    log,
		Location:               time.UTC,
		RoomName:               "clubroom",
		MaxReservationDuration: 2 * time.Hour,
		LockTTL:                time.Second,
		LockRetryDelay:         10 * time.Millisecond,
		ReadTimeout:            5 * time.Second,
		WriteTimeout:           5 * time.Second,
	}
}

func newTestService(t *testing.T, cfg *config.Config) (*reservationService, *fakeBookingRepo, *fakePublisher) {
	t.Helper()
	repo := newFakeBookingRepo()
	publisher := &fakePublisher{}
	svc := &reservationService{
		repo:      repo,
		lockRepo:  newFakeLockRepo(),
		validator: validator.NewReservationValidator(cfg.Log),
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
	}
	return svc, repo, publisher
}

func request(owner string, member bool, start time.Time, d time.Duration) *model.ReservationRequest {
	return &model.ReservationRequest{
		OwnerID:   owner,
		Member:    member,
		StartTime: start,
		EndTime:   start.Add(d),
	}
}

func assertRefusal(t *testing.T, err error, wantCode string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected refusal %s, got nil", wantCode)
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != wantCode {
		t.Fatalf("code = %s, want %s (error: %v)", appErr.Code, wantCode, err)
	}
}

func TestAttemptBooking_FullScenario(t *testing.T) {
	cfg := testConfig(t)
	svc, _, publisher := newTestService(t, cfg)
	ctx := context.Background()

	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	// Guests are refused before anything else runs.
	_, err := svc.AttemptBooking(ctx, request("u1", false, day.Add(10*time.Hour), time.Hour))
	assertRefusal(t, err, reserrors.CodeNotAMember)

	// A member books 10:00-11:00.
	first, err := svc.AttemptBooking(ctx, request("u1", true, day.Add(10*time.Hour), time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.BookingID == "" {
		t.Error("committed booking should carry a booking id")
	}

	// The same member cannot book again that day, even a free slot.
	_, err = svc.AttemptBooking(ctx, request("u1", true, day.Add(18*time.Hour), time.Hour))
	assertRefusal(t, err, reserrors.CodeAlreadyBookedToday)

	// Another member overlapping 10:30-11:30 is refused.
	_, err = svc.AttemptBooking(ctx, request("u2", true, day.Add(10*time.Hour+30*time.Minute), time.Hour))
	assertRefusal(t, err, reserrors.CodeSlotConflict)

	// Back-to-back 11:00-12:00 is allowed.
	if _, err := svc.AttemptBooking(ctx, request("u2", true, day.Add(11*time.Hour), time.Hour)); err != nil {
		t.Fatalf("unexpected error for back-to-back booking: %v", err)
	}

	types := publisher.eventTypes()
	if len(types) != 2 {
		t.Fatalf("expected 2 published events, got %d", len(types))
	}
	for _, typ := range types {
		if typ != EventReservationCreated {
			t.Errorf("event type = %s, want %s", typ, EventReservationCreated)
		}
	}
}

func TestAttemptBooking_InvalidRange(t *testing.T) {
	cfg := testConfig(t)
	svc, _, _ := newTestService(t, cfg)

	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	req := &model.ReservationRequest{
		OwnerID:   "u1",
		Member:    true,
		StartTime: start,
		EndTime:   start.Add(-time.Hour),
	}
	_, err := svc.AttemptBooking(context.Background(), req)
	assertRefusal(t, err, reserrors.CodeInvalidRange)

	// Zero-length is invalid too.
	req.EndTime = start
	_, err = svc.AttemptBooking(context.Background(), req)
	assertRefusal(t, err, reserrors.CodeInvalidRange)
}

func TestAttemptBooking_DurationCap(t *testing.T) {
	cfg := testConfig(t)
	svc, _, _ := newTestService(t, cfg)
	ctx := context.Background()

	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	// Exactly two hours passes.
	if _, err := svc.AttemptBooking(ctx, request("u1", true, start, 2*time.Hour)); err != nil {
		t.Fatalf("unexpected error at exact cap: %v", err)
	}

	// A second longer is refused.
	_, err := svc.AttemptBooking(ctx, request("u2", true, start.Add(3*time.Hour), 2*time.Hour+time.Second))
	assertRefusal(t, err, reserrors.CodeDurationExceeded)
}

func TestAttemptBooking_ConcurrentIdenticalRequests(t *testing.T) {
	cfg := testConfig(t)
	svc, _, _ := newTestService(t, cfg)

	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	results := make(chan error, 2)
	var wg sync.WaitGroup
	for _, owner := range []string{"u1", "u2"} {
		wg.Add(1)
		go func(owner string) {
			defer wg.Done()
			_, err := svc.AttemptBooking(context.Background(), request(owner, true, start, time.Hour))
			results <- err
		}(owner)
	}
	wg.Wait()
	close(results)

	var successes, conflicts int
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		appErr := apperrors.AsAppError(err)
		if appErr.Code == reserrors.CodeSlotConflict {
			conflicts++
		} else {
			t.Errorf("unexpected refusal: %v", err)
		}
	}

	if successes != 1 || conflicts != 1 {
		t.Fatalf("expected exactly one success and one conflict, got %d successes, %d conflicts", successes, conflicts)
	}
}

func TestAttemptBooking_LockHeldAfterRetry(t *testing.T) {
	cfg := testConfig(t)
	svc, _, _ := newTestService(t, cfg)
	ctx := context.Background()

	// Another attempt holds the room lock for the whole window.
	locks := newFakeLockRepo()
	if err := locks.Acquire(ctx, cfg.RoomName, "other-attempt"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	svc.lockRepo = locks

	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	_, err := svc.AttemptBooking(ctx, request("u1", true, start, time.Hour))
	assertRefusal(t, err, reserrors.CodeSlotConflict)
}

func TestAttemptBooking_FieldValidation(t *testing.T) {
	cfg := testConfig(t)
	svc, _, _ := newTestService(t, cfg)

	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	// Owner ids longer than the store allows are refused as invalid input.
	req := request(strings.Repeat("x", 65), true, start, time.Hour)
	_, err := svc.AttemptBooking(context.Background(), req)
	assertRefusal(t, err, apperrors.CodeInvalidInput)
}

func TestDelete(t *testing.T) {
	cfg := testConfig(t)
	svc, _, publisher := newTestService(t, cfg)
	ctx := context.Background()

	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	booking, err := svc.AttemptBooking(ctx, request("u1", true, start, time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Someone else cannot cancel it.
	err = svc.Delete(ctx, "u2", booking.BookingID)
	assertRefusal(t, err, reserrors.CodeNotOwner)

	// Unknown booking id.
	err = svc.Delete(ctx, "u1", "no-such-id")
	assertRefusal(t, err, apperrors.CodeNotFound)

	// The owner can.
	if err := svc.Delete(ctx, "u1", booking.BookingID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Deleting twice reports not found.
	err = svc.Delete(ctx, "u1", booking.BookingID)
	assertRefusal(t, err, apperrors.CodeNotFound)

	types := publisher.eventTypes()
	if len(types) != 2 || types[1] != EventReservationDeleted {
		t.Fatalf("expected created+deleted events, got %v", types)
	}
}

func TestDelete_FreesTheDay(t *testing.T) {
	cfg := testConfig(t)
	svc, _, _ := newTestService(t, cfg)
	ctx := context.Background()

	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	booking, err := svc.AttemptBooking(ctx, request("u1", true, start, time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.Delete(ctx, "u1", booking.BookingID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// After cancelling, the member can book again on the same day.
	if _, err := svc.AttemptBooking(ctx, request("u1", true, start.Add(4*time.Hour), time.Hour)); err != nil {
		t.Fatalf("unexpected error rebooking after delete: %v", err)
	}
}

func TestListWeekAndAvailability(t *testing.T) {
	cfg := testConfig(t)
	svc, _, _ := newTestService(t, cfg)
	ctx := context.Background()

	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	// [09:00, 10:00) today.
	if _, err := svc.AttemptBooking(ctx, request("u1", true, now.Add(time.Hour), time.Hour)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bookings, window, err := svc.ListWeek(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bookings) != 1 {
		t.Fatalf("expected 1 booking in window, got %d", len(bookings))
	}
	wantStart := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	if !window.Start.Equal(wantStart) {
		t.Errorf("window.Start = %v, want %v", window.Start, wantStart)
	}

	week, err := svc.WeekAvailability(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !week.Days[0][18] || !week.Days[0][19] {
		t.Error("expected 09:00 and 09:30 slots occupied on day 0")
	}
	if week.Days[0][20] {
		t.Error("expected 10:00 slot free")
	}
}

func TestAttemptBooking_PublisherAbsent(t *testing.T) {
	cfg := testConfig(t)
	svc, _, _ := newTestService(t, cfg)
	svc.publisher = nil

	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	if _, err := svc.AttemptBooking(context.Background(), request("u1", true, start, time.Hour)); err != nil {
		t.Fatalf("unexpected error without a publisher: %v", err)
	}
}
