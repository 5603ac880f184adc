package model

import (
	"time"
)

// Booking is one committed room reservation. The document id is the
// composite (owner, calendar day) key, which is what makes the one-booking-
// per-member-per-day rule a store-level invariant instead of a convention.
// Bookings are immutable once committed; the only mutation is deletion by
// the owner.
type Booking struct {
	Key       string    `json:"-" bson:"_id"`
	BookingID string    `json:"booking_id" bson:"booking_id"`
	OwnerID   string    `json:"owner_id" bson:"owner_id"`
	Purpose   string    `json:"purpose,omitempty" bson:"purpose,omitempty"`
	StartTime time.Time `json:"start_time" bson:"start_time"`
	EndTime   time.Time `json:"end_time" bson:"end_time"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// BookingKey builds the composite store key for an owner and a day key as
// produced by DayKey.
func BookingKey(ownerID, dayKey string) string {
	return ownerID + "_" + dayKey
}

func (b *Booking) Interval() Interval {
	return Interval{Start: b.StartTime, End: b.EndTime}
}

// ReservationRequest is the ephemeral input to one booking attempt. Member
// is the caller's membership flag snapshotted by the identity layer at
// request time; it is never read from the request body.
type ReservationRequest struct {
	OwnerID   string    `json:"-" validate:"required,min=1,max=64"`
	Member    bool      `json:"-"`
	Purpose   string    `json:"purpose,omitempty" validate:"omitempty,max=200"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`
}

func (r *ReservationRequest) Interval() Interval {
	return Interval{Start: r.StartTime, End: r.EndTime}
}
