// Package policy holds the pure booking admission checks: the membership
// gate, the per-member daily quota, and shared-room conflict detection.
// Every function takes an explicit snapshot of existing bookings and never
// touches the store.
package policy

import (
	"time"

	reserrors "github.com/ye-spencer/ACMWebsitePort-sub000/internal/reservations/errors"
	apperrors "github.com/ye-spencer/ACMWebsitePort-sub000/pkg/errors"
	"github.com/ye-spencer/ACMWebsitePort-sub000/pkg/model"
)

// CheckMembership gates every booking attempt. It runs before the quota and
// conflict checks: it is the cheapest check, and its failure needs a
// distinct code for the site's membership prompt.
func CheckMembership(isMember bool) *apperrors.AppError {
	if !isMember {
		return reserrors.NotAMember()
	}
	return nil
}

// CheckQuota enforces the two per-member rules against the member's own
// existing bookings: at most one booking per local calendar day, and a
// duration of at most maxDuration. Exactly maxDuration is allowed; anything
// strictly longer is rejected.
func CheckQuota(candidate model.Interval, own []*model.Booking, maxDuration time.Duration, loc *time.Location) *apperrors.AppError {
	if candidate.End.Sub(candidate.Start) > maxDuration {
		return reserrors.DurationExceeded(candidate.DurationHours(), maxDuration.Hours())
	}

	for _, b := range own {
		if candidate.SameCalendarDay(b.Interval(), loc) {
			return reserrors.AlreadyBookedToday(model.DayKey(candidate.Start, loc))
		}
	}

	return nil
}

// FindConflict returns the first committed booking whose interval overlaps
// the candidate, regardless of owner; the room is one shared resource, so
// the requester's own bookings participate too. Back-to-back bookings do
// not conflict under half-open semantics.
func FindConflict(candidate model.Interval, existing []*model.Booking) *model.Booking {
	for _, b := range existing {
		if candidate.Overlaps(b.Interval()) {
			return b
		}
	}
	return nil
}
