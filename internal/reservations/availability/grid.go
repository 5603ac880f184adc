// Package availability projects the booking set onto the weekly calendar
// grid the site renders. Projection is a pure function over an explicit
// booking snapshot; it is cheap enough to recompute on every read.
package availability

import (
	"time"

	"github.com/ye-spencer/ACMWebsitePort-sub000/pkg/model"
)

const (
	DaysPerWeek = 7
	SlotsPerDay = 48
	SlotLength  = 30 * time.Minute
)

// Grid marks each 30-minute slot of the week occupied or free.
// Grid[day][i] covers [day 00:00 + i*30min, +30min) in the room's timezone.
type Grid [DaysPerWeek][SlotsPerDay]bool

// Week is the wire shape of an availability response.
type Week struct {
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
	Days        Grid      `json:"days"`
}

// Project builds the weekly grid from the bookings intersecting the window.
// A slot is occupied iff it half-open-overlaps any booking, the same
// predicate the conflict check uses, so the calendar can never show free a
// slot that would be refused.
func Project(window model.WeekWindow, bookings []*model.Booking) Grid {
	var grid Grid

	for day := 0; day < DaysPerWeek; day++ {
		// AddDate keeps the wall clock, so day starts stay at local
		// midnight across DST transitions.
		dayStart := window.Start.AddDate(0, 0, day)
		for i := 0; i < SlotsPerDay; i++ {
			slotStart := dayStart.Add(time.Duration(i) * SlotLength)
			slot := model.Interval{Start: slotStart, End: slotStart.Add(SlotLength)}
			for _, b := range bookings {
				if slot.Overlaps(b.Interval()) {
					grid[day][i] = true
					break
				}
			}
		}
	}

	return grid
}
