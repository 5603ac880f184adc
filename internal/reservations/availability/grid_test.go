package availability

import (
	"testing"
	"time"

	"github.com/ye-spencer/ACMWebsitePort-sub000/pkg/model"
)

func TestProject_EmptyWeek(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	window := model.CurrentWeekWindow(now, time.UTC)

	grid := Project(window, nil)

	for day := 0; day < DaysPerWeek; day++ {
		for i := 0; i < SlotsPerDay; i++ {
			if grid[day][i] {
				t.Fatalf("slot [%d][%d] occupied in empty week", day, i)
			}
		}
	}
}

func TestProject_SingleBooking(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	window := model.CurrentWeekWindow(now, time.UTC)

	// [09:00, 10:00) on the first day of the window.
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	bookings := []*model.Booking{
		{
			Key:       "u1_2025-03-10",
			BookingID: "bk-1",
			OwnerID:   "u1",
			StartTime: start,
			EndTime:   start.Add(time.Hour),
		},
	}

	grid := Project(window, bookings)

	for day := 0; day < DaysPerWeek; day++ {
		for i := 0; i < SlotsPerDay; i++ {
			occupied := day == 0 && (i == 18 || i == 19)
			if grid[day][i] != occupied {
				t.Errorf("slot [%d][%d] = %v, want %v", day, i, grid[day][i], occupied)
			}
		}
	}
}

func TestProject_PartialSlotMarksWholeSlot(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	window := model.CurrentWeekWindow(now, time.UTC)

	// [09:15, 09:45) touches both half-hour slots it straddles.
	start := time.Date(2025, 3, 10, 9, 15, 0, 0, time.UTC)
	bookings := []*model.Booking{
		{
			Key:       "u1_2025-03-10",
			BookingID: "bk-1",
			OwnerID:   "u1",
			StartTime: start,
			EndTime:   start.Add(30 * time.Minute),
		},
	}

	grid := Project(window, bookings)

	if !grid[0][18] || !grid[0][19] {
		t.Errorf("slots 18 and 19 should both be occupied, got %v %v", grid[0][18], grid[0][19])
	}
	if grid[0][17] || grid[0][20] {
		t.Error("neighbouring slots should stay free")
	}
}

func TestProject_BookingEndingAtSlotBoundary(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	window := model.CurrentWeekWindow(now, time.UTC)

	// A booking ending exactly at 09:30 does not occupy the 09:30 slot.
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	bookings := []*model.Booking{
		{
			Key:       "u1_2025-03-10",
			BookingID: "bk-1",
			OwnerID:   "u1",
			StartTime: start,
			EndTime:   start.Add(30 * time.Minute),
		},
	}

	grid := Project(window, bookings)

	if !grid[0][18] {
		t.Error("slot 18 should be occupied")
	}
	if grid[0][19] {
		t.Error("slot 19 should be free when the booking ends at its start")
	}
}

func TestProject_BookingOnLaterDay(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	window := model.CurrentWeekWindow(now, time.UTC)

	// [14:00, 15:30) three days into the window.
	start := time.Date(2025, 3, 13, 14, 0, 0, 0, time.UTC)
	bookings := []*model.Booking{
		{
			Key:       "u2_2025-03-13",
			BookingID: "bk-2",
			OwnerID:   "u2",
			StartTime: start,
			EndTime:   start.Add(90 * time.Minute),
		},
	}

	grid := Project(window, bookings)

	for i := 28; i <= 30; i++ {
		if !grid[3][i] {
			t.Errorf("slot [3][%d] should be occupied", i)
		}
	}
	if grid[3][27] || grid[3][31] {
		t.Error("slots outside the booking should stay free")
	}
	if grid[2][28] || grid[4][28] {
		t.Error("other days should stay free")
	}
}
