package model

import "time"

// Interval is a half-open time range [Start, End): the start instant is
// included, the end instant is not, so adjacent ranges tile without
// overlapping.
type Interval struct {
	Start time.Time
	End   time.Time
}

func NewInterval(start, end time.Time) Interval {
	return Interval{Start: start, End: end}
}

// Overlaps reports whether the two half-open ranges share any instant.
// Touching endpoints (one ends exactly when the other starts) do not count.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// SameCalendarDay reports whether both intervals start on the same calendar
// day in loc. The day boundary is local midnight.
func (i Interval) SameCalendarDay(other Interval, loc *time.Location) bool {
	return DayKey(i.Start, loc) == DayKey(other.Start, loc)
}

// DurationHours returns the interval length in fractional hours.
func (i Interval) DurationHours() float64 {
	return i.End.Sub(i.Start).Hours()
}

func (i Interval) Valid() bool {
	return !i.Start.IsZero() && !i.End.IsZero() && i.End.After(i.Start)
}

// DayKey is the canonical calendar-day partition key for an instant. Every
// daily-quota and availability computation derives the day through this one
// function so the midnight boundary cannot drift between them.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// StartOfDay returns local midnight of the day containing t.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// WeekWindow is the [today 00:00, today+7d) range availability is projected
// over. Recomputed on every query, never persisted.
type WeekWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func CurrentWeekWindow(now time.Time, loc *time.Location) WeekWindow {
	start := StartOfDay(now, loc)
	return WeekWindow{
		Start: start,
		End:   start.AddDate(0, 0, 7),
	}
}

func (w WeekWindow) Interval() Interval {
	return Interval{Start: w.Start, End: w.End}
}
