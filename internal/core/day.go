package core

import "time"

// dayKeyLayout is the calendar-date form used for same-day comparison.
const dayKeyLayout = "20060102"

// StartOfDay returns 00:00:00.000 of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59.999 of t's calendar day in t's location.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// DayKey formats t as a local calendar date, ignoring the time of day.
func DayKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(dayKeyLayout)
}

// SameDay reports whether a and b fall on the same calendar date in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	return DayKey(a, loc) == DayKey(b, loc)
}

// InDayRange reports whether t lies within [StartOfDay(from), EndOfDay(to)].
func InDayRange(t, from, to time.Time) bool {
	start := StartOfDay(from)
	end := EndOfDay(to)
	return !t.Before(start) && !t.After(end)
}
