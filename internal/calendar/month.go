package calendar

import "time"

// StartOfMonth returns midnight of the first day of t's month, in t's location.
func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// EndOfMonth returns midnight of the last day of t's month, in t's location.
func EndOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	// Day 0 of next month is the last day of this month.
	return time.Date(y, m+1, 0, 0, 0, 0, 0, t.Location())
}

// DaysInMonth returns the number of days in the given month, leap years included.
func DaysInMonth(y int, m time.Month) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// EachDay enumerates every calendar day in the closed interval
// [start, end] at midnight, ascending. It returns nil if end is before start.
func EachDay(start, end time.Time) []time.Time {
	loc := start.Location()
	sy, sm, sd := start.Date()
	ey, em, ed := end.In(loc).Date()

	first := time.Date(sy, sm, sd, 0, 0, 0, 0, loc)
	last := time.Date(ey, em, ed, 0, 0, 0, 0, loc)
	if last.Before(first) {
		return nil
	}

	var days []time.Time
	// Rebuilding from (y, m, d+1) keeps wall-clock midnight across DST.
	for d := first; !d.After(last); d = time.Date(d.Year(), d.Month(), d.Day()+1, 0, 0, 0, 0, loc) {
		days = append(days, d)
	}
	return days
}

// AddMonths shifts t by n calendar months. When the target month has fewer
// days than t's day-of-month the result is clamped to the target's last day
// (March 31 minus one month is February 28, or 29 in a leap year).
// Time of day and location are preserved.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	target := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	ty, tm, _ := target.Date()

	if last := DaysInMonth(ty, tm); d > last {
		d = last
	}
	return time.Date(ty, tm, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// PreviousMonth is AddMonths(t, -1).
func PreviousMonth(t time.Time) time.Time {
	return AddMonths(t, -1)
}

// NextMonth is AddMonths(t, 1).
func NextMonth(t time.Time) time.Time {
	return AddMonths(t, 1)
}

// SameMonth reports whether a and b fall in the same year and month.
func SameMonth(a, b time.Time) bool {
	ay, am, _ := a.Date()
	by, bm, _ := b.Date()
	return ay == by && am == bm
}
