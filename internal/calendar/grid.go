package calendar

import "time"

// Cell is one slot of a month grid: either empty padding before the 1st of
// the month, or a concrete day at midnight.
type Cell struct {
	Empty bool
	Date  time.Time
}

// Day returns the day-of-month of the cell, or 0 for padding.
func (c Cell) Day() int {
	if c.Empty {
		return 0
	}
	return c.Date.Day()
}

// BuildMonthGrid returns the cells needed to render the month containing
// ref, with Sunday as the first column. Only ref's year and month are used.
//
// The result holds paddingCount empty cells (the weekday index of the 1st,
// 0 = Sunday .. 6 = Saturday) followed by one cell per day of the month.
// No trailing padding is added.
func BuildMonthGrid(ref time.Time) []Cell {
	return BuildMonthGridFrom(ref, time.Sunday)
}

// BuildMonthGridFrom is BuildMonthGrid with a configurable first column.
func BuildMonthGridFrom(ref time.Time, weekStart time.Weekday) []Cell {
	first := StartOfMonth(ref)
	last := EndOfMonth(ref)

	padding := PaddingCount(first, weekStart)
	days := EachDay(first, last)

	cells := make([]Cell, 0, padding+len(days))
	for i := 0; i < padding; i++ {
		cells = append(cells, Cell{Empty: true})
	}
	for _, d := range days {
		cells = append(cells, Cell{Date: d})
	}
	return cells
}

// PaddingCount is the number of empty cells before the 1st of the month
// containing t, when weekStart is the first column. Always in [0, 6].
func PaddingCount(t time.Time, weekStart time.Weekday) int {
	wd := StartOfMonth(t).Weekday()
	return (int(wd) - int(weekStart) + 7) % 7
}

var weekdayShort = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// WeekdayNames returns the short column headers starting at weekStart.
func WeekdayNames(weekStart time.Weekday) []string {
	names := make([]string, 7)
	for i := range names {
		names[i] = weekdayShort[(int(weekStart)+i)%7]
	}
	return names
}
