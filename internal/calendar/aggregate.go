package calendar

import (
	"slices"
	"time"

	"tripcal/internal/model"
)

// SameDay reports whether a and b fall on the same calendar day. Each value
// is read in its own location: time of day and offset are ignored, only
// (year, month, day) are compared.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// HasEventOnDay reports whether at least one well-formed event falls on day.
func HasEventOnDay(events []model.Event, day time.Time) bool {
	for _, ev := range events {
		if ev.HasDate() && SameDay(ev.Date, day) {
			return true
		}
	}
	return false
}

// VisibleEvents returns the events to list for the given selection.
//
//   - selected == nil: every well-formed event.
//   - otherwise: only events on the same calendar day as *selected.
//
// The result is sorted ascending by Date; events with identical instants
// keep their input order. Records without a date are skipped. The input is
// never modified and the result is never nil.
func VisibleEvents(events []model.Event, selected *time.Time) []model.Event {
	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if !ev.HasDate() {
			continue
		}
		if selected != nil && !SameDay(ev.Date, *selected) {
			continue
		}
		out = append(out, ev)
	}

	slices.SortStableFunc(out, func(a, b model.Event) int {
		return a.Date.Compare(b.Date)
	})
	return out
}

// CountByDay returns, index-aligned with cells, the number of well-formed
// events on each day cell. Padding cells count 0.
func CountByDay(events []model.Event, cells []Cell) []int {
	counts := make([]int, len(cells))
	for i, c := range cells {
		if c.Empty {
			continue
		}
		for _, ev := range events {
			if ev.HasDate() && SameDay(ev.Date, c.Date) {
				counts[i]++
			}
		}
	}
	return counts
}

// countMalformed returns how many events carry no usable date.
func countMalformed(events []model.Event) int {
	n := 0
	for _, ev := range events {
		if !ev.HasDate() {
			n++
		}
	}
	return n
}
