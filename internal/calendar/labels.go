package calendar

import "time"

const (
	headerAll      = "Upcoming Events"
	emptyAll       = "No upcoming events found"
	emptySelection = "No events scheduled for this day"
)

// MonthTitle formats the grid header, e.g. "October 2026".
func MonthTitle(t time.Time) string {
	return t.Format("January 2006")
}

// ListHeader is the header shown above the event list.
func ListHeader(selected *time.Time) string {
	if selected == nil {
		return headerAll
	}
	return "Events on " + selected.Format("January 2, 2006")
}

// EmptyMessage is shown when the visible list has no events.
func EmptyMessage(selected *time.Time) string {
	if selected == nil {
		return emptyAll
	}
	return emptySelection
}
