package model

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// EventType is the kind of itinerary item. It only drives iconography and
// color; no business logic depends on it.
type EventType string

const (
	TypeTour   EventType = "tour"
	TypeHotel  EventType = "hotel"
	TypeFlight EventType = "flight"
)

// EventStatus is the display status of an itinerary item.
type EventStatus string

const (
	StatusUpcoming  EventStatus = "upcoming"
	StatusCompleted EventStatus = "completed"
	StatusCancelled EventStatus = "cancelled"
)

// Event represents a single itinerary entry as loaded from an event source.
// Date has day-granularity semantics: events are compared by calendar day,
// not by exact instant.
type Event struct {
	ID       string
	Title    string
	Date     time.Time // zero value marks a malformed record
	Location string
	Type     EventType
	Status   EventStatus
}

// HasDate reports whether the record carries a usable date.
func (e Event) HasDate() bool {
	return !e.Date.IsZero()
}

// ParseEventType parses s case-insensitively into one of the known types.
func ParseEventType(s string) (EventType, error) {
	switch t := EventType(strings.ToLower(strings.TrimSpace(s))); t {
	case TypeTour, TypeHotel, TypeFlight:
		return t, nil
	default:
		return "", fmt.Errorf("unknown event type %q", s)
	}
}

// ParseEventStatus parses s case-insensitively into one of the known statuses.
func ParseEventStatus(s string) (EventStatus, error) {
	switch st := EventStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusUpcoming, StatusCompleted, StatusCancelled:
		return st, nil
	default:
		return "", fmt.Errorf("unknown event status %q", s)
	}
}

// Color is the accent color used for the type badge.
func (t EventType) Color() string {
	switch t {
	case TypeTour:
		return "green"
	case TypeHotel:
		return "blue"
	default:
		return "purple"
	}
}

// Icon is the icon name used for the type badge.
func (t EventType) Icon() string {
	switch t {
	case TypeTour:
		return "globe"
	case TypeHotel:
		return "building"
	default:
		return "plane"
	}
}

// Label returns the capitalized status ("Upcoming", "Completed", ...).
// A Caser is stateful, so one is built per call.
func (s EventStatus) Label() string {
	return cases.Title(language.English).String(string(s))
}

// Color is the badge color for the status.
func (s EventStatus) Color() string {
	switch s {
	case StatusUpcoming:
		return "blue"
	case StatusCompleted:
		return "green"
	default:
		return "red"
	}
}
