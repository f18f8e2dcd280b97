package source

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "tripcal/internal/log"
	"tripcal/internal/model"
)

const (
	propTripType   ical.ComponentProperty = "X-TRIP-TYPE"
	propTripStatus ical.ComponentProperty = "X-TRIP-STATUS"
)

// ParseICS maps every VEVENT of body to an Event.
//
//   - UID -> ID, SUMMARY -> Title, LOCATION -> Location.
//   - DTSTART -> Date (see parseStart). A VEVENT without a usable DTSTART
//     is skipped.
//   - X-TRIP-TYPE, else the first matching CATEGORIES entry -> Type
//     (default tour).
//   - X-TRIP-STATUS, else STATUS:CANCELLED -> cancelled, else completed
//     when the start is before now, else upcoming.
//
// RRULE/EXDATE are ignored: only the first occurrence is shown.
func ParseICS(feed Feed, body []byte, loc *time.Location, now time.Time) ([]model.Event, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}
	if loc == nil {
		loc = time.Local
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	events := make([]model.Event, 0)
	for _, ve := range cal.Events() {
		ev, err := parseVEvent(ve, loc, now)
		if err != nil {
			// Log and skip this event, but keep parsing others.
			appLog.Warn("ics vevent skipped", "id", feed.ID, "url", redactURL(feed.URL), "reason", err.Error())
			continue
		}
		events = append(events, ev)
	}

	appLog.Info("ics parse completed", "id", feed.ID, "url", redactURL(feed.URL), "event_count", len(events))
	return events, nil
}

func parseVEvent(ve *ical.VEvent, loc *time.Location, now time.Time) (model.Event, error) {
	var out model.Event

	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
		out.ID = strings.TrimSpace(p.Value)
	}
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Title = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = p.Value
	}

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil || dtStart.Value == "" {
		return out, errors.New("missing DTSTART")
	}

	start, err := parseStart(dtStart, loc)
	if err != nil {
		return out, err
	}
	out.Date = start

	out.Type = eventType(ve)
	out.Status = eventStatus(ve, out.Date, now)
	return out, nil
}

// parseStart reads DTSTART so that the event keeps the calendar day it was
// written for:
//
//   - all-day (VALUE=DATE) and floating times are read in loc;
//   - UTC times (trailing Z) are converted to loc;
//   - TZID times stay in their own zone, keeping their wall-clock day.
func parseStart(p *ical.IANAProperty, loc *time.Location) (time.Time, error) {
	v := strings.TrimSpace(p.Value)
	if isAllDay(p) {
		return time.ParseInLocation("20060102", v, loc)
	}
	if strings.HasSuffix(v, "Z") {
		t, err := time.Parse("20060102T150405Z", v)
		if err != nil {
			return time.Time{}, err
		}
		return t.In(loc), nil
	}
	if tzids, ok := p.ICalParameters["TZID"]; ok && len(tzids) > 0 && tzids[0] != "" {
		tz, err := time.LoadLocation(tzids[0])
		if err != nil {
			return time.Time{}, fmt.Errorf("unknown TZID %q: %w", tzids[0], err)
		}
		return time.ParseInLocation("20060102T150405", v, tz)
	}
	return time.ParseInLocation("20060102T150405", v, loc)
}

// isAllDay detects VALUE=DATE or a value without a time part.
func isAllDay(p *ical.IANAProperty) bool {
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

func eventType(ve *ical.VEvent) model.EventType {
	if p := ve.GetProperty(propTripType); p != nil {
		if t, err := model.ParseEventType(p.Value); err == nil {
			return t
		}
	}
	for _, p := range ve.GetProperties(ical.ComponentPropertyCategories) {
		for _, c := range strings.Split(p.Value, ",") {
			if t, err := model.ParseEventType(c); err == nil {
				return t
			}
		}
	}
	return model.TypeTour
}

func eventStatus(ve *ical.VEvent, date, now time.Time) model.EventStatus {
	if p := ve.GetProperty(propTripStatus); p != nil {
		if st, err := model.ParseEventStatus(p.Value); err == nil {
			return st
		}
	}
	if p := ve.GetProperty(ical.ComponentPropertyStatus); p != nil && strings.EqualFold(strings.TrimSpace(p.Value), "CANCELLED") {
		return model.StatusCancelled
	}
	return statusFor(date, now)
}
