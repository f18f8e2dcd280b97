package source

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	appLog "tripcal/internal/log"
	"tripcal/internal/model"
)

// fileEvent is the on-disk shape of one itinerary entry.
type fileEvent struct {
	ID       string `yaml:"id"`
	Title    string `yaml:"title"`
	Date     string `yaml:"date"`
	Location string `yaml:"location"`
	Type     string `yaml:"type"`
	Status   string `yaml:"status"`
}

type fileDoc struct {
	Events []fileEvent `yaml:"events"`
}

// Accepted date layouts, tried in order. Layouts without an offset are read
// in the display location.
var fileDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	time.DateOnly,
}

// FileSource reads the itinerary from a YAML fixture:
//
//	events:
//	  - id: "1"
//	    title: Bali Beach Tour
//	    date: 2026-10-21T09:00:00+08:00
//	    location: Bali, Indonesia
//	    type: tour
//	    status: upcoming
type FileSource struct {
	path string
	env  Env
}

// NewFileSource creates a FileSource for path.
func NewFileSource(path string, env Env) *FileSource {
	return &FileSource{path: path, env: env.normalized()}
}

func (s *FileSource) Name() string { return "file" }

// LoadEvents reads and decodes the whole file. A record with a missing or
// unparseable date is kept with a zero Date; the calendar hides it.
func (s *FileSource) LoadEvents(ctx context.Context) ([]model.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read events file: %w", err)
	}
	return s.decode(data)
}

func (s *FileSource) decode(data []byte) ([]model.Event, error) {
	var doc fileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse events file %s: %w", s.path, err)
	}

	now := s.env.Now().In(s.env.Location)
	events := make([]model.Event, 0, len(doc.Events))
	for i, fe := range doc.Events {
		ev := model.Event{
			ID:       strings.TrimSpace(fe.ID),
			Title:    fe.Title,
			Location: fe.Location,
		}

		date, err := parseFileDate(fe.Date, s.env.Location)
		if err != nil {
			appLog.Warn("source: event has no usable date", "path", s.path, "index", i, "id", fe.ID, "date", fe.Date)
		}
		ev.Date = date

		if ev.Type, err = model.ParseEventType(fe.Type); err != nil {
			if fe.Type != "" {
				appLog.Warn("source: unknown event type, using tour", "path", s.path, "index", i, "type", fe.Type)
			}
			ev.Type = model.TypeTour
		}
		if ev.Status, err = model.ParseEventStatus(fe.Status); err != nil {
			ev.Status = statusFor(ev.Date, now)
		}

		events = append(events, ev)
	}

	ensureIDs(s.Name(), events)
	return events, nil
}

func parseFileDate(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range fileDateLayouts {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			// UTC instants are shown in loc; explicit offsets keep their
			// own wall-clock day.
			if strings.HasSuffix(strings.ToUpper(v), "Z") {
				t = t.In(loc)
			}
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", v)
}
