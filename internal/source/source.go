// Package source provides the event sources a calendar view loads its
// itinerary from: an inline sample trip, a YAML fixture file, or ICS feeds.
package source

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tripcal/internal/config"
	appLog "tripcal/internal/log"
	"tripcal/internal/model"
)

// Loader is an event source. LoadEvents either returns the complete
// collection or an error, never a partial collection.
type Loader interface {
	Name() string
	LoadEvents(ctx context.Context) ([]model.Event, error)
}

// Env carries the clock and display zone shared by all sources.
type Env struct {
	Location *time.Location
	Now      func() time.Time
	CacheDir string
}

func (e Env) normalized() Env {
	if e.Location == nil {
		e.Location = time.Local
	}
	if e.Now == nil {
		e.Now = time.Now
	}
	return e
}

// NewFromConfig builds the Loader selected by sc.Kind.
func NewFromConfig(sc config.SourceConfig, env Env) (Loader, error) {
	env = env.normalized()
	switch sc.Kind {
	case config.SourceSample:
		return NewSampleSource(sc.Delay(), env), nil
	case config.SourceFile:
		if sc.Path == "" {
			return nil, fmt.Errorf("source.path is required for kind %s", sc.Kind)
		}
		return NewFileSource(sc.Path, env), nil
	case config.SourceICS:
		feeds := make([]Feed, 0, len(sc.ICS))
		for _, c := range sc.ICS {
			if c.URL == "" {
				continue
			}
			id := c.ID
			if id == "" {
				if c.Name != "" {
					id = c.Name
				} else {
					id = c.URL
				}
			}
			feeds = append(feeds, Feed{ID: id, URL: c.URL})
		}
		if len(feeds) == 0 {
			return nil, fmt.Errorf("source kind %s needs at least one feed URL", sc.Kind)
		}
		return NewICSSource(feeds, NewFetcher(env.CacheDir), env), nil
	case "":
		return nil, fmt.Errorf("source.kind is required")
	default:
		return nil, fmt.Errorf("unknown source kind: %s", sc.Kind)
	}
}

// ensureIDs gives every event a unique ID: blank IDs get a UUID, and later
// duplicates of an earlier ID are replaced with one.
func ensureIDs(source string, events []model.Event) {
	seen := make(map[string]struct{}, len(events))
	for i := range events {
		id := events[i].ID
		if id == "" {
			id = uuid.NewString()
		} else if _, dup := seen[id]; dup {
			appLog.Warn("source: duplicate event id replaced", "source", source, "id", id)
			id = uuid.NewString()
		}
		events[i].ID = id
		seen[id] = struct{}{}
	}
}

// statusFor derives a display status for events that do not carry one.
func statusFor(date, now time.Time) model.EventStatus {
	if !date.IsZero() && date.Before(now) {
		return model.StatusCompleted
	}
	return model.StatusUpcoming
}
