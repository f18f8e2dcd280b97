package source

import (
	"context"
	"errors"
	"fmt"

	"tripcal/internal/model"
)

// ICSSource loads the itinerary from one or more ICS feeds. Any feed that
// cannot be fetched or parsed fails the whole load.
type ICSSource struct {
	feeds   []Feed
	fetcher *Fetcher
	env     Env
}

// NewICSSource creates an ICSSource.
func NewICSSource(feeds []Feed, fetcher *Fetcher, env Env) *ICSSource {
	return &ICSSource{feeds: feeds, fetcher: fetcher, env: env.normalized()}
}

func (s *ICSSource) Name() string { return "ics" }

func (s *ICSSource) LoadEvents(ctx context.Context) ([]model.Event, error) {
	results, errs := s.fetcher.FetchAll(ctx, s.feeds)
	if len(errs) > 0 {
		return nil, fmt.Errorf("ics: %d of %d feeds failed: %w", len(errs), len(s.feeds), errors.Join(errs...))
	}

	now := s.env.Now().In(s.env.Location)
	var events []model.Event
	for _, res := range results {
		parsed, err := ParseICS(res.Feed, res.Body, s.env.Location, now)
		if err != nil {
			return nil, fmt.Errorf("ics: parse feed %s: %w", res.Feed.ID, err)
		}
		events = append(events, parsed...)
	}

	ensureIDs(s.Name(), events)
	return events, nil
}
