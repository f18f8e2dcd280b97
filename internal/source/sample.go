package source

import (
	"context"
	"time"

	"tripcal/internal/model"
)

// SampleSource serves a fixed demo itinerary relative to today, after a
// simulated backend delay.
type SampleSource struct {
	delay time.Duration
	env   Env
}

// NewSampleSource creates a SampleSource. A zero delay returns immediately.
func NewSampleSource(delay time.Duration, env Env) *SampleSource {
	return &SampleSource{delay: delay, env: env.normalized()}
}

func (s *SampleSource) Name() string { return "sample" }

// LoadEvents waits for the configured delay, or until ctx is done.
func (s *SampleSource) LoadEvents(ctx context.Context) ([]model.Event, error) {
	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return SampleEvents(s.env.Now().In(s.env.Location)), nil
}

// SampleEvents returns the demo trip: a beach tour and a hotel check-in two
// days out, a flight in a week, and a temple tour five days ago.
func SampleEvents(now time.Time) []model.Event {
	return []model.Event{
		{
			ID:       "1",
			Title:    "Bali Beach Tour",
			Date:     now.AddDate(0, 0, 2),
			Location: "Bali, Indonesia",
			Type:     model.TypeTour,
			Status:   model.StatusUpcoming,
		},
		{
			ID:       "2",
			Title:    "Hotel Check-in",
			Date:     now.AddDate(0, 0, 2),
			Location: "Grand Hyatt, Bali",
			Type:     model.TypeHotel,
			Status:   model.StatusUpcoming,
		},
		{
			ID:       "3",
			Title:    "Flight to Bangkok",
			Date:     now.AddDate(0, 0, 7),
			Location: "Ngurah Rai Airport",
			Type:     model.TypeFlight,
			Status:   model.StatusUpcoming,
		},
		{
			ID:       "4",
			Title:    "Temple Tour",
			Date:     now.AddDate(0, 0, -5),
			Location: "Bangkok, Thailand",
			Type:     model.TypeTour,
			Status:   model.StatusCompleted,
		},
	}
}
