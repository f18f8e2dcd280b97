package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripcal/internal/config"
	"tripcal/internal/model"
)

var (
	wita    = time.FixedZone("WITA", 8*60*60)
	testNow = time.Date(2026, 10, 19, 10, 0, 0, 0, wita)
)

func testEnv(t *testing.T) Env {
	return Env{
		Location: wita,
		Now:      func() time.Time { return testNow },
		CacheDir: t.TempDir(),
	}
}

func TestNewFromConfig(t *testing.T) {
	tests := []struct {
		name     string
		sc       config.SourceConfig
		wantName string
		wantErr  string
	}{
		{name: "sample", sc: config.SourceConfig{Kind: config.SourceSample}, wantName: "sample"},
		{name: "file", sc: config.SourceConfig{Kind: config.SourceFile, Path: "trip.yaml"}, wantName: "file"},
		{name: "file without path", sc: config.SourceConfig{Kind: config.SourceFile}, wantErr: "source.path"},
		{name: "ics", sc: config.SourceConfig{Kind: config.SourceICS, ICS: []config.ICSConfig{{URL: "https://example.com/a.ics"}}}, wantName: "ics"},
		{name: "ics without urls", sc: config.SourceConfig{Kind: config.SourceICS, ICS: []config.ICSConfig{{ID: "a"}}}, wantErr: "at least one feed"},
		{name: "empty kind", sc: config.SourceConfig{}, wantErr: "source.kind is required"},
		{name: "unknown kind", sc: config.SourceConfig{Kind: "fax"}, wantErr: "unknown source kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewFromConfig(tt.sc, testEnv(t))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, l.Name())
		})
	}
}

func TestSampleSource(t *testing.T) {
	src := NewSampleSource(0, testEnv(t))

	events, err := src.LoadEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 4)

	assert.Equal(t, "Bali Beach Tour", events[0].Title)
	assert.Equal(t, time.Date(2026, 10, 21, 10, 0, 0, 0, wita), events[0].Date)
	assert.Equal(t, events[0].Date, events[1].Date)
	assert.Equal(t, model.TypeHotel, events[1].Type)
	assert.Equal(t, model.TypeFlight, events[2].Type)
	assert.Equal(t, time.Date(2026, 10, 26, 10, 0, 0, 0, wita), events[2].Date)
	assert.Equal(t, model.StatusCompleted, events[3].Status)
	assert.Equal(t, time.Date(2026, 10, 14, 10, 0, 0, 0, wita), events[3].Date)
}

func TestSampleSource_HonorsCancellation(t *testing.T) {
	src := NewSampleSource(time.Hour, testEnv(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	events, err := src.LoadEvents(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, events)
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trip.yaml")
	body := `
events:
  - id: "a"
    title: Surf Lesson
    date: "2026-10-21T09:00:00+08:00"
    location: Kuta
    type: Tour
    status: upcoming
  - title: Villa Check-in
    date: "2026-10-21"
    location: Ubud
    type: hotel
  - id: "a"
    title: Duplicate ID
    date: "2026-10-22 14:30"
    type: flight
    status: cancelled
  - id: "broken"
    title: No idea when
    date: "sometime next week"
  - id: "past"
    title: Old Tour
    date: "2026-10-01T08:00"
    type: submarine
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	events, err := NewFileSource(path, testEnv(t)).LoadEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 5)

	assert.Equal(t, "a", events[0].ID)
	assert.Equal(t, model.TypeTour, events[0].Type)
	assert.Equal(t, model.StatusUpcoming, events[0].Status)
	assert.True(t, events[0].Date.Equal(time.Date(2026, 10, 21, 9, 0, 0, 0, wita)))

	assert.NotEmpty(t, events[1].ID)
	assert.Equal(t, time.Date(2026, 10, 21, 0, 0, 0, 0, wita), events[1].Date)
	assert.Equal(t, model.StatusUpcoming, events[1].Status)

	assert.NotEqual(t, "a", events[2].ID)
	assert.NotEmpty(t, events[2].ID)
	assert.Equal(t, model.StatusCancelled, events[2].Status)
	assert.Equal(t, time.Date(2026, 10, 22, 14, 30, 0, 0, wita), events[2].Date)

	assert.Equal(t, "broken", events[3].ID)
	assert.False(t, events[3].HasDate())

	assert.Equal(t, model.TypeTour, events[4].Type)
	assert.Equal(t, model.StatusCompleted, events[4].Status)

	seen := map[string]bool{}
	for _, ev := range events {
		assert.False(t, seen[ev.ID], "duplicate id %s", ev.ID)
		seen[ev.ID] = true
	}
}

func TestFileSource_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := NewFileSource(filepath.Join(dir, "missing.yaml"), testEnv(t)).LoadEvents(context.Background())
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("events: {not: [a list"), 0o600))
	_, err = NewFileSource(bad, testEnv(t)).LoadEvents(context.Background())
	assert.Error(t, err)
}

func TestEnsureIDs(t *testing.T) {
	events := []model.Event{{ID: "x"}, {ID: ""}, {ID: "x"}, {ID: "y"}}
	ensureIDs("test", events)

	assert.Equal(t, "x", events[0].ID)
	assert.NotEmpty(t, events[1].ID)
	assert.NotEqual(t, "x", events[2].ID)
	assert.Equal(t, "y", events[3].ID)
}

func TestParseFileDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		day  int
	}{
		{"2026-10-21T20:00", time.Date(2026, 10, 21, 20, 0, 0, 0, wita), 21},
		{"2026-10-21T20:00:00Z", time.Date(2026, 10, 22, 4, 0, 0, 0, wita), 22},
		{"2026-10-21T20:00:00-04:00", time.Date(2026, 10, 22, 8, 0, 0, 0, wita), 21},
		{"2026-10-21", time.Date(2026, 10, 21, 0, 0, 0, 0, wita), 21},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseFileDate(tt.in, wita)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %s", got)
			assert.Equal(t, tt.day, got.Day())
		})
	}

	_, err := parseFileDate("soon", wita)
	assert.Error(t, err)
}
