package refresh

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripcal/internal/calendar"
	"tripcal/internal/metrics"
	"tripcal/internal/model"
)

var testToday = time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

type fakeLoader struct {
	calls  atomic.Int32
	events []model.Event
	err    error
}

func (f *fakeLoader) Name() string { return "fake" }

func (f *fakeLoader) LoadEvents(ctx context.Context) ([]model.Event, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}

func newView() *calendar.View {
	return calendar.NewView(calendar.Options{
		Location: time.UTC,
		Now:      func() time.Time { return testToday },
	})
}

func TestReload(t *testing.T) {
	view := newView()
	src := &fakeLoader{events: []model.Event{
		{ID: "1", Title: "Beach", Date: testToday.AddDate(0, 0, 2), Type: model.TypeTour},
	}}
	r := New(view, src, metrics.New(), time.UTC)

	require.NoError(t, r.Reload(context.Background()))
	assert.Equal(t, calendar.StateReady, view.State())
	assert.Equal(t, 1, view.EventCount())
	assert.Equal(t, "fake", r.SourceName())
}

func TestReload_Failure(t *testing.T) {
	view := newView()
	boom := errors.New("backend down")
	r := New(view, &fakeLoader{err: boom}, nil, time.UTC)

	err := r.Reload(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "reload from fake")
	assert.Equal(t, calendar.StateFailed, view.State())
}

func TestReload_ClosedView(t *testing.T) {
	view := newView()
	view.Close()
	r := New(view, &fakeLoader{}, metrics.New(), time.UTC)

	assert.ErrorIs(t, r.Reload(context.Background()), calendar.ErrClosed)
}

func TestStart_InvalidSchedule(t *testing.T) {
	r := New(newView(), &fakeLoader{}, nil, time.UTC)

	err := r.Start("every now and then")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid schedule")
}

func TestStart_RunsOnSchedule(t *testing.T) {
	view := newView()
	src := &fakeLoader{}
	r := New(view, src, nil, time.UTC)

	require.NoError(t, r.Start("@every 1s"))
	assert.Error(t, r.Start("@every 1s"), "second start must fail")

	assert.Eventually(t, func() bool { return src.calls.Load() > 0 }, 5*time.Second, 50*time.Millisecond)
	assert.Equal(t, calendar.StateReady, view.State())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	r.Stop(ctx)
	r.Stop(ctx)
}

// cancelingLoader cancels the reload's context from inside the source, the
// way a disconnecting client or an expiring timeout would.
type cancelingLoader struct {
	cancel context.CancelFunc
}

func (c *cancelingLoader) Name() string { return "fake" }

func (c *cancelingLoader) LoadEvents(ctx context.Context) ([]model.Event, error) {
	c.cancel()
	return nil, ctx.Err()
}

func metricValue(t *testing.T, m *metrics.Metrics, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, metric := range mf.GetMetric() {
			for _, lp := range metric.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue next
				}
			}
			if c := metric.GetCounter(); c != nil {
				return c.GetValue()
			}
			return metric.GetGauge().GetValue()
		}
	}
	return 0
}

func TestReload_CancelledContextIsNotRecorded(t *testing.T) {
	view := newView()
	m := metrics.New()
	src := &fakeLoader{events: []model.Event{
		{ID: "1", Title: "Beach", Date: testToday.AddDate(0, 0, 2), Type: model.TypeTour},
	}}
	require.NoError(t, New(view, src, m, time.UTC).Reload(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	err := New(view, &cancelingLoader{cancel: cancel}, m, time.UTC).Reload(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, calendar.StateReady, view.State())
	assert.Equal(t, 1, view.EventCount())
	assert.Equal(t, float64(1), metricValue(t, m, "tripcal_events", nil))
	assert.Equal(t, float64(0), metricValue(t, m, "tripcal_loads_total", map[string]string{"source": "fake", "result": "error"}))
	assert.Equal(t, float64(1), metricValue(t, m, "tripcal_loads_total", map[string]string{"source": "fake", "result": "ok"}))
}
