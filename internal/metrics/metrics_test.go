package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gauge(t *testing.T, m *Metrics, name string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func counter(t *testing.T, m *Metrics, name string, labels map[string]string) float64 {
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
			return metric.GetCounter().GetValue()
		}
	}
	return 0
}

func TestObserveLoad(t *testing.T) {
	m := New()

	m.ObserveLoad("sample", 800*time.Millisecond, 4, nil)
	assert.Equal(t, float64(1), counter(t, m, "tripcal_loads_total", map[string]string{"source": "sample", "result": "ok"}))
	assert.Equal(t, float64(4), gauge(t, m, "tripcal_events"))
	assert.Greater(t, gauge(t, m, "tripcal_last_success_timestamp_seconds"), float64(0))

	m.ObserveLoad("sample", time.Second, 4, errors.New("boom"))
	assert.Equal(t, float64(1), counter(t, m, "tripcal_loads_total", map[string]string{"source": "sample", "result": "error"}))
	assert.Equal(t, float64(0), gauge(t, m, "tripcal_events"))
}

func TestIntent(t *testing.T) {
	m := New()
	m.Intent("select")
	m.Intent("select")
	m.Intent("next")

	assert.Equal(t, float64(2), counter(t, m, "tripcal_intents_total", map[string]string{"intent": "select"}))
	assert.Equal(t, float64(1), counter(t, m, "tripcal_intents_total", map[string]string{"intent": "next"}))
}

func TestHandler(t *testing.T) {
	m := New()
	m.Intent("today")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), `tripcal_intents_total{intent="today"} 1`)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveLoad("sample", time.Second, 1, nil)
		m.Intent("clear")
	})
	assert.Nil(t, m.Registry())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 404, rec.Code)
}
