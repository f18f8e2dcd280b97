// Package metrics exposes Prometheus instrumentation for event loads and
// navigation intents.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests and multiple servers never
// collide on the default one. A nil *Metrics is a valid no-op.
type Metrics struct {
	registry *prometheus.Registry

	loadsTotal    *prometheus.CounterVec
	loadDur       prometheus.Summary
	events        prometheus.Gauge
	lastSuccessTS prometheus.Gauge
	intentsTotal  *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.loadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tripcal",
		Name:      "loads_total",
		Help:      "Number of event loads by source and result",
	}, []string{"source", "result"})
	m.loadDur = prometheus.NewSummary(prometheus.SummaryOpts{
		Namespace: "tripcal",
		Name:      "load_duration_seconds",
		Help:      "Time spent loading events from the source",
	})
	m.events = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "tripcal",
		Name:      "events",
		Help:      "Number of events held by the calendar view",
	})
	m.lastSuccessTS = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "tripcal",
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix timestamp of the last successful load",
	})
	m.intentsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tripcal",
		Name:      "intents_total",
		Help:      "Number of navigation intents handled",
	}, []string{"intent"})

	m.registry.MustRegister(
		m.loadsTotal, m.loadDur, m.events, m.lastSuccessTS, m.intentsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveLoad records one load attempt. events is ignored when err != nil.
func (m *Metrics) ObserveLoad(source string, took time.Duration, events int, err error) {
	if m == nil {
		return
	}
	m.loadDur.Observe(took.Seconds())
	if err != nil {
		m.loadsTotal.WithLabelValues(source, "error").Inc()
		m.events.Set(0)
		return
	}
	m.loadsTotal.WithLabelValues(source, "ok").Inc()
	m.events.Set(float64(events))
	m.lastSuccessTS.Set(float64(time.Now().Unix()))
}

// Intent counts one handled navigation intent.
func (m *Metrics) Intent(name string) {
	if m == nil {
		return
	}
	m.intentsTotal.WithLabelValues(name).Inc()
}
