package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus instrumentation for the control pipeline.
type Metrics struct {
	registry *prometheus.Registry

	// FramesProcessed counts landmark frames advanced through the engine.
	FramesProcessed prometheus.Counter

	// LockTransitions counts lock machine phase entries, labelled by phase.
	LockTransitions *prometheus.CounterVec

	// Selections counts fired target selections.
	Selections prometheus.Counter

	// AdvanceDuration observes the per-frame engine advance latency.
	AdvanceDuration prometheus.Histogram
}

// NewMetrics creates and registers the pipeline collectors on a private
// registry, so tests can build as many instances as they like.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		FramesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mudra_frames_processed_total",
			Help: "Landmark frames advanced through the control engine.",
		}),
		LockTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mudra_lock_transitions_total",
			Help: "Lock state machine phase entries.",
		}, []string{"phase"}),
		Selections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mudra_selections_total",
			Help: "Fired target selections.",
		}),
		AdvanceDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mudra_advance_duration_seconds",
			Help:    "Per-frame engine advance latency.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 10),
		}),
	}

	m.registry.MustRegister(
		m.FramesProcessed,
		m.LockTransitions,
		m.Selections,
		m.AdvanceDuration,
	)

	return m
}

// Handler returns the /metrics scrape handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
