// Package metrics defines the Prometheus collectors for turn processing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the collectors wired into the HTTP adapter and the
// orchestrator's failure observer hook.
type Metrics struct {
	TurnsTotal        *prometheus.CounterVec
	GeneratorFailures *prometheus.CounterVec
	TurnDuration      prometheus.Histogram
}

// New registers the collectors on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TurnsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "checkin",
			Name:      "turns_total",
			Help:      "Reflection turns processed, by outcome.",
		}, []string{"outcome"}),
		GeneratorFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "checkin",
			Name:      "generator_failures_total",
			Help:      "Text generator failures that degraded to a fallback, by node.",
		}, []string{"node"}),
		TurnDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "checkin",
			Name:      "turn_duration_seconds",
			Help:      "Wall time of a single orchestrator turn.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// ObserveTurn records one completed turn.
func (m *Metrics) ObserveTurn(outcome string, seconds float64) {
	m.TurnsTotal.WithLabelValues(outcome).Inc()
	m.TurnDuration.Observe(seconds)
}
