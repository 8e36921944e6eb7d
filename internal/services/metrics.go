package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all custom Prometheus metrics for the application
type Metrics struct {
	// Matcher outcomes by result ("hit", "miss")
	MatcherLookups *prometheus.CounterVec

	// Questions escalated to a supervisor
	Escalations prometheus.Counter

	// Supervisor resolutions and sweep expirations
	Resolutions prometheus.Counter
	Expirations prometheus.Counter

	// End-to-end ResolveQuestion latency
	ResolveLatency prometheus.Histogram
}

// InitMetrics initializes the Prometheus metrics
func InitMetrics() *Metrics {
	return &Metrics{
		MatcherLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "frontline_matcher_lookups_total",
			Help: "Total knowledge matcher lookups by outcome",
		}, []string{"outcome"}),

		Escalations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "frontline_escalations_total",
			Help: "Total questions escalated to a supervisor",
		}),

		Resolutions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "frontline_resolutions_total",
			Help: "Total help requests resolved by a supervisor",
		}),

		Expirations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "frontline_expirations_total",
			Help: "Total help requests expired by the timeout sweep",
		}),

		ResolveLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "frontline_resolve_question_duration_seconds",
			Help:    "ResolveQuestion latency in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		}),
	}
}
