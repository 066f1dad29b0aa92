package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for dashboard aggregation.
type Metrics struct {
	// Cache lookups: "hit", "miss" or "error"
	CacheLookups *prometheus.CounterVec

	BuildLatency *prometheus.HistogramVec

	// Failed builds, by window and trigger ("request" or "refresh")
	BuildFailures *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "levy_dashboard_cache_lookups_total",
			Help: "Dashboard cache lookups by result",
		}, []string{"result"}),

		BuildLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "levy_dashboard_build_duration_seconds",
			Help:    "Duration of a full dashboard aggregation",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"window"}),

		BuildFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "levy_dashboard_build_failures_total",
			Help: "Dashboard aggregations that failed",
		}, []string{"window", "trigger"}),
	}
}

func (m *Metrics) IncrementCacheLookup(result string) {
	if m != nil {
		m.CacheLookups.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) ObserveBuild(window string, d time.Duration) {
	if m != nil {
		m.BuildLatency.WithLabelValues(window).Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementBuildFailure(window, trigger string) {
	if m != nil {
		m.BuildFailures.WithLabelValues(window, trigger).Inc()
	}
}
