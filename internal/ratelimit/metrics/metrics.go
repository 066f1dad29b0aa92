package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Rejected      *prometheus.CounterVec
	CheckFailures prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Rejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "levy_ratelimit_rejected_total",
			Help: "Requests rejected by the per-agent rate limit",
		}, []string{"route"}),
		CheckFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "levy_ratelimit_check_failures_total",
			Help: "Rate limit checks that errored and let the request through",
		}),
	}
}

func (m *Metrics) IncrementRejected(route string) {
	if m != nil {
		m.Rejected.WithLabelValues(route).Inc()
	}
}

func (m *Metrics) IncrementCheckFailure() {
	if m != nil {
		m.CheckFailures.Inc()
	}
}
