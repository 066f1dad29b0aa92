package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the agent-facing gateway.
type Metrics struct {
	// Scan outcomes by operation; outcome is "ok" or a domain error code
	Outcomes *prometheus.CounterVec

	Latency *prometheus.HistogramVec

	// Pending payments confirmed on retry after an interrupted collection
	Resumed prometheus.Counter

	// Audit writes that failed and failed the call
	AuditFailures prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Outcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "levy_gateway_scans_total",
			Help: "Agent scans by operation and outcome",
		}, []string{"operation", "outcome"}),

		Latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "levy_gateway_scan_duration_seconds",
			Help:    "Duration of agent scans including ledger and audit writes",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),

		Resumed: f.NewCounter(prometheus.CounterOpts{
			Name: "levy_gateway_resumed_payments_total",
			Help: "Pending payments confirmed by a retried collection",
		}),

		AuditFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "levy_gateway_audit_failures_total",
			Help: "Scans failed because the audit event could not be written",
		}),
	}
}

func (m *Metrics) IncrementOutcome(operation, outcome string) {
	if m != nil {
		m.Outcomes.WithLabelValues(operation, outcome).Inc()
	}
}

func (m *Metrics) ObserveLatency(operation string, d time.Duration) {
	if m != nil {
		m.Latency.WithLabelValues(operation).Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementResumed() {
	if m != nil {
		m.Resumed.Inc()
	}
}

func (m *Metrics) IncrementAuditFailure() {
	if m != nil {
		m.AuditFailures.Inc()
	}
}
