package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the levy ledger.
type Metrics struct {
	// Ledger operation outcomes: "ok" or a domain error code
	Outcomes *prometheus.CounterVec

	// Unique index hits, by index
	StoreConflicts *prometheus.CounterVec

	OperationLatency *prometheus.HistogramVec

	// Amount recorded, by period
	AmountSettled *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Outcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "levy_ledger_operations_total",
			Help: "Ledger operations by operation and outcome",
		}, []string{"operation", "outcome"}),

		StoreConflicts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "levy_ledger_store_conflicts_total",
			Help: "Inserts rejected by a unique index",
		}, []string{"index"}),

		OperationLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "levy_ledger_operation_duration_seconds",
			Help:    "Duration of ledger operations including storage",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),

		AmountSettled: f.NewCounterVec(prometheus.CounterOpts{
			Name: "levy_ledger_amount_settled_total",
			Help: "Sum of confirmed levy amounts",
		}, []string{"period"}),
	}
}

func (m *Metrics) IncrementOutcome(operation, outcome string) {
	if m != nil {
		m.Outcomes.WithLabelValues(operation, outcome).Inc()
	}
}

func (m *Metrics) IncrementConflict(index string) {
	if m != nil {
		m.StoreConflicts.WithLabelValues(index).Inc()
	}
}

func (m *Metrics) ObserveLatency(operation string, d time.Duration) {
	if m != nil {
		m.OperationLatency.WithLabelValues(operation).Observe(d.Seconds())
	}
}

func (m *Metrics) AddSettled(period string, amount float64) {
	if m != nil {
		m.AmountSettled.WithLabelValues(period).Add(amount)
	}
}
