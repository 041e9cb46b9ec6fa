package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the criteria module.
type Metrics struct {
	// Evidence gathering latencies by source
	EvidenceLatency *prometheus.HistogramVec

	// Per-criterion outcomes by content type
	CriterionOutcome *prometheus.CounterVec

	// Owner-level decisions by owner kind
	OwnerOutcome *prometheus.CounterVec

	// Overall evaluation latency including evidence gathering
	EvaluateLatency prometheus.Histogram
}

// New creates a Metrics instance with all criteria module metrics
// registered on the default registerer.
func New() *Metrics {
	return &Metrics{
		EvidenceLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "merx_criteria_evidence_duration_seconds",
			Help:    "Duration of evidence gathering operations by source",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"source"}), // source: "cart", "catalog", "order_count", "order_sum"

		CriterionOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "merx_criteria_evaluations_total",
			Help: "Total criterion evaluations by content type and outcome",
		}, []string{"content_type", "outcome"}),

		OwnerOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "merx_criteria_owner_evaluations_total",
			Help: "Total owner-level decisions by owner kind and outcome",
		}, []string{"owner_kind", "outcome"}),

		EvaluateLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "merx_criteria_evaluate_duration_seconds",
			Help:    "Duration of full owner evaluation including evidence gathering",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// ObserveEvidenceLatency records the duration of one evidence fetch.
func (m *Metrics) ObserveEvidenceLatency(source string, d time.Duration) {
	if m != nil {
		m.EvidenceLatency.WithLabelValues(source).Observe(d.Seconds())
	}
}

// IncrementCriterion records a single criterion outcome.
func (m *Metrics) IncrementCriterion(contentType string, valid bool) {
	if m != nil {
		m.CriterionOutcome.WithLabelValues(contentType, outcome(valid)).Inc()
	}
}

// IncrementOwner records an owner-level decision.
func (m *Metrics) IncrementOwner(ownerKind string, valid bool) {
	if m != nil {
		m.OwnerOutcome.WithLabelValues(ownerKind, outcome(valid)).Inc()
	}
}

// ObserveEvaluateLatency records the total evaluation duration.
func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}

func outcome(valid bool) string {
	if valid {
		return "valid"
	}
	return "invalid"
}
