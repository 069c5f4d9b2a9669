package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the evaluation module.
type Metrics struct {
	// Scoring calls by cache result: hit, miss, bypass
	Evaluations *prometheus.CounterVec

	// Time spent in the scorer and estimator on a cache miss
	ScoringLatency prometheus.Histogram

	// Evaluation records that could not be persisted
	PersistFailures prometheus.Counter
}

// New creates a new Metrics instance with all evaluation metrics registered.
func New() *Metrics {
	return &Metrics{
		Evaluations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mutafriches_evaluations_total",
			Help: "Scoring calls by evaluation cache result",
		}, []string{"cache"}),

		ScoringLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "mutafriches_evaluation_scoring_duration_seconds",
			Help:    "Duration of scoring and reliability estimation",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}),

		PersistFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mutafriches_evaluation_persist_failures_total",
			Help: "Evaluation records that failed to persist",
		}),
	}
}

// IncrementEvaluation counts one scoring call.
func (m *Metrics) IncrementEvaluation(cache string) {
	if m != nil {
		m.Evaluations.WithLabelValues(cache).Inc()
	}
}

func (m *Metrics) ObserveScoring(d time.Duration) {
	if m != nil {
		m.ScoringLatency.Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementPersistFailure() {
	if m != nil {
		m.PersistFailures.Inc()
	}
}
