package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the enrichment module.
type Metrics struct {
	// Provider call latencies by provider and result category
	ProviderLatency *prometheus.HistogramVec

	// Pipeline stage latencies
	StageLatency *prometheus.HistogramVec

	// Enrichment runs by overall status
	EnrichmentOutcome *prometheus.CounterVec

	// Geo-risk sources used per fan-out
	GeoRiskSourcesUsed prometheus.Histogram

	// Parcel cache lookups by result: hit, miss, error
	CacheLookups *prometheus.CounterVec

	// Audit entries dropped or failed to persist
	AuditFailures *prometheus.CounterVec
}

// New creates a new Metrics instance with all enrichment metrics registered.
func New() *Metrics {
	return &Metrics{
		ProviderLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mutafriches_enrichment_provider_duration_seconds",
			Help:    "Duration of external provider calls by provider and result",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"provider", "result"}), // result: "ok" or an error category

		StageLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mutafriches_enrichment_stage_duration_seconds",
			Help:    "Duration of enrichment pipeline stages",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"stage"}),

		EnrichmentOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mutafriches_enrichment_runs_total",
			Help: "Total enrichment runs by status",
		}, []string{"status"}), // SUCCESS, PARTIAL, FAILED, MANDATORY_DATA_MISSING

		GeoRiskSourcesUsed: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "mutafriches_enrichment_georisk_sources_used",
			Help:    "Number of geo-risk sources that returned data per fan-out",
			Buckets: prometheus.LinearBuckets(0, 1, 14),
		}),

		CacheLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mutafriches_enrichment_cache_lookups_total",
			Help: "Enriched parcel cache lookups by result",
		}, []string{"result"}),

		AuditFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mutafriches_enrichment_audit_failures_total",
			Help: "Audit entries that could not be recorded, by reason",
		}, []string{"reason"}), // "queue_full", "store", "closed"
	}
}

// ObserveProviderCall implements providers.Observer.
func (m *Metrics) ObserveProviderCall(provider, result string, d time.Duration) {
	if m != nil {
		m.ProviderLatency.WithLabelValues(provider, result).Observe(d.Seconds())
	}
}

// ObserveStage records the duration of a pipeline stage.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m != nil {
		m.StageLatency.WithLabelValues(stage).Observe(d.Seconds())
	}
}

// IncrementOutcome records an enrichment run.
func (m *Metrics) IncrementOutcome(status string) {
	if m != nil {
		m.EnrichmentOutcome.WithLabelValues(status).Inc()
	}
}

// ObserveGeoRiskSourcesUsed records how many geo-risk sources answered.
func (m *Metrics) ObserveGeoRiskSourcesUsed(n int) {
	if m != nil {
		m.GeoRiskSourcesUsed.Observe(float64(n))
	}
}

// IncrementCacheLookup records a parcel cache lookup.
func (m *Metrics) IncrementCacheLookup(result string) {
	if m != nil {
		m.CacheLookups.WithLabelValues(result).Inc()
	}
}

// IncrementAuditFailure records an audit entry that was lost.
func (m *Metrics) IncrementAuditFailure(reason string) {
	if m != nil {
		m.AuditFailures.WithLabelValues(reason).Inc()
	}
}
