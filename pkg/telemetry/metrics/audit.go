package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aletheon/eleutherios-mvp-sub002/pkg/config"
)

// AuditMetrics tracks the audit trail.
//
// Metrics:
//   - eleu_engine_events_emitted_total: events appended by type
//   - eleu_engine_event_emission_failures_total: events lost after retry exhaustion
//   - eleu_engine_events_archived_total: events exported by the archiver
type AuditMetrics struct {
	emittedTotal  *prometheus.CounterVec
	failuresTotal *prometheus.CounterVec
	archivedTotal prometheus.Counter
}

// NewAuditMetrics creates and registers audit metrics with the provided
// registry.
func NewAuditMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *AuditMetrics {
	am := &AuditMetrics{
		emittedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "events_emitted_total",
				Help:      "Total number of governance events appended to the audit trail",
			},
			[]string{"type"},
		),

		failuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "event_emission_failures_total",
				Help:      "Total number of governance events dropped after emission retries were exhausted",
			},
			[]string{"type"},
		),

		archivedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "events_archived_total",
				Help:      "Total number of audit events exported to archive files",
			},
		),
	}

	registry.MustRegister(am.emittedTotal, am.failuresTotal, am.archivedTotal)

	return am
}

// RecordEmitted records a successfully appended event.
func (am *AuditMetrics) RecordEmitted(eventType string) {
	am.emittedTotal.WithLabelValues(eventType).Inc()
}

// RecordEmissionFailure records an event dropped after retry exhaustion.
func (am *AuditMetrics) RecordEmissionFailure(eventType string) {
	am.failuresTotal.WithLabelValues(eventType).Inc()
}

// RecordArchived records n events exported by an archival run.
func (am *AuditMetrics) RecordArchived(n int64) {
	am.archivedTotal.Add(float64(n))
}
