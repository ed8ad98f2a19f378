package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aletheon/eleutherios-mvp-sub002/pkg/config"
)

// ExecutionMetrics tracks rule execution.
//
// Metrics:
//   - eleu_engine_rule_executions_total: executions by target kind and outcome
//   - eleu_engine_rule_execution_duration_seconds: execution duration by kind
//   - eleu_engine_permission_denials_total: authorization denials by action
//   - eleu_engine_guard_failures_total: executions blocked by unmet guards
//   - eleu_engine_write_conflicts_total: optimistic-concurrency conflicts by entity
type ExecutionMetrics struct {
	executionsTotal   *prometheus.CounterVec
	executionDuration *prometheus.HistogramVec
	denialsTotal      *prometheus.CounterVec
	guardFailures     prometheus.Counter
	writeConflicts    *prometheus.CounterVec
}

// NewExecutionMetrics creates and registers execution metrics with the
// provided registry.
func NewExecutionMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ExecutionMetrics {
	em := &ExecutionMetrics{
		executionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rule_executions_total",
				Help:      "Total number of rule executions",
			},
			[]string{"kind", "outcome"},
		),

		executionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rule_execution_duration_seconds",
				Help:      "Duration of rule execution in seconds",
				// Executions touch the store a handful of times; most
				// finish well under 100ms even with CAS retries.
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 100µs to ~1.6s
			},
			[]string{"kind"},
		),

		denialsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "permission_denials_total",
				Help:      "Total number of executions denied by permission checks",
			},
			[]string{"action"},
		),

		guardFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "guard_failures_total",
				Help:      "Total number of executions blocked by unmet guard requirements",
			},
		),

		writeConflicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "write_conflicts_total",
				Help:      "Total number of revision conflicts on conditional writes",
			},
			[]string{"entity"},
		),
	}

	registry.MustRegister(
		em.executionsTotal,
		em.executionDuration,
		em.denialsTotal,
		em.guardFailures,
		em.writeConflicts,
	)

	return em
}

// RecordExecution records one rule execution.
//
// kind is the target kind ("forum", "service", "policy") and outcome is
// "succeeded" or "failed".
func (em *ExecutionMetrics) RecordExecution(kind, outcome string, duration time.Duration) {
	em.executionsTotal.WithLabelValues(kind, outcome).Inc()
	em.executionDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordDenial records a permission denial for an action.
func (em *ExecutionMetrics) RecordDenial(action string) {
	em.denialsTotal.WithLabelValues(action).Inc()
}

// RecordGuardFailure records an execution blocked by an unmet guard.
func (em *ExecutionMetrics) RecordGuardFailure() {
	em.guardFailures.Inc()
}

// RecordWriteConflict records a revision conflict on the named entity
// ("policy", "forum", "activation").
func (em *ExecutionMetrics) RecordWriteConflict(entity string) {
	em.writeConflicts.WithLabelValues(entity).Inc()
}
