// Package metrics collects Prometheus metrics for the governance engine.
//
// The Collector owns a private registry and registers execution and audit
// metrics against it. Metric names follow <namespace>_<subsystem>_<name>
// with namespace and subsystem taken from configuration, so a default
// deployment exposes eleu_engine_rule_executions_total and friends at the
// configured exposition path.
package metrics
