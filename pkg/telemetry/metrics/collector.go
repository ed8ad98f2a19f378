package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aletheon/eleutherios-mvp-sub002/pkg/config"
)

// Collector owns the Prometheus registry and every metric family the
// engine records. When metrics are disabled in configuration the collector
// still hands out valid instruments; they are simply never exported.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	execution *ExecutionMetrics
	audit     *AuditMetrics
}

// NewCollector creates a collector with the given configuration and
// registry. If registry is nil a fresh private registry is used.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		config:   cfg,
		registry: registry,
	}
	c.execution = NewExecutionMetrics(cfg, registry)
	c.audit = NewAuditMetrics(cfg, registry)

	return c
}

// Execution returns the rule execution metric family.
func (c *Collector) Execution() *ExecutionMetrics {
	return c.execution
}

// Audit returns the audit trail metric family.
func (c *Collector) Audit() *AuditMetrics {
	return c.audit
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
