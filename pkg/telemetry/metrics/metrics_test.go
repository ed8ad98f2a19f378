package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/aletheon/eleutherios-mvp-sub002/pkg/config"
)

func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{
		Enabled:   true,
		Namespace: "eleu",
		Subsystem: "engine",
		Path:      "/metrics",
	}
}

func TestExecutionMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	c := NewCollector(testConfig(), registry)

	c.Execution().RecordExecution("forum", "succeeded", 5*time.Millisecond)
	c.Execution().RecordExecution("forum", "succeeded", 7*time.Millisecond)
	c.Execution().RecordExecution("service", "failed", time.Millisecond)
	c.Execution().RecordDenial("execute_service")
	c.Execution().RecordWriteConflict("policy")

	got := testutil.ToFloat64(c.Execution().executionsTotal.WithLabelValues("forum", "succeeded"))
	if got != 2 {
		t.Errorf("forum/succeeded executions = %v, want 2", got)
	}
	got = testutil.ToFloat64(c.Execution().executionsTotal.WithLabelValues("service", "failed"))
	if got != 1 {
		t.Errorf("service/failed executions = %v, want 1", got)
	}
	got = testutil.ToFloat64(c.Execution().denialsTotal.WithLabelValues("execute_service"))
	if got != 1 {
		t.Errorf("denials = %v, want 1", got)
	}
	got = testutil.ToFloat64(c.Execution().writeConflicts.WithLabelValues("policy"))
	if got != 1 {
		t.Errorf("write conflicts = %v, want 1", got)
	}
}

func TestAuditMetrics(t *testing.T) {
	c := NewCollector(testConfig(), nil)

	c.Audit().RecordEmitted("forum_created")
	c.Audit().RecordEmitted("forum_created")
	c.Audit().RecordEmissionFailure("policy_executed")
	c.Audit().RecordArchived(42)

	if got := testutil.ToFloat64(c.Audit().emittedTotal.WithLabelValues("forum_created")); got != 2 {
		t.Errorf("emitted = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.Audit().failuresTotal.WithLabelValues("policy_executed")); got != 1 {
		t.Errorf("failures = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.Audit().archivedTotal); got != 42 {
		t.Errorf("archived = %v, want 42", got)
	}
}

func TestHandlerExposition(t *testing.T) {
	c := NewCollector(testConfig(), nil)
	c.Execution().RecordExecution("policy", "succeeded", time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "eleu_engine_rule_executions_total") {
		t.Errorf("exposition missing execution counter:\n%s", body)
	}
}
