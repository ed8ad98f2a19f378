package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLiveness(t *testing.T) {
	c := New(0)
	status := c.Liveness(context.Background())
	if status.Status != "ok" {
		t.Errorf("status = %q, want ok", status.Status)
	}
}

func TestReadinessAllHealthy(t *testing.T) {
	c := New(time.Second)
	c.Register("store", func(ctx context.Context) error { return nil })
	c.Register("events", func(ctx context.Context) error { return nil })

	status := c.Readiness(context.Background())
	if status.Status != "ready" {
		t.Fatalf("status = %q, want ready", status.Status)
	}
	if len(status.Checks) != 2 {
		t.Errorf("len(Checks) = %d, want 2", len(status.Checks))
	}
	if status.Checks["store"].Status != "ok" {
		t.Errorf("store check = %+v", status.Checks["store"])
	}
}

func TestReadinessDegraded(t *testing.T) {
	c := New(time.Second)
	c.Register("store", func(ctx context.Context) error { return nil })
	c.Register("events", func(ctx context.Context) error {
		return errors.New("database locked")
	})

	status := c.Readiness(context.Background())
	if status.Status != "degraded" {
		t.Fatalf("status = %q, want degraded", status.Status)
	}
	events := status.Checks["events"]
	if events.Status != "unhealthy" || events.Message != "database locked" {
		t.Errorf("events check = %+v", events)
	}
}

func TestReadinessCheckTimeout(t *testing.T) {
	c := New(20 * time.Millisecond)
	c.Register("slow", func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
			return nil
		}
	})

	status := c.Readiness(context.Background())
	if status.Status != "degraded" {
		t.Fatalf("status = %q, want degraded on timeout", status.Status)
	}
}

func TestReadinessHandlerStatusCodes(t *testing.T) {
	c := New(time.Second)
	handler := c.ReadinessHandler()

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("healthy readiness status = %d, want 200", rec.Code)
	}

	c.Register("store", func(ctx context.Context) error {
		return errors.New("down")
	})
	rec = httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("degraded readiness status = %d, want 503", rec.Code)
	}

	var status Status
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if status.Status != "degraded" {
		t.Errorf("body status = %q", status.Status)
	}
}

func TestLivenessHandlerRejectsPost(t *testing.T) {
	c := New(time.Second)
	rec := httptest.NewRecorder()
	c.LivenessHandler()(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
