// Package telemetry groups the engine's observability concerns.
//
// Subpackages:
//   - logging: structured slog output with PII redaction
//   - metrics: Prometheus metric collection and exposition
//   - health: liveness and readiness endpoints
package telemetry
