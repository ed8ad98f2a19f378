// Package server exposes the governance engine over HTTP.
//
// The API is JSON over a handful of routes: rule execution, forum
// submission, stakeholder management, activation transitions, audit
// queries, and the usual operational endpoints (health probes and
// Prometheus metrics). Engine errors map onto HTTP status codes; a
// degraded execution still answers 200 with the warning attached.
package server
