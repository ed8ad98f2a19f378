// Package health implements liveness and readiness probes.
//
// Liveness reports that the process is running. Readiness runs every
// registered component check (document store, event storage, policy
// source) concurrently and aggregates the results. A single unhealthy
// component degrades the whole response and flips the status code to 503.
package health
