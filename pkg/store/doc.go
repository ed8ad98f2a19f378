// Package store persists governance documents (policies, forums, service
// activations) with optimistic concurrency control.
//
// Every read returns the document together with a revision; every write is
// conditional on the revision being unchanged since the read. A conflicting
// write returns ErrConflict, and the Update* helpers own the bounded
// read-modify-write retry loop so the discipline is a single shared
// primitive rather than re-implemented per call site. Blind last-writer-wins
// overwrites are not possible through this interface.
//
// Two backends ship: an in-memory store for tests and single-process use,
// and a SQLite store (modernc.org/sqlite) for durable single-node
// deployments.
package store
