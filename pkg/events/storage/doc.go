// Package storage provides audit-trail storage backends.
//
// Two backends ship: an in-memory backend for tests and a SQLite backend
// (github.com/mattn/go-sqlite3) for durable deployments. Both are
// append-only: the events table has no update or delete path, matching the
// immutability contract of the audit trail.
package storage
