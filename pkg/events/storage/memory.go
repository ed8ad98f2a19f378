package storage

import (
	"context"
	"sync"

	"github.com/aletheon/eleutherios-mvp-sub002/pkg/events"
)

// MemoryStorage is an in-memory append-only event store for tests and
// single-process use.
type MemoryStorage struct {
	mu     sync.RWMutex
	events []*events.Event
}

// NewMemoryStorage creates an empty in-memory event store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Append implements events.Storage.
func (m *MemoryStorage) Append(ctx context.Context, e *events.Event) error {
	if err := ctx.Err(); err != nil {
		return &events.StorageError{Backend: "memory", Operation: "append", Cause: err}
	}

	// Copy so later caller mutations cannot reach the stored record.
	cp := *e
	if e.Detail != nil {
		cp.Detail = make(map[string]string, len(e.Detail))
		for k, v := range e.Detail {
			cp.Detail[k] = v
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, &cp)
	return nil
}

// Query implements events.Storage.
func (m *MemoryStorage) Query(ctx context.Context, q *events.Query) ([]*events.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, &events.StorageError{Backend: "memory", Operation: "query", Cause: err}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []*events.Event
	for _, e := range m.events {
		if q == nil || q.Matches(e) {
			matched = append(matched, e)
		}
	}

	if q != nil {
		if q.Offset > 0 {
			if q.Offset >= len(matched) {
				return nil, nil
			}
			matched = matched[q.Offset:]
		}
		if q.Limit > 0 && q.Limit < len(matched) {
			matched = matched[:q.Limit]
		}
	}

	out := make([]*events.Event, len(matched))
	copy(out, matched)
	return out, nil
}

// Count implements events.Storage.
func (m *MemoryStorage) Count(ctx context.Context, q *events.Query) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, &events.StorageError{Backend: "memory", Operation: "count", Cause: err}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, e := range m.events {
		if q == nil || q.Matches(e) {
			n++
		}
	}
	return n, nil
}

// Close implements events.Storage.
func (m *MemoryStorage) Close() error {
	return nil
}
