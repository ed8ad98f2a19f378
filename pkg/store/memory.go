package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/aletheon/eleutherios-mvp-sub002/pkg/governance"
)

// MemoryStore is an in-memory Store for tests and single-process use.
// Documents are kept JSON-encoded so readers always get isolated copies;
// concurrent writers race only through the revision check, exactly like the
// durable backends.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]*memoryDoc // key: kind "/" id
}

type memoryDoc struct {
	data []byte
	rev  Revision
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[string]*memoryDoc),
	}
}

// GetPolicy implements Store.
func (m *MemoryStore) GetPolicy(ctx context.Context, id string) (*governance.Policy, Revision, error) {
	var p governance.Policy
	rev, err := m.get(ctx, "policy", id, &p)
	if err != nil {
		return nil, 0, err
	}
	return &p, rev, nil
}

// PutPolicy implements Store.
func (m *MemoryStore) PutPolicy(ctx context.Context, p *governance.Policy, expected Revision) (Revision, error) {
	return m.put(ctx, "policy", p.ID, p, expected)
}

// FindPolicyByName implements Store. It scans policies and returns the one
// with the highest revision among those matching the name.
func (m *MemoryStore) FindPolicyByName(ctx context.Context, name string) (*governance.Policy, Revision, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var (
		best    *governance.Policy
		bestRev Revision
	)
	for key, doc := range m.docs {
		if len(key) < len("policy/") || key[:len("policy/")] != "policy/" {
			continue
		}
		var p governance.Policy
		if err := json.Unmarshal(doc.data, &p); err != nil {
			return nil, 0, fmt.Errorf("corrupt policy document %q: %w", key, err)
		}
		if p.Name == name && (best == nil || p.CreatedAt.After(best.CreatedAt)) {
			cp := p
			best = &cp
			bestRev = doc.rev
		}
	}
	if best == nil {
		return nil, 0, ErrNotFound
	}
	return best, bestRev, nil
}

// GetForum implements Store.
func (m *MemoryStore) GetForum(ctx context.Context, id string) (*governance.Forum, Revision, error) {
	var f governance.Forum
	rev, err := m.get(ctx, "forum", id, &f)
	if err != nil {
		return nil, 0, err
	}
	return &f, rev, nil
}

// PutForum implements Store.
func (m *MemoryStore) PutForum(ctx context.Context, f *governance.Forum, expected Revision) (Revision, error) {
	return m.put(ctx, "forum", f.ID, f, expected)
}

// GetActivation implements Store.
func (m *MemoryStore) GetActivation(ctx context.Context, id string) (*governance.ServiceActivation, Revision, error) {
	var a governance.ServiceActivation
	rev, err := m.get(ctx, "activation", id, &a)
	if err != nil {
		return nil, 0, err
	}
	return &a, rev, nil
}

// PutActivation implements Store.
func (m *MemoryStore) PutActivation(ctx context.Context, a *governance.ServiceActivation, expected Revision) (Revision, error) {
	return m.put(ctx, "activation", a.ID, a, expected)
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	return nil
}

func (m *MemoryStore) get(ctx context.Context, kind, id string, out interface{}) (Revision, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[kind+"/"+id]
	if !ok {
		return 0, ErrNotFound
	}
	if err := json.Unmarshal(doc.data, out); err != nil {
		return 0, fmt.Errorf("corrupt %s document %q: %w", kind, id, err)
	}
	return doc.rev, nil
}

func (m *MemoryStore) put(ctx context.Context, kind, id string, v interface{}, expected Revision) (Revision, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if id == "" {
		return 0, fmt.Errorf("%s document has no id", kind)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("encode %s document %q: %w", kind, id, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := kind + "/" + id
	doc, exists := m.docs[key]

	switch {
	case !exists && expected != 0:
		return 0, ErrNotFound
	case exists && doc.rev != expected:
		return 0, ErrConflict
	}

	next := expected + 1
	m.docs[key] = &memoryDoc{data: data, rev: next}
	return next, nil
}
