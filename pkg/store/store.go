package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/aletheon/eleutherios-mvp-sub002/pkg/governance"
)

// Revision identifies a document version for conditional writes.
// Revision 0 means "the document must not exist yet" (create).
type Revision int64

var (
	// ErrNotFound is returned when the requested document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrConflict is returned when a conditional write loses the race:
	// the document changed since it was read.
	ErrConflict = errors.New("document revision conflict")
)

// ConflictError is returned by the Update helpers after the bounded retry
// count is exhausted. It wraps ErrConflict so errors.Is still matches.
type ConflictError struct {
	Entity   string // "policy", "forum", "activation"
	ID       string
	Attempts int
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("conditional write on %s %q lost the race after %d attempts", e.Entity, e.ID, e.Attempts)
}

// Unwrap makes errors.Is(err, ErrConflict) true.
func (e *ConflictError) Unwrap() error { return ErrConflict }

// Store is the document store consumed by the execution engine.
// Implementations must be safe for concurrent use; all methods honor the
// caller-supplied context deadline.
type Store interface {
	// GetPolicy returns the policy and its current revision.
	GetPolicy(ctx context.Context, id string) (*governance.Policy, Revision, error)

	// PutPolicy writes the policy conditionally on the expected revision.
	// Expected revision 0 creates; ErrConflict reports a lost race.
	PutPolicy(ctx context.Context, p *governance.Policy, expected Revision) (Revision, error)

	// FindPolicyByName returns the newest policy with the given name.
	// Policy rules reference templates by name, not id.
	FindPolicyByName(ctx context.Context, name string) (*governance.Policy, Revision, error)

	// GetForum returns the forum and its current revision.
	GetForum(ctx context.Context, id string) (*governance.Forum, Revision, error)

	// PutForum writes the forum conditionally on the expected revision.
	PutForum(ctx context.Context, f *governance.Forum, expected Revision) (Revision, error)

	// GetActivation returns the service activation and its current revision.
	GetActivation(ctx context.Context, id string) (*governance.ServiceActivation, Revision, error)

	// PutActivation writes the activation conditionally on the expected revision.
	PutActivation(ctx context.Context, a *governance.ServiceActivation, expected Revision) (Revision, error)

	// Close releases backend resources.
	Close() error
}
