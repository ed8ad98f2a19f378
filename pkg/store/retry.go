package store

import (
	"context"
	"errors"

	"github.com/aletheon/eleutherios-mvp-sub002/pkg/governance"
)

// DefaultUpdateAttempts is the bounded retry count for conditional writes.
const DefaultUpdateAttempts = 3

// UpdatePolicy runs the read-modify-write cycle on a policy: read the
// current document, apply fn, write conditionally on the revision being
// unchanged. On conflict the cycle retries up to attempts times before
// returning a *ConflictError. Errors from fn abort without retrying.
func UpdatePolicy(ctx context.Context, s Store, id string, attempts int, fn func(*governance.Policy) error) (*governance.Policy, error) {
	if attempts <= 0 {
		attempts = DefaultUpdateAttempts
	}

	for i := 0; i < attempts; i++ {
		p, rev, err := s.GetPolicy(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := fn(p); err != nil {
			return nil, err
		}
		if _, err := s.PutPolicy(ctx, p, rev); err != nil {
			if errors.Is(err, ErrConflict) {
				continue
			}
			return nil, err
		}
		return p, nil
	}

	return nil, &ConflictError{Entity: "policy", ID: id, Attempts: attempts}
}

// UpdateForum runs the read-modify-write cycle on a forum with bounded
// retries. See UpdatePolicy for the discipline.
func UpdateForum(ctx context.Context, s Store, id string, attempts int, fn func(*governance.Forum) error) (*governance.Forum, error) {
	if attempts <= 0 {
		attempts = DefaultUpdateAttempts
	}

	for i := 0; i < attempts; i++ {
		f, rev, err := s.GetForum(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := fn(f); err != nil {
			return nil, err
		}
		if _, err := s.PutForum(ctx, f, rev); err != nil {
			if errors.Is(err, ErrConflict) {
				continue
			}
			return nil, err
		}
		return f, nil
	}

	return nil, &ConflictError{Entity: "forum", ID: id, Attempts: attempts}
}

// UpdateActivation runs the read-modify-write cycle on a service activation
// with bounded retries. See UpdatePolicy for the discipline.
func UpdateActivation(ctx context.Context, s Store, id string, attempts int, fn func(*governance.ServiceActivation) error) (*governance.ServiceActivation, error) {
	if attempts <= 0 {
		attempts = DefaultUpdateAttempts
	}

	for i := 0; i < attempts; i++ {
		a, rev, err := s.GetActivation(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := fn(a); err != nil {
			return nil, err
		}
		if _, err := s.PutActivation(ctx, a, rev); err != nil {
			if errors.Is(err, ErrConflict) {
				continue
			}
			return nil, err
		}
		return a, nil
	}

	return nil, &ConflictError{Entity: "activation", ID: id, Attempts: attempts}
}
