package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"

	"github.com/aletheon/eleutherios-mvp-sub002/pkg/events"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/governance"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/store"
)

// RegisterPolicyRequest registers a named policy from a rule document.
type RegisterPolicyRequest struct {
	// Name is the unique policy name other policies reference as a
	// template.
	Name string

	// OwnerID is the registering user, recorded as policy owner.
	OwnerID string

	// Visibility defaults to private.
	Visibility governance.Visibility

	// Document is the rule document text.
	Document []byte

	// Source names the document origin for error locations.
	Source string

	// VersionStamp identifies the document revision (a git commit SHA for
	// repository-sourced documents). Recorded on the registration event.
	VersionStamp string

	// Activate marks the policy active on registration; otherwise it
	// stays a draft.
	Activate bool
}

// RegisterPolicy parses and validates a rule document and stores it as a
// policy. The policy id derives from the name, so re-registering the same
// document converges instead of duplicating: rules the stored policy
// already has (by statement name) are kept with their execution state, new
// rules are appended.
func (e *Engine) RegisterPolicy(ctx context.Context, req RegisterPolicyRequest) (*governance.Policy, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("policy name is required")
	}

	parsed, err := e.parser.ParseDocument(req.Document, req.Source)
	if err != nil {
		return nil, err
	}
	for _, r := range parsed {
		if _, err := e.validator.Validate(r); err != nil {
			return nil, err
		}
	}

	id := policyIDPrefix + nameDigest(req.Name)
	visibility := req.Visibility
	if visibility == "" {
		visibility = governance.VisibilityPrivate
	}
	status := governance.PolicyStatusDraft
	if req.Activate {
		status = governance.PolicyStatusActive
	}

	_, _, err = e.store.GetPolicy(ctx, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		policy := &governance.Policy{
			ID:         id,
			Name:       req.Name,
			OwnerID:    req.OwnerID,
			Visibility: visibility,
			// Drafted first so initial appends do not bump the version.
			Status:       governance.PolicyStatusDraft,
			Version:      1,
			Stakeholders: []string{req.OwnerID},
			CreatedAt:    e.now(),
		}
		for _, r := range parsed {
			if err := policy.AppendRule(&governance.PolicyRule{
				ID:        "rul-" + e.newID(),
				Statement: r,
				Canonical: r.Canonical(),
				Outcome:   governance.OutcomePending,
			}); err != nil {
				return nil, err
			}
		}
		policy.Status = status

		if _, err := e.store.PutPolicy(ctx, policy, 0); err != nil {
			if errors.Is(err, store.ErrConflict) {
				// Concurrent registration of the same name; converge.
				existing, _, err := e.store.GetPolicy(ctx, id)
				return existing, err
			}
			return nil, err
		}

		opts := []events.EventOption{
			events.WithPolicy(id),
			events.WithDetail("op", "policy_registered"),
			events.WithDetail("name", req.Name),
			events.WithDetail("rules", strconv.Itoa(len(policy.Rules))),
		}
		if req.VersionStamp != "" {
			opts = append(opts, events.WithDetail("source_version", req.VersionStamp))
		}
		result := &ExecutionResult{}
		e.emit(ctx, result, events.EventActionExecuted, req.OwnerID, opts...)
		return policy, nil

	case err != nil:
		return nil, err
	}

	// Converge: append rules the stored policy does not have yet.
	var appended int
	updated, err := store.UpdatePolicy(ctx, e.store, id, e.updateAttempts, func(p *governance.Policy) error {
		appended = 0
		for _, r := range parsed {
			if p.Rule(r.Name) != nil {
				continue
			}
			if err := p.AppendRule(&governance.PolicyRule{
				ID:        "rul-" + e.newID(),
				Statement: r,
				Canonical: r.Canonical(),
				Outcome:   governance.OutcomePending,
			}); err != nil {
				return err
			}
			appended++
		}
		if req.Activate && p.Status == governance.PolicyStatusDraft {
			p.Status = governance.PolicyStatusActive
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if appended > 0 {
		opts := []events.EventOption{
			events.WithPolicy(id),
			events.WithDetail("op", "policy_updated"),
			events.WithDetail("name", req.Name),
			events.WithDetail("rules_appended", strconv.Itoa(appended)),
		}
		if req.VersionStamp != "" {
			opts = append(opts, events.WithDetail("source_version", req.VersionStamp))
		}
		result := &ExecutionResult{}
		e.emit(ctx, result, events.EventActionExecuted, req.OwnerID, opts...)
	}
	return updated, nil
}

// Policy returns a stored policy by id.
func (e *Engine) Policy(ctx context.Context, id string) (*governance.Policy, error) {
	p, _, err := e.store.GetPolicy(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &NotFoundError{Entity: "policy", ID: id}
	}
	return p, err
}

// Forum returns a stored forum by id.
func (e *Engine) Forum(ctx context.Context, id string) (*governance.Forum, error) {
	return e.loadForum(ctx, id)
}

// Activation returns a stored service activation by id.
func (e *Engine) Activation(ctx context.Context, id string) (*governance.ServiceActivation, error) {
	a, _, err := e.store.GetActivation(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &NotFoundError{Entity: "activation", ID: id}
	}
	return a, err
}

// nameDigest derives the stable id fragment for a policy name.
func nameDigest(name string) string {
	sum := sha256.Sum256([]byte(name))
	return hex.EncodeToString(sum[:])[:20]
}
