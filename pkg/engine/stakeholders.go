package engine

import (
	"context"

	"github.com/aletheon/eleutherios-mvp-sub002/pkg/events"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/governance"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/governance/authz"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/store"
)

// AddStakeholder adds a user to a forum with the given role. The acting
// user needs the add-members capability in that forum. Capabilities for
// the new stakeholder are computed from the role at join time and
// persisted with the membership.
func (e *Engine) AddStakeholder(ctx context.Context, forumID, actor, userID string, role governance.Role) (*ExecutionResult, error) {
	forum, err := e.loadForum(ctx, forumID)
	if err != nil {
		return nil, err
	}

	if decision := e.resolver.Authorize(actor, forum, authz.ActionAddMember); !decision.Allowed {
		if e.metrics != nil {
			e.metrics.Execution().RecordDenial(string(authz.ActionAddMember))
		}
		return nil, &PermissionDeniedError{Actor: actor, Action: authz.ActionAddMember, Reason: decision.Reason}
	}

	joinedAt := e.now()
	if _, err := store.UpdateForum(ctx, e.store, forumID, e.updateAttempts, func(f *governance.Forum) error {
		return f.AddStakeholder(userID, role, joinedAt)
	}); err != nil {
		return nil, err
	}

	result := &ExecutionResult{}
	e.emit(ctx, result, events.EventStakeholderAdded, actor,
		events.WithForum(forumID),
		events.WithPolicy(forum.PolicyID),
		events.WithDetail("user", userID),
		events.WithDetail("role", string(role)),
	)
	return result, nil
}

// SetStakeholderRole changes an existing stakeholder's role. The persisted
// capability set is recomputed from the new role as part of the same
// conditional write.
func (e *Engine) SetStakeholderRole(ctx context.Context, forumID, actor, userID string, role governance.Role) (*ExecutionResult, error) {
	forum, err := e.loadForum(ctx, forumID)
	if err != nil {
		return nil, err
	}

	if decision := e.resolver.Authorize(actor, forum, authz.ActionAddMember); !decision.Allowed {
		if e.metrics != nil {
			e.metrics.Execution().RecordDenial(string(authz.ActionAddMember))
		}
		return nil, &PermissionDeniedError{Actor: actor, Action: authz.ActionAddMember, Reason: decision.Reason}
	}

	if _, err := store.UpdateForum(ctx, e.store, forumID, e.updateAttempts, func(f *governance.Forum) error {
		return f.SetStakeholderRole(userID, role)
	}); err != nil {
		return nil, err
	}

	result := &ExecutionResult{}
	e.emit(ctx, result, events.EventUserUpdated, actor,
		events.WithForum(forumID),
		events.WithPolicy(forum.PolicyID),
		events.WithDetail("user", userID),
		events.WithDetail("role", string(role)),
	)
	return result, nil
}
