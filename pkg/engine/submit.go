package engine

import (
	"context"

	"github.com/aletheon/eleutherios-mvp-sub002/pkg/events"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/governance"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/governance/authz"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/rule/ast"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/store"
)

// SubmitRequest is one line of text posted into a forum's conversation.
type SubmitRequest struct {
	ForumID     string
	SubmittedBy string
	Text        string
}

// SubmitResult reports what a submission became.
type SubmitResult struct {
	// Posted is true when the text was an ordinary message, not a rule.
	Posted bool `json:"posted"`

	// MessageCount is the forum's counter after a posted message.
	MessageCount int `json:"message_count,omitempty"`

	// RuleID is the appended rule's id when the text parsed as a rule.
	RuleID string `json:"rule_id,omitempty"`

	// Execution is the appended rule's execution result.
	Execution *ExecutionResult `json:"execution,omitempty"`
}

// Submit routes one line of forum conversation. Text that is not a rule
// statement counts as an ordinary message. Text that parses as a rule is
// appended to the forum's policy and executed immediately in the forum's
// permission context. Malformed rule interiors are rejected as errors, not
// demoted to messages.
func (e *Engine) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	forum, err := e.loadForum(ctx, req.ForumID)
	if err != nil {
		return nil, err
	}

	parsed, err := e.parser.ParseLine(req.Text, ast.Location{
		Source: "forum:" + req.ForumID,
		Line:   1,
		Column: 1,
	})
	if err != nil {
		return nil, err
	}

	if parsed == nil {
		return e.postMessage(ctx, forum, req)
	}

	if _, err := e.validator.Validate(parsed); err != nil {
		return nil, err
	}

	action := authz.ActionForKind(parsed.Kind)
	if decision := e.resolver.Authorize(req.SubmittedBy, forum, action); !decision.Allowed {
		if e.metrics != nil {
			e.metrics.Execution().RecordDenial(string(action))
		}
		return nil, &PermissionDeniedError{Actor: req.SubmittedBy, Action: action, Reason: decision.Reason}
	}

	newRule := &governance.PolicyRule{
		ID:        "rul-" + e.newID(),
		Statement: parsed,
		Canonical: parsed.Canonical(),
		Outcome:   governance.OutcomePending,
	}
	if _, err := store.UpdatePolicy(ctx, e.store, forum.PolicyID, e.updateAttempts, func(p *governance.Policy) error {
		return p.AppendRule(newRule)
	}); err != nil {
		return nil, err
	}

	execution, err := e.Execute(ctx, ExecutionRequest{
		PolicyID:   forum.PolicyID,
		RuleID:     newRule.ID,
		ForumID:    forum.ID,
		ExecutedBy: req.SubmittedBy,
	})
	if err != nil {
		return nil, err
	}

	return &SubmitResult{RuleID: newRule.ID, Execution: execution}, nil
}

// postMessage records an ordinary conversation message: the forum's
// message counter moves, nothing else does.
func (e *Engine) postMessage(ctx context.Context, forum *governance.Forum, req SubmitRequest) (*SubmitResult, error) {
	if decision := e.resolver.Authorize(req.SubmittedBy, forum, authz.ActionPost); !decision.Allowed {
		if e.metrics != nil {
			e.metrics.Execution().RecordDenial(string(authz.ActionPost))
		}
		return nil, &PermissionDeniedError{Actor: req.SubmittedBy, Action: authz.ActionPost, Reason: decision.Reason}
	}

	updated, err := store.UpdateForum(ctx, e.store, forum.ID, e.updateAttempts, func(f *governance.Forum) error {
		if !f.IsActive() {
			return &PermissionDeniedError{
				Actor:  req.SubmittedBy,
				Action: authz.ActionPost,
				Reason: "forum is not active",
			}
		}
		f.MessageCount++
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &ExecutionResult{}
	e.emit(ctx, result, events.EventActionExecuted, req.SubmittedBy,
		events.WithForum(forum.ID),
		events.WithPolicy(forum.PolicyID),
		events.WithDetail("op", "message_posted"),
	)

	return &SubmitResult{
		Posted:       true,
		MessageCount: updated.MessageCount,
		Execution:    result,
	}, nil
}
