package engine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aletheon/eleutherios-mvp-sub002/pkg/events"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/governance"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/governance/authz"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/rule/ast"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/rule/validator"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/store"
)

// Execute runs one stored rule to completion.
//
// The pipeline is: load, idempotency short-circuit, authorization, guard
// resolution, schema validation, kind dispatch, back-reference write,
// audit. A rule that already executed returns its recorded back-reference
// without side effects. Audit emission failure degrades the result but
// does not fail the execution.
func (e *Engine) Execute(ctx context.Context, req ExecutionRequest) (*ExecutionResult, error) {
	start := e.now()

	policy, _, err := e.store.GetPolicy(ctx, req.PolicyID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &NotFoundError{Entity: "policy", ID: req.PolicyID}
		}
		return nil, err
	}

	rule := policy.Rule(req.RuleID)
	if rule == nil {
		return nil, &NotFoundError{Entity: "rule", ID: req.RuleID}
	}
	if rule.Statement == nil {
		return nil, &ExecutionError{PolicyID: policy.ID, RuleID: rule.ID,
			Cause: fmt.Errorf("stored rule has no statement")}
	}
	kind := rule.Statement.Kind

	result := &ExecutionResult{Kind: kind}

	// A rule instantiates its target at most once.
	if rule.Outcome == governance.OutcomeSucceeded && rule.InstantiatedID() != "" {
		result.InstantiatedID = rule.InstantiatedID()
		result.AlreadyExecuted = true
		return result, nil
	}

	var forum *governance.Forum
	if req.ForumID != "" {
		forum, err = e.loadForum(ctx, req.ForumID)
		if err != nil {
			return nil, err
		}
	}

	action := authz.ActionForKind(kind)
	var decision authz.Decision
	if forum != nil {
		decision = e.resolver.Authorize(req.ExecutedBy, forum, action)
	} else {
		decision = e.resolver.AuthorizePolicyOwner(req.ExecutedBy, policy, action)
	}
	if !decision.Allowed {
		if e.metrics != nil {
			e.metrics.Execution().RecordDenial(string(action))
		}
		e.logger.Info("execution denied",
			"policy_id", policy.ID,
			"rule", rule.Name(),
			"actor", req.ExecutedBy,
			"reason", decision.Reason,
		)
		return nil, &PermissionDeniedError{Actor: req.ExecutedBy, Action: action, Reason: decision.Reason}
	}

	if err := checkGuards(policy, rule); err != nil {
		if e.metrics != nil {
			e.metrics.Execution().RecordGuardFailure()
		}
		return nil, err
	}

	valid, err := e.validator.Validate(rule.Statement)
	if err != nil {
		e.markFailed(ctx, req.PolicyID, rule.ID, req.ExecutedBy)
		e.recordExecution(kind, "failed", start)
		return nil, &ExecutionError{PolicyID: policy.ID, RuleID: rule.ID, Cause: err}
	}

	var instantiatedID string
	switch spec := valid.Spec.(type) {
	case validator.ForumSpec:
		instantiatedID, err = e.executeForum(ctx, result, policy, rule, spec, req)
	case validator.ServiceSpec:
		instantiatedID, err = e.executeService(ctx, result, policy, rule, spec, req)
	case validator.PolicySpec:
		instantiatedID, err = e.executePolicy(ctx, result, policy, rule, spec, req, forum)
	default:
		err = fmt.Errorf("unhandled target kind %q", kind)
	}
	if err != nil {
		e.markFailed(ctx, req.PolicyID, rule.ID, req.ExecutedBy)
		e.recordExecution(kind, "failed", start)
		return nil, &ExecutionError{PolicyID: policy.ID, RuleID: rule.ID, Cause: err}
	}
	result.InstantiatedID = instantiatedID

	// Record the back-reference and outcome on the owning policy. Losing a
	// revision race here is recoverable: the instantiated entity has a
	// deterministic id, so a retried request converges on it.
	var policyCompleted bool
	now := e.now()
	_, err = store.UpdatePolicy(ctx, e.store, req.PolicyID, e.updateAttempts, func(p *governance.Policy) error {
		r := p.Rule(req.RuleID)
		if r == nil {
			return &NotFoundError{Entity: "rule", ID: req.RuleID}
		}
		r.SetInstantiatedID(kind, instantiatedID)
		r.Outcome = governance.OutcomeSucceeded
		r.ExecutedBy = req.ExecutedBy
		r.ExecutedAt = &now
		if kind == ast.KindPolicy && !p.HasChild(instantiatedID) {
			p.ChildPolicyIDs = append(p.ChildPolicyIDs, instantiatedID)
		}
		policyCompleted = p.AllRulesSucceeded() && p.ExecutedAt == nil
		if policyCompleted {
			p.ExecutedAt = &now
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) && e.metrics != nil {
			e.metrics.Execution().RecordWriteConflict("policy")
		}
		e.recordExecution(kind, "failed", start)
		return nil, err
	}

	if policyCompleted {
		e.emit(ctx, result, events.EventPolicyExecuted, req.ExecutedBy,
			events.WithPolicy(policy.ID),
			events.WithDetail("rule_count", strconv.Itoa(len(policy.Rules))),
		)
	}

	e.recordExecution(kind, "succeeded", start)
	e.logger.Info("rule executed",
		"policy_id", policy.ID,
		"rule", rule.Name(),
		"kind", kind,
		"instantiated_id", instantiatedID,
		"actor", req.ExecutedBy,
	)
	return result, nil
}

// executeForum creates the forum a Forum rule describes and seeds its
// stakeholders: the acting user as owner, the rule's default members as
// members.
func (e *Engine) executeForum(ctx context.Context, result *ExecutionResult, policy *governance.Policy, rule *governance.PolicyRule, spec validator.ForumSpec, req ExecutionRequest) (string, error) {
	id := targetID(policy.ID, rule, ast.KindForum)

	forum := &governance.Forum{
		ID:       id,
		Title:    spec.DisplayName,
		PolicyID: policy.ID,
		RuleID:   rule.ID,
		Settings: governance.ForumSettings{
			Public:           spec.Public,
			AllowFileUploads: true,
		},
		Status:    governance.ForumStatusActive,
		CreatedAt: e.now(),
	}
	if req.ForumID != "" {
		forum.ParentForumID = req.ForumID
	}

	if err := forum.AddStakeholder(req.ExecutedBy, governance.RoleOwner, e.now()); err != nil {
		return "", err
	}
	for _, member := range spec.DefaultMembers {
		if member == req.ExecutedBy {
			continue
		}
		if err := forum.AddStakeholder(member, governance.RoleMember, e.now()); err != nil {
			return "", err
		}
	}

	if _, err := e.store.PutForum(ctx, forum, 0); err != nil {
		if errors.Is(err, store.ErrConflict) {
			// A duplicate request created the forum first; converge on it.
			if e.metrics != nil {
				e.metrics.Execution().RecordWriteConflict("forum")
			}
			return id, nil
		}
		return "", err
	}

	e.emit(ctx, result, events.EventForumCreated, req.ExecutedBy,
		events.WithForum(id),
		events.WithPolicy(policy.ID),
		events.WithDetail("title", spec.DisplayName),
		events.WithDetail("rule", rule.Name()),
	)
	for _, member := range spec.DefaultMembers {
		if member == req.ExecutedBy {
			continue
		}
		e.emit(ctx, result, events.EventStakeholderAdded, req.ExecutedBy,
			events.WithForum(id),
			events.WithPolicy(policy.ID),
			events.WithDetail("user", member),
			events.WithDetail("role", string(governance.RoleMember)),
		)
	}
	if forum.ParentForumID != "" {
		e.emit(ctx, result, events.EventForumExpanded, req.ExecutedBy,
			events.WithForum(forum.ParentForumID),
			events.WithPolicy(policy.ID),
			events.WithDetail("subforum_id", id),
		)
	}

	return id, nil
}

// executeService creates the service activation a Service rule describes.
// Fast-tracked activations move straight to running.
func (e *Engine) executeService(ctx context.Context, result *ExecutionResult, policy *governance.Policy, rule *governance.PolicyRule, spec validator.ServiceSpec, req ExecutionRequest) (string, error) {
	id := targetID(policy.ID, rule, ast.KindService)

	act := &governance.ServiceActivation{
		ID:          id,
		ServiceName: spec.ServiceName,
		PolicyID:    policy.ID,
		RuleID:      rule.ID,
		ForumID:     req.ForumID,
		Config:      spec.Config,
		Status:      governance.ActivationPending,
		CreatedAt:   e.now(),
	}
	if spec.Payment != nil {
		act.Payment = &governance.PaymentDetails{
			PayerID:     spec.Payment.PayerID,
			PayeeID:     spec.Payment.PayeeID,
			AmountCents: spec.Payment.Amount.Cents,
			Currency:    spec.Payment.Amount.Currency,
			Metadata:    spec.Payment.Metadata,
		}
	}
	if spec.FastTrack {
		if err := act.Start(e.now()); err != nil {
			return "", err
		}
	}

	if _, err := e.store.PutActivation(ctx, act, 0); err != nil {
		if errors.Is(err, store.ErrConflict) {
			if e.metrics != nil {
				e.metrics.Execution().RecordWriteConflict("activation")
			}
			return id, nil
		}
		return "", err
	}

	e.emit(ctx, result, events.EventServiceRegistered, req.ExecutedBy,
		events.WithForum(req.ForumID),
		events.WithPolicy(policy.ID),
		events.WithDetail("activation_id", id),
		events.WithDetail("service", spec.ServiceName),
	)
	if spec.FastTrack {
		e.emit(ctx, result, events.EventServiceActivated, req.ExecutedBy,
			events.WithForum(req.ForumID),
			events.WithPolicy(policy.ID),
			events.WithDetail("activation_id", id),
			events.WithDetail("service", spec.ServiceName),
		)
	}

	return id, nil
}

// executePolicy instantiates a child policy from the referenced template.
// The child gets fresh pending rules copied from the template, the acting
// user as owner, and the governing forum's stakeholders carried forward so
// the child workflow starts with the same participants.
func (e *Engine) executePolicy(ctx context.Context, result *ExecutionResult, policy *governance.Policy, rule *governance.PolicyRule, spec validator.PolicySpec, req ExecutionRequest, forum *governance.Forum) (string, error) {
	template, _, err := e.store.FindPolicyByName(ctx, spec.TemplateRef)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", &NotFoundError{Entity: "template", ID: spec.TemplateRef}
		}
		return "", err
	}

	id := targetID(policy.ID, rule, ast.KindPolicy)

	child := &governance.Policy{
		ID: id,
		// The instance name stays distinct from the template name so
		// template lookups keep resolving to the template.
		Name:         template.Name + "@" + id,
		OwnerID:      req.ExecutedBy,
		Visibility:   template.Visibility,
		Status:       governance.PolicyStatusActive,
		Version:      1,
		TemplateRef:  template.Name,
		Stakeholders: []string{req.ExecutedBy},
		CreatedAt:    e.now(),
	}
	if forum != nil {
		for _, s := range forum.Stakeholders {
			if s.UserID == req.ExecutedBy {
				continue
			}
			child.Stakeholders = append(child.Stakeholders, s.UserID)
		}
	}
	for _, tr := range template.Rules {
		child.Rules = append(child.Rules, &governance.PolicyRule{
			ID:        "rul-" + e.newID(),
			Statement: tr.Statement,
			Canonical: tr.Canonical,
			Outcome:   governance.OutcomePending,
		})
	}

	if _, err := e.store.PutPolicy(ctx, child, 0); err != nil {
		if errors.Is(err, store.ErrConflict) {
			if e.metrics != nil {
				e.metrics.Execution().RecordWriteConflict("policy")
			}
			return id, nil
		}
		return "", err
	}

	e.emit(ctx, result, events.EventSubPolicyCreated, req.ExecutedBy,
		events.WithForum(req.ForumID),
		events.WithPolicy(policy.ID),
		events.WithDetail("child_policy_id", id),
		events.WithDetail("template", template.Name),
		events.WithDetail("template_version", spec.Version),
	)

	return id, nil
}

// markFailed records a failed outcome on the stored rule. A secondary
// write failure is logged and swallowed; the caller already has the
// primary error.
func (e *Engine) markFailed(ctx context.Context, policyID, ruleID, actor string) {
	now := e.now()
	_, err := store.UpdatePolicy(ctx, e.store, policyID, e.updateAttempts, func(p *governance.Policy) error {
		r := p.Rule(ruleID)
		if r == nil {
			return &NotFoundError{Entity: "rule", ID: ruleID}
		}
		r.Outcome = governance.OutcomeFailed
		r.ExecutedBy = actor
		r.ExecutedAt = &now
		return nil
	})
	if err != nil {
		e.logger.Error("failed to record rule failure",
			"policy_id", policyID,
			"rule_id", ruleID,
			"error", err,
		)
	}
}

func (e *Engine) recordExecution(kind ast.TargetKind, outcome string, start time.Time) {
	if e.metrics == nil {
		return
	}
	e.metrics.Execution().RecordExecution(string(kind), outcome, e.now().Sub(start))
}
