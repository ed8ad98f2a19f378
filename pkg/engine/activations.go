package engine

import (
	"context"
	"errors"
	"strconv"

	"github.com/aletheon/eleutherios-mvp-sub002/pkg/events"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/governance"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/governance/authz"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/store"
)

// StartActivation moves a pending service activation to running.
func (e *Engine) StartActivation(ctx context.Context, activationID, actor string) (*ExecutionResult, error) {
	return e.transitionActivation(ctx, activationID, actor,
		func(a *governance.ServiceActivation) error { return a.Start(e.now()) },
		func(result *ExecutionResult, a *governance.ServiceActivation) {
			e.emit(ctx, result, events.EventServiceActivated, actor,
				events.WithForum(a.ForumID),
				events.WithPolicy(a.PolicyID),
				events.WithDetail("activation_id", a.ID),
				events.WithDetail("service", a.ServiceName),
			)
		})
}

// CompleteActivation moves a running service activation to completed.
// Payment-carrying activations additionally record the processed payment
// on the audit trail.
func (e *Engine) CompleteActivation(ctx context.Context, activationID, actor string) (*ExecutionResult, error) {
	return e.transitionActivation(ctx, activationID, actor,
		func(a *governance.ServiceActivation) error { return a.Complete(e.now()) },
		func(result *ExecutionResult, a *governance.ServiceActivation) {
			if a.Payment != nil {
				e.emit(ctx, result, events.EventPaymentProcessed, actor,
					events.WithForum(a.ForumID),
					events.WithPolicy(a.PolicyID),
					events.WithDetail("activation_id", a.ID),
					events.WithDetail("payer", a.Payment.PayerID),
					events.WithDetail("payee", a.Payment.PayeeID),
					events.WithDetail("amount_cents", strconv.FormatInt(a.Payment.AmountCents, 10)),
					events.WithDetail("currency", a.Payment.Currency),
				)
				return
			}
			e.emit(ctx, result, events.EventActionExecuted, actor,
				events.WithForum(a.ForumID),
				events.WithPolicy(a.PolicyID),
				events.WithDetail("op", "activation_completed"),
				events.WithDetail("activation_id", a.ID),
			)
		})
}

// CancelActivation cancels a pending or running service activation.
func (e *Engine) CancelActivation(ctx context.Context, activationID, actor string) (*ExecutionResult, error) {
	return e.transitionActivation(ctx, activationID, actor,
		func(a *governance.ServiceActivation) error { return a.Cancel(e.now()) },
		func(result *ExecutionResult, a *governance.ServiceActivation) {
			e.emit(ctx, result, events.EventActionExecuted, actor,
				events.WithForum(a.ForumID),
				events.WithPolicy(a.PolicyID),
				events.WithDetail("op", "activation_cancelled"),
				events.WithDetail("activation_id", a.ID),
			)
		})
}

// transitionActivation authorizes the actor in the activation's context,
// applies the transition under a conditional write, and emits the
// transition's audit record.
func (e *Engine) transitionActivation(ctx context.Context, activationID, actor string, transition func(*governance.ServiceActivation) error, record func(*ExecutionResult, *governance.ServiceActivation)) (*ExecutionResult, error) {
	act, _, err := e.store.GetActivation(ctx, activationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &NotFoundError{Entity: "activation", ID: activationID}
		}
		return nil, err
	}

	var decision authz.Decision
	if act.ForumID != "" {
		forum, err := e.loadForum(ctx, act.ForumID)
		if err != nil {
			return nil, err
		}
		decision = e.resolver.Authorize(actor, forum, authz.ActionExecuteService)
	} else {
		policy, _, err := e.store.GetPolicy(ctx, act.PolicyID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, &NotFoundError{Entity: "policy", ID: act.PolicyID}
			}
			return nil, err
		}
		decision = e.resolver.AuthorizePolicyOwner(actor, policy, authz.ActionExecuteService)
	}
	if !decision.Allowed {
		if e.metrics != nil {
			e.metrics.Execution().RecordDenial(string(authz.ActionExecuteService))
		}
		return nil, &PermissionDeniedError{Actor: actor, Action: authz.ActionExecuteService, Reason: decision.Reason}
	}

	updated, err := store.UpdateActivation(ctx, e.store, activationID, e.updateAttempts, transition)
	if err != nil {
		return nil, err
	}

	result := &ExecutionResult{}
	record(result, updated)
	return result, nil
}
