package engine

import (
	"fmt"

	"github.com/aletheon/eleutherios-mvp-sub002/pkg/governance"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/governance/authz"
)

// NotFoundError reports that a referenced entity does not exist. It covers
// both storage misses and dangling references inside documents, such as a
// Policy rule naming a template that was never registered.
type NotFoundError struct {
	Entity string // "policy", "rule", "forum", "activation", "template", "stakeholder"
	ID     string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

// PermissionDeniedError reports that the permission resolver denied the
// acting user.
type PermissionDeniedError struct {
	Actor  string
	Action authz.Action
	Reason string
}

// Error implements the error interface.
func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("user %q denied %q: %s", e.Actor, e.Action, e.Reason)
}

// GuardNotSatisfiedError reports that a rule's guard requirement resolved
// to a sibling rule that has not executed successfully.
type GuardNotSatisfiedError struct {
	PolicyID string
	RuleName string
	Guard    string

	// Outcome is the guard rule's current outcome, or empty when the guard
	// names no rule in the policy.
	Outcome governance.RuleOutcome
}

// Error implements the error interface.
func (e *GuardNotSatisfiedError) Error() string {
	if e.Outcome == "" {
		return fmt.Sprintf("rule %q requires %q, which is not a rule of policy %q",
			e.RuleName, e.Guard, e.PolicyID)
	}
	return fmt.Sprintf("rule %q requires %q, which is %s", e.RuleName, e.Guard, e.Outcome)
}

// ExecutionError wraps a dispatch failure with the rule that failed.
// The rule's stored outcome is already "failed" by the time the caller
// sees this error.
type ExecutionError struct {
	PolicyID string
	RuleID   string
	Cause    error
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	return fmt.Sprintf("executing rule %q of policy %q: %v", e.RuleID, e.PolicyID, e.Cause)
}

// Unwrap returns the dispatch failure.
func (e *ExecutionError) Unwrap() error { return e.Cause }
