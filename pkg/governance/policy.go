package governance

import (
	"fmt"
	"time"

	"github.com/aletheon/eleutherios-mvp-sub002/pkg/rule/ast"
)

// PolicyStatus represents the lifecycle state of a policy.
type PolicyStatus string

const (
	PolicyStatusDraft    PolicyStatus = "draft"
	PolicyStatusActive   PolicyStatus = "active"
	PolicyStatusArchived PolicyStatus = "archived"
)

// Visibility controls who may read a policy.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// RuleOutcome is the execution state of a stored rule.
// Guards resolve against it: only OutcomeSucceeded satisfies a guard.
type RuleOutcome string

const (
	OutcomePending   RuleOutcome = "pending"
	OutcomeSucceeded RuleOutcome = "succeeded"
	OutcomeFailed    RuleOutcome = "failed"
)

// Policy is a named governance document owning an ordered list of rules.
// The rules of a given version are immutable once the policy is active;
// appending a rule to an active policy produces a new version.
type Policy struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	OwnerID    string       `json:"owner_id"`
	Visibility Visibility   `json:"visibility"`
	Status     PolicyStatus `json:"status"`

	// Version increments whenever the rule list of an active policy changes.
	Version int `json:"version"`

	// Rules in declaration order; order drives guard evaluation.
	Rules []*PolicyRule `json:"rules"`

	// ChildPolicyIDs lists policies instantiated by this policy's rules.
	ChildPolicyIDs []string `json:"child_policy_ids,omitempty"`

	// Stakeholders participating in this policy's workflow.
	Stakeholders []string `json:"stakeholders,omitempty"`

	// TemplateRef names the template this policy was instantiated from,
	// empty for root policies.
	TemplateRef string `json:"template_ref,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	ExecutedAt *time.Time `json:"executed_at,omitempty"`
}

// PolicyRule is one stored clause of a policy: the parsed statement plus its
// execution state. A rule instantiates its target at most once; once an
// Instantiated*ID back-reference is set, re-execution returns it unchanged.
type PolicyRule struct {
	ID        string    `json:"id"`
	Statement *ast.Rule `json:"statement"`

	// Canonical is the canonical text form of the statement, the stable
	// input for the idempotency digest.
	Canonical string `json:"canonical"`

	// Back-references, set once on successful execution.
	InstantiatedForumID   string `json:"instantiated_forum_id,omitempty"`
	InstantiatedServiceID string `json:"instantiated_service_id,omitempty"`
	InstantiatedPolicyID  string `json:"instantiated_policy_id,omitempty"`

	Outcome    RuleOutcome `json:"outcome"`
	ExecutedBy string      `json:"executed_by,omitempty"`
	ExecutedAt *time.Time  `json:"executed_at,omitempty"`
}

// Name returns the rule's statement name.
func (r *PolicyRule) Name() string {
	if r.Statement == nil {
		return ""
	}
	return r.Statement.Name
}

// InstantiatedID returns the back-reference for the rule's kind, or empty if
// the rule has not executed.
func (r *PolicyRule) InstantiatedID() string {
	switch {
	case r.InstantiatedForumID != "":
		return r.InstantiatedForumID
	case r.InstantiatedServiceID != "":
		return r.InstantiatedServiceID
	case r.InstantiatedPolicyID != "":
		return r.InstantiatedPolicyID
	}
	return ""
}

// SetInstantiatedID records the back-reference for the rule's kind.
func (r *PolicyRule) SetInstantiatedID(kind ast.TargetKind, id string) {
	switch kind {
	case ast.KindForum:
		r.InstantiatedForumID = id
	case ast.KindService:
		r.InstantiatedServiceID = id
	case ast.KindPolicy:
		r.InstantiatedPolicyID = id
	}
}

// Rule returns the stored rule with the given id or statement name, or nil.
func (p *Policy) Rule(idOrName string) *PolicyRule {
	for _, r := range p.Rules {
		if r.ID == idOrName || r.Name() == idOrName {
			return r
		}
	}
	return nil
}

// HasChild returns true if the child policy id is already linked.
func (p *Policy) HasChild(childID string) bool {
	for _, id := range p.ChildPolicyIDs {
		if id == childID {
			return true
		}
	}
	return false
}

// AppendRule adds a stored rule to the policy. Active policies version up on
// append so the rules of any given version stay immutable; archived policies
// reject changes.
func (p *Policy) AppendRule(r *PolicyRule) error {
	if p.Status == PolicyStatusArchived {
		return fmt.Errorf("policy %q is archived", p.ID)
	}
	if r.Statement == nil {
		return fmt.Errorf("rule has no statement")
	}
	if existing := p.Rule(r.Statement.Name); existing != nil {
		return fmt.Errorf("policy %q already has a rule named %q", p.ID, r.Statement.Name)
	}
	if p.Status == PolicyStatusActive {
		p.Version++
	}
	p.Rules = append(p.Rules, r)
	return nil
}

// AllRulesSucceeded returns true if every rule of the policy has executed to
// a successful outcome.
func (p *Policy) AllRulesSucceeded() bool {
	if len(p.Rules) == 0 {
		return false
	}
	for _, r := range p.Rules {
		if r.Outcome != OutcomeSucceeded {
			return false
		}
	}
	return true
}
