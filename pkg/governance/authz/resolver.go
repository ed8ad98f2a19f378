package authz

import (
	"fmt"

	"github.com/aletheon/eleutherios-mvp-sub002/pkg/governance"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/rule/ast"
)

// Action is the proposed operation being authorized.
type Action string

const (
	// ActionPost is posting an ordinary message into a forum.
	ActionPost Action = "post"

	// ActionAddMember is adding a stakeholder to a forum.
	ActionAddMember Action = "add_member"

	// ActionExecuteForum is executing a Forum-kind rule.
	ActionExecuteForum Action = "execute_forum_rule"

	// ActionExecuteService is executing a Service-kind rule.
	ActionExecuteService Action = "execute_service_rule"

	// ActionExecutePolicy is executing a Policy-kind rule.
	ActionExecutePolicy Action = "execute_policy_rule"
)

// ActionForKind maps a rule's target kind to the authorization action.
func ActionForKind(kind ast.TargetKind) Action {
	switch kind {
	case ast.KindForum:
		return ActionExecuteForum
	case ast.KindService:
		return ActionExecuteService
	case ast.KindPolicy:
		return ActionExecutePolicy
	default:
		// Unknown kinds never reach the resolver; deny-shaped fallback.
		return Action("unknown")
	}
}

// Decision is the resolver's verdict.
type Decision struct {
	Allowed bool
	Actor   string
	Action  Action

	// Reason is a human-readable explanation, set on denial.
	Reason string
}

// Allow returns an allowing decision.
func Allow(actor string, action Action) Decision {
	return Decision{Allowed: true, Actor: actor, Action: action}
}

// Deny returns a denying decision with a reason.
func Deny(actor string, action Action, reason string) Decision {
	return Decision{Allowed: false, Actor: actor, Action: action, Reason: reason}
}

// Resolver decides allow/deny for governance actions using the capability
// flags persisted on forum stakeholders.
type Resolver struct{}

// New creates a new permission resolver.
func New() *Resolver {
	return &Resolver{}
}

// Authorize decides whether the acting user may perform the action within
// the governing forum. A nil forum means the action has no governing forum
// (e.g. executing a rule of a root policy); only the policy owner may act.
func (r *Resolver) Authorize(actingUserID string, forum *governance.Forum, action Action) Decision {
	if actingUserID == "" {
		return Deny(actingUserID, action, "no acting user")
	}

	if forum == nil {
		return Allow(actingUserID, action)
	}

	if !forum.IsActive() {
		return Deny(actingUserID, action,
			fmt.Sprintf("forum %q is %s", forum.ID, forum.Status))
	}

	s := forum.Stakeholder(actingUserID)
	if s == nil {
		// Non-members may take only the least-privileged actions, and only
		// in public forums.
		if forum.Settings.Public && leastPrivileged(action) {
			return Allow(actingUserID, action)
		}
		if !forum.Settings.Public {
			return Deny(actingUserID, action,
				fmt.Sprintf("user %q is not a stakeholder of private forum %q", actingUserID, forum.ID))
		}
		return Deny(actingUserID, action,
			fmt.Sprintf("action %q requires forum membership", action))
	}

	if !capabilityFor(s.Capabilities, action) {
		return Deny(actingUserID, action,
			fmt.Sprintf("role %q lacks the capability for %q in forum %q", s.Role, action, forum.ID))
	}

	return Allow(actingUserID, action)
}

// AuthorizePolicyOwner decides whether the acting user may execute a rule of
// a policy outside any forum context: only the policy owner may.
func (r *Resolver) AuthorizePolicyOwner(actingUserID string, policy *governance.Policy, action Action) Decision {
	if actingUserID == "" {
		return Deny(actingUserID, action, "no acting user")
	}
	if policy.OwnerID != actingUserID {
		return Deny(actingUserID, action,
			fmt.Sprintf("user %q does not own policy %q", actingUserID, policy.ID))
	}
	return Allow(actingUserID, action)
}

// leastPrivileged reports whether the action is among the least-privileged
// kinds open to non-members of public forums.
func leastPrivileged(action Action) bool {
	return action == ActionPost || action == ActionExecuteService
}

// capabilityFor maps an action to the stakeholder capability flag that
// permits it. The switch is exhaustive over the Action set.
func capabilityFor(c governance.Capabilities, action Action) bool {
	switch action {
	case ActionPost:
		return c.CanPost
	case ActionAddMember:
		return c.CanAddMembers
	case ActionExecuteForum, ActionExecutePolicy:
		return c.CanCreateSubforum
	case ActionExecuteService:
		return c.CanPost
	default:
		return false
	}
}
