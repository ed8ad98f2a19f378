package engine

import (
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/governance"
)

// checkGuards resolves every guard reference of the rule against its
// sibling rules in the same policy. A guard is satisfied only by a sibling
// whose outcome is succeeded; references to rules of other policies never
// resolve.
func checkGuards(policy *governance.Policy, rule *governance.PolicyRule) error {
	if rule.Statement == nil {
		return nil
	}
	for _, guard := range rule.Statement.Guards {
		g := policy.Rule(guard)
		if g == nil {
			return &GuardNotSatisfiedError{
				PolicyID: policy.ID,
				RuleName: rule.Name(),
				Guard:    guard,
			}
		}
		if g.Outcome != governance.OutcomeSucceeded {
			return &GuardNotSatisfiedError{
				PolicyID: policy.ID,
				RuleName: rule.Name(),
				Guard:    guard,
				Outcome:  g.Outcome,
			}
		}
	}
	return nil
}
