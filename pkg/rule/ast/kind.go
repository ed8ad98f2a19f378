package ast

// TargetKind represents the kind of entity a rule instantiates.
// The set is closed: any other word in the target position means the line is
// ordinary conversation, not a rule.
type TargetKind string

const (
	KindForum   TargetKind = "Forum"   // A coordination space with stakeholders
	KindService TargetKind = "Service" // An external capability binding
	KindPolicy  TargetKind = "Policy"  // A child governance policy
)

// ParseTargetKind maps a target-kind word to its TargetKind.
// The second return value is false for anything outside the closed set.
func ParseTargetKind(s string) (TargetKind, bool) {
	switch TargetKind(s) {
	case KindForum, KindService, KindPolicy:
		return TargetKind(s), true
	default:
		return "", false
	}
}

// Valid returns true if the kind is one of the closed target kinds.
func (k TargetKind) Valid() bool {
	_, ok := ParseTargetKind(string(k))
	return ok
}
