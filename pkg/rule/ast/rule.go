package ast

import (
	"strconv"
	"strings"
)

// Rule represents a single parsed rule statement.
// A rule names an action, a target kind, a target, an ordered argument list,
// and an optional ordered list of guard references to prior rule outcomes.
type Rule struct {
	Name     string     // Rule name, unique within its policy
	Kind     TargetKind // Target kind (Forum, Service, Policy)
	Target   string     // Target: display name, service name, or policy reference
	Args     []Argument // Ordered argument list (keys unique)
	Guards   []string   // Guard references ("requires [a, b]"), in order
	Location Location   // Source location
}

// Argument is one key/value pair in a rule's argument list.
// Order of appearance is preserved; it feeds the canonical form and the
// idempotency digest.
type Argument struct {
	Key   string
	Value Value
}

// Arg returns the value for the given argument key.
// The second return value is false if the key is absent.
func (r *Rule) Arg(key string) (Value, bool) {
	for _, a := range r.Args {
		if a.Key == key {
			return a.Value, true
		}
	}
	return Value{}, false
}

// HasArg returns true if the rule carries an argument with the given key.
func (r *Rule) HasArg(key string) bool {
	_, ok := r.Arg(key)
	return ok
}

// StringArg returns the string content of an argument.
// Returns empty string if the argument is absent or not a quoted string.
func (r *Rule) StringArg(key string) string {
	if v, ok := r.Arg(key); ok && v.Type == ValueTypeString {
		return v.Str
	}
	return ""
}

// RefArg returns the referenced identifier of an argument.
// Returns empty string if the argument is absent or not a bare identifier.
func (r *Rule) RefArg(key string) string {
	if v, ok := r.Arg(key); ok && v.Type == ValueTypeReference {
		return v.Ref
	}
	return ""
}

// MoneyArg returns the money content of an argument.
// The second return value is false if the argument is absent or not money.
func (r *Rule) MoneyArg(key string) (Money, bool) {
	if v, ok := r.Arg(key); ok && v.Type == ValueTypeMoney {
		return v.Money, true
	}
	return Money{}, false
}

// HasGuards returns true if the rule carries guard references.
func (r *Rule) HasGuards() bool {
	return len(r.Guards) > 0
}

// Canonical returns the canonical text form of the rule statement.
// Parsing a canonical form and re-serializing it yields the same text, which
// makes the canonical form a stable input for idempotency digests.
func (r *Rule) Canonical() string {
	var sb strings.Builder

	sb.WriteString("rule ")
	sb.WriteString(r.Name)
	sb.WriteString(" -> ")
	sb.WriteString(string(r.Kind))
	sb.WriteString("(")
	sb.WriteString(strconv.Quote(r.Target))

	for _, a := range r.Args {
		sb.WriteString(", ")
		sb.WriteString(a.Key)
		sb.WriteString("=")
		sb.WriteString(a.Value.String())
	}
	sb.WriteString(")")

	if len(r.Guards) > 0 {
		sb.WriteString(" requires [")
		sb.WriteString(strings.Join(r.Guards, ", "))
		sb.WriteString("]")
	}

	return sb.String()
}
