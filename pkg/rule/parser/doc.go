// Package parser parses Eleutherios rule statements into Abstract Syntax Trees.
//
// The grammar is line-oriented. Each line is parsed independently:
//
//	rule <Identifier> -> Forum("<DisplayName>", key=value, ...)
//	rule <Identifier> -> Service("<ServiceName>", key=value, ...) requires [<ref>, ...]
//	rule <Identifier> -> Policy("<PolicyRef>", key=value, ...)
//
// Argument values are typed by lexical form: quoted strings, bare identifiers
// (resolved later as stakeholder or policy references), integer or decimal
// literals, and currency-prefixed amounts ("$12.50") that must be non-negative
// with at most two decimal digits. Both "key=value" and "key: value" argument
// separators are accepted; the canonical form emits "=".
//
// Parsing is total and side-effect-free. A line that does not open with the
// rule shape, or whose target kind is outside the closed Forum/Service/Policy
// set, is not an error: ParseLine returns (nil, nil) and the caller treats the
// line as ordinary conversation. A line that opens with the rule shape but is
// malformed inside returns a syntax error, which the engine also treats as
// conversation while linting surfaces it to the author.
//
// # Basic Usage
//
//	p := parser.New()
//	rule, err := p.ParseLine(`rule pay -> Service("StripePayment", amount=$5.00)`, loc)
//	switch {
//	case err != nil:
//	    // malformed rule statement; lint reports it, the engine ignores it
//	case rule == nil:
//	    // ordinary conversation
//	default:
//	    // a parsed rule, ready for validation
//	}
//
// # Canonical Form
//
// ast.Rule.Canonical re-serializes a parsed rule to canonical text. For all
// well-formed statements, parse followed by re-serialization is idempotent,
// which makes the canonical form a stable input for idempotency digests.
package parser
