// Package ast provides Abstract Syntax Tree (AST) definitions for Eleutherios
// rule statements.
//
// A rule statement is one line of conversation text that declares a governance
// action: create a coordination forum, activate an external service, or
// instantiate a child policy. The parser (pkg/rule/parser) turns one line into
// one *ast.Rule; validators and the execution engine inspect the AST without
// modifying it.
//
// # Core Types
//
// Rule: a single parsed rule statement (name, target kind, target, arguments, guards)
//
// TargetKind: closed enumeration of instantiable targets (Forum, Service, Policy)
//
// Value: a typed argument value (string, number, money, reference)
//
// Money: a currency amount with cent precision
//
// Location: source location (source name, line, column)
//
// # Basic Usage
//
//	rule, err := parser.New().ParseLine(`rule intake -> Forum("Housing Intake")`, loc)
//	if err != nil || rule == nil {
//	    // not a rule statement; treat as ordinary conversation
//	    return
//	}
//	fmt.Println(rule.Name, rule.Kind, rule.Target)
//
// # Immutability
//
// AST nodes should be treated as immutable after construction. The parser
// builds the AST once; validation and execution never mutate it.
package ast
