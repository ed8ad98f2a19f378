// Package errors provides rich error types for rule parsing and validation.
//
// Errors carry a type, a message, a source location, and an optional
// suggestion. A line that cannot be read as a rule is ordinary conversation,
// and callers in the engine treat it as such. Validation errors mean the line was recognized as a rule but is
// malformed, and they are reported to the rule's author.
//
// ErrorList accumulates multiple errors so that linting a policy document
// reports every problem in one pass instead of failing on the first.
package errors
