// Package validator enforces the per-kind argument schema on parsed rules.
//
// Validation is pure and deterministic: the same AST always yields the same
// verdict, and no external state is consulted. Existence of referenced
// entities (policy templates, stakeholders) is checked later by the executor,
// which reports NotFound; the validator only checks shape.
//
// Per-kind required arguments:
//
//   - Forum rules require a non-empty target display name.
//   - Service rules require a non-empty service name; payment-kind services
//     additionally require payerId, payeeId, and a strictly positive amount,
//     with payer and payee referencing different stakeholders.
//   - Policy rules require a non-empty policy reference; a version argument,
//     when present, must be a semantic version.
//
// Unknown argument keys are preserved but not validated (forward-compatible
// passthrough). The validated result is a ValidRule carrying a kind-specific
// payload struct, so the dispatcher can match exhaustively on the target kind
// without re-inspecting raw arguments.
package validator
