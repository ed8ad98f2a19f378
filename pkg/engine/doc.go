// Package engine executes governance rules.
//
// The engine is the write path of the system. Given a stored policy rule it
// authorizes the acting user against the governing forum's capability
// table, resolves guard requirements against sibling rule outcomes, and
// dispatches on the rule's target kind: Forum rules create forums, Service
// rules create service activations, Policy rules instantiate child
// policies from templates.
//
// Every state transition lands in the document store through a
// revision-conditional write and is recorded on the audit trail. Target
// identifiers are derived deterministically from the originating rule, so
// a duplicate execution request converges on the entity the first request
// created instead of creating a second one.
package engine
