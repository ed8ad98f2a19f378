// Package events defines the append-only governance audit trail.
//
// Every attempted and every successful state transition in the engine
// produces one GovernanceEvent. Events are never edited or deleted; a
// correction is a new event referencing the original. The audit trail is the
// system of record for "what happened".
//
// Event types form a closed enumeration; Emit rejects anything else with
// InvalidEventTypeError. Emission failures never silently fail the enclosing
// rule execution: the Emitter retries a bounded number of times and then
// surfaces an *EmissionError, which the engine reports as degraded success
// (state mutated, audit record pending) rather than a false failure.
//
// Storage backends live in pkg/events/storage (memory and SQLite); scheduled
// JSONL archival lives in pkg/events/retention.
package events
