// Package governance defines the shared domain model of Eleutherios:
// policies, rules, forums, stakeholders, and service activations.
//
// A Policy is a named, versioned governance document owning an ordered list
// of rules. A Forum is a coordination space owning its stakeholder list and
// message/file counters. A ServiceActivation records that a named external
// capability was bound to a forum or policy.
//
// Stakeholder capabilities are computed once at join time from the closed
// Role enumeration and persisted; a role change must explicitly recompute the
// capability set. Nothing here re-derives capabilities dynamically.
//
// The types in this package are plain data plus small invariant-preserving
// methods. Persistence lives in pkg/store; mutation protocols (optimistic
// concurrency, retries) live with the store and the engine.
package governance
