// Package authz decides whether an acting stakeholder may perform a proposed
// governance action.
//
// The resolver is pure: it reads the forum state and the capability flags
// persisted on the stakeholder at join time and returns an Allow/Deny
// decision with a human-readable reason. It never mutates state and never
// re-derives capabilities from roles.
//
// Policy: a user absent from the governing forum's stakeholder list may act
// only if the forum is public and the action is the least-privileged kind
// (posting a message or proposing a Service rule). Forum and Policy rules
// require the stakeholder's CanCreateSubforum flag; adding members requires
// CanAddMembers.
package authz
