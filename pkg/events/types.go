package events

import (
	"context"
	"time"
)

// EventType classifies a governance event. The set is closed: emitting any
// other string fails with InvalidEventTypeError.
type EventType string

const (
	EventSubPolicyCreated  EventType = "sub_policy_created"
	EventServiceActivated  EventType = "service_activated"
	EventForumExpanded     EventType = "forum_expanded"
	EventStakeholderAdded  EventType = "stakeholder_added"
	EventPolicyExecuted    EventType = "policy_executed"
	EventForumCreated      EventType = "forum_created"
	EventServiceRegistered EventType = "service_registered"
	EventUserCreated       EventType = "user_created"
	EventUserUpdated       EventType = "user_updated"
	EventPaymentProcessed  EventType = "payment_processed"
	EventCartCheckout      EventType = "cart_checkout"
	EventActionExecuted    EventType = "action_executed"
)

// validEventTypes is the closed set accepted by Valid and the Emitter.
var validEventTypes = map[EventType]bool{
	EventSubPolicyCreated:  true,
	EventServiceActivated:  true,
	EventForumExpanded:     true,
	EventStakeholderAdded:  true,
	EventPolicyExecuted:    true,
	EventForumCreated:      true,
	EventServiceRegistered: true,
	EventUserCreated:       true,
	EventUserUpdated:       true,
	EventPaymentProcessed:  true,
	EventCartCheckout:      true,
	EventActionExecuted:    true,
}

// Valid returns true if the type is in the closed enumeration.
func (t EventType) Valid() bool {
	return validEventTypes[t]
}

// Event is one immutable governance audit record.
type Event struct {
	// Identity
	ID   string    `json:"id"` // UUID v4
	Type EventType `json:"type"`

	// Actor is the user who caused the transition.
	Actor string `json:"actor"`

	// Optional entity references
	ForumID  string `json:"forum_id,omitempty"`
	PolicyID string `json:"policy_id,omitempty"`

	Timestamp time.Time `json:"timestamp"`

	// Detail is a free-form map of transition specifics (instantiated ids,
	// outcomes, denial reasons, policy version stamps).
	Detail map[string]string `json:"detail,omitempty"`

	// CorrectsEventID references an earlier event this one corrects.
	// Corrections are new events; the original is never touched.
	CorrectsEventID string `json:"corrects_event_id,omitempty"`
}

// Query defines filter parameters for reading the audit trail.
type Query struct {
	// Filters
	Types    []EventType `json:"types,omitempty"`
	Actor    string      `json:"actor,omitempty"`
	ForumID  string      `json:"forum_id,omitempty"`
	PolicyID string      `json:"policy_id,omitempty"`

	// Time range (inclusive)
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`

	// Pagination
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// Matches reports whether an event satisfies the query filters (ignoring
// pagination). Shared by the memory backend and tests.
func (q *Query) Matches(e *Event) bool {
	if len(q.Types) > 0 {
		ok := false
		for _, t := range q.Types {
			if e.Type == t {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if q.Actor != "" && e.Actor != q.Actor {
		return false
	}
	if q.ForumID != "" && e.ForumID != q.ForumID {
		return false
	}
	if q.PolicyID != "" && e.PolicyID != q.PolicyID {
		return false
	}
	if q.Start != nil && e.Timestamp.Before(*q.Start) {
		return false
	}
	if q.End != nil && e.Timestamp.After(*q.End) {
		return false
	}
	return true
}

// Storage is the append-only audit storage interface.
// There is deliberately no update or delete: retention is export-only.
// Implementations must be safe for concurrent use.
type Storage interface {
	// Append persists one event.
	Append(ctx context.Context, e *Event) error

	// Query returns events matching the filters, oldest first.
	Query(ctx context.Context, q *Query) ([]*Event, error)

	// Count returns the number of events matching the filters.
	Count(ctx context.Context, q *Query) (int64, error)

	// Close releases backend resources.
	Close() error
}
