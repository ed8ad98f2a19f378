package events

import (
	"testing"
	"time"
)

func TestEventTypeValid(t *testing.T) {
	valid := []EventType{
		EventSubPolicyCreated, EventServiceActivated, EventForumExpanded,
		EventStakeholderAdded, EventPolicyExecuted, EventForumCreated,
		EventServiceRegistered, EventUserCreated, EventUserUpdated,
		EventPaymentProcessed, EventCartCheckout, EventActionExecuted,
	}
	for _, et := range valid {
		if !et.Valid() {
			t.Errorf("%q not recognized as valid", et)
		}
	}
	for _, et := range []EventType{"", "forum_deleted", "FORUM_CREATED"} {
		if et.Valid() {
			t.Errorf("%q accepted, want rejection", et)
		}
	}
}

func TestQueryMatches(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	event := &Event{
		Type:      EventForumCreated,
		Actor:     "u-1",
		ForumID:   "frm-1",
		PolicyID:  "pol-1",
		Timestamp: base,
	}

	before := base.Add(-time.Hour)
	after := base.Add(time.Hour)

	tests := []struct {
		name  string
		query Query
		want  bool
	}{
		{"empty query", Query{}, true},
		{"matching type", Query{Types: []EventType{EventForumCreated}}, true},
		{"type among several", Query{Types: []EventType{EventPolicyExecuted, EventForumCreated}}, true},
		{"wrong type", Query{Types: []EventType{EventPolicyExecuted}}, false},
		{"matching actor", Query{Actor: "u-1"}, true},
		{"wrong actor", Query{Actor: "u-2"}, false},
		{"matching forum", Query{ForumID: "frm-1"}, true},
		{"wrong forum", Query{ForumID: "frm-2"}, false},
		{"matching policy", Query{PolicyID: "pol-1"}, true},
		{"wrong policy", Query{PolicyID: "pol-2"}, false},
		{"inside window", Query{Start: &before, End: &after}, true},
		{"boundary is inclusive", Query{Start: &base, End: &base}, true},
		{"before window", Query{Start: &after}, false},
		{"after window", Query{End: &before}, false},
		{"combined filters", Query{Actor: "u-1", ForumID: "frm-1", Types: []EventType{EventForumCreated}}, true},
		{"combined mismatch", Query{Actor: "u-1", ForumID: "frm-2"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.query.Matches(event); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}
