package governance

import (
	"fmt"
	"time"
)

// ForumStatus represents the lifecycle state of a forum.
type ForumStatus string

const (
	ForumStatusActive   ForumStatus = "active"
	ForumStatusArchived ForumStatus = "archived"
	ForumStatusDeleted  ForumStatus = "deleted"
)

// ForumSettings are per-forum behavior switches.
type ForumSettings struct {
	// Public forums accept least-privileged actions from non-members.
	Public bool `json:"public"`

	// ApprovalRequired gates joins behind an owner/moderator approval.
	ApprovalRequired bool `json:"approval_required"`

	// AllowFileUploads enables file posting for capable stakeholders.
	AllowFileUploads bool `json:"allow_file_uploads"`
}

// Forum is a coordination space spawned by a Forum rule.
// It owns its stakeholder list and its message/file counters.
type Forum struct {
	ID    string `json:"id"`
	Title string `json:"title"`

	// Originating policy and rule
	PolicyID string `json:"policy_id"`
	RuleID   string `json:"rule_id"`

	// ParentForumID is set when the forum was spawned from inside another
	// forum's conversation (a sub-forum).
	ParentForumID string `json:"parent_forum_id,omitempty"`

	Stakeholders []*ForumStakeholder `json:"stakeholders"`
	Settings     ForumSettings       `json:"settings"`

	// Counters
	MessageCount int `json:"message_count"`
	FileCount    int `json:"file_count"`

	Status    ForumStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}

// Stakeholder returns the stakeholder with the given user id, or nil.
func (f *Forum) Stakeholder(userID string) *ForumStakeholder {
	for _, s := range f.Stakeholders {
		if s.UserID == userID {
			return s
		}
	}
	return nil
}

// HasStakeholder returns true if the user participates in the forum.
func (f *Forum) HasStakeholder(userID string) bool {
	return f.Stakeholder(userID) != nil
}

// AddStakeholder appends a stakeholder with role-derived capabilities.
// User identifiers are unique within a forum; adding an existing user fails.
func (f *Forum) AddStakeholder(userID string, role Role, joinedAt time.Time) error {
	if userID == "" {
		return fmt.Errorf("stakeholder user id cannot be empty")
	}
	if !role.Valid() {
		return fmt.Errorf("invalid role %q", role)
	}
	if f.HasStakeholder(userID) {
		return fmt.Errorf("user %q is already a stakeholder of forum %q", userID, f.ID)
	}
	f.Stakeholders = append(f.Stakeholders, NewStakeholder(userID, role, joinedAt))
	return nil
}

// SetStakeholderRole changes a stakeholder's role and explicitly recomputes
// the persisted capability set. Capabilities are never re-derived on read.
func (f *Forum) SetStakeholderRole(userID string, role Role) error {
	if !role.Valid() {
		return fmt.Errorf("invalid role %q", role)
	}
	s := f.Stakeholder(userID)
	if s == nil {
		return fmt.Errorf("user %q is not a stakeholder of forum %q", userID, f.ID)
	}
	s.Role = role
	s.Capabilities = CapabilitiesForRole(role)
	return nil
}

// IsActive returns true if the forum accepts new activity.
func (f *Forum) IsActive() bool {
	return f.Status == ForumStatusActive
}
