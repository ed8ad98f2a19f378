package governance

import "time"

// Role represents a stakeholder's role within a forum.
// The set is closed; capability derivation matches exhaustively on it so an
// unhandled role is a compile-time problem, not a silent default.
type Role string

const (
	RoleOwner     Role = "owner"
	RoleModerator Role = "moderator"
	RoleMember    Role = "member"
)

// Valid returns true if the role is one of the closed set.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleModerator, RoleMember:
		return true
	}
	return false
}

// Capabilities is the set of per-stakeholder permission flags.
// Flags are computed from the role at join time and persisted; they are not
// re-derived on read.
type Capabilities struct {
	CanAddMembers     bool `json:"can_add_members"`
	CanRemoveMembers  bool `json:"can_remove_members"`
	CanCreateSubforum bool `json:"can_create_subforum"`
	CanPost           bool `json:"can_post"`
	CanRemoveMessages bool `json:"can_remove_messages"`
	CanUploadFiles    bool `json:"can_upload_files"`
	CanRemoveFiles    bool `json:"can_remove_files"`
}

// CapabilitiesForRole computes the capability set for a role.
// Owners and moderators get the full set except CanRemoveFiles, which only
// owners hold. Members may post and upload only.
func CapabilitiesForRole(role Role) Capabilities {
	switch role {
	case RoleOwner:
		return Capabilities{
			CanAddMembers:     true,
			CanRemoveMembers:  true,
			CanCreateSubforum: true,
			CanPost:           true,
			CanRemoveMessages: true,
			CanUploadFiles:    true,
			CanRemoveFiles:    true,
		}
	case RoleModerator:
		return Capabilities{
			CanAddMembers:     true,
			CanRemoveMembers:  true,
			CanCreateSubforum: true,
			CanPost:           true,
			CanRemoveMessages: true,
			CanUploadFiles:    true,
		}
	case RoleMember:
		return Capabilities{
			CanPost:        true,
			CanUploadFiles: true,
		}
	default:
		// Unknown roles hold no capabilities.
		return Capabilities{}
	}
}

// ForumStakeholder is a user participating in a forum.
// Owned by exactly one Forum; user identifiers are unique within it.
type ForumStakeholder struct {
	UserID       string       `json:"user_id"`
	Role         Role         `json:"role"`
	Capabilities Capabilities `json:"capabilities"`
	JoinedAt     time.Time    `json:"joined_at"`
}

// NewStakeholder creates a stakeholder with role-derived capabilities.
func NewStakeholder(userID string, role Role, joinedAt time.Time) *ForumStakeholder {
	return &ForumStakeholder{
		UserID:       userID,
		Role:         role,
		Capabilities: CapabilitiesForRole(role),
		JoinedAt:     joinedAt,
	}
}
