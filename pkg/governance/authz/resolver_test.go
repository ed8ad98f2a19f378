package authz

import (
	"strings"
	"testing"
	"time"

	"github.com/aletheon/eleutherios-mvp-sub002/pkg/governance"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/rule/ast"
)

func testForum(t *testing.T, public bool) *governance.Forum {
	t.Helper()
	f := &governance.Forum{
		ID:       "frm-1",
		Title:    "Housing Intake",
		Status:   governance.ForumStatusActive,
		Settings: governance.ForumSettings{Public: public},
	}
	now := time.Now()
	if err := f.AddStakeholder("u-owner", governance.RoleOwner, now); err != nil {
		t.Fatal(err)
	}
	if err := f.AddStakeholder("u-mod", governance.RoleModerator, now); err != nil {
		t.Fatal(err)
	}
	if err := f.AddStakeholder("u-member", governance.RoleMember, now); err != nil {
		t.Fatal(err)
	}
	return f
}

func TestAuthorizeMembers(t *testing.T) {
	tests := []struct {
		name    string
		actor   string
		action  Action
		allowed bool
	}{
		{"owner posts", "u-owner", ActionPost, true},
		{"owner adds member", "u-owner", ActionAddMember, true},
		{"owner executes forum rule", "u-owner", ActionExecuteForum, true},
		{"moderator adds member", "u-mod", ActionAddMember, true},
		{"moderator executes policy rule", "u-mod", ActionExecutePolicy, true},
		{"member posts", "u-member", ActionPost, true},
		{"member executes service rule", "u-member", ActionExecuteService, true},
		{"member cannot add members", "u-member", ActionAddMember, false},
		{"member cannot execute forum rule", "u-member", ActionExecuteForum, false},
		{"member cannot execute policy rule", "u-member", ActionExecutePolicy, false},
	}

	r := New()
	forum := testForum(t, false)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := r.Authorize(tt.actor, forum, tt.action)
			if d.Allowed != tt.allowed {
				t.Errorf("Authorize(%s, %s) = %v (%s), want %v", tt.actor, tt.action, d.Allowed, d.Reason, tt.allowed)
			}
			if !d.Allowed && d.Reason == "" {
				t.Error("denial carries no reason")
			}
		})
	}
}

func TestAuthorizeNonMembers(t *testing.T) {
	r := New()

	t.Run("private forum denies everything", func(t *testing.T) {
		forum := testForum(t, false)
		for _, action := range []Action{ActionPost, ActionExecuteService, ActionExecuteForum} {
			d := r.Authorize("u-outsider", forum, action)
			if d.Allowed {
				t.Errorf("non-member allowed %s in private forum", action)
			}
			if !strings.Contains(d.Reason, "private") {
				t.Errorf("Reason = %q, want mention of private forum", d.Reason)
			}
		}
	})

	t.Run("public forum allows least-privileged only", func(t *testing.T) {
		forum := testForum(t, true)
		if d := r.Authorize("u-outsider", forum, ActionPost); !d.Allowed {
			t.Errorf("non-member denied post in public forum: %s", d.Reason)
		}
		if d := r.Authorize("u-outsider", forum, ActionExecuteService); !d.Allowed {
			t.Errorf("non-member denied service rule in public forum: %s", d.Reason)
		}
		if d := r.Authorize("u-outsider", forum, ActionExecuteForum); d.Allowed {
			t.Error("non-member allowed forum rule in public forum")
		}
		if d := r.Authorize("u-outsider", forum, ActionAddMember); d.Allowed {
			t.Error("non-member allowed to add members in public forum")
		}
	})
}

func TestAuthorizeEdgeCases(t *testing.T) {
	r := New()

	if d := r.Authorize("", testForum(t, true), ActionPost); d.Allowed {
		t.Error("empty actor allowed")
	}

	// No governing forum: the action is authorized at the policy layer.
	if d := r.Authorize("u-1", nil, ActionExecuteForum); !d.Allowed {
		t.Errorf("nil forum denied: %s", d.Reason)
	}

	archived := testForum(t, true)
	archived.Status = governance.ForumStatusArchived
	d := r.Authorize("u-owner", archived, ActionPost)
	if d.Allowed {
		t.Error("archived forum accepted activity")
	}
	if !strings.Contains(d.Reason, "archived") {
		t.Errorf("Reason = %q, want mention of archived status", d.Reason)
	}
}

func TestAuthorizePolicyOwner(t *testing.T) {
	r := New()
	policy := &governance.Policy{ID: "pol-1", OwnerID: "u-1"}

	if d := r.AuthorizePolicyOwner("u-1", policy, ActionExecuteForum); !d.Allowed {
		t.Errorf("owner denied: %s", d.Reason)
	}
	if d := r.AuthorizePolicyOwner("u-2", policy, ActionExecuteForum); d.Allowed {
		t.Error("non-owner allowed")
	}
	if d := r.AuthorizePolicyOwner("", policy, ActionExecuteForum); d.Allowed {
		t.Error("empty actor allowed")
	}
}

func TestActionForKind(t *testing.T) {
	tests := []struct {
		kind ast.TargetKind
		want Action
	}{
		{ast.KindForum, ActionExecuteForum},
		{ast.KindService, ActionExecuteService},
		{ast.KindPolicy, ActionExecutePolicy},
	}
	for _, tt := range tests {
		if got := ActionForKind(tt.kind); got != tt.want {
			t.Errorf("ActionForKind(%s) = %s, want %s", tt.kind, got, tt.want)
		}
	}
}
