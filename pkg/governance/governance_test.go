package governance

import (
	"testing"
	"time"
)

func TestCapabilitiesForRole(t *testing.T) {
	owner := CapabilitiesForRole(RoleOwner)
	if !owner.CanRemoveFiles || !owner.CanAddMembers || !owner.CanPost {
		t.Errorf("owner capabilities incomplete: %+v", owner)
	}

	mod := CapabilitiesForRole(RoleModerator)
	if mod.CanRemoveFiles {
		t.Error("moderator may remove files, only owners may")
	}
	if !mod.CanAddMembers || !mod.CanRemoveMessages || !mod.CanCreateSubforum {
		t.Errorf("moderator capabilities incomplete: %+v", mod)
	}

	member := CapabilitiesForRole(RoleMember)
	if !member.CanPost || !member.CanUploadFiles {
		t.Errorf("member capabilities incomplete: %+v", member)
	}
	if member.CanAddMembers || member.CanRemoveMembers || member.CanCreateSubforum {
		t.Errorf("member holds privileged capabilities: %+v", member)
	}

	if got := CapabilitiesForRole(Role("ghost")); got != (Capabilities{}) {
		t.Errorf("unknown role capabilities = %+v, want none", got)
	}
}

func TestForumStakeholders(t *testing.T) {
	now := time.Now()
	f := &Forum{ID: "frm-1", Title: "Housing Intake", Status: ForumStatusActive}

	if err := f.AddStakeholder("u-1", RoleOwner, now); err != nil {
		t.Fatalf("AddStakeholder(u-1) error = %v", err)
	}
	if err := f.AddStakeholder("u-2", RoleMember, now); err != nil {
		t.Fatalf("AddStakeholder(u-2) error = %v", err)
	}

	if err := f.AddStakeholder("u-2", RoleMember, now); err == nil {
		t.Error("duplicate stakeholder accepted")
	}
	if err := f.AddStakeholder("", RoleMember, now); err == nil {
		t.Error("empty user id accepted")
	}
	if err := f.AddStakeholder("u-3", Role("ghost"), now); err == nil {
		t.Error("invalid role accepted")
	}

	s := f.Stakeholder("u-2")
	if s == nil {
		t.Fatal("Stakeholder(u-2) = nil")
	}
	if s.Capabilities.CanAddMembers {
		t.Error("member stakeholder may add members")
	}
	if f.HasStakeholder("u-9") {
		t.Error("HasStakeholder(u-9) = true")
	}
}

func TestSetStakeholderRole(t *testing.T) {
	now := time.Now()
	f := &Forum{ID: "frm-1", Status: ForumStatusActive}
	if err := f.AddStakeholder("u-2", RoleMember, now); err != nil {
		t.Fatal(err)
	}

	if err := f.SetStakeholderRole("u-2", RoleModerator); err != nil {
		t.Fatalf("SetStakeholderRole() error = %v", err)
	}

	s := f.Stakeholder("u-2")
	if s.Role != RoleModerator {
		t.Errorf("Role = %q, want moderator", s.Role)
	}
	// The persisted capability set is recomputed on the role change.
	if !s.Capabilities.CanAddMembers || !s.Capabilities.CanRemoveMessages {
		t.Errorf("capabilities not recomputed: %+v", s.Capabilities)
	}

	if err := f.SetStakeholderRole("u-9", RoleMember); err == nil {
		t.Error("role change for non-stakeholder accepted")
	}
	if err := f.SetStakeholderRole("u-2", Role("ghost")); err == nil {
		t.Error("invalid role accepted")
	}
}

func TestActivationTransitions(t *testing.T) {
	now := time.Now()

	t.Run("happy path", func(t *testing.T) {
		a := &ServiceActivation{ID: "act-1", Status: ActivationPending}
		if err := a.Start(now); err != nil {
			t.Fatalf("Start() error = %v", err)
		}
		if a.Status != ActivationRunning || a.StartedAt == nil {
			t.Errorf("after Start: status %q, startedAt %v", a.Status, a.StartedAt)
		}
		if err := a.Complete(now); err != nil {
			t.Fatalf("Complete() error = %v", err)
		}
		if a.Status != ActivationCompleted || a.CompletedAt == nil {
			t.Errorf("after Complete: status %q, completedAt %v", a.Status, a.CompletedAt)
		}
	})

	t.Run("invalid transitions", func(t *testing.T) {
		a := &ServiceActivation{ID: "act-2", Status: ActivationPending}
		if err := a.Complete(now); err == nil {
			t.Error("Complete() from pending accepted")
		}
		if err := a.Cancel(now); err != nil {
			t.Fatalf("Cancel() error = %v", err)
		}
		if err := a.Start(now); err == nil {
			t.Error("Start() from cancelled accepted")
		}
		if err := a.Fail(now); err == nil {
			t.Error("Fail() from cancelled accepted")
		}
	})

	t.Run("fail from running", func(t *testing.T) {
		a := &ServiceActivation{ID: "act-3", Status: ActivationRunning}
		if err := a.Fail(now); err != nil {
			t.Fatalf("Fail() error = %v", err)
		}
		if a.Status != ActivationFailed {
			t.Errorf("Status = %q, want failed", a.Status)
		}
	})
}
