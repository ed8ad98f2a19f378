package governance

import (
	"testing"

	"github.com/aletheon/eleutherios-mvp-sub002/pkg/rule/ast"
)

func storedRule(id, name string, kind ast.TargetKind) *PolicyRule {
	stmt := &ast.Rule{Name: name, Kind: kind, Target: name}
	return &PolicyRule{
		ID:        id,
		Statement: stmt,
		Canonical: stmt.Canonical(),
		Outcome:   OutcomePending,
	}
}

func TestAppendRuleVersioning(t *testing.T) {
	p := &Policy{ID: "pol-1", Status: PolicyStatusDraft, Version: 1}

	// Draft appends do not bump the version.
	if err := p.AppendRule(storedRule("rul-1", "intake", ast.KindForum)); err != nil {
		t.Fatalf("AppendRule() error = %v", err)
	}
	if p.Version != 1 {
		t.Errorf("draft append bumped version to %d", p.Version)
	}

	// Active appends do.
	p.Status = PolicyStatusActive
	if err := p.AppendRule(storedRule("rul-2", "eligibility", ast.KindService)); err != nil {
		t.Fatalf("AppendRule() error = %v", err)
	}
	if p.Version != 2 {
		t.Errorf("Version = %d, want 2", p.Version)
	}

	// Duplicate statement names are rejected.
	if err := p.AppendRule(storedRule("rul-3", "intake", ast.KindForum)); err == nil {
		t.Error("duplicate rule name accepted")
	}

	p.Status = PolicyStatusArchived
	if err := p.AppendRule(storedRule("rul-4", "extra", ast.KindForum)); err == nil {
		t.Error("append to archived policy accepted")
	}
}

func TestPolicyRuleLookup(t *testing.T) {
	p := &Policy{ID: "pol-1", Status: PolicyStatusDraft}
	if err := p.AppendRule(storedRule("rul-1", "intake", ast.KindForum)); err != nil {
		t.Fatal(err)
	}

	if r := p.Rule("intake"); r == nil || r.ID != "rul-1" {
		t.Errorf("Rule(intake) = %v", r)
	}
	if r := p.Rule("rul-1"); r == nil || r.Name() != "intake" {
		t.Errorf("Rule(rul-1) = %v", r)
	}
	if r := p.Rule("missing"); r != nil {
		t.Errorf("Rule(missing) = %v, want nil", r)
	}
}

func TestInstantiatedID(t *testing.T) {
	r := storedRule("rul-1", "intake", ast.KindForum)
	if got := r.InstantiatedID(); got != "" {
		t.Errorf("InstantiatedID() = %q before execution", got)
	}

	r.SetInstantiatedID(ast.KindForum, "frm-abc")
	if got := r.InstantiatedID(); got != "frm-abc" {
		t.Errorf("InstantiatedID() = %q, want frm-abc", got)
	}
	if r.InstantiatedServiceID != "" || r.InstantiatedPolicyID != "" {
		t.Error("back-reference set on the wrong kind field")
	}
}

func TestAllRulesSucceeded(t *testing.T) {
	p := &Policy{ID: "pol-1", Status: PolicyStatusDraft}
	if p.AllRulesSucceeded() {
		t.Error("empty policy reports all rules succeeded")
	}

	r1 := storedRule("rul-1", "intake", ast.KindForum)
	r2 := storedRule("rul-2", "eligibility", ast.KindService)
	if err := p.AppendRule(r1); err != nil {
		t.Fatal(err)
	}
	if err := p.AppendRule(r2); err != nil {
		t.Fatal(err)
	}

	r1.Outcome = OutcomeSucceeded
	if p.AllRulesSucceeded() {
		t.Error("partial success reported as all succeeded")
	}
	r2.Outcome = OutcomeSucceeded
	if !p.AllRulesSucceeded() {
		t.Error("AllRulesSucceeded() = false with every rule succeeded")
	}
}

func TestHasChild(t *testing.T) {
	p := &Policy{ID: "pol-1", ChildPolicyIDs: []string{"pol-2"}}
	if !p.HasChild("pol-2") {
		t.Error("HasChild(pol-2) = false")
	}
	if p.HasChild("pol-3") {
		t.Error("HasChild(pol-3) = true")
	}
}
