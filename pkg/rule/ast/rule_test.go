package ast

import "testing"

func paymentRule() *Rule {
	return &Rule{
		Name:   "bond",
		Kind:   KindService,
		Target: "BondPayment",
		Args: []Argument{
			{Key: "payerId", Value: Value{Type: ValueTypeReference, Ref: "u-2"}},
			{Key: "payeeId", Value: Value{Type: ValueTypeReference, Ref: "u-3"}},
			{Key: "amount", Value: Value{Type: ValueTypeMoney, Money: Money{Cents: 40000, Currency: "USD"}}},
			{Key: "note", Value: Value{Type: ValueTypeString, Str: "first month"}},
		},
		Guards: []string{"placement", "intake"},
	}
}

func TestRuleArgHelpers(t *testing.T) {
	r := paymentRule()

	if !r.HasArg("payerId") || r.HasArg("missing") {
		t.Error("HasArg gave wrong answers")
	}
	if got := r.RefArg("payerId"); got != "u-2" {
		t.Errorf("RefArg(payerId) = %q, want u-2", got)
	}
	if got := r.RefArg("note"); got != "" {
		t.Errorf("RefArg on string arg = %q, want empty", got)
	}
	if got := r.StringArg("note"); got != "first month" {
		t.Errorf("StringArg(note) = %q", got)
	}
	money, ok := r.MoneyArg("amount")
	if !ok || money.Cents != 40000 {
		t.Errorf("MoneyArg(amount) = %v, %v", money, ok)
	}
	if _, ok := r.MoneyArg("note"); ok {
		t.Error("MoneyArg on string arg reported ok")
	}
	if !r.HasGuards() {
		t.Error("HasGuards = false, want true")
	}
}

func TestRuleCanonical(t *testing.T) {
	want := `rule bond -> Service("BondPayment", payerId=u-2, payeeId=u-3, amount=$400.00, note="first month") requires [placement, intake]`
	if got := paymentRule().Canonical(); got != want {
		t.Errorf("Canonical():\n got = %q\nwant = %q", got, want)
	}

	bare := &Rule{Name: "intake", Kind: KindForum, Target: "Housing Intake"}
	wantBare := `rule intake -> Forum("Housing Intake")`
	if got := bare.Canonical(); got != wantBare {
		t.Errorf("Canonical() = %q, want %q", got, wantBare)
	}
}

func TestParseTargetKind(t *testing.T) {
	for _, s := range []string{"Forum", "Service", "Policy"} {
		if _, ok := ParseTargetKind(s); !ok {
			t.Errorf("ParseTargetKind(%q) not recognized", s)
		}
	}
	for _, s := range []string{"forum", "Widget", ""} {
		if _, ok := ParseTargetKind(s); ok {
			t.Errorf("ParseTargetKind(%q) accepted, want rejection", s)
		}
	}
}

func TestLocationString(t *testing.T) {
	loc := Location{Source: "housing.rules", Line: 4, Column: 7}
	if got := loc.String(); got != "housing.rules:4:7" {
		t.Errorf("String() = %q", got)
	}
	if !loc.IsValid() {
		t.Error("IsValid() = false")
	}
	if (Location{}).IsValid() {
		t.Error("zero location reported valid")
	}
	if got := (Location{}).String(); got != "<unknown>" {
		t.Errorf("zero location String() = %q", got)
	}
}
