package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/aletheon/eleutherios-mvp-sub002/pkg/rule/ast"
	ruleErrors "github.com/aletheon/eleutherios-mvp-sub002/pkg/rule/errors"
)

func testLoc() ast.Location {
	return ast.Location{Source: "test", Line: 1, Column: 1}
}

func TestParseLineConversation(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"plain text", "thanks, I will look at the lease tomorrow"},
		{"empty", ""},
		{"rule word alone", "rule"},
		{"rule word prefix", "rules are meant to be read"},
		{"missing arrow", "rule intake Forum(\"Housing\")"},
		{"missing name", "rule -> Forum(\"Housing\")"},
		{"unknown kind", "rule intake -> Widget(\"Housing\")"},
		{"arrow typo", "rule intake => Forum(\"Housing\")"},
	}

	p := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, err := p.ParseLine(tt.line, testLoc())
			if err != nil {
				t.Fatalf("ParseLine(%q) error = %v, want nil", tt.line, err)
			}
			if rule != nil {
				t.Errorf("ParseLine(%q) = %+v, want nil (conversation)", tt.line, rule)
			}
		})
	}
}

func TestParseLineFullRule(t *testing.T) {
	line := `rule bond -> Service("BondPayment", payerId=u-2, payeeId=u-3, amount=$400.50, note="first month", attempts=3) requires [placement, intake]`

	rule, err := New().ParseLine(line, testLoc())
	if err != nil {
		t.Fatalf("ParseLine() error = %v", err)
	}
	if rule == nil {
		t.Fatal("ParseLine() returned nil rule")
	}

	if rule.Name != "bond" {
		t.Errorf("Name = %q, want %q", rule.Name, "bond")
	}
	if rule.Kind != ast.KindService {
		t.Errorf("Kind = %q, want %q", rule.Kind, ast.KindService)
	}
	if rule.Target != "BondPayment" {
		t.Errorf("Target = %q, want %q", rule.Target, "BondPayment")
	}
	if len(rule.Args) != 5 {
		t.Fatalf("len(Args) = %d, want 5", len(rule.Args))
	}

	if got := rule.RefArg("payerId"); got != "u-2" {
		t.Errorf("RefArg(payerId) = %q, want %q", got, "u-2")
	}
	if got := rule.RefArg("payeeId"); got != "u-3" {
		t.Errorf("RefArg(payeeId) = %q, want %q", got, "u-3")
	}
	money, ok := rule.MoneyArg("amount")
	if !ok {
		t.Fatal("MoneyArg(amount) missing")
	}
	if money.Cents != 40050 {
		t.Errorf("amount cents = %d, want 40050", money.Cents)
	}
	if got := rule.StringArg("note"); got != "first month" {
		t.Errorf("StringArg(note) = %q, want %q", got, "first month")
	}
	num, _ := rule.Arg("attempts")
	if num.Type != ast.ValueTypeNumber || num.Num != 3 {
		t.Errorf("attempts = %+v, want number 3", num)
	}

	if len(rule.Guards) != 2 || rule.Guards[0] != "placement" || rule.Guards[1] != "intake" {
		t.Errorf("Guards = %v, want [placement intake]", rule.Guards)
	}
}

func TestParseLineColonSeparator(t *testing.T) {
	rule, err := New().ParseLine(`rule intake -> Forum("Housing Intake", public: true, members: "u-2,u-3")`, testLoc())
	if err != nil {
		t.Fatalf("ParseLine() error = %v", err)
	}
	if got := rule.RefArg("public"); got != "true" {
		t.Errorf("RefArg(public) = %q, want %q", got, "true")
	}
	if got := rule.StringArg("members"); got != "u-2,u-3" {
		t.Errorf("StringArg(members) = %q, want %q", got, "u-2,u-3")
	}
}

func TestParseLineSyntaxErrors(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		message string
	}{
		{"missing paren", `rule intake -> Forum "Housing"`, "expected '('"},
		{"unterminated target", `rule intake -> Forum("Housing`, "unterminated string"},
		{"unquoted target", `rule intake -> Forum(Housing)`, "expected quoted string"},
		{"missing separator", `rule intake -> Forum("Housing", public true)`, "expected '=' or ':'"},
		{"duplicate key", `rule intake -> Forum("Housing", public=true, public=false)`, "duplicate argument key"},
		{"bad money precision", `rule pay -> Service("Payment", amount=$4.005)`, "2 decimal digits"},
		{"negative money", `rule pay -> Service("Payment", amount=$-4.00)`, "non-negative"},
		{"bad number", `rule pay -> Service("Check", retries=1.2.3)`, "invalid numeric literal"},
		{"unclosed args", `rule intake -> Forum("Housing", public=true`, "expected ',' or ')'"},
		{"requires missing bracket", `rule b -> Forum("B") requires placement`, "expected '[' after requires"},
		{"empty guard list", `rule b -> Forum("B") requires []`, "expected guard reference"},
		{"unclosed guard list", `rule b -> Forum("B") requires [a, b`, "expected ',' or ']'"},
		{"trailing text", `rule b -> Forum("B") and then some`, "unexpected trailing text"},
	}

	p := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, err := p.ParseLine(tt.line, testLoc())
			if err == nil {
				t.Fatalf("ParseLine(%q) = %+v, want syntax error", tt.line, rule)
			}
			var re *ruleErrors.Error
			if !errors.As(err, &re) {
				t.Fatalf("error type = %T, want *errors.Error", err)
			}
			if re.Type != ruleErrors.ErrorTypeSyntax {
				t.Errorf("error type = %q, want %q", re.Type, ruleErrors.ErrorTypeSyntax)
			}
			if !strings.Contains(re.Message, tt.message) {
				t.Errorf("message %q does not contain %q", re.Message, tt.message)
			}
		})
	}
}

func TestParseLineLimits(t *testing.T) {
	t.Run("line length", func(t *testing.T) {
		p := New().WithMaxLineLength(32)
		line := `rule intake -> Forum("` + strings.Repeat("x", 64) + `")`
		if _, err := p.ParseLine(line, testLoc()); err == nil {
			t.Error("expected length error, got nil")
		}
	})

	t.Run("argument count", func(t *testing.T) {
		p := New().WithMaxArgs(1)
		line := `rule intake -> Forum("Housing", public=true, members="u-2")`
		if _, err := p.ParseLine(line, testLoc()); err == nil {
			t.Error("expected argument count error, got nil")
		}
	})
}

func TestParseLineCanonicalRoundTrip(t *testing.T) {
	lines := []string{
		`rule intake -> Forum("Housing Intake")`,
		`rule intake -> Forum("Housing Intake", members="u-2,u-3", public=true)`,
		`rule bond -> Service("BondPayment", payerId=u-2, payeeId=u-3, amount=$400.00) requires [placement]`,
		`rule followup -> Policy("AftercarePlan", version="1.0.0") requires [referral, discharge]`,
	}

	p := New()
	for _, line := range lines {
		rule, err := p.ParseLine(line, testLoc())
		if err != nil {
			t.Fatalf("ParseLine(%q) error = %v", line, err)
		}
		canonical := rule.Canonical()

		again, err := p.ParseLine(canonical, testLoc())
		if err != nil {
			t.Fatalf("ParseLine(canonical %q) error = %v", canonical, err)
		}
		if got := again.Canonical(); got != canonical {
			t.Errorf("canonical not stable:\n first = %q\nsecond = %q", canonical, got)
		}
	}
}

func TestParseDocument(t *testing.T) {
	doc := []byte(`# housing intake flow

rule intake -> Forum("Housing Intake", members="u-2")

rule eligibility -> Service("EligibilityCheck") requires [intake]
rule placement -> Forum("Placement Review") requires [eligibility]
`)

	rules, err := New().ParseDocument(doc, "housing.rules")
	if err != nil {
		t.Fatalf("ParseDocument() error = %v", err)
	}
	if len(rules) != 3 {
		t.Fatalf("len(rules) = %d, want 3", len(rules))
	}

	wantNames := []string{"intake", "eligibility", "placement"}
	for i, name := range wantNames {
		if rules[i].Name != name {
			t.Errorf("rules[%d].Name = %q, want %q", i, rules[i].Name, name)
		}
	}

	// Locations track the original line numbers past comments and blanks.
	if rules[0].Location.Line != 3 {
		t.Errorf("rules[0].Location.Line = %d, want 3", rules[0].Location.Line)
	}
	if rules[0].Location.Source != "housing.rules" {
		t.Errorf("rules[0].Location.Source = %q, want %q", rules[0].Location.Source, "housing.rules")
	}
}

func TestParseDocumentErrors(t *testing.T) {
	doc := []byte(`rule intake -> Forum("Housing")
this line is not a rule
rule intake -> Forum("Duplicate Name")
rule broken -> Service("Check"
`)

	rules, err := New().ParseDocument(doc, "bad.rules")
	if err == nil {
		t.Fatal("ParseDocument() error = nil, want error list")
	}

	var list *ruleErrors.ErrorList
	if !errors.As(err, &list) {
		t.Fatalf("error type = %T, want *errors.ErrorList", err)
	}
	if list.Count() != 3 {
		t.Fatalf("error count = %d, want 3:\n%v", list.Count(), list)
	}
	if !list.HasErrorType(ruleErrors.ErrorTypeSyntax) {
		t.Error("expected syntax errors in list")
	}

	// The valid first rule still parses.
	if len(rules) != 1 || rules[0].Name != "intake" {
		t.Errorf("rules = %v, want single intake rule", rules)
	}

	found := false
	for _, e := range list.Errors {
		if strings.Contains(e.Message, "duplicate rule name") && strings.Contains(e.Message, "line 1") {
			found = true
		}
	}
	if !found {
		t.Errorf("no duplicate-name error pointing at line 1:\n%v", list)
	}
}
