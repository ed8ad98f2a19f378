package validator

import (
	"errors"
	"strings"
	"testing"

	"github.com/aletheon/eleutherios-mvp-sub002/pkg/rule/ast"
	ruleErrors "github.com/aletheon/eleutherios-mvp-sub002/pkg/rule/errors"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/rule/parser"
)

// mustParse parses a single rule line for validation tests.
func mustParse(t *testing.T, line string) *ast.Rule {
	t.Helper()
	rule, err := parser.New().ParseLine(line, ast.Location{Source: "test", Line: 1, Column: 1})
	if err != nil {
		t.Fatalf("ParseLine(%q) error = %v", line, err)
	}
	if rule == nil {
		t.Fatalf("ParseLine(%q) did not recognize a rule", line)
	}
	return rule
}

// wantErrorType validates a line and asserts the error list contains the type.
func wantErrorType(t *testing.T, line string, errType ruleErrors.ErrorType, msg string) {
	t.Helper()
	_, err := New().Validate(mustParse(t, line))
	if err == nil {
		t.Fatalf("Validate(%q) error = nil, want %s", line, errType)
	}
	var list *ruleErrors.ErrorList
	if !errors.As(err, &list) {
		t.Fatalf("error type = %T, want *errors.ErrorList", err)
	}
	if !list.HasErrorType(errType) {
		t.Fatalf("error list has no %s error:\n%v", errType, list)
	}
	if msg != "" && !strings.Contains(list.Error(), msg) {
		t.Errorf("error list does not mention %q:\n%v", msg, list)
	}
}

func TestValidateForum(t *testing.T) {
	valid, err := New().Validate(mustParse(t, `rule intake -> Forum("Housing Intake", members="u-2, u-3", public=true)`))
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	spec, ok := valid.Spec.(ForumSpec)
	if !ok {
		t.Fatalf("Spec type = %T, want ForumSpec", valid.Spec)
	}
	if spec.DisplayName != "Housing Intake" {
		t.Errorf("DisplayName = %q", spec.DisplayName)
	}
	if len(spec.DefaultMembers) != 2 || spec.DefaultMembers[0] != "u-2" || spec.DefaultMembers[1] != "u-3" {
		t.Errorf("DefaultMembers = %v, want [u-2 u-3]", spec.DefaultMembers)
	}
	if !spec.Public {
		t.Error("Public = false, want true")
	}
}

func TestValidateForumErrors(t *testing.T) {
	wantErrorType(t, `rule intake -> Forum("")`, ruleErrors.ErrorTypeMissingField, "display name")
	wantErrorType(t, `rule intake -> Forum("Housing", members=u-2)`, ruleErrors.ErrorTypeWrongType, "members")
	wantErrorType(t, `rule intake -> Forum("Housing", public=yes)`, ruleErrors.ErrorTypeWrongType, "true or false")
}

func TestValidateService(t *testing.T) {
	valid, err := New().Validate(mustParse(t, `rule check -> Service("EligibilityCheck", fastTrack=true, region="south")`))
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	spec, ok := valid.Spec.(ServiceSpec)
	if !ok {
		t.Fatalf("Spec type = %T, want ServiceSpec", valid.Spec)
	}
	if spec.ServiceName != "EligibilityCheck" {
		t.Errorf("ServiceName = %q", spec.ServiceName)
	}
	if !spec.FastTrack {
		t.Error("FastTrack = false, want true")
	}
	if spec.Payment != nil {
		t.Error("Payment sub-schema applied to non-payment service")
	}
	if got := spec.Config["region"]; got != "south" {
		t.Errorf("Config[region] = %q, want south", got)
	}
	if _, ok := spec.Config["fastTrack"]; ok {
		t.Error("fastTrack leaked into Config passthrough")
	}
}

func TestValidatePaymentService(t *testing.T) {
	valid, err := New().Validate(mustParse(t, `rule bond -> Service("BondPayment", payerId=u-2, payeeId=u-3, amount=$400.00, memo="bond")`))
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	spec := valid.Spec.(ServiceSpec)
	if spec.Payment == nil {
		t.Fatal("Payment = nil for payment-named service")
	}
	if spec.Payment.PayerID != "u-2" || spec.Payment.PayeeID != "u-3" {
		t.Errorf("payer/payee = %q/%q", spec.Payment.PayerID, spec.Payment.PayeeID)
	}
	if spec.Payment.Amount.Cents != 40000 {
		t.Errorf("Amount.Cents = %d, want 40000", spec.Payment.Amount.Cents)
	}
	if got := spec.Payment.Metadata["memo"]; got != "bond" {
		t.Errorf("Metadata[memo] = %q, want bond", got)
	}
}

func TestValidatePaymentErrors(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		errType ruleErrors.ErrorType
		msg     string
	}{
		{"missing payee", `rule p -> Service("RentPayment", payerId=u-2, amount=$5.00)`, ruleErrors.ErrorTypeMissingField, "payeeId"},
		{"payer not a ref", `rule p -> Service("RentPayment", payerId="u-2", payeeId=u-3, amount=$5.00)`, ruleErrors.ErrorTypeWrongType, "stakeholder reference"},
		{"missing amount", `rule p -> Service("RentPayment", payerId=u-2, payeeId=u-3)`, ruleErrors.ErrorTypeMissingField, "amount"},
		{"amount not money", `rule p -> Service("RentPayment", payerId=u-2, payeeId=u-3, amount=5)`, ruleErrors.ErrorTypeWrongType, "currency-prefixed"},
		{"zero amount", `rule p -> Service("RentPayment", payerId=u-2, payeeId=u-3, amount=$0.00)`, ruleErrors.ErrorTypeWrongType, "greater than zero"},
		{"payer is payee", `rule p -> Service("RentPayment", payerId=u-2, payeeId=u-2, amount=$5.00)`, ruleErrors.ErrorTypeWrongType, "different stakeholders"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wantErrorType(t, tt.line, tt.errType, tt.msg)
		})
	}
}

func TestIsPaymentService(t *testing.T) {
	for _, name := range []string{"payment", "BondPayment", "PaymentGateway", "stripe-PAYMENT"} {
		if !IsPaymentService(name) {
			t.Errorf("IsPaymentService(%q) = false", name)
		}
	}
	for _, name := range []string{"EligibilityCheck", "Payout", ""} {
		if IsPaymentService(name) {
			t.Errorf("IsPaymentService(%q) = true", name)
		}
	}
}

func TestValidatePolicy(t *testing.T) {
	valid, err := New().Validate(mustParse(t, `rule followup -> Policy("AftercarePlan", version="1.2.0-rc.1")`))
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	spec, ok := valid.Spec.(PolicySpec)
	if !ok {
		t.Fatalf("Spec type = %T, want PolicySpec", valid.Spec)
	}
	if spec.TemplateRef != "AftercarePlan" {
		t.Errorf("TemplateRef = %q", spec.TemplateRef)
	}
	if spec.Version != "1.2.0-rc.1" {
		t.Errorf("Version = %q", spec.Version)
	}

	latest, err := New().Validate(mustParse(t, `rule followup -> Policy("AftercarePlan")`))
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if v := latest.Spec.(PolicySpec).Version; v != "" {
		t.Errorf("Version = %q, want empty (latest)", v)
	}
}

func TestValidatePolicyErrors(t *testing.T) {
	wantErrorType(t, `rule followup -> Policy("")`, ruleErrors.ErrorTypeMissingField, "policy reference")
	wantErrorType(t, `rule followup -> Policy("Plan", version="latest")`, ruleErrors.ErrorTypeWrongType, "semantic version")
	wantErrorType(t, `rule followup -> Policy("Plan", version=$1.00)`, ruleErrors.ErrorTypeWrongType, "version string")
}

func TestValidateNilRule(t *testing.T) {
	if _, err := New().Validate(nil); err == nil {
		t.Error("Validate(nil) error = nil")
	}
}
