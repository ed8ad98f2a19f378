package errors

import (
	"strings"
	"testing"

	"github.com/aletheon/eleutherios-mvp-sub002/pkg/rule/ast"
)

func TestErrorFormatting(t *testing.T) {
	err := &Error{
		Type:       ErrorTypeMissingField,
		Message:    "payment service requires an 'amount' argument",
		Location:   ast.Location{Source: "housing.rules", Line: 4, Column: 1},
		Suggestion: "example: amount=$5.00",
	}

	got := err.Error()
	for _, want := range []string{
		"[missing_field]",
		"payment service requires an 'amount' argument",
		"--> housing.rules:4:1",
		"= suggestion: example: amount=$5.00",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Error() missing %q:\n%s", want, got)
		}
	}

	bare := &Error{Type: ErrorTypeSyntax, Message: "expected '('"}
	if strings.Contains(bare.Error(), "-->") {
		t.Errorf("location rendered for invalid location:\n%s", bare.Error())
	}
}

func TestErrorList(t *testing.T) {
	list := NewErrorList()
	if list.HasErrors() {
		t.Error("new list reports errors")
	}
	if list.ToError() != nil {
		t.Error("empty list ToError() != nil")
	}

	loc := ast.Location{Source: "test", Line: 1, Column: 1}
	list.AddError(ErrorTypeSyntax, "expected ')'", loc)
	list.AddErrorWithSuggestion(ErrorTypeWrongType, "argument 'public' must be true or false", loc, "example: public=true")

	if list.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", list.Count())
	}
	if list.ToError() == nil {
		t.Fatal("ToError() = nil with errors present")
	}

	if got := list.ByType(ErrorTypeSyntax); len(got) != 1 {
		t.Errorf("ByType(syntax) = %d errors, want 1", len(got))
	}
	if !list.HasErrorType(ErrorTypeWrongType) {
		t.Error("HasErrorType(wrong_type) = false")
	}
	if list.HasErrorType(ErrorTypeUnknownKind) {
		t.Error("HasErrorType(unknown_kind) = true")
	}

	msg := list.Error()
	if !strings.Contains(msg, "found 2 error(s)") {
		t.Errorf("Error() = %q, want error count header", msg)
	}
}
