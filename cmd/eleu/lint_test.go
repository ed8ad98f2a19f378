package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeRules(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLintDocumentValid(t *testing.T) {
	path := writeRules(t, t.TempDir(), "housing.rules", `
# Housing coordination policy
rule intake -> Forum("Housing Intake", members="u-2,u-3")
rule check -> Service("EligibilityCheck")
rule pay -> Service("RentPayment", payerId=u-2, payeeId=u-3, amount=$125.00) requires [check]
`)

	result := lintDocument(path)
	if !result.Valid {
		t.Fatalf("document should be valid, findings: %+v", result.Findings)
	}
	if result.Rules != 3 {
		t.Errorf("Rules = %d, want 3", result.Rules)
	}
}

func TestLintDocumentSyntaxError(t *testing.T) {
	path := writeRules(t, t.TempDir(), "broken.rules", `rule broken -> Forum("Unterminated`)

	result := lintDocument(path)
	if result.Valid {
		t.Fatal("document should be invalid")
	}
	if len(result.Findings) == 0 {
		t.Fatal("expected findings")
	}
	if result.Findings[0].Line != 1 {
		t.Errorf("Line = %d, want 1", result.Findings[0].Line)
	}
}

func TestLintDocumentSchemaError(t *testing.T) {
	// Payment service without a payee fails the payment sub-schema.
	path := writeRules(t, t.TempDir(), "payment.rules",
		`rule pay -> Service("BondPayment", payerId=u-2, amount=$100.00)`)

	result := lintDocument(path)
	if result.Valid {
		t.Fatal("document should be invalid")
	}
}

func TestLintDocumentMissing(t *testing.T) {
	result := lintDocument(filepath.Join(t.TempDir(), "absent.rules"))
	if result.Valid {
		t.Fatal("missing file should be invalid")
	}
}
