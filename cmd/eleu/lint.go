package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aletheon/eleutherios-mvp-sub002/pkg/cli"
	ruleerrors "github.com/aletheon/eleutherios-mvp-sub002/pkg/rule/errors"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/rule/parser"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/rule/validator"
)

var lintFlags struct {
	file   string
	dir    string
	format string
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate rule documents",
	Long: `Validate rule documents for syntax and schema errors.

The lint command parses rule documents and validates every rule against
its target kind's schema:
  - Statement syntax (rule name, target kind, argument list, guards)
  - Required arguments per target kind
  - Argument types, including money amounts and stakeholder references
  - Payment sub-schema for payment services

Examples:
  # Lint single file
  eleu lint --file housing.rules

  # Lint directory
  eleu lint --dir policies/

  # JSON output for CI/CD
  eleu lint --file housing.rules --format json`,
	RunE: lintDocuments,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.file, "file", "f", "", "rule document to validate")
	lintCmd.Flags().StringVarP(&lintFlags.dir, "dir", "d", "", "directory of rule documents")
	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json")
}

// LintResult represents the validation result for a single document.
type LintResult struct {
	File     string        `json:"file"`
	Valid    bool          `json:"valid"`
	Rules    int           `json:"rules"`
	Findings []LintFinding `json:"findings,omitempty"`
}

// LintFinding represents a single error found in a document.
type LintFinding struct {
	Line       int    `json:"line,omitempty"`
	Column     int    `json:"column,omitempty"`
	Type       string `json:"type,omitempty"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

func lintDocuments(cmd *cobra.Command, args []string) error {
	if lintFlags.file == "" && lintFlags.dir == "" {
		return fmt.Errorf("either --file or --dir must be specified")
	}

	var files []string
	if lintFlags.file != "" {
		files = append(files, lintFlags.file)
	}
	if lintFlags.dir != "" {
		matches, err := filepath.Glob(filepath.Join(lintFlags.dir, "*.rules"))
		if err != nil {
			return fmt.Errorf("failed to list rule documents: %w", err)
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return fmt.Errorf("no rule documents found")
	}

	results := make([]LintResult, 0, len(files))
	for _, file := range files {
		results = append(results, lintDocument(file))
	}

	if lintFlags.format == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(results); err != nil {
			return err
		}
		return lintExitStatus(results)
	}

	for _, result := range results {
		fmt.Printf("Validating %s...\n", result.File)
		if result.Valid {
			fmt.Printf("✓ %d rule(s) valid\n", result.Rules)
		}
		for _, finding := range result.Findings {
			fmt.Printf("✗ %s", finding.Message)
			if finding.Line > 0 {
				fmt.Printf(" (line %d", finding.Line)
				if finding.Column > 0 {
					fmt.Printf(", col %d", finding.Column)
				}
				fmt.Print(")")
			}
			if finding.Type != "" {
				fmt.Printf(" [%s]", finding.Type)
			}
			fmt.Println()
			if finding.Suggestion != "" {
				fmt.Printf("  = suggestion: %s\n", finding.Suggestion)
			}
		}
		fmt.Println()
	}
	return lintExitStatus(results)
}

func lintExitStatus(results []LintResult) error {
	for _, result := range results {
		if !result.Valid {
			return cli.NewCommandError("lint", fmt.Errorf("validation failed"))
		}
	}
	return nil
}

func lintDocument(path string) LintResult {
	result := LintResult{File: path, Valid: true}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Valid = false
		result.Findings = append(result.Findings, LintFinding{Message: err.Error()})
		return result
	}

	rules, err := parser.New().ParseDocument(data, path)
	if err != nil {
		result.Valid = false
		result.Findings = append(result.Findings, toFindings(err)...)
		return result
	}
	result.Rules = len(rules)

	v := validator.New()
	for _, rule := range rules {
		if _, err := v.Validate(rule); err != nil {
			result.Valid = false
			result.Findings = append(result.Findings, toFindings(err)...)
		}
	}
	return result
}

func toFindings(err error) []LintFinding {
	var list *ruleerrors.ErrorList
	if errors.As(err, &list) {
		findings := make([]LintFinding, 0, len(list.Errors))
		for _, e := range list.Errors {
			findings = append(findings, toFinding(e))
		}
		return findings
	}

	var single *ruleerrors.Error
	if errors.As(err, &single) {
		return []LintFinding{toFinding(single)}
	}
	return []LintFinding{{Message: err.Error()}}
}

func toFinding(e *ruleerrors.Error) LintFinding {
	return LintFinding{
		Line:       e.Location.Line,
		Column:     e.Location.Column,
		Type:       string(e.Type),
		Message:    e.Message,
		Suggestion: e.Suggestion,
	}
}
