package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	ruleerrors "github.com/aletheon/eleutherios-mvp-sub002/pkg/rule/errors"
)

// OutputFormat represents the output format for command results.
type OutputFormat string

const (
	// FormatText is plain text output (default).
	FormatText OutputFormat = "text"
	// FormatJSON is JSON output.
	FormatJSON OutputFormat = "json"
)

// Formatter formats command output.
type Formatter interface {
	FormatTo(w io.Writer, data interface{}) error
}

// TextFormatter formats output as plain text.
type TextFormatter struct{}

// FormatTo writes data to writer in text format.
func (f *TextFormatter) FormatTo(w io.Writer, data interface{}) error {
	_, err := fmt.Fprintf(w, "%v\n", data)
	return err
}

// JSONFormatter formats output as JSON.
type JSONFormatter struct {
	Indent bool
}

// FormatTo writes data to writer in JSON format.
func (f *JSONFormatter) FormatTo(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	if f.Indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}

// NewFormatter creates a new formatter for the specified format.
func NewFormatter(format OutputFormat) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	default:
		return &TextFormatter{}
	}
}

// RenderRuleErrors pretty-prints rule document errors one finding per
// block, with location and suggestion when present. It returns false when
// the error is not a rule error, leaving it for the generic error path.
func RenderRuleErrors(w io.Writer, err error) bool {
	var list *ruleerrors.ErrorList
	if errors.As(err, &list) {
		for _, e := range list.Errors {
			renderRuleError(w, e)
		}
		fmt.Fprintf(w, "%d error(s) found\n", list.Count())
		return true
	}

	var single *ruleerrors.Error
	if errors.As(err, &single) {
		renderRuleError(w, single)
		fmt.Fprintln(w, "1 error(s) found")
		return true
	}
	return false
}

func renderRuleError(w io.Writer, e *ruleerrors.Error) {
	fmt.Fprintf(w, "error[%s]: %s\n", e.Type, e.Message)
	if e.Location.IsValid() {
		fmt.Fprintf(w, "  --> %s\n", e.Location.String())
	}
	if e.Suggestion != "" {
		fmt.Fprintf(w, "  = suggestion: %s\n", e.Suggestion)
	}
}
