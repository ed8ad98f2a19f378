package ast

import "fmt"

// Location represents the source location of a rule statement.
// The source is a file path for rules loaded from policy documents, or a
// forum identifier for rules typed into a running conversation.
type Location struct {
	Source string // Policy file path or forum identifier
	Line   int    // Line number (1-based)
	Column int    // Column number (1-based)
}

// String returns a human-readable representation of the location.
// Format: "source:line:column"
func (l Location) String() string {
	if l.Source == "" {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", l.Source, l.Line, l.Column)
}

// IsValid returns true if the location has valid source and line information.
func (l Location) IsValid() bool {
	return l.Source != "" && l.Line > 0
}
