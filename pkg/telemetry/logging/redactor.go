package logging

import (
	"fmt"
	"regexp"

	"github.com/aletheon/eleutherios-mvp-sub002/pkg/config"
)

// Redactor masks personal data in log values.
type Redactor struct {
	patterns []*redactPattern
}

// redactPattern contains a compiled regex and replacement string.
type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// Built-in pattern names.
const (
	PatternEmail       = "email"
	PatternPhone       = "phone"
	PatternCreditCard  = "credit_card"
	PatternBearerToken = "bearer_token"
	PatternIRDNumber   = "ird_number"
)

// defaultPatterns covers the personal data that appears in governance
// payloads: stakeholder contact details, card numbers on payment services,
// auth tokens, and tax identifiers.
var defaultPatterns = []struct {
	name        string
	regex       string
	replacement string
}{
	{
		PatternEmail,
		`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`,
		"[email-redacted]",
	},
	{
		PatternPhone,
		`\+?\d{1,3}[-\s]?\(?\d{1,4}\)?[-\s]?\d{3}[-\s]?\d{3,4}\b`,
		"[phone-redacted]",
	},
	{
		PatternCreditCard,
		`\b(?:\d[ -]*?){13,16}\b`,
		"[card-redacted]",
	},
	{
		PatternBearerToken,
		`(?i)bearer\s+[a-zA-Z0-9._~+/-]+=*`,
		"Bearer [redacted]",
	},
	{
		PatternIRDNumber,
		`\b\d{2,3}-\d{3}-\d{3}\b`,
		"[ird-redacted]",
	},
}

// NewRedactor creates a Redactor with the built-in patterns plus any custom
// patterns from configuration. Custom patterns run after the built-ins and
// an invalid custom pattern is an error.
func NewRedactor(custom []config.RedactPattern) (*Redactor, error) {
	r := &Redactor{}

	for _, p := range defaultPatterns {
		r.patterns = append(r.patterns, &redactPattern{
			name:        p.name,
			regex:       regexp.MustCompile(p.regex),
			replacement: p.replacement,
		})
	}

	for _, p := range custom {
		regex, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid redact pattern %q: %w", p.Name, err)
		}
		r.patterns = append(r.patterns, &redactPattern{
			name:        p.Name,
			regex:       regex,
			replacement: p.Replacement,
		})
	}

	return r, nil
}

// Redact applies every pattern to s and returns the masked result.
func (r *Redactor) Redact(s string) string {
	for _, p := range r.patterns {
		s = p.regex.ReplaceAllString(s, p.replacement)
	}
	return s
}

// RedactMap returns a copy of m with every value masked. Keys are left
// alone. Useful before logging an event detail map wholesale.
func (r *Redactor) RedactMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = r.Redact(v)
	}
	return out
}
