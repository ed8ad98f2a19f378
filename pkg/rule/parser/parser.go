package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aletheon/eleutherios-mvp-sub002/pkg/rule/ast"
	ruleErrors "github.com/aletheon/eleutherios-mvp-sub002/pkg/rule/errors"
)

// Parser parses rule statements into Abstract Syntax Trees.
// It is stateless between lines; every line is parsed independently and order
// of appearance is preserved by the caller for guard evaluation.
type Parser struct {
	// Configuration
	maxLineLength int // Maximum statement length in bytes (default: 4KB)
	maxArgs       int // Maximum argument count per rule (default: 32)
}

// New creates a new parser with default configuration.
func New() *Parser {
	return &Parser{
		maxLineLength: 4 * 1024,
		maxArgs:       32,
	}
}

// WithMaxLineLength sets the maximum statement length.
func (p *Parser) WithMaxLineLength(n int) *Parser {
	p.maxLineLength = n
	return p
}

// WithMaxArgs sets the maximum argument count per rule.
func (p *Parser) WithMaxArgs(n int) *Parser {
	p.maxArgs = n
	return p
}

// ParseLine parses a single line of text.
//
// It returns (nil, nil) when the line is not a rule statement: it does not
// open with the "rule <name> ->" shape, or its target kind is outside the
// closed Forum/Service/Policy set. Such lines are ordinary conversation.
//
// It returns a *errors.Error of type syntax when the line opens with the rule
// shape but is malformed inside (unbalanced parentheses, bad money amount,
// duplicate argument keys).
func (p *Parser) ParseLine(text string, loc ast.Location) (*ast.Rule, error) {
	if len(text) > p.maxLineLength {
		return nil, &ruleErrors.Error{
			Type:     ruleErrors.ErrorTypeSyntax,
			Message:  fmt.Sprintf("statement length %d exceeds maximum %d bytes", len(text), p.maxLineLength),
			Location: loc,
		}
	}

	s := newScanner(text, loc)
	s.skipSpace()

	// "rule" keyword. Anything else is conversation.
	if !s.consumeWord("rule") {
		return nil, nil
	}
	if !s.skipSpace() {
		return nil, nil
	}

	name := s.scanIdent()
	if name == "" {
		return nil, nil
	}

	s.skipSpace()
	if !s.consume("->") {
		return nil, nil
	}
	s.skipSpace()

	kindWord := s.scanIdent()
	kind, ok := ast.ParseTargetKind(kindWord)
	if !ok {
		// Unrecognized target kinds are conversation, never an error.
		return nil, nil
	}

	// From here the line is committed to being a rule statement; malformed
	// interiors are syntax errors.
	rule := &ast.Rule{
		Name:     name,
		Kind:     kind,
		Location: loc,
	}

	if !s.consume("(") {
		return nil, s.errorf("expected '(' after target kind %s", kind)
	}
	s.skipSpace()

	target, err := s.scanQuoted()
	if err != nil {
		return nil, s.wrapf(err, "invalid target")
	}
	rule.Target = target

	// Arguments.
	for {
		s.skipSpace()
		if s.consume(")") {
			break
		}
		if !s.consume(",") {
			return nil, s.errorf("expected ',' or ')' in argument list")
		}
		s.skipSpace()

		key := s.scanIdent()
		if key == "" {
			return nil, s.errorf("expected argument key")
		}
		if rule.HasArg(key) {
			return nil, s.errorf("duplicate argument key %q", key)
		}

		s.skipSpace()
		if !s.consume("=") && !s.consume(":") {
			return nil, s.errorf("expected '=' or ':' after argument key %q", key)
		}
		s.skipSpace()

		value, err := s.scanValue()
		if err != nil {
			return nil, s.wrapf(err, "invalid value for argument %q", key)
		}

		rule.Args = append(rule.Args, ast.Argument{Key: key, Value: value})
		if len(rule.Args) > p.maxArgs {
			return nil, s.errorf("argument count exceeds maximum %d", p.maxArgs)
		}
	}

	// Optional guard clause: requires [a, b].
	s.skipSpace()
	if s.consumeWord("requires") {
		s.skipSpace()
		if !s.consume("[") {
			return nil, s.errorf("expected '[' after requires")
		}
		for {
			s.skipSpace()
			ref := s.scanIdent()
			if ref == "" {
				return nil, s.errorf("expected guard reference")
			}
			rule.Guards = append(rule.Guards, ref)

			s.skipSpace()
			if s.consume("]") {
				break
			}
			if !s.consume(",") {
				return nil, s.errorf("expected ',' or ']' in guard list")
			}
		}
		s.skipSpace()
	}

	if !s.atEnd() {
		return nil, s.errorf("unexpected trailing text %q", s.rest())
	}

	return rule, nil
}

// ParseDocument parses a policy document: one rule statement per line.
// Blank lines and lines starting with '#' are skipped. Unlike conversation
// text, every other line of a policy document must be a well-formed rule, so
// unrecognized lines accumulate syntax errors instead of being ignored.
//
// Rules are returned in order of appearance, which the executor preserves for
// guard evaluation. Errors are accumulated so a single pass reports every
// problem in the document.
func (p *Parser) ParseDocument(data []byte, source string) ([]*ast.Rule, error) {
	var rules []*ast.Rule
	errList := ruleErrors.NewErrorList()
	seen := make(map[string]int)

	for i, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		loc := ast.Location{Source: source, Line: i + 1, Column: 1}
		rule, err := p.ParseLine(line, loc)
		if err != nil {
			if e, ok := err.(*ruleErrors.Error); ok {
				errList.Add(e)
			} else {
				errList.AddError(ruleErrors.ErrorTypeSyntax, err.Error(), loc)
			}
			continue
		}
		if rule == nil {
			errList.AddErrorWithSuggestion(
				ruleErrors.ErrorTypeSyntax,
				fmt.Sprintf("line is not a rule statement: %q", trimmed),
				loc,
				`expected: rule <name> -> Forum|Service|Policy("<target>", key=value, ...)`,
			)
			continue
		}

		if prev, dup := seen[rule.Name]; dup {
			errList.AddError(
				ruleErrors.ErrorTypeSyntax,
				fmt.Sprintf("duplicate rule name %q (first defined on line %d)", rule.Name, prev),
				loc,
			)
			continue
		}
		seen[rule.Name] = i + 1

		rules = append(rules, rule)
	}

	return rules, errList.ToError()
}

// scanner is a minimal cursor over one line of text.
type scanner struct {
	text string
	pos  int
	loc  ast.Location
}

func newScanner(text string, loc ast.Location) *scanner {
	return &scanner{text: text, loc: loc}
}

// skipSpace advances past spaces and tabs. It reports whether it moved.
func (s *scanner) skipSpace() bool {
	start := s.pos
	for s.pos < len(s.text) && (s.text[s.pos] == ' ' || s.text[s.pos] == '\t') {
		s.pos++
	}
	return s.pos > start
}

// consume advances past the literal token if it is next.
func (s *scanner) consume(tok string) bool {
	if strings.HasPrefix(s.text[s.pos:], tok) {
		s.pos += len(tok)
		return true
	}
	return false
}

// consumeWord advances past the word if it is next and followed by a
// non-identifier byte, so "rules" does not match "rule".
func (s *scanner) consumeWord(word string) bool {
	if !strings.HasPrefix(s.text[s.pos:], word) {
		return false
	}
	end := s.pos + len(word)
	if end < len(s.text) && isIdentByte(s.text[end]) {
		return false
	}
	s.pos = end
	return true
}

// scanIdent scans a bare identifier: a letter or underscore followed by
// letters, digits, underscores, hyphens, or dots.
func (s *scanner) scanIdent() string {
	start := s.pos
	if s.pos >= len(s.text) || !isIdentStart(s.text[s.pos]) {
		return ""
	}
	for s.pos < len(s.text) && isIdentByte(s.text[s.pos]) {
		s.pos++
	}
	return s.text[start:s.pos]
}

// scanQuoted scans a double-quoted string with backslash escapes.
func (s *scanner) scanQuoted() (string, error) {
	if s.pos >= len(s.text) || s.text[s.pos] != '"' {
		return "", fmt.Errorf("expected quoted string")
	}
	start := s.pos
	s.pos++
	for s.pos < len(s.text) {
		switch s.text[s.pos] {
		case '\\':
			s.pos += 2
		case '"':
			s.pos++
			unquoted, err := strconv.Unquote(s.text[start:s.pos])
			if err != nil {
				return "", fmt.Errorf("invalid string literal: %w", err)
			}
			return unquoted, nil
		default:
			s.pos++
		}
	}
	return "", fmt.Errorf("unterminated string literal")
}

// scanValue scans one typed argument value.
func (s *scanner) scanValue() (ast.Value, error) {
	loc := s.here()

	if s.pos >= len(s.text) {
		return ast.Value{}, fmt.Errorf("expected value")
	}

	switch c := s.text[s.pos]; {
	case c == '"':
		str, err := s.scanQuoted()
		if err != nil {
			return ast.Value{}, err
		}
		return ast.Value{Type: ast.ValueTypeString, Str: str, Location: loc}, nil

	case c == '$':
		tok := s.scanToken()
		money, err := ast.ParseMoney(tok)
		if err != nil {
			return ast.Value{}, err
		}
		return ast.Value{Type: ast.ValueTypeMoney, Money: money, Location: loc}, nil

	case c == '-' || (c >= '0' && c <= '9'):
		tok := s.scanToken()
		num, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return ast.Value{}, fmt.Errorf("invalid numeric literal %q", tok)
		}
		return ast.Value{Type: ast.ValueTypeNumber, Num: num, Location: loc}, nil

	default:
		ref := s.scanIdent()
		if ref == "" {
			return ast.Value{}, fmt.Errorf("expected value at %q", s.rest())
		}
		return ast.Value{Type: ast.ValueTypeReference, Ref: ref, Location: loc}, nil
	}
}

// scanToken scans up to the next delimiter (space, comma, parenthesis, bracket).
func (s *scanner) scanToken() string {
	start := s.pos
	for s.pos < len(s.text) {
		switch s.text[s.pos] {
		case ' ', '\t', ',', ')', ']':
			return s.text[start:s.pos]
		}
		s.pos++
	}
	return s.text[start:s.pos]
}

func (s *scanner) atEnd() bool {
	return s.pos >= len(s.text)
}

func (s *scanner) rest() string {
	if s.atEnd() {
		return ""
	}
	return s.text[s.pos:]
}

// here returns the location of the current cursor position.
func (s *scanner) here() ast.Location {
	return ast.Location{Source: s.loc.Source, Line: s.loc.Line, Column: s.pos + 1}
}

func (s *scanner) errorf(format string, args ...interface{}) error {
	return &ruleErrors.Error{
		Type:     ruleErrors.ErrorTypeSyntax,
		Message:  fmt.Sprintf(format, args...),
		Location: s.here(),
	}
}

func (s *scanner) wrapf(err error, format string, args ...interface{}) error {
	return &ruleErrors.Error{
		Type:     ruleErrors.ErrorTypeSyntax,
		Message:  fmt.Sprintf(format, args...) + ": " + err.Error(),
		Location: s.here(),
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentByte(c byte) bool {
	return isIdentStart(c) || c == '-' || c == '.' || (c >= '0' && c <= '9')
}
