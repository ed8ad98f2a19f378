package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// ValueType represents the type of an argument value in a rule statement.
// Values are typed by lexical form; there is no automatic coercion.
type ValueType string

const (
	ValueTypeString    ValueType = "string"    // Quoted string literal
	ValueTypeNumber    ValueType = "number"    // Integer or decimal literal
	ValueTypeMoney     ValueType = "money"     // Currency-prefixed amount ($12.50)
	ValueTypeReference ValueType = "reference" // Bare identifier (stakeholder/policy reference)
)

// Value represents a typed argument value in the AST.
type Value struct {
	Type     ValueType // Type of the value
	Str      string    // String content (Type == ValueTypeString)
	Num      float64   // Numeric content (Type == ValueTypeNumber)
	Money    Money     // Money content (Type == ValueTypeMoney)
	Ref      string    // Referenced identifier (Type == ValueTypeReference)
	Location Location  // Source location
}

// String returns the canonical text form of the value, suitable for
// re-serializing a rule to its canonical statement.
func (v Value) String() string {
	switch v.Type {
	case ValueTypeString:
		return strconv.Quote(v.Str)
	case ValueTypeNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case ValueTypeMoney:
		return v.Money.String()
	case ValueTypeReference:
		return v.Ref
	default:
		return ""
	}
}

// Money represents a currency amount with cent precision.
// Amounts are stored in cents to avoid floating-point drift in payments.
type Money struct {
	Cents    int64  // Amount in cents (never negative in a parsed rule)
	Currency string // ISO currency code (default "USD")
}

// String returns the canonical "$12.50" form of the amount.
func (m Money) String() string {
	return fmt.Sprintf("$%d.%02d", m.Cents/100, m.Cents%100)
}

// IsPositive returns true if the amount is strictly greater than zero.
func (m Money) IsPositive() bool {
	return m.Cents > 0
}

// ParseMoney parses a currency-prefixed amount ("$12.50") into a Money value.
// The amount must be non-negative and carry at most two decimal digits.
func ParseMoney(text string) (Money, error) {
	if !strings.HasPrefix(text, "$") {
		return Money{}, fmt.Errorf("money value must start with '$': %q", text)
	}
	body := strings.TrimPrefix(text, "$")
	if body == "" {
		return Money{}, fmt.Errorf("money value has no amount: %q", text)
	}
	if strings.HasPrefix(body, "-") {
		return Money{}, fmt.Errorf("money value must be non-negative: %q", text)
	}

	whole, frac, hasFrac := strings.Cut(body, ".")
	if hasFrac && len(frac) > 2 {
		return Money{}, fmt.Errorf("money value has more than 2 decimal digits: %q", text)
	}

	dollars, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return Money{}, fmt.Errorf("invalid money amount %q: %w", text, err)
	}

	cents := int64(0)
	if hasFrac {
		// Pad to two digits so "$5.5" means $5.50.
		for len(frac) < 2 {
			frac += "0"
		}
		cents, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return Money{}, fmt.Errorf("invalid money amount %q: %w", text, err)
		}
	}

	return Money{Cents: dollars*100 + cents, Currency: "USD"}, nil
}
