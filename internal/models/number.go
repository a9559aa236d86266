// Package models defines data structures for Finboard
package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Number is a nullable decimal value. A missing Number propagates through
// arithmetic instead of raising or collapsing to zero, matching the behavior
// of spreadsheet cells that fail to parse and quotes that fail to fetch.
type Number struct {
	dec   decimal.Decimal
	valid bool
}

// N creates a valid Number from a float64.
func N(f float64) Number {
	return Number{dec: decimal.NewFromFloat(f), valid: true}
}

// NFromDecimal creates a valid Number from a decimal.Decimal.
func NFromDecimal(d decimal.Decimal) Number {
	return Number{dec: d, valid: true}
}

// MissingNumber returns the missing sentinel.
func MissingNumber() Number {
	return Number{}
}

// ParseNumber parses a spreadsheet cell into a Number. Thousands separators,
// percent signs, and surrounding whitespace are stripped first. Empty or
// unparsable input yields a missing Number, never an error.
func ParseNumber(s string) Number {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimSpace(s)
	if s == "" {
		return MissingNumber()
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return MissingNumber()
	}
	return Number{dec: d, valid: true}
}

// IsMissing reports whether the value is absent.
func (n Number) IsMissing() bool { return !n.valid }

// IsZero reports whether the value is present and exactly zero.
func (n Number) IsZero() bool { return n.valid && n.dec.IsZero() }

// IsPositive reports whether the value is present and greater than zero.
func (n Number) IsPositive() bool { return n.valid && n.dec.IsPositive() }

// Decimal returns the underlying decimal. Zero when missing.
func (n Number) Decimal() decimal.Decimal { return n.dec }

// Float64 returns the value as a float64, with ok=false when missing.
func (n Number) Float64() (float64, bool) {
	if !n.valid {
		return 0, false
	}
	f, _ := n.dec.Float64()
	return f, true
}

// OrZero returns the value, treating missing as zero. Used only for
// aggregation, where a missing row contributes nothing to the sum.
func (n Number) OrZero() decimal.Decimal {
	if !n.valid {
		return decimal.Zero
	}
	return n.dec
}

func (n Number) Add(o Number) Number {
	if !n.valid || !o.valid {
		return MissingNumber()
	}
	return Number{dec: n.dec.Add(o.dec), valid: true}
}

func (n Number) Sub(o Number) Number {
	if !n.valid || !o.valid {
		return MissingNumber()
	}
	return Number{dec: n.dec.Sub(o.dec), valid: true}
}

func (n Number) Mul(o Number) Number {
	if !n.valid || !o.valid {
		return MissingNumber()
	}
	return Number{dec: n.dec.Mul(o.dec), valid: true}
}

// Div divides n by o. Division by zero or by a missing value yields missing,
// never a panic and never infinity.
func (n Number) Div(o Number) Number {
	if !n.valid || !o.valid || o.dec.IsZero() {
		return MissingNumber()
	}
	return Number{dec: n.dec.Div(o.dec), valid: true}
}

// ReturnPct computes (current/purchase - 1) * 100. Missing when either input
// is missing or the purchase total is zero.
func ReturnPct(purchase, current Number) Number {
	ratio := current.Div(purchase)
	if ratio.IsMissing() {
		return MissingNumber()
	}
	one := NFromDecimal(decimal.NewFromInt(1))
	hundred := NFromDecimal(decimal.NewFromInt(100))
	return ratio.Sub(one).Mul(hundred)
}

// String renders the plain decimal value, or "-" when missing.
func (n Number) String() string {
	if !n.valid {
		return "-"
	}
	return n.dec.String()
}

// MarshalJSON renders the value as a JSON number, or null when missing.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.valid {
		return []byte("null"), nil
	}
	return []byte(n.dec.String()), nil
}

// UnmarshalJSON accepts a JSON number, string, or null.
func (n *Number) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*n = MissingNumber()
		return nil
	}
	s = strings.Trim(s, `"`)
	*n = ParseNumber(s)
	return nil
}
