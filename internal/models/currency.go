package models

import (
	"fmt"
	"strings"
)

// Currency is an ISO-style currency code. KRW is the home (reporting)
// currency; foreign holdings are denominated in their local currency.
type Currency string

const (
	CurrencyKRW Currency = "KRW"
	CurrencyUSD Currency = "USD"
)

// HomeCurrency is the reporting currency for all aggregate figures.
const HomeCurrency = CurrencyKRW

// ErrUnknownCurrency is returned when a spreadsheet currency cell cannot be
// mapped to a known code.
type ErrUnknownCurrency struct {
	Raw string
}

func (e *ErrUnknownCurrency) Error() string {
	return fmt.Sprintf("unknown currency code %q", e.Raw)
}

// currencyAliases maps the spellings that appear in the source spreadsheet
// (including Korean labels) to canonical codes.
var currencyAliases = map[string]Currency{
	"KRW": CurrencyKRW,
	"KR":  CurrencyKRW,
	"원":   CurrencyKRW,
	"USD": CurrencyUSD,
	"US":  CurrencyUSD,
	"달러":  CurrencyUSD,
}

// ParseCurrency normalizes a raw spreadsheet currency cell. Matching is
// case- and whitespace-insensitive.
func ParseCurrency(raw string) (Currency, error) {
	key := strings.ToUpper(strings.TrimSpace(raw))
	if c, ok := currencyAliases[key]; ok {
		return c, nil
	}
	// Korean labels are not upper-cased by ToUpper; retry trimmed only.
	if c, ok := currencyAliases[strings.TrimSpace(raw)]; ok {
		return c, nil
	}
	return "", &ErrUnknownCurrency{Raw: raw}
}

// IsHome reports whether the currency is the home reporting currency.
func (c Currency) IsHome() bool { return c == HomeCurrency }
