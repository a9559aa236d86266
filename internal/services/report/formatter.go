// Package report renders valuation output into display-ready tables
package report

import (
	"strings"

	"github.com/minjaelee/finboard/internal/models"
)

// qtyPlaces is the fixed precision for crypto quantities, which are held in
// fractions far below one coin.
const qtyPlaces = 9

// FormatNumber renders a grouped integer, e.g. "1,234,567". Missing -> "-".
func FormatNumber(n models.Number) string {
	return formatGrouped(n, 0)
}

// FormatNumber2 renders a grouped number with two decimal places,
// e.g. "1,300.50". Missing -> "-".
func FormatNumber2(n models.Number) string {
	return formatGrouped(n, 2)
}

// FormatQty renders a crypto quantity with nine decimal places,
// e.g. "0.025000000". Missing -> "-".
func FormatQty(n models.Number) string {
	return formatGrouped(n, qtyPlaces)
}

// FormatPercent renders a percentage with two decimal places and no
// grouping, e.g. "-3.46%". Missing -> "-".
func FormatPercent(n models.Number) string {
	if n.IsMissing() {
		return "-"
	}
	return n.Decimal().StringFixed(2) + "%"
}

func formatGrouped(n models.Number, places int32) string {
	if n.IsMissing() {
		return "-"
	}

	s := n.Decimal().StringFixed(places)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	intPart, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}
