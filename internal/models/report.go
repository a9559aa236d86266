package models

import "time"

// CurrencyView selects which derived column set a table displays. All column
// sets are always computed; the view only filters what is shown.
type CurrencyView string

const (
	ViewAll   CurrencyView = "all"
	ViewLocal CurrencyView = "local"
	ViewHome  CurrencyView = "home"
)

// ParseCurrencyView maps a query parameter to a CurrencyView, defaulting to all.
func ParseCurrencyView(s string) CurrencyView {
	switch CurrencyView(s) {
	case ViewLocal:
		return ViewLocal
	case ViewHome:
		return ViewHome
	default:
		return ViewAll
	}
}

// TableReport is a formatted, display-ready table for one asset category.
// Cells are pre-formatted strings with "-" standing in for missing values.
type TableReport struct {
	Category    AssetCategory     `json:"category"`
	View        CurrencyView      `json:"view"`
	Columns     []string          `json:"columns"`
	Rows        [][]string        `json:"rows"`
	Totals      AggregateReport   `json:"totals"`
	Aggregate   CategoryAggregate `json:"aggregate"` // raw figures behind Totals
	LiveFX      string            `json:"live_fx"`   // formatted KRW/USD, "-" when unavailable
	GeneratedAt time.Time         `json:"generated_at"`
}

// AggregateReport holds the formatted aggregate figures shown above a table.
type AggregateReport struct {
	PurchaseTotal string `json:"purchase_total"`
	CurrentValue  string `json:"current_value"`
	PnL           string `json:"pnl"`
	ReturnPct     string `json:"return_pct"`
}

// SummaryReport combines every category's aggregates with a grand total,
// all in the home currency.
type SummaryReport struct {
	Categories  map[AssetCategory]AggregateReport   `json:"categories"`
	GrandTotal  AggregateReport                     `json:"grand_total"`
	Raw         map[AssetCategory]CategoryAggregate `json:"raw"`
	GeneratedAt time.Time                           `json:"generated_at"`
}
