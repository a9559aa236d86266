package models

import (
	"fmt"
	"strings"
	"time"
)

// AssetCategory selects which worksheet a record came from and which
// valuation rules apply to it.
type AssetCategory string

const (
	CategoryDomestic AssetCategory = "domestic"
	CategoryOverseas AssetCategory = "overseas"
	CategoryCrypto   AssetCategory = "crypto"
	CategoryCash     AssetCategory = "cash"
)

// ParseCategory maps a URL path segment to an AssetCategory.
func ParseCategory(s string) (AssetCategory, error) {
	switch AssetCategory(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryDomestic:
		return CategoryDomestic, nil
	case CategoryOverseas:
		return CategoryOverseas, nil
	case CategoryCrypto:
		return CategoryCrypto, nil
	case CategoryCash:
		return CategoryCash, nil
	}
	return "", fmt.Errorf("unknown asset category %q", s)
}

// HoldingRecord is one normalized row of an asset worksheet. Records are
// rebuilt from the current spreadsheet snapshot on every render and never
// mutated in place; derived figures live on ValuationRow.
type HoldingRecord struct {
	Category    AssetCategory `json:"category"`
	Broker      string        `json:"broker"`
	Owner       string        `json:"owner"`
	Name        string        `json:"name,omitempty"`    // display name, domestic and crypto only
	Symbol      string        `json:"symbol"`            // exchange code, ticker, or crypto symbol
	CoinID      string        `json:"coin_id,omitempty"` // CoinGecko identifier, crypto only
	AccountType string        `json:"account_type"`
	Nature      string        `json:"nature,omitempty"` // category tag from the sheet (성격)
	Quantity    Number        `json:"quantity"`
	UnitCost    Number        `json:"unit_cost"` // in the holding's local currency
	Currency    Currency      `json:"currency"`
	PurchaseFX  Number        `json:"purchase_fx,omitempty"` // acquisition-time FX rate, overseas only
}

// IsGold reports whether a domestic record represents physical gold, which is
// priced per gram by the gold resolver rather than by exchange quote.
func (r HoldingRecord) IsGold() bool {
	return r.Name == "금현물" || strings.EqualFold(r.Symbol, "GOLD")
}

// CashRecord is one normalized row of the cash worksheet.
type CashRecord struct {
	Broker      string   `json:"broker"`
	Owner       string   `json:"owner"`
	AccountType string   `json:"account_type"`
	Currency    Currency `json:"currency"`
	Nature      string   `json:"nature"`
	Amount      Number   `json:"amount"`      // in the row's currency
	AmountHome  Number   `json:"amount_home"` // converted to KRW at the live rate
}

// ValuationRow is a HoldingRecord enriched with computed columns. Local
// figures are in the holding's own currency; home figures are in KRW.
// Recomputed on every render, never cached beyond the quote TTL.
type ValuationRow struct {
	HoldingRecord

	CurrentPrice Number `json:"current_price"`

	PurchaseTotalLocal Number `json:"purchase_total_local"`
	CurrentValueLocal  Number `json:"current_value_local"`
	PnLLocal           Number `json:"pnl_local"`
	ReturnPctLocal     Number `json:"return_pct_local"`

	PurchaseTotalHome Number `json:"purchase_total_home"`
	CurrentValueHome  Number `json:"current_value_home"`
	PnLHome           Number `json:"pnl_home"`
	ReturnPctHome     Number `json:"return_pct_home"`
}

// CategoryAggregate sums home-currency figures across a category's rows.
// Missing rows contribute zero without blanking the total; the aggregate
// return falls back to zero when the purchase sum is zero.
type CategoryAggregate struct {
	PurchaseTotal Number `json:"purchase_total"`
	CurrentValue  Number `json:"current_value"`
	PnL           Number `json:"pnl"`
	ReturnPct     Number `json:"return_pct"`
}

// CategoryValuation is the full valuation output for one asset category.
type CategoryValuation struct {
	Category  AssetCategory     `json:"category"`
	Rows      []ValuationRow    `json:"rows"`
	Aggregate CategoryAggregate `json:"aggregate"`
	LiveFX    Number            `json:"live_fx"` // KRW per USD at valuation time
	ValuedAt  time.Time         `json:"valued_at"`
}

// SchemaError reports required worksheet columns that are absent. It aborts
// rendering for the affected category only.
type SchemaError struct {
	Sheet   string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("sheet %q is missing required columns: %s", e.Sheet, strings.Join(e.Missing, ", "))
}
