package interfaces

import (
	"context"

	"github.com/minjaelee/finboard/internal/models"
)

// QuoteService wraps the external quote providers behind uniform lookups.
// Every lookup returns a missing Number on any transport, parse, or empty
// payload failure; errors never propagate to callers.
type QuoteService interface {
	// EquityPrice retrieves the latest close for a Yahoo-notation symbol.
	EquityPrice(ctx context.Context, symbol string) models.Number

	// FXRate retrieves a live FX rate, e.g. "USDKRW=X" for KRW per USD.
	FXRate(ctx context.Context, pair string) models.Number

	// CommodityPrice retrieves a commodity future quote, e.g. "GC=F" in USD
	// per troy ounce.
	CommodityPrice(ctx context.Context, symbol string) models.Number

	// CryptoPrices retrieves spot prices for coin IDs in the given quote
	// currencies. A full-call failure returns the last successful result when
	// one exists, otherwise nil.
	CryptoPrices(ctx context.Context, ids []string, currencies []string) map[string]map[string]models.Number

	// DomesticPrice resolves a domestic holding's price: gold rows route to
	// the gold resolver, everything else to the KRX quote.
	DomesticPrice(ctx context.Context, symbol, name string, goldOverride float64) models.Number

	// GoldPricePerGram resolves the KRW-per-gram gold price. A positive
	// override wins verbatim; otherwise the international quote is converted.
	GoldPricePerGram(ctx context.Context, override float64) models.Number
}

// HoldingsService loads and normalizes the holdings spreadsheet.
type HoldingsService interface {
	// LoadCategory reads one asset category's worksheet into normalized
	// records. Returns *models.SchemaError when required columns are absent.
	LoadCategory(ctx context.Context, category models.AssetCategory) ([]models.HoldingRecord, error)

	// LoadCash reads the cash worksheet.
	LoadCash(ctx context.Context) ([]models.CashRecord, error)
}

// ValuationService computes per-row and aggregate valuation figures.
type ValuationService interface {
	// Value enriches records with computed columns using the supplied prices
	// (keyed by symbol for equities, coin ID for crypto) and the live FX rate.
	Value(records []models.HoldingRecord, prices map[string]models.Number, liveFX models.Number) *models.CategoryValuation

	// ValueCash converts cash rows to the home currency and sums them.
	ValueCash(records []models.CashRecord, liveFX models.Number) ([]models.CashRecord, models.CategoryAggregate)
}

// ReportService renders valuation output into display-ready tables.
type ReportService interface {
	// CategoryTable loads, values, and formats one asset category.
	CategoryTable(ctx context.Context, category models.AssetCategory, view models.CurrencyView, goldOverride float64) (*models.TableReport, error)

	// Summary aggregates every category into home-currency totals.
	Summary(ctx context.Context, goldOverride float64) (*models.SummaryReport, error)

	// AllocationChart renders a PNG of current value by category.
	AllocationChart(ctx context.Context, goldOverride float64) ([]byte, error)
}
