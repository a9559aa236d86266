package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/minjaelee/finboard/internal/common"
	"github.com/minjaelee/finboard/internal/interfaces"
	"github.com/minjaelee/finboard/internal/models"
	"github.com/minjaelee/finboard/internal/services/quote"
)

// categoryLabels are the display names used on the summary and chart.
var categoryLabels = map[models.AssetCategory]string{
	models.CategoryDomestic: "국내자산",
	models.CategoryOverseas: "해외자산",
	models.CategoryCrypto:   "가상자산",
	models.CategoryCash:     "현금성자산",
}

// ErrNoChartData is returned when no category has a chartable current value.
var ErrNoChartData = errors.New("no current values available to chart")

// allCategories fixes the iteration order for summary output.
var allCategories = []models.AssetCategory{
	models.CategoryDomestic,
	models.CategoryOverseas,
	models.CategoryCrypto,
	models.CategoryCash,
}

// Service implements the ReportService interface, orchestrating the loader,
// quote adapter, and valuation engine into display-ready output.
type Service struct {
	holdings  interfaces.HoldingsService
	quotes    interfaces.QuoteService
	valuation interfaces.ValuationService
	logger    *common.Logger
	now       func() time.Time // injectable for testing
}

// NewService creates a new report service
func NewService(holdings interfaces.HoldingsService, quotes interfaces.QuoteService, valuation interfaces.ValuationService, logger *common.Logger) *Service {
	return &Service{
		holdings:  holdings,
		quotes:    quotes,
		valuation: valuation,
		logger:    logger,
		now:       time.Now,
	}
}

// column describes one table column: its label, which currency views show
// it, and how to render a cell from a valued row.
type column struct {
	label string
	scope models.CurrencyView // ViewAll columns appear in every view
	cell  func(models.ValuationRow) string
}

func (c column) visibleIn(view models.CurrencyView) bool {
	return c.scope == models.ViewAll || view == models.ViewAll || c.scope == view
}

// CategoryTable loads, values, and formats one asset category. The view
// filters which columns are shown; every column set is always computed.
func (s *Service) CategoryTable(ctx context.Context, category models.AssetCategory, view models.CurrencyView, goldOverride float64) (*models.TableReport, error) {
	if category == models.CategoryCash {
		return s.cashTable(ctx, view)
	}

	valuation, err := s.valueCategory(ctx, category, goldOverride)
	if err != nil {
		return nil, err
	}

	columns := columnsFor(category)
	report := &models.TableReport{
		Category:    category,
		View:        view,
		Aggregate:   valuation.Aggregate,
		Totals:      formatAggregate(valuation.Aggregate),
		LiveFX:      FormatNumber2(valuation.LiveFX),
		GeneratedAt: s.now(),
	}

	for _, col := range columns {
		if col.visibleIn(view) {
			report.Columns = append(report.Columns, col.label)
		}
	}
	for _, row := range valuation.Rows {
		var cells []string
		for _, col := range columns {
			if col.visibleIn(view) {
				cells = append(cells, col.cell(row))
			}
		}
		report.Rows = append(report.Rows, cells)
	}

	return report, nil
}

// valueCategory runs the load/quote/value pipeline for one holdings category.
func (s *Service) valueCategory(ctx context.Context, category models.AssetCategory, goldOverride float64) (*models.CategoryValuation, error) {
	records, err := s.holdings.LoadCategory(ctx, category)
	if err != nil {
		return nil, err
	}

	prices, liveFX := s.categoryPrices(ctx, category, records, goldOverride)
	valuation := s.valuation.Value(records, prices, liveFX)
	valuation.Category = category
	return valuation, nil
}

// categoryPrices resolves the price map and live FX rate a category needs.
// Domestic rows are all KRW, so no FX lookup is spent on them.
func (s *Service) categoryPrices(ctx context.Context, category models.AssetCategory, records []models.HoldingRecord, goldOverride float64) (map[string]models.Number, models.Number) {
	prices := make(map[string]models.Number, len(records))

	switch category {
	case models.CategoryDomestic:
		for _, r := range records {
			if _, done := prices[r.Symbol]; !done {
				prices[r.Symbol] = s.quotes.DomesticPrice(ctx, r.Symbol, r.Name, goldOverride)
			}
		}
		return prices, models.MissingNumber()

	case models.CategoryOverseas:
		for _, r := range records {
			if _, done := prices[r.Symbol]; !done {
				prices[r.Symbol] = s.quotes.EquityPrice(ctx, r.Symbol)
			}
		}
		return prices, s.quotes.FXRate(ctx, quote.USDKRWPair)

	case models.CategoryCrypto:
		var ids []string
		seen := make(map[string]bool, len(records))
		for _, r := range records {
			if r.CoinID != "" && !seen[r.CoinID] {
				seen[r.CoinID] = true
				ids = append(ids, r.CoinID)
			}
		}

		quoted := s.quotes.CryptoPrices(ctx, ids, []string{"usd", "krw"})
		for _, r := range records {
			key := "usd"
			if r.Currency.IsHome() {
				key = "krw"
			}
			if coin, ok := quoted[r.CoinID]; ok {
				prices[r.CoinID] = coin[key]
			} else {
				prices[r.CoinID] = models.MissingNumber()
			}
		}
		return prices, s.quotes.FXRate(ctx, quote.USDKRWPair)
	}

	return prices, models.MissingNumber()
}

func (s *Service) cashTable(ctx context.Context, view models.CurrencyView) (*models.TableReport, error) {
	records, err := s.holdings.LoadCash(ctx)
	if err != nil {
		return nil, err
	}

	liveFX := s.quotes.FXRate(ctx, quote.USDKRWPair)
	valued, agg := s.valuation.ValueCash(records, liveFX)

	report := &models.TableReport{
		Category:    models.CategoryCash,
		View:        view,
		Aggregate:   agg,
		Totals:      formatAggregate(agg),
		LiveFX:      FormatNumber2(liveFX),
		GeneratedAt: s.now(),
	}

	showLocal := view == models.ViewAll || view == models.ViewLocal
	showHome := view == models.ViewAll || view == models.ViewHome

	report.Columns = []string{"증권사", "소유", "계좌구분", "통화", "성격"}
	if showLocal {
		report.Columns = append(report.Columns, "금액")
	}
	if showHome {
		report.Columns = append(report.Columns, "금액(KRW)")
	}

	for _, r := range valued {
		cells := []string{r.Broker, r.Owner, r.AccountType, string(r.Currency), r.Nature}
		if showLocal {
			cells = append(cells, FormatNumber(r.Amount))
		}
		if showHome {
			cells = append(cells, FormatNumber(r.AmountHome))
		}
		report.Rows = append(report.Rows, cells)
	}

	return report, nil
}

func columnsFor(category models.AssetCategory) []column {
	switch category {
	case models.CategoryDomestic:
		return []column{
			{"증권사", models.ViewAll, func(r models.ValuationRow) string { return r.Broker }},
			{"소유", models.ViewAll, func(r models.ValuationRow) string { return r.Owner }},
			{"종목명", models.ViewAll, func(r models.ValuationRow) string { return r.Name }},
			{"종목코드", models.ViewAll, func(r models.ValuationRow) string { return r.Symbol }},
			{"계좌구분", models.ViewAll, func(r models.ValuationRow) string { return r.AccountType }},
			{"성격", models.ViewAll, func(r models.ValuationRow) string { return r.Nature }},
			{"보유수량", models.ViewAll, func(r models.ValuationRow) string { return FormatNumber(r.Quantity) }},
			{"매수단가", models.ViewAll, func(r models.ValuationRow) string { return FormatNumber(r.UnitCost) }},
			{"매입총액 (KRW)", models.ViewAll, func(r models.ValuationRow) string { return FormatNumber(r.PurchaseTotalHome) }},
			{"현재가", models.ViewAll, func(r models.ValuationRow) string { return FormatNumber(r.CurrentPrice) }},
			{"평가총액 (KRW)", models.ViewAll, func(r models.ValuationRow) string { return FormatNumber(r.CurrentValueHome) }},
			{"평가손익 (KRW)", models.ViewAll, func(r models.ValuationRow) string { return FormatNumber(r.PnLHome) }},
			{"수익률 (%)", models.ViewAll, func(r models.ValuationRow) string { return FormatPercent(r.ReturnPctHome) }},
		}

	case models.CategoryOverseas:
		return []column{
			{"증권사", models.ViewAll, func(r models.ValuationRow) string { return r.Broker }},
			{"소유", models.ViewAll, func(r models.ValuationRow) string { return r.Owner }},
			{"종목티커", models.ViewAll, func(r models.ValuationRow) string { return r.Symbol }},
			{"계좌구분", models.ViewAll, func(r models.ValuationRow) string { return r.AccountType }},
			{"성격", models.ViewAll, func(r models.ValuationRow) string { return r.Nature }},
			{"보유수량", models.ViewAll, func(r models.ValuationRow) string { return FormatNumber(r.Quantity) }},
			{"매수단가", models.ViewAll, func(r models.ValuationRow) string { return FormatNumber2(r.UnitCost) }},
			{"매입환율", models.ViewAll, func(r models.ValuationRow) string { return FormatNumber2(r.PurchaseFX) }},
			{"매입총액(LC)", models.ViewLocal, func(r models.ValuationRow) string { return FormatNumber2(r.PurchaseTotalLocal) }},
			{"매입총액(KRW)", models.ViewHome, func(r models.ValuationRow) string { return FormatNumber(r.PurchaseTotalHome) }},
			{"현재가", models.ViewAll, func(r models.ValuationRow) string { return FormatNumber2(r.CurrentPrice) }},
			{"평가총액(LC)", models.ViewLocal, func(r models.ValuationRow) string { return FormatNumber2(r.CurrentValueLocal) }},
			{"평가총액(KRW)", models.ViewHome, func(r models.ValuationRow) string { return FormatNumber(r.CurrentValueHome) }},
			{"수익률(KRW)", models.ViewHome, func(r models.ValuationRow) string { return FormatPercent(r.ReturnPctHome) }},
		}

	case models.CategoryCrypto:
		return []column{
			{"증권사", models.ViewAll, func(r models.ValuationRow) string { return r.Broker }},
			{"소유", models.ViewAll, func(r models.ValuationRow) string { return r.Owner }},
			{"코인", models.ViewAll, func(r models.ValuationRow) string { return r.Name }},
			{"심볼", models.ViewAll, func(r models.ValuationRow) string { return r.Symbol }},
			{"통화", models.ViewAll, func(r models.ValuationRow) string { return string(r.Currency) }},
			{"수량(qty)", models.ViewAll, func(r models.ValuationRow) string { return FormatQty(r.Quantity) }},
			{"평균매수가(avg_price)", models.ViewAll, func(r models.ValuationRow) string { return FormatNumber(r.UnitCost) }},
			{"현재가", models.ViewAll, func(r models.ValuationRow) string { return FormatNumber(r.CurrentPrice) }},
			{"매입총액", models.ViewLocal, func(r models.ValuationRow) string { return FormatNumber(r.PurchaseTotalLocal) }},
			{"매입총액(KRW)", models.ViewHome, func(r models.ValuationRow) string { return FormatNumber(r.PurchaseTotalHome) }},
			{"평가총액", models.ViewLocal, func(r models.ValuationRow) string { return FormatNumber(r.CurrentValueLocal) }},
			{"평가총액(KRW)", models.ViewHome, func(r models.ValuationRow) string { return FormatNumber(r.CurrentValueHome) }},
			{"수익률", models.ViewHome, func(r models.ValuationRow) string { return FormatPercent(r.ReturnPctHome) }},
		}
	}

	return nil
}

func formatAggregate(agg models.CategoryAggregate) models.AggregateReport {
	return models.AggregateReport{
		PurchaseTotal: FormatNumber(agg.PurchaseTotal),
		CurrentValue:  FormatNumber(agg.CurrentValue),
		PnL:           FormatNumber(agg.PnL),
		ReturnPct:     FormatPercent(agg.ReturnPct),
	}
}

// Summary aggregates every category into home-currency totals plus a grand
// total. A failure in any category fails the summary; partial grand totals
// would misstate the portfolio.
func (s *Service) Summary(ctx context.Context, goldOverride float64) (*models.SummaryReport, error) {
	aggregates, err := s.allAggregates(ctx, goldOverride)
	if err != nil {
		return nil, err
	}

	report := &models.SummaryReport{
		Categories:  make(map[models.AssetCategory]models.AggregateReport, len(aggregates)),
		Raw:         aggregates,
		GeneratedAt: s.now(),
	}

	grand := models.CategoryAggregate{
		PurchaseTotal: models.N(0),
		CurrentValue:  models.N(0),
		PnL:           models.N(0),
	}
	for category, agg := range aggregates {
		report.Categories[category] = formatAggregate(agg)
		grand.PurchaseTotal = grand.PurchaseTotal.Add(agg.PurchaseTotal)
		grand.CurrentValue = grand.CurrentValue.Add(agg.CurrentValue)
		grand.PnL = grand.PnL.Add(agg.PnL)
	}

	grand.ReturnPct = models.ReturnPct(grand.PurchaseTotal, grand.CurrentValue)
	if grand.ReturnPct.IsMissing() {
		grand.ReturnPct = models.N(0)
	}
	report.GrandTotal = formatAggregate(grand)

	return report, nil
}

func (s *Service) allAggregates(ctx context.Context, goldOverride float64) (map[models.AssetCategory]models.CategoryAggregate, error) {
	aggregates := make(map[models.AssetCategory]models.CategoryAggregate, len(allCategories))

	for _, category := range allCategories {
		if category == models.CategoryCash {
			records, err := s.holdings.LoadCash(ctx)
			if err != nil {
				return nil, err
			}
			liveFX := s.quotes.FXRate(ctx, quote.USDKRWPair)
			_, agg := s.valuation.ValueCash(records, liveFX)
			aggregates[category] = agg
			continue
		}

		valuation, err := s.valueCategory(ctx, category, goldOverride)
		if err != nil {
			return nil, err
		}
		aggregates[category] = valuation.Aggregate
	}

	return aggregates, nil
}

// AllocationChart renders a PNG donut of current value by category.
func (s *Service) AllocationChart(ctx context.Context, goldOverride float64) ([]byte, error) {
	aggregates, err := s.allAggregates(ctx, goldOverride)
	if err != nil {
		return nil, err
	}

	var values []chart.Value
	for _, category := range allCategories {
		v, ok := aggregates[category].CurrentValue.Float64()
		if !ok || v <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Value: v,
			Label: categoryLabels[category],
		})
	}

	if len(values) == 0 {
		return nil, ErrNoChartData
	}

	donut := chart.DonutChart{
		Width:  600,
		Height: 600,
		Values: values,
	}

	var buf bytes.Buffer
	if err := donut.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render allocation chart: %w", err)
	}

	return buf.Bytes(), nil
}

// Ensure Service implements ReportService
var _ interfaces.ReportService = (*Service)(nil)
