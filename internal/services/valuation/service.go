// Package valuation computes per-row and aggregate figures for asset categories
package valuation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/minjaelee/finboard/internal/common"
	"github.com/minjaelee/finboard/internal/interfaces"
	"github.com/minjaelee/finboard/internal/models"
)

// Service implements the ValuationService interface. Valuation is a pure
// function of its inputs; the same records, prices, and FX rate always
// produce the same output.
type Service struct {
	logger *common.Logger
	now    func() time.Time // injectable for testing
}

// NewService creates a new valuation service
func NewService(logger *common.Logger) *Service {
	return &Service{
		logger: logger,
		now:    time.Now,
	}
}

// NewServiceWithClock creates a valuation service with an injectable clock.
func NewServiceWithClock(logger *common.Logger, now func() time.Time) *Service {
	return &Service{
		logger: logger,
		now:    now,
	}
}

// Value enriches records with computed columns. Prices are keyed by symbol
// for equities and by coin ID for crypto; liveFX is KRW per USD. Rows with a
// missing price keep their purchase figures and blank their current figures.
func (s *Service) Value(records []models.HoldingRecord, prices map[string]models.Number, liveFX models.Number) *models.CategoryValuation {
	valuation := &models.CategoryValuation{
		Rows:     make([]models.ValuationRow, 0, len(records)),
		LiveFX:   liveFX,
		ValuedAt: s.now(),
	}
	if len(records) > 0 {
		valuation.Category = records[0].Category
	}

	for _, record := range records {
		row := s.valueRow(record, prices[priceKey(record)], liveFX)
		valuation.Rows = append(valuation.Rows, row)
	}

	valuation.Aggregate = aggregate(valuation.Rows)

	s.logger.Debug().
		Str("category", string(valuation.Category)).
		Int("rows", len(valuation.Rows)).
		Msg("Category valued")

	return valuation
}

// priceKey selects the lookup key for a record's price.
func priceKey(record models.HoldingRecord) string {
	if record.Category == models.CategoryCrypto {
		return record.CoinID
	}
	return record.Symbol
}

func (s *Service) valueRow(record models.HoldingRecord, price models.Number, liveFX models.Number) models.ValuationRow {
	row := models.ValuationRow{
		HoldingRecord: record,
		CurrentPrice:  price,
	}

	row.PurchaseTotalLocal = record.Quantity.Mul(record.UnitCost)
	row.CurrentValueLocal = record.Quantity.Mul(price)
	row.PnLLocal = row.CurrentValueLocal.Sub(row.PurchaseTotalLocal)
	row.ReturnPctLocal = models.ReturnPct(row.PurchaseTotalLocal, row.CurrentValueLocal)

	switch {
	case record.Currency.IsHome():
		row.PurchaseTotalHome = row.PurchaseTotalLocal
		row.CurrentValueHome = row.CurrentValueLocal

	case record.Category == models.CategoryOverseas:
		// Purchase totals convert at the acquisition-time rate, current
		// values at today's rate. The gap between the two is part of the
		// home-currency P&L.
		row.PurchaseTotalHome = row.PurchaseTotalLocal.Mul(record.PurchaseFX)
		row.CurrentValueHome = row.CurrentValueLocal.Mul(liveFX)

	default:
		// Crypto rows carry no acquisition-time rate; both sides convert
		// at today's rate.
		row.PurchaseTotalHome = row.PurchaseTotalLocal.Mul(liveFX)
		row.CurrentValueHome = row.CurrentValueLocal.Mul(liveFX)
	}

	row.PnLHome = row.CurrentValueHome.Sub(row.PurchaseTotalHome)
	row.ReturnPctHome = models.ReturnPct(row.PurchaseTotalHome, row.CurrentValueHome)

	return row
}

// aggregate sums home-currency figures across rows. Missing rows contribute
// zero without blanking the total; the aggregate return falls back to zero
// when the purchase sum is zero.
func aggregate(rows []models.ValuationRow) models.CategoryAggregate {
	sumPurchase := decimal.Zero
	sumCurrent := decimal.Zero
	for _, row := range rows {
		sumPurchase = sumPurchase.Add(row.PurchaseTotalHome.OrZero())
		sumCurrent = sumCurrent.Add(row.CurrentValueHome.OrZero())
	}

	purchase := models.NFromDecimal(sumPurchase)
	current := models.NFromDecimal(sumCurrent)

	returnPct := models.ReturnPct(purchase, current)
	if returnPct.IsMissing() {
		returnPct = models.N(0)
	}

	return models.CategoryAggregate{
		PurchaseTotal: purchase,
		CurrentValue:  current,
		PnL:           current.Sub(purchase),
		ReturnPct:     returnPct,
	}
}

// ValueCash converts cash rows to the home currency and sums them. Cash has
// no cost basis, so the aggregate's purchase and current sides are equal.
func (s *Service) ValueCash(records []models.CashRecord, liveFX models.Number) ([]models.CashRecord, models.CategoryAggregate) {
	valued := make([]models.CashRecord, 0, len(records))
	sum := decimal.Zero

	for _, record := range records {
		if record.Currency.IsHome() {
			record.AmountHome = record.Amount
		} else {
			record.AmountHome = record.Amount.Mul(liveFX)
		}
		sum = sum.Add(record.AmountHome.OrZero())
		valued = append(valued, record)
	}

	total := models.NFromDecimal(sum)
	return valued, models.CategoryAggregate{
		PurchaseTotal: total,
		CurrentValue:  total,
		PnL:           models.N(0),
		ReturnPct:     models.N(0),
	}
}

// Ensure Service implements ValuationService
var _ interfaces.ValuationService = (*Service)(nil)
