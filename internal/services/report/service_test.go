package report

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minjaelee/finboard/internal/common"
	"github.com/minjaelee/finboard/internal/models"
	"github.com/minjaelee/finboard/internal/services/valuation"
)

type mockHoldings struct {
	records map[models.AssetCategory][]models.HoldingRecord
	cash    []models.CashRecord
	errs    map[models.AssetCategory]error
	cashErr error
}

func (m *mockHoldings) LoadCategory(_ context.Context, category models.AssetCategory) ([]models.HoldingRecord, error) {
	if err, ok := m.errs[category]; ok {
		return nil, err
	}
	return m.records[category], nil
}

func (m *mockHoldings) LoadCash(_ context.Context) ([]models.CashRecord, error) {
	if m.cashErr != nil {
		return nil, m.cashErr
	}
	return m.cash, nil
}

type mockQuotes struct {
	equities    map[string]models.Number
	fx          models.Number
	commodities map[string]models.Number
	crypto      map[string]map[string]models.Number
	gold        models.Number
}

func (m *mockQuotes) EquityPrice(_ context.Context, symbol string) models.Number {
	if n, ok := m.equities[symbol]; ok {
		return n
	}
	return models.MissingNumber()
}

func (m *mockQuotes) FXRate(_ context.Context, _ string) models.Number {
	return m.fx
}

func (m *mockQuotes) CommodityPrice(_ context.Context, symbol string) models.Number {
	if n, ok := m.commodities[symbol]; ok {
		return n
	}
	return models.MissingNumber()
}

func (m *mockQuotes) CryptoPrices(_ context.Context, _ []string, _ []string) map[string]map[string]models.Number {
	return m.crypto
}

func (m *mockQuotes) DomesticPrice(_ context.Context, symbol, name string, goldOverride float64) models.Number {
	record := models.HoldingRecord{Name: name, Symbol: symbol}
	if record.IsGold() {
		return m.GoldPricePerGram(context.Background(), goldOverride)
	}
	return m.EquityPrice(context.Background(), symbol+".KS")
}

func (m *mockQuotes) GoldPricePerGram(_ context.Context, override float64) models.Number {
	if override > 0 {
		return models.N(override)
	}
	return m.gold
}

func newTestService(holdings *mockHoldings, quotes *mockQuotes) *Service {
	logger := common.NewSilentLogger()
	return NewService(holdings, quotes, valuation.NewService(logger), logger)
}

func TestCategoryTableDomestic(t *testing.T) {
	holdings := &mockHoldings{
		records: map[models.AssetCategory][]models.HoldingRecord{
			models.CategoryDomestic: {
				{
					Category: models.CategoryDomestic,
					Broker:   "미래에셋",
					Name:     "삼성전자",
					Symbol:   "005930",
					Quantity: models.N(10),
					UnitCost: models.N(71000),
					Currency: models.CurrencyKRW,
				},
				{
					Category: models.CategoryDomestic,
					Broker:   "한투",
					Name:     "에코프로",
					Symbol:   "086520",
					Quantity: models.N(3),
					UnitCost: models.N(500000),
					Currency: models.CurrencyKRW,
				},
			},
		},
	}
	quotes := &mockQuotes{
		equities: map[string]models.Number{"005930.KS": models.N(75000)},
	}

	svc := newTestService(holdings, quotes)

	table, err := svc.CategoryTable(context.Background(), models.CategoryDomestic, models.ViewAll, 0)
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	require.Len(t, table.Columns, 13)

	first := table.Rows[0]
	assert.Equal(t, "삼성전자", first[2])
	assert.Equal(t, "710,000", first[8], "purchase total")
	assert.Equal(t, "75,000", first[9], "current price")
	assert.Equal(t, "40,000", first[11], "pnl")

	// No quote for the second symbol: its derived cells show the placeholder.
	second := table.Rows[1]
	assert.Equal(t, "-", second[9])
	assert.Equal(t, "-", second[11])
	assert.Equal(t, "-", second[12])

	// The quoted row still drives the totals.
	assert.Equal(t, "2,210,000", table.Totals.PurchaseTotal)
	assert.Equal(t, "750,000", table.Totals.CurrentValue)
}

func TestCategoryTableDomesticGoldOverride(t *testing.T) {
	holdings := &mockHoldings{
		records: map[models.AssetCategory][]models.HoldingRecord{
			models.CategoryDomestic: {{
				Category: models.CategoryDomestic,
				Name:     "금현물",
				Symbol:   "GOLD",
				Quantity: models.N(2),
				UnitCost: models.N(90000),
				Currency: models.CurrencyKRW,
			}},
		},
	}
	svc := newTestService(holdings, &mockQuotes{})

	table, err := svc.CategoryTable(context.Background(), models.CategoryDomestic, models.ViewAll, 95000)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "95,000", table.Rows[0][9])
	assert.Equal(t, "190,000", table.Rows[0][10])
}

func TestCategoryTableOverseasViews(t *testing.T) {
	holdings := &mockHoldings{
		records: map[models.AssetCategory][]models.HoldingRecord{
			models.CategoryOverseas: {{
				Category:   models.CategoryOverseas,
				Symbol:     "AAPL",
				Quantity:   models.N(5),
				UnitCost:   models.N(100),
				Currency:   models.CurrencyUSD,
				PurchaseFX: models.N(1300),
			}},
		},
	}
	quotes := &mockQuotes{
		equities: map[string]models.Number{"AAPL": models.N(120)},
		fx:       models.N(1350),
	}
	svc := newTestService(holdings, quotes)
	ctx := context.Background()

	all, err := svc.CategoryTable(ctx, models.CategoryOverseas, models.ViewAll, 0)
	require.NoError(t, err)
	assert.Contains(t, all.Columns, "매입총액(LC)")
	assert.Contains(t, all.Columns, "매입총액(KRW)")
	assert.Equal(t, "1,350.00", all.LiveFX)
	assert.Equal(t, "650,000", all.Totals.PurchaseTotal)
	assert.Equal(t, "810,000", all.Totals.CurrentValue)
	assert.Equal(t, "24.62%", all.Totals.ReturnPct)

	local, err := svc.CategoryTable(ctx, models.CategoryOverseas, models.ViewLocal, 0)
	require.NoError(t, err)
	assert.Contains(t, local.Columns, "매입총액(LC)")
	assert.NotContains(t, local.Columns, "매입총액(KRW)")
	assert.NotContains(t, local.Columns, "수익률(KRW)")

	home, err := svc.CategoryTable(ctx, models.CategoryOverseas, models.ViewHome, 0)
	require.NoError(t, err)
	assert.NotContains(t, home.Columns, "매입총액(LC)")
	assert.Contains(t, home.Columns, "평가총액(KRW)")

	// Each row has exactly as many cells as the view has columns.
	assert.Len(t, home.Rows[0], len(home.Columns))
}

func TestCategoryTableCrypto(t *testing.T) {
	holdings := &mockHoldings{
		records: map[models.AssetCategory][]models.HoldingRecord{
			models.CategoryCrypto: {
				{
					Category: models.CategoryCrypto,
					Name:     "비트코인",
					Symbol:   "BTC",
					CoinID:   "bitcoin",
					Quantity: models.N(0.025),
					UnitCost: models.N(82000000),
					Currency: models.CurrencyKRW,
				},
				{
					Category: models.CategoryCrypto,
					Name:     "이더리움",
					Symbol:   "ETH",
					CoinID:   "ethereum",
					Quantity: models.N(1.5),
					UnitCost: models.N(2900),
					Currency: models.CurrencyUSD,
				},
			},
		},
	}
	quotes := &mockQuotes{
		fx: models.N(1300),
		crypto: map[string]map[string]models.Number{
			"bitcoin":  {"usd": models.N(64000), "krw": models.N(86000000)},
			"ethereum": {"usd": models.N(3100), "krw": models.N(4030000)},
		},
	}
	svc := newTestService(holdings, quotes)

	table, err := svc.CategoryTable(context.Background(), models.CategoryCrypto, models.ViewAll, 0)
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)

	// KRW rows price in KRW, USD rows in USD.
	assert.Equal(t, "0.025000000", table.Rows[0][5])
	assert.Equal(t, "86,000,000", table.Rows[0][7])
	assert.Equal(t, "3,100", table.Rows[1][7])
}

func TestCategoryTableCash(t *testing.T) {
	holdings := &mockHoldings{
		cash: []models.CashRecord{
			{Broker: "국민은행", Currency: models.CurrencyKRW, Amount: models.N(5000000)},
			{Broker: "키움", Currency: models.CurrencyUSD, Amount: models.N(1200)},
		},
	}
	svc := newTestService(holdings, &mockQuotes{fx: models.N(1300)})

	table, err := svc.CategoryTable(context.Background(), models.CategoryCash, models.ViewAll, 0)
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)

	assert.Equal(t, "5,000,000", table.Rows[0][6])
	assert.Equal(t, "1,560,000", table.Rows[1][6])
	assert.Equal(t, "6,560,000", table.Totals.CurrentValue)
}

func TestCategoryTableSchemaErrorPassthrough(t *testing.T) {
	holdings := &mockHoldings{
		errs: map[models.AssetCategory]error{
			models.CategoryDomestic: &models.SchemaError{Sheet: "국내자산", Missing: []string{"종목코드"}},
		},
	}
	svc := newTestService(holdings, &mockQuotes{})

	_, err := svc.CategoryTable(context.Background(), models.CategoryDomestic, models.ViewAll, 0)
	require.Error(t, err)

	var schemaErr *models.SchemaError
	assert.ErrorAs(t, err, &schemaErr)
}

func TestSummary(t *testing.T) {
	holdings := &mockHoldings{
		records: map[models.AssetCategory][]models.HoldingRecord{
			models.CategoryDomestic: {{
				Category: models.CategoryDomestic,
				Symbol:   "005930",
				Quantity: models.N(10),
				UnitCost: models.N(70000),
				Currency: models.CurrencyKRW,
			}},
			models.CategoryOverseas: {{
				Category:   models.CategoryOverseas,
				Symbol:     "AAPL",
				Quantity:   models.N(5),
				UnitCost:   models.N(100),
				Currency:   models.CurrencyUSD,
				PurchaseFX: models.N(1300),
			}},
		},
		cash: []models.CashRecord{
			{Currency: models.CurrencyKRW, Amount: models.N(1000000)},
		},
	}
	quotes := &mockQuotes{
		equities: map[string]models.Number{
			"005930.KS": models.N(75000),
			"AAPL":      models.N(120),
		},
		fx: models.N(1350),
	}
	svc := newTestService(holdings, quotes)

	summary, err := svc.Summary(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, summary.Categories, 4)

	// 700,000 + 650,000 + 0 + 1,000,000
	assert.Equal(t, "2,350,000", summary.GrandTotal.PurchaseTotal)
	// 750,000 + 810,000 + 0 + 1,000,000
	assert.Equal(t, "2,560,000", summary.GrandTotal.CurrentValue)
	assert.Equal(t, "210,000", summary.GrandTotal.PnL)

	assert.Equal(t, "1,000,000", summary.Categories[models.CategoryCash].CurrentValue)
}

func TestAllocationChart(t *testing.T) {
	holdings := &mockHoldings{
		records: map[models.AssetCategory][]models.HoldingRecord{
			models.CategoryDomestic: {{
				Category: models.CategoryDomestic,
				Symbol:   "005930",
				Quantity: models.N(10),
				UnitCost: models.N(70000),
				Currency: models.CurrencyKRW,
			}},
		},
		cash: []models.CashRecord{
			{Currency: models.CurrencyKRW, Amount: models.N(1000000)},
		},
	}
	quotes := &mockQuotes{
		equities: map[string]models.Number{"005930.KS": models.N(75000)},
		fx:       models.N(1350),
	}
	svc := newTestService(holdings, quotes)

	png, err := svc.AllocationChart(context.Background(), 0)
	require.NoError(t, err)
	require.NotEmpty(t, png)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}

func TestAllocationChartNoValues(t *testing.T) {
	svc := newTestService(&mockHoldings{}, &mockQuotes{})

	_, err := svc.AllocationChart(context.Background(), 0)
	assert.ErrorIs(t, err, ErrNoChartData)
}
