package holdings

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minjaelee/finboard/internal/common"
	"github.com/minjaelee/finboard/internal/models"
)

type fakeSheets struct {
	tabs map[string][][]string
}

func (f *fakeSheets) GetWorksheet(_ context.Context, name string) ([][]string, error) {
	rows, ok := f.tabs[name]
	if !ok {
		return nil, fmt.Errorf("worksheet %q is empty", name)
	}
	return rows, nil
}

func newTestService(tabs map[string][][]string) *Service {
	cfg := &common.NewDefaultConfig().Clients.Sheets
	return NewService(&fakeSheets{tabs: tabs}, cfg, common.NewSilentLogger())
}

func TestLoadDomestic(t *testing.T) {
	svc := newTestService(map[string][][]string{
		"국내자산": {
			{"증권사", "소유", "종목명", "종목코드", "계좌구분", "성격", "보유수량", "매수단가"},
			{"미래에셋", "본인", "삼성전자", "5930", "일반", "주식", "10", "71,000"},
			{"한투", "배우자", "금현물", "GOLD", "금현물계좌", "현물", "3.5", "98,000"},
			{"", "", "", "", "", "", "", ""},
		},
	})

	records, err := svc.LoadCategory(context.Background(), models.CategoryDomestic)
	require.NoError(t, err)
	require.Len(t, records, 2, "blank trailing rows are skipped")

	first := records[0]
	assert.Equal(t, "005930", first.Symbol, "exchange codes are padded back to six digits")
	assert.Equal(t, models.CurrencyKRW, first.Currency)

	qty, ok := first.Quantity.Float64()
	require.True(t, ok)
	assert.Equal(t, 10.0, qty)

	cost, ok := first.UnitCost.Float64()
	require.True(t, ok)
	assert.Equal(t, 71000.0, cost, "thousands separators are stripped")

	assert.True(t, records[1].IsGold())
}

func TestLoadDomesticSchemaError(t *testing.T) {
	svc := newTestService(map[string][][]string{
		"국내자산": {
			{"증권사", "소유", "종목명", "계좌구분"},
			{"미래에셋", "본인", "삼성전자", "일반"},
		},
	})

	_, err := svc.LoadCategory(context.Background(), models.CategoryDomestic)
	require.Error(t, err)

	var schemaErr *models.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "국내자산", schemaErr.Sheet)
	assert.Contains(t, schemaErr.Missing, "종목코드")
	assert.Contains(t, schemaErr.Missing, "보유수량")
}

func TestLoadOverseas(t *testing.T) {
	svc := newTestService(map[string][][]string{
		"해외자산": {
			// Legacy cost label still in use on this tab.
			{"증권사", "소유", "종목티커", "계좌구분", "성격", "보유수량", "매입가", "매입환율"},
			{"키움", "본인", "aapl", "연금", "주식", "5", "100", "1,300.50"},
		},
	})

	records, err := svc.LoadCategory(context.Background(), models.CategoryOverseas)
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "AAPL", r.Symbol)
	assert.Equal(t, models.CurrencyUSD, r.Currency, "overseas rows default to USD")

	fx, ok := r.PurchaseFX.Float64()
	require.True(t, ok)
	assert.Equal(t, 1300.50, fx)
}

func TestLoadOverseasUnparsableQuantity(t *testing.T) {
	svc := newTestService(map[string][][]string{
		"해외자산": {
			{"증권사", "소유", "종목티커", "계좌구분", "성격", "보유수량", "매수단가", "매입환율"},
			{"키움", "본인", "TSLA", "일반", "주식", "n/a", "250", "1,310"},
		},
	})

	records, err := svc.LoadCategory(context.Background(), models.CategoryOverseas)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Quantity.IsMissing(), "unparsable cells become missing, not an error")
}

func TestLoadCrypto(t *testing.T) {
	svc := newTestService(map[string][][]string{
		"가상자산": {
			{"증권사", "소유", "코인", "심볼", "coingecko_id", "통화", "수량(qty)", "평균매수가(avg_price)"},
			{"업비트", "본인", "비트코인", "btc", " Bitcoin ", "원", "0.025", "82,000,000"},
			{"코인베이스", "본인", "이더리움", "eth", "ethereum", "달러", "1.5", "2,900"},
		},
	})

	records, err := svc.LoadCategory(context.Background(), models.CategoryCrypto)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "bitcoin", records[0].CoinID, "coin IDs are lowercased and trimmed")
	assert.Equal(t, "BTC", records[0].Symbol)
	assert.Equal(t, models.CurrencyKRW, records[0].Currency)
	assert.Equal(t, models.CurrencyUSD, records[1].Currency)
}

func TestLoadCryptoUnknownCurrency(t *testing.T) {
	svc := newTestService(map[string][][]string{
		"가상자산": {
			{"증권사", "소유", "코인", "심볼", "coingecko_id", "통화", "수량(qty)", "평균매수가(avg_price)"},
			{"업비트", "본인", "비트코인", "btc", "bitcoin", "엔화", "0.025", "82,000,000"},
		},
	})

	_, err := svc.LoadCategory(context.Background(), models.CategoryCrypto)
	require.Error(t, err)

	var curErr *models.ErrUnknownCurrency
	require.ErrorAs(t, err, &curErr)
	assert.Equal(t, "엔화", curErr.Raw)
	assert.Contains(t, err.Error(), "row 2")
}

func TestLoadCash(t *testing.T) {
	svc := newTestService(map[string][][]string{
		"현금성자산": {
			{"증권사", "소유", "계좌구분", "통화", "성격", "금액"},
			{"국민은행", "본인", "입출금", "KRW", "예금", "5,000,000"},
			{"키움", "본인", "외화예수금", "US", "예수금", "1,200"},
		},
	})

	records, err := svc.LoadCash(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, models.CurrencyKRW, records[0].Currency)
	assert.Equal(t, models.CurrencyUSD, records[1].Currency)

	amt, ok := records[0].Amount.Float64()
	require.True(t, ok)
	assert.Equal(t, 5000000.0, amt)
}

func TestLoadCategorySourceFailure(t *testing.T) {
	svc := newTestService(nil)

	_, err := svc.LoadCategory(context.Background(), models.CategoryDomestic)
	require.Error(t, err)

	var schemaErr *models.SchemaError
	assert.False(t, errors.As(err, &schemaErr), "a transport failure is not a schema error")
}

func TestLoadCategoryCashRejected(t *testing.T) {
	svc := newTestService(nil)

	_, err := svc.LoadCategory(context.Background(), models.CategoryCash)
	assert.Error(t, err)
}
