package quote

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minjaelee/finboard/internal/cache"
	"github.com/minjaelee/finboard/internal/common"
)

type mockMarket struct {
	prices map[string]float64
	errs   map[string]error
	calls  map[string]int
}

func newMockMarket() *mockMarket {
	return &mockMarket{
		prices: make(map[string]float64),
		errs:   make(map[string]error),
		calls:  make(map[string]int),
	}
}

func (m *mockMarket) GetLatestClose(_ context.Context, symbol string) (float64, error) {
	m.calls[symbol]++
	if err, ok := m.errs[symbol]; ok {
		return 0, err
	}
	if p, ok := m.prices[symbol]; ok {
		return p, nil
	}
	return 0, errors.New("unknown symbol")
}

type mockCrypto struct {
	result map[string]map[string]float64
	err    error
	calls  int
}

func (m *mockCrypto) GetSimplePrices(_ context.Context, _ []string, _ []string) (map[string]map[string]float64, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func newTestService(market *mockMarket, crypto *mockCrypto) *Service {
	return NewService(market, crypto, cache.NewTTLCache(), common.NewSilentLogger())
}

func TestEquityPriceCached(t *testing.T) {
	market := newMockMarket()
	market.prices["005930.KS"] = 71500

	svc := newTestService(market, &mockCrypto{})
	ctx := context.Background()

	first := svc.EquityPrice(ctx, "005930.KS")
	second := svc.EquityPrice(ctx, "005930.KS")

	f, ok := first.Float64()
	require.True(t, ok)
	assert.Equal(t, 71500.0, f)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, market.calls["005930.KS"], "second lookup must be served from cache")
}

func TestEquityPriceFailureIsMissing(t *testing.T) {
	market := newMockMarket()
	market.errs["BOGUS"] = errors.New("boom")

	svc := newTestService(market, &mockCrypto{})

	price := svc.EquityPrice(context.Background(), "BOGUS")
	assert.True(t, price.IsMissing())

	// The failure is memoized too.
	svc.EquityPrice(context.Background(), "BOGUS")
	assert.Equal(t, 1, market.calls["BOGUS"])
}

func TestGoldPricePerGramOverrideWins(t *testing.T) {
	market := newMockMarket()
	svc := newTestService(market, &mockCrypto{})

	price := svc.GoldPricePerGram(context.Background(), 50000)

	f, ok := price.Float64()
	require.True(t, ok)
	assert.Equal(t, 50000.0, f)
	assert.Empty(t, market.calls, "override must not trigger any lookup")
}

func TestGoldPricePerGramConverts(t *testing.T) {
	market := newMockMarket()
	market.prices[GoldFutureSymbol] = 2000
	market.prices[USDKRWPair] = 1300

	svc := newTestService(market, &mockCrypto{})

	price := svc.GoldPricePerGram(context.Background(), 0)

	f, ok := price.Float64()
	require.True(t, ok)
	// 2000 * 1300 / 31.1035
	assert.InDelta(t, 83592.0, f, 1.0)
}

func TestGoldPricePerGramMissingInput(t *testing.T) {
	market := newMockMarket()
	market.prices[GoldFutureSymbol] = 2000
	market.errs[USDKRWPair] = errors.New("fx down")

	svc := newTestService(market, &mockCrypto{})

	price := svc.GoldPricePerGram(context.Background(), 0)
	assert.True(t, price.IsMissing())
}

func TestDomesticPriceRouting(t *testing.T) {
	market := newMockMarket()
	market.prices["005930.KS"] = 71500

	svc := newTestService(market, &mockCrypto{})
	ctx := context.Background()

	price := svc.DomesticPrice(ctx, "5930", "삼성전자", 0)
	f, ok := price.Float64()
	require.True(t, ok)
	assert.Equal(t, 71500.0, f)
	assert.Equal(t, 1, market.calls["005930.KS"], "codes are zero-padded before lookup")

	gold := svc.DomesticPrice(ctx, "GOLD", "금현물", 48000)
	g, ok := gold.Float64()
	require.True(t, ok)
	assert.Equal(t, 48000.0, g)
}

func TestKRXSymbol(t *testing.T) {
	assert.Equal(t, "005930.KS", KRXSymbol("5930"))
	assert.Equal(t, "005930.KS", KRXSymbol(" 005930 "))
	assert.Equal(t, "373220.KS", KRXSymbol("373220"))
}

func TestCryptoPricesLastGoodFallback(t *testing.T) {
	crypto := &mockCrypto{
		result: map[string]map[string]float64{
			"bitcoin": {"usd": 64000, "krw": 86400000},
		},
	}
	svc := NewService(newMockMarket(), crypto, cache.NewTTLCache(), common.NewSilentLogger())
	ctx := context.Background()

	ids := []string{"bitcoin"}
	curs := []string{"usd", "krw"}

	first := svc.CryptoPrices(ctx, ids, curs)
	require.NotNil(t, first)
	f, ok := first["bitcoin"]["krw"].Float64()
	require.True(t, ok)
	assert.Equal(t, 86400000.0, f)

	// Provider goes down; the cached entry still covers the TTL window, so
	// clear it to force the fallback path.
	svc.cache.Delete(cryptoCacheKey(ids, curs))
	crypto.err = errors.New("api down")

	second := svc.CryptoPrices(ctx, ids, curs)
	assert.Equal(t, first, second, "outage must serve the last successful result")
}

func TestCryptoPricesNoFallbackOnFirstFailure(t *testing.T) {
	crypto := &mockCrypto{err: errors.New("api down")}
	svc := NewService(newMockMarket(), crypto, cache.NewTTLCache(), common.NewSilentLogger())

	prices := svc.CryptoPrices(context.Background(), []string{"bitcoin"}, []string{"usd"})
	assert.Nil(t, prices)
}

func TestCryptoPricesEmptyIDs(t *testing.T) {
	crypto := &mockCrypto{}
	svc := NewService(newMockMarket(), crypto, cache.NewTTLCache(), common.NewSilentLogger())

	prices := svc.CryptoPrices(context.Background(), nil, []string{"usd"})
	assert.Empty(t, prices)
	assert.Zero(t, crypto.calls)
}
