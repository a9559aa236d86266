// Package quote converts raw market data lookups into nullable Numbers
package quote

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/minjaelee/finboard/internal/common"
	"github.com/minjaelee/finboard/internal/interfaces"
	"github.com/minjaelee/finboard/internal/models"
)

const (
	// GoldFutureSymbol is the international gold future, quoted in USD per
	// troy ounce.
	GoldFutureSymbol = "GC=F"

	// USDKRWPair is the Yahoo pair notation for KRW per USD.
	USDKRWPair = "USDKRW=X"

	// GramsPerTroyOunce converts the per-ounce gold quote to per-gram.
	GramsPerTroyOunce = 31.1035

	// KRXSuffix is appended to Korean exchange codes for Yahoo lookups.
	KRXSuffix = ".KS"
)

// Service implements the QuoteService interface. Lookups are memoized in a
// TTL cache so that rendering several tables in one request window hits each
// provider at most once per symbol. Failed lookups are cached too, as a
// missing Number, to keep a dead provider from being hammered on every row.
type Service struct {
	market interfaces.MarketDataClient
	crypto interfaces.CryptoClient
	cache  interfaces.QuoteCache
	logger *common.Logger

	equityTTL time.Duration
	cryptoTTL time.Duration

	mu             sync.Mutex
	lastGoodCrypto map[string]map[string]models.Number
}

// ServiceOption configures the service
type ServiceOption func(*Service)

// WithEquityTTL sets the memoization TTL for equity, FX, and commodity quotes.
func WithEquityTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		s.equityTTL = ttl
	}
}

// WithCryptoTTL sets the memoization TTL for crypto quotes.
func WithCryptoTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		s.cryptoTTL = ttl
	}
}

// NewService creates a new quote service
func NewService(market interfaces.MarketDataClient, crypto interfaces.CryptoClient, cache interfaces.QuoteCache, logger *common.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		market:    market,
		crypto:    crypto,
		cache:     cache,
		logger:    logger,
		equityTTL: common.FreshnessEquityQuote,
		cryptoTTL: common.FreshnessCryptoQuote,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// EquityPrice retrieves the latest close for a Yahoo-notation symbol.
func (s *Service) EquityPrice(ctx context.Context, symbol string) models.Number {
	return s.marketLookup(ctx, "equity:"+symbol, symbol)
}

// FXRate retrieves a live FX rate for a Yahoo pair such as "USDKRW=X".
func (s *Service) FXRate(ctx context.Context, pair string) models.Number {
	return s.marketLookup(ctx, "fx:"+pair, pair)
}

// CommodityPrice retrieves a commodity future quote such as "GC=F".
func (s *Service) CommodityPrice(ctx context.Context, symbol string) models.Number {
	return s.marketLookup(ctx, "commodity:"+symbol, symbol)
}

func (s *Service) marketLookup(ctx context.Context, key, symbol string) models.Number {
	if cached, ok := s.cache.Get(key); ok {
		if n, ok := cached.(models.Number); ok {
			return n
		}
	}

	price, err := s.market.GetLatestClose(ctx, symbol)
	if err != nil {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Market quote unavailable")
		s.cache.Set(key, models.MissingNumber(), s.equityTTL)
		return models.MissingNumber()
	}

	n := models.N(price)
	s.cache.Set(key, n, s.equityTTL)
	return n
}

// CryptoPrices retrieves spot prices for the given coin IDs in each quote
// currency. On a full-call failure the last successful result is returned
// when one exists, so a provider outage shows stale prices rather than
// blanking the whole category.
func (s *Service) CryptoPrices(ctx context.Context, ids []string, currencies []string) map[string]map[string]models.Number {
	if len(ids) == 0 {
		return map[string]map[string]models.Number{}
	}

	key := cryptoCacheKey(ids, currencies)
	if cached, ok := s.cache.Get(key); ok {
		if prices, ok := cached.(map[string]map[string]models.Number); ok {
			return prices
		}
	}

	raw, err := s.crypto.GetSimplePrices(ctx, ids, currencies)
	if err != nil {
		s.logger.Warn().Err(err).Int("ids", len(ids)).Msg("Crypto quotes unavailable")

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.lastGoodCrypto != nil {
			s.logger.Info().Msg("Serving last successful crypto quotes")
			return s.lastGoodCrypto
		}
		return nil
	}

	prices := make(map[string]map[string]models.Number, len(raw))
	for id, quotes := range raw {
		converted := make(map[string]models.Number, len(quotes))
		for cur, v := range quotes {
			converted[strings.ToLower(cur)] = models.N(v)
		}
		prices[id] = converted
	}

	s.cache.Set(key, prices, s.cryptoTTL)

	s.mu.Lock()
	s.lastGoodCrypto = prices
	s.mu.Unlock()

	return prices
}

func cryptoCacheKey(ids, currencies []string) string {
	sortedIDs := append([]string(nil), ids...)
	sort.Strings(sortedIDs)
	sortedCurs := make([]string, 0, len(currencies))
	for _, c := range currencies {
		sortedCurs = append(sortedCurs, strings.ToLower(c))
	}
	sort.Strings(sortedCurs)
	return fmt.Sprintf("crypto:%s:%s", strings.Join(sortedIDs, ","), strings.Join(sortedCurs, ","))
}

// DomesticPrice resolves a domestic holding's price. Physical gold rows route
// to the per-gram resolver; everything else is quoted on the Korean exchange.
func (s *Service) DomesticPrice(ctx context.Context, symbol, name string, goldOverride float64) models.Number {
	record := models.HoldingRecord{Name: name, Symbol: symbol}
	if record.IsGold() {
		return s.GoldPricePerGram(ctx, goldOverride)
	}
	return s.EquityPrice(ctx, KRXSymbol(symbol))
}

// GoldPricePerGram resolves the KRW-per-gram gold price. A positive override
// wins verbatim; otherwise the USD-per-ounce future is converted through the
// live FX rate. Either input missing makes the result missing.
func (s *Service) GoldPricePerGram(ctx context.Context, override float64) models.Number {
	if override > 0 {
		return models.N(override)
	}

	ounceUSD := s.CommodityPrice(ctx, GoldFutureSymbol)
	fx := s.FXRate(ctx, USDKRWPair)

	return ounceUSD.Mul(fx).Div(models.N(GramsPerTroyOunce))
}

// KRXSymbol converts a Korean exchange code to Yahoo notation, left-padding
// to the six digits the exchange expects. Sheets strip leading zeros from
// numeric-looking cells, so "5930" must become "005930.KS".
func KRXSymbol(code string) string {
	code = strings.TrimSpace(code)
	for len(code) < 6 {
		code = "0" + code
	}
	return code + KRXSuffix
}

// Ensure Service implements QuoteService
var _ interfaces.QuoteService = (*Service)(nil)
