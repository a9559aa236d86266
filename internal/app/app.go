// Package app wires configuration, clients, and services together
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/minjaelee/finboard/internal/cache"
	"github.com/minjaelee/finboard/internal/clients/coingecko"
	"github.com/minjaelee/finboard/internal/clients/gsheets"
	"github.com/minjaelee/finboard/internal/clients/yahoo"
	"github.com/minjaelee/finboard/internal/common"
	"github.com/minjaelee/finboard/internal/interfaces"
	"github.com/minjaelee/finboard/internal/services/holdings"
	"github.com/minjaelee/finboard/internal/services/quote"
	"github.com/minjaelee/finboard/internal/services/report"
	"github.com/minjaelee/finboard/internal/services/valuation"
)

// App holds all initialized services and clients. It is the shared core used
// by cmd/finboard-server.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	MarketClient     interfaces.MarketDataClient
	CryptoClient     interfaces.CryptoClient
	SheetSource      interfaces.SheetSource
	QuoteCache       interfaces.QuoteCache
	QuoteService     interfaces.QuoteService
	HoldingsService  interfaces.HoldingsService
	ValuationService interfaces.ValuationService
	ReportService    interfaces.ReportService
	StartupTime      time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, clients, and services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	// Load version from .version file (fallback if ldflags not set)
	common.LoadVersionFromFile()

	// Get binary directory for self-contained operation
	binDir := getBinaryDir()

	// Load configuration - check provided path, FINBOARD_CONFIG, then binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("FINBOARD_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "finboard.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/finboard.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	if config.Clients.Sheets.APIKey == "" || config.Clients.Sheets.SpreadsheetID == "" {
		logger.Warn().Msg("Sheets API key or spreadsheet ID not configured - holdings will be unavailable")
	}

	marketClient := yahoo.NewClient(
		yahoo.WithBaseURL(config.Clients.Yahoo.BaseURL),
		yahoo.WithLogger(logger),
		yahoo.WithRateLimit(config.Clients.Yahoo.RateLimit),
		yahoo.WithTimeout(config.Clients.Yahoo.GetTimeout()),
	)

	cryptoClient := coingecko.NewClient(
		coingecko.WithBaseURL(config.Clients.CoinGecko.BaseURL),
		coingecko.WithLogger(logger),
		coingecko.WithRateLimit(config.Clients.CoinGecko.RateLimit),
		coingecko.WithTimeout(config.Clients.CoinGecko.GetTimeout()),
	)

	sheetSource := gsheets.NewClient(config.Clients.Sheets.APIKey, config.Clients.Sheets.SpreadsheetID,
		gsheets.WithBaseURL(config.Clients.Sheets.BaseURL),
		gsheets.WithLogger(logger),
		gsheets.WithTimeout(config.Clients.Sheets.GetTimeout()),
	)

	quoteCache := cache.NewTTLCache()

	quoteService := quote.NewService(marketClient, cryptoClient, quoteCache, logger,
		quote.WithEquityTTL(config.Quotes.GetEquityTTL()),
		quote.WithCryptoTTL(config.Quotes.GetCryptoTTL()),
	)
	holdingsService := holdings.NewService(sheetSource, &config.Clients.Sheets, logger)
	valuationService := valuation.NewService(logger)
	reportService := report.NewService(holdingsService, quoteService, valuationService, logger)

	a := &App{
		Config:           config,
		Logger:           logger,
		MarketClient:     marketClient,
		CryptoClient:     cryptoClient,
		SheetSource:      sheetSource,
		QuoteCache:       quoteCache,
		QuoteService:     quoteService,
		HoldingsService:  holdingsService,
		ValuationService: valuationService,
		ReportService:    reportService,
		StartupTime:      startupStart,
	}

	logger.Info().
		Str("version", common.GetFullVersion()).
		Dur("startup", time.Since(startupStart)).
		Msg("Application initialized")

	return a, nil
}

// Close releases application resources. Clients are plain HTTP and the cache
// is in-memory, so there is nothing to tear down beyond logging.
func (a *App) Close() {
	a.Logger.Info().Msg("Application closed")
}
