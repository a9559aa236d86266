// Package common provides shared utilities for Finboard
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Finboard
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	Clients     ClientsConfig `toml:"clients"`
	Quotes      QuotesConfig  `toml:"quotes"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Yahoo     YahooConfig     `toml:"yahoo"`
	CoinGecko CoinGeckoConfig `toml:"coingecko"`
	Sheets    SheetsConfig    `toml:"sheets"`
}

// YahooConfig holds Yahoo Finance chart API configuration
type YahooConfig struct {
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *YahooConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// CoinGeckoConfig holds CoinGecko API configuration
type CoinGeckoConfig struct {
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *CoinGeckoConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// SheetsConfig holds Google Sheets API configuration. Worksheet names map
// asset categories to the tabs of the source spreadsheet.
type SheetsConfig struct {
	BaseURL       string `toml:"base_url"`
	APIKey        string `toml:"api_key"`
	SpreadsheetID string `toml:"spreadsheet_id"`
	Timeout       string `toml:"timeout"`

	DomesticSheet string `toml:"domestic_sheet"`
	OverseasSheet string `toml:"overseas_sheet"`
	CryptoSheet   string `toml:"crypto_sheet"`
	CashSheet     string `toml:"cash_sheet"`
}

// GetTimeout parses and returns the timeout duration
func (c *SheetsConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 15 * time.Second
	}
	return d
}

// QuotesConfig controls quote memoization and the manual gold override.
type QuotesConfig struct {
	EquityTTL    string  `toml:"equity_ttl"` // also FX and commodity quotes
	CryptoTTL    string  `toml:"crypto_ttl"`
	GoldOverride float64 `toml:"gold_override"` // KRW per gram; 0 disables
}

// GetEquityTTL parses the equity/FX/commodity quote TTL.
func (c *QuotesConfig) GetEquityTTL() time.Duration {
	d, err := time.ParseDuration(c.EquityTTL)
	if err != nil {
		return FreshnessEquityQuote
	}
	return d
}

// GetCryptoTTL parses the crypto quote TTL.
func (c *QuotesConfig) GetCryptoTTL() time.Duration {
	d, err := time.ParseDuration(c.CryptoTTL)
	if err != nil {
		return FreshnessCryptoQuote
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Clients: ClientsConfig{
			Yahoo: YahooConfig{
				BaseURL:   "https://query1.finance.yahoo.com",
				RateLimit: 5,
				Timeout:   "10s",
			},
			CoinGecko: CoinGeckoConfig{
				BaseURL:   "https://api.coingecko.com/api/v3",
				RateLimit: 2,
				Timeout:   "10s",
			},
			Sheets: SheetsConfig{
				BaseURL:       "https://sheets.googleapis.com/v4",
				Timeout:       "15s",
				DomesticSheet: "국내자산",
				OverseasSheet: "해외자산",
				CryptoSheet:   "가상자산",
				CashSheet:     "현금성자산",
			},
		},
		Quotes: QuotesConfig{
			EquityTTL:    "10m",
			CryptoTTL:    "5m",
			GoldOverride: 0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FINBOARD_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("FINBOARD_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("FINBOARD_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("FINBOARD_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if key := os.Getenv("FINBOARD_SHEETS_API_KEY"); key != "" {
		config.Clients.Sheets.APIKey = key
	}

	if id := os.Getenv("FINBOARD_SPREADSHEET_ID"); id != "" {
		config.Clients.Sheets.SpreadsheetID = id
	}

	if v := os.Getenv("FINBOARD_GOLD_OVERRIDE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Quotes.GoldOverride = f
		}
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// WorksheetName returns the configured worksheet tab for an asset category.
func (c *SheetsConfig) WorksheetName(category string) string {
	switch category {
	case "domestic":
		return c.DomesticSheet
	case "overseas":
		return c.OverseasSheet
	case "crypto":
		return c.CryptoSheet
	case "cash":
		return c.CashSheet
	}
	return ""
}
