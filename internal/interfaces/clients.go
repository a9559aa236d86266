// Package interfaces defines service contracts for Finboard
package interfaces

import (
	"context"
)

// MarketDataClient provides access to the Yahoo Finance chart API.
// Symbols use Yahoo notation: "005930.KS", "AAPL", "USDKRW=X", "GC=F".
type MarketDataClient interface {
	// GetLatestClose retrieves the most recent daily close for a symbol.
	GetLatestClose(ctx context.Context, symbol string) (float64, error)
}

// CryptoClient provides access to the CoinGecko simple-price API.
type CryptoClient interface {
	// GetSimplePrices retrieves spot prices for the given coin IDs in each of
	// the given quote currencies. Keys of the result are coin IDs; inner keys
	// are lowercase currency codes.
	GetSimplePrices(ctx context.Context, ids []string, currencies []string) (map[string]map[string]float64, error)
}

// SheetSource provides access to the holdings spreadsheet.
type SheetSource interface {
	// GetWorksheet retrieves all cells of a worksheet as string rows.
	// The first row is the header.
	GetWorksheet(ctx context.Context, name string) ([][]string, error)
}
