// Package common provides shared utilities for Finboard
package common

import "time"

// Default quote memoization TTLs. These are a performance convenience, not a
// correctness mechanism: a missing quote stays missing for the TTL rather
// than being retried within a render.
const (
	FreshnessEquityQuote = 10 * time.Minute // equity, FX, and commodity quotes
	FreshnessCryptoQuote = 5 * time.Minute
)
