package interfaces

import "time"

// QuoteCache is an injectable TTL key-value store for memoized quotes.
// Implementations must be safe for concurrent use: the server handles
// overlapping renders, and quote reads are read-mostly.
type QuoteCache interface {
	// Get returns the cached value and true when present and unexpired.
	Get(key string) (any, bool)

	// Set stores a value that expires after ttl.
	Set(key string, value any, ttl time.Duration)

	// Delete removes a key.
	Delete(key string)

	// Len reports the number of unexpired entries.
	Len() int
}
