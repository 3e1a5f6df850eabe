package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// MaskedNumberCacheTTL is how long masked card numbers are cached. The
	// masked form never changes for a card's lifetime; the TTL only bounds
	// stale entries after deletes that raced a cache write.
	MaskedNumberCacheTTL = 24 * time.Hour
)
