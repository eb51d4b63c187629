package usecase

import "time"

const (
	// LastTransactionTTL is how long the last transaction id per account is cached
	LastTransactionTTL = 24 * time.Hour

	// DefaultRecentLimit is the number of transactions shown as recent activity
	DefaultRecentLimit = 4

	// MaxRecentLimit caps the recent activity list
	MaxRecentLimit = 100

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour
)
