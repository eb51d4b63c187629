package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankdash/internal/domain"
)

// LedgerStore owns the in-session accounts and transaction history.
type LedgerStore interface {
	Accounts() []domain.Account
	Account(id string) (domain.Account, error)
	TotalBalance() decimal.Decimal
	History() []domain.Transaction
	Snapshot() domain.Snapshot
	// ApplyCommitted adjusts the account balance by delta and prepends record
	// to history in one step. It does not check for negative balances.
	ApplyCommitted(accountID string, delta decimal.Decimal, record domain.Transaction) error
}

// Gateway submits transaction intents to the remote authority. Errors are
// always *domain.GatewayError.
type Gateway interface {
	Submit(ctx context.Context, intent domain.TransactionIntent) (*domain.CommitReceipt, error)
	Mode() domain.GatewayMode
}

// Notifier delivers render requests to the UI collaborator.
type Notifier interface {
	Notify(ctx context.Context, event domain.Event)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache stores small string values with a TTL.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a claimed key so the request may be retried.
	Release(ctx context.Context, key string) error
}
