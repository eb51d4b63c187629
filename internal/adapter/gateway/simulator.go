package gateway

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/bankdash/internal/domain"
	"github.com/iho/bankdash/internal/usecase"
)

// AccountReader is the read side of the ledger the simulator needs.
type AccountReader interface {
	Account(id string) (domain.Account, error)
}

// Simulator synthesizes receipts locally when no remote API is reachable.
// It never performs I/O and always succeeds for known accounts.
type Simulator struct {
	accounts AccountReader
	idGen    usecase.IDGenerator
	clock    func() time.Time
	logger   zerolog.Logger
}

// NewSimulator creates a new Simulator.
func NewSimulator(accounts AccountReader, idGen usecase.IDGenerator, logger zerolog.Logger) *Simulator {
	return &Simulator{
		accounts: accounts,
		idGen:    idGen,
		clock:    func() time.Time { return time.Now().UTC() },
		logger:   logger.With().Str("component", "simulator").Logger(),
	}
}

// Submit applies the intent to the current balance arithmetically.
func (s *Simulator) Submit(ctx context.Context, intent domain.TransactionIntent) (*domain.CommitReceipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, transportError(ctx, err)
	}

	account, err := s.accounts.Account(intent.AccountID)
	if err != nil {
		return nil, domain.NewGatewayError(domain.GatewayReasonUnavailable, err.Error())
	}

	receipt := &domain.CommitReceipt{
		TransactionID: s.idGen.Generate(),
		Kind:          intent.Kind,
		Amount:        intent.Amount.Abs(),
		Description:   intent.Description,
		NewBalance:    decimal.NewNullDecimal(account.ApplyDelta(intent.Kind.SignedAmount(intent.Amount))),
		Timestamp:     s.clock(),
		Status:        domain.TransactionStatusCompleted,
		Simulated:     true,
	}

	s.logger.Debug().
		Str("transaction_id", receipt.TransactionID).
		Str("account_id", intent.AccountID).
		Msg("simulated transaction")

	return receipt, nil
}

// Mode reports the simulation path.
func (s *Simulator) Mode() domain.GatewayMode {
	return domain.GatewayModeSimulation
}
