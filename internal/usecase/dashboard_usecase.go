package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankdash/internal/domain"
)

// DashboardUseCase serves the read models of the dashboard.
type DashboardUseCase struct {
	ledger LedgerStore
	clock  func() time.Time
}

// NewDashboardUseCase creates a new DashboardUseCase.
func NewDashboardUseCase(ledger LedgerStore) *DashboardUseCase {
	return &DashboardUseCase{
		ledger: ledger,
		clock:  func() time.Time { return time.Now().UTC() },
	}
}

// Summary holds the balance cards of the dashboard.
type Summary struct {
	TotalBalance decimal.Decimal
	ByKind       map[domain.AccountKind]decimal.Decimal
	AccountCount int
}

// Accounts lists all accounts in seed order.
func (uc *DashboardUseCase) Accounts(_ context.Context) []domain.Account {
	return uc.ledger.Accounts()
}

// Account returns a single account.
func (uc *DashboardUseCase) Account(_ context.Context, id string) (domain.Account, error) {
	return uc.ledger.Account(id)
}

// TotalBalance returns the sum of all account balances.
func (uc *DashboardUseCase) TotalBalance(_ context.Context) decimal.Decimal {
	return uc.ledger.TotalBalance()
}

// Summary returns the total and per-kind balances.
func (uc *DashboardUseCase) Summary(_ context.Context) Summary {
	snapshot := uc.ledger.Snapshot()

	summary := Summary{
		TotalBalance: decimal.Zero,
		ByKind:       make(map[domain.AccountKind]decimal.Decimal),
		AccountCount: len(snapshot.Accounts),
	}

	for _, a := range snapshot.Accounts {
		summary.TotalBalance = summary.TotalBalance.Add(a.Balance)
		summary.ByKind[a.Kind] = summary.ByKind[a.Kind].Add(a.Balance)
	}

	return summary
}

// RecentTransactions returns the most recent transactions, newest first.
func (uc *DashboardUseCase) RecentTransactions(_ context.Context, limit int) []domain.Transaction {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}

	history := uc.ledger.History()
	if len(history) > limit {
		history = history[:limit]
	}

	return history
}

// History returns the transactions matching filter, newest first.
func (uc *DashboardUseCase) History(_ context.Context, filter domain.HistoryFilter) []domain.Transaction {
	return filter.Apply(uc.ledger.History(), uc.clock())
}
