package memory

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/iho/bankdash/internal/domain"
)

// LedgerStore keeps accounts and transaction history in process memory.
// All mutations are serialized; readers always receive copies.
type LedgerStore struct {
	mu       sync.RWMutex
	order    []string
	accounts map[string]*domain.Account
	history  []domain.Transaction
	seen     map[string]struct{}
}

// NewLedgerStore creates a LedgerStore seeded with snapshot. Seed history is
// expected most-recent-first.
func NewLedgerStore(seed domain.Snapshot) *LedgerStore {
	s := &LedgerStore{
		order:    make([]string, 0, len(seed.Accounts)),
		accounts: make(map[string]*domain.Account, len(seed.Accounts)),
		history:  make([]domain.Transaction, 0, len(seed.History)),
		seen:     make(map[string]struct{}, len(seed.History)),
	}

	for _, a := range seed.Accounts {
		if _, ok := s.accounts[a.ID]; ok {
			continue
		}
		account := a.Clone()
		s.order = append(s.order, account.ID)
		s.accounts[account.ID] = &account
	}

	for _, tx := range seed.History {
		if _, ok := s.seen[tx.ID]; ok {
			continue
		}
		s.seen[tx.ID] = struct{}{}
		s.history = append(s.history, tx)
	}

	return s
}

// Accounts returns copies of all accounts in seed order.
func (s *LedgerStore) Accounts() []domain.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.accountsLocked()
}

// Account returns a copy of the account with id.
func (s *LedgerStore) Account(id string) (domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[id]
	if !ok {
		return domain.Account{}, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
	}

	return account.Clone(), nil
}

// TotalBalance sums all balances. It is recomputed on every call.
func (s *LedgerStore) TotalBalance() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := decimal.Zero
	for _, id := range s.order {
		total = total.Add(s.accounts[id].Balance)
	}

	return total
}

// History returns a copy of the history, most recent first.
func (s *LedgerStore) History() []domain.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.historyLocked()
}

// Snapshot returns a consistent copy of accounts and history.
func (s *LedgerStore) Snapshot() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return domain.Snapshot{
		Accounts: s.accountsLocked(),
		History:  s.historyLocked(),
	}
}

// ApplyCommitted adjusts the balance of accountID by delta and prepends
// record to the history. Both happen or neither does.
func (s *LedgerStore) ApplyCommitted(accountID string, delta decimal.Decimal, record domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrAccountNotFound, accountID)
	}

	if _, ok := s.seen[record.ID]; ok {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateTransaction, record.ID)
	}

	account.Balance = account.ApplyDelta(delta)
	s.seen[record.ID] = struct{}{}
	s.history = append([]domain.Transaction{record}, s.history...)

	return nil
}

func (s *LedgerStore) accountsLocked() []domain.Account {
	out := make([]domain.Account, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.accounts[id].Clone())
	}
	return out
}

func (s *LedgerStore) historyLocked() []domain.Transaction {
	out := make([]domain.Transaction, len(s.history))
	copy(out, s.history)
	return out
}
