// Package seed provides the initial ledger contents: the built-in demo data or
// a JSON snapshot file.
package seed

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankdash/internal/domain"
)

// ErrInvalidSeed is returned when a seed file is inconsistent.
var ErrInvalidSeed = errors.New("invalid ledger seed")

// File is the on-disk layout of a seed snapshot.
type File struct {
	Accounts     []AccountRecord     `json:"accounts"`
	Transactions []TransactionRecord `json:"transactions"`
}

// AccountRecord is an account in a seed file.
type AccountRecord struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Number      string           `json:"number"`
	Kind        string           `json:"kind"`
	Balance     decimal.Decimal  `json:"balance"`
	CreditLimit *decimal.Decimal `json:"credit_limit,omitempty"`
}

// TransactionRecord is a historic transaction in a seed file. Amount is signed.
type TransactionRecord struct {
	ID          string          `json:"id"`
	Kind        string          `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Timestamp   time.Time       `json:"timestamp"`
	AccountID   string          `json:"account_id"`
}

// Demo returns the demo dashboard: three accounts and four recent
// transactions dated relative to now.
func Demo(now time.Time) domain.Snapshot {
	limit := decimal.NewFromInt(5000)
	day := 24 * time.Hour

	file := File{
		Accounts: []AccountRecord{
			{ID: "1", Name: "Checking Account", Number: "****1234", Kind: "checking", Balance: decimal.RequireFromString("15750.00")},
			{ID: "2", Name: "Savings Account", Number: "****5678", Kind: "savings", Balance: decimal.RequireFromString("45230.50")},
			{ID: "3", Name: "Credit Card", Number: "****9012", Kind: "credit", Balance: decimal.RequireFromString("-1250.00"), CreditLimit: &limit},
		},
		Transactions: []TransactionRecord{
			{ID: "1", Kind: "transfer", Amount: decimal.RequireFromString("-500.00"), Description: "Transfer to Maria Gonzalez", Timestamp: now.Add(-1 * day), AccountID: "1"},
			{ID: "2", Kind: "deposit", Amount: decimal.RequireFromString("2500.00"), Description: "Salary deposit", Timestamp: now.Add(-2 * day), AccountID: "1"},
			{ID: "3", Kind: "payment", Amount: decimal.RequireFromString("-150.75"), Description: "Utility bill payment", Timestamp: now.Add(-3 * day), AccountID: "1"},
			{ID: "4", Kind: "transfer", Amount: decimal.RequireFromString("1000.00"), Description: "Transfer from savings", Timestamp: now.Add(-4 * day), AccountID: "1"},
		},
	}

	snapshot, err := file.Snapshot()
	if err != nil {
		panic(fmt.Sprintf("demo seed is invalid: %v", err))
	}

	return snapshot
}

// Load reads a seed file.
func Load(path string) (domain.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Snapshot{}, err
	}
	defer f.Close()

	var file File
	if err := json.NewDecoder(f).Decode(&file); err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}

	return file.Snapshot()
}

// Save writes snapshot to path atomically via a temporary file.
func Save(path string, snapshot domain.Snapshot) error {
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromSnapshot(snapshot)); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, path)
}

// FromSnapshot converts a ledger snapshot into its file layout.
func FromSnapshot(snapshot domain.Snapshot) File {
	file := File{
		Accounts:     make([]AccountRecord, 0, len(snapshot.Accounts)),
		Transactions: make([]TransactionRecord, 0, len(snapshot.History)),
	}

	for _, a := range snapshot.Accounts {
		a = a.Clone()
		file.Accounts = append(file.Accounts, AccountRecord{
			ID:          a.ID,
			Name:        a.Name,
			Number:      a.Number,
			Kind:        string(a.Kind),
			Balance:     a.Balance,
			CreditLimit: a.CreditLimit,
		})
	}

	for _, tx := range snapshot.History {
		file.Transactions = append(file.Transactions, TransactionRecord{
			ID:          tx.ID,
			Kind:        string(tx.Kind),
			Amount:      tx.Amount,
			Description: tx.Description,
			Timestamp:   tx.Timestamp,
			AccountID:   tx.AccountID,
		})
	}

	return file
}

// Snapshot validates the file and converts it into a ledger snapshot with
// history ordered most recent first.
func (f File) Snapshot() (domain.Snapshot, error) {
	snapshot := domain.Snapshot{
		Accounts: make([]domain.Account, 0, len(f.Accounts)),
		History:  make([]domain.Transaction, 0, len(f.Transactions)),
	}

	names := make(map[string]string, len(f.Accounts))
	for _, rec := range f.Accounts {
		if rec.ID == "" {
			return domain.Snapshot{}, fmt.Errorf("%w: account without id", ErrInvalidSeed)
		}
		if _, dup := names[rec.ID]; dup {
			return domain.Snapshot{}, fmt.Errorf("%w: duplicate account id %s", ErrInvalidSeed, rec.ID)
		}
		if err := domain.ValidateAccountName(rec.Name); err != nil {
			return domain.Snapshot{}, fmt.Errorf("%w: account %s: %v", ErrInvalidSeed, rec.ID, err)
		}

		kind := domain.AccountKind(rec.Kind)
		if !kind.IsValid() {
			return domain.Snapshot{}, fmt.Errorf("%w: account %s has unknown kind %q", ErrInvalidSeed, rec.ID, rec.Kind)
		}
		if rec.CreditLimit != nil && kind != domain.AccountKindCredit {
			return domain.Snapshot{}, fmt.Errorf("%w: account %s has a credit limit but is %s", ErrInvalidSeed, rec.ID, kind)
		}

		account := domain.Account{
			ID:          rec.ID,
			Name:        rec.Name,
			Number:      rec.Number,
			Kind:        kind,
			Balance:     rec.Balance,
			CreditLimit: rec.CreditLimit,
		}
		names[rec.ID] = rec.Name
		snapshot.Accounts = append(snapshot.Accounts, account.Clone())
	}

	seen := make(map[string]struct{}, len(f.Transactions))
	for _, rec := range f.Transactions {
		if rec.ID == "" {
			return domain.Snapshot{}, fmt.Errorf("%w: transaction without id", ErrInvalidSeed)
		}
		if _, dup := seen[rec.ID]; dup {
			return domain.Snapshot{}, fmt.Errorf("%w: duplicate transaction id %s", ErrInvalidSeed, rec.ID)
		}
		seen[rec.ID] = struct{}{}

		name, ok := names[rec.AccountID]
		if !ok {
			return domain.Snapshot{}, fmt.Errorf("%w: transaction %s references unknown account %s", ErrInvalidSeed, rec.ID, rec.AccountID)
		}

		kind := domain.TransactionKind(rec.Kind)
		if !kind.IsValid() {
			return domain.Snapshot{}, fmt.Errorf("%w: transaction %s has unknown kind %q", ErrInvalidSeed, rec.ID, rec.Kind)
		}

		snapshot.History = append(snapshot.History, domain.Transaction{
			ID:          rec.ID,
			Kind:        kind,
			Amount:      rec.Amount,
			Description: rec.Description,
			Timestamp:   rec.Timestamp,
			AccountID:   rec.AccountID,
			AccountName: name,
			Category:    domain.CategoryOf(rec.Amount),
			Status:      domain.TransactionStatusCompleted,
		})
	}

	sort.SliceStable(snapshot.History, func(i, j int) bool {
		return snapshot.History[i].Timestamp.After(snapshot.History[j].Timestamp)
	})

	return snapshot, nil
}
