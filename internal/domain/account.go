package domain

import (
	"github.com/shopspring/decimal"
)

// AccountKind classifies an account.
type AccountKind string

const (
	AccountKindChecking AccountKind = "checking"
	AccountKindSavings  AccountKind = "savings"
	AccountKindCredit   AccountKind = "credit"
)

// IsValid reports whether k is one of the known account kinds.
func (k AccountKind) IsValid() bool {
	switch k {
	case AccountKindChecking, AccountKindSavings, AccountKindCredit:
		return true
	}
	return false
}

// Account represents a customer account shown on the dashboard.
// Credit accounts may carry a negative balance; other kinds may not end up
// negative through a committed debit.
type Account struct {
	ID          string
	Name        string
	Number      string
	Kind        AccountKind
	Balance     decimal.Decimal
	CreditLimit *decimal.Decimal
}

// Available returns the amount that can be debited from the account.
// Credit limit headroom is only counted when withHeadroom is set.
func (a *Account) Available(withHeadroom bool) decimal.Decimal {
	if withHeadroom && a.Kind == AccountKindCredit && a.CreditLimit != nil {
		return a.Balance.Add(*a.CreditLimit)
	}
	return a.Balance
}

// ValidateDebit checks if account can be debited by amount.
func (a *Account) ValidateDebit(amount decimal.Decimal, withHeadroom bool) error {
	if amount.GreaterThan(a.Available(withHeadroom)) {
		return ErrInsufficientFunds
	}
	return nil
}

// ApplyDelta returns the balance after a signed adjustment.
func (a *Account) ApplyDelta(delta decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(delta)
}

// Clone returns a deep copy of the account.
func (a Account) Clone() Account {
	if a.CreditLimit != nil {
		limit := *a.CreditLimit
		a.CreditLimit = &limit
	}
	return a
}
