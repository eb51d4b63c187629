package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind is the type of money movement requested by the user.
type TransactionKind string

const (
	TransactionKindTransfer   TransactionKind = "transfer"
	TransactionKindDeposit    TransactionKind = "deposit"
	TransactionKindPayment    TransactionKind = "payment"
	TransactionKindWithdrawal TransactionKind = "withdrawal"
)

// IsValid reports whether k is a known transaction kind.
func (k TransactionKind) IsValid() bool {
	switch k {
	case TransactionKindTransfer, TransactionKindDeposit, TransactionKindPayment, TransactionKindWithdrawal:
		return true
	}
	return false
}

// IsOutflow reports whether the kind takes money out of the acting account.
func (k TransactionKind) IsOutflow() bool {
	switch k {
	case TransactionKindTransfer, TransactionKindPayment, TransactionKindWithdrawal:
		return true
	case TransactionKindDeposit:
		return false
	}
	return false
}

// RequiresDestination reports whether the kind has a counterparty.
func (k TransactionKind) RequiresDestination() bool {
	switch k {
	case TransactionKindTransfer, TransactionKindPayment:
		return true
	case TransactionKindDeposit, TransactionKindWithdrawal:
		return false
	}
	return false
}

// SignedAmount returns amount with the sign of the kind's direction.
func (k TransactionKind) SignedAmount(amount decimal.Decimal) decimal.Decimal {
	amount = amount.Abs()
	if k.IsOutflow() {
		return amount.Neg()
	}
	return amount
}

// Category is the income/expense classification of a transaction.
type Category string

const (
	CategoryIncome  Category = "income"
	CategoryExpense Category = "expense"
)

// CategoryOf derives the category solely from the sign of amount.
func CategoryOf(amount decimal.Decimal) Category {
	if amount.IsPositive() {
		return CategoryIncome
	}
	return CategoryExpense
}

// TransactionStatus is the final status of a recorded transaction.
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusRejected  TransactionStatus = "rejected"
)

// Transaction is an immutable history record created on commit.
type Transaction struct {
	ID          string
	Kind        TransactionKind
	Amount      decimal.Decimal
	Description string
	Timestamp   time.Time
	AccountID   string
	AccountName string
	Category    Category
	Status      TransactionStatus
}

// Draft is a user-authored transaction request that has not been committed.
type Draft struct {
	SourceAccountID string
	Destination     string
	Amount          decimal.Decimal
	Kind            TransactionKind
	Description     string
}

// DefaultDescription is used when the user leaves the description empty.
const DefaultDescription = "Transfer"

// Intent builds the payload relayed to the gateway. The destination is
// carried in the description since the remote API has no counterparty field.
func (d Draft) Intent() TransactionIntent {
	description := d.Description
	if description == "" {
		description = DefaultDescription
	}
	if d.Destination != "" {
		description = description + " - " + d.Destination
	}

	return TransactionIntent{
		Amount:      d.Amount,
		Kind:        d.Kind,
		Description: description,
		AccountID:   d.SourceAccountID,
	}
}

// TransactionIntent is what gets submitted to the remote authority.
type TransactionIntent struct {
	Amount      decimal.Decimal
	Kind        TransactionKind
	Description string
	AccountID   string
}

// CommitReceipt is the authoritative result of a submitted transaction,
// either from the remote service or from local simulation.
type CommitReceipt struct {
	TransactionID string
	Kind          TransactionKind
	Amount        decimal.Decimal
	Description   string
	NewBalance    decimal.NullDecimal // invalid when the authority did not report it
	Timestamp     time.Time
	Status        TransactionStatus
	Simulated     bool
}

// Delta returns the signed balance adjustment described by the receipt.
func (r *CommitReceipt) Delta() decimal.Decimal {
	return r.Kind.SignedAmount(r.Amount)
}

// Snapshot is a point-in-time copy of the ledger.
type Snapshot struct {
	Accounts []Account
	History  []Transaction
}

// FindAccount looks up an account in the snapshot.
func (s Snapshot) FindAccount(id string) (Account, bool) {
	for _, a := range s.Accounts {
		if a.ID == id {
			return a, true
		}
	}
	return Account{}, false
}
