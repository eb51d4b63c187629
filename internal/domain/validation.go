package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAccountName is returned for unusable account names in seed data.
var ErrInvalidAccountName = errors.New("invalid account name")

// Validation constants
const (
	MaxAccountNameLength = 255
	MinAccountNameLength = 1
	MaxTransactionAmount = "1000000000" // 1 billion
	MinTransactionAmount = "0.01"
)

var (
	minAmount = decimal.RequireFromString(MinTransactionAmount)
	maxAmount = decimal.RequireFromString(MaxTransactionAmount)
)

// ValidateAccountName validates account name
func ValidateAccountName(name string) error {
	name = strings.TrimSpace(name)

	if len(name) < MinAccountNameLength {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidAccountName)
	}

	if len(name) > MaxAccountNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidAccountName, MaxAccountNameLength)
	}

	return nil
}

// ValidateAmount validates a user-entered amount.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if amount.LessThan(minAmount) {
		return fmt.Errorf("%w: minimum amount is %s", ErrInvalidAmount, MinTransactionAmount)
	}

	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrInvalidAmount, MaxTransactionAmount)
	}

	return nil
}

// ValidationPolicy holds the configurable parts of draft validation.
type ValidationPolicy struct {
	// CreditLimitHeadroom lets credit accounts spend up to balance + limit.
	// When false a debit may never exceed the current balance.
	CreditLimitHeadroom bool
}

// Validator checks drafts against a ledger snapshot. It is pure: the same
// draft and snapshot always produce the same verdict.
type Validator struct {
	policy ValidationPolicy
}

// NewValidator creates a Validator.
func NewValidator(policy ValidationPolicy) *Validator {
	return &Validator{policy: policy}
}

// Policy returns the policy the validator was built with.
func (v *Validator) Policy() ValidationPolicy {
	return v.policy
}

// Validate returns nil or one of the validation errors.
func (v *Validator) Validate(draft Draft, snapshot Snapshot) error {
	if strings.TrimSpace(draft.SourceAccountID) == "" {
		return ErrMissingSource
	}

	source, ok := snapshot.FindAccount(draft.SourceAccountID)
	if !ok {
		return fmt.Errorf("%w: account %s not found", ErrMissingSource, draft.SourceAccountID)
	}

	if !draft.Kind.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, draft.Kind)
	}

	if draft.Kind.RequiresDestination() && strings.TrimSpace(draft.Destination) == "" {
		return ErrMissingDestination
	}

	if err := ValidateAmount(draft.Amount); err != nil {
		return err
	}

	// The amount must fit the referenced account for every kind, deposits included.
	if err := source.ValidateDebit(draft.Amount, v.policy.CreditLimitHeadroom); err != nil {
		return fmt.Errorf("%w: requested %s, available %s",
			err, draft.Amount.StringFixed(2), source.Available(v.policy.CreditLimitHeadroom).StringFixed(2))
	}

	return nil
}
