package domain

import "errors"

var (
	// Validation errors
	ErrMissingSource      = errors.New("source account is required")
	ErrMissingDestination = errors.New("destination account is required")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInvalidKind        = errors.New("unknown transaction kind")

	// Ledger errors
	ErrAccountNotFound      = errors.New("account not found")
	ErrDuplicateTransaction = errors.New("transaction already recorded")

	// Workflow errors
	ErrWorkflowBusy       = errors.New("another transaction is awaiting confirmation or being submitted")
	ErrNoPendingDraft     = errors.New("no transaction is awaiting confirmation")
	ErrSubmissionInFlight = errors.New("transaction is already being submitted")
	ErrUserCancelled      = errors.New("transaction cancelled by user")
	ErrUnknownQuickAction = errors.New("unknown quick action")

	// Cache errors
	ErrLastTransactionUnknown = errors.New("no last transaction recorded for account")
)

var validationErrors = []error{
	ErrMissingSource,
	ErrMissingDestination,
	ErrInvalidAmount,
	ErrInsufficientFunds,
	ErrInvalidKind,
}

// IsValidationError reports whether err is a user-correctable draft error.
func IsValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
