package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// WorkflowState is a state of the transaction workflow.
type WorkflowState string

const (
	WorkflowStateIdle                WorkflowState = "idle"
	WorkflowStateDraft               WorkflowState = "draft"
	WorkflowStateValidated           WorkflowState = "validated"
	WorkflowStatePendingConfirmation WorkflowState = "pending_confirmation"
	WorkflowStateSubmitting          WorkflowState = "submitting"
	WorkflowStateCommitted           WorkflowState = "committed"
	WorkflowStateRejected            WorkflowState = "rejected"
)

// IsTerminal reports whether the state ends a draft's lifecycle.
func (s WorkflowState) IsTerminal() bool {
	return s == WorkflowStateCommitted || s == WorkflowStateRejected
}

// ConfirmationSummary is the human-readable payload shown before the user
// confirms a draft.
type ConfirmationSummary struct {
	SourceAccountID   string
	SourceAccountName string
	Destination       string
	Amount            decimal.Decimal
	Kind              TransactionKind
	Description       string
}

// NewConfirmationSummary builds the summary for a validated draft.
func NewConfirmationSummary(draft Draft, source Account) ConfirmationSummary {
	description := draft.Description
	if description == "" {
		description = DefaultDescription
	}

	return ConfirmationSummary{
		SourceAccountID:   source.ID,
		SourceAccountName: source.Name,
		Destination:       draft.Destination,
		Amount:            draft.Amount,
		Kind:              draft.Kind,
		Description:       description,
	}
}

// String renders the summary as a single line.
func (s ConfirmationSummary) String() string {
	line := fmt.Sprintf("%s of %s from %s", s.Kind, s.Amount.StringFixed(2), s.SourceAccountName)
	if s.Destination != "" {
		line += " to " + s.Destination
	}
	return line + ": " + s.Description
}

// Outcome is the result of the most recent finished draft.
type Outcome struct {
	State       WorkflowState
	Transaction *Transaction
	Err         error
	FinishedAt  time.Time
}

// QuickAction is a one-tap shortcut that skips the confirmation pause.
type QuickAction string

const (
	QuickActionDeposit  QuickAction = "deposit"
	QuickActionWithdraw QuickAction = "withdraw"
	QuickActionPay      QuickAction = "pay"
)

// ParseQuickAction converts a string into a QuickAction.
func ParseQuickAction(s string) (QuickAction, error) {
	switch a := QuickAction(s); a {
	case QuickActionDeposit, QuickActionWithdraw, QuickActionPay:
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownQuickAction, s)
}

// Draft returns the preset draft for the action.
func (a QuickAction) Draft(accountID string) (Draft, error) {
	switch a {
	case QuickActionDeposit:
		return Draft{
			SourceAccountID: accountID,
			Amount:          decimal.NewFromInt(500),
			Kind:            TransactionKindDeposit,
			Description:     "Quick demo deposit",
		}, nil
	case QuickActionWithdraw:
		return Draft{
			SourceAccountID: accountID,
			Amount:          decimal.NewFromInt(100),
			Kind:            TransactionKindWithdrawal,
			Description:     "Cash withdrawal",
		}, nil
	case QuickActionPay:
		return Draft{
			SourceAccountID: accountID,
			Destination:     "Utility services",
			Amount:          decimal.NewFromInt(25),
			Kind:            TransactionKindPayment,
			Description:     "Service payment",
		}, nil
	}
	return Draft{}, fmt.Errorf("%w: %q", ErrUnknownQuickAction, a)
}
