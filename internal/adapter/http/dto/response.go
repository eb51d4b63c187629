package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankdash/internal/domain"
	"github.com/iho/bankdash/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Number      string           `json:"number"`
	Kind        string           `json:"kind"`
	Balance     decimal.Decimal  `json:"balance"`
	CreditLimit *decimal.Decimal `json:"credit_limit,omitempty"`
}

// AccountFromDomain converts a domain account to response.
func AccountFromDomain(a domain.Account) AccountResponse {
	a = a.Clone()
	return AccountResponse{
		ID:          a.ID,
		Name:        a.Name,
		Number:      a.Number,
		Kind:        string(a.Kind),
		Balance:     a.Balance,
		CreditLimit: a.CreditLimit,
	}
}

// AccountsFromDomain converts multiple domain accounts.
func AccountsFromDomain(accounts []domain.Account) []AccountResponse {
	result := make([]AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse represents a list of accounts.
type ListAccountsResponse struct {
	Accounts     []AccountResponse `json:"accounts"`
	TotalBalance decimal.Decimal   `json:"total_balance"`
}

// SummaryResponse holds the dashboard balance cards.
type SummaryResponse struct {
	TotalBalance decimal.Decimal            `json:"total_balance"`
	ByKind       map[string]decimal.Decimal `json:"by_kind"`
	AccountCount int                        `json:"account_count"`
}

// SummaryFromUseCase converts a dashboard summary.
func SummaryFromUseCase(s usecase.Summary) SummaryResponse {
	byKind := make(map[string]decimal.Decimal, len(s.ByKind))
	for kind, total := range s.ByKind {
		byKind[string(kind)] = total
	}
	return SummaryResponse{
		TotalBalance: s.TotalBalance,
		ByKind:       byKind,
		AccountCount: s.AccountCount,
	}
}

// TransactionResponse represents a history record in API responses.
type TransactionResponse struct {
	ID          string          `json:"id"`
	Kind        string          `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Timestamp   time.Time       `json:"timestamp"`
	AccountID   string          `json:"account_id"`
	AccountName string          `json:"account_name"`
	Category    string          `json:"category"`
	Status      string          `json:"status"`
}

// TransactionFromDomain converts a domain transaction to response.
func TransactionFromDomain(t domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          t.ID,
		Kind:        string(t.Kind),
		Amount:      t.Amount,
		Description: t.Description,
		Timestamp:   t.Timestamp,
		AccountID:   t.AccountID,
		AccountName: t.AccountName,
		Category:    string(t.Category),
		Status:      string(t.Status),
	}
}

// TransactionsFromDomain converts multiple domain transactions.
func TransactionsFromDomain(txs []domain.Transaction) []TransactionResponse {
	result := make([]TransactionResponse, len(txs))
	for i, t := range txs {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// ListTransactionsResponse represents a filtered history page.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Total        int                   `json:"total"`
}

// ConfirmationResponse is the summary shown before the user confirms.
type ConfirmationResponse struct {
	SourceAccountID   string          `json:"source_account_id"`
	SourceAccountName string          `json:"source_account_name"`
	Destination       string          `json:"destination,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	Kind              string          `json:"kind"`
	Description       string          `json:"description"`
	Text              string          `json:"text"`
}

// ConfirmationFromDomain converts a confirmation summary.
func ConfirmationFromDomain(s domain.ConfirmationSummary) ConfirmationResponse {
	return ConfirmationResponse{
		SourceAccountID:   s.SourceAccountID,
		SourceAccountName: s.SourceAccountName,
		Destination:       s.Destination,
		Amount:            s.Amount,
		Kind:              string(s.Kind),
		Description:       s.Description,
		Text:              s.String(),
	}
}

// ValidationResponse reports the inline validation result of a draft.
type ValidationResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// OutcomeResponse describes the most recent finished draft.
type OutcomeResponse struct {
	State       string               `json:"state"`
	Transaction *TransactionResponse `json:"transaction,omitempty"`
	Error       string               `json:"error,omitempty"`
	FinishedAt  time.Time            `json:"finished_at"`
}

// OutcomeFromDomain converts a workflow outcome.
func OutcomeFromDomain(o domain.Outcome) OutcomeResponse {
	resp := OutcomeResponse{
		State:      string(o.State),
		FinishedAt: o.FinishedAt,
	}
	if o.Transaction != nil {
		tx := TransactionFromDomain(*o.Transaction)
		resp.Transaction = &tx
	}
	if o.Err != nil {
		resp.Error = o.Err.Error()
	}
	return resp
}

// WorkflowStatusResponse represents the workflow slot.
type WorkflowStatusResponse struct {
	State   string                `json:"state"`
	Mode    string                `json:"mode"`
	Pending *ConfirmationResponse `json:"pending,omitempty"`
	Last    *OutcomeResponse      `json:"last,omitempty"`
}

// WorkflowStatusFromUseCase converts a workflow status.
func WorkflowStatusFromUseCase(s usecase.WorkflowStatus) WorkflowStatusResponse {
	resp := WorkflowStatusResponse{
		State: string(s.State),
		Mode:  string(s.Mode),
	}
	if s.Pending != nil {
		pending := ConfirmationFromDomain(*s.Pending)
		resp.Pending = &pending
	}
	if s.Last != nil {
		last := OutcomeFromDomain(*s.Last)
		resp.Last = &last
	}
	return resp
}

// CancelResponse acknowledges a cancelled draft.
type CancelResponse struct {
	State   string `json:"state"`
	Message string `json:"message"`
}

// EventResponse represents a UI event.
type EventResponse struct {
	Type       string                `json:"type"`
	Level      string                `json:"level,omitempty"`
	Message    string                `json:"message,omitempty"`
	Summary    *ConfirmationResponse `json:"summary,omitempty"`
	From       string                `json:"from,omitempty"`
	To         string                `json:"to,omitempty"`
	OccurredAt time.Time             `json:"occurred_at"`
}

// EventFromDomain converts a domain event.
func EventFromDomain(e domain.Event) EventResponse {
	resp := EventResponse{
		Type:       string(e.Type),
		Level:      string(e.Level),
		Message:    e.Message,
		From:       string(e.From),
		To:         string(e.To),
		OccurredAt: e.OccurredAt,
	}
	if e.Summary != nil {
		summary := ConfirmationFromDomain(*e.Summary)
		resp.Summary = &summary
	}
	return resp
}

// EventsFromDomain converts multiple domain events.
func EventsFromDomain(events []domain.Event) []EventResponse {
	result := make([]EventResponse, len(events))
	for i, e := range events {
		result[i] = EventFromDomain(e)
	}
	return result
}

// ListEventsResponse is a batch of drained UI events.
type ListEventsResponse struct {
	Events []EventResponse `json:"events"`
}

// LastTransactionResponse carries the cached last transaction id of an account.
type LastTransactionResponse struct {
	AccountID     string `json:"account_id"`
	TransactionID string `json:"transaction_id"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
