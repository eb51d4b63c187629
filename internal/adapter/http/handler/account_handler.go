package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/bankdash/internal/adapter/http/dto"
	"github.com/iho/bankdash/internal/domain"
	"github.com/iho/bankdash/internal/usecase"
)

// DashboardService defines the read side needed by the dashboard handlers.
type DashboardService interface {
	Accounts(ctx context.Context) []domain.Account
	Account(ctx context.Context, id string) (domain.Account, error)
	TotalBalance(ctx context.Context) decimal.Decimal
	Summary(ctx context.Context) usecase.Summary
	RecentTransactions(ctx context.Context, limit int) []domain.Transaction
	History(ctx context.Context, filter domain.HistoryFilter) []domain.Transaction
}

// LastTransactionReader looks up the cached last transaction of an account.
type LastTransactionReader interface {
	LastTransaction(ctx context.Context, accountID string) (string, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	dashboard DashboardService
	last      LastTransactionReader
}

// NewAccountHandler creates a new AccountHandler. last may be nil.
func NewAccountHandler(dashboard DashboardService, last LastTransactionReader) *AccountHandler {
	return &AccountHandler{dashboard: dashboard, last: last}
}

// List lists accounts with the aggregate balance.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.ListAccountsResponse{
		Accounts:     dto.AccountsFromDomain(h.dashboard.Accounts(r.Context())),
		TotalBalance: h.dashboard.TotalBalance(r.Context()),
	})
}

// Get retrieves an account by ID.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	account, err := h.dashboard.Account(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// Summary returns the balance cards.
func (h *AccountHandler) Summary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.SummaryFromUseCase(h.dashboard.Summary(r.Context())))
}

// LastTransaction returns the id of the last transaction committed on an account.
func (h *AccountHandler) LastTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if h.last == nil {
		writeError(w, http.StatusNotFound, "last transaction unavailable", domain.ErrLastTransactionUnknown.Error())
		return
	}

	txID, err := h.last.LastTransaction(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "last transaction unavailable", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.LastTransactionResponse{AccountID: id, TransactionID: txID})
}
