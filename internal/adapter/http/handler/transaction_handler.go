package handler

import (
	"net/http"

	"github.com/iho/bankdash/internal/adapter/http/dto"
	"github.com/iho/bankdash/internal/domain"
	"github.com/iho/bankdash/internal/usecase"
)

// TransactionHandler serves the transaction history.
type TransactionHandler struct {
	dashboard DashboardService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(dashboard DashboardService) *TransactionHandler {
	return &TransactionHandler{dashboard: dashboard}
}

// List returns the history filtered by period (days, 0 for all) and search.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := domain.HistoryFilter{
		PeriodDays: parseIntQuery(r, "period", domain.DefaultPeriodDays),
		Search:     r.URL.Query().Get("search"),
	}

	txs := h.dashboard.History(r.Context(), filter)

	writeJSON(w, http.StatusOK, dto.ListTransactionsResponse{
		Transactions: dto.TransactionsFromDomain(txs),
		Total:        len(txs),
	})
}

// Recent returns the most recent transactions.
func (h *TransactionHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", usecase.DefaultRecentLimit)
	txs := h.dashboard.RecentTransactions(r.Context(), limit)

	writeJSON(w, http.StatusOK, dto.ListTransactionsResponse{
		Transactions: dto.TransactionsFromDomain(txs),
		Total:        len(txs),
	})
}
