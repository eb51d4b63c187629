package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/bankdash/internal/adapter/http/dto"
	"github.com/iho/bankdash/internal/domain"
	"github.com/iho/bankdash/internal/usecase"
)

// WorkflowService defines the behavior needed by DraftHandler.
type WorkflowService interface {
	Validate(ctx context.Context, draft domain.Draft) error
	Submit(ctx context.Context, draft domain.Draft) (*domain.ConfirmationSummary, error)
	Confirm(ctx context.Context) (*domain.Transaction, error)
	Cancel(ctx context.Context) error
	QuickAction(ctx context.Context, action domain.QuickAction, accountID string) (*domain.Transaction, error)
	Status() usecase.WorkflowStatus
}

// DraftHandler drives the transaction workflow over HTTP.
type DraftHandler struct {
	workflow WorkflowService
}

// NewDraftHandler creates a new DraftHandler.
func NewDraftHandler(workflow WorkflowService) *DraftHandler {
	return &DraftHandler{workflow: workflow}
}

// Validate checks a draft without starting the workflow.
func (h *DraftHandler) Validate(w http.ResponseWriter, r *http.Request) {
	draft, ok := decodeDraft(w, r)
	if !ok {
		return
	}

	if err := h.workflow.Validate(r.Context(), draft); err != nil {
		if domain.IsValidationError(err) {
			writeJSON(w, http.StatusOK, dto.ValidationResponse{Valid: false, Error: err.Error()})
			return
		}
		writeError(w, mapDomainError(err), "failed to validate draft", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ValidationResponse{Valid: true})
}

// Submit holds a draft pending confirmation.
func (h *DraftHandler) Submit(w http.ResponseWriter, r *http.Request) {
	draft, ok := decodeDraft(w, r)
	if !ok {
		return
	}

	summary, err := h.workflow.Submit(r.Context(), draft)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to submit draft", err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, dto.ConfirmationFromDomain(*summary))
}

// Pending returns the workflow status.
func (h *DraftHandler) Pending(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.WorkflowStatusFromUseCase(h.workflow.Status()))
}

// Confirm submits the pending draft.
func (h *DraftHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	record, err := h.workflow.Confirm(r.Context())
	if err != nil {
		writeError(w, mapDomainError(err), "transaction failed", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(*record))
}

// Cancel discards the pending draft.
func (h *DraftHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.workflow.Cancel(r.Context()); err != nil {
		writeError(w, mapDomainError(err), "failed to cancel draft", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.CancelResponse{
		State:   string(domain.WorkflowStateRejected),
		Message: usecase.MessageCancelled,
	})
}

// QuickAction runs a preset transaction.
func (h *DraftHandler) QuickAction(w http.ResponseWriter, r *http.Request) {
	action, err := domain.ParseQuickAction(chi.URLParam(r, "action"))
	if err != nil {
		writeError(w, mapDomainError(err), "unknown quick action", err.Error())
		return
	}

	var req dto.QuickActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	record, err := h.workflow.QuickAction(r.Context(), action, req.AccountID)
	if err != nil {
		writeError(w, mapDomainError(err), "quick action failed", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(*record))
}

func decodeDraft(w http.ResponseWriter, r *http.Request) (domain.Draft, bool) {
	var req dto.DraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return domain.Draft{}, false
	}

	draft, err := req.ToDomain()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount", err.Error())
		return domain.Draft{}, false
	}

	return draft, true
}
