package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/bankdash/internal/domain"
	"github.com/iho/bankdash/internal/infrastructure/metrics"
)

// Toast messages shown for outcomes that do not carry their own error text.
const (
	MessageBusy          = "Another transaction is already in progress"
	MessageCancelled     = "Transaction cancelled"
	MessageLedgerFailure = "The transaction could not be recorded, please try again"
)

// WorkflowConfig holds the tunables of the transaction workflow.
type WorkflowConfig struct {
	// QuickActionAccount is used when a quick action names no account.
	// Empty means the first checking account of the ledger.
	QuickActionAccount string
	// LastTransactionTTL bounds the cached last transaction id per account.
	LastTransactionTTL time.Duration
	// Clock returns the current time. Defaults to time.Now in UTC.
	Clock func() time.Time
}

// WorkflowStatus is a read model of the workflow slot.
type WorkflowStatus struct {
	State   domain.WorkflowState
	Pending *domain.ConfirmationSummary
	Last    *domain.Outcome
	Mode    domain.GatewayMode
}

// WorkflowUseCase drives a draft from entry to a committed or rejected
// outcome. Exactly one draft may be pending or submitting at a time.
type WorkflowUseCase struct {
	ledger    LedgerStore
	validator *domain.Validator
	gateway   Gateway
	notifier  Notifier
	cache     Cache
	metrics   *metrics.Metrics
	logger    zerolog.Logger
	cfg       WorkflowConfig

	mu      sync.Mutex
	state   domain.WorkflowState
	pending *domain.Draft
	summary *domain.ConfirmationSummary
	last    *domain.Outcome
}

// NewWorkflowUseCase creates a new WorkflowUseCase. cache and metrics may be nil.
func NewWorkflowUseCase(
	ledger LedgerStore,
	validator *domain.Validator,
	gateway Gateway,
	notifier Notifier,
	cache Cache,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
	cfg WorkflowConfig,
) *WorkflowUseCase {
	if cfg.Clock == nil {
		cfg.Clock = func() time.Time { return time.Now().UTC() }
	}
	if cfg.LastTransactionTTL <= 0 {
		cfg.LastTransactionTTL = LastTransactionTTL
	}

	return &WorkflowUseCase{
		ledger:    ledger,
		validator: validator,
		gateway:   gateway,
		notifier:  notifier,
		cache:     cache,
		metrics:   metrics,
		logger:    logger.With().Str("component", "workflow").Logger(),
		cfg:       cfg,
		state:     domain.WorkflowStateIdle,
	}
}

// Validate checks a draft against the current ledger without touching the workflow.
func (uc *WorkflowUseCase) Validate(_ context.Context, draft domain.Draft) error {
	return uc.validator.Validate(draft, uc.ledger.Snapshot())
}

// Submit validates a draft and holds it pending user confirmation.
func (uc *WorkflowUseCase) Submit(ctx context.Context, draft domain.Draft) (*domain.ConfirmationSummary, error) {
	uc.mu.Lock()
	events, err := uc.acceptLocked(draft)
	if err != nil {
		uc.mu.Unlock()
		uc.publish(ctx, events...)
		return nil, err
	}

	source, _ := uc.ledger.Snapshot().FindAccount(draft.SourceAccountID)
	summary := domain.NewConfirmationSummary(draft, source)
	uc.pending = &draft
	uc.summary = &summary
	events = append(events, uc.transitionLocked(domain.WorkflowStatePendingConfirmation))
	events = append(events, domain.ConfirmationEvent(summary, uc.cfg.Clock()))
	uc.mu.Unlock()

	uc.publish(ctx, events...)

	uc.logger.Debug().
		Str("account_id", draft.SourceAccountID).
		Str("kind", string(draft.Kind)).
		Str("amount", draft.Amount.String()).
		Msg("draft awaiting confirmation")

	return &summary, nil
}

// Confirm submits the pending draft to the gateway and commits the receipt.
func (uc *WorkflowUseCase) Confirm(ctx context.Context) (*domain.Transaction, error) {
	uc.mu.Lock()
	switch uc.state {
	case domain.WorkflowStatePendingConfirmation:
	case domain.WorkflowStateSubmitting:
		uc.mu.Unlock()
		return nil, domain.ErrSubmissionInFlight
	default:
		uc.mu.Unlock()
		return nil, domain.ErrNoPendingDraft
	}

	draft := *uc.pending
	uc.summary = nil
	event := uc.transitionLocked(domain.WorkflowStateSubmitting)
	uc.mu.Unlock()

	uc.publish(ctx, event)

	return uc.submit(ctx, draft)
}

// Cancel discards the pending draft.
func (uc *WorkflowUseCase) Cancel(ctx context.Context) error {
	uc.mu.Lock()
	switch uc.state {
	case domain.WorkflowStatePendingConfirmation:
	case domain.WorkflowStateSubmitting:
		uc.mu.Unlock()
		return domain.ErrSubmissionInFlight
	default:
		uc.mu.Unlock()
		return domain.ErrNoPendingDraft
	}

	events := uc.finishLocked(domain.WorkflowStateRejected, nil, domain.ErrUserCancelled)
	events = append(events, domain.ToastEvent(domain.ToastLevelWarning, MessageCancelled, uc.cfg.Clock()))
	uc.mu.Unlock()

	uc.publish(ctx, events...)

	if uc.metrics != nil {
		uc.metrics.TransactionsRejected.WithLabelValues("cancelled").Inc()
	}

	uc.logger.Info().Msg("pending draft cancelled")

	return nil
}

// QuickAction runs a preset draft without the confirmation pause.
func (uc *WorkflowUseCase) QuickAction(ctx context.Context, action domain.QuickAction, accountID string) (*domain.Transaction, error) {
	if accountID == "" {
		accountID = uc.defaultQuickActionAccount()
	}

	draft, err := action.Draft(accountID)
	if err != nil {
		return nil, err
	}

	uc.mu.Lock()
	events, err := uc.acceptLocked(draft)
	if err != nil {
		uc.mu.Unlock()
		uc.publish(ctx, events...)
		return nil, err
	}
	events = append(events, uc.transitionLocked(domain.WorkflowStateSubmitting))
	uc.mu.Unlock()

	uc.publish(ctx, events...)

	return uc.submit(ctx, draft)
}

// Status reports the current state, the held summary and the last outcome.
func (uc *WorkflowUseCase) Status() WorkflowStatus {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	status := WorkflowStatus{State: uc.state, Mode: uc.gateway.Mode()}
	if uc.summary != nil {
		summary := *uc.summary
		status.Pending = &summary
	}
	if uc.last != nil {
		last := *uc.last
		status.Last = &last
	}

	return status
}

// acceptLocked claims the slot for draft and validates it. On a validation
// failure the draft is rejected and the slot is released again.
func (uc *WorkflowUseCase) acceptLocked(draft domain.Draft) ([]domain.Event, error) {
	if uc.state != domain.WorkflowStateIdle {
		if uc.metrics != nil {
			uc.metrics.BusyRejections.Inc()
		}
		uc.logger.Warn().Str("state", string(uc.state)).Msg("submission refused, workflow busy")
		return []domain.Event{domain.ToastEvent(domain.ToastLevelWarning, MessageBusy, uc.cfg.Clock())}, domain.ErrWorkflowBusy
	}

	events := []domain.Event{uc.transitionLocked(domain.WorkflowStateDraft)}

	if err := uc.validator.Validate(draft, uc.ledger.Snapshot()); err != nil {
		if uc.metrics != nil {
			uc.metrics.ValidationFailures.WithLabelValues(validationLabel(err)).Inc()
			uc.metrics.TransactionsRejected.WithLabelValues("validation").Inc()
		}
		uc.logger.Info().Err(err).Str("account_id", draft.SourceAccountID).Msg("draft rejected by validation")

		events = append(events, uc.finishLocked(domain.WorkflowStateRejected, nil, err)...)
		events = append(events, domain.ToastEvent(domain.ToastLevelError, err.Error(), uc.cfg.Clock()))
		return events, err
	}

	events = append(events, uc.transitionLocked(domain.WorkflowStateValidated))
	return events, nil
}

// submit performs the gateway round-trip for a draft already in Submitting.
// The slot lock is not held across the call. Once submitting, the caller can
// no longer cancel: the gateway applies its own timeout.
func (uc *WorkflowUseCase) submit(ctx context.Context, draft domain.Draft) (*domain.Transaction, error) {
	ctx = context.WithoutCancel(ctx)
	mode := uc.gateway.Mode()
	start := time.Now()

	receipt, err := uc.gateway.Submit(ctx, draft.Intent())

	if uc.metrics != nil {
		uc.metrics.GatewayDuration.WithLabelValues(string(mode)).Observe(time.Since(start).Seconds())
	}

	if err != nil {
		reason := domain.GatewayReasonUnavailable
		var gwErr *domain.GatewayError
		if errors.As(err, &gwErr) {
			reason = gwErr.Reason
		}
		if uc.metrics != nil {
			uc.metrics.GatewayErrors.WithLabelValues(string(reason)).Inc()
			uc.metrics.TransactionsRejected.WithLabelValues("gateway").Inc()
		}
		uc.logger.Error().Err(err).Str("mode", string(mode)).Str("reason", string(reason)).Msg("gateway submission failed")

		uc.reject(ctx, err, err.Error())
		return nil, err
	}

	record, err := uc.commit(ctx, draft, receipt)
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.TransactionsRejected.WithLabelValues("ledger").Inc()
		}
		uc.logger.Error().Err(err).Str("transaction_id", receipt.TransactionID).Msg("failed to record committed transaction")

		uc.reject(ctx, err, MessageLedgerFailure)
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TransactionsCommitted.WithLabelValues(string(record.Kind), string(mode)).Inc()
		uc.metrics.TransactionAmount.Observe(record.Amount.Abs().InexactFloat64())
		uc.metrics.LedgerTotalBalance.Set(uc.ledger.TotalBalance().InexactFloat64())
	}

	uc.mu.Lock()
	events := uc.finishLocked(domain.WorkflowStateCommitted, record, nil)
	now := uc.cfg.Clock()
	events = append(events,
		domain.ToastEvent(domain.ToastLevelSuccess, fmt.Sprintf("%s of %s completed", record.Kind, record.Amount.Abs().StringFixed(2)), now),
		domain.RenderEvent(domain.EventTypeRenderAccounts, now),
		domain.RenderEvent(domain.EventTypeRenderHistory, now),
	)
	uc.mu.Unlock()

	uc.publish(ctx, events...)

	uc.logger.Info().
		Str("transaction_id", record.ID).
		Str("account_id", record.AccountID).
		Str("kind", string(record.Kind)).
		Str("amount", record.Amount.String()).
		Bool("simulated", receipt.Simulated).
		Msg("transaction committed")

	return record, nil
}

// commit applies the receipt's signed delta to the ledger. The receipt is
// authoritative for kind and amount; the draft only fills fields it omits. A
// remote balance that differs from the local result is reported, not applied.
func (uc *WorkflowUseCase) commit(ctx context.Context, draft domain.Draft, receipt *domain.CommitReceipt) (*domain.Transaction, error) {
	account, err := uc.ledger.Account(draft.SourceAccountID)
	if err != nil {
		return nil, err
	}

	accepted := *receipt
	if !accepted.Kind.IsValid() {
		accepted.Kind = draft.Kind
	}
	if accepted.Amount.IsZero() {
		accepted.Amount = draft.Amount
	}
	if accepted.Description == "" {
		accepted.Description = draft.Intent().Description
	}
	if accepted.Timestamp.IsZero() {
		accepted.Timestamp = uc.cfg.Clock()
	}

	delta := accepted.Delta()

	record := domain.Transaction{
		ID:          accepted.TransactionID,
		Kind:        accepted.Kind,
		Amount:      delta,
		Description: accepted.Description,
		Timestamp:   accepted.Timestamp,
		AccountID:   account.ID,
		AccountName: account.Name,
		Category:    domain.CategoryOf(delta),
		Status:      domain.TransactionStatusCompleted,
	}

	if err := uc.ledger.ApplyCommitted(account.ID, delta, record); err != nil {
		return nil, err
	}

	if !accepted.Amount.Equal(draft.Amount) || accepted.Kind != draft.Kind {
		uc.logger.Warn().
			Str("transaction_id", record.ID).
			Str("draft_kind", string(draft.Kind)).
			Str("draft_amount", draft.Amount.String()).
			Str("receipt_kind", string(accepted.Kind)).
			Str("receipt_amount", accepted.Amount.String()).
			Msg("receipt differs from submitted draft")
	}

	expected := account.Balance.Add(delta)
	if !accepted.Simulated && accepted.NewBalance.Valid && !accepted.NewBalance.Decimal.Equal(expected) {
		if uc.metrics != nil {
			uc.metrics.BalanceDrift.Inc()
		}
		uc.logger.Warn().
			Str("account_id", account.ID).
			Str("local_balance", expected.String()).
			Str("remote_balance", accepted.NewBalance.Decimal.String()).
			Msg("remote balance differs from local ledger")
	}

	uc.rememberLastTransaction(ctx, account.ID, record.ID)

	return &record, nil
}

func (uc *WorkflowUseCase) rememberLastTransaction(ctx context.Context, accountID, transactionID string) {
	if uc.cache == nil {
		return
	}

	if err := uc.cache.Set(ctx, LastTransactionKey(accountID), transactionID, uc.cfg.LastTransactionTTL); err != nil {
		uc.logger.Warn().Err(err).Str("account_id", accountID).Msg("failed to cache last transaction")
	}
}

func (uc *WorkflowUseCase) reject(ctx context.Context, err error, message string) {
	uc.mu.Lock()
	events := uc.finishLocked(domain.WorkflowStateRejected, nil, err)
	events = append(events, domain.ToastEvent(domain.ToastLevelError, message, uc.cfg.Clock()))
	uc.mu.Unlock()

	uc.publish(ctx, events...)
}

// finishLocked records the terminal outcome and resets the slot to idle.
func (uc *WorkflowUseCase) finishLocked(state domain.WorkflowState, record *domain.Transaction, err error) []domain.Event {
	events := []domain.Event{uc.transitionLocked(state)}

	uc.last = &domain.Outcome{
		State:       state,
		Transaction: record,
		Err:         err,
		FinishedAt:  uc.cfg.Clock(),
	}
	uc.pending = nil
	uc.summary = nil

	return append(events, uc.transitionLocked(domain.WorkflowStateIdle))
}

func (uc *WorkflowUseCase) transitionLocked(to domain.WorkflowState) domain.Event {
	from := uc.state
	uc.state = to
	return domain.StateChangedEvent(from, to, uc.cfg.Clock())
}

func (uc *WorkflowUseCase) publish(ctx context.Context, events ...domain.Event) {
	for _, event := range events {
		uc.notifier.Notify(ctx, event)
	}
}

func (uc *WorkflowUseCase) defaultQuickActionAccount() string {
	if uc.cfg.QuickActionAccount != "" {
		return uc.cfg.QuickActionAccount
	}

	accounts := uc.ledger.Accounts()
	for _, a := range accounts {
		if a.Kind == domain.AccountKindChecking {
			return a.ID
		}
	}
	if len(accounts) > 0 {
		return accounts[0].ID
	}

	return ""
}

// LastTransaction returns the cached id of the last transaction committed on
// accountID.
func (uc *WorkflowUseCase) LastTransaction(ctx context.Context, accountID string) (string, error) {
	if uc.cache == nil {
		return "", domain.ErrLastTransactionUnknown
	}

	id, err := uc.cache.Get(ctx, LastTransactionKey(accountID))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrLastTransactionUnknown, err)
	}

	return id, nil
}

// LastTransactionKey is the cache key holding the last transaction id of an account.
func LastTransactionKey(accountID string) string {
	return "last_transaction:" + accountID
}

func validationLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrMissingSource):
		return "missing_source"
	case errors.Is(err, domain.ErrMissingDestination):
		return "missing_destination"
	case errors.Is(err, domain.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrInvalidKind):
		return "invalid_kind"
	}
	return "other"
}
