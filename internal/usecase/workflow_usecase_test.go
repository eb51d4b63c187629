package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/bankdash/internal/adapter/gateway"
	"github.com/iho/bankdash/internal/adapter/repository/memory"
	"github.com/iho/bankdash/internal/domain"
	"github.com/iho/bankdash/internal/infrastructure/metrics"
	"github.com/iho/bankdash/internal/usecase"
	"github.com/iho/bankdash/internal/usecase/mocks"
)

var fixedNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func ledgerWith(accounts ...domain.Account) *memory.LedgerStore {
	return memory.NewLedgerStore(domain.Snapshot{Accounts: accounts})
}

func checking(id, balance string) domain.Account {
	return domain.Account{ID: id, Name: "Checking " + id, Kind: domain.AccountKindChecking, Balance: decimal.RequireFromString(balance)}
}

type workflowFixture struct {
	uc       *usecase.WorkflowUseCase
	ledger   *memory.LedgerStore
	notifier *mocks.RecordingNotifier
	metrics  *metrics.Metrics
}

func newWorkflow(t *testing.T, ledger *memory.LedgerStore, gw usecase.Gateway, cache usecase.Cache, policy domain.ValidationPolicy) workflowFixture {
	t.Helper()

	notifier := mocks.NewRecordingNotifier()
	m := metrics.New(prometheus.NewRegistry())

	uc := usecase.NewWorkflowUseCase(
		ledger,
		domain.NewValidator(policy),
		gw,
		notifier,
		cache,
		m,
		zerolog.Nop(),
		usecase.WorkflowConfig{Clock: func() time.Time { return fixedNow }},
	)

	return workflowFixture{uc: uc, ledger: ledger, notifier: notifier, metrics: m}
}

func simulationGateway(ledger *memory.LedgerStore) *gateway.Router {
	router := gateway.NewRouter(nil, gateway.NewSimulator(ledger, gateway.NewULIDGenerator(), zerolog.Nop()), time.Second, nil, zerolog.Nop())
	router.Init(context.Background())
	return router
}

func errorToasts(n *mocks.RecordingNotifier) []domain.Event {
	var out []domain.Event
	for _, e := range n.OfType(domain.EventTypeToast) {
		if e.Level == domain.ToastLevelError {
			out = append(out, e)
		}
	}
	return out
}

func TestWorkflow_InsufficientFundsNeverReachesGateway(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockGateway(ctrl)
	gw.EXPECT().Mode().Return(domain.GatewayModeRemote).AnyTimes()

	ledger := ledgerWith(checking("1", "100"))
	f := newWorkflow(t, ledger, gw, nil, domain.ValidationPolicy{})

	summary, err := f.uc.Submit(context.Background(), domain.Draft{
		SourceAccountID: "1",
		Amount:          decimal.NewFromInt(150),
		Kind:            domain.TransactionKindWithdrawal,
	})

	assert.Nil(t, summary)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	account, _ := ledger.Account("1")
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(100)))
	assert.Empty(t, ledger.History())

	require.Len(t, errorToasts(f.notifier), 1)
	assert.Empty(t, f.notifier.OfType(domain.EventTypeShowConfirmation))

	status := f.uc.Status()
	assert.Equal(t, domain.WorkflowStateIdle, status.State, "slot resets after rejection")
	require.NotNil(t, status.Last)
	assert.Equal(t, domain.WorkflowStateRejected, status.Last.State)
	assert.ErrorIs(t, status.Last.Err, domain.ErrInsufficientFunds)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ValidationFailures.WithLabelValues("insufficient_funds")))
}

func TestWorkflow_SimulatedDepositCommits(t *testing.T) {
	ledger := memory.NewLedgerStore(domain.Snapshot{Accounts: []domain.Account{
		{ID: "1", Name: "Checking", Kind: domain.AccountKindChecking, Balance: decimal.NewFromInt(100)},
	}})
	f := newWorkflow(t, ledger, simulationGateway(ledger), nil, domain.ValidationPolicy{})
	ctx := context.Background()
	totalBefore := ledger.TotalBalance()

	summary, err := f.uc.Submit(ctx, domain.Draft{
		SourceAccountID: "1",
		Amount:          decimal.NewFromInt(40),
		Kind:            domain.TransactionKindDeposit,
		Description:     "Cash deposit",
	})
	require.NoError(t, err)
	assert.Equal(t, "deposit of 40.00 from Checking: Cash deposit", summary.String())
	assert.Equal(t, domain.WorkflowStatePendingConfirmation, f.uc.Status().State)

	confirmations := f.notifier.OfType(domain.EventTypeShowConfirmation)
	require.Len(t, confirmations, 1)
	assert.Equal(t, summary.String(), confirmations[0].Message)

	account, _ := ledger.Account("1")
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(100)), "nothing is applied before confirmation")

	record, err := f.uc.Confirm(ctx)
	require.NoError(t, err)

	account, _ = ledger.Account("1")
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(140)))
	assert.True(t, ledger.TotalBalance().Sub(totalBefore).Equal(decimal.NewFromInt(40)))

	history := ledger.History()
	require.Len(t, history, 1)
	assert.Equal(t, record.ID, history[0].ID)
	assert.True(t, history[0].Amount.Equal(decimal.NewFromInt(40)))
	assert.Equal(t, domain.CategoryIncome, history[0].Category)
	assert.Equal(t, domain.TransactionKindDeposit, history[0].Kind)
	assert.Equal(t, "Checking", history[0].AccountName)
	assert.Equal(t, "Cash deposit", history[0].Description)

	status := f.uc.Status()
	assert.Equal(t, domain.WorkflowStateIdle, status.State)
	assert.Equal(t, domain.WorkflowStateCommitted, status.Last.State)
	assert.Equal(t, domain.GatewayModeSimulation, status.Mode)

	assert.Len(t, f.notifier.OfType(domain.EventTypeRenderAccounts), 1)
	assert.Len(t, f.notifier.OfType(domain.EventTypeRenderHistory), 1)
	assert.Empty(t, errorToasts(f.notifier))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.TransactionsCommitted.WithLabelValues("deposit", "simulation")))
	assert.Equal(t, 140.0, testutil.ToFloat64(f.metrics.LedgerTotalBalance))
}

func TestWorkflow_GatewayErrorLeavesLedgerUntouched(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockGateway(ctrl)
	gwErr := domain.NewGatewayError(domain.GatewayReasonNetwork, "connection refused")

	gw.EXPECT().Mode().Return(domain.GatewayModeRemote).AnyTimes()
	gw.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(nil, gwErr).Times(1)

	ledger := ledgerWith(checking("1", "100"))
	f := newWorkflow(t, ledger, gw, nil, domain.ValidationPolicy{})
	ctx := context.Background()
	before := ledger.Snapshot()

	_, err := f.uc.Submit(ctx, domain.Draft{
		SourceAccountID: "1",
		Destination:     "Maria",
		Amount:          decimal.NewFromInt(40),
		Kind:            domain.TransactionKindTransfer,
	})
	require.NoError(t, err)

	record, err := f.uc.Confirm(ctx)
	assert.Nil(t, record)

	var got *domain.GatewayError
	require.True(t, errors.As(err, &got))
	assert.Equal(t, domain.GatewayReasonNetwork, got.Reason)

	assert.Equal(t, before, ledger.Snapshot())

	toasts := errorToasts(f.notifier)
	require.Len(t, toasts, 1, "exactly one error surfaced")
	assert.Equal(t, gwErr.Error(), toasts[0].Message)

	status := f.uc.Status()
	assert.Equal(t, domain.WorkflowStateRejected, status.Last.State)
	assert.Equal(t, domain.WorkflowStateIdle, status.State)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.GatewayErrors.WithLabelValues("network")))
}

func TestWorkflow_RemoteIntentCarriesDestination(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockGateway(ctrl)

	gw.EXPECT().Mode().Return(domain.GatewayModeRemote).AnyTimes()
	gw.EXPECT().Submit(gomock.Any(), domain.TransactionIntent{
		Amount:      decimal.NewFromInt(40),
		Kind:        domain.TransactionKindTransfer,
		Description: "Transfer - Maria",
		AccountID:   "1",
	}).Return(&domain.CommitReceipt{
		TransactionID: "TXN-0123456789AB",
		Kind:          domain.TransactionKindTransfer,
		Amount:        decimal.NewFromInt(40),
		Description:   "Transfer - Maria",
		NewBalance:    decimal.NewNullDecimal(decimal.NewFromInt(60)),
		Timestamp:     fixedNow,
		Status:        domain.TransactionStatusCompleted,
	}, nil)

	ledger := ledgerWith(checking("1", "100"))
	f := newWorkflow(t, ledger, gw, nil, domain.ValidationPolicy{})

	_, err := f.uc.Submit(context.Background(), domain.Draft{
		SourceAccountID: "1",
		Destination:     "Maria",
		Amount:          decimal.NewFromInt(40),
		Kind:            domain.TransactionKindTransfer,
	})
	require.NoError(t, err)

	record, err := f.uc.Confirm(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "TXN-0123456789AB", record.ID)
	assert.True(t, record.Amount.Equal(decimal.NewFromInt(-40)))
	assert.Equal(t, domain.CategoryExpense, record.Category)
	assert.Equal(t, fixedNow, record.Timestamp)
	assert.Zero(t, testutil.ToFloat64(f.metrics.BalanceDrift))
}

func remoteGateway(id string, kind domain.TransactionKind, amount string, newBalance decimal.NullDecimal) *mocks.FakeGateway {
	gw := mocks.NewFakeGateway()
	gw.ModeValue = domain.GatewayModeRemote
	gw.SubmitFunc = func(_ context.Context, _ domain.TransactionIntent) (*domain.CommitReceipt, error) {
		return &domain.CommitReceipt{
			TransactionID: id,
			Kind:          kind,
			Amount:        decimal.RequireFromString(amount),
			NewBalance:    newBalance,
			Status:        domain.TransactionStatusCompleted,
		}, nil
	}
	return gw
}

func TestWorkflow_BalanceDriftIsReportedNotApplied(t *testing.T) {
	gw := remoteGateway("TXN-1", domain.TransactionKindDeposit, "500", decimal.NewNullDecimal(decimal.NewFromInt(9999)))

	ledger := ledgerWith(checking("1", "1000"))
	f := newWorkflow(t, ledger, gw, nil, domain.ValidationPolicy{})

	record, err := f.uc.QuickAction(context.Background(), domain.QuickActionDeposit, "1")
	require.NoError(t, err)

	account, _ := ledger.Account("1")
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(1500)), "receipt delta is applied, reported balance is not")
	assert.Equal(t, fixedNow, record.Timestamp, "missing receipt timestamp falls back to the clock")
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.BalanceDrift))
}

func TestWorkflow_MissingRemoteBalanceIsNotDrift(t *testing.T) {
	gw := remoteGateway("TXN-1", domain.TransactionKindDeposit, "40", decimal.NullDecimal{})

	ledger := ledgerWith(checking("1", "100"))
	f := newWorkflow(t, ledger, gw, nil, domain.ValidationPolicy{})

	_, err := f.uc.Submit(context.Background(), domain.Draft{SourceAccountID: "1", Amount: decimal.NewFromInt(40), Kind: domain.TransactionKindDeposit})
	require.NoError(t, err)
	_, err = f.uc.Confirm(context.Background())
	require.NoError(t, err)

	account, _ := ledger.Account("1")
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(140)))
	assert.Zero(t, testutil.ToFloat64(f.metrics.BalanceDrift))
}

func TestWorkflow_CommitsReceiptAmount(t *testing.T) {
	gw := remoteGateway("TXN-2", domain.TransactionKindDeposit, "39.50", decimal.NewNullDecimal(decimal.RequireFromString("139.50")))

	ledger := ledgerWith(checking("1", "100"))
	f := newWorkflow(t, ledger, gw, nil, domain.ValidationPolicy{})
	totalBefore := ledger.TotalBalance()

	_, err := f.uc.Submit(context.Background(), domain.Draft{SourceAccountID: "1", Amount: decimal.NewFromInt(40), Kind: domain.TransactionKindDeposit})
	require.NoError(t, err)

	record, err := f.uc.Confirm(context.Background())
	require.NoError(t, err)

	account, _ := ledger.Account("1")
	assert.True(t, account.Balance.Equal(decimal.RequireFromString("139.50")), "receipt delta applied, got %s", account.Balance)
	assert.True(t, ledger.TotalBalance().Sub(totalBefore).Equal(decimal.RequireFromString("39.50")))
	assert.True(t, record.Amount.Equal(decimal.RequireFromString("39.50")))
	assert.Equal(t, domain.CategoryIncome, record.Category)
	assert.Zero(t, testutil.ToFloat64(f.metrics.BalanceDrift), "remote balance matches the receipt delta")

	toasts := f.notifier.OfType(domain.EventTypeToast)
	require.NotEmpty(t, toasts)
	assert.Equal(t, "deposit of 39.50 completed", toasts[len(toasts)-1].Message)
}

func TestWorkflow_CommitsReceiptKind(t *testing.T) {
	gw := remoteGateway("TXN-3", domain.TransactionKindWithdrawal, "40", decimal.NewNullDecimal(decimal.NewFromInt(60)))

	ledger := ledgerWith(checking("1", "100"))
	f := newWorkflow(t, ledger, gw, nil, domain.ValidationPolicy{})

	_, err := f.uc.Submit(context.Background(), domain.Draft{SourceAccountID: "1", Amount: decimal.NewFromInt(40), Kind: domain.TransactionKindDeposit})
	require.NoError(t, err)

	record, err := f.uc.Confirm(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.TransactionKindWithdrawal, record.Kind)
	assert.True(t, record.Amount.Equal(decimal.NewFromInt(-40)))
	assert.Equal(t, domain.CategoryExpense, record.Category)

	account, _ := ledger.Account("1")
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(60)))
}

func TestWorkflow_CallerCancellationDoesNotAbortSubmission(t *testing.T) {
	gw := mocks.NewFakeGateway()
	gw.ModeValue = domain.GatewayModeRemote
	gw.SubmitFunc = func(ctx context.Context, intent domain.TransactionIntent) (*domain.CommitReceipt, error) {
		if err := ctx.Err(); err != nil {
			return nil, domain.NewGatewayError(domain.GatewayReasonNetwork, err.Error())
		}
		return &domain.CommitReceipt{
			TransactionID: "TXN-4",
			Kind:          intent.Kind,
			Amount:        intent.Amount,
			Status:        domain.TransactionStatusCompleted,
		}, nil
	}

	ledger := ledgerWith(checking("1", "100"))
	f := newWorkflow(t, ledger, gw, nil, domain.ValidationPolicy{})

	_, err := f.uc.Submit(context.Background(), domain.Draft{SourceAccountID: "1", Amount: decimal.NewFromInt(40), Kind: domain.TransactionKindWithdrawal})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	record, err := f.uc.Confirm(ctx)
	require.NoError(t, err)
	assert.Equal(t, "TXN-4", record.ID)

	status := f.uc.Status()
	assert.Equal(t, domain.WorkflowStateCommitted, status.Last.State)
	account, _ := ledger.Account("1")
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(60)))

	_, err = f.uc.QuickAction(ctx, domain.QuickActionPay, "1")
	require.NoError(t, err, "quick actions are not aborted by the caller either")
	account, _ = ledger.Account("1")
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(35)))
}

func TestWorkflow_SecondSubmissionIsBusy(t *testing.T) {
	ledger := ledgerWith(checking("1", "100"))
	f := newWorkflow(t, ledger, simulationGateway(ledger), nil, domain.ValidationPolicy{})
	ctx := context.Background()

	first := domain.Draft{SourceAccountID: "1", Amount: decimal.NewFromInt(10), Kind: domain.TransactionKindDeposit}
	_, err := f.uc.Submit(ctx, first)
	require.NoError(t, err)

	_, err = f.uc.Submit(ctx, domain.Draft{SourceAccountID: "1", Amount: decimal.NewFromInt(20), Kind: domain.TransactionKindDeposit})
	assert.ErrorIs(t, err, domain.ErrWorkflowBusy)

	_, err = f.uc.QuickAction(ctx, domain.QuickActionDeposit, "1")
	assert.ErrorIs(t, err, domain.ErrWorkflowBusy)

	status := f.uc.Status()
	assert.Equal(t, domain.WorkflowStatePendingConfirmation, status.State)
	require.NotNil(t, status.Pending)
	assert.True(t, status.Pending.Amount.Equal(decimal.NewFromInt(10)), "held draft untouched")
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.BusyRejections))

	record, err := f.uc.Confirm(ctx)
	require.NoError(t, err)
	assert.True(t, record.Amount.Equal(decimal.NewFromInt(10)))

	_, err = f.uc.Submit(ctx, domain.Draft{SourceAccountID: "1", Amount: decimal.NewFromInt(20), Kind: domain.TransactionKindDeposit})
	assert.NoError(t, err, "slot is free again after the terminal state")
}

func TestWorkflow_Cancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockGateway(ctrl)
	gw.EXPECT().Mode().Return(domain.GatewayModeSimulation).AnyTimes()

	ledger := ledgerWith(checking("1", "100"))
	f := newWorkflow(t, ledger, gw, nil, domain.ValidationPolicy{})
	ctx := context.Background()

	assert.ErrorIs(t, f.uc.Cancel(ctx), domain.ErrNoPendingDraft)

	_, err := f.uc.Submit(ctx, domain.Draft{SourceAccountID: "1", Amount: decimal.NewFromInt(10), Kind: domain.TransactionKindWithdrawal})
	require.NoError(t, err)

	require.NoError(t, f.uc.Cancel(ctx))

	status := f.uc.Status()
	assert.Equal(t, domain.WorkflowStateIdle, status.State)
	assert.Nil(t, status.Pending)
	assert.Equal(t, domain.WorkflowStateRejected, status.Last.State)
	assert.ErrorIs(t, status.Last.Err, domain.ErrUserCancelled)

	_, err = f.uc.Confirm(ctx)
	assert.ErrorIs(t, err, domain.ErrNoPendingDraft, "cancelled draft is cleared")

	account, _ := ledger.Account("1")
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(100)))
	assert.Empty(t, errorToasts(f.notifier))
}

func TestWorkflow_ConfirmWithoutDraft(t *testing.T) {
	ledger := ledgerWith(checking("1", "100"))
	f := newWorkflow(t, ledger, simulationGateway(ledger), nil, domain.ValidationPolicy{})

	_, err := f.uc.Confirm(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoPendingDraft)
}

func TestWorkflow_NoCancellationWhileSubmitting(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})

	gw := mocks.NewFakeGateway()
	gw.SubmitFunc = func(ctx context.Context, intent domain.TransactionIntent) (*domain.CommitReceipt, error) {
		close(entered)
		<-release
		return &domain.CommitReceipt{
			TransactionID: "sim-1",
			Kind:          intent.Kind,
			Amount:        intent.Amount,
			Status:        domain.TransactionStatusCompleted,
			Simulated:     true,
		}, nil
	}

	ledger := ledgerWith(checking("1", "100"))
	f := newWorkflow(t, ledger, gw, nil, domain.ValidationPolicy{})
	ctx := context.Background()

	_, err := f.uc.Submit(ctx, domain.Draft{SourceAccountID: "1", Amount: decimal.NewFromInt(30), Kind: domain.TransactionKindWithdrawal})
	require.NoError(t, err)

	var wg sync.WaitGroup
	var confirmErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, confirmErr = f.uc.Confirm(ctx)
	}()

	<-entered
	assert.Equal(t, domain.WorkflowStateSubmitting, f.uc.Status().State)
	assert.ErrorIs(t, f.uc.Cancel(ctx), domain.ErrSubmissionInFlight)
	_, err = f.uc.Confirm(ctx)
	assert.ErrorIs(t, err, domain.ErrSubmissionInFlight)
	_, err = f.uc.Submit(ctx, domain.Draft{SourceAccountID: "1", Amount: decimal.NewFromInt(1), Kind: domain.TransactionKindDeposit})
	assert.ErrorIs(t, err, domain.ErrWorkflowBusy)

	close(release)
	wg.Wait()

	require.NoError(t, confirmErr)
	account, _ := ledger.Account("1")
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(70)))
}

func TestWorkflow_DuplicateReceiptAppliedOnce(t *testing.T) {
	gw := mocks.NewFakeGateway()
	gw.SubmitFunc = func(_ context.Context, intent domain.TransactionIntent) (*domain.CommitReceipt, error) {
		return &domain.CommitReceipt{
			TransactionID: "same-id",
			Kind:          intent.Kind,
			Amount:        intent.Amount,
			Status:        domain.TransactionStatusCompleted,
			Simulated:     true,
		}, nil
	}

	ledger := ledgerWith(checking("1", "1000"))
	f := newWorkflow(t, ledger, gw, nil, domain.ValidationPolicy{})
	ctx := context.Background()

	_, err := f.uc.QuickAction(ctx, domain.QuickActionDeposit, "1")
	require.NoError(t, err)
	total := ledger.TotalBalance()

	f.notifier.Reset()
	_, err = f.uc.QuickAction(ctx, domain.QuickActionDeposit, "1")
	assert.ErrorIs(t, err, domain.ErrDuplicateTransaction)

	assert.True(t, ledger.TotalBalance().Equal(total), "receipt processed twice must not double-apply")
	assert.Len(t, ledger.History(), 1)

	toasts := errorToasts(f.notifier)
	require.Len(t, toasts, 1)
	assert.Equal(t, usecase.MessageLedgerFailure, toasts[0].Message)
	assert.Equal(t, domain.WorkflowStateIdle, f.uc.Status().State, "session continues")
}

func TestWorkflow_QuickActions(t *testing.T) {
	tests := []struct {
		name        string
		action      domain.QuickAction
		accountID   string
		balance     string
		description string
		expected    string
	}{
		{name: "deposit", action: domain.QuickActionDeposit, accountID: "1", balance: "15750", description: "Quick demo deposit", expected: "16250"},
		{name: "withdraw", action: domain.QuickActionWithdraw, accountID: "1", balance: "15750", description: "Cash withdrawal", expected: "15650"},
		{name: "pay", action: domain.QuickActionPay, accountID: "1", balance: "15750", description: "Service payment - Utility services", expected: "15725"},
		{name: "default account", action: domain.QuickActionDeposit, accountID: "", balance: "600", description: "Quick demo deposit", expected: "1100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := ledgerWith(
				domain.Account{ID: "2", Name: "Savings", Kind: domain.AccountKindSavings, Balance: decimal.NewFromInt(1)},
				checking("1", tt.balance),
			)
			gw := mocks.NewFakeGateway()
			f := newWorkflow(t, ledger, gw, nil, domain.ValidationPolicy{})

			record, err := f.uc.QuickAction(context.Background(), tt.action, tt.accountID)
			require.NoError(t, err)

			intents := gw.Intents()
			require.Len(t, intents, 1)
			assert.Equal(t, tt.description, intents[0].Description)
			assert.Equal(t, "1", intents[0].AccountID)
			assert.Equal(t, "1", record.AccountID)

			account, _ := ledger.Account("1")
			assert.True(t, account.Balance.Equal(decimal.RequireFromString(tt.expected)), account.Balance.String())
			assert.Empty(t, f.notifier.OfType(domain.EventTypeShowConfirmation), "quick actions skip confirmation")

			var states []domain.WorkflowState
			for _, e := range f.notifier.OfType(domain.EventTypeStateChanged) {
				states = append(states, e.To)
			}
			assert.Equal(t, []domain.WorkflowState{
				domain.WorkflowStateDraft,
				domain.WorkflowStateValidated,
				domain.WorkflowStateSubmitting,
				domain.WorkflowStateCommitted,
				domain.WorkflowStateIdle,
			}, states)
		})
	}
}

func TestWorkflow_QuickActionStillValidates(t *testing.T) {
	ledger := ledgerWith(checking("1", "50"))
	gw := mocks.NewFakeGateway()
	f := newWorkflow(t, ledger, gw, nil, domain.ValidationPolicy{})

	_, err := f.uc.QuickAction(context.Background(), domain.QuickActionWithdraw, "1")
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.Empty(t, gw.Intents())

	_, err = f.uc.QuickAction(context.Background(), domain.QuickAction("refund"), "1")
	assert.ErrorIs(t, err, domain.ErrUnknownQuickAction)
}

func TestWorkflow_CreditLimitHeadroom(t *testing.T) {
	limit := decimal.NewFromInt(5000)
	credit := domain.Account{ID: "3", Name: "Credit", Kind: domain.AccountKindCredit, Balance: decimal.NewFromInt(-1250), CreditLimit: &limit}
	draft := domain.Draft{SourceAccountID: "3", Destination: "Store", Amount: decimal.NewFromInt(100), Kind: domain.TransactionKindPayment}

	baseline := newWorkflow(t, ledgerWith(credit), mocks.NewFakeGateway(), nil, domain.ValidationPolicy{})
	_, err := baseline.uc.Submit(context.Background(), draft)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	headroom := newWorkflow(t, ledgerWith(credit), mocks.NewFakeGateway(), nil, domain.ValidationPolicy{CreditLimitHeadroom: true})
	_, err = headroom.uc.Submit(context.Background(), draft)
	require.NoError(t, err)
	record, err := headroom.uc.Confirm(context.Background())
	require.NoError(t, err)
	assert.True(t, record.Amount.Equal(decimal.NewFromInt(-100)))
}

func TestWorkflow_RecordsLastTransactionInCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockCache(ctrl)

	ledger := ledgerWith(checking("1", "1000"))
	f := newWorkflow(t, ledger, mocks.NewFakeGateway(), cache, domain.ValidationPolicy{})

	cache.EXPECT().Set(gomock.Any(), "last_transaction:1", "fake-1", usecase.LastTransactionTTL).Return(nil)

	_, err := f.uc.QuickAction(context.Background(), domain.QuickActionDeposit, "1")
	require.NoError(t, err)

	cache.EXPECT().Set(gomock.Any(), "last_transaction:1", "fake-2", gomock.Any()).Return(errors.New("redis down"))

	_, err = f.uc.QuickAction(context.Background(), domain.QuickActionDeposit, "1")
	assert.NoError(t, err, "cache failures are not fatal")

	account, _ := ledger.Account("1")
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(2000)))
}

func TestWorkflow_LastTransaction(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockCache(ctrl)

	f := newWorkflow(t, ledgerWith(checking("1", "100")), mocks.NewFakeGateway(), cache, domain.ValidationPolicy{})

	cache.EXPECT().Get(gomock.Any(), "last_transaction:1").Return("TXN-9", nil)
	id, err := f.uc.LastTransaction(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "TXN-9", id)

	cache.EXPECT().Get(gomock.Any(), "last_transaction:2").Return("", errors.New("cache miss"))
	_, err = f.uc.LastTransaction(context.Background(), "2")
	assert.ErrorIs(t, err, domain.ErrLastTransactionUnknown)

	withoutCache := newWorkflow(t, ledgerWith(checking("1", "100")), mocks.NewFakeGateway(), nil, domain.ValidationPolicy{})
	_, err = withoutCache.uc.LastTransaction(context.Background(), "1")
	assert.ErrorIs(t, err, domain.ErrLastTransactionUnknown)
}

func TestWorkflow_ValidateHasNoSideEffects(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockGateway(ctrl)
	gw.EXPECT().Mode().Return(domain.GatewayModeSimulation).AnyTimes()

	ledger := ledgerWith(checking("1", "100"))
	f := newWorkflow(t, ledger, gw, nil, domain.ValidationPolicy{})

	err := f.uc.Validate(context.Background(), domain.Draft{SourceAccountID: "1", Amount: decimal.NewFromInt(10), Kind: domain.TransactionKindTransfer})
	assert.ErrorIs(t, err, domain.ErrMissingDestination)

	err = f.uc.Validate(context.Background(), domain.Draft{SourceAccountID: "1", Amount: decimal.NewFromInt(10), Kind: domain.TransactionKindDeposit})
	assert.NoError(t, err)

	assert.Empty(t, f.notifier.Events())
	status := f.uc.Status()
	assert.Equal(t, domain.WorkflowStateIdle, status.State)
	assert.Nil(t, status.Last)
}

func TestWorkflow_RejectionsNeverMutateLedger(t *testing.T) {
	drafts := []domain.Draft{
		{SourceAccountID: "", Amount: decimal.NewFromInt(1), Kind: domain.TransactionKindDeposit},
		{SourceAccountID: "9", Amount: decimal.NewFromInt(1), Kind: domain.TransactionKindDeposit},
		{SourceAccountID: "1", Amount: decimal.NewFromInt(1), Kind: domain.TransactionKind("refund")},
		{SourceAccountID: "1", Amount: decimal.NewFromInt(1), Kind: domain.TransactionKindPayment},
		{SourceAccountID: "1", Amount: decimal.Zero, Kind: domain.TransactionKindDeposit},
		{SourceAccountID: "1", Amount: decimal.NewFromInt(-5), Kind: domain.TransactionKindDeposit},
		{SourceAccountID: "1", Amount: decimal.NewFromInt(101), Kind: domain.TransactionKindWithdrawal},
	}

	ledger := ledgerWith(checking("1", "100"))
	gw := mocks.NewFakeGateway()
	f := newWorkflow(t, ledger, gw, nil, domain.ValidationPolicy{})
	before := ledger.Snapshot()

	for _, d := range drafts {
		_, err := f.uc.Submit(context.Background(), d)
		require.Error(t, err)
		assert.True(t, domain.IsValidationError(err), "expected validation error, got %v", err)
	}

	assert.Equal(t, before, ledger.Snapshot())
	assert.Empty(t, gw.Intents())
	assert.Len(t, errorToasts(f.notifier), len(drafts))
}
