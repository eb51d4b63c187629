package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestTransactionKind_SignedAmount(t *testing.T) {
	tests := []struct {
		kind     TransactionKind
		amount   decimal.Decimal
		expected decimal.Decimal
	}{
		{TransactionKindDeposit, decimal.NewFromInt(40), decimal.NewFromInt(40)},
		{TransactionKindWithdrawal, decimal.NewFromInt(40), decimal.NewFromInt(-40)},
		{TransactionKindTransfer, decimal.NewFromInt(40), decimal.NewFromInt(-40)},
		{TransactionKindPayment, decimal.NewFromInt(40), decimal.NewFromInt(-40)},
		{TransactionKindPayment, decimal.NewFromInt(-40), decimal.NewFromInt(-40)},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if got := tt.kind.SignedAmount(tt.amount); !got.Equal(tt.expected) {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestCategoryOf(t *testing.T) {
	if got := CategoryOf(decimal.NewFromInt(1)); got != CategoryIncome {
		t.Errorf("expected income, got %s", got)
	}
	if got := CategoryOf(decimal.NewFromInt(-1)); got != CategoryExpense {
		t.Errorf("expected expense, got %s", got)
	}
	if got := CategoryOf(decimal.Zero); got != CategoryExpense {
		t.Errorf("expected expense for zero, got %s", got)
	}
}

func TestDraft_Intent(t *testing.T) {
	draft := Draft{
		SourceAccountID: "1",
		Destination:     "Maria",
		Amount:          decimal.NewFromInt(10),
		Kind:            TransactionKindTransfer,
	}

	intent := draft.Intent()

	if intent.Description != "Transfer - Maria" {
		t.Errorf("unexpected description %q", intent.Description)
	}
	if intent.AccountID != "1" || intent.Kind != TransactionKindTransfer || !intent.Amount.Equal(draft.Amount) {
		t.Errorf("unexpected intent %+v", intent)
	}

	draft.Destination = ""
	draft.Description = "Salary"
	if got := draft.Intent().Description; got != "Salary" {
		t.Errorf("expected plain description, got %q", got)
	}
}

func TestCommitReceipt_Delta(t *testing.T) {
	r := &CommitReceipt{Kind: TransactionKindWithdrawal, Amount: decimal.NewFromInt(25)}
	if !r.Delta().Equal(decimal.NewFromInt(-25)) {
		t.Errorf("expected -25, got %s", r.Delta())
	}
}
