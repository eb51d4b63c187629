package dto

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/bankdash/internal/domain"
)

// DraftRequest represents a transaction form submission.
type DraftRequest struct {
	SourceAccountID string `json:"source_account_id"`
	Destination     string `json:"destination,omitempty"`
	Amount          string `json:"amount"`
	Kind            string `json:"kind"`
	Description     string `json:"description,omitempty"`
}

// ToDomain converts the request into a draft. Only the amount syntax is
// checked here; everything else is left to the validator.
func (r *DraftRequest) ToDomain() (domain.Draft, error) {
	amount := decimal.Zero
	if raw := strings.TrimSpace(r.Amount); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			return domain.Draft{}, fmt.Errorf("%w: %q is not a number", domain.ErrInvalidAmount, r.Amount)
		}
		amount = parsed
	}

	return domain.Draft{
		SourceAccountID: strings.TrimSpace(r.SourceAccountID),
		Destination:     strings.TrimSpace(r.Destination),
		Amount:          amount,
		Kind:            domain.TransactionKind(strings.TrimSpace(r.Kind)),
		Description:     strings.TrimSpace(r.Description),
	}, nil
}

// QuickActionRequest optionally names the account a quick action acts on.
type QuickActionRequest struct {
	AccountID string `json:"account_id,omitempty"`
}
