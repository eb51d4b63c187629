package domain

import (
	"strings"
	"time"
)

// DefaultPeriodDays is the history window used when none is requested.
const DefaultPeriodDays = 30

// HistoryFilter narrows the transaction history for display.
type HistoryFilter struct {
	// PeriodDays keeps transactions newer than now - PeriodDays days.
	// Zero or negative disables the period predicate.
	PeriodDays int
	// Search is matched case-insensitively against description and account name.
	Search string
}

// Apply returns the matching transactions, preserving the order of history.
func (f HistoryFilter) Apply(history []Transaction, now time.Time) []Transaction {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	var cutoff time.Time
	if f.PeriodDays > 0 {
		cutoff = now.Add(-time.Duration(f.PeriodDays) * 24 * time.Hour)
	}

	result := make([]Transaction, 0, len(history))
	for _, t := range history {
		if f.PeriodDays > 0 && t.Timestamp.Before(cutoff) {
			continue
		}

		if search != "" &&
			!strings.Contains(strings.ToLower(t.Description), search) &&
			!strings.Contains(strings.ToLower(t.AccountName), search) {
			continue
		}

		result = append(result, t)
	}

	return result
}
