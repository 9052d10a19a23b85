// Package ledger reduces a wallet's transaction set into a signed running
// balance and per-category expense sums. All functions are pure: addition is
// commutative, so no ordering of the input is required.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"stash/internal/core"
)

// Summary is the aggregate of a transaction set.
type Summary struct {
	Balance       decimal.Decimal
	CategorySpend map[string]decimal.Decimal
}

// Summarize computes balance = Σ(income) − Σ(expense) and the per-category
// expense sums. An empty set yields a zero balance and an empty map.
// Callers are responsible for filtering by wallet (and, for budget analysis,
// by month) before calling.
func Summarize(txns []core.Transaction) Summary {
	s := Summary{
		Balance:       decimal.Zero,
		CategorySpend: make(map[string]decimal.Decimal),
	}
	for _, t := range txns {
		switch t.Type {
		case core.Income:
			s.Balance = s.Balance.Add(t.Amount)
		case core.Expense:
			s.Balance = s.Balance.Sub(t.Amount)
			s.CategorySpend[t.Category] = s.CategorySpend[t.Category].Add(t.Amount)
		}
	}
	return s
}

// MonthWindow returns the [start, end) bounds of a calendar month in UTC.
func MonthWindow(year int, month time.Month) (start, end time.Time) {
	start = time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 1, 0)
	return start, end
}

// FilterMonth keeps only transactions whose date falls inside the given
// calendar month.
func FilterMonth(txns []core.Transaction, year int, month time.Month) []core.Transaction {
	start, end := MonthWindow(year, month)
	var out []core.Transaction
	for _, t := range txns {
		if !t.Date.Before(start) && t.Date.Before(end) {
			out = append(out, t)
		}
	}
	return out
}

// FilterWallet keeps only transactions belonging to the given wallet.
func FilterWallet(txns []core.Transaction, walletID string) []core.Transaction {
	var out []core.Transaction
	for _, t := range txns {
		if t.WalletID == walletID {
			out = append(out, t)
		}
	}
	return out
}
