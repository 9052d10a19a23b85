// Package budget compares per-category spend against budget limits for the
// current calendar month and classifies each budget's state.
package budget

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"stash/internal/core"
)

// Status classifies a budget for the month.
const (
	// StatusExceeded: spend reached or passed the limit (≥ 100%).
	StatusExceeded Status = "exceeded"
	// StatusWarning: spend is at 80–99% of the limit.
	StatusWarning Status = "warning"
	// StatusControlled: spend is at or below 30% of the limit. Informational only.
	StatusControlled Status = "controlled"
	// StatusNeutral: everything in between; no message is produced.
	StatusNeutral Status = "neutral"
)

type (
	Status string

	// Report is the evaluated state of one (wallet, category) budget.
	Report struct {
		WalletID   string
		Category   string
		Limit      decimal.Decimal
		Spent      decimal.Decimal
		Percentage float64
		Status     Status
	}
)

var hundred = decimal.NewFromInt(100)

// Evaluate classifies every budget against the month's category spend.
//
// Duplicate budgets for the same (wallet, category) are additive: their
// limits are summed into a single report. A zero or negative limit is
// rejected with core.ErrInvalidLimit; it never reaches the division.
// Reports are sorted by category for stable output.
func Evaluate(budgets []core.Budget, categorySpend map[string]decimal.Decimal) ([]Report, error) {
	type merged struct {
		walletID string
		limit    decimal.Decimal
	}
	byCategory := make(map[string]*merged)
	order := make([]string, 0, len(budgets))

	for _, b := range budgets {
		if b.Limit.Sign() <= 0 {
			return nil, fmt.Errorf("budget %s (%s): %w", b.ID, b.Category, core.ErrInvalidLimit)
		}
		if m, ok := byCategory[b.Category]; ok {
			m.limit = m.limit.Add(b.Limit)
			continue
		}
		byCategory[b.Category] = &merged{walletID: b.WalletID, limit: b.Limit}
		order = append(order, b.Category)
	}
	sort.Strings(order)

	reports := make([]Report, 0, len(order))
	for _, category := range order {
		m := byCategory[category]
		spent := categorySpend[category]
		pct := spent.Div(m.limit).Mul(hundred).InexactFloat64()
		reports = append(reports, Report{
			WalletID:   m.walletID,
			Category:   category,
			Limit:      m.limit,
			Spent:      spent,
			Percentage: pct,
			Status:     Classify(pct),
		})
	}
	return reports, nil
}

// Classify maps a spend percentage to a Status.
func Classify(percentage float64) Status {
	switch {
	case percentage >= 100:
		return StatusExceeded
	case percentage >= 80:
		return StatusWarning
	case percentage <= 30:
		return StatusControlled
	default:
		return StatusNeutral
	}
}
