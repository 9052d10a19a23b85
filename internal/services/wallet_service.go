// Package services orchestrates the engines over the document store:
// snapshot recomputation, transaction ingestion with alert triggers, goal
// lifecycle and wallet sharing.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"stash/internal/alerts"
	"stash/internal/allocation"
	"stash/internal/budget"
	"stash/internal/core"
	"stash/internal/ledger"
	"stash/internal/store"
)

// Alert trigger thresholds.
var (
	// LargeTransactionThreshold: a single transaction at or above this fires
	// transaction_large.
	LargeTransactionThreshold = decimal.NewFromInt(1000)
	// SpendingPatternTotal: spending_pattern fires when at least
	// SpendingPatternMinCount expenses in one category within the current
	// month sum to this or more.
	SpendingPatternTotal = decimal.NewFromInt(2000)
)

const SpendingPatternMinCount = 3

// Overview is the computed view of one wallet: always re-derived wholesale
// from the live transaction, goal and budget sets, never maintained
// incrementally.
type Overview struct {
	WalletID      string
	Balance       decimal.Decimal
	CategorySpend map[string]decimal.Decimal // current calendar month
	GoalProgress  map[string]float64
	Budgets       []budget.Report
	ComputedAt    time.Time
}

// WalletService computes wallet overviews and feeds the alert pipeline.
type WalletService struct {
	store      store.Store
	dispatcher *alerts.Dispatcher
	now        func() time.Time

	mu        sync.RWMutex
	overviews map[string]Overview // last successfully computed snapshot
}

func NewWalletService(st store.Store, dispatcher *alerts.Dispatcher) *WalletService {
	return &WalletService{
		store:      st,
		dispatcher: dispatcher,
		now:        time.Now,
		overviews:  make(map[string]Overview),
	}
}

// snapshot is the raw data an overview is computed from.
type snapshot struct {
	transactions []core.Transaction
	goals        []core.Goal
	budgets      []core.Budget
}

func (s *WalletService) fetch(ctx context.Context, walletID string) (snapshot, error) {
	var snap snapshot
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		txns, err := s.store.ListTransactions(ctx, store.TransactionFilter{WalletID: walletID})
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		snap.transactions = txns
		return nil
	})
	g.Go(func() error {
		goals, err := s.store.ListGoals(ctx, walletID, false)
		if err != nil {
			return fmt.Errorf("list goals: %w", err)
		}
		snap.goals = goals
		return nil
	})
	g.Go(func() error {
		budgets, err := s.store.ListBudgets(ctx, walletID)
		if err != nil {
			return fmt.Errorf("list budgets: %w", err)
		}
		snap.budgets = budgets
		return nil
	})
	if err := g.Wait(); err != nil {
		return snapshot{}, err
	}
	return snap, nil
}

func (s *WalletService) compute(walletID string, snap snapshot, at time.Time) (Overview, error) {
	full := ledger.Summarize(snap.transactions)
	month := ledger.Summarize(ledger.FilterMonth(snap.transactions, at.Year(), at.Month()))

	progress, err := allocation.Progress(full.Balance, snap.goals)
	if err != nil {
		return Overview{}, fmt.Errorf("allocate goals: %w", err)
	}
	reports, err := budget.Evaluate(snap.budgets, month.CategorySpend)
	if err != nil {
		return Overview{}, fmt.Errorf("evaluate budgets: %w", err)
	}

	return Overview{
		WalletID:      walletID,
		Balance:       full.Balance,
		CategorySpend: month.CategorySpend,
		GoalProgress:  progress,
		Budgets:       reports,
		ComputedAt:    at,
	}, nil
}

// RecomputeOverview fetches the wallet's data and re-derives the overview
// from scratch. On any fetch or computation failure the previously computed
// snapshot is left untouched and the error is returned to the caller; no
// retries happen here.
func (s *WalletService) RecomputeOverview(ctx context.Context, walletID string) (Overview, error) {
	snap, err := s.fetch(ctx, walletID)
	if err != nil {
		return Overview{}, err
	}
	ov, err := s.compute(walletID, snap, s.now())
	if err != nil {
		return Overview{}, err
	}

	s.mu.Lock()
	s.overviews[walletID] = ov
	s.mu.Unlock()
	return ov, nil
}

// Overview returns the last successfully computed snapshot for the wallet.
func (s *WalletService) Overview(walletID string) (Overview, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ov, ok := s.overviews[walletID]
	return ov, ok
}

// AddTransaction validates and persists a transaction, recomputes the
// wallet overview and fires any alerts the change triggers. Alert failures
// never fail the ingestion: the transaction is already saved.
func (s *WalletService) AddTransaction(ctx context.Context, t *core.Transaction) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Date.IsZero() {
		t.Date = s.now()
	}
	if err := t.Validate(); err != nil {
		return err
	}

	// Sample the pre-change state for threshold and milestone detection.
	before, haveBefore := s.sample(ctx, t.WalletID)

	if err := s.store.InsertTransaction(ctx, t); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	after, err := s.RecomputeOverview(ctx, t.WalletID)
	if err != nil {
		slog.WarnContext(ctx, "Overview recompute failed after insert",
			"wallet_id", t.WalletID, "error", err)
		return nil
	}

	s.fireTransactionAlerts(ctx, t, after)
	if haveBefore {
		s.fireBudgetTransitions(ctx, t, before, after)
		s.fireGoalCrossings(ctx, t, before, after)
	}
	return nil
}

// DeleteTransaction removes a transaction and refreshes the overview.
// Deleting an unknown id is a warning, not a failure.
func (s *WalletService) DeleteTransaction(ctx context.Context, walletID, id string) error {
	err := s.store.DeleteTransaction(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		slog.WarnContext(ctx, "Delete of unknown transaction", "transaction_id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if _, err := s.RecomputeOverview(ctx, walletID); err != nil {
		slog.WarnContext(ctx, "Overview recompute failed after delete",
			"wallet_id", walletID, "error", err)
	}
	return nil
}

// sample returns the current overview, recomputing it when no snapshot
// exists yet. A failed sample disables transition detection for this change
// but never blocks the write path.
func (s *WalletService) sample(ctx context.Context, walletID string) (Overview, bool) {
	if ov, ok := s.Overview(walletID); ok {
		return ov, true
	}
	ov, err := s.RecomputeOverview(ctx, walletID)
	if err != nil {
		slog.WarnContext(ctx, "Pre-change sample unavailable", "wallet_id", walletID, "error", err)
		return Overview{}, false
	}
	return ov, true
}

func (s *WalletService) fireTransactionAlerts(ctx context.Context, t *core.Transaction, after Overview) {
	if t.Type != core.Expense {
		return
	}

	if t.Amount.GreaterThanOrEqual(LargeTransactionThreshold) {
		s.emit(ctx, core.AlertTransactionLarge, core.AlertData{
			"amount":   t.Amount.StringFixed(2),
			"category": t.Category,
		}, t.WalletID, t.UserID)
	}

	start, end := ledger.MonthWindow(t.Date.Year(), t.Date.Month())
	txns, err := s.store.ListTransactions(ctx, store.TransactionFilter{
		WalletID: t.WalletID,
		Type:     core.Expense,
		Category: t.Category,
		From:     start,
		To:       end,
	})
	if err != nil {
		slog.WarnContext(ctx, "Spending pattern check skipped", "wallet_id", t.WalletID, "error", err)
		return
	}
	total := decimal.Zero
	for _, tx := range txns {
		total = total.Add(tx.Amount)
	}
	if len(txns) >= SpendingPatternMinCount && total.GreaterThanOrEqual(SpendingPatternTotal) {
		s.emit(ctx, core.AlertSpendingPattern, core.AlertData{
			"count":    strconv.Itoa(len(txns)),
			"category": t.Category,
			"total":    total.StringFixed(2),
		}, t.WalletID, t.UserID)
	}
}

// fireBudgetTransitions raises budget alerts only when a category enters a
// worse state, so a wallet sitting at 90% does not alert on every refresh.
func (s *WalletService) fireBudgetTransitions(ctx context.Context, t *core.Transaction, before, after Overview) {
	prev := make(map[string]budget.Status, len(before.Budgets))
	for _, r := range before.Budgets {
		prev[r.Category] = r.Status
	}
	for _, r := range after.Budgets {
		was := prev[r.Category]
		data := core.AlertData{
			"category":   r.Category,
			"percentage": strconv.FormatFloat(r.Percentage, 'f', 0, 64),
		}
		switch {
		case r.Status == budget.StatusExceeded && was != budget.StatusExceeded:
			s.emit(ctx, core.AlertBudgetExceeded, data, t.WalletID, t.UserID)
		case r.Status == budget.StatusWarning && was != budget.StatusWarning && was != budget.StatusExceeded:
			s.emit(ctx, core.AlertBudgetWarning, data, t.WalletID, t.UserID)
		}
	}
}

func (s *WalletService) fireGoalCrossings(ctx context.Context, t *core.Transaction, before, after Overview) {
	goals, err := s.store.ListGoals(ctx, t.WalletID, false)
	if err != nil {
		slog.WarnContext(ctx, "Goal crossing check skipped", "wallet_id", t.WalletID, "error", err)
		return
	}
	names := make(map[string]string, len(goals))
	for _, g := range goals {
		names[g.ID] = g.Name
	}

	for goalID, curr := range after.GoalProgress {
		prev := before.GoalProgress[goalID]
		name, ok := names[goalID]
		if !ok {
			continue
		}
		for _, m := range allocation.CrossedMilestones(prev, curr) {
			s.emit(ctx, core.AlertGoalMilestone, core.AlertData{
				"goal":      name,
				"milestone": strconv.FormatFloat(m, 'f', 0, 64),
			}, t.WalletID, t.UserID)
		}
		if allocation.Achieved(prev, curr) {
			s.emit(ctx, core.AlertGoalAchieved, core.AlertData{"goal": name}, t.WalletID, t.UserID)
		}
	}
}

func (s *WalletService) emit(ctx context.Context, eventType core.AlertType, data core.AlertData, walletID, userID string) {
	if s.dispatcher == nil {
		return
	}
	if _, err := s.dispatcher.Create(ctx, eventType, data, walletID, userID); err != nil {
		slog.ErrorContext(ctx, "Alert emission failed",
			"type", eventType, "wallet_id", walletID, "error", err)
	}
}
