// Package worker generates digest alerts on a schedule and delivers alert
// events consumed from the queue.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"stash/internal/alerts"
	"stash/internal/amqp"
	"stash/internal/core"
	"stash/internal/ledger"
	"stash/internal/store"
)

// Digest thresholds.
const (
	// SavingTipShare: a saving_tip fires when one category takes at least
	// this share of the month's spending.
	SavingTipShare = 0.5
	// SavingStreakDays: consecutive trailing days without an expense needed
	// for a saving_streak.
	SavingStreakDays = 7
)

// DigestWorker walks every wallet and emits periodic summary alerts. The
// dedup gate in the dispatcher keeps reruns within the same day silent.
type DigestWorker struct {
	store      store.Store
	dispatcher *alerts.Dispatcher
	now        func() time.Time
}

func NewDigestWorker(st store.Store, dispatcher *alerts.Dispatcher) *DigestWorker {
	return &DigestWorker{store: st, dispatcher: dispatcher, now: time.Now}
}

// HandleAlertMessage delivers one alert event from the queue. Delivery here
// is a structured log line; a mail or push integration would hang off this
// point. A message whose alert no longer exists is dropped, not requeued.
func (w *DigestWorker) HandleAlertMessage(ctx context.Context, msg *amqp.AlertCreatedMessage) error {
	stored, err := w.store.ListAlertsByWallet(ctx, msg.WalletID)
	if err != nil {
		return fmt.Errorf("load alerts for wallet %s: %w", msg.WalletID, err)
	}
	for _, a := range stored {
		if a.ID != msg.AlertID {
			continue
		}
		slog.InfoContext(ctx, "Delivering alert",
			"alert_id", a.ID,
			"type", a.Type,
			"title", a.Title,
			"user_id", a.UserID)
		return nil
	}

	slog.WarnContext(ctx, "Alert message references unknown alert",
		"alert_id", msg.AlertID, "wallet_id", msg.WalletID)
	return nil
}

// RunDigest generates monthly_summary, saving_tip and saving_streak alerts
// for every wallet. Per-wallet failures are logged and skipped so one broken
// wallet cannot starve the rest.
func (w *DigestWorker) RunDigest(ctx context.Context) error {
	wallets, err := w.store.ListWallets(ctx)
	if err != nil {
		return fmt.Errorf("list wallets: %w", err)
	}

	for _, wallet := range wallets {
		if err := w.digestWallet(ctx, wallet); err != nil {
			slog.ErrorContext(ctx, "Wallet digest failed",
				"wallet_id", wallet.ID, "error", err)
		}
	}
	return nil
}

func (w *DigestWorker) digestWallet(ctx context.Context, wallet core.Wallet) error {
	now := w.now()
	start, end := ledger.MonthWindow(now.Year(), now.Month())
	txns, err := w.store.ListTransactions(ctx, store.TransactionFilter{
		WalletID: wallet.ID,
		From:     start,
		To:       end,
	})
	if err != nil {
		return fmt.Errorf("list month transactions: %w", err)
	}

	w.emitMonthlySummary(ctx, wallet, txns, now)
	w.emitSavingTip(ctx, wallet, txns)
	w.emitSavingStreak(ctx, wallet, txns, now)
	return nil
}

func (w *DigestWorker) emitMonthlySummary(ctx context.Context, wallet core.Wallet, txns []core.Transaction, now time.Time) {
	if len(txns) == 0 {
		return
	}
	income := decimal.Zero
	spent := decimal.Zero
	for _, t := range txns {
		switch t.Type {
		case core.Income:
			income = income.Add(t.Amount)
		case core.Expense:
			spent = spent.Add(t.Amount)
		}
	}
	w.emit(ctx, core.AlertMonthlySummary, core.AlertData{
		"month":   now.UTC().Format("2006-01"),
		"income":  income.StringFixed(2),
		"expense": spent.StringFixed(2),
	}, wallet)
}

// emitSavingTip fires when a single category dominates the month's spending.
func (w *DigestWorker) emitSavingTip(ctx context.Context, wallet core.Wallet, txns []core.Transaction) {
	summary := ledger.Summarize(txns)
	total := decimal.Zero
	for _, v := range summary.CategorySpend {
		total = total.Add(v)
	}
	if total.Sign() <= 0 || len(summary.CategorySpend) < 2 {
		return
	}

	topCategory := ""
	topAmount := decimal.Zero
	for cat, v := range summary.CategorySpend {
		if v.GreaterThan(topAmount) || (v.Equal(topAmount) && cat < topCategory) {
			topCategory, topAmount = cat, v
		}
	}

	share := topAmount.Div(total)
	if share.InexactFloat64() >= SavingTipShare {
		w.emit(ctx, core.AlertSavingTip, core.AlertData{
			"category": topCategory,
			"share":    share.Mul(decimal.NewFromInt(100)).StringFixed(0),
		}, wallet)
	}
}

// emitSavingStreak counts consecutive trailing days without any expense.
func (w *DigestWorker) emitSavingStreak(ctx context.Context, wallet core.Wallet, txns []core.Transaction, now time.Time) {
	if len(txns) == 0 {
		// An inactive wallet is not a saving streak.
		return
	}
	spentDays := make(map[string]bool)
	for _, t := range txns {
		if t.Type == core.Expense {
			spentDays[t.Date.UTC().Format("2006-01-02")] = true
		}
	}

	day := now.UTC().Truncate(24 * time.Hour)
	streak := 0
	for !spentDays[day.Format("2006-01-02")] {
		streak++
		day = day.AddDate(0, 0, -1)
		// Do not count past the start of the month window.
		if day.Month() != now.UTC().Month() {
			break
		}
	}

	if streak >= SavingStreakDays {
		w.emit(ctx, core.AlertSavingStreak, core.AlertData{
			"days": strconv.Itoa(streak),
		}, wallet)
	}
}

func (w *DigestWorker) emit(ctx context.Context, eventType core.AlertType, data core.AlertData, wallet core.Wallet) {
	if _, err := w.dispatcher.Create(ctx, eventType, data, wallet.ID, wallet.OwnerUserID); err != nil {
		slog.ErrorContext(ctx, "Digest alert emission failed",
			"type", eventType, "wallet_id", wallet.ID, "error", err)
	}
}
