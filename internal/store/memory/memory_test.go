package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"stash/internal/core"
	"stash/internal/store"
)

func amt(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestTransactionFilter(t *testing.T) {
	ctx := context.Background()
	s := New()

	insert := func(walletID, category string, typ core.TransactionType, amount string, date time.Time) {
		t.Helper()
		tx := core.Transaction{WalletID: walletID, UserID: "u1", Type: typ, Category: category, Amount: amt(amount), Date: date}
		if err := s.InsertTransaction(ctx, &tx); err != nil {
			t.Fatal(err)
		}
	}

	sep := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	oct := time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC)
	insert("w1", "food", core.Expense, "10", sep)
	insert("w1", "rent", core.Expense, "800", sep)
	insert("w1", "food", core.Expense, "20", oct)
	insert("w2", "food", core.Expense, "99", sep)

	got, err := s.ListTransactions(ctx, store.TransactionFilter{
		WalletID: "w1",
		Category: "food",
		From:     time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		To:       time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || !got[0].Amount.Equal(amt("10")) {
		t.Fatalf("filter returned wrong rows: %+v", got)
	}
}

func TestTransactionDeleteNotFound(t *testing.T) {
	s := New()
	err := s.DeleteTransaction(context.Background(), "missing")
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGoalRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New()

	g := core.Goal{WalletID: "w1", Name: "bike", TargetAmount: amt("400"), Priority: core.PriorityMedium}
	if err := s.InsertGoal(ctx, &g); err != nil {
		t.Fatal(err)
	}
	if g.ID == "" {
		t.Fatal("insert must assign an ID")
	}

	g.Completed = true
	if err := s.UpdateGoal(ctx, &g); err != nil {
		t.Fatal(err)
	}

	active, err := s.ListGoals(ctx, "w1", false)
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 0 {
		t.Fatal("completed goal must be excluded from active listing")
	}

	all, err := s.ListGoals(ctx, "w1", true)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || !all[0].Completed {
		t.Fatalf("completed goal missing from full listing: %+v", all)
	}
}

func TestAlertReadTransitions(t *testing.T) {
	ctx := context.Background()
	s := New()

	a := core.Alert{WalletID: "w1", UserID: "u1", Type: core.AlertBudgetWarning, CreatedAt: time.Now()}
	if err := s.InsertAlert(ctx, &a); err != nil {
		t.Fatal(err)
	}

	if err := s.MarkAlertRead(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	// Idempotent: a second mark is a no-op, not an error.
	if err := s.MarkAlertRead(ctx, a.ID); err != nil {
		t.Fatalf("second MarkAlertRead must not fail: %v", err)
	}

	alerts, err := s.ListAlertsByWallet(ctx, "w1")
	if err != nil {
		t.Fatal(err)
	}
	if len(alerts) != 1 || !alerts[0].Read {
		t.Fatalf("alert not marked read: %+v", alerts)
	}

	if err := s.MarkAlertRead(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown alert, got %v", err)
	}
}

func TestRecentAlertsWindow(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	old := core.Alert{UserID: "u1", WalletID: "w1", Type: core.AlertSavingTip, CreatedAt: now.Add(-36 * time.Hour)}
	fresh := core.Alert{UserID: "u1", WalletID: "w1", Type: core.AlertSavingTip, CreatedAt: now.Add(-1 * time.Hour)}
	if err := s.InsertAlert(ctx, &old); err != nil {
		t.Fatal(err)
	}
	if err := s.InsertAlert(ctx, &fresh); err != nil {
		t.Fatal(err)
	}

	got, err := s.ListRecentAlertsByUser(ctx, "u1", now.Add(-24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != fresh.ID {
		t.Fatalf("recent window returned wrong alerts: %+v", got)
	}
}

func TestFindActiveShareSkipsRejected(t *testing.T) {
	ctx := context.Background()
	s := New()

	rejected := core.WalletShare{WalletID: "w1", OwnerUserID: "u1", GranteeEmail: "g@example.com", Status: core.ShareRejected}
	if err := s.InsertShare(ctx, &rejected); err != nil {
		t.Fatal(err)
	}

	if _, err := s.FindActiveShare(ctx, "w1", "g@example.com"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("rejected share must not count as active, got %v", err)
	}

	pending := core.WalletShare{WalletID: "w1", OwnerUserID: "u1", GranteeEmail: "g@example.com", Status: core.SharePending}
	if err := s.InsertShare(ctx, &pending); err != nil {
		t.Fatal(err)
	}

	got, err := s.FindActiveShare(ctx, "w1", "g@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != pending.ID {
		t.Fatalf("expected the pending share, got %+v", got)
	}
}
