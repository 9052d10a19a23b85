package alerts

import (
	"context"
	"errors"
	"testing"
	"time"

	"stash/internal/core"
	"stash/internal/store"
	"stash/internal/store/memory"
)

func newTestDispatcher(s store.AlertStore, now func() time.Time) *Dispatcher {
	d := NewDispatcher(s, nil)
	d.now = now
	d.gate.now = now
	return d
}

func TestCreatePersistsAlert(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	d := newTestDispatcher(mem, func() time.Time { return now })

	a, err := d.Create(ctx, core.AlertBudgetWarning, core.AlertData{"category": "food", "percentage": "90"}, "w1", "u1")
	if err != nil {
		t.Fatal(err)
	}
	if a == nil {
		t.Fatal("expected a created alert")
	}
	if a.Title != "Budget warning" || a.Fingerprint == "" || a.Read {
		t.Fatalf("alert not fully populated: %+v", a)
	}

	stored, err := mem.ListAlertsByWallet(ctx, "w1")
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 1 || stored[0].ID != a.ID {
		t.Fatalf("alert not persisted: %+v", stored)
	}
}

func TestCreateSuppressesSameDayDuplicate(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	d := newTestDispatcher(mem, func() time.Time { return now })

	data := core.AlertData{"category": "food", "percentage": "90"}
	first, err := d.Create(ctx, core.AlertBudgetWarning, data, "w1", "u1")
	if err != nil || first == nil {
		t.Fatalf("first create failed: %v %v", first, err)
	}

	// Same type+payload, same calendar day: silently suppressed.
	second, err := d.Create(ctx, core.AlertBudgetWarning, data, "w1", "u1")
	if err != nil {
		t.Fatalf("suppression must not be an error: %v", err)
	}
	if second != nil {
		t.Fatal("same-day duplicate must be suppressed")
	}

	// Next calendar day: allowed again.
	now = now.Add(24 * time.Hour)
	third, err := d.Create(ctx, core.AlertBudgetWarning, data, "w1", "u1")
	if err != nil {
		t.Fatal(err)
	}
	if third == nil {
		t.Fatal("the same alert must be allowed on a new day")
	}

	stored, _ := mem.ListAlertsByWallet(ctx, "w1")
	if len(stored) != 2 {
		t.Fatalf("expected 2 persisted alerts, got %d", len(stored))
	}
}

func TestGateFindsDuplicateWithoutCache(t *testing.T) {
	// A second process would miss the in-memory cache; the store lookup must
	// still catch the duplicate.
	ctx := context.Background()
	mem := memory.New()
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	d1 := newTestDispatcher(mem, func() time.Time { return now })
	data := core.AlertData{"goal": "bike", "milestone": "50"}
	if _, err := d1.Create(ctx, core.AlertGoalMilestone, data, "w1", "u1"); err != nil {
		t.Fatal(err)
	}

	d2 := newTestDispatcher(mem, func() time.Time { return now })
	a, err := d2.Create(ctx, core.AlertGoalMilestone, data, "w1", "u1")
	if err != nil {
		t.Fatal(err)
	}
	if a != nil {
		t.Fatal("store-backed dedup must suppress across dispatcher instances")
	}
}

type failingAlertStore struct {
	store.AlertStore
	err error
}

func (f failingAlertStore) ListRecentAlertsByUser(context.Context, string, time.Time) ([]core.Alert, error) {
	return nil, f.err
}

func TestCreatePropagatesStoreFailure(t *testing.T) {
	wantErr := errors.New("store down")
	d := NewDispatcher(failingAlertStore{AlertStore: memory.New(), err: wantErr}, nil)

	a, err := d.Create(context.Background(), core.AlertSavingTip, core.AlertData{"category": "food"}, "w1", "u1")
	if a != nil {
		t.Fatal("no alert may be created when the dedup lookup fails")
	}
	if !errors.Is(err, wantErr) {
		t.Fatalf("store failure must be distinguishable from suppression, got %v", err)
	}
}

func TestMarkReadIdempotentAndDefensive(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	d := newTestDispatcher(mem, time.Now)

	a, err := d.Create(ctx, core.AlertGoalAchieved, core.AlertData{"goal": "bike"}, "w1", "u1")
	if err != nil {
		t.Fatal(err)
	}

	if err := d.MarkRead(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	if err := d.MarkRead(ctx, a.ID); err != nil {
		t.Fatalf("re-marking must be a no-op: %v", err)
	}
	// Unknown id: logged warning, no error.
	if err := d.MarkRead(ctx, "ghost"); err != nil {
		t.Fatalf("unknown alert must not error: %v", err)
	}
}

func TestMarkAllRead(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	d := newTestDispatcher(mem, func() time.Time { return now })

	if _, err := d.Create(ctx, core.AlertSavingTip, core.AlertData{"category": "food"}, "w1", "u1"); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Create(ctx, core.AlertSavingStreak, core.AlertData{"days": "7"}, "w1", "u1"); err != nil {
		t.Fatal(err)
	}

	if err := d.MarkAllRead(ctx, "w1"); err != nil {
		t.Fatal(err)
	}
	stored, _ := mem.ListAlertsByWallet(ctx, "w1")
	for _, a := range stored {
		if !a.Read {
			t.Fatalf("alert %s still unread", a.ID)
		}
	}
}
