package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"stash/internal/alerts"
	"stash/internal/core"
	"stash/internal/store/memory"
)

func newShareFixture(t *testing.T) (*ShareService, *memory.Store, string) {
	t.Helper()
	mem := memory.New()
	svc := NewShareService(mem, alerts.NewDispatcher(mem, nil))
	w := core.Wallet{Name: "Family", OwnerUserID: "owner", CreatedAt: time.Now()}
	if err := mem.InsertWallet(context.Background(), &w); err != nil {
		t.Fatal(err)
	}
	return svc, mem, w.ID
}

func TestShareLifecycleAccept(t *testing.T) {
	ctx := context.Background()
	svc, _, wID := newShareFixture(t)

	sh, err := svc.CreateShare(ctx, wID, "owner", "friend@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if sh.Status != core.SharePending {
		t.Fatalf("new share status = %s, want pending", sh.Status)
	}

	// Before acceptance the grantee sees nothing.
	wallets, err := svc.SharedWallets(ctx, "friend@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if len(wallets) != 0 {
		t.Fatal("pending share must not grant access")
	}

	if err := svc.AcceptShare(ctx, sh.ID); err != nil {
		t.Fatal(err)
	}
	wallets, err = svc.SharedWallets(ctx, "friend@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if len(wallets) != 1 || wallets[0].ID != wID {
		t.Fatalf("accepted share must grant access, got %+v", wallets)
	}
}

func TestShareRejectedIsTerminal(t *testing.T) {
	ctx := context.Background()
	svc, mem, wID := newShareFixture(t)

	sh, err := svc.CreateShare(ctx, wID, "owner", "friend@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.RejectShare(ctx, sh.ID); err != nil {
		t.Fatal(err)
	}

	// Accepting a rejected share is a no-op.
	if err := svc.AcceptShare(ctx, sh.ID); err != nil {
		t.Fatal(err)
	}
	stored, err := mem.GetShare(ctx, sh.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != core.ShareRejected {
		t.Fatalf("rejection must be terminal, got %s", stored.Status)
	}

	// A fresh invite after rejection is allowed and starts pending again.
	again, err := svc.CreateShare(ctx, wID, "owner", "friend@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if again.ID == sh.ID || again.Status != core.SharePending {
		t.Fatalf("re-invite must be a new pending share, got %+v", again)
	}
}

func TestCreateShareConflicts(t *testing.T) {
	ctx := context.Background()
	svc, _, wID := newShareFixture(t)

	if _, err := svc.CreateShare(ctx, wID, "owner", "friend@example.com"); err != nil {
		t.Fatal(err)
	}

	// A second invite while the first is pending is a conflict.
	if _, err := svc.CreateShare(ctx, wID, "owner", "friend@example.com"); !errors.Is(err, ErrShareExists) {
		t.Fatalf("want ErrShareExists, got %v", err)
	}

	// Unknown wallet surfaces not-found.
	if _, err := svc.CreateShare(ctx, "ghost", "owner", "friend@example.com"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}

	// A different grantee on the same wallet is fine.
	if _, err := svc.CreateShare(ctx, wID, "owner", "other@example.com"); err != nil {
		t.Fatal(err)
	}
}

func TestRespondToUnknownShare(t *testing.T) {
	svc, _, _ := newShareFixture(t)
	if err := svc.AcceptShare(context.Background(), "ghost"); err != nil {
		t.Fatalf("responding to an unknown share must be a no-op: %v", err)
	}
}
