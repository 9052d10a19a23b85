// Package store defines the queryable document-collection abstraction the
// engines consume. Persistence internals live behind these interfaces; the
// core never sees a driver type.
package store

import (
	"context"
	"time"

	"stash/internal/core"
)

// TransactionFilter narrows a transaction query. Zero-valued fields are
// ignored; WalletID is required by every caller.
type TransactionFilter struct {
	WalletID string
	UserID   string
	Type     core.TransactionType
	Category string
	From     time.Time
	To       time.Time // exclusive
}

// Ports for the backing document store.
type (
	TransactionStore interface {
		InsertTransaction(ctx context.Context, t *core.Transaction) error
		ListTransactions(ctx context.Context, f TransactionFilter) ([]core.Transaction, error)
		DeleteTransaction(ctx context.Context, id string) error
	}

	GoalStore interface {
		InsertGoal(ctx context.Context, g *core.Goal) error
		GetGoal(ctx context.Context, id string) (*core.Goal, error)
		// ListGoals returns the wallet's goals, optionally including
		// completed ones.
		ListGoals(ctx context.Context, walletID string, includeCompleted bool) ([]core.Goal, error)
		UpdateGoal(ctx context.Context, g *core.Goal) error
	}

	BudgetStore interface {
		InsertBudget(ctx context.Context, b *core.Budget) error
		ListBudgets(ctx context.Context, walletID string) ([]core.Budget, error)
	}

	AlertStore interface {
		InsertAlert(ctx context.Context, a *core.Alert) error
		ListAlertsByWallet(ctx context.Context, walletID string) ([]core.Alert, error)
		// ListRecentAlertsByUser returns alerts the user created at or after
		// since; the dedup gate compares their fingerprints.
		ListRecentAlertsByUser(ctx context.Context, userID string, since time.Time) ([]core.Alert, error)
		// MarkAlertRead flips the read flag. Marking an already-read alert is
		// a no-op, not an error.
		MarkAlertRead(ctx context.Context, id string) error
		MarkAllAlertsRead(ctx context.Context, walletID string) error
	}

	WalletStore interface {
		InsertWallet(ctx context.Context, w *core.Wallet) error
		GetWallet(ctx context.Context, id string) (*core.Wallet, error)
		ListWalletsByOwner(ctx context.Context, ownerUserID string) ([]core.Wallet, error)
		ListWallets(ctx context.Context) ([]core.Wallet, error)
	}

	ShareStore interface {
		InsertShare(ctx context.Context, s *core.WalletShare) error
		GetShare(ctx context.Context, id string) (*core.WalletShare, error)
		// FindActiveShare returns the single share for (walletID, granteeEmail)
		// whose status is not rejected, or core.ErrNotFound.
		FindActiveShare(ctx context.Context, walletID, granteeEmail string) (*core.WalletShare, error)
		ListSharesByWallet(ctx context.Context, walletID string) ([]core.WalletShare, error)
		ListSharesByGrantee(ctx context.Context, granteeEmail string) ([]core.WalletShare, error)
		UpdateShareStatus(ctx context.Context, id string, status core.ShareStatus) error
	}
)

// Store is the full document store a backend must provide.
type Store interface {
	TransactionStore
	GoalStore
	BudgetStore
	AlertStore
	WalletStore
	ShareStore

	Close() error
}
