// Package memory is the in-memory store backend. It is the default for
// local runs and the fixture for tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"stash/internal/core"
	"stash/internal/store"
)

type Store struct {
	mu           sync.RWMutex
	transactions map[string]core.Transaction
	goals        map[string]core.Goal
	budgets      map[string]core.Budget
	alerts       map[string]core.Alert
	wallets      map[string]core.Wallet
	shares       map[string]core.WalletShare
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		transactions: make(map[string]core.Transaction),
		goals:        make(map[string]core.Goal),
		budgets:      make(map[string]core.Budget),
		alerts:       make(map[string]core.Alert),
		wallets:      make(map[string]core.Wallet),
		shares:       make(map[string]core.WalletShare),
	}
}

func (s *Store) Close() error { return nil }

// Transactions

func (s *Store) InsertTransaction(_ context.Context, t *core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	s.transactions[t.ID] = *t
	return nil
}

func (s *Store) ListTransactions(_ context.Context, f store.TransactionFilter) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Transaction
	for _, t := range s.transactions {
		if f.WalletID != "" && t.WalletID != f.WalletID {
			continue
		}
		if f.UserID != "" && t.UserID != f.UserID {
			continue
		}
		if f.Type != "" && t.Type != f.Type {
			continue
		}
		if f.Category != "" && t.Category != f.Category {
			continue
		}
		if !f.From.IsZero() && t.Date.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && !t.Date.Before(f.To) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[id]; !ok {
		return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	delete(s.transactions, id)
	return nil
}

// Goals

func (s *Store) InsertGoal(_ context.Context, g *core.Goal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	s.goals[g.ID] = *g
	return nil
}

func (s *Store) GetGoal(_ context.Context, id string) (*core.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.goals[id]
	if !ok {
		return nil, fmt.Errorf("goal %s: %w", id, core.ErrNotFound)
	}
	return &g, nil
}

func (s *Store) ListGoals(_ context.Context, walletID string, includeCompleted bool) ([]core.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Goal
	for _, g := range s.goals {
		if g.WalletID != walletID {
			continue
		}
		if g.Completed && !includeCompleted {
			continue
		}
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpdateGoal(_ context.Context, g *core.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.goals[g.ID]; !ok {
		return fmt.Errorf("goal %s: %w", g.ID, core.ErrNotFound)
	}
	s.goals[g.ID] = *g
	return nil
}

// Budgets

func (s *Store) InsertBudget(_ context.Context, b *core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	s.budgets[b.ID] = *b
	return nil
}

func (s *Store) ListBudgets(_ context.Context, walletID string) ([]core.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Budget
	for _, b := range s.budgets {
		if b.WalletID == walletID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Alerts

func (s *Store) InsertAlert(_ context.Context, a *core.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	stored := *a
	stored.Data = a.Data.Clone()
	s.alerts[a.ID] = stored
	return nil
}

func (s *Store) ListAlertsByWallet(_ context.Context, walletID string) ([]core.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Alert
	for _, a := range s.alerts {
		if a.WalletID == walletID {
			out = append(out, a)
		}
	}
	sortAlerts(out)
	return out, nil
}

func (s *Store) ListRecentAlertsByUser(_ context.Context, userID string, since time.Time) ([]core.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Alert
	for _, a := range s.alerts {
		if a.UserID == userID && !a.CreatedAt.Before(since) {
			out = append(out, a)
		}
	}
	sortAlerts(out)
	return out, nil
}

func (s *Store) MarkAlertRead(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alerts[id]
	if !ok {
		return fmt.Errorf("alert %s: %w", id, core.ErrNotFound)
	}
	a.Read = true
	s.alerts[id] = a
	return nil
}

func (s *Store) MarkAllAlertsRead(_ context.Context, walletID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, a := range s.alerts {
		if a.WalletID == walletID && !a.Read {
			a.Read = true
			s.alerts[id] = a
		}
	}
	return nil
}

// Wallets

func (s *Store) InsertWallet(_ context.Context, w *core.Wallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	s.wallets[w.ID] = *w
	return nil
}

func (s *Store) GetWallet(_ context.Context, id string) (*core.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.wallets[id]
	if !ok {
		return nil, fmt.Errorf("wallet %s: %w", id, core.ErrNotFound)
	}
	return &w, nil
}

func (s *Store) ListWalletsByOwner(_ context.Context, ownerUserID string) ([]core.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Wallet
	for _, w := range s.wallets {
		if w.OwnerUserID == ownerUserID {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) ListWallets(_ context.Context) ([]core.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Wallet, 0, len(s.wallets))
	for _, w := range s.wallets {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Shares

func (s *Store) InsertShare(_ context.Context, sh *core.WalletShare) error {
	if err := sh.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if sh.ID == "" {
		sh.ID = uuid.NewString()
	}
	s.shares[sh.ID] = *sh
	return nil
}

func (s *Store) GetShare(_ context.Context, id string) (*core.WalletShare, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sh, ok := s.shares[id]
	if !ok {
		return nil, fmt.Errorf("share %s: %w", id, core.ErrNotFound)
	}
	return &sh, nil
}

func (s *Store) FindActiveShare(_ context.Context, walletID, granteeEmail string) (*core.WalletShare, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sh := range s.shares {
		if sh.WalletID == walletID && sh.GranteeEmail == granteeEmail && sh.Status != core.ShareRejected {
			out := sh
			return &out, nil
		}
	}
	return nil, fmt.Errorf("share for wallet %s grantee %s: %w", walletID, granteeEmail, core.ErrNotFound)
}

func (s *Store) ListSharesByWallet(_ context.Context, walletID string) ([]core.WalletShare, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.WalletShare
	for _, sh := range s.shares {
		if sh.WalletID == walletID {
			out = append(out, sh)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) ListSharesByGrantee(_ context.Context, granteeEmail string) ([]core.WalletShare, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.WalletShare
	for _, sh := range s.shares {
		if sh.GranteeEmail == granteeEmail {
			out = append(out, sh)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpdateShareStatus(_ context.Context, id string, status core.ShareStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.shares[id]
	if !ok {
		return fmt.Errorf("share %s: %w", id, core.ErrNotFound)
	}
	sh.Status = status
	s.shares[id] = sh
	return nil
}

func sortAlerts(alerts []core.Alert) {
	sort.Slice(alerts, func(i, j int) bool {
		if !alerts[i].CreatedAt.Equal(alerts[j].CreatedAt) {
			return alerts[i].CreatedAt.After(alerts[j].CreatedAt)
		}
		return alerts[i].ID < alerts[j].ID
	})
}
