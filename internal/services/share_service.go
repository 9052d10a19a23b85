package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"stash/internal/alerts"
	"stash/internal/core"
	"stash/internal/store"
)

// ErrShareExists is returned when a non-rejected share already covers the
// (wallet, grantee) pair.
var ErrShareExists = errors.New("share already exists")

// ShareService manages the wallet share lifecycle:
// pending → accepted | rejected, with rejected terminal.
type ShareService struct {
	store      store.Store
	dispatcher *alerts.Dispatcher
}

func NewShareService(st store.Store, dispatcher *alerts.Dispatcher) *ShareService {
	return &ShareService{store: st, dispatcher: dispatcher}
}

// CreateShare invites a grantee to a wallet. The invariant of at most one
// share per (walletID, granteeEmail) with status != rejected is enforced
// here: an existing pending or accepted share makes this a conflict.
func (s *ShareService) CreateShare(ctx context.Context, walletID, ownerUserID, granteeEmail string) (*core.WalletShare, error) {
	w, err := s.store.GetWallet(ctx, walletID)
	if errors.Is(err, core.ErrNotFound) {
		slog.WarnContext(ctx, "Share on unknown wallet", "wallet_id", walletID)
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("get wallet: %w", err)
	}

	if _, err := s.store.FindActiveShare(ctx, walletID, granteeEmail); err == nil {
		return nil, fmt.Errorf("wallet %s grantee %s: %w", walletID, granteeEmail, ErrShareExists)
	} else if !errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("find active share: %w", err)
	}

	share := &core.WalletShare{
		WalletID:     walletID,
		OwnerUserID:  ownerUserID,
		GranteeEmail: granteeEmail,
		Status:       core.SharePending,
		CreatedAt:    time.Now(),
	}
	if err := share.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.InsertShare(ctx, share); err != nil {
		return nil, fmt.Errorf("insert share: %w", err)
	}

	s.emit(ctx, core.AlertData{
		"owner":   ownerUserID,
		"grantee": granteeEmail,
		"wallet":  w.Name,
	}, walletID, ownerUserID)

	return share, nil
}

// AcceptShare moves a pending share to accepted, making the wallet appear
// in the grantee's shared-wallet list.
func (s *ShareService) AcceptShare(ctx context.Context, shareID string) error {
	return s.respond(ctx, shareID, core.ShareAccepted)
}

// RejectShare moves a pending share to rejected. A rejected share is
// terminal: it never reappears as pending.
func (s *ShareService) RejectShare(ctx context.Context, shareID string) error {
	return s.respond(ctx, shareID, core.ShareRejected)
}

func (s *ShareService) respond(ctx context.Context, shareID string, status core.ShareStatus) error {
	share, err := s.store.GetShare(ctx, shareID)
	if errors.Is(err, core.ErrNotFound) {
		slog.WarnContext(ctx, "Response to unknown share", "share_id", shareID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get share: %w", err)
	}
	if share.Status != core.SharePending {
		slog.WarnContext(ctx, "Share is not pending", "share_id", shareID, "status", share.Status)
		return nil
	}

	if err := s.store.UpdateShareStatus(ctx, shareID, status); err != nil {
		return fmt.Errorf("update share status: %w", err)
	}

	walletName := share.WalletID
	if w, err := s.store.GetWallet(ctx, share.WalletID); err == nil {
		walletName = w.Name
	}
	s.emit(ctx, core.AlertData{
		"status":  string(status),
		"grantee": share.GranteeEmail,
		"wallet":  walletName,
	}, share.WalletID, share.OwnerUserID)

	return nil
}

// SharedWallets returns every wallet the grantee can access through an
// accepted share.
func (s *ShareService) SharedWallets(ctx context.Context, granteeEmail string) ([]core.Wallet, error) {
	shares, err := s.store.ListSharesByGrantee(ctx, granteeEmail)
	if err != nil {
		return nil, fmt.Errorf("list shares: %w", err)
	}
	var wallets []core.Wallet
	for _, sh := range shares {
		if sh.Status != core.ShareAccepted {
			continue
		}
		w, err := s.store.GetWallet(ctx, sh.WalletID)
		if errors.Is(err, core.ErrNotFound) {
			slog.WarnContext(ctx, "Accepted share points at unknown wallet",
				"share_id", sh.ID, "wallet_id", sh.WalletID)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get wallet: %w", err)
		}
		wallets = append(wallets, *w)
	}
	return wallets, nil
}

func (s *ShareService) emit(ctx context.Context, data core.AlertData, walletID, userID string) {
	if s.dispatcher == nil {
		return
	}
	if _, err := s.dispatcher.Create(ctx, core.AlertShareInvite, data, walletID, userID); err != nil {
		slog.ErrorContext(ctx, "Share alert emission failed", "wallet_id", walletID, "error", err)
	}
}
