package alerts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"stash/internal/core"
	"stash/internal/store"
)

// Publisher delivers a persisted alert to interested consumers (the worker's
// delivery queue). A nil Publisher disables delivery without affecting
// persistence.
type Publisher interface {
	PublishAlertCreated(ctx context.Context, a *core.Alert) error
}

// Dispatcher runs the full notification pipeline:
// rule engine → dedup gate → persist → publish.
type Dispatcher struct {
	alerts    store.AlertStore
	gate      *Gate
	publisher Publisher
	now       func() time.Time
	newID     func() string
}

func NewDispatcher(alerts store.AlertStore, publisher Publisher) *Dispatcher {
	return &Dispatcher{
		alerts:    alerts,
		gate:      NewGate(alerts),
		publisher: publisher,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Create synthesizes, deduplicates and persists an alert for the event.
// A suppressed duplicate returns (nil, nil): an expected silent outcome,
// distinct from a persistence failure.
func (d *Dispatcher) Create(ctx context.Context, eventType core.AlertType, data core.AlertData, walletID, userID string) (*core.Alert, error) {
	now := d.now()
	fingerprint := Fingerprint(eventType, data, now)

	emit, err := d.gate.ShouldEmit(ctx, userID, fingerprint)
	if err != nil {
		return nil, fmt.Errorf("dedup check: %w", err)
	}
	if !emit {
		return nil, nil
	}

	content := Render(eventType, data)
	alert := &core.Alert{
		ID:          d.newID(),
		WalletID:    walletID,
		UserID:      userID,
		Type:        eventType,
		Title:       content.Title,
		Message:     content.Message,
		Icon:        content.Icon,
		Data:        data.Clone(),
		Fingerprint: fingerprint,
		CreatedAt:   now,
	}

	if err := d.alerts.InsertAlert(ctx, alert); err != nil {
		return nil, fmt.Errorf("persist alert: %w", err)
	}
	d.gate.Record(userID, fingerprint)

	slog.InfoContext(ctx, "Alert created",
		"alert_id", alert.ID,
		"type", eventType,
		"wallet_id", walletID)

	// Delivery is best-effort: the alert is already persisted.
	if d.publisher != nil {
		if err := d.publisher.PublishAlertCreated(ctx, alert); err != nil {
			slog.ErrorContext(ctx, "Failed to publish alert", "alert_id", alert.ID, "error", err)
		}
	}

	return alert, nil
}

// List returns the wallet's alerts, newest first.
func (d *Dispatcher) List(ctx context.Context, walletID string) ([]core.Alert, error) {
	return d.alerts.ListAlertsByWallet(ctx, walletID)
}

// MarkRead flips an alert's read flag. Re-marking is a no-op; an unknown id
// is logged and swallowed.
func (d *Dispatcher) MarkRead(ctx context.Context, alertID string) error {
	err := d.alerts.MarkAlertRead(ctx, alertID)
	if errors.Is(err, core.ErrNotFound) {
		slog.WarnContext(ctx, "MarkRead on unknown alert", "alert_id", alertID)
		return nil
	}
	return err
}

// MarkAllRead marks every unread alert in the wallet as read.
func (d *Dispatcher) MarkAllRead(ctx context.Context, walletID string) error {
	return d.alerts.MarkAllAlertsRead(ctx, walletID)
}
