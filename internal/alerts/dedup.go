package alerts

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"stash/internal/cache"
	"stash/internal/store"
)

// Window is the rolling period within which an identical fingerprint is
// suppressed.
const Window = 24 * time.Hour

// Gate decides whether a candidate alert may be emitted.
//
// This is a check-then-act sequence against a store with no atomic
// insert-if-absent: two near-simultaneous triggers can both pass the check
// before either write commits. That race is accepted; the guarantee is
// best-effort, not strict at-most-once. An in-process LRU narrows the
// window for triggers from the same process.
type Gate struct {
	alerts store.AlertStore
	seen   *cache.LRU[struct{}]
	now    func() time.Time
}

func NewGate(alerts store.AlertStore) *Gate {
	return &Gate{
		alerts: alerts,
		seen:   cache.NewLRU[struct{}](4096, Window),
		now:    time.Now,
	}
}

// ShouldEmit reports whether an alert with this fingerprint may be created
// for the user. A false result with a nil error is a silent suppression; an
// error means the store lookup failed and nothing was decided.
func (g *Gate) ShouldEmit(ctx context.Context, userID, fingerprint string) (bool, error) {
	key := userID + ":" + fingerprint
	if _, hit := g.seen.Get(key); hit {
		slog.DebugContext(ctx, "Duplicate alert suppressed by cache", "user_id", userID)
		return false, nil
	}

	since := g.now().Add(-Window)
	recent, err := g.alerts.ListRecentAlertsByUser(ctx, userID, since)
	if err != nil {
		return false, fmt.Errorf("list recent alerts: %w", err)
	}
	for _, a := range recent {
		if a.Fingerprint == fingerprint {
			g.seen.Set(key, struct{}{})
			slog.DebugContext(ctx, "Duplicate alert suppressed by store lookup", "user_id", userID)
			return false, nil
		}
	}
	return true, nil
}

// Record remembers an emitted fingerprint so subsequent in-process checks
// skip the store round-trip.
func (g *Gate) Record(userID, fingerprint string) {
	g.seen.Set(userID+":"+fingerprint, struct{}{})
}
