package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"stash/internal/core"
)

// CreateGoal validates and persists a new savings goal.
func (s *WalletService) CreateGoal(ctx context.Context, g *core.Goal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if err := s.store.InsertGoal(ctx, g); err != nil {
		return fmt.Errorf("insert goal: %w", err)
	}
	return nil
}

// CompleteGoal marks a goal as completed. The transition happens exactly
// once and is irreversible: completing an already-completed goal is a
// logged no-op. When spawnIncome is true, a matching income transaction
// equal to the target amount is recorded in the goal's wallet.
func (s *WalletService) CompleteGoal(ctx context.Context, goalID, userID string, spawnIncome bool) error {
	g, err := s.store.GetGoal(ctx, goalID)
	if errors.Is(err, core.ErrNotFound) {
		slog.WarnContext(ctx, "Complete of unknown goal", "goal_id", goalID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get goal: %w", err)
	}
	if g.Completed {
		slog.WarnContext(ctx, "Goal already completed", "goal_id", goalID)
		return nil
	}

	now := s.now()
	g.Completed = true
	g.CompletedAt = &now
	if err := s.store.UpdateGoal(ctx, g); err != nil {
		return fmt.Errorf("update goal: %w", err)
	}

	s.emit(ctx, core.AlertGoalAchieved, core.AlertData{"goal": g.Name}, g.WalletID, userID)

	if spawnIncome {
		t := &core.Transaction{
			WalletID: g.WalletID,
			UserID:   userID,
			Type:     core.Income,
			Category: "goal:" + g.Name,
			Amount:   g.TargetAmount,
			Date:     now,
		}
		if err := s.AddTransaction(ctx, t); err != nil {
			slog.ErrorContext(ctx, "Failed to spawn goal income transaction",
				"goal_id", goalID, "error", err)
			// The completion itself stands.
		}
	} else if _, err := s.RecomputeOverview(ctx, g.WalletID); err != nil {
		slog.WarnContext(ctx, "Overview recompute failed after goal completion",
			"wallet_id", g.WalletID, "error", err)
	}
	return nil
}

// CreateBudget validates and persists a budget definition. Duplicates for
// the same (wallet, category) are allowed; the monitor treats their limits
// as additive.
func (s *WalletService) CreateBudget(ctx context.Context, b *core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if err := s.store.InsertBudget(ctx, b); err != nil {
		return fmt.Errorf("insert budget: %w", err)
	}
	return nil
}
