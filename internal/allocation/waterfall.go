// Package allocation assigns a 0–100% completion value to each active goal
// in a wallet using a priority-ordered greedy waterfall over the wallet's
// balance.
//
// The result is a pure recomputation from the live balance and the live goal
// list: nothing about a previous allocation is persisted or consulted, so a
// stale input can only produce a stale render, never corrupted state.
package allocation

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"stash/internal/core"
)

// Milestones are the progress crossings that trigger a goal_milestone alert.
var Milestones = []float64{25, 50, 75}

var hundred = decimal.NewFromInt(100)

// Progress distributes balance across the non-completed goals and returns a
// map of goalID to completion percentage in [0, 100].
//
// Goals are funded in (priority ascending, targetAmount ascending) order:
// urgent, cheaper goals first, maximizing the count of goals that reach 100%.
// A partially-funded goal consumes all remaining balance; no later goal
// receives funds while an earlier one is below 100%. A negative balance
// yields 0% for every goal.
//
// Any active goal with a non-positive target is rejected with
// core.ErrInvalidAmount before anything is computed.
func Progress(balance decimal.Decimal, goals []core.Goal) (map[string]float64, error) {
	active := make([]core.Goal, 0, len(goals))
	for _, g := range goals {
		if g.Completed {
			continue
		}
		if g.TargetAmount.Sign() <= 0 {
			return nil, fmt.Errorf("goal %s: %w", g.ID, core.ErrInvalidAmount)
		}
		active = append(active, g)
	}

	sort.SliceStable(active, func(i, j int) bool {
		if active[i].Priority != active[j].Priority {
			return active[i].Priority < active[j].Priority
		}
		if c := active[i].TargetAmount.Cmp(active[j].TargetAmount); c != 0 {
			return c < 0
		}
		// Final tiebreak on ID keeps the ordering total and the output
		// bit-identical across runs.
		return active[i].ID < active[j].ID
	})

	progress := make(map[string]float64, len(active))
	remaining := balance
	for _, g := range active {
		if remaining.Sign() <= 0 {
			progress[g.ID] = 0
			continue
		}
		allocated := decimal.Min(remaining, g.TargetAmount)
		progress[g.ID] = allocated.Div(g.TargetAmount).Mul(hundred).InexactFloat64()
		if allocated.GreaterThanOrEqual(g.TargetAmount) {
			remaining = remaining.Sub(g.TargetAmount)
		} else {
			remaining = decimal.Zero
		}
	}
	return progress, nil
}

// CrossedMilestones reports which of the 25/50/75 marks a goal passed when
// its progress moved from prev to curr. Detection is by sampling two
// computed values, not by stored state.
func CrossedMilestones(prev, curr float64) []float64 {
	var crossed []float64
	for _, m := range Milestones {
		if prev < m && curr >= m {
			crossed = append(crossed, m)
		}
	}
	return crossed
}

// Achieved reports whether a goal reached 100% with this change.
func Achieved(prev, curr float64) bool {
	return prev < 100 && curr >= 100
}
