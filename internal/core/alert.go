package core

import "time"

// AlertType is the closed set of events the rule engine knows how to render.
const (
	AlertShareInvite      AlertType = "share_invite"
	AlertSavingTip        AlertType = "saving_tip"
	AlertBudgetWarning    AlertType = "budget_warning"
	AlertBudgetExceeded   AlertType = "budget_exceeded"
	AlertGoalMilestone    AlertType = "goal_milestone"
	AlertGoalAchieved     AlertType = "goal_achieved"
	AlertSpendingPattern  AlertType = "spending_pattern"
	AlertSavingStreak     AlertType = "saving_streak"
	AlertTransactionLarge AlertType = "transaction_large"
	AlertMonthlySummary   AlertType = "monthly_summary"
)

type (
	AlertType string

	// AlertData is the structured payload attached to an alert. Values are
	// pre-formatted strings so the payload serializes deterministically for
	// fingerprinting.
	AlertData map[string]string

	// Alert is created only by the rule engine pipeline and mutated only to
	// flip Read. It is never deleted in normal operation.
	Alert struct {
		ID          string
		WalletID    string
		UserID      string
		Type        AlertType
		Title       string
		Message     string
		Icon        string
		Data        AlertData
		Fingerprint string
		Read        bool
		CreatedAt   time.Time
	}
)

// Clone returns a copy with its own Data map.
func (d AlertData) Clone() AlertData {
	if d == nil {
		return nil
	}
	out := make(AlertData, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}
