package alerts

import (
	"strings"
	"testing"

	"stash/internal/core"
)

func TestRenderKnownTypes(t *testing.T) {
	cases := []struct {
		eventType core.AlertType
		data      core.AlertData
		inMessage string
	}{
		{core.AlertShareInvite, core.AlertData{"owner": "ann", "grantee": "bob", "wallet": "Family"}, "invited bob"},
		{core.AlertShareInvite, core.AlertData{"status": "accepted", "grantee": "bob", "wallet": "Family"}, "accepted access"},
		{core.AlertShareInvite, core.AlertData{"status": "rejected", "grantee": "bob", "wallet": "Family"}, "declined access"},
		{core.AlertSavingTip, core.AlertData{"category": "food", "share": "62"}, "food"},
		{core.AlertBudgetWarning, core.AlertData{"category": "food", "percentage": "90"}, "90% of your food budget"},
		{core.AlertBudgetExceeded, core.AlertData{"category": "food", "percentage": "105"}, "over its limit"},
		{core.AlertGoalMilestone, core.AlertData{"goal": "bike", "milestone": "50"}, "50% funded"},
		{core.AlertGoalAchieved, core.AlertData{"goal": "bike"}, "fully funded"},
		{core.AlertSpendingPattern, core.AlertData{"count": "3", "category": "food", "total": "2100"}, "3 recent transactions"},
		{core.AlertSavingStreak, core.AlertData{"days": "7"}, "7 days in a row"},
		{core.AlertTransactionLarge, core.AlertData{"amount": "1500", "category": "tech"}, "1500"},
		{core.AlertMonthlySummary, core.AlertData{"month": "September 2026", "income": "3000", "expense": "1800"}, "September 2026"},
	}
	for _, tc := range cases {
		got := Render(tc.eventType, tc.data)
		if got.Title == "" || got.Icon == "" {
			t.Fatalf("%s: empty title or icon", tc.eventType)
		}
		if !strings.Contains(got.Message, tc.inMessage) {
			t.Fatalf("%s: message %q does not contain %q", tc.eventType, got.Message, tc.inMessage)
		}
	}
}

func TestRenderDeterministic(t *testing.T) {
	data := core.AlertData{"category": "food", "percentage": "90"}
	a := Render(core.AlertBudgetWarning, data)
	b := Render(core.AlertBudgetWarning, data)
	if a != b {
		t.Fatalf("rendering is not deterministic: %+v vs %+v", a, b)
	}
}

func TestRenderUnknownTypeFallsBack(t *testing.T) {
	got := Render("price_drop", nil)
	if got.Title != "Notification" {
		t.Fatalf("unknown type must use the generic fallback, got %+v", got)
	}
}
