// Package alerts turns domain events into notifications: a pure rule engine
// renders the message, a deduplication gate suppresses repeats within a
// rolling 24-hour window, and the dispatcher persists and publishes what
// survives.
package alerts

import "stash/internal/core"

// Content is the rendered presentation of an alert.
type Content struct {
	Title   string
	Message string
	Icon    string
}

// Render maps an event to its notification content. It is a deterministic
// template substitution over the event data with no branching beyond the
// type switch. Unknown types fall back to a generic message rather than
// failing.
func Render(t core.AlertType, data core.AlertData) Content {
	switch t {
	case core.AlertShareInvite:
		switch data["status"] {
		case string(core.ShareAccepted):
			return Content{
				Title:   "Share accepted",
				Message: data["grantee"] + " accepted access to " + data["wallet"] + ".",
				Icon:    "🤝",
			}
		case string(core.ShareRejected):
			return Content{
				Title:   "Share declined",
				Message: data["grantee"] + " declined access to " + data["wallet"] + ".",
				Icon:    "🚫",
			}
		default:
			return Content{
				Title:   "Wallet shared",
				Message: data["owner"] + " invited " + data["grantee"] + " to " + data["wallet"] + ".",
				Icon:    "📨",
			}
		}
	case core.AlertSavingTip:
		return Content{
			Title:   "Saving tip",
			Message: "Most of this month's spending went to " + data["category"] + " (" + data["share"] + "%). A small cut there adds up.",
			Icon:    "💡",
		}
	case core.AlertBudgetWarning:
		return Content{
			Title:   "Budget warning",
			Message: "You've used " + data["percentage"] + "% of your " + data["category"] + " budget.",
			Icon:    "⚠️",
		}
	case core.AlertBudgetExceeded:
		return Content{
			Title:   "Budget exceeded",
			Message: "Your " + data["category"] + " budget is over its limit (" + data["percentage"] + "%).",
			Icon:    "🚨",
		}
	case core.AlertGoalMilestone:
		return Content{
			Title:   "Goal milestone",
			Message: "\"" + data["goal"] + "\" is " + data["milestone"] + "% funded.",
			Icon:    "🏁",
		}
	case core.AlertGoalAchieved:
		return Content{
			Title:   "Goal achieved",
			Message: "\"" + data["goal"] + "\" is fully funded. Congratulations!",
			Icon:    "🎉",
		}
	case core.AlertSpendingPattern:
		return Content{
			Title:   "Spending pattern",
			Message: data["count"] + " recent transactions in " + data["category"] + " total " + data["total"] + ".",
			Icon:    "📈",
		}
	case core.AlertSavingStreak:
		return Content{
			Title:   "Saving streak",
			Message: data["days"] + " days in a row without spending. Keep it up!",
			Icon:    "🔥",
		}
	case core.AlertTransactionLarge:
		return Content{
			Title:   "Large transaction",
			Message: "A transaction of " + data["amount"] + " was recorded in " + data["category"] + ".",
			Icon:    "💸",
		}
	case core.AlertMonthlySummary:
		return Content{
			Title:   "Monthly summary",
			Message: data["month"] + ": " + data["income"] + " in, " + data["expense"] + " out.",
			Icon:    "📊",
		}
	default:
		return Content{
			Title:   "Notification",
			Message: "You have a new notification.",
			Icon:    "🔔",
		}
	}
}
