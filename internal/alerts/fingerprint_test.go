package alerts

import (
	"testing"
	"time"

	"stash/internal/core"
)

func TestFingerprintStable(t *testing.T) {
	day := time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC)
	data := core.AlertData{"category": "food", "percentage": "90"}

	a := Fingerprint(core.AlertBudgetWarning, data, day)
	b := Fingerprint(core.AlertBudgetWarning, data, day)
	if a != b {
		t.Fatal("same inputs must fingerprint identically")
	}
}

func TestFingerprintIgnoresTimeOfDay(t *testing.T) {
	data := core.AlertData{"category": "food"}
	morning := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 9, 1, 22, 45, 0, 0, time.UTC)

	if Fingerprint(core.AlertSavingTip, data, morning) != Fingerprint(core.AlertSavingTip, data, evening) {
		t.Fatal("fingerprint must depend on the calendar day, not the timestamp")
	}
}

func TestFingerprintChangesAcrossDays(t *testing.T) {
	data := core.AlertData{"category": "food"}
	today := time.Date(2026, 9, 1, 23, 0, 0, 0, time.UTC)
	tomorrow := time.Date(2026, 9, 2, 1, 0, 0, 0, time.UTC)

	if Fingerprint(core.AlertSavingTip, data, today) == Fingerprint(core.AlertSavingTip, data, tomorrow) {
		t.Fatal("a new day must produce a new fingerprint")
	}
}

func TestFingerprintDistinguishesTypeAndData(t *testing.T) {
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	base := Fingerprint(core.AlertBudgetWarning, core.AlertData{"category": "food"}, day)

	if Fingerprint(core.AlertBudgetExceeded, core.AlertData{"category": "food"}, day) == base {
		t.Fatal("different types must not collide")
	}
	if Fingerprint(core.AlertBudgetWarning, core.AlertData{"category": "rent"}, day) == base {
		t.Fatal("different payloads must not collide")
	}
}
