package core

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func amt(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func validTransaction() Transaction {
	return Transaction{
		ID:       "t1",
		WalletID: "w1",
		UserID:   "u1",
		Type:     Expense,
		Category: "groceries",
		Amount:   amt("42.50"),
		Date:     time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestTransactionValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Transaction)
		want   error
	}{
		{"valid", func(*Transaction) {}, nil},
		{"missing wallet", func(tx *Transaction) { tx.WalletID = "" }, ErrEmptyWallet},
		{"bad type", func(tx *Transaction) { tx.Type = "transfer" }, ErrInvalidType},
		{"blank category", func(tx *Transaction) { tx.Category = "  " }, ErrEmptyCategory},
		{"zero amount", func(tx *Transaction) { tx.Amount = decimal.Zero }, ErrInvalidAmount},
		{"negative amount", func(tx *Transaction) { tx.Amount = amt("10").Neg() }, ErrInvalidAmount},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := validTransaction()
			tc.mutate(&tx)
			err := tx.Validate()
			if tc.want == nil && err != nil {
				t.Fatalf("expected ok, got %v", err)
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestGoalValidate(t *testing.T) {
	g := Goal{WalletID: "w1", Name: "vacation", TargetAmount: amt("600"), Priority: PriorityHigh}
	if err := g.Validate(); err != nil {
		t.Fatalf("expected valid goal, got %v", err)
	}

	g.TargetAmount = decimal.Zero
	if !errors.Is(g.Validate(), ErrInvalidAmount) {
		t.Fatal("zero target must be rejected")
	}

	g.TargetAmount = amt("600")
	g.Priority = 4
	if !errors.Is(g.Validate(), ErrInvalidPriority) {
		t.Fatal("priority outside 1..3 must be rejected")
	}
}

func TestBudgetValidate(t *testing.T) {
	b := Budget{WalletID: "w1", Category: "food", Limit: amt("500")}
	if err := b.Validate(); err != nil {
		t.Fatalf("expected valid budget, got %v", err)
	}

	b.Limit = amt("500").Neg()
	if !errors.Is(b.Validate(), ErrInvalidLimit) {
		t.Fatal("negative limit must be rejected")
	}
}

func TestWalletShareValidate(t *testing.T) {
	s := WalletShare{WalletID: "w1", OwnerUserID: "u1", GranteeEmail: "friend@example.com", Status: SharePending}
	if err := s.Validate(); err != nil {
		t.Fatalf("expected valid share, got %v", err)
	}

	s.Status = "expired"
	if !errors.Is(s.Validate(), ErrInvalidStatus) {
		t.Fatal("unknown status must be rejected")
	}
}
