package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"stash/internal/core"
)

func amt(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func tx(typ core.TransactionType, category, amount string, date time.Time) core.Transaction {
	return core.Transaction{
		WalletID: "w1",
		Type:     typ,
		Category: category,
		Amount:   amt(amount),
		Date:     date,
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if !s.Balance.IsZero() {
		t.Fatalf("empty set must yield zero balance, got %s", s.Balance)
	}
	if len(s.CategorySpend) != 0 {
		t.Fatalf("empty set must yield no category spend, got %v", s.CategorySpend)
	}
}

func TestSummarizeBalanceAndCategories(t *testing.T) {
	day := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	txns := []core.Transaction{
		tx(core.Income, "salary", "2000", day),
		tx(core.Expense, "food", "150.50", day),
		tx(core.Expense, "food", "49.50", day),
		tx(core.Expense, "rent", "800", day),
	}

	s := Summarize(txns)
	if !s.Balance.Equal(amt("1000")) {
		t.Fatalf("balance = %s, want 1000", s.Balance)
	}
	if !s.CategorySpend["food"].Equal(amt("200")) {
		t.Fatalf("food spend = %s, want 200", s.CategorySpend["food"])
	}
	if !s.CategorySpend["rent"].Equal(amt("800")) {
		t.Fatalf("rent spend = %s, want 800", s.CategorySpend["rent"])
	}
	if _, ok := s.CategorySpend["salary"]; ok {
		t.Fatal("income categories must not appear in expense sums")
	}
}

func TestSummarizeOrderIndependent(t *testing.T) {
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	a := []core.Transaction{
		tx(core.Income, "salary", "100", day),
		tx(core.Expense, "food", "30", day),
		tx(core.Expense, "food", "20", day),
	}
	b := []core.Transaction{a[2], a[0], a[1]}

	sa, sb := Summarize(a), Summarize(b)
	if !sa.Balance.Equal(sb.Balance) {
		t.Fatalf("balance depends on order: %s vs %s", sa.Balance, sb.Balance)
	}
	if !sa.CategorySpend["food"].Equal(sb.CategorySpend["food"]) {
		t.Fatal("category spend depends on order")
	}
}

func TestFilterMonth(t *testing.T) {
	txns := []core.Transaction{
		tx(core.Expense, "food", "10", time.Date(2026, 8, 31, 23, 59, 59, 0, time.UTC)),
		tx(core.Expense, "food", "20", time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)),
		tx(core.Expense, "food", "30", time.Date(2026, 9, 30, 23, 0, 0, 0, time.UTC)),
		tx(core.Expense, "food", "40", time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)),
	}

	got := FilterMonth(txns, 2026, time.September)
	if len(got) != 2 {
		t.Fatalf("expected 2 transactions in September, got %d", len(got))
	}
	if !Summarize(got).CategorySpend["food"].Equal(amt("50")) {
		t.Fatal("month filter kept the wrong transactions")
	}
}

func TestFilterWallet(t *testing.T) {
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	txns := []core.Transaction{
		{WalletID: "w1", Type: core.Income, Category: "salary", Amount: amt("10"), Date: day},
		{WalletID: "w2", Type: core.Income, Category: "salary", Amount: amt("20"), Date: day},
	}
	got := FilterWallet(txns, "w2")
	if len(got) != 1 || got[0].WalletID != "w2" {
		t.Fatalf("wallet filter failed: %+v", got)
	}
}
