package services

import (
	"context"
	"testing"
	"time"

	"pocketpal/internal/core"
)

func seedInsights(t *testing.T) (*fakeStore, *InsightsService, *LedgerService) {
	t.Helper()
	store := newFakeStore()
	store.users["u1"] = &core.User{
		ID: "u1", Name: "Ada", Contact: "ada@example.com",
		PocketMoney: core.Money{Cents: 50000}, SavingsGoalPercent: 20,
	}
	insights := NewInsightsService(store, testLogger(), 16, time.Minute)
	ledger := NewLedgerService(store, nil, testLogger())
	return store, insights, ledger
}

func TestBudget(t *testing.T) {
	_, insights, ledger := seedInsights(t)
	ctx := context.Background()

	ledger.AddPersonalExpense(ctx, draft(t, "u1", 12000, "rent share"))
	ledger.AddPersonalExpense(ctx, draft(t, "u1", 3000, "food"))

	got, err := insights.Budget(ctx, "u1", 2026, 3)
	if err != nil {
		t.Fatalf("Budget: %v", err)
	}
	if got.Spent.Cents != 15000 {
		t.Errorf("Spent = %d, want 15000", got.Spent.Cents)
	}
	if got.SavingsTarget.Cents != 10000 {
		t.Errorf("SavingsTarget = %d, want 10000", got.SavingsTarget.Cents)
	}
	if got.Remaining.Cents != 25000 {
		t.Errorf("Remaining = %d, want 25000", got.Remaining.Cents)
	}
}

func TestSpendByCategoryCachesUntilInvalidated(t *testing.T) {
	store, insights, ledger := seedInsights(t)
	ctx := context.Background()

	ledger.AddPersonalExpense(ctx, draft(t, "u1", 1000, "coffee"))
	first, err := insights.SpendByCategory(ctx, "u1")
	if err != nil {
		t.Fatalf("SpendByCategory: %v", err)
	}
	if len(first) != 1 || first[0].Amount.Cents != 1000 {
		t.Fatalf("first = %+v", first)
	}

	// A write bypassing invalidation is not visible yet.
	e := draft(t, "u1", 9000, "surprise")
	e.ID = "e-direct"
	store.InsertExpense(ctx, &e)

	cached, _ := insights.SpendByCategory(ctx, "u1")
	if cached[0].Amount.Cents != 1000 {
		t.Fatalf("cache was bypassed: %+v", cached)
	}

	insights.InvalidateUser("u1")
	fresh, _ := insights.SpendByCategory(ctx, "u1")
	if fresh[0].Amount.Cents != 10000 {
		t.Errorf("after invalidation = %+v, want 10000 cents", fresh)
	}
}

func TestInvalidateUserDropsPastMonthBudgets(t *testing.T) {
	_, insights, ledger := seedInsights(t)
	ctx := context.Background()

	// Prime a month with no spend yet.
	before, err := insights.Budget(ctx, "u1", 2026, 1)
	if err != nil {
		t.Fatalf("Budget: %v", err)
	}
	if before.Spent.Cents != 0 {
		t.Fatalf("Spent = %d before any expense", before.Spent.Cents)
	}

	// A back-dated expense lands in the already-cached month.
	e := draft(t, "u1", 1250, "forgot the groceries")
	e.Date = mustDate(t, "2026-01-10")
	if _, err := ledger.AddPersonalExpense(ctx, e); err != nil {
		t.Fatalf("AddPersonalExpense: %v", err)
	}
	insights.InvalidateUser("u1")

	after, err := insights.Budget(ctx, "u1", 2026, 1)
	if err != nil {
		t.Fatalf("Budget: %v", err)
	}
	if after.Spent.Cents != 1250 {
		t.Errorf("Spent = %d after invalidation, want 1250", after.Spent.Cents)
	}
}

func TestSpendByCategoryAndMonth(t *testing.T) {
	_, insights, ledger := seedInsights(t)
	ctx := context.Background()

	e1 := draft(t, "u1", 4000, "rent")
	e1.Category = "essential"
	ledger.AddPersonalExpense(ctx, e1)
	ledger.AddPersonalExpense(ctx, draft(t, "u1", 1500, "pizza"))

	feb := draft(t, "u1", 2000, "train")
	feb.Date = mustDate(t, "2026-02-01")
	ledger.AddPersonalExpense(ctx, feb)

	byCat, err := insights.SpendByCategory(ctx, "u1")
	if err != nil {
		t.Fatalf("SpendByCategory: %v", err)
	}
	if len(byCat) != 2 || byCat[0].Category != "essential" || byCat[0].Amount.Cents != 4000 {
		t.Errorf("byCat = %+v", byCat)
	}

	byMonth, err := insights.SpendByMonth(ctx, "u1")
	if err != nil {
		t.Fatalf("SpendByMonth: %v", err)
	}
	if len(byMonth) != 2 || byMonth[0].Month != 2 || byMonth[1].Amount.Cents != 5500 {
		t.Errorf("byMonth = %+v", byMonth)
	}
}

func TestBudgetUnknownUser(t *testing.T) {
	_, insights, _ := seedInsights(t)
	if _, err := insights.Budget(context.Background(), "ghost", 2026, 3); err == nil {
		t.Fatal("expected error for unknown user")
	}
}
