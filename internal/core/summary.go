package core

import "sort"

// CategoryAmount represents an amount aggregated by category id.
type CategoryAmount struct {
	Category string
	Amount   Money
}

// MonthAmount represents an amount aggregated by calendar month.
type MonthAmount struct {
	Year   int
	Month  int // 1-12
	Amount Money
}

// BudgetSummary is the dashboard view of a user's month: configured
// pocket money, what was spent, and how the savings goal is tracking.
type BudgetSummary struct {
	Year          int
	Month         int
	PocketMoney   Money
	Spent         Money
	SavingsTarget Money
	Remaining     Money // pocket money - savings target - spent; may be negative
}

// SpendByCategory reduces the expense list into per-category totals,
// sorted by descending amount (ties broken by category id). Empty
// input yields an empty slice.
func SpendByCategory(expenses []Expense) []CategoryAmount {
	totals := make(map[string]int64)
	for _, e := range expenses {
		totals[e.Category] += e.Amount.Cents
	}
	out := make([]CategoryAmount, 0, len(totals))
	for cat, cents := range totals {
		out = append(out, CategoryAmount{Category: cat, Amount: Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// SpendByMonth reduces the expense list into per-month totals in
// chronological order. Empty input yields an empty slice.
func SpendByMonth(expenses []Expense) []MonthAmount {
	type ym struct{ year, month int }
	totals := make(map[ym]int64)
	for _, e := range expenses {
		totals[ym{e.Date.Year(), e.Date.Month()}] += e.Amount.Cents
	}
	out := make([]MonthAmount, 0, len(totals))
	for k, cents := range totals {
		out = append(out, MonthAmount{Year: k.year, Month: k.month, Amount: Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

// TotalSpent sums every expense amount.
func TotalSpent(expenses []Expense) Money {
	var cents int64
	for _, e := range expenses {
		cents += e.Amount.Cents
	}
	return Money{Cents: cents}
}

// Budget computes the month summary for a user against the given month
// expenses. The savings target is pocket money scaled by the goal
// percent; remaining may go negative and is reported as-is.
func Budget(u User, year, month int, monthExpenses []Expense) BudgetSummary {
	spent := TotalSpent(monthExpenses)
	target := Money{Cents: u.PocketMoney.Cents * int64(u.SavingsGoalPercent) / 100}
	return BudgetSummary{
		Year:          year,
		Month:         month,
		PocketMoney:   u.PocketMoney,
		Spent:         spent,
		SavingsTarget: target,
		Remaining:     Money{Cents: u.PocketMoney.Cents - target.Cents - spent.Cents},
	}
}

// SumMemberSpend recomputes each payer's total from a room's shared
// expense log. Used by the reconciliation repair pass to detect drift
// in the denormalized member totals.
func SumMemberSpend(sharedExpenses []Expense) map[string]int64 {
	totals := make(map[string]int64)
	for _, e := range sharedExpenses {
		totals[e.UserID] += e.Amount.Cents
	}
	return totals
}
