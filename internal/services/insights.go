package services

import (
	"context"
	"fmt"
	"time"

	"pocketpal/internal/cache"
	"pocketpal/internal/core"
	"pocketpal/internal/log"
	"pocketpal/internal/storage"
)

// InsightsService computes read-only aggregations over a user's
// personal ledger. Results are memoized in a TTL cache; writers call
// InvalidateUser so fresh expenses show up immediately.
type InsightsService struct {
	store  storage.Store
	logger *log.Logger

	budgets    *cache.LRU[core.BudgetSummary]
	categories *cache.LRU[[]core.CategoryAmount]
	months     *cache.LRU[[]core.MonthAmount]
}

func NewInsightsService(store storage.Store, logger *log.Logger, size int, ttl time.Duration) *InsightsService {
	return &InsightsService{
		store:      store,
		logger:     logger.WithComponent(log.ComponentCache),
		budgets:    cache.New[core.BudgetSummary](size, ttl),
		categories: cache.New[[]core.CategoryAmount](size, ttl),
		months:     cache.New[[]core.MonthAmount](size, ttl),
	}
}

// RegisterCaches adds the internal caches to the manager's sweep list.
func (s *InsightsService) RegisterCaches(m *cache.Manager) {
	m.Register(s.budgets)
	m.Register(s.categories)
	m.Register(s.months)
}

// InvalidateUser drops every cached aggregation for the user. Called
// after any write to their ledger or settings. Budget entries are
// keyed per month but expenses carry caller-supplied dates, so all of
// the user's months go.
func (s *InsightsService) InvalidateUser(userID string) {
	s.budgets.DeletePrefix(userID + ":")
	s.categories.Delete(userID)
	s.months.Delete(userID)
}

// Budget returns the month summary: pocket money, spend, savings
// target and what remains.
func (s *InsightsService) Budget(ctx context.Context, userID string, year, month int) (core.BudgetSummary, error) {
	key := budgetKey(userID, year, month)
	if cached, ok := s.budgets.Get(key); ok {
		return cached, nil
	}

	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return core.BudgetSummary{}, err
	}
	expenses, err := s.store.ListExpensesByMonth(ctx, userID, year, month)
	if err != nil {
		return core.BudgetSummary{}, fmt.Errorf("list month expenses: %w", err)
	}

	summary := core.Budget(*u, year, month, expenses)
	s.budgets.Set(key, summary)
	return summary, nil
}

// SpendByCategory returns per-category totals over the whole personal
// ledger, largest first.
func (s *InsightsService) SpendByCategory(ctx context.Context, userID string) ([]core.CategoryAmount, error) {
	if cached, ok := s.categories.Get(userID); ok {
		return cached, nil
	}

	expenses, err := s.store.ListExpenses(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := core.SpendByCategory(expenses)
	s.categories.Set(userID, out)
	return out, nil
}

// SpendByMonth returns per-month totals over the whole personal
// ledger in chronological order.
func (s *InsightsService) SpendByMonth(ctx context.Context, userID string) ([]core.MonthAmount, error) {
	if cached, ok := s.months.Get(userID); ok {
		return cached, nil
	}

	expenses, err := s.store.ListExpenses(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := core.SpendByMonth(expenses)
	s.months.Set(userID, out)
	return out, nil
}

func budgetKey(userID string, year, month int) string {
	return fmt.Sprintf("%s:%04d-%02d", userID, year, month)
}
