package reports

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/campus-ledger/campus/internal/platform/cache"
)

// Service builds financial statements, caching results behind the
// versioned report cache and collapsing concurrent identical builds.
type Service struct {
	repo  Repository
	cache *cache.Cache
	group singleflight.Group
	now   func() time.Time
}

// NewService constructs the reporting service.
func NewService(repo Repository, c *cache.Cache) *Service {
	return &Service{repo: repo, cache: c, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Today returns the current date truncated to a day.
func (s *Service) Today() time.Time {
	year, month, day := s.now().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func (s *Service) fetch(ctx context.Context, dest any, keyParts []string, loader func(context.Context) (any, error)) error {
	key, err := s.cache.BuildKey(ctx, keyParts...)
	if err != nil {
		return err
	}
	return s.cache.FetchJSON(ctx, key, dest, func(ctx context.Context) (any, error) {
		value, err, _ := s.group.Do(key, func() (any, error) {
			return loader(ctx)
		})
		return value, err
	})
}

// TrialBalance builds the trial balance as of a date.
func (s *Service) TrialBalance(ctx context.Context, asOf time.Time) (TrialBalance, error) {
	label := asOf.Format("2006-01-02")
	var report TrialBalance
	err := s.fetch(ctx, &report, []string{"reports", "tb", label}, func(ctx context.Context) (any, error) {
		balances, err := s.repo.BalancesAsOf(ctx, asOf)
		if err != nil {
			return nil, err
		}
		return BuildTrialBalance(label, balances), nil
	})
	return report, err
}

// BalanceSheet builds the balance sheet as of a date.
func (s *Service) BalanceSheet(ctx context.Context, asOf time.Time) (BalanceSheet, error) {
	label := asOf.Format("2006-01-02")
	var report BalanceSheet
	err := s.fetch(ctx, &report, []string{"reports", "bs", label}, func(ctx context.Context) (any, error) {
		balances, err := s.repo.BalancesAsOf(ctx, asOf)
		if err != nil {
			return nil, err
		}
		return BuildBalanceSheet(label, balances), nil
	})
	return report, err
}

// IncomeStatement builds the income statement over a range.
func (s *Service) IncomeStatement(ctx context.Context, start, end time.Time) (IncomeStatement, error) {
	startLabel := start.Format("2006-01-02")
	endLabel := end.Format("2006-01-02")
	var report IncomeStatement
	err := s.fetch(ctx, &report, []string{"reports", "is", startLabel, endLabel}, func(ctx context.Context) (any, error) {
		balances, err := s.repo.BalancesInRange(ctx, start, end)
		if err != nil {
			return nil, err
		}
		return BuildIncomeStatement(startLabel, endLabel, balances), nil
	})
	return report, err
}

// CashFlowStatement builds the cash flow statement over a range.
func (s *Service) CashFlowStatement(ctx context.Context, start, end time.Time) (CashFlowStatement, error) {
	startLabel := start.Format("2006-01-02")
	endLabel := end.Format("2006-01-02")
	var report CashFlowStatement
	err := s.fetch(ctx, &report, []string{"reports", "cf", startLabel, endLabel}, func(ctx context.Context) (any, error) {
		opening, err := s.repo.CashOpeningBalance(ctx, start)
		if err != nil {
			return nil, err
		}
		transactions, err := s.repo.CashTransactions(ctx, start, end)
		if err != nil {
			return nil, err
		}
		return BuildCashFlowStatement(startLabel, endLabel, opening, transactions), nil
	})
	return report, err
}
