package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/campus-ledger/campus/internal/jobs"
	"github.com/campus-ledger/campus/internal/ledger/reports"
)

// WarmupJob precomputes the day's reports so first readers hit the
// cache.
type WarmupJob struct {
	reports *reports.Service
	logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewWarmupJob constructs the report warmup job.
func NewWarmupJob(service *reports.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *WarmupJob {
	return &WarmupJob{reports: service, logger: logger, Metrics: metrics}
}

// Handle processes TaskReportsWarmup tasks.
func (j *WarmupJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	defer func(tr *jobmetrics.Tracker) { err = tr.End(err) }(j.metrics().Track("reports_warmup"))

	var payload WarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	wanted := map[string]bool{}
	for _, name := range payload.Reports {
		wanted[name] = true
	}
	all := len(wanted) == 0

	today := j.reports.Today()
	monthStart := today.AddDate(0, 0, 1-today.Day())

	if all || wanted["trial-balance"] {
		if _, err := j.reports.TrialBalance(ctx, today); err != nil {
			j.logger.Warn("trial balance warmup failed", slog.Any("error", err))
		}
	}
	if all || wanted["balance-sheet"] {
		if _, err := j.reports.BalanceSheet(ctx, today); err != nil {
			j.logger.Warn("balance sheet warmup failed", slog.Any("error", err))
		}
	}
	if all || wanted["income-statement"] {
		if _, err := j.reports.IncomeStatement(ctx, monthStart, today); err != nil {
			j.logger.Warn("income statement warmup failed", slog.Any("error", err))
		}
	}
	if all || wanted["cash-flow"] {
		if _, err := j.reports.CashFlowStatement(ctx, monthStart, today); err != nil {
			j.logger.Warn("cash flow warmup failed", slog.Any("error", err))
		}
	}
	return nil
}

func (j *WarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
