package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/campus-ledger/campus/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// IntegrityJob scans journal entries for debit/credit imbalances.
// Entries are written balanced, so a hit means external tampering or a
// storage fault and is worth waking someone up for.
type IntegrityJob struct {
	db      *pgxpool.Pool
	logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewIntegrityJob constructs the integrity scan job.
func NewIntegrityJob(db *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) *IntegrityJob {
	return &IntegrityJob{db: db, logger: logger, Metrics: metrics}
}

// Handle processes TaskLedgerIntegrity tasks.
func (j *IntegrityJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	defer func(tr *jobmetrics.Tracker) { err = tr.End(err) }(j.metrics().Track("ledger_integrity"))

	var payload IntegrityPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	query := `SELECT je.id,
	COALESCE(SUM(tr.amount) FILTER (WHERE tr.is_debit), 0)::text,
	COALESCE(SUM(tr.amount) FILTER (WHERE NOT tr.is_debit), 0)::text
FROM journal_entries je
JOIN transactions tr ON tr.entry_id=je.id
GROUP BY je.id
HAVING COALESCE(SUM(tr.amount) FILTER (WHERE tr.is_debit), 0)
    <> COALESCE(SUM(tr.amount) FILTER (WHERE NOT tr.is_debit), 0)
ORDER BY je.id`
	if payload.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", payload.Limit)
	}

	rows, err := j.db.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("jobs: integrity scan: %w", err)
	}
	defer rows.Close()

	var unbalanced int
	for rows.Next() {
		var entryID int64
		var debit, credit string
		if err := rows.Scan(&entryID, &debit, &credit); err != nil {
			return fmt.Errorf("jobs: integrity scan: %w", err)
		}
		unbalanced++
		j.logger.Error("unbalanced journal entry found",
			slog.Int64("entry_id", entryID),
			slog.String("debit_total", debit),
			slog.String("credit_total", credit))
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("jobs: integrity scan: %w", err)
	}

	if unbalanced > 0 {
		j.metrics().AddUnbalanced(unbalanced)
		return fmt.Errorf("jobs: integrity scan found %d unbalanced entries", unbalanced)
	}
	j.logger.Info("ledger integrity scan clean")
	return nil
}

func (j *IntegrityJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
