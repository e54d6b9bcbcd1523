// Package jobs hosts the background worker: a nightly ledger integrity
// scan and an hourly report cache warmup, both driven by asynq.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerIntegrity verifies every journal entry still balances.
	TaskLedgerIntegrity = "ledger:integrity"
	// TaskReportsWarmup precomputes the day's financial reports.
	TaskReportsWarmup = "reports:warmup"
)

// IntegrityPayload configures a ledger integrity scan.
type IntegrityPayload struct {
	// Limit caps how many entries are checked, zero means all.
	Limit int `json:"limit"`
}

// WarmupPayload configures a report warmup run.
type WarmupPayload struct {
	// Reports lists which reports to warm, empty means all.
	Reports []string `json:"reports"`
}

// NewLedgerIntegrityTask constructs an integrity scan task.
func NewLedgerIntegrityTask(payload IntegrityPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerIntegrity, data), nil
}

// NewReportsWarmupTask constructs a warmup task.
func NewReportsWarmupTask(payload WarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportsWarmup, data), nil
}
