package posting

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Failure is a ledger posting that could not be completed. The business
// event it came from has already committed, so failures are kept for
// manual remediation.
type Failure struct {
	ID        int64
	Module    string
	SourceID  uuid.UUID
	Reason    string
	Payload   []byte
	CreatedAt time.Time
}

// FailureStore persists posting failures.
type FailureStore interface {
	Record(ctx context.Context, f Failure) error
	List(ctx context.Context) ([]Failure, error)
}

type failureStore struct {
	db *pgxpool.Pool
}

// NewFailureStore constructs the Postgres-backed failure store.
func NewFailureStore(db *pgxpool.Pool) FailureStore {
	return &failureStore{db: db}
}

func (s *failureStore) Record(ctx context.Context, f Failure) error {
	_, err := s.db.Exec(ctx, `INSERT INTO posting_failures (module, source_id, reason, payload)
VALUES ($1,$2,$3,$4)`, f.Module, f.SourceID, f.Reason, f.Payload)
	return err
}

func (s *failureStore) List(ctx context.Context) ([]Failure, error) {
	rows, err := s.db.Query(ctx, `SELECT id, module, source_id, reason, payload, created_at
FROM posting_failures ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var failures []Failure
	for rows.Next() {
		var f Failure
		if err := rows.Scan(&f.ID, &f.Module, &f.SourceID, &f.Reason, &f.Payload, &f.CreatedAt); err != nil {
			return nil, err
		}
		failures = append(failures, f)
	}
	return failures, rows.Err()
}
