package ledger

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// DSN-gated like the reports repository tests: set TEST_PG_DSN to run;
// a throwaway schema is created and dropped per test.
func newLedgerPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_PG_DSN")
	if dsn == "" {
		t.Skip("TEST_PG_DSN not set")
	}
	ctx := context.Background()

	schema := fmt.Sprintf("ledger_test_%d", time.Now().UnixNano())
	cfg, err := pgxpool.ParseConfig(dsn)
	require.NoError(t, err)
	cfg.ConnConfig.RuntimeParams["search_path"] = schema

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), "DROP SCHEMA IF EXISTS "+schema+" CASCADE")
		pool.Close()
	})

	ddl := []string{
		"CREATE SCHEMA " + schema,
		`CREATE TABLE account_types (
			id bigint PRIMARY KEY,
			name text NOT NULL,
			normal_balance text NOT NULL
		)`,
		`CREATE TABLE accounts (
			id bigint PRIMARY KEY,
			code text NOT NULL,
			name text NOT NULL,
			type_id bigint NOT NULL REFERENCES account_types(id),
			normal_balance text NOT NULL,
			cash_flow_section text
		)`,
		`CREATE TABLE journal_entries (
			id bigint PRIMARY KEY,
			date date NOT NULL,
			description text NOT NULL DEFAULT '',
			reference text NOT NULL DEFAULT '',
			created_by bigint NOT NULL DEFAULT 1,
			reversed_by bigint,
			created_at timestamptz NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE transactions (
			id bigint PRIMARY KEY,
			entry_id bigint NOT NULL REFERENCES journal_entries(id),
			account_id bigint NOT NULL REFERENCES accounts(id),
			amount numeric(14,2) NOT NULL,
			is_debit boolean NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now()
		)`,
	}
	for _, stmt := range ddl {
		_, err := pool.Exec(ctx, stmt)
		require.NoError(t, err)
	}
	return pool
}

func TestListEntriesHydratesOwnLines(t *testing.T) {
	pool := newLedgerPool(t)
	ctx := context.Background()

	stmts := []string{
		`INSERT INTO account_types (id, name, normal_balance) VALUES (1, 'ASSET', 'DEBIT'), (2, 'INCOME', 'CREDIT')`,
		`INSERT INTO accounts (id, code, name, type_id, normal_balance) VALUES
		 (1, '1000', 'Cash', 1, 'DEBIT'), (2, '4000', 'Tuition Revenue', 2, 'CREDIT')`,
		`INSERT INTO journal_entries (id, date, description) VALUES
		 (10, '2024-03-01', 'March fees'), (20, '2024-03-02', 'April fees')`,
		`INSERT INTO transactions (id, entry_id, account_id, amount, is_debit) VALUES
		 (1, 10, 1, 500.00, true), (2, 10, 2, 500.00, false),
		 (3, 20, 1, 250.00, true), (4, 20, 2, 250.00, false)`,
	}
	for _, stmt := range stmts {
		_, err := pool.Exec(ctx, stmt)
		require.NoError(t, err)
	}

	repo := NewRepository(pool)
	entries, err := repo.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first; every entry carries exactly its own two lines.
	require.Equal(t, int64(20), entries[0].ID)
	require.Len(t, entries[0].Lines, 2)
	require.Equal(t, "250.00", entries[0].Lines[0].Amount.StringFixed(2))
	require.Equal(t, int64(10), entries[1].ID)
	require.Len(t, entries[1].Lines, 2)
	for _, line := range entries[1].Lines {
		require.Equal(t, int64(10), line.EntryID)
		require.Equal(t, "500.00", line.Amount.StringFixed(2))
	}
}
