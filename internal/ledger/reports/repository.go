package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository aggregates posted transactions for the statement builders.
type Repository interface {
	BalancesAsOf(ctx context.Context, asOf time.Time) ([]AccountBalance, error)
	BalancesInRange(ctx context.Context, start, end time.Time) ([]AccountBalance, error)
	CashTransactions(ctx context.Context, start, end time.Time) ([]CashTransaction, error)
	CashOpeningBalance(ctx context.Context, before time.Time) (decimal.Decimal, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the Postgres-backed reports repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

// The date window restricts the transaction rows inside the subquery;
// a predicate on the outer LEFT JOIN would null-extend out-of-window
// lines instead of excluding them from the sums.
const balanceQuery = `SELECT a.id, a.code, a.name, t.name, a.normal_balance, COALESCE(a.cash_flow_section, ''),
COALESCE(SUM(tr.amount) FILTER (WHERE tr.is_debit), 0)::text,
COALESCE(SUM(tr.amount) FILTER (WHERE NOT tr.is_debit), 0)::text
FROM accounts a
JOIN account_types t ON t.id = a.type_id
LEFT JOIN (
	SELECT tr.account_id, tr.amount, tr.is_debit
	FROM transactions tr
	JOIN journal_entries je ON je.id = tr.entry_id
	WHERE je.date %s
) tr ON tr.account_id = a.id
GROUP BY a.id, a.code, a.name, t.name, a.normal_balance, a.cash_flow_section
ORDER BY a.code`

func (r *repository) BalancesAsOf(ctx context.Context, asOf time.Time) ([]AccountBalance, error) {
	query := fmt.Sprintf(balanceQuery, "<= $1")
	rows, err := r.db.Query(ctx, query, asOf)
	if err != nil {
		return nil, err
	}
	return scanBalances(rows)
}

func (r *repository) BalancesInRange(ctx context.Context, start, end time.Time) ([]AccountBalance, error) {
	query := fmt.Sprintf(balanceQuery, "BETWEEN $1 AND $2")
	rows, err := r.db.Query(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	return scanBalances(rows)
}

func scanBalances(rows pgx.Rows) ([]AccountBalance, error) {
	defer rows.Close()
	var balances []AccountBalance
	for rows.Next() {
		var b AccountBalance
		var debit, credit string
		if err := rows.Scan(&b.AccountID, &b.Code, &b.Name, &b.TypeName, &b.NormalBalance, &b.CashFlowSection, &debit, &credit); err != nil {
			return nil, err
		}
		var err error
		if b.Debit, err = decimal.NewFromString(debit); err != nil {
			return nil, fmt.Errorf("reports: parse debit %q: %w", debit, err)
		}
		if b.Credit, err = decimal.NewFromString(credit); err != nil {
			return nil, fmt.Errorf("reports: parse credit %q: %w", credit, err)
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

func (r *repository) CashTransactions(ctx context.Context, start, end time.Time) ([]CashTransaction, error) {
	rows, err := r.db.Query(ctx, `SELECT je.id, je.date, je.description, a.cash_flow_section, tr.amount::text, tr.is_debit
FROM transactions tr
JOIN accounts a ON a.id = tr.account_id
JOIN account_types t ON t.id = a.type_id
JOIN journal_entries je ON je.id = tr.entry_id
WHERE a.cash_flow_section IS NOT NULL
  AND UPPER(t.name) IN ('ASSET','ASSETS')
  AND je.date BETWEEN $1 AND $2
ORDER BY je.id, tr.id`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var transactions []CashTransaction
	for rows.Next() {
		var tx CashTransaction
		var amount string
		if err := rows.Scan(&tx.EntryID, &tx.EntryDate, &tx.Description, &tx.Section, &amount, &tx.IsDebit); err != nil {
			return nil, err
		}
		parsed, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("reports: parse amount %q: %w", amount, err)
		}
		tx.Amount = parsed
		transactions = append(transactions, tx)
	}
	return transactions, rows.Err()
}

func (r *repository) CashOpeningBalance(ctx context.Context, before time.Time) (decimal.Decimal, error) {
	var raw string
	err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(CASE WHEN tr.is_debit THEN tr.amount ELSE -tr.amount END), 0)::text
FROM transactions tr
JOIN accounts a ON a.id = tr.account_id
JOIN account_types t ON t.id = a.type_id
JOIN journal_entries je ON je.id = tr.entry_id
WHERE a.cash_flow_section IS NOT NULL
  AND UPPER(t.name) IN ('ASSET','ASSETS')
  AND je.date < $1`, before).Scan(&raw)
	if err != nil {
		return decimal.Zero, err
	}
	opening, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("reports: parse opening %q: %w", raw, err)
	}
	return opening, nil
}
