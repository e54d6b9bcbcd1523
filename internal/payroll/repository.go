package payroll

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository persists payroll payments.
type Repository interface {
	CreatePayment(ctx context.Context, in PaymentInput) (Payment, error)
	ListPayments(ctx context.Context) ([]Payment, error)
	GetPayment(ctx context.Context, id int64) (Payment, error)
	LinkJournalEntry(ctx context.Context, paymentID, entryID int64) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the Postgres-backed payroll repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) CreatePayment(ctx context.Context, in PaymentInput) (Payment, error) {
	p := Payment{
		StaffRef:  in.StaffRef,
		StaffName: in.StaffName,
		Period:    in.Period,
		Amount:    in.Amount,
		Method:    in.Method,
		PaidAt:    in.PaidAt,
	}
	err := r.db.QueryRow(ctx, `INSERT INTO payroll_payments (staff_ref, staff_name, period, amount, method, paid_at)
VALUES ($1,$2,$3,$4,$5,$6) RETURNING id, created_at`,
		in.StaffRef, in.StaffName, in.Period, in.Amount.StringFixed(2), in.Method, in.PaidAt).
		Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return Payment{}, err
	}
	return p, nil
}

func (r *repository) ListPayments(ctx context.Context) ([]Payment, error) {
	rows, err := r.db.Query(ctx, `SELECT id, staff_ref, staff_name, period, amount::text, method, paid_at, journal_entry_id, created_at
FROM payroll_payments ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var payments []Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *repository) GetPayment(ctx context.Context, id int64) (Payment, error) {
	p, err := scanPayment(r.db.QueryRow(ctx, `SELECT id, staff_ref, staff_name, period, amount::text, method, paid_at, journal_entry_id, created_at
FROM payroll_payments WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Payment{}, ErrNotFound
		}
		return Payment{}, err
	}
	return p, nil
}

func (r *repository) LinkJournalEntry(ctx context.Context, paymentID, entryID int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE payroll_payments SET journal_entry_id=$2 WHERE id=$1`, paymentID, entryID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPayment(row pgx.Row) (Payment, error) {
	var p Payment
	var amount string
	if err := row.Scan(&p.ID, &p.StaffRef, &p.StaffName, &p.Period, &amount, &p.Method, &p.PaidAt, &p.JournalEntryID, &p.CreatedAt); err != nil {
		return Payment{}, err
	}
	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return Payment{}, fmt.Errorf("payroll: parse amount %q: %w", amount, err)
	}
	p.Amount = parsed
	return p, nil
}
