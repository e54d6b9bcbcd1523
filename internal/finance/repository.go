package finance

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository persists finance records.
type Repository interface {
	CreateFeePayment(ctx context.Context, in FeePaymentInput) (FeePayment, error)
	ListFeePayments(ctx context.Context) ([]FeePayment, error)
	GetFeePayment(ctx context.Context, id int64) (FeePayment, error)
	CreateInvoice(ctx context.Context, in InvoiceInput) (Invoice, error)
	ListInvoices(ctx context.Context) ([]Invoice, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the Postgres-backed finance repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) CreateFeePayment(ctx context.Context, in FeePaymentInput) (FeePayment, error) {
	p := FeePayment{
		StudentRef: in.StudentRef,
		Amount:     in.Amount,
		Method:     in.Method,
		Reference:  in.Reference,
		PaidAt:     in.PaidAt,
	}
	err := r.db.QueryRow(ctx, `INSERT INTO fee_payments (student_ref, amount, method, reference, paid_at)
VALUES ($1,$2,$3,$4,$5) RETURNING id, created_at`,
		in.StudentRef, in.Amount.StringFixed(2), in.Method, in.Reference, in.PaidAt).
		Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return FeePayment{}, err
	}
	return p, nil
}

func (r *repository) ListFeePayments(ctx context.Context) ([]FeePayment, error) {
	rows, err := r.db.Query(ctx, `SELECT id, student_ref, amount::text, method, reference, paid_at, created_at
FROM fee_payments ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var payments []FeePayment
	for rows.Next() {
		p, err := scanFeePayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *repository) GetFeePayment(ctx context.Context, id int64) (FeePayment, error) {
	p, err := scanFeePayment(r.db.QueryRow(ctx, `SELECT id, student_ref, amount::text, method, reference, paid_at, created_at
FROM fee_payments WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return FeePayment{}, ErrNotFound
		}
		return FeePayment{}, err
	}
	return p, nil
}

func scanFeePayment(row pgx.Row) (FeePayment, error) {
	var p FeePayment
	var amount string
	if err := row.Scan(&p.ID, &p.StudentRef, &amount, &p.Method, &p.Reference, &p.PaidAt, &p.CreatedAt); err != nil {
		return FeePayment{}, err
	}
	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return FeePayment{}, fmt.Errorf("finance: parse amount %q: %w", amount, err)
	}
	p.Amount = parsed
	return p, nil
}

func (r *repository) CreateInvoice(ctx context.Context, in InvoiceInput) (Invoice, error) {
	inv := Invoice{
		StudentRef: in.StudentRef,
		Number:     in.Number,
		Total:      in.Total,
		IssuedAt:   in.IssuedAt,
		DueAt:      in.DueAt,
	}
	err := r.db.QueryRow(ctx, `INSERT INTO fee_invoices (student_ref, number, total, issued_at, due_at)
VALUES ($1,$2,$3,$4,$5) RETURNING id, created_at`,
		in.StudentRef, in.Number, in.Total.StringFixed(2), in.IssuedAt, in.DueAt).
		Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		return Invoice{}, err
	}
	return inv, nil
}

func (r *repository) ListInvoices(ctx context.Context) ([]Invoice, error) {
	rows, err := r.db.Query(ctx, `SELECT id, student_ref, number, total::text, issued_at, due_at, created_at
FROM fee_invoices ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var invoices []Invoice
	for rows.Next() {
		var inv Invoice
		var total string
		if err := rows.Scan(&inv.ID, &inv.StudentRef, &inv.Number, &total, &inv.IssuedAt, &inv.DueAt, &inv.CreatedAt); err != nil {
			return nil, err
		}
		parsed, err := decimal.NewFromString(total)
		if err != nil {
			return nil, fmt.Errorf("finance: parse total %q: %w", total, err)
		}
		inv.Total = parsed
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}
