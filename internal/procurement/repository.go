package procurement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/campus-ledger/campus/internal/platform/db"
)

// Repository persists purchase orders and vendor payments.
type Repository interface {
	CreateOrder(ctx context.Context, in OrderInput) (PurchaseOrder, error)
	ListOrders(ctx context.Context) ([]PurchaseOrder, error)
	GetOrder(ctx context.Context, id int64) (PurchaseOrder, error)
	MarkReceived(ctx context.Context, id int64, at time.Time) (PurchaseOrder, error)
	CreateVendorPayment(ctx context.Context, in VendorPaymentInput) (VendorPayment, error)
	ListVendorPayments(ctx context.Context) ([]VendorPayment, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the Postgres-backed procurement repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func (r *repository) CreateOrder(ctx context.Context, in OrderInput) (PurchaseOrder, error) {
	order := PurchaseOrder{
		Number:    in.Number,
		VendorRef: in.VendorRef,
		Status:    StatusOpen,
		OrderedAt: in.OrderedAt,
	}
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `INSERT INTO purchase_orders (number, vendor_ref, status, ordered_at)
VALUES ($1,$2,$3,$4) RETURNING id, created_at`,
			in.Number, in.VendorRef, StatusOpen, in.OrderedAt).
			Scan(&order.ID, &order.CreatedAt)
		if err != nil {
			return err
		}
		for _, l := range in.Lines {
			line := OrderLine{
				OrderID:   order.ID,
				ItemRef:   l.ItemRef,
				Qty:       l.Qty,
				UnitPrice: l.UnitPrice,
			}
			err := tx.QueryRow(ctx, `INSERT INTO purchase_order_lines (order_id, item_ref, qty, unit_price)
VALUES ($1,$2,$3,$4) RETURNING id`,
				order.ID, l.ItemRef, l.Qty.String(), l.UnitPrice.StringFixed(2)).
				Scan(&line.ID)
			if err != nil {
				return err
			}
			order.Lines = append(order.Lines, line)
		}
		return nil
	})
	if err != nil {
		return PurchaseOrder{}, err
	}
	return order, nil
}

func (r *repository) ListOrders(ctx context.Context) ([]PurchaseOrder, error) {
	rows, err := r.db.Query(ctx, `SELECT id, number, vendor_ref, status, ordered_at, received_at, created_at
FROM purchase_orders ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var orders []PurchaseOrder
	for rows.Next() {
		var o PurchaseOrder
		if err := rows.Scan(&o.ID, &o.Number, &o.VendorRef, &o.Status, &o.OrderedAt, &o.ReceivedAt, &o.CreatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range orders {
		lines, err := r.orderLines(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Lines = lines
	}
	return orders, nil
}

func (r *repository) GetOrder(ctx context.Context, id int64) (PurchaseOrder, error) {
	var o PurchaseOrder
	err := r.db.QueryRow(ctx, `SELECT id, number, vendor_ref, status, ordered_at, received_at, created_at
FROM purchase_orders WHERE id=$1`, id).
		Scan(&o.ID, &o.Number, &o.VendorRef, &o.Status, &o.OrderedAt, &o.ReceivedAt, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PurchaseOrder{}, ErrNotFound
		}
		return PurchaseOrder{}, err
	}
	lines, err := r.orderLines(ctx, o.ID)
	if err != nil {
		return PurchaseOrder{}, err
	}
	o.Lines = lines
	return o, nil
}

// MarkReceived flips an open order to received. The status predicate
// keeps a second receipt from going through.
func (r *repository) MarkReceived(ctx context.Context, id int64, at time.Time) (PurchaseOrder, error) {
	tag, err := r.db.Exec(ctx, `UPDATE purchase_orders SET status=$3, received_at=$2
WHERE id=$1 AND status=$4`, id, at, StatusReceived, StatusOpen)
	if err != nil {
		return PurchaseOrder{}, err
	}
	if tag.RowsAffected() == 0 {
		order, err := r.GetOrder(ctx, id)
		if err != nil {
			return PurchaseOrder{}, err
		}
		if order.Status == StatusReceived {
			return PurchaseOrder{}, ErrAlreadyReceived
		}
		return PurchaseOrder{}, ErrNotFound
	}
	return r.GetOrder(ctx, id)
}

func (r *repository) orderLines(ctx context.Context, orderID int64) ([]OrderLine, error) {
	rows, err := r.db.Query(ctx, `SELECT id, order_id, item_ref, qty::text, unit_price::text
FROM purchase_order_lines WHERE order_id=$1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lines []OrderLine
	for rows.Next() {
		var l OrderLine
		var qty, price string
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ItemRef, &qty, &price); err != nil {
			return nil, err
		}
		if l.Qty, err = decimal.NewFromString(qty); err != nil {
			return nil, fmt.Errorf("procurement: parse qty %q: %w", qty, err)
		}
		if l.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("procurement: parse unit price %q: %w", price, err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *repository) CreateVendorPayment(ctx context.Context, in VendorPaymentInput) (VendorPayment, error) {
	p := VendorPayment{
		VendorRef: in.VendorRef,
		Amount:    in.Amount,
		Method:    in.Method,
		Reference: in.Reference,
		PaidAt:    in.PaidAt,
	}
	err := r.db.QueryRow(ctx, `INSERT INTO vendor_payments (vendor_ref, amount, method, reference, paid_at)
VALUES ($1,$2,$3,$4,$5) RETURNING id, created_at`,
		in.VendorRef, in.Amount.StringFixed(2), in.Method, in.Reference, in.PaidAt).
		Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return VendorPayment{}, err
	}
	return p, nil
}

func (r *repository) ListVendorPayments(ctx context.Context) ([]VendorPayment, error) {
	rows, err := r.db.Query(ctx, `SELECT id, vendor_ref, amount::text, method, reference, paid_at, created_at
FROM vendor_payments ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var payments []VendorPayment
	for rows.Next() {
		var p VendorPayment
		var amount string
		if err := rows.Scan(&p.ID, &p.VendorRef, &amount, &p.Method, &p.Reference, &p.PaidAt, &p.CreatedAt); err != nil {
			return nil, err
		}
		if p.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("procurement: parse amount %q: %w", amount, err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
