package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository persists stock additions.
type Repository interface {
	CreateAddition(ctx context.Context, in StockAdditionInput) (StockAddition, error)
	ListAdditions(ctx context.Context) ([]StockAddition, error)
	GetAddition(ctx context.Context, id int64) (StockAddition, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the Postgres-backed inventory repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) CreateAddition(ctx context.Context, in StockAdditionInput) (StockAddition, error) {
	a := StockAddition{
		ItemRef:  in.ItemRef,
		ItemName: in.ItemName,
		Qty:      in.Qty,
		UnitCost: in.UnitCost,
		AddedAt:  in.AddedAt,
	}
	err := r.db.QueryRow(ctx, `INSERT INTO stock_additions (item_ref, item_name, qty, unit_cost, added_at)
VALUES ($1,$2,$3,$4,$5) RETURNING id, created_at`,
		in.ItemRef, in.ItemName, in.Qty.String(), in.UnitCost.StringFixed(2), in.AddedAt).
		Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return StockAddition{}, err
	}
	return a, nil
}

func (r *repository) ListAdditions(ctx context.Context) ([]StockAddition, error) {
	rows, err := r.db.Query(ctx, `SELECT id, item_ref, item_name, qty::text, unit_cost::text, added_at, created_at
FROM stock_additions ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var additions []StockAddition
	for rows.Next() {
		a, err := scanAddition(rows)
		if err != nil {
			return nil, err
		}
		additions = append(additions, a)
	}
	return additions, rows.Err()
}

func (r *repository) GetAddition(ctx context.Context, id int64) (StockAddition, error) {
	a, err := scanAddition(r.db.QueryRow(ctx, `SELECT id, item_ref, item_name, qty::text, unit_cost::text, added_at, created_at
FROM stock_additions WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StockAddition{}, ErrNotFound
		}
		return StockAddition{}, err
	}
	return a, nil
}

func scanAddition(row pgx.Row) (StockAddition, error) {
	var a StockAddition
	var qty, cost string
	if err := row.Scan(&a.ID, &a.ItemRef, &a.ItemName, &qty, &cost, &a.AddedAt, &a.CreatedAt); err != nil {
		return StockAddition{}, err
	}
	var err error
	if a.Qty, err = decimal.NewFromString(qty); err != nil {
		return StockAddition{}, fmt.Errorf("inventory: parse qty %q: %w", qty, err)
	}
	if a.UnitCost, err = decimal.NewFromString(cost); err != nil {
		return StockAddition{}, fmt.Errorf("inventory: parse unit cost %q: %w", cost, err)
	}
	return a, nil
}
