// Package inventory records stock additions that feed the ledger's
// inventory asset account.
package inventory

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// StockAddition is stock taken into inventory outside a purchase
// order, priced at unit cost.
type StockAddition struct {
	ID        int64
	ItemRef   string
	ItemName  string
	Qty       decimal.Decimal
	UnitCost  decimal.Decimal
	AddedAt   time.Time
	CreatedAt time.Time
}

// Total is the addition's value, qty times unit cost, at two places.
func (a StockAddition) Total() decimal.Decimal {
	return a.Qty.Mul(a.UnitCost).Round(2)
}

// StockAdditionInput is the request to record a stock addition.
type StockAdditionInput struct {
	ItemRef  string
	ItemName string
	Qty      decimal.Decimal
	UnitCost decimal.Decimal
	AddedAt  time.Time
}

var (
	// ErrNotFound indicates a missing inventory record.
	ErrNotFound = errors.New("inventory: not found")
	// ErrInvalidInput indicates a rejected inventory request.
	ErrInvalidInput = errors.New("inventory: invalid input")
)

func (in StockAdditionInput) validate() error {
	if strings.TrimSpace(in.ItemRef) == "" {
		return fmt.Errorf("%w: item reference required", ErrInvalidInput)
	}
	if !in.Qty.IsPositive() {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}
	if !in.UnitCost.IsPositive() {
		return fmt.Errorf("%w: unit cost must be positive", ErrInvalidInput)
	}
	return nil
}
