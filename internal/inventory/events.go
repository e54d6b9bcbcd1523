package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// StockAddedEvent is emitted once when a stock addition is recorded.
type StockAddedEvent struct {
	ID       int64
	ItemRef  string
	Qty      decimal.Decimal
	UnitCost decimal.Decimal
	AddedAt  time.Time
}

// Poster receives inventory events for ledger posting. Implementations
// must not fail the originating business action.
type Poster interface {
	HandleStockAdded(ctx context.Context, evt StockAddedEvent) error
}
