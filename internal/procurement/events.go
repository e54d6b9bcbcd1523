package procurement

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ReceivedLine is one received order line as carried on the GRN event.
type ReceivedLine struct {
	ItemRef   string
	Qty       decimal.Decimal
	UnitPrice decimal.Decimal
}

// GoodsReceivedEvent is emitted once when an order's goods receipt is
// recorded.
type GoodsReceivedEvent struct {
	ID         int64
	OrderID    int64
	Number     string
	VendorRef  string
	Lines      []ReceivedLine
	ReceivedAt time.Time
}

// VendorPaymentMadeEvent is emitted once when a vendor payment is
// recorded.
type VendorPaymentMadeEvent struct {
	ID        int64
	VendorRef string
	Amount    decimal.Decimal
	Method    PaymentMethod
	Reference string
	PaidAt    time.Time
}

// Poster receives procurement events for ledger posting.
// Implementations must not fail the originating business action.
type Poster interface {
	HandleGoodsReceived(ctx context.Context, evt GoodsReceivedEvent) error
	HandleVendorPaymentMade(ctx context.Context, evt VendorPaymentMadeEvent) error
}
