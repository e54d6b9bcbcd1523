package payroll

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentCompletedEvent is emitted once when a salary payment is recorded.
type PaymentCompletedEvent struct {
	ID        int64
	StaffRef  string
	StaffName string
	Period    string
	Amount    decimal.Decimal
	Method    PaymentMethod
	PaidAt    time.Time
}

// Poster receives payroll events for ledger posting and returns the id
// of the journal entry it created, so the payment row can link back to
// it. Implementations must not fail the originating payment.
type Poster interface {
	HandlePaymentCompleted(ctx context.Context, evt PaymentCompletedEvent) (int64, error)
}
