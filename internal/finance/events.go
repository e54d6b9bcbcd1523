package finance

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// FeePaymentRecordedEvent is emitted once when a payment is first recorded.
type FeePaymentRecordedEvent struct {
	ID         int64
	StudentRef string
	Amount     decimal.Decimal
	Method     PaymentMethod
	Reference  string
	PaidAt     time.Time
}

// InvoiceIssuedEvent is emitted once when an invoice is first issued.
type InvoiceIssuedEvent struct {
	ID         int64
	StudentRef string
	Number     string
	Total      decimal.Decimal
	IssuedAt   time.Time
}

// Poster receives finance events for ledger posting. Implementations
// must not fail the originating business action.
type Poster interface {
	HandleFeePaymentRecorded(ctx context.Context, evt FeePaymentRecordedEvent) error
	HandleInvoiceIssued(ctx context.Context, evt InvoiceIssuedEvent) error
}
