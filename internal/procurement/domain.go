// Package procurement covers purchase orders, goods receipts, and
// vendor payments. Receiving goods and paying vendors are the two
// events that reach the ledger.
package procurement

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus tracks a purchase order through its lifecycle.
type OrderStatus string

const (
	StatusOpen     OrderStatus = "OPEN"
	StatusReceived OrderStatus = "RECEIVED"
)

// PaymentMethod enumerates how a vendor was paid.
type PaymentMethod string

const (
	MethodCash        PaymentMethod = "CASH"
	MethodBank        PaymentMethod = "BANK"
	MethodMobileMoney PaymentMethod = "MOBILE_MONEY"
)

// Valid reports whether the method is a known payment channel.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodBank, MethodMobileMoney:
		return true
	}
	return false
}

// OrderLine is one item on a purchase order.
type OrderLine struct {
	ID        int64
	OrderID   int64
	ItemRef   string
	Qty       decimal.Decimal
	UnitPrice decimal.Decimal
}

// Total is the line value, qty times unit price, at two places.
func (l OrderLine) Total() decimal.Decimal {
	return l.Qty.Mul(l.UnitPrice).Round(2)
}

// PurchaseOrder is an order placed with a vendor. ReceivedAt is set
// when the goods receipt is recorded.
type PurchaseOrder struct {
	ID         int64
	Number     string
	VendorRef  string
	Status     OrderStatus
	Lines      []OrderLine
	OrderedAt  time.Time
	ReceivedAt *time.Time
	CreatedAt  time.Time
}

// Total sums the order's line totals.
func (o PurchaseOrder) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.Total())
	}
	return total
}

// VendorPayment is a payment made against a vendor.
type VendorPayment struct {
	ID        int64
	VendorRef string
	Amount    decimal.Decimal
	Method    PaymentMethod
	Reference string
	PaidAt    time.Time
	CreatedAt time.Time
}

// OrderLineInput is one requested order line.
type OrderLineInput struct {
	ItemRef   string
	Qty       decimal.Decimal
	UnitPrice decimal.Decimal
}

// OrderInput is the request to place a purchase order.
type OrderInput struct {
	Number    string
	VendorRef string
	Lines     []OrderLineInput
	OrderedAt time.Time
}

// VendorPaymentInput is the request to record a vendor payment.
type VendorPaymentInput struct {
	VendorRef string
	Amount    decimal.Decimal
	Method    PaymentMethod
	Reference string
	PaidAt    time.Time
}

var (
	// ErrNotFound indicates a missing procurement record.
	ErrNotFound = errors.New("procurement: not found")
	// ErrInvalidInput indicates a rejected procurement request.
	ErrInvalidInput = errors.New("procurement: invalid input")
	// ErrAlreadyReceived indicates a goods receipt against a received order.
	ErrAlreadyReceived = errors.New("procurement: order already received")
)

func (in OrderInput) validate() error {
	if strings.TrimSpace(in.Number) == "" {
		return fmt.Errorf("%w: order number required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.VendorRef) == "" {
		return fmt.Errorf("%w: vendor reference required", ErrInvalidInput)
	}
	if len(in.Lines) == 0 {
		return fmt.Errorf("%w: at least one order line required", ErrInvalidInput)
	}
	for i, l := range in.Lines {
		if strings.TrimSpace(l.ItemRef) == "" {
			return fmt.Errorf("%w: line %d item reference required", ErrInvalidInput, i)
		}
		if !l.Qty.IsPositive() {
			return fmt.Errorf("%w: line %d quantity must be positive", ErrInvalidInput, i)
		}
		if l.UnitPrice.IsNegative() {
			return fmt.Errorf("%w: line %d unit price cannot be negative", ErrInvalidInput, i)
		}
	}
	return nil
}

func (in VendorPaymentInput) validate() error {
	if strings.TrimSpace(in.VendorRef) == "" {
		return fmt.Errorf("%w: vendor reference required", ErrInvalidInput)
	}
	if !in.Amount.IsPositive() {
		return fmt.Errorf("%w: payment amount must be positive", ErrInvalidInput)
	}
	if !in.Method.Valid() {
		return fmt.Errorf("%w: unknown payment method %q", ErrInvalidInput, in.Method)
	}
	return nil
}
