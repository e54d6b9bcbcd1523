// Package payroll tracks salary payments made to staff and links each
// completed payment to the journal entry that recorded it.
package payroll

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod enumerates how a salary was paid out.
type PaymentMethod string

const (
	MethodCash        PaymentMethod = "CASH"
	MethodBank        PaymentMethod = "BANK"
	MethodMobileMoney PaymentMethod = "MOBILE_MONEY"
)

// Valid reports whether the method is a known payout channel.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodBank, MethodMobileMoney:
		return true
	}
	return false
}

// Payment is a completed salary payment. JournalEntryID is set once the
// ledger posting succeeds and stays nil while the posting is pending.
type Payment struct {
	ID             int64
	StaffRef       string
	StaffName      string
	Period         string
	Amount         decimal.Decimal
	Method         PaymentMethod
	PaidAt         time.Time
	JournalEntryID *int64
	CreatedAt      time.Time
}

// PaymentInput is the request to record a completed salary payment.
type PaymentInput struct {
	StaffRef  string
	StaffName string
	Period    string
	Amount    decimal.Decimal
	Method    PaymentMethod
	PaidAt    time.Time
}

var (
	// ErrNotFound indicates a missing payroll record.
	ErrNotFound = errors.New("payroll: not found")
	// ErrInvalidInput indicates a rejected payroll request.
	ErrInvalidInput = errors.New("payroll: invalid input")
)

func (in PaymentInput) validate() error {
	if strings.TrimSpace(in.StaffRef) == "" {
		return fmt.Errorf("%w: staff reference required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Period) == "" {
		return fmt.Errorf("%w: pay period required", ErrInvalidInput)
	}
	if !in.Amount.IsPositive() {
		return fmt.Errorf("%w: payment amount must be positive", ErrInvalidInput)
	}
	if !in.Method.Valid() {
		return fmt.Errorf("%w: unknown payment method %q", ErrInvalidInput, in.Method)
	}
	return nil
}
