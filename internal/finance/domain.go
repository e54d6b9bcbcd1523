// Package finance covers student-facing money movement: fee payments
// received and fee invoices issued.
package finance

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod enumerates how a fee payment was received.
type PaymentMethod string

const (
	MethodCash        PaymentMethod = "CASH"
	MethodBank        PaymentMethod = "BANK"
	MethodMobileMoney PaymentMethod = "MOBILE_MONEY"
)

// Valid reports whether the method is recognised.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodBank, MethodMobileMoney:
		return true
	}
	return false
}

// FeePayment is a tuition fee payment received from a student.
type FeePayment struct {
	ID         int64
	StudentRef string
	Amount     decimal.Decimal
	Method     PaymentMethod
	Reference  string
	PaidAt     time.Time
	CreatedAt  time.Time
}

// Invoice is a tuition fee invoice issued to a student.
type Invoice struct {
	ID         int64
	StudentRef string
	Number     string
	Total      decimal.Decimal
	IssuedAt   time.Time
	DueAt      time.Time
	CreatedAt  time.Time
}

// FeePaymentInput carries fields for recording a payment.
type FeePaymentInput struct {
	StudentRef string
	Amount     decimal.Decimal
	Method     PaymentMethod
	Reference  string
	PaidAt     time.Time
}

// InvoiceInput carries fields for issuing an invoice.
type InvoiceInput struct {
	StudentRef string
	Number     string
	Total      decimal.Decimal
	IssuedAt   time.Time
	DueAt      time.Time
}

var (
	// ErrNotFound indicates a missing finance record.
	ErrNotFound = errors.New("finance: not found")
	// ErrInvalidInput indicates a rejected finance request.
	ErrInvalidInput = errors.New("finance: invalid input")
)

func (in FeePaymentInput) validate() error {
	if strings.TrimSpace(in.StudentRef) == "" {
		return fmt.Errorf("%w: student reference required", ErrInvalidInput)
	}
	if !in.Amount.IsPositive() {
		return fmt.Errorf("%w: payment amount must be positive", ErrInvalidInput)
	}
	if !in.Method.Valid() {
		return fmt.Errorf("%w: unknown payment method %q", ErrInvalidInput, in.Method)
	}
	return nil
}

func (in InvoiceInput) validate() error {
	if strings.TrimSpace(in.StudentRef) == "" {
		return fmt.Errorf("%w: student reference required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Number) == "" {
		return fmt.Errorf("%w: invoice number required", ErrInvalidInput)
	}
	if !in.Total.IsPositive() {
		return fmt.Errorf("%w: invoice total must be positive", ErrInvalidInput)
	}
	return nil
}
