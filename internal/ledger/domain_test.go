package ledger

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestEntryInputValidateBalanced(t *testing.T) {
	in := EntryInput{
		Description: "Fee payment",
		Lines: []LineInput{
			{AccountID: 1, Amount: decimal.RequireFromString("5000.00"), IsDebit: true},
			{AccountID: 2, Amount: decimal.RequireFromString("5000.00"), IsDebit: false},
		},
	}
	if err := in.Validate(); err != nil {
		t.Fatalf("expected valid input, got %v", err)
	}
}

func TestEntryInputValidateUnbalanced(t *testing.T) {
	in := EntryInput{
		Lines: []LineInput{
			{AccountID: 1, Amount: decimal.RequireFromString("100.00"), IsDebit: true},
			{AccountID: 2, Amount: decimal.RequireFromString("99.99"), IsDebit: false},
		},
	}
	err := in.Validate()
	if !errors.Is(err, ErrUnbalanced) {
		t.Fatalf("expected ErrUnbalanced, got %v", err)
	}
}

func TestEntryInputValidateTooFewLines(t *testing.T) {
	in := EntryInput{
		Lines: []LineInput{
			{AccountID: 1, Amount: decimal.RequireFromString("100.00"), IsDebit: true},
		},
	}
	if err := in.Validate(); !errors.Is(err, ErrTooFewLines) {
		t.Fatalf("expected ErrTooFewLines, got %v", err)
	}
}

func TestEntryInputValidateNegativeAmount(t *testing.T) {
	in := EntryInput{
		Lines: []LineInput{
			{AccountID: 1, Amount: decimal.RequireFromString("-10.00"), IsDebit: true},
			{AccountID: 2, Amount: decimal.RequireFromString("-10.00"), IsDebit: false},
		},
	}
	if err := in.Validate(); err == nil {
		t.Fatal("expected error for negative amount")
	}
}

func TestEntryInputValidateMultiLine(t *testing.T) {
	// A split posting balances as long as totals agree per side.
	in := EntryInput{
		Lines: []LineInput{
			{AccountID: 1, Amount: decimal.RequireFromString("60.00"), IsDebit: true},
			{AccountID: 2, Amount: decimal.RequireFromString("40.00"), IsDebit: true},
			{AccountID: 3, Amount: decimal.RequireFromString("100.00"), IsDebit: false},
		},
	}
	if err := in.Validate(); err != nil {
		t.Fatalf("expected valid split posting, got %v", err)
	}
}

func TestEntryInputValidateZeroAmountLinesBalance(t *testing.T) {
	in := EntryInput{
		Lines: []LineInput{
			{AccountID: 1, Amount: decimal.Zero, IsDebit: true},
			{AccountID: 2, Amount: decimal.Zero, IsDebit: false},
		},
	}
	if err := in.Validate(); err != nil {
		t.Fatalf("zero-amount balanced entry should validate, got %v", err)
	}
}
