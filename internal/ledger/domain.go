package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NormalBalance is the side on which an account type naturally increases.
type NormalBalance string

const (
	NormalBalanceDebit  NormalBalance = "DEBIT"
	NormalBalanceCredit NormalBalance = "CREDIT"
)

// Valid reports whether the value is one of the two ledger sides.
func (n NormalBalance) Valid() bool {
	return n == NormalBalanceDebit || n == NormalBalanceCredit
}

// CashFlowSection classifies a cash account's activity for the cash flow statement.
type CashFlowSection string

const (
	SectionOperating CashFlowSection = "OPERATING"
	SectionInvesting CashFlowSection = "INVESTING"
	SectionFinancing CashFlowSection = "FINANCING"
)

// Valid reports whether the section is a known classification.
func (s CashFlowSection) Valid() bool {
	switch s {
	case SectionOperating, SectionInvesting, SectionFinancing:
		return true
	}
	return false
}

// AccountType categorises accounts and fixes their normal balance side.
type AccountType struct {
	ID            int64
	Name          string
	NormalBalance NormalBalance
	Archived      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Account is a chart of accounts node. NormalBalance is copied from the
// owning type at creation so historical reports survive type edits.
type Account struct {
	ID              int64
	Code            string
	Name            string
	TypeID          int64
	TypeName        string
	NormalBalance   NormalBalance
	CashFlowSection *CashFlowSection
	IsDefault       bool
	Archived        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// JournalEntry is a dated, described group of balanced debit/credit lines.
type JournalEntry struct {
	ID          int64
	Date        time.Time
	Description string
	Reference   string
	CreatedBy   int64
	ReversedBy  *int64
	CreatedAt   time.Time
	Lines       []Transaction
}

// Transaction is one debit or credit movement against one account.
type Transaction struct {
	ID          int64
	EntryID     int64
	AccountID   int64
	AccountCode string
	AccountName string
	Amount      decimal.Decimal
	IsDebit     bool
	CreatedAt   time.Time
}

// LineInput describes one journal line for a posting request.
type LineInput struct {
	AccountID int64
	Amount    decimal.Decimal
	IsDebit   bool
}

// EntryInput groups the fields required to create a journal entry.
// SourceModule and SourceID are set for event-driven postings only and
// make them idempotent.
type EntryInput struct {
	Date         time.Time
	Description  string
	Reference    string
	CreatedBy    int64
	SourceModule string
	SourceID     uuid.UUID
	Lines        []LineInput
}

// TransactionFilter narrows transaction listings.
type TransactionFilter struct {
	AccountID *int64
	Reference string
	IsDebit   *bool
}

var (
	// ErrUnbalanced indicates total debits != total credits.
	ErrUnbalanced = errors.New("ledger: unbalanced journal")
	// ErrTooFewLines indicates fewer than two lines.
	ErrTooFewLines = errors.New("ledger: journal requires at least two lines")
	// ErrAlreadyReversed indicates the entry has already been reversed.
	ErrAlreadyReversed = errors.New("ledger: entry already reversed")
	// ErrEntryNotFound indicates a missing journal entry.
	ErrEntryNotFound = errors.New("ledger: journal entry not found")
	// ErrAccountNotFound indicates a missing account.
	ErrAccountNotFound = errors.New("ledger: account not found")
	// ErrAccountArchived indicates a posting against an archived account.
	ErrAccountArchived = errors.New("ledger: account archived")
	// ErrTypeNotFound indicates a missing account type.
	ErrTypeNotFound = errors.New("ledger: account type not found")
	// ErrNormalBalanceLocked indicates the type already has posted transactions.
	ErrNormalBalanceLocked = errors.New("ledger: normal balance immutable once transactions exist")
	// ErrDuplicateCode indicates an account code or type name collision.
	ErrDuplicateCode = errors.New("ledger: duplicate code")
	// ErrSourceAlreadyLinked indicates an idempotency conflict.
	ErrSourceAlreadyLinked = errors.New("ledger: source already linked")
	// ErrRoleNotMapped indicates an unmapped posting role.
	ErrRoleNotMapped = errors.New("ledger: account role not mapped")
)

// Validate ensures posting input meets minimum criteria before any
// persistence is attempted.
func (in EntryInput) Validate() error {
	if len(in.Lines) < 2 {
		return ErrTooFewLines
	}
	debit := decimal.Zero
	credit := decimal.Zero
	for idx, line := range in.Lines {
		if line.AccountID == 0 {
			return fmt.Errorf("ledger: line %d missing account", idx)
		}
		if line.Amount.IsNegative() {
			return fmt.Errorf("ledger: line %d negative amount", idx)
		}
		if line.IsDebit {
			debit = debit.Add(line.Amount)
		} else {
			credit = credit.Add(line.Amount)
		}
	}
	if !debit.Equal(credit) {
		return fmt.Errorf("%w: debits %s != credits %s", ErrUnbalanced, debit.StringFixed(2), credit.StringFixed(2))
	}
	return nil
}
