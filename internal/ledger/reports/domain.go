// Package reports derives financial statements from posted journal lines.
// Builders are pure functions over pre-aggregated rows so they can be
// tested without a database.
package reports

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AccountBalance is one account's aggregated debit and credit movement
// over the report window.
type AccountBalance struct {
	AccountID       int64
	Code            string
	Name            string
	TypeName        string
	NormalBalance   string
	CashFlowSection string
	Debit           decimal.Decimal
	Credit          decimal.Decimal
}

// Balance nets the movement onto the account's normal side.
func (a AccountBalance) Balance() decimal.Decimal {
	if strings.EqualFold(a.NormalBalance, "DEBIT") {
		return a.Debit.Sub(a.Credit)
	}
	return a.Credit.Sub(a.Debit)
}

// CashTransaction is one journal line against a sectioned cash account.
type CashTransaction struct {
	EntryID     int64
	EntryDate   time.Time
	Description string
	Section     string
	Amount      decimal.Decimal
	IsDebit     bool
}

// Account type classifications recognised by the statement builders.
const (
	classAsset     = "ASSET"
	classLiability = "LIABILITY"
	classEquity    = "EQUITY"
	classIncome    = "INCOME"
	classExpense   = "EXPENSE"
)

// classify buckets a free-form account type name into a statement class.
func classify(typeName string) string {
	switch strings.ToUpper(strings.TrimSpace(typeName)) {
	case "ASSET", "ASSETS":
		return classAsset
	case "LIABILITY", "LIABILITIES":
		return classLiability
	case "EQUITY":
		return classEquity
	case "INCOME", "REVENUE":
		return classIncome
	case "EXPENSE", "EXPENSES", "COGS":
		return classExpense
	}
	return ""
}

func fixed(d decimal.Decimal) string {
	return d.StringFixed(2)
}
