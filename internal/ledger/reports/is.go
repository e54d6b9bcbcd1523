package reports

import (
	"sort"

	"github.com/shopspring/decimal"
)

// IncomeStatementAccount is one revenue or expense account summary.
type IncomeStatementAccount struct {
	Code   string `json:"account_code"`
	Name   string `json:"account_name"`
	Amount string `json:"amount"`
}

// IncomeStatementSection groups accounts by nature.
type IncomeStatementSection struct {
	Label    string                   `json:"label"`
	Accounts []IncomeStatementAccount `json:"accounts"`
	Total    string                   `json:"total"`
}

// IncomeStatement shows income and expenses over a date range.
type IncomeStatement struct {
	StartDate    string                 `json:"start_date"`
	EndDate      string                 `json:"end_date"`
	Income       IncomeStatementSection `json:"income"`
	Expenses     IncomeStatementSection `json:"expenses"`
	NetProfit    string                 `json:"net_profit"`
	ProfitMargin string                 `json:"profit_margin"`
}

// BuildIncomeStatement aggregates income and expense movement over a
// range. Profit margin is zero when total income is zero.
func BuildIncomeStatement(start, end string, accounts []AccountBalance) IncomeStatement {
	sorted := append([]AccountBalance(nil), accounts...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Code < sorted[j].Code })

	income := IncomeStatementSection{Label: "Income", Accounts: []IncomeStatementAccount{}}
	expenses := IncomeStatementSection{Label: "Expenses", Accounts: []IncomeStatementAccount{}}
	incomeTotal := decimal.Zero
	expenseTotal := decimal.Zero

	for _, acc := range sorted {
		switch classify(acc.TypeName) {
		case classIncome:
			amount := acc.Credit.Sub(acc.Debit)
			income.Accounts = append(income.Accounts, IncomeStatementAccount{Code: acc.Code, Name: acc.Name, Amount: fixed(amount)})
			incomeTotal = incomeTotal.Add(amount)
		case classExpense:
			amount := acc.Debit.Sub(acc.Credit)
			expenses.Accounts = append(expenses.Accounts, IncomeStatementAccount{Code: acc.Code, Name: acc.Name, Amount: fixed(amount)})
			expenseTotal = expenseTotal.Add(amount)
		}
	}

	income.Total = fixed(incomeTotal)
	expenses.Total = fixed(expenseTotal)
	netProfit := incomeTotal.Sub(expenseTotal)

	margin := decimal.Zero
	if !incomeTotal.IsZero() {
		margin = netProfit.Div(incomeTotal).Mul(decimal.NewFromInt(100)).Round(2)
	}

	return IncomeStatement{
		StartDate:    start,
		EndDate:      end,
		Income:       income,
		Expenses:     expenses,
		NetProfit:    fixed(netProfit),
		ProfitMargin: fixed(margin),
	}
}
