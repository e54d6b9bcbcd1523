package reports

import (
	"sort"

	"github.com/shopspring/decimal"
)

// TrialBalanceRow is one account's totals and net balance.
type TrialBalanceRow struct {
	AccountID     int64  `json:"account_id"`
	Code          string `json:"account_code"`
	Name          string `json:"account_name"`
	Type          string `json:"account_type"`
	NormalBalance string `json:"normal_balance"`
	Debit         string `json:"total_debit"`
	Credit        string `json:"total_credit"`
	Balance       string `json:"balance"`
}

// TrialBalance lists every account's debit/credit totals as of a date.
type TrialBalance struct {
	AsOfDate    string            `json:"as_of_date"`
	Accounts    []TrialBalanceRow `json:"accounts"`
	TotalDebit  string            `json:"total_debit"`
	TotalCredit string            `json:"total_credit"`
	Balanced    bool              `json:"balanced"`
}

// BuildTrialBalance aggregates account movement into a trial balance.
// The report is balanced iff total debits equal total credits.
func BuildTrialBalance(asOf string, accounts []AccountBalance) TrialBalance {
	sorted := append([]AccountBalance(nil), accounts...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Code < sorted[j].Code })

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	rows := make([]TrialBalanceRow, 0, len(sorted))
	for _, acc := range sorted {
		rows = append(rows, TrialBalanceRow{
			AccountID:     acc.AccountID,
			Code:          acc.Code,
			Name:          acc.Name,
			Type:          acc.TypeName,
			NormalBalance: acc.NormalBalance,
			Debit:         fixed(acc.Debit),
			Credit:        fixed(acc.Credit),
			Balance:       fixed(acc.Balance()),
		})
		totalDebit = totalDebit.Add(acc.Debit)
		totalCredit = totalCredit.Add(acc.Credit)
	}

	return TrialBalance{
		AsOfDate:    asOf,
		Accounts:    rows,
		TotalDebit:  fixed(totalDebit),
		TotalCredit: fixed(totalCredit),
		Balanced:    totalDebit.Equal(totalCredit),
	}
}
