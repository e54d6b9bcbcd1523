package reports

import (
	"sort"

	"github.com/shopspring/decimal"
)

// BalanceSheetAccount summarises an account inside a section.
type BalanceSheetAccount struct {
	Code    string `json:"account_code"`
	Name    string `json:"account_name"`
	Balance string `json:"balance"`
}

// BalanceSheetSection contains the accounts and total for a classification.
type BalanceSheetSection struct {
	Label    string                `json:"label"`
	Accounts []BalanceSheetAccount `json:"accounts"`
	Total    string                `json:"total"`
}

// BalanceSheet partitions account balances into assets, liabilities, and
// equity. Income and expense balances are netted into a synthetic
// retained earnings line under equity.
type BalanceSheet struct {
	AsOfDate                  string              `json:"as_of_date"`
	Assets                    BalanceSheetSection `json:"assets"`
	Liabilities               BalanceSheetSection `json:"liabilities"`
	Equity                    BalanceSheetSection `json:"equity"`
	TotalAssets               string              `json:"total_assets"`
	TotalLiabilitiesAndEquity string              `json:"total_liabilities_and_equity"`
	Balanced                  bool                `json:"balanced"`
}

// BuildBalanceSheet aggregates balances as of a date.
func BuildBalanceSheet(asOf string, accounts []AccountBalance) BalanceSheet {
	sorted := append([]AccountBalance(nil), accounts...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Code < sorted[j].Code })

	assets := BalanceSheetSection{Label: "Assets", Accounts: []BalanceSheetAccount{}}
	liabilities := BalanceSheetSection{Label: "Liabilities", Accounts: []BalanceSheetAccount{}}
	equity := BalanceSheetSection{Label: "Equity", Accounts: []BalanceSheetAccount{}}
	assetTotal := decimal.Zero
	liabilityTotal := decimal.Zero
	equityTotal := decimal.Zero
	retained := decimal.Zero

	for _, acc := range sorted {
		balance := acc.Balance()
		row := BalanceSheetAccount{Code: acc.Code, Name: acc.Name, Balance: fixed(balance)}
		switch classify(acc.TypeName) {
		case classAsset:
			assets.Accounts = append(assets.Accounts, row)
			assetTotal = assetTotal.Add(balance)
		case classLiability:
			liabilities.Accounts = append(liabilities.Accounts, row)
			liabilityTotal = liabilityTotal.Add(balance)
		case classEquity:
			equity.Accounts = append(equity.Accounts, row)
			equityTotal = equityTotal.Add(balance)
		case classIncome:
			retained = retained.Add(balance)
		case classExpense:
			retained = retained.Sub(balance)
		}
	}

	equity.Accounts = append(equity.Accounts, BalanceSheetAccount{
		Name:    "Retained Earnings",
		Balance: fixed(retained),
	})
	equityTotal = equityTotal.Add(retained)

	assets.Total = fixed(assetTotal)
	liabilities.Total = fixed(liabilityTotal)
	equity.Total = fixed(equityTotal)
	liabilitiesAndEquity := liabilityTotal.Add(equityTotal)

	return BalanceSheet{
		AsOfDate:                  asOf,
		Assets:                    assets,
		Liabilities:               liabilities,
		Equity:                    equity,
		TotalAssets:               fixed(assetTotal),
		TotalLiabilitiesAndEquity: fixed(liabilitiesAndEquity),
		Balanced:                  assetTotal.Equal(liabilitiesAndEquity),
	}
}
