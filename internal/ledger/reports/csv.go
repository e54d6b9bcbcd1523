package reports

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// money renders a fixed-point amount with digit grouping for export.
func money(amount string) string {
	f, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return amount
	}
	return printer.Sprintf("%.2f", f)
}

func writeCSV(records [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// TrialBalanceCSV renders the trial balance for download.
func TrialBalanceCSV(report TrialBalance) ([]byte, error) {
	records := [][]string{
		{"Trial Balance as of " + report.AsOfDate},
		{"Code", "Account", "Type", "Debit", "Credit", "Balance"},
	}
	for _, row := range report.Accounts {
		records = append(records, []string{row.Code, row.Name, row.Type, money(row.Debit), money(row.Credit), money(row.Balance)})
	}
	records = append(records, []string{"", "Total", "", money(report.TotalDebit), money(report.TotalCredit), ""})
	return writeCSV(records)
}

// BalanceSheetCSV renders the balance sheet for download.
func BalanceSheetCSV(report BalanceSheet) ([]byte, error) {
	records := [][]string{
		{"Balance Sheet as of " + report.AsOfDate},
	}
	for _, section := range []BalanceSheetSection{report.Assets, report.Liabilities, report.Equity} {
		records = append(records, []string{section.Label})
		for _, acc := range section.Accounts {
			records = append(records, []string{acc.Code, acc.Name, money(acc.Balance)})
		}
		records = append(records, []string{"", "Total " + section.Label, money(section.Total)})
	}
	records = append(records, []string{"", "Total Liabilities and Equity", money(report.TotalLiabilitiesAndEquity)})
	return writeCSV(records)
}

// IncomeStatementCSV renders the income statement for download.
func IncomeStatementCSV(report IncomeStatement) ([]byte, error) {
	records := [][]string{
		{"Income Statement " + report.StartDate + " to " + report.EndDate},
	}
	for _, section := range []IncomeStatementSection{report.Income, report.Expenses} {
		records = append(records, []string{section.Label})
		for _, acc := range section.Accounts {
			records = append(records, []string{acc.Code, acc.Name, money(acc.Amount)})
		}
		records = append(records, []string{"", "Total " + section.Label, money(section.Total)})
	}
	records = append(records,
		[]string{"", "Net Profit", money(report.NetProfit)},
		[]string{"", "Profit Margin %", report.ProfitMargin},
	)
	return writeCSV(records)
}

// CashFlowCSV renders the cash flow statement for download.
func CashFlowCSV(report CashFlowStatement) ([]byte, error) {
	records := [][]string{
		{"Cash Flow Statement " + report.StartDate + " to " + report.EndDate},
		{"", "Opening Balance", money(report.OpeningBalance)},
	}
	for _, section := range []CashFlowSectionReport{report.Operating, report.Investing, report.Financing} {
		records = append(records, []string{section.Label})
		for _, entry := range section.Entries {
			records = append(records, []string{entry.Date, entry.Description, money(entry.Inflow), money(entry.Outflow)})
		}
		records = append(records, []string{"", "Net " + section.Label, money(section.Net), ""})
	}
	records = append(records, []string{"", "Ending Balance", money(report.EndingBalance), ""})
	return writeCSV(records)
}
