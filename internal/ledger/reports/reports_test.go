package reports

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestBuildTrialBalance(t *testing.T) {
	accounts := []AccountBalance{
		{AccountID: 2, Code: "4100", Name: "Tuition Revenue", TypeName: "Income", NormalBalance: "CREDIT", Debit: dec("0"), Credit: dec("5000.00")},
		{AccountID: 1, Code: "1010", Name: "Cash", TypeName: "Asset", NormalBalance: "DEBIT", Debit: dec("5000.00"), Credit: dec("0")},
	}

	tb := BuildTrialBalance("2024-03-15", accounts)
	if len(tb.Accounts) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(tb.Accounts))
	}
	if tb.Accounts[0].Code != "1010" {
		t.Fatalf("rows must sort by code, got %s first", tb.Accounts[0].Code)
	}
	if tb.Accounts[0].Balance != "5000.00" {
		t.Fatalf("unexpected cash balance %s", tb.Accounts[0].Balance)
	}
	if tb.Accounts[1].Balance != "5000.00" {
		t.Fatalf("unexpected revenue balance %s", tb.Accounts[1].Balance)
	}
	if tb.TotalDebit != "5000.00" || tb.TotalCredit != "5000.00" {
		t.Fatalf("unexpected totals debit=%s credit=%s", tb.TotalDebit, tb.TotalCredit)
	}
	if !tb.Balanced {
		t.Fatal("expected balanced trial balance")
	}
}

func TestBuildTrialBalanceUnbalanced(t *testing.T) {
	accounts := []AccountBalance{
		{Code: "1010", NormalBalance: "DEBIT", Debit: dec("100.00"), Credit: dec("0")},
		{Code: "4100", NormalBalance: "CREDIT", Debit: dec("0"), Credit: dec("99.00")},
	}
	tb := BuildTrialBalance("2024-03-15", accounts)
	if tb.Balanced {
		t.Fatal("expected unbalanced flag when debits differ from credits")
	}
}

func TestBuildBalanceSheetRetainedEarnings(t *testing.T) {
	accounts := []AccountBalance{
		{Code: "1010", Name: "Cash", TypeName: "Asset", NormalBalance: "DEBIT", Debit: dec("5000.00"), Credit: dec("1200.00")},
		{Code: "2100", Name: "Accounts Payable", TypeName: "Liability", NormalBalance: "CREDIT", Debit: dec("0"), Credit: dec("800.00")},
		{Code: "4100", Name: "Tuition Revenue", TypeName: "Income", NormalBalance: "CREDIT", Debit: dec("0"), Credit: dec("5000.00")},
		{Code: "5100", Name: "Salaries & Wages", TypeName: "Expense", NormalBalance: "DEBIT", Debit: dec("2000.00"), Credit: dec("0")},
	}

	bs := BuildBalanceSheet("2024-03-15", accounts)
	if bs.Assets.Total != "3800.00" {
		t.Fatalf("unexpected assets total %s", bs.Assets.Total)
	}
	if bs.Liabilities.Total != "800.00" {
		t.Fatalf("unexpected liabilities total %s", bs.Liabilities.Total)
	}
	// Income 5000 minus expenses 2000 lands in retained earnings.
	last := bs.Equity.Accounts[len(bs.Equity.Accounts)-1]
	if last.Name != "Retained Earnings" || last.Balance != "3000.00" {
		t.Fatalf("unexpected retained earnings row %+v", last)
	}
	if bs.TotalLiabilitiesAndEquity != "3800.00" {
		t.Fatalf("unexpected L+E total %s", bs.TotalLiabilitiesAndEquity)
	}
	if !bs.Balanced {
		t.Fatal("expected balance sheet to balance")
	}
}

func TestBuildIncomeStatement(t *testing.T) {
	accounts := []AccountBalance{
		{Code: "4100", Name: "Tuition Revenue", TypeName: "Income", Debit: dec("0"), Credit: dec("5000.00")},
		{Code: "4300", Name: "Library Fines", TypeName: "Income", Debit: dec("50.00"), Credit: dec("250.00")},
		{Code: "5100", Name: "Salaries & Wages", TypeName: "Expense", Debit: dec("2000.00"), Credit: dec("0")},
	}

	is := BuildIncomeStatement("2024-03-01", "2024-03-31", accounts)
	if is.Income.Total != "5200.00" {
		t.Fatalf("unexpected income total %s", is.Income.Total)
	}
	if is.Expenses.Total != "2000.00" {
		t.Fatalf("unexpected expense total %s", is.Expenses.Total)
	}
	if is.NetProfit != "3200.00" {
		t.Fatalf("unexpected net profit %s", is.NetProfit)
	}
	// 3200 / 5200 * 100 rounded to two places.
	if is.ProfitMargin != "61.54" {
		t.Fatalf("unexpected profit margin %s", is.ProfitMargin)
	}
}

func TestBuildIncomeStatementZeroIncome(t *testing.T) {
	accounts := []AccountBalance{
		{Code: "5100", Name: "Salaries & Wages", TypeName: "Expense", Debit: dec("2000.00"), Credit: dec("0")},
	}
	is := BuildIncomeStatement("2024-03-01", "2024-03-31", accounts)
	if is.NetProfit != "-2000.00" {
		t.Fatalf("unexpected net profit %s", is.NetProfit)
	}
	if is.ProfitMargin != "0.00" {
		t.Fatalf("profit margin must be zero when income is zero, got %s", is.ProfitMargin)
	}
}

func TestBuildCashFlowStatement(t *testing.T) {
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	transactions := []CashTransaction{
		{EntryID: 1, EntryDate: day, Description: "Fee payment", Section: "OPERATING", Amount: dec("5000.00"), IsDebit: true},
		{EntryID: 2, EntryDate: day, Description: "Vendor payment", Section: "OPERATING", Amount: dec("1200.00"), IsDebit: false},
		{EntryID: 3, EntryDate: day, Description: "Equipment purchase", Section: "INVESTING", Amount: dec("800.00"), IsDebit: false},
	}

	cf := BuildCashFlowStatement("2024-03-01", "2024-03-31", dec("1000.00"), transactions)
	if len(cf.Operating.Entries) != 2 {
		t.Fatalf("expected 2 operating entries, got %d", len(cf.Operating.Entries))
	}
	if cf.Operating.Net != "3800.00" {
		t.Fatalf("unexpected operating net %s", cf.Operating.Net)
	}
	if cf.Investing.Outflow != "800.00" {
		t.Fatalf("unexpected investing outflow %s", cf.Investing.Outflow)
	}
	if cf.Financing.Net != "0.00" {
		t.Fatalf("unexpected financing net %s", cf.Financing.Net)
	}
	if cf.TotalInflow != "5000.00" || cf.TotalOutflow != "2000.00" {
		t.Fatalf("unexpected totals in=%s out=%s", cf.TotalInflow, cf.TotalOutflow)
	}
	// 1000 opening + 5000 in - 2000 out.
	if cf.EndingBalance != "4000.00" {
		t.Fatalf("unexpected ending balance %s", cf.EndingBalance)
	}
}

func TestBuildCashFlowStatementGroupsByEntry(t *testing.T) {
	day := time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)
	transactions := []CashTransaction{
		{EntryID: 9, EntryDate: day, Description: "Split deposit", Section: "OPERATING", Amount: dec("300.00"), IsDebit: true},
		{EntryID: 9, EntryDate: day, Description: "Split deposit", Section: "OPERATING", Amount: dec("200.00"), IsDebit: true},
	}
	cf := BuildCashFlowStatement("2024-03-01", "2024-03-31", decimal.Zero, transactions)
	if len(cf.Operating.Entries) != 1 {
		t.Fatalf("lines of one entry must group, got %d rows", len(cf.Operating.Entries))
	}
	if cf.Operating.Entries[0].Inflow != "500.00" {
		t.Fatalf("unexpected grouped inflow %s", cf.Operating.Entries[0].Inflow)
	}
}
