package ledger

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type seedAccount struct {
	code     string
	name     string
	typeName string
	section  *CashFlowSection
	role     AccountRole
}

func sectionPtr(s CashFlowSection) *CashFlowSection { return &s }

func defaultTypes() []AccountTypeInput {
	return []AccountTypeInput{
		{Name: "Asset", NormalBalance: NormalBalanceDebit},
		{Name: "Liability", NormalBalance: NormalBalanceCredit},
		{Name: "Equity", NormalBalance: NormalBalanceCredit},
		{Name: "Income", NormalBalance: NormalBalanceCredit},
		{Name: "Expense", NormalBalance: NormalBalanceDebit},
	}
}

func defaultChart() []seedAccount {
	return []seedAccount{
		{code: "1010", name: "Cash", typeName: "Asset", section: sectionPtr(SectionOperating), role: RoleCash},
		{code: "1020", name: "Bank", typeName: "Asset", section: sectionPtr(SectionOperating), role: RoleBank},
		{code: "1030", name: "Mobile Money", typeName: "Asset", section: sectionPtr(SectionOperating), role: RoleMobileMoney},
		{code: "1100", name: "Accounts Receivable", typeName: "Asset", role: RoleAccountsReceivable},
		{code: "1200", name: "Inventory", typeName: "Asset", role: RoleInventoryAsset},
		{code: "1500", name: "Fixed Assets", typeName: "Asset"},
		{code: "2100", name: "Accounts Payable", typeName: "Liability", role: RoleAccountsPayable},
		{code: "3100", name: "Retained Earnings", typeName: "Equity"},
		{code: "4100", name: "Tuition Revenue", typeName: "Income", role: RoleTuitionRevenue},
		{code: "4200", name: "Hostel Revenue", typeName: "Income"},
		{code: "4300", name: "Library Fines", typeName: "Income"},
		{code: "5100", name: "Salaries & Wages", typeName: "Expense", role: RoleSalariesExpense},
		{code: "5200", name: "Vendor Payments", typeName: "Expense", role: RoleVendorPayments},
		{code: "5300", name: "Utilities", typeName: "Expense"},
	}
}

// Seed installs the default college chart of accounts and role mappings.
// It is idempotent: existing types, accounts, and roles are left alone.
func Seed(ctx context.Context, db *pgxpool.Pool) error {
	for _, t := range defaultTypes() {
		if _, err := db.Exec(ctx, `INSERT INTO account_types (name, normal_balance) VALUES ($1,$2)
ON CONFLICT (name) DO NOTHING`, t.Name, t.NormalBalance); err != nil {
			return fmt.Errorf("ledger: seed type %s: %w", t.Name, err)
		}
	}
	for _, a := range defaultChart() {
		if _, err := db.Exec(ctx, `INSERT INTO accounts (code, name, type_id, normal_balance, cash_flow_section, is_default)
SELECT $1, $2, t.id, t.normal_balance, $4, TRUE FROM account_types t WHERE t.name=$3
ON CONFLICT (code) DO NOTHING`, a.code, a.name, a.typeName, sectionValue(a.section)); err != nil {
			return fmt.Errorf("ledger: seed account %s: %w", a.code, err)
		}
		if a.role == "" {
			continue
		}
		if _, err := db.Exec(ctx, `INSERT INTO account_roles (role, account_id)
SELECT $1, a.id FROM accounts a WHERE a.code=$2
ON CONFLICT (role) DO NOTHING`, a.role, a.code); err != nil {
			return fmt.Errorf("ledger: seed role %s: %w", a.role, err)
		}
	}
	return nil
}
