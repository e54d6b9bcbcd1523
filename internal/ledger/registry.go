package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AccountRole names a logical posting target. Event bindings resolve
// roles instead of account names, so renaming an account never breaks
// postings.
type AccountRole string

const (
	RoleCash               AccountRole = "CASH"
	RoleBank               AccountRole = "BANK"
	RoleMobileMoney        AccountRole = "MOBILE_MONEY"
	RoleAccountsReceivable AccountRole = "ACCOUNTS_RECEIVABLE"
	RoleAccountsPayable    AccountRole = "ACCOUNTS_PAYABLE"
	RoleInventoryAsset     AccountRole = "INVENTORY_ASSET"
	RoleTuitionRevenue     AccountRole = "TUITION_REVENUE"
	RoleSalariesExpense    AccountRole = "SALARIES_EXPENSE"
	RoleVendorPayments     AccountRole = "VENDOR_PAYMENTS"
)

// AllRoles lists every role a posting binding may resolve.
func AllRoles() []AccountRole {
	return []AccountRole{
		RoleCash,
		RoleBank,
		RoleMobileMoney,
		RoleAccountsReceivable,
		RoleAccountsPayable,
		RoleInventoryAsset,
		RoleTuitionRevenue,
		RoleSalariesExpense,
		RoleVendorPayments,
	}
}

// RoleSource resolves role mappings to accounts.
type RoleSource interface {
	Lookup(ctx context.Context, role AccountRole) (Account, error)
}

// Registry resolves logical account roles and validates the mapping at
// startup, before any event binding runs.
type Registry struct {
	source RoleSource
}

// NewRegistry constructs a Registry over the given source.
func NewRegistry(source RoleSource) *Registry {
	return &Registry{source: source}
}

// Resolve returns the account mapped to the role. Archived accounts are
// rejected so postings never target retired ledger nodes.
func (r *Registry) Resolve(ctx context.Context, role AccountRole) (Account, error) {
	account, err := r.source.Lookup(ctx, role)
	if err != nil {
		return Account{}, err
	}
	if account.Archived {
		return Account{}, fmt.Errorf("%w: role %s maps to archived account %s", ErrAccountArchived, role, account.Code)
	}
	return account, nil
}

// Validate checks every known role resolves to an active account.
func (r *Registry) Validate(ctx context.Context) error {
	var problems []error
	for _, role := range AllRoles() {
		if _, err := r.Resolve(ctx, role); err != nil {
			problems = append(problems, fmt.Errorf("role %s: %w", role, err))
		}
	}
	return errors.Join(problems...)
}

type roleSource struct {
	db *pgxpool.Pool
}

// NewRoleSource constructs the Postgres-backed role source.
func NewRoleSource(db *pgxpool.Pool) RoleSource {
	return &roleSource{db: db}
}

func (s *roleSource) Lookup(ctx context.Context, role AccountRole) (Account, error) {
	row := s.db.QueryRow(ctx, `SELECT `+accountColumns+`
FROM account_roles r
JOIN accounts a ON a.id=r.account_id
JOIN account_types t ON t.id=a.type_id
WHERE r.role=$1`, role)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, fmt.Errorf("%w: %s", ErrRoleNotMapped, role)
		}
		return Account{}, err
	}
	return account, nil
}
