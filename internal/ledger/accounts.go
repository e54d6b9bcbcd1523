package ledger

import (
	"context"
	"errors"
	"strings"
)

// AccountTypeInput carries fields for creating or updating an account type.
type AccountTypeInput struct {
	Name          string
	NormalBalance NormalBalance
}

// AccountInput carries fields for creating or updating an account.
type AccountInput struct {
	Code            string
	Name            string
	TypeID          int64
	CashFlowSection *CashFlowSection
	IsDefault       bool
}

func (in AccountTypeInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return errors.New("ledger: account type name required")
	}
	if !in.NormalBalance.Valid() {
		return errors.New("ledger: normal balance must be DEBIT or CREDIT")
	}
	return nil
}

func (in AccountInput) validate() error {
	if strings.TrimSpace(in.Code) == "" {
		return errors.New("ledger: account code required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return errors.New("ledger: account name required")
	}
	if in.TypeID == 0 {
		return errors.New("ledger: account type required")
	}
	if in.CashFlowSection != nil && !in.CashFlowSection.Valid() {
		return errors.New("ledger: unknown cash flow section")
	}
	return nil
}

// CreateAccountType registers a new account type.
func (s *Service) CreateAccountType(ctx context.Context, input AccountTypeInput) (AccountType, error) {
	if err := input.validate(); err != nil {
		return AccountType{}, err
	}
	var created AccountType
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		created, err = tx.InsertAccountType(ctx, input)
		return err
	})
	return created, err
}

// UpdateAccountType renames a type or changes its normal balance. The
// normal balance change is rejected when any account of the type already
// has posted transactions, since flipping it would misstate history.
func (s *Service) UpdateAccountType(ctx context.Context, id int64, input AccountTypeInput) (AccountType, error) {
	if err := input.validate(); err != nil {
		return AccountType{}, err
	}
	var updated AccountType
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetAccountTypeForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if input.NormalBalance != current.NormalBalance {
			posted, err := tx.TypeHasTransactions(ctx, id)
			if err != nil {
				return err
			}
			if posted {
				return ErrNormalBalanceLocked
			}
		}
		updated, err = tx.UpdateAccountType(ctx, id, input)
		return err
	})
	return updated, err
}

// ArchiveAccountType soft-deletes a type, preserving referential integrity.
func (s *Service) ArchiveAccountType(ctx context.Context, id int64) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.SetAccountTypeArchived(ctx, id, true)
	})
}

// ListAccountTypes lists account types.
func (s *Service) ListAccountTypes(ctx context.Context, includeArchived bool) ([]AccountType, error) {
	return s.repo.ListAccountTypes(ctx, includeArchived)
}

// GetAccountType fetches one account type.
func (s *Service) GetAccountType(ctx context.Context, id int64) (AccountType, error) {
	return s.repo.GetAccountType(ctx, id)
}

// CreateAccount registers an account, copying the normal balance from its
// type at creation time.
func (s *Service) CreateAccount(ctx context.Context, input AccountInput) (Account, error) {
	if err := input.validate(); err != nil {
		return Account{}, err
	}
	var created Account
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		typ, err := tx.GetAccountTypeForUpdate(ctx, input.TypeID)
		if err != nil {
			return err
		}
		if typ.Archived {
			return errors.New("ledger: cannot create account under archived type")
		}
		created, err = tx.InsertAccount(ctx, input, typ.NormalBalance)
		return err
	})
	return created, err
}

// UpdateAccount changes mutable account metadata. The normal balance and
// the owning type stay fixed.
func (s *Service) UpdateAccount(ctx context.Context, id int64, input AccountInput) (Account, error) {
	if err := input.validate(); err != nil {
		return Account{}, err
	}
	var updated Account
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		updated, err = tx.UpdateAccount(ctx, id, input)
		return err
	})
	return updated, err
}

// ArchiveAccount soft-deletes an account; historical transactions keep
// referencing it.
func (s *Service) ArchiveAccount(ctx context.Context, id int64) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.SetAccountArchived(ctx, id, true)
	})
}

// ListAccounts lists chart of accounts entries ordered by code.
func (s *Service) ListAccounts(ctx context.Context, includeArchived bool) ([]Account, error) {
	return s.repo.ListAccounts(ctx, includeArchived)
}

// GetAccount fetches one account.
func (s *Service) GetAccount(ctx context.Context, id int64) (Account, error) {
	return s.repo.GetAccount(ctx, id)
}
