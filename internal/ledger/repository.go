package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// TxRepository exposes methods available within a posting transaction.
type TxRepository interface {
	GetAccounts(ctx context.Context, ids []int64) (map[int64]Account, error)
	InsertEntry(ctx context.Context, in EntryInput) (JournalEntry, error)
	InsertLines(ctx context.Context, entryID int64, lines []LineInput) error
	LinkSource(ctx context.Context, module string, ref uuid.UUID, entryID int64) error
	GetEntryForUpdate(ctx context.Context, entryID int64) (JournalEntry, error)
	SetReversedBy(ctx context.Context, entryID, reversalID int64) error

	InsertAccountType(ctx context.Context, in AccountTypeInput) (AccountType, error)
	GetAccountTypeForUpdate(ctx context.Context, id int64) (AccountType, error)
	TypeHasTransactions(ctx context.Context, typeID int64) (bool, error)
	UpdateAccountType(ctx context.Context, id int64, in AccountTypeInput) (AccountType, error)
	SetAccountTypeArchived(ctx context.Context, id int64, archived bool) error

	InsertAccount(ctx context.Context, in AccountInput, normal NormalBalance) (Account, error)
	UpdateAccount(ctx context.Context, id int64, in AccountInput) (Account, error)
	SetAccountArchived(ctx context.Context, id int64, archived bool) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the Postgres-backed ledger repository.
func NewRepository(db *pgxpool.Pool) RepositoryPort {
	return &repository{db: db}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	wrapper := &txRepository{tx: tx}
	if err := fn(ctx, wrapper); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

const accountColumns = `a.id, a.code, a.name, a.type_id, t.name, a.normal_balance, a.cash_flow_section, a.is_default, a.archived, a.created_at, a.updated_at`

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	var section *string
	err := row.Scan(&a.ID, &a.Code, &a.Name, &a.TypeID, &a.TypeName, &a.NormalBalance, &section, &a.IsDefault, &a.Archived, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return Account{}, err
	}
	if section != nil {
		s := CashFlowSection(*section)
		a.CashFlowSection = &s
	}
	return a, nil
}

func (r *repository) ListAccountTypes(ctx context.Context, includeArchived bool) ([]AccountType, error) {
	query := `SELECT id, name, normal_balance, archived, created_at, updated_at FROM account_types`
	if !includeArchived {
		query += ` WHERE NOT archived`
	}
	query += ` ORDER BY name`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var types []AccountType
	for rows.Next() {
		var t AccountType
		if err := rows.Scan(&t.ID, &t.Name, &t.NormalBalance, &t.Archived, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

func (r *repository) GetAccountType(ctx context.Context, id int64) (AccountType, error) {
	var t AccountType
	err := r.db.QueryRow(ctx, `SELECT id, name, normal_balance, archived, created_at, updated_at FROM account_types WHERE id=$1`, id).
		Scan(&t.ID, &t.Name, &t.NormalBalance, &t.Archived, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AccountType{}, ErrTypeNotFound
		}
		return AccountType{}, err
	}
	return t, nil
}

func (r *repository) ListAccounts(ctx context.Context, includeArchived bool) ([]Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts a JOIN account_types t ON t.id=a.type_id`
	if !includeArchived {
		query += ` WHERE NOT a.archived`
	}
	query += ` ORDER BY a.code`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var accounts []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *repository) GetAccount(ctx context.Context, id int64) (Account, error) {
	a, err := scanAccount(r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts a JOIN account_types t ON t.id=a.type_id WHERE a.id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, err
	}
	return a, nil
}

const entryColumns = `id, date, description, reference, created_by, reversed_by, created_at`

func (r *repository) ListEntries(ctx context.Context) ([]JournalEntry, error) {
	rows, err := r.db.Query(ctx, `SELECT `+entryColumns+` FROM journal_entries ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []JournalEntry
	index := make(map[int64]int)
	for rows.Next() {
		var e JournalEntry
		if err := rows.Scan(&e.ID, &e.Date, &e.Description, &e.Reference, &e.CreatedBy, &e.ReversedBy, &e.CreatedAt); err != nil {
			return nil, err
		}
		index[e.ID] = len(entries)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return entries, nil
	}
	entryIDs := make([]int64, 0, len(entries))
	for _, e := range entries {
		entryIDs = append(entryIDs, e.ID)
	}
	lineRows, err := r.db.Query(ctx, `SELECT tr.id, tr.entry_id, tr.account_id, a.code, a.name, tr.amount::text, tr.is_debit, tr.created_at
FROM transactions tr JOIN accounts a ON a.id=tr.account_id WHERE tr.entry_id = ANY($1) ORDER BY tr.id`, entryIDs)
	if err != nil {
		return nil, err
	}
	defer lineRows.Close()
	for lineRows.Next() {
		line, err := scanTransaction(lineRows)
		if err != nil {
			return nil, err
		}
		if idx, ok := index[line.EntryID]; ok {
			entries[idx].Lines = append(entries[idx].Lines, line)
		}
	}
	return entries, lineRows.Err()
}

func (r *repository) GetEntry(ctx context.Context, id int64) (JournalEntry, error) {
	var e JournalEntry
	err := r.db.QueryRow(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE id=$1`, id).
		Scan(&e.ID, &e.Date, &e.Description, &e.Reference, &e.CreatedBy, &e.ReversedBy, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return JournalEntry{}, ErrEntryNotFound
		}
		return JournalEntry{}, err
	}
	rows, err := r.db.Query(ctx, `SELECT tr.id, tr.entry_id, tr.account_id, a.code, a.name, tr.amount::text, tr.is_debit, tr.created_at
FROM transactions tr JOIN accounts a ON a.id=tr.account_id WHERE tr.entry_id=$1 ORDER BY tr.id`, id)
	if err != nil {
		return JournalEntry{}, err
	}
	defer rows.Close()
	for rows.Next() {
		line, err := scanTransaction(rows)
		if err != nil {
			return JournalEntry{}, err
		}
		e.Lines = append(e.Lines, line)
	}
	return e, rows.Err()
}

func (r *repository) ListTransactions(ctx context.Context, filter TransactionFilter) ([]Transaction, error) {
	query := `SELECT tr.id, tr.entry_id, tr.account_id, a.code, a.name, tr.amount::text, tr.is_debit, tr.created_at
FROM transactions tr JOIN accounts a ON a.id=tr.account_id JOIN journal_entries je ON je.id=tr.entry_id`
	var clauses []string
	var args []any
	if filter.AccountID != nil {
		args = append(args, *filter.AccountID)
		clauses = append(clauses, fmt.Sprintf("tr.account_id=$%d", len(args)))
	}
	if filter.Reference != "" {
		args = append(args, filter.Reference)
		clauses = append(clauses, fmt.Sprintf("je.reference=$%d", len(args)))
	}
	if filter.IsDebit != nil {
		args = append(args, *filter.IsDebit)
		clauses = append(clauses, fmt.Sprintf("tr.is_debit=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY tr.id DESC"
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lines []Transaction
	for rows.Next() {
		line, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (r *repository) EntryIDBySource(ctx context.Context, module string, ref uuid.UUID) (int64, error) {
	var entryID int64
	err := r.db.QueryRow(ctx, `SELECT entry_id FROM source_links WHERE module=$1 AND ref_id=$2`, module, ref).
		Scan(&entryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrEntryNotFound
		}
		return 0, err
	}
	return entryID, nil
}

func scanTransaction(row pgx.Row) (Transaction, error) {
	var line Transaction
	var amount string
	if err := row.Scan(&line.ID, &line.EntryID, &line.AccountID, &line.AccountCode, &line.AccountName, &amount, &line.IsDebit, &line.CreatedAt); err != nil {
		return Transaction{}, err
	}
	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return Transaction{}, fmt.Errorf("ledger: parse amount %q: %w", amount, err)
	}
	line.Amount = parsed
	return line, nil
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) GetAccounts(ctx context.Context, ids []int64) (map[int64]Account, error) {
	rows, err := r.tx.Query(ctx, `SELECT `+accountColumns+` FROM accounts a JOIN account_types t ON t.id=a.type_id WHERE a.id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	accounts := make(map[int64]Account, len(ids))
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts[a.ID] = a
	}
	return accounts, rows.Err()
}

func (r *txRepository) InsertEntry(ctx context.Context, in EntryInput) (JournalEntry, error) {
	entry := JournalEntry{
		Date:        in.Date,
		Description: in.Description,
		Reference:   in.Reference,
		CreatedBy:   in.CreatedBy,
	}
	err := r.tx.QueryRow(ctx, `INSERT INTO journal_entries (date, description, reference, created_by)
VALUES ($1,$2,$3,$4) RETURNING id, created_at`, in.Date, in.Description, in.Reference, in.CreatedBy).
		Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return JournalEntry{}, err
	}
	return entry, nil
}

func (r *txRepository) InsertLines(ctx context.Context, entryID int64, lines []LineInput) error {
	for _, line := range lines {
		if _, err := r.tx.Exec(ctx, `INSERT INTO transactions (entry_id, account_id, amount, is_debit)
VALUES ($1,$2,$3,$4)`, entryID, line.AccountID, line.Amount.StringFixed(2), line.IsDebit); err != nil {
			return err
		}
	}
	return nil
}

func (r *txRepository) LinkSource(ctx context.Context, module string, ref uuid.UUID, entryID int64) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO source_links (module, ref_id, entry_id) VALUES ($1,$2,$3)`, module, ref, entryID)
	if isUniqueViolation(err) {
		return ErrSourceAlreadyLinked
	}
	return err
}

func (r *txRepository) GetEntryForUpdate(ctx context.Context, entryID int64) (JournalEntry, error) {
	var e JournalEntry
	err := r.tx.QueryRow(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE id=$1 FOR UPDATE`, entryID).
		Scan(&e.ID, &e.Date, &e.Description, &e.Reference, &e.CreatedBy, &e.ReversedBy, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return JournalEntry{}, ErrEntryNotFound
		}
		return JournalEntry{}, err
	}
	rows, err := r.tx.Query(ctx, `SELECT tr.id, tr.entry_id, tr.account_id, a.code, a.name, tr.amount::text, tr.is_debit, tr.created_at
FROM transactions tr JOIN accounts a ON a.id=tr.account_id WHERE tr.entry_id=$1 ORDER BY tr.id`, entryID)
	if err != nil {
		return JournalEntry{}, err
	}
	defer rows.Close()
	for rows.Next() {
		line, err := scanTransaction(rows)
		if err != nil {
			return JournalEntry{}, err
		}
		e.Lines = append(e.Lines, line)
	}
	return e, rows.Err()
}

func (r *txRepository) SetReversedBy(ctx context.Context, entryID, reversalID int64) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE journal_entries SET reversed_by=$2 WHERE id=$1 AND reversed_by IS NULL`, entryID, reversalID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAlreadyReversed
	}
	return nil
}

func (r *txRepository) InsertAccountType(ctx context.Context, in AccountTypeInput) (AccountType, error) {
	t := AccountType{Name: in.Name, NormalBalance: in.NormalBalance}
	err := r.tx.QueryRow(ctx, `INSERT INTO account_types (name, normal_balance) VALUES ($1,$2)
RETURNING id, archived, created_at, updated_at`, in.Name, in.NormalBalance).
		Scan(&t.ID, &t.Archived, &t.CreatedAt, &t.UpdatedAt)
	if isUniqueViolation(err) {
		return AccountType{}, ErrDuplicateCode
	}
	if err != nil {
		return AccountType{}, err
	}
	return t, nil
}

func (r *txRepository) GetAccountTypeForUpdate(ctx context.Context, id int64) (AccountType, error) {
	var t AccountType
	err := r.tx.QueryRow(ctx, `SELECT id, name, normal_balance, archived, created_at, updated_at FROM account_types WHERE id=$1 FOR UPDATE`, id).
		Scan(&t.ID, &t.Name, &t.NormalBalance, &t.Archived, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AccountType{}, ErrTypeNotFound
		}
		return AccountType{}, err
	}
	return t, nil
}

func (r *txRepository) TypeHasTransactions(ctx context.Context, typeID int64) (bool, error) {
	var exists bool
	err := r.tx.QueryRow(ctx, `SELECT EXISTS (
SELECT 1 FROM transactions tr JOIN accounts a ON a.id=tr.account_id WHERE a.type_id=$1)`, typeID).Scan(&exists)
	return exists, err
}

func (r *txRepository) UpdateAccountType(ctx context.Context, id int64, in AccountTypeInput) (AccountType, error) {
	var t AccountType
	err := r.tx.QueryRow(ctx, `UPDATE account_types SET name=$2, normal_balance=$3, updated_at=NOW() WHERE id=$1
RETURNING id, name, normal_balance, archived, created_at, updated_at`, id, in.Name, in.NormalBalance).
		Scan(&t.ID, &t.Name, &t.NormalBalance, &t.Archived, &t.CreatedAt, &t.UpdatedAt)
	if isUniqueViolation(err) {
		return AccountType{}, ErrDuplicateCode
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AccountType{}, ErrTypeNotFound
		}
		return AccountType{}, err
	}
	return t, nil
}

func (r *txRepository) SetAccountTypeArchived(ctx context.Context, id int64, archived bool) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE account_types SET archived=$2, updated_at=NOW() WHERE id=$1`, id, archived)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrTypeNotFound
	}
	return nil
}

func (r *txRepository) InsertAccount(ctx context.Context, in AccountInput, normal NormalBalance) (Account, error) {
	a := Account{
		Code:            in.Code,
		Name:            in.Name,
		TypeID:          in.TypeID,
		NormalBalance:   normal,
		CashFlowSection: in.CashFlowSection,
		IsDefault:       in.IsDefault,
	}
	err := r.tx.QueryRow(ctx, `INSERT INTO accounts (code, name, type_id, normal_balance, cash_flow_section, is_default)
VALUES ($1,$2,$3,$4,$5,$6) RETURNING id, archived, created_at, updated_at`,
		in.Code, in.Name, in.TypeID, normal, sectionValue(in.CashFlowSection), in.IsDefault).
		Scan(&a.ID, &a.Archived, &a.CreatedAt, &a.UpdatedAt)
	if isUniqueViolation(err) {
		return Account{}, ErrDuplicateCode
	}
	if err != nil {
		return Account{}, err
	}
	return a, nil
}

func (r *txRepository) UpdateAccount(ctx context.Context, id int64, in AccountInput) (Account, error) {
	row := r.tx.QueryRow(ctx, `UPDATE accounts a SET code=$2, name=$3, cash_flow_section=$4, is_default=$5, updated_at=NOW()
FROM account_types t
WHERE a.id=$1 AND t.id=a.type_id
RETURNING a.id, a.code, a.name, a.type_id, t.name, a.normal_balance, a.cash_flow_section, a.is_default, a.archived, a.created_at, a.updated_at`,
		id, in.Code, in.Name, sectionValue(in.CashFlowSection), in.IsDefault)
	a, err := scanAccount(row)
	if isUniqueViolation(err) {
		return Account{}, ErrDuplicateCode
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, err
	}
	return a, nil
}

func (r *txRepository) SetAccountArchived(ctx context.Context, id int64, archived bool) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE accounts SET archived=$2, updated_at=NOW() WHERE id=$1`, id, archived)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func sectionValue(section *CashFlowSection) any {
	if section == nil {
		return nil
	}
	return string(*section)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
