package ledger

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	accounts     map[int64]Account
	types        map[int64]AccountType
	entries      map[int64]*JournalEntry
	lines        map[int64][]LineInput
	sourceLinks  map[string]int64
	typePosted   map[int64]bool
	nextEntryID  int64
	nextTypeID   int64
	nextAcctID   int64
	failInsertAt int // fail InsertLines after N successful calls, 0 disables
	lineInserts  int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		accounts:    make(map[int64]Account),
		types:       make(map[int64]AccountType),
		entries:     make(map[int64]*JournalEntry),
		lines:       make(map[int64][]LineInput),
		sourceLinks: make(map[string]int64),
		typePosted:  make(map[int64]bool),
		nextEntryID: 1,
		nextTypeID:  1,
		nextAcctID:  1,
	}
}

func (m *memoryRepo) addAccount(code, name string, normal NormalBalance, archived bool) Account {
	a := Account{
		ID:            m.nextAcctID,
		Code:          code,
		Name:          name,
		NormalBalance: normal,
		Archived:      archived,
	}
	m.accounts[a.ID] = a
	m.nextAcctID++
	return a
}

// WithTx snapshots entry state so a failing fn leaves nothing behind,
// mirroring the rollback of the real repository.
func (m *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	entriesBefore := make(map[int64]*JournalEntry, len(m.entries))
	for k, v := range m.entries {
		cp := *v
		entriesBefore[k] = &cp
	}
	linesBefore := make(map[int64][]LineInput, len(m.lines))
	for k, v := range m.lines {
		linesBefore[k] = append([]LineInput(nil), v...)
	}
	linksBefore := make(map[string]int64, len(m.sourceLinks))
	for k, v := range m.sourceLinks {
		linksBefore[k] = v
	}
	nextBefore := m.nextEntryID
	if err := fn(ctx, (*memoryTx)(m)); err != nil {
		m.entries = entriesBefore
		m.lines = linesBefore
		m.sourceLinks = linksBefore
		m.nextEntryID = nextBefore
		return err
	}
	return nil
}

func (m *memoryRepo) ListAccountTypes(ctx context.Context, includeArchived bool) ([]AccountType, error) {
	var out []AccountType
	for _, t := range m.types {
		if !includeArchived && t.Archived {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (m *memoryRepo) GetAccountType(ctx context.Context, id int64) (AccountType, error) {
	t, ok := m.types[id]
	if !ok {
		return AccountType{}, ErrTypeNotFound
	}
	return t, nil
}

func (m *memoryRepo) ListAccounts(ctx context.Context, includeArchived bool) ([]Account, error) {
	var out []Account
	for _, a := range m.accounts {
		if !includeArchived && a.Archived {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *memoryRepo) GetAccount(ctx context.Context, id int64) (Account, error) {
	a, ok := m.accounts[id]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return a, nil
}

func (m *memoryRepo) ListEntries(ctx context.Context) ([]JournalEntry, error) {
	var out []JournalEntry
	for _, e := range m.entries {
		out = append(out, *e)
	}
	return out, nil
}

func (m *memoryRepo) GetEntry(ctx context.Context, id int64) (JournalEntry, error) {
	e, ok := m.entries[id]
	if !ok {
		return JournalEntry{}, ErrEntryNotFound
	}
	return *e, nil
}

func (m *memoryRepo) ListTransactions(ctx context.Context, filter TransactionFilter) ([]Transaction, error) {
	var out []Transaction
	for entryID, lines := range m.lines {
		for _, l := range lines {
			if filter.AccountID != nil && *filter.AccountID != l.AccountID {
				continue
			}
			if filter.IsDebit != nil && *filter.IsDebit != l.IsDebit {
				continue
			}
			out = append(out, Transaction{EntryID: entryID, AccountID: l.AccountID, Amount: l.Amount, IsDebit: l.IsDebit})
		}
	}
	return out, nil
}

func (m *memoryRepo) EntryIDBySource(ctx context.Context, module string, ref uuid.UUID) (int64, error) {
	id, ok := m.sourceLinks[module+"/"+ref.String()]
	if !ok {
		return 0, ErrEntryNotFound
	}
	return id, nil
}

type memoryTx memoryRepo

func (m *memoryTx) GetAccounts(ctx context.Context, ids []int64) (map[int64]Account, error) {
	out := make(map[int64]Account, len(ids))
	for _, id := range ids {
		if a, ok := m.accounts[id]; ok {
			out[id] = a
		}
	}
	return out, nil
}

func (m *memoryTx) InsertEntry(ctx context.Context, in EntryInput) (JournalEntry, error) {
	e := JournalEntry{
		ID:          m.nextEntryID,
		Date:        in.Date,
		Description: in.Description,
		Reference:   in.Reference,
		CreatedBy:   in.CreatedBy,
	}
	m.nextEntryID++
	m.entries[e.ID] = &e
	return e, nil
}

func (m *memoryTx) InsertLines(ctx context.Context, entryID int64, lines []LineInput) error {
	m.lineInserts++
	if m.failInsertAt > 0 && m.lineInserts >= m.failInsertAt {
		return context.DeadlineExceeded
	}
	m.lines[entryID] = append([]LineInput(nil), lines...)
	return nil
}

func (m *memoryTx) LinkSource(ctx context.Context, module string, ref uuid.UUID, entryID int64) error {
	key := module + "/" + ref.String()
	if _, exists := m.sourceLinks[key]; exists {
		return ErrSourceAlreadyLinked
	}
	m.sourceLinks[key] = entryID
	return nil
}

func (m *memoryTx) GetEntryForUpdate(ctx context.Context, entryID int64) (JournalEntry, error) {
	e, ok := m.entries[entryID]
	if !ok {
		return JournalEntry{}, ErrEntryNotFound
	}
	out := *e
	for _, l := range m.lines[entryID] {
		out.Lines = append(out.Lines, Transaction{EntryID: entryID, AccountID: l.AccountID, Amount: l.Amount, IsDebit: l.IsDebit})
	}
	return out, nil
}

func (m *memoryTx) SetReversedBy(ctx context.Context, entryID, reversalID int64) error {
	e, ok := m.entries[entryID]
	if !ok {
		return ErrEntryNotFound
	}
	if e.ReversedBy != nil {
		return ErrAlreadyReversed
	}
	e.ReversedBy = &reversalID
	return nil
}

func (m *memoryTx) InsertAccountType(ctx context.Context, in AccountTypeInput) (AccountType, error) {
	t := AccountType{ID: m.nextTypeID, Name: in.Name, NormalBalance: in.NormalBalance}
	m.nextTypeID++
	m.types[t.ID] = t
	return t, nil
}

func (m *memoryTx) GetAccountTypeForUpdate(ctx context.Context, id int64) (AccountType, error) {
	t, ok := m.types[id]
	if !ok {
		return AccountType{}, ErrTypeNotFound
	}
	return t, nil
}

func (m *memoryTx) TypeHasTransactions(ctx context.Context, typeID int64) (bool, error) {
	return m.typePosted[typeID], nil
}

func (m *memoryTx) UpdateAccountType(ctx context.Context, id int64, in AccountTypeInput) (AccountType, error) {
	t, ok := m.types[id]
	if !ok {
		return AccountType{}, ErrTypeNotFound
	}
	t.Name = in.Name
	t.NormalBalance = in.NormalBalance
	m.types[id] = t
	return t, nil
}

func (m *memoryTx) SetAccountTypeArchived(ctx context.Context, id int64, archived bool) error {
	t, ok := m.types[id]
	if !ok {
		return ErrTypeNotFound
	}
	t.Archived = archived
	m.types[id] = t
	return nil
}

func (m *memoryTx) InsertAccount(ctx context.Context, in AccountInput, normal NormalBalance) (Account, error) {
	a := Account{
		ID:              m.nextAcctID,
		Code:            in.Code,
		Name:            in.Name,
		TypeID:          in.TypeID,
		NormalBalance:   normal,
		CashFlowSection: in.CashFlowSection,
		IsDefault:       in.IsDefault,
	}
	m.nextAcctID++
	m.accounts[a.ID] = a
	return a, nil
}

func (m *memoryTx) UpdateAccount(ctx context.Context, id int64, in AccountInput) (Account, error) {
	a, ok := m.accounts[id]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	a.Code = in.Code
	a.Name = in.Name
	a.CashFlowSection = in.CashFlowSection
	a.IsDefault = in.IsDefault
	m.accounts[id] = a
	return a, nil
}

func (m *memoryTx) SetAccountArchived(ctx context.Context, id int64, archived bool) error {
	a, ok := m.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}
	a.Archived = archived
	m.accounts[id] = a
	return nil
}

func newTestService(repo *memoryRepo) *Service {
	svc := NewService(repo, nil, slog.Default())
	svc.WithNow(func() time.Time { return time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC) })
	return svc
}

func balancedInput(debitID, creditID int64, amount string) EntryInput {
	return EntryInput{
		Description: "Fee payment from student S-1001",
		Reference:   "RCPT-1",
		CreatedBy:   1,
		Lines: []LineInput{
			{AccountID: debitID, Amount: decimal.RequireFromString(amount), IsDebit: true},
			{AccountID: creditID, Amount: decimal.RequireFromString(amount), IsDebit: false},
		},
	}
}

func TestCreateEntryBalanced(t *testing.T) {
	repo := newMemoryRepo()
	cash := repo.addAccount("1010", "Cash", NormalBalanceDebit, false)
	tuition := repo.addAccount("4100", "Tuition Revenue", NormalBalanceCredit, false)
	svc := newTestService(repo)

	entry, err := svc.CreateEntry(context.Background(), balancedInput(cash.ID, tuition.ID, "5000.00"))
	require.NoError(t, err)
	require.NotZero(t, entry.ID)
	require.Len(t, entry.Lines, 2)
	require.True(t, entry.Lines[0].IsDebit)
	require.Equal(t, "5000.00", entry.Lines[0].Amount.StringFixed(2))
	require.Len(t, repo.lines[entry.ID], 2)
}

func TestCreateEntryUnbalancedPersistsNothing(t *testing.T) {
	repo := newMemoryRepo()
	cash := repo.addAccount("1010", "Cash", NormalBalanceDebit, false)
	tuition := repo.addAccount("4100", "Tuition Revenue", NormalBalanceCredit, false)
	svc := newTestService(repo)

	in := balancedInput(cash.ID, tuition.ID, "5000.00")
	in.Lines[1].Amount = decimal.RequireFromString("4999.99")

	_, err := svc.CreateEntry(context.Background(), in)
	require.ErrorIs(t, err, ErrUnbalanced)
	require.Empty(t, repo.entries)
	require.Empty(t, repo.lines)
}

func TestCreateEntryTxFailureRollsBack(t *testing.T) {
	repo := newMemoryRepo()
	cash := repo.addAccount("1010", "Cash", NormalBalanceDebit, false)
	tuition := repo.addAccount("4100", "Tuition Revenue", NormalBalanceCredit, false)
	repo.failInsertAt = 1
	svc := newTestService(repo)

	_, err := svc.CreateEntry(context.Background(), balancedInput(cash.ID, tuition.ID, "100.00"))
	require.Error(t, err)
	require.Empty(t, repo.entries, "entry must not survive a failed line insert")
}

func TestCreateEntryRejectsArchivedAccount(t *testing.T) {
	repo := newMemoryRepo()
	cash := repo.addAccount("1010", "Cash", NormalBalanceDebit, true)
	tuition := repo.addAccount("4100", "Tuition Revenue", NormalBalanceCredit, false)
	svc := newTestService(repo)

	_, err := svc.CreateEntry(context.Background(), balancedInput(cash.ID, tuition.ID, "100.00"))
	require.ErrorIs(t, err, ErrAccountArchived)
}

func TestCreateEntryRejectsUnknownAccount(t *testing.T) {
	repo := newMemoryRepo()
	cash := repo.addAccount("1010", "Cash", NormalBalanceDebit, false)
	svc := newTestService(repo)

	_, err := svc.CreateEntry(context.Background(), balancedInput(cash.ID, 999, "100.00"))
	require.ErrorIs(t, err, ErrAccountNotFound)
}

func TestCreateEntrySourceIdempotency(t *testing.T) {
	repo := newMemoryRepo()
	cash := repo.addAccount("1010", "Cash", NormalBalanceDebit, false)
	tuition := repo.addAccount("4100", "Tuition Revenue", NormalBalanceCredit, false)
	svc := newTestService(repo)

	in := balancedInput(cash.ID, tuition.ID, "250.00")
	in.SourceModule = "finance.fee_payment"
	in.SourceID = uuid.NewSHA1(uuid.NameSpaceURL, []byte("campus://finance.fee_payment/1"))

	first, err := svc.CreateEntry(context.Background(), in)
	require.NoError(t, err)

	_, err = svc.CreateEntry(context.Background(), in)
	require.ErrorIs(t, err, ErrSourceAlreadyLinked)
	require.Len(t, repo.entries, 1, "second delivery must not create another entry")

	linked, err := svc.EntryBySource(context.Background(), in.SourceModule, in.SourceID)
	require.NoError(t, err)
	require.Equal(t, first.ID, linked)
}

func TestReverseEntryNetsToZero(t *testing.T) {
	repo := newMemoryRepo()
	cash := repo.addAccount("1010", "Cash", NormalBalanceDebit, false)
	tuition := repo.addAccount("4100", "Tuition Revenue", NormalBalanceCredit, false)
	svc := newTestService(repo)

	original, err := svc.CreateEntry(context.Background(), balancedInput(cash.ID, tuition.ID, "5000.00"))
	require.NoError(t, err)

	reversal, err := svc.ReverseEntry(context.Background(), original.ID, 7)
	require.NoError(t, err)
	require.Equal(t, "REVERSAL: "+original.Description, reversal.Description)
	require.Equal(t, "REV-"+original.Reference, reversal.Reference)

	// Every line mirrored with the side flipped.
	require.Len(t, reversal.Lines, 2)
	for i, line := range reversal.Lines {
		orig := original.Lines[i]
		require.Equal(t, orig.AccountID, line.AccountID)
		require.True(t, orig.Amount.Equal(line.Amount))
		require.Equal(t, !orig.IsDebit, line.IsDebit)
	}

	// Net movement per account across both entries is zero.
	for _, acct := range []int64{cash.ID, tuition.ID} {
		net := decimal.Zero
		for _, entryID := range []int64{original.ID, reversal.ID} {
			for _, l := range repo.lines[entryID] {
				if l.AccountID != acct {
					continue
				}
				if l.IsDebit {
					net = net.Add(l.Amount)
				} else {
					net = net.Sub(l.Amount)
				}
			}
		}
		require.True(t, net.IsZero(), "account %d nets to %s", acct, net)
	}

	stored, err := svc.GetEntry(context.Background(), original.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ReversedBy)
	require.Equal(t, reversal.ID, *stored.ReversedBy)
}

func TestReverseEntryTwiceFails(t *testing.T) {
	repo := newMemoryRepo()
	cash := repo.addAccount("1010", "Cash", NormalBalanceDebit, false)
	tuition := repo.addAccount("4100", "Tuition Revenue", NormalBalanceCredit, false)
	svc := newTestService(repo)

	original, err := svc.CreateEntry(context.Background(), balancedInput(cash.ID, tuition.ID, "5000.00"))
	require.NoError(t, err)

	_, err = svc.ReverseEntry(context.Background(), original.ID, 7)
	require.NoError(t, err)

	_, err = svc.ReverseEntry(context.Background(), original.ID, 7)
	require.ErrorIs(t, err, ErrAlreadyReversed)
	require.Len(t, repo.entries, 2, "failed second reversal must not add an entry")
}

func TestReverseEntryMissing(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	_, err := svc.ReverseEntry(context.Background(), 42, 1)
	require.ErrorIs(t, err, ErrEntryNotFound)
}

func TestCreateAccountCopiesNormalBalance(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	typ, err := svc.CreateAccountType(context.Background(), AccountTypeInput{Name: "Income", NormalBalance: NormalBalanceCredit})
	require.NoError(t, err)

	acct, err := svc.CreateAccount(context.Background(), AccountInput{Code: "4100", Name: "Tuition Revenue", TypeID: typ.ID})
	require.NoError(t, err)
	require.Equal(t, NormalBalanceCredit, acct.NormalBalance)
}

func TestUpdateAccountTypeNormalBalanceLocked(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	typ, err := svc.CreateAccountType(context.Background(), AccountTypeInput{Name: "Income", NormalBalance: NormalBalanceCredit})
	require.NoError(t, err)
	repo.typePosted[typ.ID] = true

	_, err = svc.UpdateAccountType(context.Background(), typ.ID, AccountTypeInput{Name: "Income", NormalBalance: NormalBalanceDebit})
	require.ErrorIs(t, err, ErrNormalBalanceLocked)

	// Rename without flipping the side still works.
	renamed, err := svc.UpdateAccountType(context.Background(), typ.ID, AccountTypeInput{Name: "Revenue", NormalBalance: NormalBalanceCredit})
	require.NoError(t, err)
	require.Equal(t, "Revenue", renamed.Name)
}
