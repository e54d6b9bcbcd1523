package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// RepositoryPort abstracts transactional repository behaviour.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error

	ListAccountTypes(ctx context.Context, includeArchived bool) ([]AccountType, error)
	GetAccountType(ctx context.Context, id int64) (AccountType, error)
	ListAccounts(ctx context.Context, includeArchived bool) ([]Account, error)
	GetAccount(ctx context.Context, id int64) (Account, error)
	ListEntries(ctx context.Context) ([]JournalEntry, error)
	GetEntry(ctx context.Context, id int64) (JournalEntry, error)
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]Transaction, error)
	EntryIDBySource(ctx context.Context, module string, ref uuid.UUID) (int64, error)
}

// Bumper invalidates derived report caches after a posting.
type Bumper interface {
	Bump(ctx context.Context) error
}

// Service coordinates the chart of accounts and journal postings.
type Service struct {
	repo   RepositoryPort
	bumper Bumper
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs the ledger service.
func NewService(repo RepositoryPort, bumper Bumper, logger *slog.Logger) *Service {
	return &Service{repo: repo, bumper: bumper, logger: logger, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// CreateEntry validates and persists a balanced journal entry with its
// lines in a single transaction. Nothing is persisted on failure.
func (s *Service) CreateEntry(ctx context.Context, input EntryInput) (JournalEntry, error) {
	if err := input.Validate(); err != nil {
		return JournalEntry{}, err
	}
	if input.Date.IsZero() {
		input.Date = s.now()
	}
	var entry JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		accounts, err := tx.GetAccounts(ctx, lineAccountIDs(input.Lines))
		if err != nil {
			return err
		}
		for _, line := range input.Lines {
			acc, ok := accounts[line.AccountID]
			if !ok {
				return fmt.Errorf("%w: id %d", ErrAccountNotFound, line.AccountID)
			}
			if acc.Archived {
				return fmt.Errorf("%w: %s", ErrAccountArchived, acc.Code)
			}
		}
		inserted, err := tx.InsertEntry(ctx, input)
		if err != nil {
			return err
		}
		if err := tx.InsertLines(ctx, inserted.ID, input.Lines); err != nil {
			return err
		}
		if input.SourceModule != "" {
			if err := tx.LinkSource(ctx, input.SourceModule, input.SourceID, inserted.ID); err != nil {
				return err
			}
		}
		entry = inserted
		entry.Lines = toTransactions(inserted.ID, input.Lines, accounts)
		return nil
	})
	if err != nil {
		return JournalEntry{}, err
	}
	s.bump(ctx)
	return entry, nil
}

// ReverseEntry creates a mirror-image entry dated today and links it to
// the original. The net effect of original plus reversal on every touched
// account is zero. Reversing twice fails.
func (s *Service) ReverseEntry(ctx context.Context, entryID, actorID int64) (JournalEntry, error) {
	if entryID == 0 {
		return JournalEntry{}, errors.New("ledger: entry id required")
	}
	var reversal JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		original, err := tx.GetEntryForUpdate(ctx, entryID)
		if err != nil {
			return err
		}
		if original.ReversedBy != nil {
			return ErrAlreadyReversed
		}
		input := EntryInput{
			Date:        s.now(),
			Description: "REVERSAL: " + original.Description,
			Reference:   "REV-" + original.Reference,
			CreatedBy:   actorID,
			Lines:       flipLines(original.Lines),
		}
		inserted, err := tx.InsertEntry(ctx, input)
		if err != nil {
			return err
		}
		if err := tx.InsertLines(ctx, inserted.ID, input.Lines); err != nil {
			return err
		}
		if err := tx.SetReversedBy(ctx, original.ID, inserted.ID); err != nil {
			return err
		}
		reversal = inserted
		reversal.Lines = toTransactions(inserted.ID, input.Lines, nil)
		return nil
	})
	if err != nil {
		return JournalEntry{}, err
	}
	s.bump(ctx)
	return reversal, nil
}

// GetEntry loads an entry with its lines.
func (s *Service) GetEntry(ctx context.Context, id int64) (JournalEntry, error) {
	return s.repo.GetEntry(ctx, id)
}

// ListEntries lists journal entries with lines embedded, newest first.
func (s *Service) ListEntries(ctx context.Context) ([]JournalEntry, error) {
	return s.repo.ListEntries(ctx)
}

// ListTransactions lists journal lines matching the filter.
func (s *Service) ListTransactions(ctx context.Context, filter TransactionFilter) ([]Transaction, error) {
	return s.repo.ListTransactions(ctx, filter)
}

// EntryBySource returns the id of the entry already linked to the
// given source, or ErrEntryNotFound when none is.
func (s *Service) EntryBySource(ctx context.Context, module string, ref uuid.UUID) (int64, error) {
	return s.repo.EntryIDBySource(ctx, module, ref)
}

func (s *Service) bump(ctx context.Context) {
	if s.bumper == nil {
		return
	}
	if err := s.bumper.Bump(ctx); err != nil && s.logger != nil {
		s.logger.Warn("report cache bump failed", slog.Any("error", err))
	}
}

func lineAccountIDs(lines []LineInput) []int64 {
	seen := make(map[int64]struct{}, len(lines))
	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.AccountID]; ok {
			continue
		}
		seen[line.AccountID] = struct{}{}
		ids = append(ids, line.AccountID)
	}
	return ids
}

func flipLines(lines []Transaction) []LineInput {
	out := make([]LineInput, 0, len(lines))
	for _, line := range lines {
		out = append(out, LineInput{
			AccountID: line.AccountID,
			Amount:    line.Amount,
			IsDebit:   !line.IsDebit,
		})
	}
	return out
}

func toTransactions(entryID int64, lines []LineInput, accounts map[int64]Account) []Transaction {
	out := make([]Transaction, 0, len(lines))
	for _, line := range lines {
		tx := Transaction{
			EntryID:   entryID,
			AccountID: line.AccountID,
			Amount:    line.Amount,
			IsDebit:   line.IsDebit,
		}
		if acc, ok := accounts[line.AccountID]; ok {
			tx.AccountCode = acc.Code
			tx.AccountName = acc.Name
		}
		out = append(out, tx)
	}
	return out
}
