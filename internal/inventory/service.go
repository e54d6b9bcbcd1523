package inventory

import (
	"context"
	"log/slog"
	"time"
)

// Service records stock additions and emits posting events.
type Service struct {
	repo   Repository
	poster Poster
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs the inventory service.
func NewService(repo Repository, poster Poster, logger *slog.Logger) *Service {
	return &Service{repo: repo, poster: poster, logger: logger, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// AddStock persists a stock addition and emits the posting event. The
// posting is best-effort: a failure never unwinds the addition.
func (s *Service) AddStock(ctx context.Context, input StockAdditionInput) (StockAddition, error) {
	if err := input.validate(); err != nil {
		return StockAddition{}, err
	}
	if input.AddedAt.IsZero() {
		input.AddedAt = s.now()
	}
	addition, err := s.repo.CreateAddition(ctx, input)
	if err != nil {
		return StockAddition{}, err
	}
	if s.poster != nil {
		evt := StockAddedEvent{
			ID:       addition.ID,
			ItemRef:  addition.ItemRef,
			Qty:      addition.Qty,
			UnitCost: addition.UnitCost,
			AddedAt:  addition.AddedAt,
		}
		if err := s.poster.HandleStockAdded(ctx, evt); err != nil {
			s.logger.Error("stock addition ledger posting failed",
				slog.Int64("addition_id", addition.ID), slog.Any("error", err))
		}
	}
	return addition, nil
}

// ListAdditions lists stock additions, newest first.
func (s *Service) ListAdditions(ctx context.Context) ([]StockAddition, error) {
	return s.repo.ListAdditions(ctx)
}

// GetAddition fetches one stock addition.
func (s *Service) GetAddition(ctx context.Context, id int64) (StockAddition, error) {
	return s.repo.GetAddition(ctx, id)
}
