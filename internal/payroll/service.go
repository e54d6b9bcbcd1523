package payroll

import (
	"context"
	"log/slog"
	"time"
)

// Service records salary payments and emits posting events.
type Service struct {
	repo   Repository
	poster Poster
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs the payroll service.
func NewService(repo Repository, poster Poster, logger *slog.Logger) *Service {
	return &Service{repo: repo, poster: poster, logger: logger, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// RecordPayment persists a completed salary payment, emits the posting
// event, and links the resulting journal entry back onto the payment.
// The posting is best-effort: a failure never unwinds the payment.
func (s *Service) RecordPayment(ctx context.Context, input PaymentInput) (Payment, error) {
	if err := input.validate(); err != nil {
		return Payment{}, err
	}
	if input.PaidAt.IsZero() {
		input.PaidAt = s.now()
	}
	payment, err := s.repo.CreatePayment(ctx, input)
	if err != nil {
		return Payment{}, err
	}
	if s.poster != nil {
		evt := PaymentCompletedEvent{
			ID:        payment.ID,
			StaffRef:  payment.StaffRef,
			StaffName: payment.StaffName,
			Period:    payment.Period,
			Amount:    payment.Amount,
			Method:    payment.Method,
			PaidAt:    payment.PaidAt,
		}
		entryID, err := s.poster.HandlePaymentCompleted(ctx, evt)
		if err != nil {
			s.logger.Error("payroll ledger posting failed",
				slog.Int64("payment_id", payment.ID), slog.Any("error", err))
			return payment, nil
		}
		if err := s.repo.LinkJournalEntry(ctx, payment.ID, entryID); err != nil {
			s.logger.Error("payroll journal link failed",
				slog.Int64("payment_id", payment.ID),
				slog.Int64("entry_id", entryID), slog.Any("error", err))
			return payment, nil
		}
		payment.JournalEntryID = &entryID
	}
	return payment, nil
}

// ListPayments lists payroll payments, newest first.
func (s *Service) ListPayments(ctx context.Context) ([]Payment, error) {
	return s.repo.ListPayments(ctx)
}

// GetPayment fetches one payroll payment.
func (s *Service) GetPayment(ctx context.Context, id int64) (Payment, error) {
	return s.repo.GetPayment(ctx, id)
}
