package finance

import (
	"context"
	"log/slog"
	"time"
)

// Service records fee payments and invoices and emits posting events.
type Service struct {
	repo   Repository
	poster Poster
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs the finance service.
func NewService(repo Repository, poster Poster, logger *slog.Logger) *Service {
	return &Service{repo: repo, poster: poster, logger: logger, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// RecordFeePayment persists a fee payment and emits the posting event.
// The posting is best-effort: a failure never unwinds the payment.
func (s *Service) RecordFeePayment(ctx context.Context, input FeePaymentInput) (FeePayment, error) {
	if err := input.validate(); err != nil {
		return FeePayment{}, err
	}
	if input.PaidAt.IsZero() {
		input.PaidAt = s.now()
	}
	payment, err := s.repo.CreateFeePayment(ctx, input)
	if err != nil {
		return FeePayment{}, err
	}
	if s.poster != nil {
		evt := FeePaymentRecordedEvent{
			ID:         payment.ID,
			StudentRef: payment.StudentRef,
			Amount:     payment.Amount,
			Method:     payment.Method,
			Reference:  payment.Reference,
			PaidAt:     payment.PaidAt,
		}
		if err := s.poster.HandleFeePaymentRecorded(ctx, evt); err != nil {
			s.logger.Error("fee payment ledger posting failed",
				slog.Int64("payment_id", payment.ID), slog.Any("error", err))
		}
	}
	return payment, nil
}

// IssueInvoice persists a fee invoice and emits the posting event.
func (s *Service) IssueInvoice(ctx context.Context, input InvoiceInput) (Invoice, error) {
	if err := input.validate(); err != nil {
		return Invoice{}, err
	}
	if input.IssuedAt.IsZero() {
		input.IssuedAt = s.now()
	}
	invoice, err := s.repo.CreateInvoice(ctx, input)
	if err != nil {
		return Invoice{}, err
	}
	if s.poster != nil {
		evt := InvoiceIssuedEvent{
			ID:         invoice.ID,
			StudentRef: invoice.StudentRef,
			Number:     invoice.Number,
			Total:      invoice.Total,
			IssuedAt:   invoice.IssuedAt,
		}
		if err := s.poster.HandleInvoiceIssued(ctx, evt); err != nil {
			s.logger.Error("invoice ledger posting failed",
				slog.Int64("invoice_id", invoice.ID), slog.Any("error", err))
		}
	}
	return invoice, nil
}

// ListFeePayments lists fee payments, newest first.
func (s *Service) ListFeePayments(ctx context.Context) ([]FeePayment, error) {
	return s.repo.ListFeePayments(ctx)
}

// GetFeePayment fetches one fee payment.
func (s *Service) GetFeePayment(ctx context.Context, id int64) (FeePayment, error) {
	return s.repo.GetFeePayment(ctx, id)
}

// ListInvoices lists fee invoices, newest first.
func (s *Service) ListInvoices(ctx context.Context) ([]Invoice, error) {
	return s.repo.ListInvoices(ctx)
}
