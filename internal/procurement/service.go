package procurement

import (
	"context"
	"log/slog"
	"time"
)

// Service manages purchase orders and vendor payments and emits
// posting events.
type Service struct {
	repo   Repository
	poster Poster
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs the procurement service.
func NewService(repo Repository, poster Poster, logger *slog.Logger) *Service {
	return &Service{repo: repo, poster: poster, logger: logger, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// PlaceOrder persists a new purchase order in OPEN status.
func (s *Service) PlaceOrder(ctx context.Context, input OrderInput) (PurchaseOrder, error) {
	if err := input.validate(); err != nil {
		return PurchaseOrder{}, err
	}
	if input.OrderedAt.IsZero() {
		input.OrderedAt = s.now()
	}
	return s.repo.CreateOrder(ctx, input)
}

// ReceiveGoods marks an open order received and emits the goods
// received event. A second receipt returns ErrAlreadyReceived. The
// posting is best-effort: a failure never unwinds the receipt.
func (s *Service) ReceiveGoods(ctx context.Context, orderID int64) (PurchaseOrder, error) {
	order, err := s.repo.MarkReceived(ctx, orderID, s.now())
	if err != nil {
		return PurchaseOrder{}, err
	}
	if s.poster != nil {
		evt := GoodsReceivedEvent{
			ID:        order.ID,
			OrderID:   order.ID,
			Number:    order.Number,
			VendorRef: order.VendorRef,
		}
		if order.ReceivedAt != nil {
			evt.ReceivedAt = *order.ReceivedAt
		}
		for _, l := range order.Lines {
			evt.Lines = append(evt.Lines, ReceivedLine{
				ItemRef:   l.ItemRef,
				Qty:       l.Qty,
				UnitPrice: l.UnitPrice,
			})
		}
		if err := s.poster.HandleGoodsReceived(ctx, evt); err != nil {
			s.logger.Error("goods receipt ledger posting failed",
				slog.Int64("order_id", order.ID), slog.Any("error", err))
		}
	}
	return order, nil
}

// PayVendor persists a vendor payment and emits the posting event.
func (s *Service) PayVendor(ctx context.Context, input VendorPaymentInput) (VendorPayment, error) {
	if err := input.validate(); err != nil {
		return VendorPayment{}, err
	}
	if input.PaidAt.IsZero() {
		input.PaidAt = s.now()
	}
	payment, err := s.repo.CreateVendorPayment(ctx, input)
	if err != nil {
		return VendorPayment{}, err
	}
	if s.poster != nil {
		evt := VendorPaymentMadeEvent{
			ID:        payment.ID,
			VendorRef: payment.VendorRef,
			Amount:    payment.Amount,
			Method:    payment.Method,
			Reference: payment.Reference,
			PaidAt:    payment.PaidAt,
		}
		if err := s.poster.HandleVendorPaymentMade(ctx, evt); err != nil {
			s.logger.Error("vendor payment ledger posting failed",
				slog.Int64("payment_id", payment.ID), slog.Any("error", err))
		}
	}
	return payment, nil
}

// ListOrders lists purchase orders, newest first.
func (s *Service) ListOrders(ctx context.Context) ([]PurchaseOrder, error) {
	return s.repo.ListOrders(ctx)
}

// GetOrder fetches one purchase order with its lines.
func (s *Service) GetOrder(ctx context.Context, id int64) (PurchaseOrder, error) {
	return s.repo.GetOrder(ctx, id)
}

// ListVendorPayments lists vendor payments, newest first.
func (s *Service) ListVendorPayments(ctx context.Context) ([]VendorPayment, error) {
	return s.repo.ListVendorPayments(ctx)
}
