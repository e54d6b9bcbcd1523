package procurement

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	orders   map[int64]PurchaseOrder
	payments map[int64]VendorPayment
	nextID   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{orders: make(map[int64]PurchaseOrder), payments: make(map[int64]VendorPayment), nextID: 1}
}

func (m *memoryRepo) CreateOrder(ctx context.Context, in OrderInput) (PurchaseOrder, error) {
	o := PurchaseOrder{ID: m.nextID, Number: in.Number, VendorRef: in.VendorRef, Status: StatusOpen, OrderedAt: in.OrderedAt}
	for i, l := range in.Lines {
		o.Lines = append(o.Lines, OrderLine{ID: int64(i + 1), OrderID: o.ID, ItemRef: l.ItemRef, Qty: l.Qty, UnitPrice: l.UnitPrice})
	}
	m.nextID++
	m.orders[o.ID] = o
	return o, nil
}

func (m *memoryRepo) ListOrders(ctx context.Context) ([]PurchaseOrder, error) {
	var out []PurchaseOrder
	for _, o := range m.orders {
		out = append(out, o)
	}
	return out, nil
}

func (m *memoryRepo) GetOrder(ctx context.Context, id int64) (PurchaseOrder, error) {
	o, ok := m.orders[id]
	if !ok {
		return PurchaseOrder{}, ErrNotFound
	}
	return o, nil
}

func (m *memoryRepo) MarkReceived(ctx context.Context, id int64, at time.Time) (PurchaseOrder, error) {
	o, ok := m.orders[id]
	if !ok {
		return PurchaseOrder{}, ErrNotFound
	}
	if o.Status == StatusReceived {
		return PurchaseOrder{}, ErrAlreadyReceived
	}
	o.Status = StatusReceived
	o.ReceivedAt = &at
	m.orders[id] = o
	return o, nil
}

func (m *memoryRepo) CreateVendorPayment(ctx context.Context, in VendorPaymentInput) (VendorPayment, error) {
	p := VendorPayment{ID: m.nextID, VendorRef: in.VendorRef, Amount: in.Amount, Method: in.Method, Reference: in.Reference, PaidAt: in.PaidAt}
	m.nextID++
	m.payments[p.ID] = p
	return p, nil
}

func (m *memoryRepo) ListVendorPayments(ctx context.Context) ([]VendorPayment, error) {
	var out []VendorPayment
	for _, p := range m.payments {
		out = append(out, p)
	}
	return out, nil
}

type stubPoster struct {
	received []GoodsReceivedEvent
	paid     []VendorPaymentMadeEvent
}

func (s *stubPoster) HandleGoodsReceived(ctx context.Context, evt GoodsReceivedEvent) error {
	s.received = append(s.received, evt)
	return nil
}

func (s *stubPoster) HandleVendorPaymentMade(ctx context.Context, evt VendorPaymentMadeEvent) error {
	s.paid = append(s.paid, evt)
	return nil
}

func orderInput() OrderInput {
	return OrderInput{
		Number:    "PO-1",
		VendorRef: "V-9",
		Lines: []OrderLineInput{
			{ItemRef: "CHAIR", Qty: decimal.NewFromInt(10), UnitPrice: decimal.RequireFromString("45.50")},
			{ItemRef: "DESK", Qty: decimal.NewFromInt(4), UnitPrice: decimal.RequireFromString("120.00")},
		},
	}
}

func TestPlaceOrderComputesTotal(t *testing.T) {
	svc := NewService(newMemoryRepo(), &stubPoster{}, slog.Default())

	order, err := svc.PlaceOrder(context.Background(), orderInput())
	require.NoError(t, err)
	require.Equal(t, StatusOpen, order.Status)
	require.Equal(t, "935.00", order.Total().StringFixed(2))
}

func TestPlaceOrderRequiresLines(t *testing.T) {
	svc := NewService(newMemoryRepo(), &stubPoster{}, slog.Default())

	in := orderInput()
	in.Lines = nil
	_, err := svc.PlaceOrder(context.Background(), in)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestReceiveGoodsEmitsEvent(t *testing.T) {
	repo := newMemoryRepo()
	poster := &stubPoster{}
	svc := NewService(repo, poster, slog.Default())
	svc.WithNow(func() time.Time { return time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC) })

	order, err := svc.PlaceOrder(context.Background(), orderInput())
	require.NoError(t, err)

	received, err := svc.ReceiveGoods(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, StatusReceived, received.Status)
	require.NotNil(t, received.ReceivedAt)

	require.Len(t, poster.received, 1)
	evt := poster.received[0]
	require.Equal(t, order.ID, evt.OrderID)
	require.Len(t, evt.Lines, 2)
	require.Equal(t, "45.50", evt.Lines[0].UnitPrice.StringFixed(2))
}

func TestReceiveGoodsTwiceFails(t *testing.T) {
	repo := newMemoryRepo()
	poster := &stubPoster{}
	svc := NewService(repo, poster, slog.Default())

	order, err := svc.PlaceOrder(context.Background(), orderInput())
	require.NoError(t, err)

	_, err = svc.ReceiveGoods(context.Background(), order.ID)
	require.NoError(t, err)

	_, err = svc.ReceiveGoods(context.Background(), order.ID)
	require.ErrorIs(t, err, ErrAlreadyReceived)
	require.Len(t, poster.received, 1, "second receipt must not emit another event")
}

func TestPayVendorEmitsEvent(t *testing.T) {
	repo := newMemoryRepo()
	poster := &stubPoster{}
	svc := NewService(repo, poster, slog.Default())

	payment, err := svc.PayVendor(context.Background(), VendorPaymentInput{
		VendorRef: "V-9",
		Amount:    decimal.RequireFromString("935.00"),
		Method:    MethodBank,
		Reference: "PAY-1",
	})
	require.NoError(t, err)
	require.Len(t, poster.paid, 1)
	require.Equal(t, payment.ID, poster.paid[0].ID)
}
