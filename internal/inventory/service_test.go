package inventory

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	additions map[int64]StockAddition
	nextID    int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{additions: make(map[int64]StockAddition), nextID: 1}
}

func (m *memoryRepo) CreateAddition(ctx context.Context, in StockAdditionInput) (StockAddition, error) {
	a := StockAddition{ID: m.nextID, ItemRef: in.ItemRef, ItemName: in.ItemName, Qty: in.Qty, UnitCost: in.UnitCost, AddedAt: in.AddedAt}
	m.nextID++
	m.additions[a.ID] = a
	return a, nil
}

func (m *memoryRepo) ListAdditions(ctx context.Context) ([]StockAddition, error) {
	var out []StockAddition
	for _, a := range m.additions {
		out = append(out, a)
	}
	return out, nil
}

func (m *memoryRepo) GetAddition(ctx context.Context, id int64) (StockAddition, error) {
	a, ok := m.additions[id]
	if !ok {
		return StockAddition{}, ErrNotFound
	}
	return a, nil
}

type stubPoster struct {
	events []StockAddedEvent
}

func (s *stubPoster) HandleStockAdded(ctx context.Context, evt StockAddedEvent) error {
	s.events = append(s.events, evt)
	return nil
}

func TestAddStockEmitsEvent(t *testing.T) {
	repo := newMemoryRepo()
	poster := &stubPoster{}
	svc := NewService(repo, poster, slog.Default())
	svc.WithNow(func() time.Time { return time.Date(2024, 3, 22, 0, 0, 0, 0, time.UTC) })

	addition, err := svc.AddStock(context.Background(), StockAdditionInput{
		ItemRef:  "LAB-KIT",
		ItemName: "Chemistry Lab Kit",
		Qty:      decimal.NewFromInt(3),
		UnitCost: decimal.RequireFromString("19.99"),
	})
	require.NoError(t, err)
	require.Equal(t, "59.97", addition.Total().StringFixed(2))

	require.Len(t, poster.events, 1)
	require.Equal(t, addition.ID, poster.events[0].ID)
	require.Equal(t, time.Date(2024, 3, 22, 0, 0, 0, 0, time.UTC), poster.events[0].AddedAt)
}

func TestAddStockValidates(t *testing.T) {
	svc := NewService(newMemoryRepo(), &stubPoster{}, slog.Default())

	_, err := svc.AddStock(context.Background(), StockAdditionInput{
		ItemRef:  "",
		Qty:      decimal.NewFromInt(1),
		UnitCost: decimal.NewFromInt(1),
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.AddStock(context.Background(), StockAdditionInput{
		ItemRef:  "LAB-KIT",
		Qty:      decimal.Zero,
		UnitCost: decimal.NewFromInt(1),
	})
	require.ErrorIs(t, err, ErrInvalidInput)
}
