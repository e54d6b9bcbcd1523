package posting

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/campus-ledger/campus/internal/finance"
	"github.com/campus-ledger/campus/internal/inventory"
	"github.com/campus-ledger/campus/internal/ledger"
	"github.com/campus-ledger/campus/internal/payroll"
	"github.com/campus-ledger/campus/internal/procurement"
)

type fakeLedger struct {
	entries []ledger.EntryInput
	links   map[string]int64
	nextID  int64
	fail    error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{links: make(map[string]int64), nextID: 1}
}

func (f *fakeLedger) CreateEntry(ctx context.Context, input ledger.EntryInput) (ledger.JournalEntry, error) {
	if f.fail != nil {
		return ledger.JournalEntry{}, f.fail
	}
	key := input.SourceModule + "/" + input.SourceID.String()
	if _, exists := f.links[key]; exists {
		return ledger.JournalEntry{}, ledger.ErrSourceAlreadyLinked
	}
	if err := input.Validate(); err != nil {
		return ledger.JournalEntry{}, err
	}
	id := f.nextID
	f.nextID++
	f.links[key] = id
	f.entries = append(f.entries, input)
	return ledger.JournalEntry{ID: id, Description: input.Description}, nil
}

func (f *fakeLedger) EntryBySource(ctx context.Context, module string, ref uuid.UUID) (int64, error) {
	id, ok := f.links[module+"/"+ref.String()]
	if !ok {
		return 0, ledger.ErrEntryNotFound
	}
	return id, nil
}

type fakeResolver map[ledger.AccountRole]ledger.Account

func (f fakeResolver) Resolve(ctx context.Context, role ledger.AccountRole) (ledger.Account, error) {
	a, ok := f[role]
	if !ok {
		return ledger.Account{}, ledger.ErrRoleNotMapped
	}
	return a, nil
}

type fakeFailures struct {
	recorded []Failure
}

func (f *fakeFailures) Record(ctx context.Context, failure Failure) error {
	f.recorded = append(f.recorded, failure)
	return nil
}

func (f *fakeFailures) List(ctx context.Context) ([]Failure, error) {
	return f.recorded, nil
}

func testResolver() fakeResolver {
	r := fakeResolver{}
	for i, role := range ledger.AllRoles() {
		r[role] = ledger.Account{ID: int64(i + 1), Code: string(role)}
	}
	return r
}

func newTestPoster(lp *fakeLedger, failures *fakeFailures) *Service {
	return NewService(lp, testResolver(), failures, slog.Default(), 1)
}

func feePaymentEvent() finance.FeePaymentRecordedEvent {
	return finance.FeePaymentRecordedEvent{
		ID:         10,
		StudentRef: "S-1001",
		Amount:     decimal.RequireFromString("5000.00"),
		Method:     finance.MethodCash,
		Reference:  "RCPT-10",
		PaidAt:     time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestFeePaymentPostsDebitMethodCreditRevenue(t *testing.T) {
	lp := newFakeLedger()
	svc := newTestPoster(lp, &fakeFailures{})
	resolver := testResolver()

	require.NoError(t, svc.HandleFeePaymentRecorded(context.Background(), feePaymentEvent()))
	require.Len(t, lp.entries, 1)

	entry := lp.entries[0]
	require.Equal(t, ModuleFeePayment, entry.SourceModule)
	require.Len(t, entry.Lines, 2)
	require.Equal(t, resolver[ledger.RoleCash].ID, entry.Lines[0].AccountID)
	require.True(t, entry.Lines[0].IsDebit)
	require.Equal(t, resolver[ledger.RoleTuitionRevenue].ID, entry.Lines[1].AccountID)
	require.False(t, entry.Lines[1].IsDebit)
	require.Equal(t, "5000.00", entry.Lines[1].Amount.StringFixed(2))
}

func TestFeePaymentRedeliveryIsNoOp(t *testing.T) {
	lp := newFakeLedger()
	svc := newTestPoster(lp, &fakeFailures{})

	evt := feePaymentEvent()
	require.NoError(t, svc.HandleFeePaymentRecorded(context.Background(), evt))
	require.NoError(t, svc.HandleFeePaymentRecorded(context.Background(), evt))
	require.Len(t, lp.entries, 1, "redelivery must not create a second entry")
}

func TestPayrollPostReturnsEntryID(t *testing.T) {
	lp := newFakeLedger()
	svc := newTestPoster(lp, &fakeFailures{})

	evt := payroll.PaymentCompletedEvent{
		ID:       3,
		StaffRef: "EMP-7",
		Period:   "2024-03",
		Amount:   decimal.RequireFromString("1500.00"),
		Method:   payroll.MethodBank,
		PaidAt:   time.Date(2024, 3, 28, 0, 0, 0, 0, time.UTC),
	}
	entryID, err := svc.HandlePaymentCompleted(context.Background(), evt)
	require.NoError(t, err)
	require.NotZero(t, entryID)

	// Redelivery resolves to the same entry id.
	again, err := svc.HandlePaymentCompleted(context.Background(), evt)
	require.NoError(t, err)
	require.Equal(t, entryID, again)
	require.Len(t, lp.entries, 1)
}

func TestGoodsReceivedSumsLines(t *testing.T) {
	lp := newFakeLedger()
	svc := newTestPoster(lp, &fakeFailures{})
	resolver := testResolver()

	evt := procurement.GoodsReceivedEvent{
		ID:        5,
		OrderID:   5,
		Number:    "PO-5",
		VendorRef: "V-9",
		Lines: []procurement.ReceivedLine{
			{ItemRef: "CHAIR", Qty: decimal.NewFromInt(10), UnitPrice: decimal.RequireFromString("45.50")},
			{ItemRef: "DESK", Qty: decimal.NewFromInt(4), UnitPrice: decimal.RequireFromString("120.00")},
		},
		ReceivedAt: time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, svc.HandleGoodsReceived(context.Background(), evt))
	require.Len(t, lp.entries, 1)

	entry := lp.entries[0]
	// 10*45.50 + 4*120.00
	require.Equal(t, "935.00", entry.Lines[0].Amount.StringFixed(2))
	require.Equal(t, resolver[ledger.RoleInventoryAsset].ID, entry.Lines[0].AccountID)
	require.Equal(t, resolver[ledger.RoleAccountsPayable].ID, entry.Lines[1].AccountID)
}

func TestVendorPaymentDebitsExpense(t *testing.T) {
	lp := newFakeLedger()
	svc := newTestPoster(lp, &fakeFailures{})
	resolver := testResolver()

	evt := procurement.VendorPaymentMadeEvent{
		ID:        8,
		VendorRef: "V-9",
		Amount:    decimal.RequireFromString("935.00"),
		Method:    procurement.MethodMobileMoney,
		PaidAt:    time.Date(2024, 3, 21, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, svc.HandleVendorPaymentMade(context.Background(), evt))

	entry := lp.entries[0]
	require.Equal(t, resolver[ledger.RoleVendorPayments].ID, entry.Lines[0].AccountID)
	require.Equal(t, resolver[ledger.RoleMobileMoney].ID, entry.Lines[1].AccountID)
	require.False(t, entry.Lines[1].IsDebit)
}

func TestStockAddedPostsQtyTimesCost(t *testing.T) {
	lp := newFakeLedger()
	svc := newTestPoster(lp, &fakeFailures{})

	evt := inventory.StockAddedEvent{
		ID:       2,
		ItemRef:  "LAB-KIT",
		Qty:      decimal.NewFromInt(3),
		UnitCost: decimal.RequireFromString("19.99"),
		AddedAt:  time.Date(2024, 3, 22, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, svc.HandleStockAdded(context.Background(), evt))
	require.Equal(t, "59.97", lp.entries[0].Lines[0].Amount.StringFixed(2))
}

func TestUnknownMethodRecordsFailure(t *testing.T) {
	lp := newFakeLedger()
	failures := &fakeFailures{}
	svc := newTestPoster(lp, failures)

	evt := feePaymentEvent()
	evt.Method = finance.PaymentMethod("CHEQUE")

	err := svc.HandleFeePaymentRecorded(context.Background(), evt)
	require.ErrorIs(t, err, ledger.ErrRoleNotMapped)
	require.Empty(t, lp.entries)
	require.Len(t, failures.recorded, 1)
	require.Equal(t, ModuleFeePayment, failures.recorded[0].Module)
	require.Contains(t, failures.recorded[0].Reason, "CHEQUE")
	require.NotEmpty(t, failures.recorded[0].Payload)
}

func TestLedgerFailureRecordsFailure(t *testing.T) {
	lp := newFakeLedger()
	lp.fail = errors.New("connection reset")
	failures := &fakeFailures{}
	svc := newTestPoster(lp, failures)

	err := svc.HandleFeePaymentRecorded(context.Background(), feePaymentEvent())
	require.Error(t, err)
	require.Len(t, failures.recorded, 1)
}

func TestSourceIDStable(t *testing.T) {
	a := sourceID(ModuleFeePayment, 10)
	b := sourceID(ModuleFeePayment, 10)
	c := sourceID(ModuleInvoice, 10)
	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
}
