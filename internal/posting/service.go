// Package posting translates business events into balanced journal
// entries. Account targets come from the ledger role registry, and
// every posting is idempotent on the event's source id.
package posting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/campus-ledger/campus/internal/finance"
	"github.com/campus-ledger/campus/internal/inventory"
	"github.com/campus-ledger/campus/internal/ledger"
	"github.com/campus-ledger/campus/internal/payroll"
	"github.com/campus-ledger/campus/internal/procurement"
)

// Source module names as stored on source_links and posting_failures.
const (
	ModuleFeePayment    = "finance.fee_payment"
	ModuleInvoice       = "finance.invoice"
	ModulePayroll       = "payroll.payment"
	ModuleGoodsReceived = "procurement.goods_received"
	ModuleVendorPayment = "procurement.vendor_payment"
	ModuleStockAddition = "inventory.stock_addition"
)

// LedgerPort is the slice of the ledger service the poster needs.
type LedgerPort interface {
	CreateEntry(ctx context.Context, input ledger.EntryInput) (ledger.JournalEntry, error)
	EntryBySource(ctx context.Context, module string, ref uuid.UUID) (int64, error)
}

// Resolver maps posting roles to accounts.
type Resolver interface {
	Resolve(ctx context.Context, role ledger.AccountRole) (ledger.Account, error)
}

// Service posts business events to the ledger. It implements the
// Poster interface of every event-source package.
type Service struct {
	ledger   LedgerPort
	roles    Resolver
	failures FailureStore
	logger   *slog.Logger
	actorID  int64
}

// NewService constructs the posting service. actorID is the system
// user recorded as created_by on automated entries.
func NewService(lp LedgerPort, roles Resolver, failures FailureStore, logger *slog.Logger, actorID int64) *Service {
	return &Service{ledger: lp, roles: roles, failures: failures, logger: logger, actorID: actorID}
}

// sourceID derives a stable uuid for an event so redelivery maps to
// the same source link.
func sourceID(module string, id int64) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("campus://%s/%d", module, id)))
}

// HandleFeePaymentRecorded posts debit method account, credit tuition
// revenue.
func (s *Service) HandleFeePaymentRecorded(ctx context.Context, evt finance.FeePaymentRecordedEvent) error {
	_, err := s.post(ctx, ModuleFeePayment, evt.ID, evt, func(ctx context.Context) (ledger.EntryInput, error) {
		debit, err := s.methodAccount(ctx, string(evt.Method))
		if err != nil {
			return ledger.EntryInput{}, err
		}
		credit, err := s.roles.Resolve(ctx, ledger.RoleTuitionRevenue)
		if err != nil {
			return ledger.EntryInput{}, err
		}
		return twoLineEntry(
			evt.PaidAt,
			fmt.Sprintf("Fee payment from student %s", evt.StudentRef),
			evt.Reference,
			debit.ID, credit.ID, evt.Amount,
		), nil
	})
	return err
}

// HandleInvoiceIssued posts debit accounts receivable, credit tuition
// revenue.
func (s *Service) HandleInvoiceIssued(ctx context.Context, evt finance.InvoiceIssuedEvent) error {
	_, err := s.post(ctx, ModuleInvoice, evt.ID, evt, func(ctx context.Context) (ledger.EntryInput, error) {
		debit, err := s.roles.Resolve(ctx, ledger.RoleAccountsReceivable)
		if err != nil {
			return ledger.EntryInput{}, err
		}
		credit, err := s.roles.Resolve(ctx, ledger.RoleTuitionRevenue)
		if err != nil {
			return ledger.EntryInput{}, err
		}
		return twoLineEntry(
			evt.IssuedAt,
			fmt.Sprintf("Invoice %s issued to student %s", evt.Number, evt.StudentRef),
			evt.Number,
			debit.ID, credit.ID, evt.Total,
		), nil
	})
	return err
}

// HandlePaymentCompleted posts debit salaries expense, credit method
// account, and returns the journal entry id for the payroll backlink.
func (s *Service) HandlePaymentCompleted(ctx context.Context, evt payroll.PaymentCompletedEvent) (int64, error) {
	return s.post(ctx, ModulePayroll, evt.ID, evt, func(ctx context.Context) (ledger.EntryInput, error) {
		debit, err := s.roles.Resolve(ctx, ledger.RoleSalariesExpense)
		if err != nil {
			return ledger.EntryInput{}, err
		}
		credit, err := s.methodAccount(ctx, string(evt.Method))
		if err != nil {
			return ledger.EntryInput{}, err
		}
		return twoLineEntry(
			evt.PaidAt,
			fmt.Sprintf("Salary payment to %s for %s", evt.StaffRef, evt.Period),
			fmt.Sprintf("PAY-%s-%s", evt.StaffRef, evt.Period),
			debit.ID, credit.ID, evt.Amount,
		), nil
	})
}

// HandleGoodsReceived posts debit inventory asset, credit accounts
// payable for the order's line total.
func (s *Service) HandleGoodsReceived(ctx context.Context, evt procurement.GoodsReceivedEvent) error {
	_, err := s.post(ctx, ModuleGoodsReceived, evt.ID, evt, func(ctx context.Context) (ledger.EntryInput, error) {
		total := decimal.Zero
		for _, l := range evt.Lines {
			total = total.Add(l.Qty.Mul(l.UnitPrice).Round(2))
		}
		if !total.IsPositive() {
			return ledger.EntryInput{}, fmt.Errorf("goods received for order %d has no value", evt.OrderID)
		}
		debit, err := s.roles.Resolve(ctx, ledger.RoleInventoryAsset)
		if err != nil {
			return ledger.EntryInput{}, err
		}
		credit, err := s.roles.Resolve(ctx, ledger.RoleAccountsPayable)
		if err != nil {
			return ledger.EntryInput{}, err
		}
		return twoLineEntry(
			evt.ReceivedAt,
			fmt.Sprintf("Goods received for order %s from %s", evt.Number, evt.VendorRef),
			evt.Number,
			debit.ID, credit.ID, total,
		), nil
	})
	return err
}

// HandleVendorPaymentMade posts debit vendor payments expense, credit
// method account.
func (s *Service) HandleVendorPaymentMade(ctx context.Context, evt procurement.VendorPaymentMadeEvent) error {
	_, err := s.post(ctx, ModuleVendorPayment, evt.ID, evt, func(ctx context.Context) (ledger.EntryInput, error) {
		debit, err := s.roles.Resolve(ctx, ledger.RoleVendorPayments)
		if err != nil {
			return ledger.EntryInput{}, err
		}
		credit, err := s.methodAccount(ctx, string(evt.Method))
		if err != nil {
			return ledger.EntryInput{}, err
		}
		return twoLineEntry(
			evt.PaidAt,
			fmt.Sprintf("Vendor payment to %s", evt.VendorRef),
			evt.Reference,
			debit.ID, credit.ID, evt.Amount,
		), nil
	})
	return err
}

// HandleStockAdded posts debit inventory asset, credit accounts
// payable for qty times unit cost.
func (s *Service) HandleStockAdded(ctx context.Context, evt inventory.StockAddedEvent) error {
	_, err := s.post(ctx, ModuleStockAddition, evt.ID, evt, func(ctx context.Context) (ledger.EntryInput, error) {
		debit, err := s.roles.Resolve(ctx, ledger.RoleInventoryAsset)
		if err != nil {
			return ledger.EntryInput{}, err
		}
		credit, err := s.roles.Resolve(ctx, ledger.RoleAccountsPayable)
		if err != nil {
			return ledger.EntryInput{}, err
		}
		return twoLineEntry(
			evt.AddedAt,
			fmt.Sprintf("Stock addition %s", evt.ItemRef),
			fmt.Sprintf("STK-%d", evt.ID),
			debit.ID, credit.ID, evt.Qty.Mul(evt.UnitCost).Round(2),
		), nil
	})
	return err
}

// post runs the binding, creates the entry, and applies the failure
// policy. A redelivered event resolves to the already linked entry.
func (s *Service) post(ctx context.Context, module string, eventID int64, payload any, build func(context.Context) (ledger.EntryInput, error)) (int64, error) {
	src := sourceID(module, eventID)
	input, err := build(ctx)
	if err != nil {
		s.recordFailure(ctx, module, src, payload, err)
		return 0, err
	}
	input.CreatedBy = s.actorID
	input.SourceModule = module
	input.SourceID = src

	entry, err := s.ledger.CreateEntry(ctx, input)
	if err == nil {
		return entry.ID, nil
	}
	if errors.Is(err, ledger.ErrSourceAlreadyLinked) {
		s.logger.Info("duplicate posting skipped",
			slog.String("module", module), slog.Int64("event_id", eventID))
		return s.ledger.EntryBySource(ctx, module, src)
	}
	s.recordFailure(ctx, module, src, payload, err)
	return 0, err
}

func (s *Service) methodAccount(ctx context.Context, method string) (ledger.Account, error) {
	var role ledger.AccountRole
	switch method {
	case "CASH":
		role = ledger.RoleCash
	case "BANK":
		role = ledger.RoleBank
	case "MOBILE_MONEY":
		role = ledger.RoleMobileMoney
	default:
		return ledger.Account{}, fmt.Errorf("%w: no role for method %q", ledger.ErrRoleNotMapped, method)
	}
	return s.roles.Resolve(ctx, role)
}

func (s *Service) recordFailure(ctx context.Context, module string, src uuid.UUID, payload any, cause error) {
	s.logger.Error("ledger posting failed",
		slog.String("module", module), slog.Any("error", cause))
	if s.failures == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		body = []byte(fmt.Sprintf("%+v", payload))
	}
	f := Failure{Module: module, SourceID: src, Reason: cause.Error(), Payload: body}
	if err := s.failures.Record(ctx, f); err != nil {
		s.logger.Error("posting failure not recorded",
			slog.String("module", module), slog.Any("error", err))
	}
}

func twoLineEntry(date time.Time, description, reference string, debitID, creditID int64, amount decimal.Decimal) ledger.EntryInput {
	return ledger.EntryInput{
		Date:        date,
		Description: description,
		Reference:   reference,
		Lines: []ledger.LineInput{
			{AccountID: debitID, Amount: amount, IsDebit: true},
			{AccountID: creditID, Amount: amount, IsDebit: false},
		},
	}
}
