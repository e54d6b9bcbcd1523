package payroll

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/campus-ledger/campus/internal/platform/httpx"
)

// Handler exposes payroll payments over JSON.
type Handler struct {
	service  *Service
	logger   *slog.Logger
	validate *validator.Validate
}

// NewHandler constructs the payroll HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{service: service, logger: logger, validate: validator.New()}
}

// MountRoutes attaches payroll routes onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/payroll-payments", func(r chi.Router) {
		r.Get("/", h.ListPayments)
		r.Post("/", h.RecordPayment)
		r.Get("/{id}", h.GetPayment)
	})
}

type paymentRequest struct {
	StaffRef  string `json:"staff_ref" validate:"required"`
	StaffName string `json:"staff_name"`
	Period    string `json:"period" validate:"required"`
	Amount    string `json:"amount" validate:"required"`
	Method    string `json:"method" validate:"required,oneof=CASH BANK MOBILE_MONEY"`
	PaidAt    string `json:"paid_at" validate:"omitempty,datetime=2006-01-02"`
}

type paymentResponse struct {
	ID             int64  `json:"id"`
	StaffRef       string `json:"staff_ref"`
	StaffName      string `json:"staff_name"`
	Period         string `json:"period"`
	Amount         string `json:"amount"`
	Method         string `json:"method"`
	PaidAt         string `json:"paid_at"`
	JournalEntryID *int64 `json:"journal_entry_id,omitempty"`
}

func toPaymentResponse(p Payment) paymentResponse {
	return paymentResponse{
		ID:             p.ID,
		StaffRef:       p.StaffRef,
		StaffName:      p.StaffName,
		Period:         p.Period,
		Amount:         p.Amount.StringFixed(2),
		Method:         string(p.Method),
		PaidAt:         p.PaidAt.Format("2006-01-02"),
		JournalEntryID: p.JournalEntryID,
	}
}

func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid amount "+req.Amount)
		return
	}
	input := PaymentInput{
		StaffRef:  req.StaffRef,
		StaffName: req.StaffName,
		Period:    req.Period,
		Amount:    amount,
		Method:    PaymentMethod(req.Method),
	}
	if req.PaidAt != "" {
		paidAt, err := time.Parse("2006-01-02", req.PaidAt)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid paid_at "+req.PaidAt)
			return
		}
		input.PaidAt = paidAt
	}
	payment, err := h.service.RecordPayment(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toPaymentResponse(payment))
}

func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.service.ListPayments(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	out := make([]paymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, toPaymentResponse(p))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "payment id must be numeric")
		return
	}
	payment, err := h.service.GetPayment(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toPaymentResponse(payment))
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrInvalidInput):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("payroll request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
