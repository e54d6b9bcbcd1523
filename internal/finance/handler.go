package finance

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

// Handler exposes fee payments and invoices over JSON.
type Handler struct {
	service  *Service
	logger   *slog.Logger
	validate *validator.Validate
}

// NewHandler constructs the finance HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{service: service, logger: logger, validate: validator.New()}
}

// MountRoutes attaches finance routes onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/fee-payments", func(r chi.Router) {
		r.Get("/", h.ListFeePayments)
		r.Post("/", h.RecordFeePayment)
		r.Get("/{id}", h.GetFeePayment)
	})
	r.Route("/invoices", func(r chi.Router) {
		r.Get("/", h.ListInvoices)
		r.Post("/", h.IssueInvoice)
	})
}

type feePaymentRequest struct {
	StudentRef string `json:"student_ref" validate:"required"`
	Amount     string `json:"amount" validate:"required"`
	Method     string `json:"method" validate:"required,oneof=CASH BANK MOBILE_MONEY"`
	Reference  string `json:"reference"`
	PaidAt     string `json:"paid_at" validate:"omitempty,datetime=2006-01-02"`
}

type invoiceRequest struct {
	StudentRef string `json:"student_ref" validate:"required"`
	Number     string `json:"number" validate:"required"`
	Total      string `json:"total" validate:"required"`
	IssuedAt   string `json:"issued_at" validate:"omitempty,datetime=2006-01-02"`
	DueAt      string `json:"due_at" validate:"omitempty,datetime=2006-01-02"`
}

type feePaymentResponse struct {
	ID         int64  `json:"id"`
	StudentRef string `json:"student_ref"`
	Amount     string `json:"amount"`
	Method     string `json:"method"`
	Reference  string `json:"reference"`
	PaidAt     string `json:"paid_at"`
}

type invoiceResponse struct {
	ID         int64  `json:"id"`
	StudentRef string `json:"student_ref"`
	Number     string `json:"number"`
	Total      string `json:"total"`
	IssuedAt   string `json:"issued_at"`
	DueAt      string `json:"due_at"`
}

func toFeePaymentResponse(p FeePayment) feePaymentResponse {
	return feePaymentResponse{
		ID:         p.ID,
		StudentRef: p.StudentRef,
		Amount:     p.Amount.StringFixed(2),
		Method:     string(p.Method),
		Reference:  p.Reference,
		PaidAt:     p.PaidAt.Format("2006-01-02"),
	}
}

func toInvoiceResponse(inv Invoice) invoiceResponse {
	return invoiceResponse{
		ID:         inv.ID,
		StudentRef: inv.StudentRef,
		Number:     inv.Number,
		Total:      inv.Total.StringFixed(2),
		IssuedAt:   inv.IssuedAt.Format("2006-01-02"),
		DueAt:      inv.DueAt.Format("2006-01-02"),
	}
}

func (h *Handler) RecordFeePayment(w http.ResponseWriter, r *http.Request) {
	var req feePaymentRequest
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
	input := FeePaymentInput{
		StudentRef: req.StudentRef,
		Amount:     amount,
		Method:     PaymentMethod(req.Method),
		Reference:  req.Reference,
	}
	if req.PaidAt != "" {
		input.PaidAt, _ = time.Parse("2006-01-02", req.PaidAt)
	}
	payment, err := h.service.RecordFeePayment(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toFeePaymentResponse(payment))
}

func (h *Handler) ListFeePayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.service.ListFeePayments(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	out := make([]feePaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, toFeePaymentResponse(p))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) GetFeePayment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "payment id must be numeric")
		return
	}
	payment, err := h.service.GetFeePayment(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toFeePaymentResponse(payment))
}

func (h *Handler) IssueInvoice(w http.ResponseWriter, r *http.Request) {
	var req invoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	total, err := decimal.NewFromString(req.Total)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid total "+req.Total)
		return
	}
	input := InvoiceInput{
		StudentRef: req.StudentRef,
		Number:     req.Number,
		Total:      total,
	}
	if req.IssuedAt != "" {
		input.IssuedAt, _ = time.Parse("2006-01-02", req.IssuedAt)
	}
	if req.DueAt != "" {
		input.DueAt, _ = time.Parse("2006-01-02", req.DueAt)
	}
	invoice, err := h.service.IssueInvoice(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toInvoiceResponse(invoice))
}

func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.service.ListInvoices(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	out := make([]invoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, toInvoiceResponse(inv))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrInvalidInput):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("finance request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
