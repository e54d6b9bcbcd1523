package procurement

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

// Handler exposes purchase orders and vendor payments over JSON.
type Handler struct {
	service  *Service
	logger   *slog.Logger
	validate *validator.Validate
}

// NewHandler constructs the procurement HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{service: service, logger: logger, validate: validator.New()}
}

// MountRoutes attaches procurement routes onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/purchase-orders", func(r chi.Router) {
		r.Get("/", h.ListOrders)
		r.Post("/", h.PlaceOrder)
		r.Get("/{id}", h.GetOrder)
		r.Post("/{id}/receive", h.ReceiveGoods)
	})
	r.Route("/vendor-payments", func(r chi.Router) {
		r.Get("/", h.ListVendorPayments)
		r.Post("/", h.PayVendor)
	})
}

type orderLineRequest struct {
	ItemRef   string `json:"item_ref" validate:"required"`
	Qty       string `json:"qty" validate:"required"`
	UnitPrice string `json:"unit_price" validate:"required"`
}

type orderRequest struct {
	Number    string             `json:"number" validate:"required"`
	VendorRef string             `json:"vendor_ref" validate:"required"`
	Lines     []orderLineRequest `json:"lines" validate:"required,min=1,dive"`
	OrderedAt string             `json:"ordered_at" validate:"omitempty,datetime=2006-01-02"`
}

type vendorPaymentRequest struct {
	VendorRef string `json:"vendor_ref" validate:"required"`
	Amount    string `json:"amount" validate:"required"`
	Method    string `json:"method" validate:"required,oneof=CASH BANK MOBILE_MONEY"`
	Reference string `json:"reference"`
	PaidAt    string `json:"paid_at" validate:"omitempty,datetime=2006-01-02"`
}

type orderLineResponse struct {
	ID        int64  `json:"id"`
	ItemRef   string `json:"item_ref"`
	Qty       string `json:"qty"`
	UnitPrice string `json:"unit_price"`
	Total     string `json:"total"`
}

type orderResponse struct {
	ID         int64               `json:"id"`
	Number     string              `json:"number"`
	VendorRef  string              `json:"vendor_ref"`
	Status     string              `json:"status"`
	Lines      []orderLineResponse `json:"lines"`
	Total      string              `json:"total"`
	OrderedAt  string              `json:"ordered_at"`
	ReceivedAt string              `json:"received_at,omitempty"`
}

type vendorPaymentResponse struct {
	ID        int64  `json:"id"`
	VendorRef string `json:"vendor_ref"`
	Amount    string `json:"amount"`
	Method    string `json:"method"`
	Reference string `json:"reference"`
	PaidAt    string `json:"paid_at"`
}

func toOrderResponse(o PurchaseOrder) orderResponse {
	out := orderResponse{
		ID:        o.ID,
		Number:    o.Number,
		VendorRef: o.VendorRef,
		Status:    string(o.Status),
		Total:     o.Total().StringFixed(2),
		OrderedAt: o.OrderedAt.Format("2006-01-02"),
		Lines:     make([]orderLineResponse, 0, len(o.Lines)),
	}
	if o.ReceivedAt != nil {
		out.ReceivedAt = o.ReceivedAt.Format("2006-01-02")
	}
	for _, l := range o.Lines {
		out.Lines = append(out.Lines, orderLineResponse{
			ID:        l.ID,
			ItemRef:   l.ItemRef,
			Qty:       l.Qty.String(),
			UnitPrice: l.UnitPrice.StringFixed(2),
			Total:     l.Total().StringFixed(2),
		})
	}
	return out
}

func toVendorPaymentResponse(p VendorPayment) vendorPaymentResponse {
	return vendorPaymentResponse{
		ID:        p.ID,
		VendorRef: p.VendorRef,
		Amount:    p.Amount.StringFixed(2),
		Method:    string(p.Method),
		Reference: p.Reference,
		PaidAt:    p.PaidAt.Format("2006-01-02"),
	}
}

func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	input := OrderInput{Number: req.Number, VendorRef: req.VendorRef}
	for _, l := range req.Lines {
		qty, err := decimal.NewFromString(l.Qty)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid qty "+l.Qty)
			return
		}
		price, err := decimal.NewFromString(l.UnitPrice)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid unit_price "+l.UnitPrice)
			return
		}
		input.Lines = append(input.Lines, OrderLineInput{ItemRef: l.ItemRef, Qty: qty, UnitPrice: price})
	}
	if req.OrderedAt != "" {
		orderedAt, err := time.Parse("2006-01-02", req.OrderedAt)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid ordered_at "+req.OrderedAt)
			return
		}
		input.OrderedAt = orderedAt
	}
	order, err := h.service.PlaceOrder(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toOrderResponse(order))
}

func (h *Handler) ReceiveGoods(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "order id must be numeric")
		return
	}
	order, err := h.service.ReceiveGoods(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListOrders(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "order id must be numeric")
		return
	}
	order, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *Handler) PayVendor(w http.ResponseWriter, r *http.Request) {
	var req vendorPaymentRequest
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
	input := VendorPaymentInput{
		VendorRef: req.VendorRef,
		Amount:    amount,
		Method:    PaymentMethod(req.Method),
		Reference: req.Reference,
	}
	if req.PaidAt != "" {
		paidAt, err := time.Parse("2006-01-02", req.PaidAt)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid paid_at "+req.PaidAt)
			return
		}
		input.PaidAt = paidAt
	}
	payment, err := h.service.PayVendor(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toVendorPaymentResponse(payment))
}

func (h *Handler) ListVendorPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.service.ListVendorPayments(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	out := make([]vendorPaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, toVendorPaymentResponse(p))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrAlreadyReceived):
		httpx.Problem(w, http.StatusConflict, "Already Received", err.Error())
	case errors.Is(err, ErrInvalidInput):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("procurement request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
