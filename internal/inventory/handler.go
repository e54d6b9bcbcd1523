package inventory

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

// Handler exposes stock additions over JSON.
type Handler struct {
	service  *Service
	logger   *slog.Logger
	validate *validator.Validate
}

// NewHandler constructs the inventory HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{service: service, logger: logger, validate: validator.New()}
}

// MountRoutes attaches inventory routes onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/stock-additions", func(r chi.Router) {
		r.Get("/", h.ListAdditions)
		r.Post("/", h.AddStock)
		r.Get("/{id}", h.GetAddition)
	})
}

type additionRequest struct {
	ItemRef  string `json:"item_ref" validate:"required"`
	ItemName string `json:"item_name"`
	Qty      string `json:"qty" validate:"required"`
	UnitCost string `json:"unit_cost" validate:"required"`
	AddedAt  string `json:"added_at" validate:"omitempty,datetime=2006-01-02"`
}

type additionResponse struct {
	ID       int64  `json:"id"`
	ItemRef  string `json:"item_ref"`
	ItemName string `json:"item_name"`
	Qty      string `json:"qty"`
	UnitCost string `json:"unit_cost"`
	Total    string `json:"total"`
	AddedAt  string `json:"added_at"`
}

func toAdditionResponse(a StockAddition) additionResponse {
	return additionResponse{
		ID:       a.ID,
		ItemRef:  a.ItemRef,
		ItemName: a.ItemName,
		Qty:      a.Qty.String(),
		UnitCost: a.UnitCost.StringFixed(2),
		Total:    a.Total().StringFixed(2),
		AddedAt:  a.AddedAt.Format("2006-01-02"),
	}
}

func (h *Handler) AddStock(w http.ResponseWriter, r *http.Request) {
	var req additionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	qty, err := decimal.NewFromString(req.Qty)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid qty "+req.Qty)
		return
	}
	cost, err := decimal.NewFromString(req.UnitCost)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid unit_cost "+req.UnitCost)
		return
	}
	input := StockAdditionInput{
		ItemRef:  req.ItemRef,
		ItemName: req.ItemName,
		Qty:      qty,
		UnitCost: cost,
	}
	if req.AddedAt != "" {
		addedAt, err := time.Parse("2006-01-02", req.AddedAt)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid added_at "+req.AddedAt)
			return
		}
		input.AddedAt = addedAt
	}
	addition, err := h.service.AddStock(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toAdditionResponse(addition))
}

func (h *Handler) ListAdditions(w http.ResponseWriter, r *http.Request) {
	additions, err := h.service.ListAdditions(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	out := make([]additionResponse, 0, len(additions))
	for _, a := range additions {
		out = append(out, toAdditionResponse(a))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) GetAddition(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "addition id must be numeric")
		return
	}
	addition, err := h.service.GetAddition(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toAdditionResponse(addition))
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrInvalidInput):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("inventory request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
