package reports

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/campus-ledger/campus/internal/platform/httpx"
)

// Handler serves the reporting endpoints.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler constructs the reports HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{service: service, logger: logger}
}

// MountRoutes attaches reporting routes onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/trial-balance", h.TrialBalance)
	r.Get("/balance-sheet", h.BalanceSheet)
	r.Get("/income-statement", h.IncomeStatement)
	r.Get("/cash-flow", h.CashFlow)
}

func (h *Handler) parseDate(w http.ResponseWriter, raw string, fallback time.Time) (time.Time, bool) {
	if raw == "" {
		return fallback, true
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Date", "dates must use the YYYY-MM-DD format, got "+raw)
		return time.Time{}, false
	}
	return date, true
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, report any, csv func() ([]byte, error)) {
	if r.URL.Query().Get("format") == "csv" {
		payload, err := csv()
		if err != nil {
			h.logger.Error("render report csv", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="report.csv"`)
		_, _ = w.Write(payload)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	asOf, ok := h.parseDate(w, r.URL.Query().Get("as_of_date"), h.service.Today())
	if !ok {
		return
	}
	report, err := h.service.TrialBalance(r.Context(), asOf)
	if err != nil {
		h.logger.Error("build trial balance", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	h.respond(w, r, report, func() ([]byte, error) { return TrialBalanceCSV(report) })
}

func (h *Handler) BalanceSheet(w http.ResponseWriter, r *http.Request) {
	asOf, ok := h.parseDate(w, r.URL.Query().Get("as_of_date"), h.service.Today())
	if !ok {
		return
	}
	report, err := h.service.BalanceSheet(r.Context(), asOf)
	if err != nil {
		h.logger.Error("build balance sheet", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	h.respond(w, r, report, func() ([]byte, error) { return BalanceSheetCSV(report) })
}

func (h *Handler) IncomeStatement(w http.ResponseWriter, r *http.Request) {
	start, ok := h.parseDate(w, r.URL.Query().Get("start_date"), h.service.Today())
	if !ok {
		return
	}
	end, ok := h.parseDate(w, r.URL.Query().Get("end_date"), h.service.Today())
	if !ok {
		return
	}
	if end.Before(start) {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Range", "end_date must not precede start_date")
		return
	}
	report, err := h.service.IncomeStatement(r.Context(), start, end)
	if err != nil {
		h.logger.Error("build income statement", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	h.respond(w, r, report, func() ([]byte, error) { return IncomeStatementCSV(report) })
}

func (h *Handler) CashFlow(w http.ResponseWriter, r *http.Request) {
	start, ok := h.parseDate(w, r.URL.Query().Get("start_date"), h.service.Today())
	if !ok {
		return
	}
	end, ok := h.parseDate(w, r.URL.Query().Get("end_date"), h.service.Today())
	if !ok {
		return
	}
	if end.Before(start) {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Range", "end_date must not precede start_date")
		return
	}
	report, err := h.service.CashFlowStatement(r.Context(), start, end)
	if err != nil {
		h.logger.Error("build cash flow statement", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	h.respond(w, r, report, func() ([]byte, error) { return CashFlowCSV(report) })
}
