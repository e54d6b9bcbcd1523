package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campus-ledger/campus/internal/finance"
	"github.com/campus-ledger/campus/internal/inventory"
	"github.com/campus-ledger/campus/internal/ledger"
	"github.com/campus-ledger/campus/internal/ledger/reports"
	"github.com/campus-ledger/campus/internal/observability"
	"github.com/campus-ledger/campus/internal/payroll"
	"github.com/campus-ledger/campus/internal/posting"
	"github.com/campus-ledger/campus/internal/procurement"
	"github.com/campus-ledger/campus/internal/users"
	"github.com/campus-ledger/campus/jobs"
)

// RouterParams collects the handlers the router mounts.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	LedgerHandler      *ledger.Handler
	ReportsHandler     *reports.Handler
	FinanceHandler     *finance.Handler
	PayrollHandler     *payroll.Handler
	ProcurementHandler *procurement.Handler
	InventoryHandler   *inventory.Handler
	PostingHandler     *posting.Handler
	UsersHandler       *users.Handler
	JobsHandler        *jobs.Handler
	Metrics            *observability.Metrics
}

// NewRouter builds the chi router with the full middleware stack and
// every API group mounted under /api/v1.
func NewRouter(params RouterParams) chi.Router {
	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(MiddlewareConfig{Logger: params.Logger, Config: params.Config}) {
		r.Use(mw)
	}
	if params.Metrics != nil {
		r.Use(params.Metrics.Middleware)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		if params.LedgerHandler != nil {
			params.LedgerHandler.MountRoutes(r)
		}
		if params.ReportsHandler != nil {
			r.Route("/reports", params.ReportsHandler.MountRoutes)
		}
		if params.FinanceHandler != nil {
			params.FinanceHandler.MountRoutes(r)
		}
		if params.PayrollHandler != nil {
			params.PayrollHandler.MountRoutes(r)
		}
		if params.ProcurementHandler != nil {
			params.ProcurementHandler.MountRoutes(r)
		}
		if params.InventoryHandler != nil {
			params.InventoryHandler.MountRoutes(r)
		}
		if params.PostingHandler != nil {
			params.PostingHandler.MountRoutes(r)
		}
		if params.UsersHandler != nil {
			params.UsersHandler.MountRoutes(r)
		}
		if params.JobsHandler != nil {
			r.Route("/jobs", params.JobsHandler.MountRoutes)
		}
	})

	return r
}
