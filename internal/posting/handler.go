package posting

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campus-ledger/campus/internal/platform/httpx"
)

// Handler exposes recorded posting failures for remediation.
type Handler struct {
	failures FailureStore
	logger   *slog.Logger
}

// NewHandler constructs the posting HTTP handler.
func NewHandler(logger *slog.Logger, failures FailureStore) *Handler {
	return &Handler{failures: failures, logger: logger}
}

// MountRoutes attaches posting routes onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/posting-failures", h.ListFailures)
}

type failureResponse struct {
	ID        int64           `json:"id"`
	Module    string          `json:"module"`
	SourceID  string          `json:"source_id"`
	Reason    string          `json:"reason"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt string          `json:"created_at"`
}

func (h *Handler) ListFailures(w http.ResponseWriter, r *http.Request) {
	failures, err := h.failures.List(r.Context())
	if err != nil {
		h.logger.Error("posting failure listing failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	out := make([]failureResponse, 0, len(failures))
	for _, f := range failures {
		out = append(out, failureResponse{
			ID:        f.ID,
			Module:    f.Module,
			SourceID:  f.SourceID.String(),
			Reason:    f.Reason,
			Payload:   json.RawMessage(f.Payload),
			CreatedAt: f.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	httpx.JSON(w, http.StatusOK, out)
}
