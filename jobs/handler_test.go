package jobs

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newJobsRouter(client *Client) chi.Router {
	logger := slog.New(slog.NewTextHandler(&strings.Builder{}, nil))
	handler := NewHandler(nil, client, logger)
	r := chi.NewRouter()
	r.Route("/jobs", handler.MountRoutes)
	return r
}

func TestJobsHealthWithoutInspector(t *testing.T) {
	router := newJobsRouter(nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Queue   string `json:"queue"`
		Pending int    `json:"pending"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, QueueDefault, body.Queue)
}

func TestIntegrityScanTriggerRequiresClient(t *testing.T) {
	router := newJobsRouter(nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/jobs/integrity-scan", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
