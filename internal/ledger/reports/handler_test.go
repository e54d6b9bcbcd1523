package reports

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	balances []AccountBalance
}

func (s *stubRepo) BalancesAsOf(ctx context.Context, asOf time.Time) ([]AccountBalance, error) {
	return s.balances, nil
}

func (s *stubRepo) BalancesInRange(ctx context.Context, start, end time.Time) ([]AccountBalance, error) {
	return s.balances, nil
}

func (s *stubRepo) CashTransactions(ctx context.Context, start, end time.Time) ([]CashTransaction, error) {
	return nil, nil
}

func (s *stubRepo) CashOpeningBalance(ctx context.Context, before time.Time) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func newTestRouter(repo Repository) chi.Router {
	service := NewService(repo, nil)
	service.WithNow(func() time.Time {
		return time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	})
	handler := NewHandler(slog.New(slog.NewTextHandler(&strings.Builder{}, nil)), service)
	r := chi.NewRouter()
	r.Route("/reports", handler.MountRoutes)
	return r
}

func TestTrialBalanceJSON(t *testing.T) {
	repo := &stubRepo{balances: []AccountBalance{
		{AccountID: 1, Code: "1000", Name: "Cash", TypeName: "ASSET", NormalBalance: "DEBIT", Debit: decimal.RequireFromString("500"), Credit: decimal.Zero},
		{AccountID: 2, Code: "4000", Name: "Tuition Revenue", TypeName: "INCOME", NormalBalance: "CREDIT", Debit: decimal.Zero, Credit: decimal.RequireFromString("500")},
	}}
	router := newTestRouter(repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/trial-balance?as_of_date=2024-03-10", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var body struct {
		AsOfDate string `json:"as_of_date"`
		Balanced bool   `json:"balanced"`
		Accounts []struct {
			Code    string `json:"account_code"`
			Balance string `json:"balance"`
		} `json:"accounts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "2024-03-10", body.AsOfDate)
	require.True(t, body.Balanced)
	require.Len(t, body.Accounts, 2)
	require.Equal(t, "500.00", body.Accounts[0].Balance)
}

func TestTrialBalanceRejectsMalformedDate(t *testing.T) {
	router := newTestRouter(&stubRepo{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/trial-balance?as_of_date=15-03-2024", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var problem struct {
		Title  string `json:"title"`
		Status int    `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	require.Equal(t, "Invalid Date", problem.Title)
	require.Equal(t, http.StatusBadRequest, problem.Status)
}

func TestIncomeStatementRejectsInvertedRange(t *testing.T) {
	router := newTestRouter(&stubRepo{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/income-statement?start_date=2024-03-10&end_date=2024-03-01", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTrialBalanceCSVFormat(t *testing.T) {
	repo := &stubRepo{balances: []AccountBalance{
		{AccountID: 1, Code: "1000", Name: "Cash", TypeName: "ASSET", NormalBalance: "DEBIT", Debit: decimal.RequireFromString("500"), Credit: decimal.Zero},
		{AccountID: 2, Code: "4000", Name: "Tuition Revenue", TypeName: "INCOME", NormalBalance: "CREDIT", Debit: decimal.Zero, Credit: decimal.RequireFromString("500")},
	}}
	router := newTestRouter(repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/trial-balance?format=csv", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Body.String(), "1000")
	require.Contains(t, rec.Body.String(), "Cash")
}
