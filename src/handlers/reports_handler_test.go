package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/fintrack/backend/src/database"
	"github.com/username/fintrack/backend/src/optimistic"
	"github.com/username/fintrack/backend/src/services"
)

func reportsEnv(t *testing.T) (*TransactionHandler, *ReportsHandler) {
	t.Helper()
	database.InitDB(filepath.Join(t.TempDir(), "fintrack-test.db"))
	t.Cleanup(func() { database.DB.Close() })

	fx := testFX(t)
	buffer := optimistic.NewBuffer()
	settings := services.NewSettingsService(filepath.Join(t.TempDir(), "settings.json"))
	return NewTransactionHandler(fx, buffer, 500), NewReportsHandler(fx, settings, buffer, 500)
}

type reportsPayload struct {
	DisplayCurrency    string             `json:"display_currency"`
	RateFactor         float64            `json:"rate_factor"`
	ExpensesByCategory map[string]float64 `json:"expenses_by_category"`
	MonthlyNet         []struct {
		Month      string  `json:"month"`
		NetDisplay float64 `json:"net_display"`
	} `json:"monthly_net"`
}

func TestReportsAggregatesByCategoryAndMonth(t *testing.T) {
	th, rh := reportsEnv(t)

	// June: income 20 EUR, expense 10 USD (= 5 EUR). July: expense 4 EUR.
	for _, body := range []string{
		`{"date":"2025-06-01","amount":20,"currency":"EUR","kind":"income","description":"salary"}`,
		`{"date":"2025-06-15","amount":10,"currency":"USD","category":"Transport","kind":"expense","description":"bus"}`,
		`{"date":"2025-07-02","amount":4,"currency":"EUR","category":"Food","kind":"expense","description":"lunch"}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(body))
		rec := httptest.NewRecorder()
		th.HandleCreateTransaction(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := httptest.NewRecorder()
	rh.HandleGetReports(rec, httptest.NewRequest(http.MethodGet, "/api/reports?currency=USD", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp reportsPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "USD", resp.DisplayCurrency)
	assert.InDelta(t, 2.0, resp.RateFactor, 1e-9)

	// Expense totals in USD: Transport 5 EUR * 2, Food 4 EUR * 2.
	require.Len(t, resp.ExpensesByCategory, 2)
	assert.InDelta(t, 10.0, resp.ExpensesByCategory["Transport"], 1e-9)
	assert.InDelta(t, 8.0, resp.ExpensesByCategory["Food"], 1e-9)

	// Signed net per month in USD, ascending: (20-5)*2 then -4*2.
	require.Len(t, resp.MonthlyNet, 2)
	assert.Equal(t, "2025-06", resp.MonthlyNet[0].Month)
	assert.InDelta(t, 30.0, resp.MonthlyNet[0].NetDisplay, 1e-9)
	assert.Equal(t, "2025-07", resp.MonthlyNet[1].Month)
	assert.InDelta(t, -8.0, resp.MonthlyNet[1].NetDisplay, 1e-9)
}

func TestReportsRowWithoutNormalizedAmountContributesZero(t *testing.T) {
	th, rh := reportsEnv(t)

	body := `{"date":"2025-06-15","amount":7,"currency":"XXX","category":"Misc","kind":"expense","description":"cash"}`
	req := httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(body))
	th.HandleCreateTransaction(httptest.NewRecorder(), req)

	rec := httptest.NewRecorder()
	rh.HandleGetReports(rec, httptest.NewRequest(http.MethodGet, "/api/reports?currency=EUR", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp reportsPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Zero(t, resp.ExpensesByCategory["Misc"])
	require.Len(t, resp.MonthlyNet, 1)
	assert.Zero(t, resp.MonthlyNet[0].NetDisplay)
}

func TestReportsFallsBackToSettingsCurrency(t *testing.T) {
	_, rh := reportsEnv(t)

	rec := httptest.NewRecorder()
	rh.HandleGetReports(rec, httptest.NewRequest(http.MethodGet, "/api/reports", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp reportsPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, services.DefaultSettings().DefaultCurrency, resp.DisplayCurrency)
	assert.Empty(t, resp.MonthlyNet)
}
