package handlers

import (
	"fmt"
	"math"
	"net/http"
	"sort"
	"strings"

	"github.com/username/fintrack/backend/src/currency"
	"github.com/username/fintrack/backend/src/database"
	"github.com/username/fintrack/backend/src/models"
	"github.com/username/fintrack/backend/src/optimistic"
	"github.com/username/fintrack/backend/src/services"
	"github.com/username/fintrack/backend/src/utils"
)

type ReportsHandler struct {
	fx           *services.FXService
	settings     *services.SettingsService
	buffer       *optimistic.Buffer
	recentWindow int
}

func NewReportsHandler(fx *services.FXService, settings *services.SettingsService, buffer *optimistic.Buffer, recentWindow int) *ReportsHandler {
	return &ReportsHandler{
		fx:           fx,
		settings:     settings,
		buffer:       buffer,
		recentWindow: recentWindow,
	}
}

type monthlyNet struct {
	Month      string  `json:"month"`
	NetDisplay float64 `json:"net_display"`
}

type reportsResponse struct {
	DisplayCurrency    string             `json:"display_currency"`
	RateFactor         float64            `json:"rate_factor"`
	ExpensesByCategory map[string]float64 `json:"expenses_by_category"`
	MonthlyNet         []monthlyNet       `json:"monthly_net"`
}

// HandleGetReports aggregates the merged view two ways: expense totals per
// category and signed net per calendar month, both converted into the
// display currency. Rows without a normalized amount contribute zero, the
// same rule the summary applies.
func (h *ReportsHandler) HandleGetReports(w http.ResponseWriter, r *http.Request) {
	displayCurrency := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("currency")))
	if displayCurrency == "" {
		displayCurrency = h.settings.Load().DefaultCurrency
	}

	rows, err := database.RecentTransactions(h.recentWindow)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error querying transactions: %v", err), http.StatusInternalServerError)
		return
	}
	h.buffer.Reconcile(rows)
	view := optimistic.Merge(h.buffer.Snapshot(), rows)

	byCategory := make(map[string]float64)
	byMonth := make(map[string]float64)
	for _, tx := range view {
		var normalized float64
		if tx.AmountEUR != nil {
			normalized = *tx.AmountEUR
		}
		month := tx.Date.UTC().Format("2006-01")
		if tx.Kind == models.KindIncome {
			byMonth[month] += normalized
		} else {
			byMonth[month] -= normalized
			byCategory[tx.Category] += normalized
		}
	}

	table := h.fx.SharedRates()
	factor := currency.Factor(table.Rates, "EUR", displayCurrency)

	resp := reportsResponse{
		DisplayCurrency:    displayCurrency,
		RateFactor:         factor,
		ExpensesByCategory: make(map[string]float64, len(byCategory)),
		MonthlyNet:         make([]monthlyNet, 0, len(byMonth)),
	}
	for category, totalEUR := range byCategory {
		resp.ExpensesByCategory[category] = utils.RoundFloat(math.Abs(totalEUR*factor), 2)
	}
	for month, netEUR := range byMonth {
		resp.MonthlyNet = append(resp.MonthlyNet, monthlyNet{
			Month:      month,
			NetDisplay: utils.RoundFloat(netEUR*factor, 2),
		})
	}
	sort.Slice(resp.MonthlyNet, func(i, j int) bool {
		return resp.MonthlyNet[i].Month < resp.MonthlyNet[j].Month
	})

	utils.SendJSON(w, resp, http.StatusOK)
}
