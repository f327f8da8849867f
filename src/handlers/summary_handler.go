package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/username/fintrack/backend/src/currency"
	"github.com/username/fintrack/backend/src/database"
	"github.com/username/fintrack/backend/src/models"
	"github.com/username/fintrack/backend/src/optimistic"
	"github.com/username/fintrack/backend/src/services"
	"github.com/username/fintrack/backend/src/utils"
)

type SummaryHandler struct {
	fx           *services.FXService
	settings     *services.SettingsService
	buffer       *optimistic.Buffer
	recentWindow int
}

func NewSummaryHandler(fx *services.FXService, settings *services.SettingsService, buffer *optimistic.Buffer, recentWindow int) *SummaryHandler {
	return &SummaryHandler{
		fx:           fx,
		settings:     settings,
		buffer:       buffer,
		recentWindow: recentWindow,
	}
}

type summaryResponse struct {
	DisplayCurrency string             `json:"display_currency"`
	NetEUR          float64            `json:"net_eur"`
	IncomeEUR       float64            `json:"income_eur"`
	ExpenseEUR      float64            `json:"expense_eur"`
	NetDisplay      float64            `json:"net_display"`
	RateFactor      float64            `json:"rate_factor"`
	ByCurrency      map[string]float64 `json:"by_currency"`
}

// HandleGetSummary computes totals in EUR over the merged view and converts
// the net into the display currency via the shared-table cross rate. Rows
// without a normalized amount contribute zero to the EUR totals but still
// show up in the original-currency breakdown.
func (h *SummaryHandler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
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

	resp := summaryResponse{
		DisplayCurrency: displayCurrency,
		ByCurrency:      make(map[string]float64),
	}
	for _, tx := range view {
		var normalized float64
		if tx.AmountEUR != nil {
			normalized = *tx.AmountEUR
		}
		if tx.Kind == models.KindIncome {
			resp.IncomeEUR += normalized
			resp.ByCurrency[tx.Currency] += tx.Amount
		} else {
			resp.ExpenseEUR += normalized
			resp.ByCurrency[tx.Currency] -= tx.Amount
		}
	}
	resp.NetEUR = resp.IncomeEUR - resp.ExpenseEUR

	table := h.fx.SharedRates()
	resp.RateFactor = currency.Factor(table.Rates, "EUR", displayCurrency)
	resp.NetDisplay = utils.RoundFloat(resp.NetEUR*resp.RateFactor, 2)

	utils.SendJSON(w, resp, http.StatusOK)
}
