package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/username/fintrack/backend/src/currency"
	"github.com/username/fintrack/backend/src/services"
	"github.com/username/fintrack/backend/src/utils"
)

type RatesHandler struct {
	fx *services.FXService
}

func NewRatesHandler(fx *services.FXService) *RatesHandler {
	return &RatesHandler{fx: fx}
}

// HandleGetRates returns the current shared rate table. Resolution never
// fails; in the worst case this serves the built-in seed.
func (h *RatesHandler) HandleGetRates(w http.ResponseWriter, r *http.Request) {
	utils.SendJSON(w, h.fx.SharedRates(), http.StatusOK)
}

type convertResponse struct {
	Amount    float64 `json:"amount"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	Converted float64 `json:"converted"`
}

// HandleConvert converts a single amount between two currencies. A missing
// rate is surfaced as 422 with the offending currency named, so the UI can
// flag that one field instead of blocking the page.
func (h *RatesHandler) HandleConvert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	amount, err := strconv.ParseFloat(q.Get("amount"), 64)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Invalid amount '%s'", q.Get("amount")), http.StatusBadRequest)
		return
	}
	from, to := q.Get("from"), q.Get("to")

	converted, err := h.fx.Converter().Convert(amount, from, to)
	if err != nil {
		var missing *currency.MissingRateError
		if errors.As(err, &missing) {
			utils.SendJSONError(w, missing.Error(), http.StatusUnprocessableEntity)
			return
		}
		utils.SendJSONError(w, fmt.Sprintf("Conversion failed: %v", err), http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, convertResponse{
		Amount:    amount,
		From:      from,
		To:        to,
		Converted: converted,
	}, http.StatusOK)
}
