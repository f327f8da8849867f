package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/username/fintrack/backend/src/database"
	"github.com/username/fintrack/backend/src/logger"
	"github.com/username/fintrack/backend/src/models"
	"github.com/username/fintrack/backend/src/optimistic"
	"github.com/username/fintrack/backend/src/services"
	"github.com/username/fintrack/backend/src/utils"
)

type TransactionHandler struct {
	fx           *services.FXService
	buffer       *optimistic.Buffer
	recentWindow int
}

func NewTransactionHandler(fx *services.FXService, buffer *optimistic.Buffer, recentWindow int) *TransactionHandler {
	return &TransactionHandler{
		fx:           fx,
		buffer:       buffer,
		recentWindow: recentWindow,
	}
}

// HandleListTransactions returns the merged display view: buffer entries
// already visible in the store are dropped first, then optimistic rows are
// concatenated ahead of stored rows with signature duplicates removed.
func (h *TransactionHandler) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	rows, err := database.RecentTransactions(h.recentWindow)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error querying transactions: %v", err), http.StatusInternalServerError)
		return
	}

	h.buffer.Reconcile(rows)
	view := optimistic.Merge(h.buffer.Snapshot(), rows)
	if view == nil {
		view = []models.Transaction{}
	}
	utils.SendJSON(w, view, http.StatusOK)
}

type createTransactionRequest struct {
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Category    string  `json:"category"`
	Kind        string  `json:"kind"`
	Description string  `json:"description"`
}

// HandleCreateTransaction performs the write path: normalize the amount to
// EUR with the shared table, write the durable row first, then append the
// optimistic copy for immediate display. The normalized amount stays NULL
// when the currency has no usable rate; a backfill pass fills it later.
func (h *TransactionHandler) HandleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	date := time.Now().UTC()
	if strings.TrimSpace(req.Date) != "" {
		parsed, err := utils.ParseFlexibleDate(req.Date)
		if err != nil {
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		date = parsed
	}

	currencyCode := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currencyCode == "" {
		currencyCode = "EUR"
	}
	kind := strings.ToLower(strings.TrimSpace(req.Kind))
	if kind == "" {
		kind = models.KindExpense
	}
	if kind != models.KindIncome && kind != models.KindExpense {
		utils.SendJSONError(w, fmt.Sprintf("Invalid kind '%s': must be 'income' or 'expense'", kind), http.StatusBadRequest)
		return
	}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = models.DefaultCategory
	}

	tx := models.Transaction{
		Date:        date,
		Amount:      req.Amount,
		Currency:    currencyCode,
		AmountEUR:   h.fx.NormalizeToEUR(req.Amount, currencyCode),
		Category:    category,
		Kind:        kind,
		Description: req.Description,
	}

	// Durable write first; the buffer only hides read-after-write latency.
	if _, err := database.InsertTransaction(tx); err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Failed to save transaction: %v", err), http.StatusInternalServerError)
		return
	}
	h.buffer.Append(tx)

	logger.L.Info("Transaction saved", "amount", tx.Amount, "currency", tx.Currency, "kind", tx.Kind)
	utils.SendJSON(w, tx, http.StatusCreated)
}

// HandleClearTransactions deletes every stored row and empties the
// optimistic buffer with it.
func (h *TransactionHandler) HandleClearTransactions(w http.ResponseWriter, r *http.Request) {
	if err := database.ClearTransactions(); err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Failed to clear transactions: %v", err), http.StatusInternalServerError)
		return
	}
	h.buffer.Clear()
	logger.L.Info("All transactions cleared")
	utils.SendJSON(w, map[string]string{"status": "cleared"}, http.StatusOK)
}
