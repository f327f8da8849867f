package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/username/fintrack/backend/src/database"
	"github.com/username/fintrack/backend/src/logger"
	"github.com/username/fintrack/backend/src/services"
	"github.com/username/fintrack/backend/src/utils"
)

type ExportHandler struct {
	fx            *services.FXService
	maxImportSize int64
}

func NewExportHandler(fx *services.FXService, maxImportSize int64) *ExportHandler {
	return &ExportHandler{fx: fx, maxImportSize: maxImportSize}
}

// HandleExport streams all stored transactions as CSV (default) or JSON.
func (h *ExportHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	switch format {
	case "json":
		data, err := services.ExportTransactionsJSON()
		if err != nil {
			utils.SendJSONError(w, fmt.Sprintf("Export failed: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="transactions_export.json"`)
		w.Write(data)
	case "csv", "":
		data, err := services.ExportTransactionsCSV()
		if err != nil {
			utils.SendJSONError(w, fmt.Sprintf("Export failed: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="transactions_export.csv"`)
		w.Write(data)
	default:
		utils.SendJSONError(w, fmt.Sprintf("Unsupported export format '%s'", format), http.StatusBadRequest)
	}
}

// HandleImport ingests a CSV or JSON document of transactions, chosen by
// Content-Type. Imported rows get their normalized amount backfilled with
// the shared table afterwards; currencies without a rate stay NULL for a
// later pass.
func (h *ExportHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, h.maxImportSize)
	defer body.Close()

	var (
		result services.ImportResult
		err    error
	)
	contentType := r.Header.Get("Content-Type")
	switch {
	case strings.Contains(contentType, "application/json"):
		result, err = services.ImportTransactionsJSON(body)
	case strings.Contains(contentType, "text/csv"), strings.Contains(contentType, "application/csv"):
		result, err = services.ImportTransactionsCSV(body)
	default:
		utils.SendJSONError(w, fmt.Sprintf("Unsupported Content-Type '%s': use text/csv or application/json", contentType), http.StatusUnsupportedMediaType)
		return
	}
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Import failed: %v", err), http.StatusInternalServerError)
		return
	}

	if result.Inserted > 0 {
		updated, backfillErr := database.BackfillNormalizedAmounts(h.fx.SharedRates())
		if backfillErr != nil {
			logger.L.Warn("Backfill after import failed", "error", backfillErr)
		} else {
			logger.L.Info("Backfilled normalized amounts after import", "updated", updated)
		}
	}

	logger.L.Info("Import finished", "inserted", result.Inserted, "skipped", result.Skipped, "errors", len(result.Errors))
	utils.SendJSON(w, result, http.StatusOK)
}
