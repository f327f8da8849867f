package handlers

import (
	"fmt"
	"net/http"

	"github.com/username/fintrack/backend/src/database"
	"github.com/username/fintrack/backend/src/logger"
	"github.com/username/fintrack/backend/src/optimistic"
	"github.com/username/fintrack/backend/src/utils"
)

// MaintenanceHandler exposes the danger-zone actions: factory reset and
// database file compaction.
type MaintenanceHandler struct {
	buffer *optimistic.Buffer
}

func NewMaintenanceHandler(buffer *optimistic.Buffer) *MaintenanceHandler {
	return &MaintenanceHandler{buffer: buffer}
}

// HandleResetDatabase deletes the database file, recreates a fresh schema
// and empties the optimistic buffer, then compacts the new file. Everything
// stored is lost; the confirmation step belongs to the client.
func (h *MaintenanceHandler) HandleResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := database.ResetDatabase(); err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Failed to reset database: %v", err), http.StatusInternalServerError)
		return
	}
	h.buffer.Clear()
	if err := database.Vacuum(); err != nil {
		logger.L.Warn("Vacuum after reset failed", "error", err)
	}
	logger.L.Info("Database reset to fresh schema")
	utils.SendJSON(w, map[string]string{"status": "reset"}, http.StatusOK)
}

// HandleVacuum reclaims space in the database file.
func (h *MaintenanceHandler) HandleVacuum(w http.ResponseWriter, r *http.Request) {
	if err := database.Vacuum(); err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Failed to vacuum database: %v", err), http.StatusInternalServerError)
		return
	}
	logger.L.Info("Database vacuumed")
	utils.SendJSON(w, map[string]string{"status": "vacuumed"}, http.StatusOK)
}
