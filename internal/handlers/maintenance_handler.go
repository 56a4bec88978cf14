package handlers

import (
	"net/http"

	"github.com/photofolio/server/internal/services"
)

// MaintenanceHandler reports on the background maintenance loop
type MaintenanceHandler struct {
	maintenance *services.MaintenanceService
}

// NewMaintenanceHandler creates a new MaintenanceHandler
func NewMaintenanceHandler(maintenance *services.MaintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{maintenance: maintenance}
}

// Status returns the last maintenance pass
func (h *MaintenanceHandler) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.maintenance.GetStatus())
}
