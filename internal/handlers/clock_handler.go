package handlers

import (
	"net/http"

	"github.com/photofolio/server/internal/models"
	"github.com/photofolio/server/internal/services"
)

// ClockHandler serves the header clock
type ClockHandler struct {
	clock *services.ClockService
}

// NewClockHandler creates a new ClockHandler
func NewClockHandler(clock *services.ClockService) *ClockHandler {
	return &ClockHandler{clock: clock}
}

// Now returns the current clock reading
func (h *ClockHandler) Now(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.ClockResponse{
		Time:     h.clock.Now(),
		Timezone: h.clock.Timezone(),
	})
}
