package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/photofolio/server/internal/middleware"
	"github.com/photofolio/server/internal/models"
	"github.com/photofolio/server/internal/observability"
	"github.com/photofolio/server/internal/services"
)

// PreferencesHandler exposes the visitor's theme
type PreferencesHandler struct {
	prefs *services.PreferencesService
}

// NewPreferencesHandler creates a new PreferencesHandler
func NewPreferencesHandler(prefs *services.PreferencesService) *PreferencesHandler {
	return &PreferencesHandler{prefs: prefs}
}

// Get returns the visitor's current theme
func (h *PreferencesHandler) Get(w http.ResponseWriter, r *http.Request) {
	state, err := h.prefs.Load(r.Context(), middleware.GetVisitorID(r.Context()))
	if err != nil {
		observability.WithContext(r.Context()).WithError(err).Error("Failed to load preferences")
		respondError(w, http.StatusInternalServerError, "Failed to load preferences.")
		return
	}

	respondJSON(w, http.StatusOK, models.ThemeResponse{Theme: state.Theme()})
}

// SetTheme stores an explicit theme
func (h *PreferencesHandler) SetTheme(w http.ResponseWriter, r *http.Request) {
	var req models.ThemeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	theme, err := models.ParseTheme(req.Theme)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	theme, err = h.prefs.SetTheme(r.Context(), middleware.GetVisitorID(r.Context()), theme)
	if err != nil {
		observability.WithContext(r.Context()).WithError(err).Error("Failed to save theme")
		respondError(w, http.StatusInternalServerError, "Failed to save preferences.")
		return
	}

	respondJSON(w, http.StatusOK, models.ThemeResponse{Theme: theme})
}

// Toggle flips between dark and light
func (h *PreferencesHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	theme, err := h.prefs.ToggleTheme(r.Context(), middleware.GetVisitorID(r.Context()))
	if err != nil {
		observability.WithContext(r.Context()).WithError(err).Error("Failed to toggle theme")
		respondError(w, http.StatusInternalServerError, "Failed to save preferences.")
		return
	}

	respondJSON(w, http.StatusOK, models.ThemeResponse{Theme: theme})
}
