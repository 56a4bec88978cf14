package handlers

import (
	"net/http"
	"strings"

	"github.com/photofolio/server/internal/models"
	"github.com/photofolio/server/internal/services"
)

// SearchHandler evaluates the search modal server-side
type SearchHandler struct {
	gallery *services.GalleryService
}

// NewSearchHandler creates a new SearchHandler
func NewSearchHandler(gallery *services.GalleryService) *SearchHandler {
	return &SearchHandler{gallery: gallery}
}

// Search handles GET /api/search?q=&type=&label=.
// q narrows the sidebar; type and label select photos.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	var state services.SearchState
	state.SetQuery(params.Get("q"))

	rawType := strings.TrimSpace(params.Get("type"))
	label := strings.TrimSpace(params.Get("label"))
	if rawType != "" {
		filterType, err := models.ParseFilterType(rawType)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if label != "" {
			state.Select(filterType, label)
		}
	}

	result, err := h.gallery.Search(r.Context(), state)
	if err != nil {
		respondFeedError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
