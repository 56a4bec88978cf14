package handlers

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/photofolio/server/internal/middleware"
	"github.com/photofolio/server/internal/models"
	"github.com/photofolio/server/internal/observability"
	"github.com/photofolio/server/internal/services"
	"github.com/spf13/afero"
)

var templateFuncs = template.FuncMap{
	"upper": strings.ToUpper,
}

var homeTemplate = template.Must(template.New("home").Funcs(templateFuncs).Parse(embeddedHomeTemplate))

// PageData is what the home template renders
type PageData struct {
	SiteTitle   string
	SiteURL     string
	Theme       string
	Clock       string
	Timezone    string
	Photos      []*models.Photo
	Stats       models.Stats
	Unavailable bool
}

// PageOptions configures a PageHandler
type PageOptions struct {
	SiteTitle    string
	SiteURL      string
	TemplatePath string
	Fs           afero.Fs
}

// PageHandler serves the portfolio page and its feed
type PageHandler struct {
	gallery *services.GalleryService
	prefs   *services.PreferencesService
	clock   *services.ClockService
	opts    PageOptions
}

// NewPageHandler creates a new PageHandler
func NewPageHandler(gallery *services.GalleryService, prefs *services.PreferencesService, clock *services.ClockService, opts PageOptions) *PageHandler {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	return &PageHandler{
		gallery: gallery,
		prefs:   prefs,
		clock:   clock,
		opts:    opts,
	}
}

// Home renders the page. A content store outage without any cached feed
// renders the empty state with a 503.
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := observability.WithContext(ctx)

	data := PageData{
		SiteTitle: h.opts.SiteTitle,
		SiteURL:   h.opts.SiteURL,
		Theme:     string(models.DefaultTheme),
		Clock:     h.clock.Now(),
		Timezone:  h.clock.Timezone(),
		Photos:    []*models.Photo{},
	}
	status := http.StatusOK

	feed, err := h.gallery.Feed(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to load feed")
		data.Unavailable = true
		status = http.StatusServiceUnavailable
	} else {
		data.Photos = feed.Photos
		data.Stats = feed.Stats
	}

	if visitorID := middleware.GetVisitorID(ctx); visitorID != "" {
		if state, err := h.prefs.Load(ctx, visitorID); err != nil {
			log.WithError(err).Warn("Failed to load preferences, using default theme")
		} else {
			data.Theme = string(state.Theme())
		}
	}

	// render into a buffer so a template error can still become a 500
	var buf bytes.Buffer
	if err := h.template().Execute(&buf, data); err != nil {
		log.WithError(err).Error("Failed to render page")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// template returns home.html from the template path if present, else the embedded page
func (h *PageHandler) template() *template.Template {
	if h.opts.TemplatePath == "" {
		return homeTemplate
	}

	file := filepath.Join(h.opts.TemplatePath, "home.html")
	content, err := afero.ReadFile(h.opts.Fs, file)
	if err != nil {
		return homeTemplate
	}

	tmpl, err := template.New("home").Funcs(templateFuncs).Parse(string(content))
	if err != nil {
		observability.WithField("template", file).WithError(err).Warn("Invalid page template, using embedded page")
		return homeTemplate
	}
	return tmpl
}

// Photos returns the feed as JSON
func (h *PageHandler) Photos(w http.ResponseWriter, r *http.Request) {
	feed, err := h.gallery.Feed(r.Context())
	if err != nil {
		respondFeedError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, models.PhotoListResponse{
		Stats:  feed.Stats,
		Photos: feed.Photos,
	})
}

func respondFeedError(w http.ResponseWriter, err error) {
	observability.WithError(err).Error("Failed to load feed")
	if errors.Is(err, models.ErrContentStoreUnavailable) {
		respondError(w, http.StatusServiceUnavailable, "Photos are temporarily unavailable.")
		return
	}
	respondError(w, http.StatusServiceUnavailable, "Failed to load photos.")
}
