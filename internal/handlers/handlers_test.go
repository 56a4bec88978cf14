package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/photofolio/server/internal/middleware"
	"github.com/photofolio/server/internal/models"
	"github.com/photofolio/server/internal/repository"
	"github.com/photofolio/server/internal/services"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	mu   sync.Mutex
	docs []*models.PhotoDocument
	err  error
}

func (s *stubSource) ListPhotos(ctx context.Context) ([]*models.PhotoDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs, s.err
}

func (s *stubSource) ImageURL(asset *models.ImageAsset, width int) string {
	return "https://cdn.test/" + asset.ID
}

func photoDoc(id, title string, tags []string, location, device, date string) *models.PhotoDocument {
	return &models.PhotoDocument{
		ID:       id,
		Title:    title,
		Tags:     tags,
		Location: location,
		Device:   device,
		Date:     date,
		Image:    &models.ImageField{Asset: &models.ImageAsset{ID: "image-" + id, URL: "https://orig.test/" + id}},
	}
}

type testServer struct {
	router http.Handler
	fs     afero.Fs
	source *stubSource
}

func newTestServer(t *testing.T, source *stubSource) *testServer {
	db, err := repository.NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	clock, err := services.NewClockService("UTC")
	require.NoError(t, err)

	hub := services.NewWebSocketHub()
	resolver := services.NewMetadataResolver(source, nil, 2000)
	gallery := services.NewGalleryService(source, resolver, services.GalleryOptions{Revalidate: time.Minute, Concurrency: 2})
	prefs := services.NewPreferencesService(repository.NewPreferencesRepository(db), hub, nil)

	fs := afero.NewMemMapFs()
	page := NewPageHandler(gallery, prefs, clock, PageOptions{
		SiteTitle:    "Photofolio",
		TemplatePath: "/templates",
		Fs:           fs,
	})

	r := chi.NewRouter()
	r.Use(middleware.Visitor)
	r.Get("/", page.Home)
	r.Get("/api/photos", page.Photos)
	r.Get("/api/search", NewSearchHandler(gallery).Search)
	prefsHandler := NewPreferencesHandler(prefs)
	r.Get("/api/preferences", prefsHandler.Get)
	r.Put("/api/preferences/theme", prefsHandler.SetTheme)
	r.Post("/api/preferences/theme/toggle", prefsHandler.Toggle)
	r.Get("/api/clock", NewClockHandler(clock).Now)
	r.Get("/api/health", NewHealthHandler().HealthCheck)
	r.Get("/api/version", VersionHandler)
	maintenance := services.NewMaintenanceService(gallery, nil, time.Hour, 0)
	r.Get("/api/maintenance", NewMaintenanceHandler(maintenance).Status)

	return &testServer{router: r, fs: fs, source: source}
}

func (s *testServer) do(t *testing.T, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func portfolio() *stubSource {
	return &stubSource{docs: []*models.PhotoDocument{
		photoDoc("a", "Tram 28", []string{"Lisbon", "street"}, "Portugal", "X100V", "2023-01-01"),
		photoDoc("b", "Shibuya", []string{"Tokyo", "street"}, "Japan", "", "2023-06-15"),
	}}
}

func TestPageHandler_Home(t *testing.T) {
	t.Run("renders photos with default theme", func(t *testing.T) {
		srv := newTestServer(t, portfolio())

		rec := srv.do(t, http.MethodGet, "/", "")
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, `<html lang="en" class="dark">`)
		assert.Contains(t, body, "Tram 28")
		assert.Contains(t, body, "https://cdn.test/image-a")
		assert.Contains(t, body, "UNKNOWN CAMERA")
		assert.Contains(t, body, "SEARCH (2)")
		assert.NotContains(t, body, "NO PHOTOS FOUND")
	})

	t.Run("empty feed", func(t *testing.T) {
		srv := newTestServer(t, &stubSource{})

		rec := srv.do(t, http.MethodGet, "/", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "NO PHOTOS FOUND")
	})

	t.Run("content store down", func(t *testing.T) {
		srv := newTestServer(t, &stubSource{err: models.ErrContentStoreUnavailable})

		rec := srv.do(t, http.MethodGet, "/", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "PHOTOS UNAVAILABLE")
	})

	t.Run("light theme after toggle", func(t *testing.T) {
		srv := newTestServer(t, portfolio())

		first := srv.do(t, http.MethodPost, "/api/preferences/theme/toggle", "")
		require.Equal(t, http.StatusOK, first.Code)
		cookies := first.Result().Cookies()
		require.Len(t, cookies, 1)

		rec := srv.do(t, http.MethodGet, "/", "", cookies[0])
		assert.Contains(t, rec.Body.String(), `class="light"`)
	})

	t.Run("template override from filesystem", func(t *testing.T) {
		srv := newTestServer(t, portfolio())
		require.NoError(t, afero.WriteFile(srv.fs, "/templates/home.html",
			[]byte(`<p>{{len .Photos}} photos, {{upper .Theme}}</p>`), 0o644))

		rec := srv.do(t, http.MethodGet, "/", "")
		assert.Equal(t, "<p>2 photos, DARK</p>", rec.Body.String())
	})

	t.Run("broken override falls back", func(t *testing.T) {
		srv := newTestServer(t, portfolio())
		require.NoError(t, afero.WriteFile(srv.fs, "/templates/home.html", []byte(`{{.Nope`), 0o644))

		rec := srv.do(t, http.MethodGet, "/", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Tram 28")
	})
}

func TestPageHandler_Photos(t *testing.T) {
	t.Run("returns feed json", func(t *testing.T) {
		srv := newTestServer(t, portfolio())

		rec := srv.do(t, http.MethodGet, "/api/photos", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp models.PhotoListResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Photos, 2)
		assert.Equal(t, "a", resp.Photos[0].ID)
		assert.Equal(t, "JAN 1, 2023, 12:00 AM", resp.Photos[0].Date)
		assert.Equal(t, 2, resp.Stats.TotalCount)
		assert.Equal(t, []models.AggregateStat{{Label: "X100V", Count: 1}}, resp.Stats.Cameras)
	})

	t.Run("503 when the content store is down", func(t *testing.T) {
		srv := newTestServer(t, &stubSource{err: models.ErrContentStoreUnavailable})

		rec := srv.do(t, http.MethodGet, "/api/photos", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var resp models.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Error)
	})
}

func TestSearchHandler(t *testing.T) {
	srv := newTestServer(t, portfolio())

	t.Run("filters by tag", func(t *testing.T) {
		rec := srv.do(t, http.MethodGet, "/api/search?type=tag&label=LISBON", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var res models.SearchResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		require.Len(t, res.Photos, 1)
		assert.Equal(t, "a", res.Photos[0].ID)
		assert.Equal(t, "1 JAN 2023", res.DateRange)
	})

	t.Run("date range across matches", func(t *testing.T) {
		rec := srv.do(t, http.MethodGet, "/api/search?type=tag&label=street", "")

		var res models.SearchResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, 2, res.Count)
		assert.Equal(t, "15 JUN 2023 - 1 JAN 2023", res.DateRange)
	})

	t.Run("query narrows sidebar only", func(t *testing.T) {
		rec := srv.do(t, http.MethodGet, "/api/search?q=to", "")

		var res models.SearchResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, []models.AggregateStat{{Label: "TOKYO", Count: 1}}, res.Sidebar.Tags)
		assert.Empty(t, res.Photos)
		assert.Nil(t, res.Active)
	})

	t.Run("rejects unknown filter type", func(t *testing.T) {
		rec := srv.do(t, http.MethodGet, "/api/search?type=lens&label=35mm", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestPreferencesHandler(t *testing.T) {
	srv := newTestServer(t, portfolio())

	first := srv.do(t, http.MethodGet, "/api/preferences", "")
	require.Equal(t, http.StatusOK, first.Code)
	assert.JSONEq(t, `{"theme":"dark"}`, first.Body.String())
	visitor := first.Result().Cookies()[0]

	rec := srv.do(t, http.MethodPut, "/api/preferences/theme", `{"theme":"LIGHT"}`, visitor)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"theme":"light"}`, rec.Body.String())

	rec = srv.do(t, http.MethodGet, "/api/preferences", "", visitor)
	assert.JSONEq(t, `{"theme":"light"}`, rec.Body.String())

	rec = srv.do(t, http.MethodPost, "/api/preferences/theme/toggle", "", visitor)
	assert.JSONEq(t, `{"theme":"dark"}`, rec.Body.String())

	rec = srv.do(t, http.MethodPut, "/api/preferences/theme", `{"theme":"sepia"}`, visitor)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodPut, "/api/preferences/theme", `not json`, visitor)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClockAndHealth(t *testing.T) {
	srv := newTestServer(t, portfolio())

	rec := srv.do(t, http.MethodGet, "/api/clock", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var clock models.ClockResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &clock))
	assert.Equal(t, "UTC", clock.Timezone)
	assert.Regexp(t, `^\d{1,2}:\d{2}:\d{2} (AM|PM)$`, clock.Time)

	rec = srv.do(t, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)

	rec = srv.do(t, http.MethodGet, "/api/version", "")
	assert.Contains(t, rec.Body.String(), `"service":"photofolio"`)
}

func TestMaintenanceHandler(t *testing.T) {
	srv := newTestServer(t, portfolio())

	rec := srv.do(t, http.MethodGet, "/api/maintenance", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var status services.MaintenanceStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.False(t, status.Running)
	assert.True(t, status.LastRun.IsZero())
}

func TestTopicOf(t *testing.T) {
	assert.Equal(t, "clock", topicOf("clock"))
	assert.Equal(t, "feed", topicOf(map[string]interface{}{"topic": "feed"}))
	assert.Empty(t, topicOf(42))
}
