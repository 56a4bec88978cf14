package services

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/photofolio/server/internal/models"
)

type fakeSource struct {
	mu    sync.Mutex
	docs  []*models.PhotoDocument
	err   error
	calls int
}

func (f *fakeSource) ListPhotos(ctx context.Context) ([]*models.PhotoDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.docs, nil
}

func (f *fakeSource) ImageURL(asset *models.ImageAsset, width int) string {
	return "https://cdn.test/" + asset.ID
}

func (f *fakeSource) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeLoader struct {
	result *models.BinaryExif
	err    error
	calls  atomic.Int32
}

func (f *fakeLoader) Load(ctx context.Context, asset *models.ImageAsset) (*models.BinaryExif, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type memoryPrefs struct {
	mu    sync.Mutex
	rows  map[string]models.Preferences
	err   error
	saves int
}

func newMemoryPrefs() *memoryPrefs {
	return &memoryPrefs{rows: make(map[string]models.Preferences)}
}

func (m *memoryPrefs) Get(ctx context.Context, visitorID string) (*models.Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[visitorID]
	if !ok {
		return nil, models.ErrPreferencesNotFound
	}
	return &p, nil
}

func (m *memoryPrefs) Upsert(ctx context.Context, prefs *models.Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.saves++
	m.rows[prefs.VisitorID] = *prefs
	return nil
}

func float(v float64) *float64 {
	return &v
}

func docWithAsset(id string) *models.PhotoDocument {
	return &models.PhotoDocument{
		ID:    id,
		Image: &models.ImageField{Asset: &models.ImageAsset{ID: "image-" + id, URL: "https://orig.test/" + id}},
	}
}

func withEmbedded(doc *models.PhotoDocument, exif *models.EmbeddedExif) *models.PhotoDocument {
	doc.Image.Asset.Metadata = &models.AssetMetadata{Exif: exif}
	return doc
}
