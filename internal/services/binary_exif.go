package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/photofolio/server/internal/models"
	"github.com/photofolio/server/internal/observability"
	"github.com/photofolio/server/internal/repository"
	"go.opentelemetry.io/otel/attribute"
)

// maxImageBytes caps a single original download
const maxImageBytes = 64 << 20

// BinaryExifLoader recovers EXIF from an asset's original bytes
type BinaryExifLoader interface {
	Load(ctx context.Context, asset *models.ImageAsset) (*models.BinaryExif, error)
}

// BinaryExifService downloads originals and decodes their EXIF,
// remembering results in the EXIF cache so later feeds skip the download.
type BinaryExifService struct {
	client  *http.Client
	exif    *EXIFService
	cache   repository.ExifCacheRepo
	metrics *observability.GalleryMetrics
}

// NewBinaryExifService creates a BinaryExifService; cache and metrics may be nil
func NewBinaryExifService(timeout time.Duration, cache repository.ExifCacheRepo, metrics *observability.GalleryMetrics) *BinaryExifService {
	return &BinaryExifService{
		client:  &http.Client{Timeout: timeout},
		exif:    NewEXIFService(),
		cache:   cache,
		metrics: metrics,
	}
}

// Load returns the cached extraction for the asset or fetches and decodes it
func (s *BinaryExifService) Load(ctx context.Context, asset *models.ImageAsset) (*models.BinaryExif, error) {
	if asset == nil || asset.URL == "" {
		return nil, fmt.Errorf("asset has no url")
	}

	ctx, span := observability.StartServiceSpan(ctx, "binary_exif", "load")
	defer span.End()
	span.SetAttributes(observability.AssetURL(asset.URL))

	log := observability.WithContext(ctx).WithField("asset_id", asset.ID)

	if s.cache != nil && asset.ID != "" {
		cached, err := s.cache.Get(ctx, asset.ID)
		if err != nil {
			log.WithError(err).Warn("EXIF cache read failed")
		} else if cached != nil {
			span.SetAttributes(attribute.Bool("exif.cached", true))
			s.metrics.RecordBinaryFetch(ctx, true, true)
			observability.SetSuccess(span)
			return cached, nil
		}
	}

	data, err := s.fetch(ctx, asset.URL)
	if err != nil {
		observability.RecordError(span, err)
		s.metrics.RecordBinaryFetch(ctx, false, false)
		return nil, err
	}

	result, err := s.exif.Extract(data)
	if err != nil {
		observability.RecordError(span, err)
		s.metrics.RecordBinaryFetch(ctx, false, false)
		return nil, err
	}
	stampExtraction(result, asset.ID)
	s.metrics.RecordBinaryFetch(ctx, false, true)

	// an empty extraction is cached too; the bytes will not change
	if s.cache != nil && asset.ID != "" {
		if err := s.cache.Put(ctx, result); err != nil {
			log.WithError(err).Warn("EXIF cache write failed")
		}
	}

	span.SetAttributes(attribute.Int("exif.tags", len(result.Tags)))
	observability.SetSuccess(span)
	return result, nil
}

func (s *BinaryExifService) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return data, nil
}
