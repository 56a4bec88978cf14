package services

import (
	"context"
	"errors"
	"time"

	"github.com/photofolio/server/internal/models"
	"github.com/photofolio/server/internal/observability"
	"github.com/photofolio/server/internal/repository"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// GalleryService builds the photo feed and keeps it cached
type GalleryService struct {
	source      repository.PhotoSource
	resolver    *MetadataResolver
	stats       *StatsService
	cache       *FeedCache
	hub         *WebSocketHub
	metrics     *observability.GalleryMetrics
	concurrency int
	builds      singleflight.Group
}

// GalleryOptions configures a GalleryService
type GalleryOptions struct {
	Revalidate  time.Duration
	Concurrency int
	Hub         *WebSocketHub
	Metrics     *observability.GalleryMetrics
}

// NewGalleryService creates a gallery service
func NewGalleryService(source repository.PhotoSource, resolver *MetadataResolver, opts GalleryOptions) *GalleryService {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &GalleryService{
		source:      source,
		resolver:    resolver,
		stats:       NewStatsService(),
		cache:       NewFeedCache(opts.Revalidate),
		hub:         opts.Hub,
		metrics:     opts.Metrics,
		concurrency: opts.Concurrency,
	}
}

// Feed returns the cached feed, rebuilding it once the revalidate interval
// has passed. A failed rebuild falls back to the previous feed if there is one.
func (s *GalleryService) Feed(ctx context.Context) (*models.Feed, error) {
	if feed, ok := s.cache.Get(); ok {
		s.metrics.RecordCacheHit(ctx)
		return feed, nil
	}

	feed, err := s.Refresh(ctx)
	if err == nil {
		return feed, nil
	}

	if stale := s.cache.Stale(); stale != nil {
		observability.WithContext(ctx).WithError(err).Warn("Feed refresh failed, serving previous feed")
		return stale, nil
	}
	return nil, err
}

// Refresh rebuilds and caches the feed. Concurrent callers share one build,
// which outlives any single request.
func (s *GalleryService) Refresh(ctx context.Context) (*models.Feed, error) {
	v, err, _ := s.builds.Do("feed", func() (interface{}, error) {
		return s.refresh(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Feed), nil
}

func (s *GalleryService) refresh(ctx context.Context) (*models.Feed, error) {
	feed, err := s.Build(ctx)
	if err != nil {
		return nil, err
	}

	s.cache.Set(feed)
	if s.hub != nil {
		s.hub.BroadcastToTopic(TopicFeed, WSMessage{
			Type: WSTypeFeedUpdated,
			Payload: FeedUpdatedPayload{
				Count:       len(feed.Photos),
				GeneratedAt: feed.GeneratedAt,
			},
		})
	}
	return feed, nil
}

// Build queries the content store and resolves every document, bypassing the cache
func (s *GalleryService) Build(ctx context.Context) (*models.Feed, error) {
	ctx, span := observability.StartServiceSpan(ctx, "gallery", "build_feed")
	defer span.End()

	start := time.Now()
	docs, err := s.source.ListPhotos(ctx)
	if err != nil {
		observability.RecordError(span, err)
		s.metrics.RecordFeedBuild(ctx, 0, false)
		return nil, err
	}

	photos := s.resolveAll(ctx, docs)

	feed := &models.Feed{
		Photos:      photos,
		Stats:       s.stats.Aggregate(photos),
		GeneratedAt: time.Now().UTC(),
	}

	span.SetAttributes(
		attribute.Int("gallery.documents", len(docs)),
		attribute.Int("gallery.photos", len(photos)),
		observability.Duration(time.Since(start)),
	)
	observability.SetSuccess(span)
	s.metrics.RecordFeedBuild(ctx, len(photos), true)

	observability.WithContext(ctx).WithFields(map[string]interface{}{
		"documents": len(docs),
		"photos":    len(photos),
		"duration":  time.Since(start).Round(time.Millisecond).String(),
	}).Info("Feed built")

	return feed, nil
}

// resolveAll resolves documents concurrently; each result lands in its
// own slot so the feed keeps query order.
func (s *GalleryService) resolveAll(ctx context.Context, docs []*models.PhotoDocument) []*models.Photo {
	slots := make([]*models.Photo, len(docs))

	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for i, doc := range docs {
		if doc == nil {
			continue
		}
		i, doc := i, doc
		g.Go(func() error {
			photo, err := s.resolver.Resolve(ctx, doc)
			if err != nil {
				if !errors.Is(err, models.ErrNoAsset) {
					observability.WithContext(ctx).WithField("photo_id", doc.ID).WithError(err).Warn("Photo resolution failed")
				}
				return nil
			}
			slots[i] = photo
			return nil
		})
	}
	_ = g.Wait()

	photos := make([]*models.Photo, 0, len(slots))
	for _, p := range slots {
		if p != nil {
			photos = append(photos, p)
		}
	}
	return photos
}

// Search evaluates a search modal state against the current feed
func (s *GalleryService) Search(ctx context.Context, state SearchState) (models.SearchResult, error) {
	feed, err := s.Feed(ctx)
	if err != nil {
		return models.SearchResult{}, err
	}

	result := state.Evaluate(feed.Stats, feed.Photos)

	filterType := "none"
	if state.Active != nil {
		filterType = string(state.Active.Type)
	}
	s.metrics.RecordSearch(ctx, filterType, result.Count)

	return result, nil
}
