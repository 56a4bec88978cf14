package services

import (
	"context"
	"sync"
	"time"

	"github.com/photofolio/server/internal/observability"
	"github.com/photofolio/server/internal/repository"
)

// MaintenanceStatus represents the current status of maintenance tasks
type MaintenanceStatus struct {
	Running          bool      `json:"running"`
	LastRun          time.Time `json:"lastRun,omitempty"`
	LastRunDuration  string    `json:"lastRunDuration,omitempty"`
	FeedPhotos       int       `json:"feedPhotos"`
	ExifPruned       int64     `json:"exifPruned"`
	Errors           []string  `json:"errors,omitempty"`
	NextScheduledRun time.Time `json:"nextScheduledRun,omitempty"`
}

// MaintenanceService keeps the feed warm between visits and prunes the EXIF cache
type MaintenanceService struct {
	gallery   *GalleryService
	exifCache repository.ExifCacheRepo
	interval  time.Duration
	retention time.Duration
	now       func() time.Time

	mu      sync.RWMutex
	running bool
	status  MaintenanceStatus
}

// NewMaintenanceService creates a new MaintenanceService. A zero retention keeps
// cached EXIF forever.
func NewMaintenanceService(gallery *GalleryService, exifCache repository.ExifCacheRepo, interval, retention time.Duration) *MaintenanceService {
	return &MaintenanceService{
		gallery:   gallery,
		exifCache: exifCache,
		interval:  interval,
		retention: retention,
		now:       time.Now,
		status:    MaintenanceStatus{Errors: []string{}},
	}
}

// Run performs one pass immediately, then one per interval until ctx is done
func (s *MaintenanceService) Run(ctx context.Context) {
	if s.interval <= 0 {
		observability.Info("Maintenance disabled")
		return
	}
	observability.Infof("Maintenance service started (runs every %s)", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// GetStatus returns the current maintenance status
func (s *MaintenanceService) GetStatus() MaintenanceStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// RunOnce performs all maintenance tasks; a pass already in flight makes it a no-op
func (s *MaintenanceService) RunOnce(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		observability.Debugf("Maintenance already running, skipping")
		return
	}
	s.running = true
	s.status.Running = true
	s.mu.Unlock()

	ctx, span := observability.StartServiceSpan(ctx, "maintenance", "run")
	defer span.End()

	start := s.now()
	var errs []string

	photos, err := s.warmFeed(ctx)
	if err != nil {
		errs = append(errs, "feed refresh: "+err.Error())
	}

	pruned, err := s.pruneExifCache(ctx, start)
	if err != nil {
		errs = append(errs, "exif cache prune: "+err.Error())
	}

	duration := s.now().Sub(start)

	s.mu.Lock()
	s.running = false
	s.status.Running = false
	s.status.LastRun = start
	s.status.LastRunDuration = duration.Round(time.Millisecond).String()
	s.status.FeedPhotos = photos
	s.status.ExifPruned = pruned
	s.status.Errors = append([]string{}, errs...)
	if s.interval > 0 {
		s.status.NextScheduledRun = start.Add(s.interval)
	}
	s.mu.Unlock()

	log := observability.WithContext(ctx).WithFields(map[string]interface{}{
		"photos":      photos,
		"exif_pruned": pruned,
		"duration":    duration.Round(time.Millisecond).String(),
	})
	if len(errs) > 0 {
		log.WithField("errors", len(errs)).Warn("Maintenance completed with errors")
		return
	}
	observability.SetSuccess(span)
	log.Info("Maintenance completed")
}

func (s *MaintenanceService) warmFeed(ctx context.Context) (int, error) {
	if s.gallery == nil {
		return 0, nil
	}
	feed, err := s.gallery.Refresh(ctx)
	if err != nil {
		return 0, err
	}
	return len(feed.Photos), nil
}

func (s *MaintenanceService) pruneExifCache(ctx context.Context, now time.Time) (int64, error) {
	if s.exifCache == nil || s.retention <= 0 {
		return 0, nil
	}
	return s.exifCache.Prune(ctx, now.Add(-s.retention))
}
