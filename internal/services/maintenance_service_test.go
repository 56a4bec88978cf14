package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/photofolio/server/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMaintenanceService_RunOnce(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("refreshes the feed and prunes old cache entries", func(t *testing.T) {
		source := &fakeSource{docs: []*models.PhotoDocument{docWithAsset("a"), docWithAsset("b")}}
		gallery := newTestGallery(source, nil, 2)
		cache := &memoryExifCache{}
		require.NoError(t, cache.Put(ctx, &models.BinaryExif{AssetID: "image-old", ExtractedAt: now.AddDate(0, 0, -40)}))
		require.NoError(t, cache.Put(ctx, &models.BinaryExif{AssetID: "image-new", ExtractedAt: now.AddDate(0, 0, -2)}))

		svc := NewMaintenanceService(gallery, cache, time.Hour, 30*24*time.Hour)
		svc.now = func() time.Time { return now }
		svc.RunOnce(ctx)

		status := svc.GetStatus()
		assert.False(t, status.Running)
		assert.Equal(t, 2, status.FeedPhotos)
		assert.Equal(t, int64(1), status.ExifPruned)
		assert.Empty(t, status.Errors)
		assert.Equal(t, now, status.LastRun)
		assert.Equal(t, now.Add(time.Hour), status.NextScheduledRun)
		assert.Equal(t, 1, source.callCount())

		// the warmed feed is served from cache
		_, err := gallery.Feed(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, source.callCount())

		old, _ := cache.Get(ctx, "image-old")
		assert.Nil(t, old)
	})

	t.Run("records a failed refresh", func(t *testing.T) {
		source := &fakeSource{err: errors.New("content store down")}
		svc := NewMaintenanceService(newTestGallery(source, nil, 1), nil, time.Hour, 0)
		svc.RunOnce(ctx)

		status := svc.GetStatus()
		require.Len(t, status.Errors, 1)
		assert.Contains(t, status.Errors[0], "content store down")
		assert.Zero(t, status.FeedPhotos)
	})

	t.Run("zero retention keeps the cache", func(t *testing.T) {
		cache := &memoryExifCache{}
		require.NoError(t, cache.Put(ctx, &models.BinaryExif{AssetID: "image-old", ExtractedAt: now.AddDate(-5, 0, 0)}))

		svc := NewMaintenanceService(nil, cache, time.Hour, 0)
		svc.RunOnce(ctx)

		kept, _ := cache.Get(ctx, "image-old")
		assert.NotNil(t, kept)
	})
}

func TestMaintenanceService_Run(t *testing.T) {
	defer goleak.VerifyNone(t)

	source := &fakeSource{}
	svc := NewMaintenanceService(newTestGallery(source, nil, 1), nil, time.Hour, 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return source.callCount() == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("maintenance loop did not stop")
	}

	t.Run("disabled when interval is zero", func(t *testing.T) {
		disabled := NewMaintenanceService(nil, nil, 0, 0)
		disabled.Run(context.Background())
		assert.True(t, disabled.GetStatus().LastRun.IsZero())
	})
}
