package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/photofolio/server/internal/config"
	"github.com/photofolio/server/internal/handlers"
	"github.com/photofolio/server/internal/observability"
	"github.com/photofolio/server/internal/repository"
	"github.com/photofolio/server/internal/services"
)

// app holds the wired services shared by the commands
type app struct {
	cfg         *config.Config
	telemetry   *observability.Telemetry
	db          *observability.TraceDB
	hub         *services.WebSocketHub
	clock       *services.ClockService
	gallery     *services.GalleryService
	prefs       *services.PreferencesService
	maintenance *services.MaintenanceService
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	telemetry, err := observability.Initialize(ctx, observability.NewConfig("photofolio", handlers.Version))
	if err != nil {
		return nil, fmt.Errorf("initialize telemetry: %w", err)
	}

	metrics, err := observability.NewGalleryMetrics()
	if err != nil {
		observability.Warnf("Gallery metrics disabled: %v", err)
	}

	var db *sql.DB
	system := "sqlite"
	if cfg.UsePostgres() {
		observability.Info("Using PostgreSQL database")
		db, err = repository.NewPostgresDB(cfg.DatabaseURL)
		system = "postgresql"
	} else {
		observability.Infof("Using SQLite database at %s", cfg.DatabasePath)
		db, err = repository.NewSQLiteDB(cfg.DatabasePath)
	}
	if err != nil {
		return nil, fmt.Errorf("initialize %s database: %w", system, err)
	}
	tdb := observability.NewTraceDB(db, system)

	clock, err := services.NewClockService(cfg.Clock.Timezone)
	if err != nil {
		tdb.Close()
		return nil, err
	}

	if cfg.ContentStore.ProjectID == "" {
		observability.Warnf("No content store project configured; the feed will be unavailable")
	}

	source := repository.NewContentStoreClient(repository.ContentStoreConfig{
		ProjectID:  cfg.ContentStore.ProjectID,
		Dataset:    cfg.ContentStore.Dataset,
		APIVersion: cfg.ContentStore.APIVersion,
		Token:      cfg.ContentStore.Token,
		UseCDN:     cfg.ContentStore.UseCDN,
	}, time.Duration(cfg.ContentStore.TimeoutSeconds)*time.Second)

	hub := services.NewWebSocketHub()

	exifCache := repository.NewExifCacheRepository(tdb)
	binary := services.NewBinaryExifService(
		time.Duration(cfg.Gallery.FetchTimeoutSecs)*time.Second,
		exifCache,
		metrics,
	)
	resolver := services.NewMetadataResolver(source, binary, cfg.Gallery.ImageWidth)
	gallery := services.NewGalleryService(source, resolver, services.GalleryOptions{
		Revalidate:  cfg.RevalidateInterval(),
		Concurrency: cfg.Gallery.ResolveConcurrency,
		Hub:         hub,
		Metrics:     metrics,
	})
	prefs := services.NewPreferencesService(repository.NewPreferencesRepository(tdb), hub, metrics)

	return &app{
		cfg:         cfg,
		telemetry:   telemetry,
		db:          tdb,
		hub:         hub,
		clock:       clock,
		gallery:     gallery,
		prefs:       prefs,
		maintenance: services.NewMaintenanceService(gallery, exifCache, cfg.MaintenanceInterval(), cfg.ExifRetention()),
	}, nil
}

// close releases the database and flushes telemetry
func (a *app) close(ctx context.Context) {
	if err := a.db.Close(); err != nil {
		observability.Warnf("Error closing database: %v", err)
	}
	if err := a.telemetry.Shutdown(ctx); err != nil {
		observability.Warnf("Error shutting down telemetry: %v", err)
	}
}
