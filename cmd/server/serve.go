package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/photofolio/server/internal/handlers"
	"github.com/photofolio/server/internal/middleware"
	"github.com/photofolio/server/internal/observability"
)

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
		defer stop()
		a.close(shutdownCtx)
	}()

	go a.hub.Run(ctx)
	go a.clock.Run(ctx, a.hub)
	go a.maintenance.Run(ctx)

	srv := &http.Server{
		Addr:         a.cfg.ServerAddress,
		Handler:      newRouter(a),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		observability.Infof("Server starting on %s", a.cfg.ServerAddress)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
	case err := <-serverErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	observability.Info("Shutting down server...")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 30*time.Second)
	defer stop()

	// stop the hub first so open sockets close and Shutdown does not wait on them
	cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		observability.Errorf("Server forced to shutdown: %v", err)
		return err
	}

	observability.Info("Server exited")
	return nil
}

func newRouter(a *app) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(observability.TracingMiddleware())
	if httpMetrics, err := observability.NewHTTPMetrics(); err != nil {
		observability.Warnf("HTTP metrics disabled: %v", err)
	} else {
		r.Use(observability.MetricsMiddleware(httpMetrics))
	}
	r.Use(middleware.Visitor)

	page := handlers.NewPageHandler(a.gallery, a.prefs, a.clock, handlers.PageOptions{
		SiteTitle:    a.cfg.Gallery.SiteTitle,
		SiteURL:      a.cfg.Gallery.SiteURL,
		TemplatePath: a.cfg.Gallery.TemplatePath,
	})
	search := handlers.NewSearchHandler(a.gallery)
	prefs := handlers.NewPreferencesHandler(a.prefs)
	clock := handlers.NewClockHandler(a.clock)
	health := handlers.NewHealthHandler()
	ws := handlers.NewWebSocketHandler(a.hub, a.clock)
	maintenance := handlers.NewMaintenanceHandler(a.maintenance)

	r.Get("/", page.Home)
	r.Get("/ws", ws.HandleConnection)
	r.Get("/health", health.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", health.HealthCheck)
		r.Get("/version", handlers.VersionHandler)

		r.Get("/photos", page.Photos)
		r.Get("/search", search.Search)
		r.Get("/clock", clock.Now)
		r.Get("/maintenance", maintenance.Status)

		r.Route("/preferences", func(r chi.Router) {
			r.Get("/", prefs.Get)
			r.Put("/theme", prefs.SetTheme)
			r.Post("/theme/toggle", prefs.Toggle)
		})
	})

	return r
}
