package observability

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// StartSpan starts a new span from context
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, name, opts...)
}

// StartServiceSpan starts a span for service operations
func StartServiceSpan(ctx context.Context, service, operation string) (context.Context, trace.Span) {
	return StartSpan(ctx, fmt.Sprintf("%s.%s", service, operation),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("service.component", service),
			attribute.String("service.operation", operation),
		),
	)
}

// StartClientSpan starts a span for an outgoing HTTP call
func StartClientSpan(ctx context.Context, peer, operation string) (context.Context, trace.Span) {
	return StartSpan(ctx, fmt.Sprintf("%s %s", peer, operation),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("peer.service", peer),
			attribute.String("service.operation", operation),
		),
	)
}

// RecordError records an error on the span
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSuccess marks the span as successful
func SetSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// AddEvent adds an event to the span
func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// TraceDB wraps sql.DB with tracing
type TraceDB struct {
	db     *sql.DB
	system string
}

// NewTraceDB creates a traced database wrapper; system is "sqlite" or "postgresql"
func NewTraceDB(db *sql.DB, system string) *TraceDB {
	return &TraceDB{db: db, system: system}
}

func (t *TraceDB) start(ctx context.Context, name, query string) (context.Context, trace.Span) {
	return StartSpan(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", t.system),
			attribute.String("db.statement", truncateQuery(query)),
		),
	)
}

// QueryContext executes a query with tracing
func (t *TraceDB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	ctx, span := t.start(ctx, "DB Query", query)
	defer span.End()

	start := time.Now()
	rows, err := t.db.QueryContext(ctx, query, args...)
	span.SetAttributes(Duration(time.Since(start)))
	if err != nil {
		RecordError(span, err)
	} else {
		SetSuccess(span)
	}
	return rows, err
}

// ExecContext executes a statement with tracing
func (t *TraceDB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	ctx, span := t.start(ctx, "DB Exec", query)
	defer span.End()

	start := time.Now()
	result, err := t.db.ExecContext(ctx, query, args...)
	span.SetAttributes(Duration(time.Since(start)))
	if err != nil {
		RecordError(span, err)
		return result, err
	}

	SetSuccess(span)
	if n, raErr := result.RowsAffected(); raErr == nil {
		span.SetAttributes(attribute.Int64("db.rows_affected", n))
	}
	return result, nil
}

// QueryRowContext executes a query that returns a single row with tracing.
// The span ends before the row is scanned; sql.Row gives no later hook.
func (t *TraceDB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	ctx, span := t.start(ctx, "DB QueryRow", query)
	defer span.End()
	return t.db.QueryRowContext(ctx, query, args...)
}

// DB returns the underlying database connection
func (t *TraceDB) DB() *sql.DB {
	return t.db
}

// Close closes the underlying database
func (t *TraceDB) Close() error {
	return t.db.Close()
}

func truncateQuery(query string) string {
	if len(query) > 500 {
		return query[:500] + "..."
	}
	return query
}

// GalleryMetrics holds portfolio business metrics
type GalleryMetrics struct {
	feedBuilds     metric.Int64Counter
	feedCacheHits  metric.Int64Counter
	feedPhotos     metric.Int64Gauge
	binaryFetches  metric.Int64Counter
	themeToggles   metric.Int64Counter
	searchRequests metric.Int64Counter
}

// NewGalleryMetrics creates gallery metrics instruments
func NewGalleryMetrics() (*GalleryMetrics, error) {
	meter := otel.Meter(instrumentationName)

	feedBuilds, err := meter.Int64Counter(
		"photofolio.feed.builds",
		metric.WithDescription("Number of feed builds against the content store"),
		metric.WithUnit("{builds}"),
	)
	if err != nil {
		return nil, err
	}

	feedCacheHits, err := meter.Int64Counter(
		"photofolio.feed.cache_hits",
		metric.WithDescription("Number of feed reads served from cache"),
		metric.WithUnit("{reads}"),
	)
	if err != nil {
		return nil, err
	}

	feedPhotos, err := meter.Int64Gauge(
		"photofolio.feed.photos",
		metric.WithDescription("Photos in the most recent feed"),
		metric.WithUnit("{photos}"),
	)
	if err != nil {
		return nil, err
	}

	binaryFetches, err := meter.Int64Counter(
		"photofolio.exif.binary_fetches",
		metric.WithDescription("Image downloads made to recover EXIF metadata"),
		metric.WithUnit("{fetches}"),
	)
	if err != nil {
		return nil, err
	}

	themeToggles, err := meter.Int64Counter(
		"photofolio.theme.toggles",
		metric.WithDescription("Theme preference changes"),
		metric.WithUnit("{changes}"),
	)
	if err != nil {
		return nil, err
	}

	searchRequests, err := meter.Int64Counter(
		"photofolio.search.requests",
		metric.WithDescription("Search modal evaluations"),
		metric.WithUnit("{requests}"),
	)
	if err != nil {
		return nil, err
	}

	return &GalleryMetrics{
		feedBuilds:     feedBuilds,
		feedCacheHits:  feedCacheHits,
		feedPhotos:     feedPhotos,
		binaryFetches:  binaryFetches,
		themeToggles:   themeToggles,
		searchRequests: searchRequests,
	}, nil
}

// RecordFeedBuild records a feed build and its size
func (m *GalleryMetrics) RecordFeedBuild(ctx context.Context, photoCount int, success bool) {
	if m == nil {
		return
	}
	m.feedBuilds.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
	if success {
		m.feedPhotos.Record(ctx, int64(photoCount))
	}
}

// RecordCacheHit records a feed served from cache
func (m *GalleryMetrics) RecordCacheHit(ctx context.Context) {
	if m == nil {
		return
	}
	m.feedCacheHits.Add(ctx, 1)
}

// RecordBinaryFetch records an image download made for EXIF recovery
func (m *GalleryMetrics) RecordBinaryFetch(ctx context.Context, cached, success bool) {
	if m == nil {
		return
	}
	m.binaryFetches.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("cached", cached),
		attribute.Bool("success", success),
	))
}

// RecordThemeChange records a theme preference change
func (m *GalleryMetrics) RecordThemeChange(ctx context.Context, theme string) {
	if m == nil {
		return
	}
	m.themeToggles.Add(ctx, 1, metric.WithAttributes(attribute.String("theme", theme)))
}

// RecordSearch records a search evaluation
func (m *GalleryMetrics) RecordSearch(ctx context.Context, filterType string, matches int) {
	if m == nil {
		return
	}
	m.searchRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("filter_type", filterType),
		attribute.Bool("matched", matches > 0),
	))
}
