package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/photofolio/server/internal/models"
	"github.com/photofolio/server/internal/observability"
	"go.opentelemetry.io/otel/attribute"
)

// photoQuery selects every photo document, newest capture first
const photoQuery = `*[_type == "photo"] | order(coalesce(date, _createdAt) desc) {
  _id,
  _createdAt,
  title,
  location,
  date,
  device,
  tags,
  exif,
  image {
    asset-> {
      _id,
      url,
      metadata {
        exif,
        dimensions
      }
    }
  }
}`

const (
	defaultImageBaseURL = "https://cdn.sanity.io/images"
	maxErrorBody        = 512
)

// ContentStoreConfig configures the content store client
type ContentStoreConfig struct {
	ProjectID  string
	Dataset    string
	APIVersion string
	Token      string
	UseCDN     bool

	// APIBaseURL and ImageBaseURL override the derived hosts (tests, proxies)
	APIBaseURL   string
	ImageBaseURL string
}

// ContentStoreClient queries the headless CMS over its HTTP query API
type ContentStoreClient struct {
	cfg        ContentStoreConfig
	httpClient *http.Client
}

// NewContentStoreClient creates a content store client
func NewContentStoreClient(cfg ContentStoreConfig, timeout time.Duration) *ContentStoreClient {
	if cfg.APIBaseURL == "" {
		host := "api.sanity.io"
		if cfg.UseCDN {
			host = "apicdn.sanity.io"
		}
		cfg.APIBaseURL = fmt.Sprintf("https://%s.%s", cfg.ProjectID, host)
	}
	if cfg.ImageBaseURL == "" {
		cfg.ImageBaseURL = defaultImageBaseURL
	}

	return &ContentStoreClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type queryResponse struct {
	Result []*models.PhotoDocument `json:"result"`
	Error  *struct {
		Description string `json:"description"`
	} `json:"error,omitempty"`
}

// queryURL builds the GET URL for a GROQ query
func (c *ContentStoreClient) queryURL(query string) string {
	return fmt.Sprintf("%s/v%s/data/query/%s?query=%s",
		strings.TrimRight(c.cfg.APIBaseURL, "/"),
		strings.TrimPrefix(c.cfg.APIVersion, "v"),
		url.PathEscape(c.cfg.Dataset),
		url.QueryEscape(query),
	)
}

// ListPhotos returns every photo document in query order
func (c *ContentStoreClient) ListPhotos(ctx context.Context) ([]*models.PhotoDocument, error) {
	ctx, span := observability.StartClientSpan(ctx, "content-store", "query")
	defer span.End()
	span.SetAttributes(attribute.String("content_store.dataset", c.cfg.Dataset))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.queryURL(photoQuery), nil)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		observability.RecordError(span, err)
		return nil, fmt.Errorf("%w: %v", models.ErrContentStoreUnavailable, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		err := fmt.Errorf("%w: status %d: %s", models.ErrContentStoreUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
		observability.RecordError(span, err)
		return nil, err
	}

	var payload queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		observability.RecordError(span, err)
		return nil, fmt.Errorf("decode content store response: %w", err)
	}
	if payload.Error != nil {
		err := fmt.Errorf("%w: %s", models.ErrContentStoreUnavailable, payload.Error.Description)
		observability.RecordError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("content_store.documents", len(payload.Result)))
	observability.SetSuccess(span)
	return payload.Result, nil
}

// ImageURL returns a CDN rendition URL for the asset at the given width,
// falling back to the asset's original URL when its id cannot be parsed.
func (c *ContentStoreClient) ImageURL(asset *models.ImageAsset, width int) string {
	if asset == nil {
		return ""
	}

	file, ok := assetFilename(asset.ID)
	if !ok {
		return asset.URL
	}

	q := url.Values{}
	if width > 0 {
		q.Set("w", fmt.Sprintf("%d", width))
	}
	q.Set("auto", "format")

	return fmt.Sprintf("%s/%s/%s/%s?%s",
		strings.TrimRight(c.cfg.ImageBaseURL, "/"),
		c.cfg.ProjectID,
		c.cfg.Dataset,
		file,
		q.Encode(),
	)
}

// assetFilename turns "image-<hash>-<w>x<h>-<ext>" into "<hash>-<w>x<h>.<ext>"
func assetFilename(id string) (string, bool) {
	rest, ok := strings.CutPrefix(id, "image-")
	if !ok {
		return "", false
	}

	parts := strings.Split(rest, "-")
	if len(parts) < 3 {
		return "", false
	}

	ext := parts[len(parts)-1]
	dims := parts[len(parts)-2]
	hash := strings.Join(parts[:len(parts)-2], "-")
	if hash == "" || ext == "" || !strings.Contains(dims, "x") {
		return "", false
	}

	return fmt.Sprintf("%s-%s.%s", hash, dims, ext), true
}
