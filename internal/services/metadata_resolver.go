package services

import (
	"context"
	"strings"

	"github.com/photofolio/server/internal/models"
	"github.com/photofolio/server/internal/observability"
	"github.com/photofolio/server/internal/repository"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Candidate is one lazily evaluated source in a fallback chain
type Candidate func() string

// Value wraps a known string as a Candidate
func Value(s string) Candidate {
	return func() string { return s }
}

// FirstNonEmpty evaluates candidates in order and returns the first
// non-blank result. Later candidates are never evaluated.
func FirstNonEmpty(candidates ...Candidate) string {
	for _, c := range candidates {
		if c == nil {
			continue
		}
		if v := strings.TrimSpace(c()); v != "" {
			return v
		}
	}
	return ""
}

// binaryMemo loads an asset's binary EXIF at most once
type binaryMemo struct {
	load   func() *models.BinaryExif
	loaded bool
	value  *models.BinaryExif
}

// get triggers the load on first use
func (m *binaryMemo) get() *models.BinaryExif {
	if !m.loaded {
		m.loaded = true
		if m.load != nil {
			m.value = m.load()
		}
	}
	return m.value
}

// peek returns the result only if some earlier step already loaded it
func (m *binaryMemo) peek() *models.BinaryExif {
	if !m.loaded {
		return nil
	}
	return m.value
}

func (m *binaryMemo) tag(names ...string) string {
	if b := m.get(); b != nil {
		return b.Tags.First(names...)
	}
	return ""
}

// MetadataResolver turns content store documents into renderable photos
type MetadataResolver struct {
	source     repository.PhotoSource
	binary     BinaryExifLoader
	imageWidth int
}

// NewMetadataResolver creates a resolver; binary may be nil to disable byte fetches
func NewMetadataResolver(source repository.PhotoSource, binary BinaryExifLoader, imageWidth int) *MetadataResolver {
	return &MetadataResolver{
		source:     source,
		binary:     binary,
		imageWidth: imageWidth,
	}
}

// Resolve builds a Photo from a document. The only error is ErrNoAsset;
// every missing or unreadable metadata source degrades to a blank.
func (r *MetadataResolver) Resolve(ctx context.Context, doc *models.PhotoDocument) (*models.Photo, error) {
	asset := doc.Asset()
	if asset == nil {
		return nil, models.ErrNoAsset
	}

	embedded := doc.EmbeddedExif()
	memo := &binaryMemo{load: func() *models.BinaryExif {
		return r.loadBinary(ctx, doc.ID, asset)
	}}

	rawDate := FirstNonEmpty(
		Value(doc.Date),
		func() string {
			if embedded == nil {
				return ""
			}
			return FixExifDate(FirstNonEmpty(Value(embedded.DateTimeOriginal), Value(embedded.CreateDate)))
		},
		func() string {
			return FixExifDate(memo.tag("DateTimeOriginal", "CreateDate"))
		},
	)

	device := FirstNonEmpty(
		Value(doc.Device),
		func() string {
			if b := memo.peek(); b != nil {
				return b.Tags.First("Model")
			}
			return ""
		},
		func() string {
			if embedded == nil {
				return ""
			}
			return embedded.Model
		},
		Value(models.UnknownCamera),
	)

	photo := &models.Photo{
		ID:       doc.ID,
		Src:      r.source.ImageURL(asset, r.imageWidth),
		Title:    doc.Title,
		Location: strings.TrimSpace(doc.Location),
		Device:   device,
		Tags:     trimTags(doc.Tags),
		Date:     FormatCaptureDate(rawDate),
		RawDate:  rawDate,
		Exif:     embedded,
		Settings: FormatSettings(embedded, doc.Exif),
	}

	if dims := doc.Dimensions(); dims != nil && dims.Width > 0 && dims.Height > 0 {
		photo.Width, photo.Height, photo.AspectRatio = dims.Width, dims.Height, dims.AspectRatio
	} else if b := memo.peek(); b != nil && b.Width > 0 && b.Height > 0 {
		photo.Width, photo.Height = b.Width, b.Height
	}
	if photo.AspectRatio == 0 && photo.Height > 0 {
		photo.AspectRatio = float64(photo.Width) / float64(photo.Height)
	}

	return photo, nil
}

// trimTags drops surrounding space and blank tags; the result is never nil
func trimTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// loadBinary runs the byte fetch, swallowing any failure
func (r *MetadataResolver) loadBinary(ctx context.Context, photoID string, asset *models.ImageAsset) *models.BinaryExif {
	if r.binary == nil {
		return nil
	}

	b, err := r.binary.Load(ctx, asset)
	if err != nil {
		observability.AddEvent(trace.SpanFromContext(ctx), "binary_exif_unavailable",
			observability.PhotoID(photoID),
			attribute.String("error", err.Error()),
		)
		observability.WithContext(ctx).
			WithField("photo_id", photoID).
			WithError(err).
			Debug("Binary EXIF unavailable")
		return nil
	}
	return b
}
