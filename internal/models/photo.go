package models

import (
	"strings"
	"time"
)

// UnknownCamera is the device shown when no source names a camera.
const UnknownCamera = "Unknown Camera"

// PhotoDocument is a photo record as returned by the content store query
type PhotoDocument struct {
	ID        string      `json:"_id"`
	CreatedAt string      `json:"_createdAt,omitempty"`
	Title     string      `json:"title"`
	Location  string      `json:"location"`
	Date      string      `json:"date"`
	Device    string      `json:"device"`
	Tags      []string    `json:"tags"`
	Image     *ImageField `json:"image"`
	Exif      *ManualExif `json:"exif"`
}

// ImageField is the document's image reference
type ImageField struct {
	Asset *ImageAsset `json:"asset"`
}

// ImageAsset is the dereferenced image asset
type ImageAsset struct {
	ID       string         `json:"_id"`
	URL      string         `json:"url"`
	Metadata *AssetMetadata `json:"metadata"`
}

// AssetMetadata holds what the content store extracted on upload
type AssetMetadata struct {
	Exif       *EmbeddedExif `json:"exif"`
	Dimensions *Dimensions   `json:"dimensions"`
}

// Dimensions are pixel dimensions of an image
type Dimensions struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	AspectRatio float64 `json:"aspectRatio"`
}

// EmbeddedExif is the EXIF map stored alongside an asset.
// Numeric fields keep the units the content store reports.
type EmbeddedExif struct {
	DateTimeOriginal        string   `json:"DateTimeOriginal,omitempty"`
	CreateDate              string   `json:"CreateDate,omitempty"`
	Model                   string   `json:"Model,omitempty"`
	LensModel               string   `json:"LensModel,omitempty"`
	FocalLength             *float64 `json:"FocalLength,omitempty"`
	FocalLengthIn35mmFormat *float64 `json:"FocalLengthIn35mmFormat,omitempty"`
	FNumber                 *float64 `json:"FNumber,omitempty"`
	ExposureTime            *float64 `json:"ExposureTime,omitempty"`
	ISO                     *float64 `json:"ISO,omitempty"`
}

// ManualExif holds hand-entered camera settings on the document
type ManualExif struct {
	FocalLength     string `json:"focalLength,omitempty"`
	FocalLength35mm string `json:"focalLength35mm,omitempty"`
	FStop           string `json:"fStop,omitempty"`
	ShutterSpeed    string `json:"shutterSpeed,omitempty"`
	ISO             string `json:"iso,omitempty"`
}

// Asset returns the image asset or nil when the document has none
func (d *PhotoDocument) Asset() *ImageAsset {
	if d.Image == nil {
		return nil
	}
	return d.Image.Asset
}

// EmbeddedExif returns the asset's stored EXIF map, if any
func (d *PhotoDocument) EmbeddedExif() *EmbeddedExif {
	asset := d.Asset()
	if asset == nil || asset.Metadata == nil {
		return nil
	}
	return asset.Metadata.Exif
}

// Dimensions returns the asset's stored dimensions, if any
func (d *PhotoDocument) Dimensions() *Dimensions {
	asset := d.Asset()
	if asset == nil || asset.Metadata == nil {
		return nil
	}
	return asset.Metadata.Dimensions
}

// ExifSettings are camera settings formatted for display
type ExifSettings struct {
	FocalLength     string `json:"focalLength"`
	FocalLength35mm string `json:"focalLength35mm,omitempty"`
	Aperture        string `json:"aperture"`
	ShutterSpeed    string `json:"shutterSpeed"`
	ISO             string `json:"iso"`
}

// Photo is a resolved photo ready for rendering
type Photo struct {
	ID          string        `json:"id"`
	Src         string        `json:"src"`
	Title       string        `json:"title"`
	Location    string        `json:"location"`
	Device      string        `json:"device"`
	Tags        []string      `json:"tags"`
	Date        string        `json:"date"`
	RawDate     string        `json:"rawDate"`
	Width       int           `json:"width"`
	Height      int           `json:"height"`
	AspectRatio float64       `json:"aspectRatio"`
	Exif        *EmbeddedExif `json:"exif"`
	Settings    ExifSettings  `json:"settings"`
}

// HasKnownDevice reports whether the device is anything but the sentinel
func (p *Photo) HasKnownDevice() bool {
	return p.Device != "" && !strings.EqualFold(p.Device, UnknownCamera)
}

// SameLabel compares category labels the way aggregation buckets them:
// surrounding space and case are ignored
func SameLabel(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// HasTag reports whether the photo carries the tag, ignoring case
func (p *Photo) HasTag(label string) bool {
	for _, t := range p.Tags {
		if SameLabel(t, label) {
			return true
		}
	}
	return false
}

// Feed is one render pass worth of photos and their aggregate counts
type Feed struct {
	Photos      []*Photo  `json:"photos"`
	Stats       Stats     `json:"stats"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// PhotoError is a photo domain error
type PhotoError struct {
	Message string
}

func (e PhotoError) Error() string {
	return e.Message
}

var (
	ErrNoAsset                 = PhotoError{"photo document has no image asset"}
	ErrContentStoreUnavailable = PhotoError{"content store unavailable"}
	ErrInvalidFilterType       = PhotoError{"filter type must be tag, camera or location"}
	ErrInvalidTheme            = PhotoError{"theme must be dark or light"}
	ErrPreferencesNotFound     = PhotoError{"preferences not found"}
)
