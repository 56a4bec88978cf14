package services

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/jdeng/goheif"
	"github.com/photofolio/server/internal/models"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
)

// ErrNoMetadata is returned when neither EXIF nor pixel data could be read
var ErrNoMetadata = errors.New("no readable metadata in image")

// stringTags are copied verbatim into ExifTags under their EXIF names
var stringTags = []exif.FieldName{
	exif.Make,
	exif.Model,
	exif.LensModel,
	exif.DateTimeOriginal,
	exif.DateTime,
}

// EXIFService extracts EXIF tags and pixel dimensions from image bytes
type EXIFService struct{}

// NewEXIFService creates a new EXIFService
func NewEXIFService() *EXIFService {
	return &EXIFService{}
}

// Extract reads tags and dimensions from an encoded image.
// A missing EXIF block is not an error as long as the pixels decode.
func (s *EXIFService) Extract(data []byte) (*models.BinaryExif, error) {
	heic := IsHEIC(data)
	result := &models.BinaryExif{Tags: models.ExifTags{}}

	x, exifErr := s.decodeExif(data, heic)
	orientation := 1
	if exifErr == nil {
		readTags(x, result.Tags)
		orientation = readOrientation(x)
		result.Width, result.Height = readPixelDimensions(x, orientation)
	}

	if result.Width == 0 || result.Height == 0 {
		w, h, err := decodeDimensions(data, heic, orientation)
		if err != nil && exifErr != nil {
			return nil, fmt.Errorf("%w: exif: %v, pixels: %v", ErrNoMetadata, exifErr, err)
		}
		result.Width, result.Height = w, h
	}

	return result, nil
}

func (s *EXIFService) decodeExif(data []byte, heic bool) (*exif.Exif, error) {
	if !heic {
		return exif.Decode(bytes.NewReader(data))
	}

	raw, err := goheif.ExtractExif(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("extract heic exif: %w", err)
	}
	return exif.Decode(bytes.NewReader(raw))
}

func readTags(x *exif.Exif, tags models.ExifTags) {
	for _, name := range stringTags {
		if v := stringTag(x, name); v != "" {
			tags[string(name)] = v
		}
	}

	// exifreader and the content store both call DateTimeDigitized "CreateDate"
	if v := stringTag(x, exif.DateTimeDigitized); v != "" {
		tags["CreateDate"] = v
	}

	if tag, err := x.Get(exif.FocalLength); err == nil {
		if num, den, err := tag.Rat2(0); err == nil && den != 0 {
			tags[string(exif.FocalLength)] = fmt.Sprintf("%g mm", float64(num)/float64(den))
		}
	}
	if tag, err := x.Get(exif.FNumber); err == nil {
		if num, den, err := tag.Rat2(0); err == nil && den != 0 {
			tags[string(exif.FNumber)] = fmt.Sprintf("f/%g", float64(num)/float64(den))
		}
	}
	if tag, err := x.Get(exif.ExposureTime); err == nil {
		if num, den, err := tag.Rat2(0); err == nil && den != 0 {
			if num == 1 || den == 1 {
				tags[string(exif.ExposureTime)] = fmt.Sprintf("%d/%d", num, den)
			} else {
				tags[string(exif.ExposureTime)] = fmt.Sprintf("%g", float64(num)/float64(den))
			}
		}
	}
	if tag, err := x.Get(exif.ISOSpeedRatings); err == nil {
		if v, err := tag.Int(0); err == nil {
			tags["ISOSpeedRatings"] = fmt.Sprintf("%d", v)
		}
	}
}

func stringTag(x *exif.Exif, name exif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil {
		return ""
	}
	v, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimRight(v, "\x00"))
}

func readOrientation(x *exif.Exif) int {
	if tag, err := x.Get(exif.Orientation); err == nil {
		if v, err := tag.Int(0); err == nil && v >= 1 && v <= 8 {
			return v
		}
	}
	return 1
}

// readPixelDimensions returns displayed width and height; orientations 5-8 are rotated a quarter turn
func readPixelDimensions(x *exif.Exif, orientation int) (int, int) {
	w := intTag(x, exif.PixelXDimension, exif.ImageWidth)
	h := intTag(x, exif.PixelYDimension, exif.ImageLength)
	if orientation >= 5 {
		w, h = h, w
	}
	return w, h
}

func intTag(x *exif.Exif, names ...exif.FieldName) int {
	for _, name := range names {
		if tag, err := x.Get(name); err == nil {
			if v, err := tag.Int(0); err == nil && v > 0 {
				return v
			}
		}
	}
	return 0
}

// decodeDimensions decodes the pixels and reports the oriented size
func decodeDimensions(data []byte, heic bool, orientation int) (int, int, error) {
	var img image.Image
	var err error
	if heic {
		img, err = goheif.Decode(bytes.NewReader(data))
		if err == nil {
			img = applyOrientation(img, orientation)
		}
	} else {
		img, err = imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	}
	if err != nil {
		return 0, 0, err
	}

	b := img.Bounds()
	return b.Dx(), b.Dy(), nil
}

// applyOrientation rotates/flips an image according to EXIF orientation
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// IsHEIC sniffs the ISO BMFF brand of a HEIC/HEIF file
func IsHEIC(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heix", "hevc", "hevx", "heim", "heis", "mif1", "msf1":
		return true
	}
	return false
}

// stampExtraction fills the bookkeeping fields of a fresh extraction
func stampExtraction(b *models.BinaryExif, assetID string) *models.BinaryExif {
	b.AssetID = assetID
	b.ExtractedAt = time.Now().UTC()
	return b
}

func init() {
	// Canon and Nikon maker notes
	exif.RegisterParsers(mknote.All...)
}
