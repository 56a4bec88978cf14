package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/photofolio/server/internal/models"
)

// Placeholder is shown for a camera setting no source provides
const Placeholder = "--"

const (
	captureLayout = "Jan 2, 2006, 3:04 PM"
	rangeLayout   = "2 Jan 2006"
)

// rawDateLayouts are tried in order; zone-less layouts are read as UTC
var rawDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// FixExifDate turns "2024:01:02 10:20:30" into "2024-01-02T10:20:30".
// Values without a space are returned unchanged.
func FixExifDate(v string) string {
	d, t, ok := strings.Cut(strings.TrimSpace(v), " ")
	if !ok {
		return v
	}
	return strings.ReplaceAll(d, ":", "-") + "T" + t
}

// ParseRawDate parses a resolved raw date
func ParseRawDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range rawDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// FormatCaptureDate renders a raw date as "JAN 2, 2024, 10:20 AM" in UTC.
// Unparseable input gives "".
func FormatCaptureDate(raw string) string {
	t, ok := ParseRawDate(raw)
	if !ok {
		return ""
	}
	return strings.ToUpper(t.Format(captureLayout))
}

// FormatRangeDate renders a time as "15 JUN 2023"
func FormatRangeDate(t time.Time) string {
	return strings.ToUpper(t.UTC().Format(rangeLayout))
}

// FormatSettings derives display strings for camera settings,
// preferring embedded numbers, then manual strings, then the placeholder.
func FormatSettings(embedded *models.EmbeddedExif, manual *models.ManualExif) models.ExifSettings {
	if embedded == nil {
		embedded = &models.EmbeddedExif{}
	}
	if manual == nil {
		manual = &models.ManualExif{}
	}

	return models.ExifSettings{
		FocalLength: FirstNonEmpty(
			func() string { return formatMillimeters(embedded.FocalLength) },
			Value(manual.FocalLength),
			Value(Placeholder),
		),
		FocalLength35mm: FirstNonEmpty(
			func() string { return formatMillimeters(embedded.FocalLengthIn35mmFormat) },
			Value(manual.FocalLength35mm),
		),
		Aperture: FirstNonEmpty(
			func() string { return formatAperture(embedded.FNumber) },
			Value(manual.FStop),
			Value(Placeholder),
		),
		ShutterSpeed: FirstNonEmpty(
			func() string { return formatShutter(embedded.ExposureTime) },
			Value(manual.ShutterSpeed),
			Value(Placeholder),
		),
		ISO: FirstNonEmpty(
			func() string { return formatNumber(embedded.ISO) },
			Value(manual.ISO),
			Value(Placeholder),
		),
	}
}

func formatMillimeters(v *float64) string {
	if !positive(v) {
		return ""
	}
	return fmt.Sprintf("%dmm", int64(math.Round(*v)))
}

func formatAperture(v *float64) string {
	if !positive(v) {
		return ""
	}
	return "f/" + strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatShutter(v *float64) string {
	if !positive(v) {
		return ""
	}
	return fmt.Sprintf("1/%ds", int64(math.Round(1 / *v)))
}

func formatNumber(v *float64) string {
	if !positive(v) {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// zero counts as absent, same as a falsy number in the stored map
func positive(v *float64) bool {
	return v != nil && *v > 0 && !math.IsInf(*v, 0) && !math.IsNaN(*v)
}
