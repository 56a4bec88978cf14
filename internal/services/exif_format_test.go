package services

import (
	"testing"
	"time"

	"github.com/photofolio/server/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestFixExifDate(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"2024:01:02 10:20:30", "2024-01-02T10:20:30"},
		{"2024:01:02 10:20:30.123", "2024-01-02T10:20:30.123"},
		{"2024-01-02T10:20:30", "2024-01-02T10:20:30"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FixExifDate(tt.in), tt.in)
	}
}

func TestFormatCaptureDate(t *testing.T) {
	assert.Equal(t, "JAN 2, 2024, 10:20 AM", FormatCaptureDate("2024-01-02T10:20:30"))
	assert.Equal(t, "JAN 2, 2024, 4:20 PM", FormatCaptureDate("2024-01-02T10:20:30-06:00"))
	assert.Equal(t, "JAN 2, 2024, 12:00 AM", FormatCaptureDate("2024-01-02"))
	assert.Empty(t, FormatCaptureDate(""))
	assert.Empty(t, FormatCaptureDate("2024:01:02"))
}

func TestFormatRangeDate(t *testing.T) {
	assert.Equal(t, "15 JUN 2023", FormatRangeDate(time.Date(2023, 6, 15, 8, 0, 0, 0, time.UTC)))
	assert.Equal(t, "1 JAN 2023", FormatRangeDate(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestFormatSettings(t *testing.T) {
	t.Run("embedded numbers", func(t *testing.T) {
		s := FormatSettings(&models.EmbeddedExif{
			FocalLength:             float(5.1),
			FocalLengthIn35mmFormat: float(24),
			FNumber:                 float(1.8),
			ExposureTime:            float(1.0 / 120),
			ISO:                     float(64),
		}, nil)

		assert.Equal(t, "5mm", s.FocalLength)
		assert.Equal(t, "24mm", s.FocalLength35mm)
		assert.Equal(t, "f/1.8", s.Aperture)
		assert.Equal(t, "1/120s", s.ShutterSpeed)
		assert.Equal(t, "64", s.ISO)
	})

	t.Run("manual strings", func(t *testing.T) {
		s := FormatSettings(nil, &models.ManualExif{
			FocalLength:  "50mm",
			FStop:        "f/8",
			ShutterSpeed: "1/500s",
			ISO:          "100",
		})

		assert.Equal(t, "50mm", s.FocalLength)
		assert.Empty(t, s.FocalLength35mm)
		assert.Equal(t, "f/8", s.Aperture)
		assert.Equal(t, "1/500s", s.ShutterSpeed)
		assert.Equal(t, "100", s.ISO)
	})

	t.Run("placeholders", func(t *testing.T) {
		s := FormatSettings(&models.EmbeddedExif{FNumber: float(0)}, nil)

		assert.Equal(t, Placeholder, s.FocalLength)
		assert.Equal(t, Placeholder, s.Aperture)
		assert.Equal(t, Placeholder, s.ShutterSpeed)
		assert.Equal(t, Placeholder, s.ISO)
		assert.Empty(t, s.FocalLength35mm)
	})
}
