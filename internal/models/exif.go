package models

import "time"

// ExifTags maps EXIF tag names to their description strings
type ExifTags map[string]string

// First returns the first non-empty value among the named tags
func (t ExifTags) First(names ...string) string {
	for _, name := range names {
		if v := t[name]; v != "" {
			return v
		}
	}
	return ""
}

// BinaryExif is what was recovered from an image's own bytes
type BinaryExif struct {
	AssetID     string    `json:"assetId"`
	Tags        ExifTags  `json:"tags"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	ExtractedAt time.Time `json:"extractedAt"`
}

// Empty reports whether nothing useful was recovered
func (b *BinaryExif) Empty() bool {
	return b == nil || (len(b.Tags) == 0 && b.Width == 0 && b.Height == 0)
}
