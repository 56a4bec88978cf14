package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilterType(t *testing.T) {
	t.Run("accepts known types in any case", func(t *testing.T) {
		for in, want := range map[string]FilterType{
			"tag":        FilterTag,
			"CAMERA":     FilterCamera,
			" Location ": FilterLocation,
		} {
			got, err := ParseFilterType(in)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		_, err := ParseFilterType("album")
		assert.ErrorIs(t, err, ErrInvalidFilterType)
	})
}

func TestParseTheme(t *testing.T) {
	theme, err := ParseTheme("Light")
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, theme)

	_, err = ParseTheme("sepia")
	assert.ErrorIs(t, err, ErrInvalidTheme)
}

func TestTheme_Toggled(t *testing.T) {
	assert.Equal(t, ThemeLight, ThemeDark.Toggled())
	assert.Equal(t, ThemeDark, ThemeLight.Toggled())
	assert.Equal(t, ThemeLight, Theme("").Toggled())
}

func TestPhoto_HasKnownDevice(t *testing.T) {
	assert.True(t, (&Photo{Device: "X100V"}).HasKnownDevice())
	assert.False(t, (&Photo{Device: UnknownCamera}).HasKnownDevice())
	assert.False(t, (&Photo{Device: "unknown camera"}).HasKnownDevice())
	assert.False(t, (&Photo{}).HasKnownDevice())
}

func TestPhoto_HasTag(t *testing.T) {
	p := &Photo{Tags: []string{"Lisbon", "street"}}

	assert.True(t, p.HasTag("LISBON"))
	assert.True(t, p.HasTag("Street"))
	assert.False(t, p.HasTag("Tokyo"))
}

func TestPhotoDocument_Accessors(t *testing.T) {
	t.Run("nil image yields nil accessors", func(t *testing.T) {
		doc := &PhotoDocument{ID: "a"}

		assert.Nil(t, doc.Asset())
		assert.Nil(t, doc.EmbeddedExif())
		assert.Nil(t, doc.Dimensions())
	})

	t.Run("reads through asset metadata", func(t *testing.T) {
		doc := &PhotoDocument{
			Image: &ImageField{Asset: &ImageAsset{
				ID: "image-abc-10x20-jpg",
				Metadata: &AssetMetadata{
					Exif:       &EmbeddedExif{Model: "X100V"},
					Dimensions: &Dimensions{Width: 10, Height: 20},
				},
			}},
		}

		require.NotNil(t, doc.Asset())
		assert.Equal(t, "X100V", doc.EmbeddedExif().Model)
		assert.Equal(t, 20, doc.Dimensions().Height)
	})
}
