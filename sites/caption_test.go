package sites

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestParseCaption_FullAttribution verifies the canonical four-segment
// caption form.
func TestParseCaption_FullAttribution(t *testing.T) {
	meta := ParseCaption("Jane Doe, Untitled Study, 1987, oil on canvas")

	assert.Equal(t, "Jane Doe", meta.Artist)
	assert.Equal(t, "Untitled Study", meta.Title)
	assert.Equal(t, "1987", meta.Year)
	assert.Equal(t, "oil on canvas", meta.Medium)
}

// TestParseCaption_YearExtraction verifies that any 4-digit year token is
// extracted and stripped from the remainder used for title and medium.
func TestParseCaption_YearExtraction(t *testing.T) {
	tests := []struct {
		name    string
		caption string
		want    CaptionMeta
	}{
		{
			name:    "year embedded in title segment",
			caption: "Piranesi, Carceri 1761, etching",
			want:    CaptionMeta{Artist: "Piranesi", Title: "Carceri", Year: "1761", Medium: "etching"},
		},
		{
			name:    "year in parentheses",
			caption: "Jane Doe, Study (1987), bronze",
			want:    CaptionMeta{Artist: "Jane Doe", Title: "Study", Year: "1987", Medium: "bronze"},
		},
		{
			name:    "year as own segment",
			caption: "Jane Doe, Study, 1987",
			want:    CaptionMeta{Artist: "Jane Doe", Title: "Study", Year: "1987"},
		},
		{
			name:    "twentieth-century year",
			caption: "A. Painter, Composition, 2014, collage",
			want:    CaptionMeta{Artist: "A. Painter", Title: "Composition", Year: "2014", Medium: "collage"},
		},
		{
			name:    "token outside year range is not a year",
			caption: "Jane Doe, Opus 2100",
			want:    CaptionMeta{Artist: "Jane Doe", Title: "Opus 2100", Medium: ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCaption(tt.caption))
		})
	}
}

// TestParseCaption_PartialCaptions verifies behavior when segments are
// missing.
func TestParseCaption_PartialCaptions(t *testing.T) {
	t.Run("empty caption", func(t *testing.T) {
		assert.Equal(t, CaptionMeta{}, ParseCaption(""))
	})

	t.Run("artist only", func(t *testing.T) {
		meta := ParseCaption("Jane Doe")
		assert.Equal(t, "Jane Doe", meta.Artist)
		assert.Empty(t, meta.Title)
		assert.Empty(t, meta.Year)
		assert.Empty(t, meta.Medium)
	})

	t.Run("artist and year only", func(t *testing.T) {
		meta := ParseCaption("Jane Doe, 1987")
		assert.Equal(t, "Jane Doe", meta.Artist)
		assert.Equal(t, "1987", meta.Year)
		assert.Empty(t, meta.Title)
		assert.Empty(t, meta.Medium)
	})

	t.Run("two segments without year share title only", func(t *testing.T) {
		meta := ParseCaption("Jane Doe, Untitled")
		assert.Equal(t, "Untitled", meta.Title)
		assert.Empty(t, meta.Medium, "single remaining segment must not double as medium")
	})

	t.Run("whitespace segments are dropped", func(t *testing.T) {
		meta := ParseCaption("Jane Doe, , Untitled, 1987")
		assert.Equal(t, "Jane Doe", meta.Artist)
		assert.Equal(t, "Untitled", meta.Title)
		assert.Equal(t, "1987", meta.Year)
	})
}

// TestParseCaption_CommaInTitle documents the known lossy behavior: a title
// containing commas donates its tail to the medium field.
func TestParseCaption_CommaInTitle(t *testing.T) {
	meta := ParseCaption("Jane Doe, Still Life, with Flowers, 1900, oil on panel")

	assert.Equal(t, "Jane Doe", meta.Artist)
	assert.Equal(t, "Still Life", meta.Title)
	assert.Equal(t, "1900", meta.Year)
	assert.Equal(t, "oil on panel", meta.Medium)
}

// TestResolveImage verifies the field-by-field fallback: caption-supplied
// fields win, everything else borrows from the item. No mixed state within
// a single field.
func TestResolveImage(t *testing.T) {
	item := &Item{
		Title:  "Article Title",
		Author: "Article Author",
		Year:   "2001",
		Medium: "Unknown",
	}

	t.Run("caption supplies artist only", func(t *testing.T) {
		img := resolveImage("http://example.com/a.jpg", "Jane Doe", CaptionMeta{Artist: "Jane Doe"}, item)

		assert.Equal(t, "Jane Doe", img.Artist)
		assert.Equal(t, "Article Title", img.Title)
		assert.Equal(t, "2001", img.Year)
		assert.Equal(t, "Unknown", img.Medium)
	})

	t.Run("no caption inherits everything", func(t *testing.T) {
		img := resolveImage("http://example.com/b.jpg", "", CaptionMeta{}, item)

		assert.Equal(t, "Article Author", img.Artist)
		assert.Equal(t, "Article Title", img.Title)
		assert.Equal(t, "2001", img.Year)
		assert.Equal(t, "Unknown", img.Medium)
	})

	t.Run("full caption overrides everything", func(t *testing.T) {
		meta := ParseCaption("Jane Doe, Untitled Study, 1987, oil on canvas")
		img := resolveImage("http://example.com/c.jpg", "Jane Doe, Untitled Study, 1987, oil on canvas", meta, item)

		assert.Equal(t, "Jane Doe", img.Artist)
		assert.Equal(t, "Untitled Study", img.Title)
		assert.Equal(t, "1987", img.Year)
		assert.Equal(t, "oil on canvas", img.Medium)
	})
}
