package sites

import (
	"regexp"
	"strings"
)

// yearPattern matches a 4-digit year token beginning with 1 or 20. Matches
// 1000-1999 and 2000-2099, which covers every year a caption plausibly
// carries.
var yearPattern = regexp.MustCompile(`\b(1\d{3}|20\d{2})\b`)

// CaptionMeta holds the metadata fields a caption supplied. Empty string
// means the caption did not supply the field.
type CaptionMeta struct {
	Artist string
	Title  string
	Year   string
	Medium string
}

// ParseCaption applies the comma-split heuristic to free-text artwork
// captions. The first segment is the artist; a 4-digit year token anywhere
// in the remainder is extracted and stripped; of what remains, the first
// segment is the title and the last (if distinct) is the medium.
//
// This is best-effort over captions with no fixed grammar. Known failure
// modes: titles containing commas lose their tail to the medium field, a
// missing year leaves Year empty, and non-Western name ordering is not
// recognized. Callers should treat the result as lossy rather than reject
// ambiguous captions.
func ParseCaption(text string) CaptionMeta {
	var meta CaptionMeta

	segments := make([]string, 0, 4)
	for _, part := range strings.Split(text, ",") {
		if part = strings.TrimSpace(part); part != "" {
			segments = append(segments, part)
		}
	}
	if len(segments) == 0 {
		return meta
	}

	meta.Artist = segments[0]
	rest := segments[1:]

	// Extract the year from whichever segment carries it, then drop the
	// token so it never leaks into title or medium.
	for i, seg := range rest {
		if year := yearPattern.FindString(seg); year != "" {
			meta.Year = year
			seg = strings.TrimSpace(strings.Replace(seg, year, "", 1))
			seg = strings.Trim(seg, " ()")
			if seg == "" {
				rest = append(rest[:i:i], rest[i+1:]...)
			} else {
				rest[i] = seg
			}
			break
		}
	}

	if len(rest) > 0 {
		meta.Title = rest[0]
	}
	if len(rest) > 1 {
		meta.Medium = rest[len(rest)-1]
	}
	return meta
}

// resolveImage builds an Image whose metadata is the caption's values where
// supplied and the item's values otherwise, field by field.
func resolveImage(url, caption string, meta CaptionMeta, item *Item) Image {
	img := Image{
		URL:     url,
		Caption: caption,
		Artist:  item.Author,
		Title:   item.Title,
		Year:    item.Year,
		Medium:  item.Medium,
	}
	if meta.Artist != "" {
		img.Artist = meta.Artist
	}
	if meta.Title != "" {
		img.Title = meta.Title
	}
	if meta.Year != "" {
		img.Year = meta.Year
	}
	if meta.Medium != "" {
		img.Medium = meta.Medium
	}
	return img
}
