package sites

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// skipURLMarkers are URL substrings that mark non-content images: site
// chrome, icons, and WordPress thumbnail renditions.
var skipURLMarkers = []string{"icon", "logo", "-150x150", "-300x", "thumbnail"}

// imageMode selects which image elements a site's content region yields.
type imageMode int

const (
	// allImages takes every img in the content region; captions are an
	// optional override when the img sits inside a captioned figure.
	allImages imageMode = iota
	// figuresOnly takes only img elements nested in a figure that also
	// carries a figcaption.
	figuresOnly
)

// rejectedByURL reports whether the image URL matches a known non-content
// marker.
func rejectedByURL(imgURL string) bool {
	lower := strings.ToLower(imgURL)
	for _, marker := range skipURLMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// rejectedByDeclaredSize reports whether the element declares width and
// height attributes with either dimension below min. Missing or unparsable
// attributes never reject.
func rejectedByDeclaredSize(s *goquery.Selection, min int) bool {
	widthAttr, hasWidth := s.Attr("width")
	heightAttr, hasHeight := s.Attr("height")
	if !hasWidth || !hasHeight {
		return false
	}

	width, err := strconv.Atoi(strings.TrimSpace(widthAttr))
	if err != nil {
		return false
	}
	height, err := strconv.Atoi(strings.TrimSpace(heightAttr))
	if err != nil {
		return false
	}

	return width < min || height < min
}

// imageSource returns the element's src, falling back to the lazy-loading
// data-src attribute.
func imageSource(s *goquery.Selection) string {
	if src, ok := s.Attr("src"); ok && src != "" {
		return src
	}
	if src, ok := s.Attr("data-src"); ok && src != "" {
		return src
	}
	return ""
}

// dedupeImages collapses images resolving to the same URL, keeping the
// first occurrence in page order.
func dedupeImages(images []Image) []Image {
	seen := make(map[string]bool, len(images))
	out := images[:0]
	for _, img := range images {
		if seen[img.URL] {
			continue
		}
		seen[img.URL] = true
		out = append(out, img)
	}
	return out
}

// collectImages walks the content region and returns the qualifying images
// for the item, in page order, deduplicated, with per-image metadata
// resolved against the item. probe may be nil to skip the byte-size check.
func collectImages(region *goquery.Selection, pageURL *url.URL, mode imageMode, item *Item, opts Options, probe func(string) int64) []Image {
	minDim := opts.MinDimension
	if minDim <= 0 {
		minDim = defaultMinDimension
	}
	minBytes := opts.MinBytes
	if minBytes <= 0 {
		minBytes = defaultMinBytes
	}

	var images []Image

	selector := "img"
	if mode == figuresOnly {
		selector = "figure img"
	}

	region.Find(selector).Each(func(_ int, s *goquery.Selection) {
		caption := figureCaption(s)
		if mode == figuresOnly && caption == "" {
			return
		}

		src := imageSource(s)
		if src == "" {
			return
		}

		ref, err := url.Parse(src)
		if err != nil {
			return
		}
		abs := pageURL.ResolveReference(ref).String()

		if rejectedByURL(abs) {
			return
		}
		if rejectedByDeclaredSize(s, minDim) {
			return
		}
		if opts.Probe && probe != nil {
			// Advisory only: an unavailable size accepts the image.
			if size := probe(abs); size >= 0 && size < int64(minBytes) {
				return
			}
		}

		images = append(images, resolveImage(abs, caption, ParseCaption(caption), item))
	})

	return dedupeImages(images)
}

// figureCaption returns the figcaption text of the figure enclosing the
// image, or "" when the image is not in a captioned figure.
func figureCaption(img *goquery.Selection) string {
	figure := img.Closest("figure")
	if figure.Length() == 0 {
		return ""
	}
	return strings.Join(strings.Fields(figure.Find("figcaption").First().Text()), " ")
}
