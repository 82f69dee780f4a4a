package sites

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// pageMeta holds item-level metadata parsed from a page's structured data.
// Empty string means unresolved.
type pageMeta struct {
	Author   string
	Title    string
	Year     string
	Keywords string
}

func (m pageMeta) usable() bool {
	return m.Author != "" || m.Title != "" || m.Year != "" || m.Keywords != ""
}

// parseJSONLD scans the page's ld+json script blocks and returns the first
// block that supplies any usable field. Conflicting blocks are never merged.
func parseJSONLD(doc *goquery.Document) pageMeta {
	var meta pageMeta

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var data map[string]interface{}
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			return true // malformed block, keep scanning
		}

		candidate := metaFromBlock(data)
		if candidate.usable() {
			meta = candidate
			return false
		}
		return true
	})

	return meta
}

func metaFromBlock(data map[string]interface{}) pageMeta {
	var meta pageMeta

	switch author := data["author"].(type) {
	case map[string]interface{}:
		if name, ok := author["name"].(string); ok {
			meta.Author = name
		}
	case string:
		meta.Author = author
	case []interface{}:
		if len(author) > 0 {
			if first, ok := author[0].(map[string]interface{}); ok {
				if name, ok := first["name"].(string); ok {
					meta.Author = name
				}
			}
		}
	}

	if headline, ok := data["headline"].(string); ok && headline != "" {
		meta.Title = headline
	} else if name, ok := data["name"].(string); ok {
		meta.Title = name
	}

	if published, ok := data["datePublished"].(string); ok {
		meta.Year = yearPattern.FindString(published)
	}

	switch keywords := data["keywords"].(type) {
	case string:
		meta.Keywords = keywords
	case []interface{}:
		parts := make([]string, 0, len(keywords))
		for _, kw := range keywords {
			if s, ok := kw.(string); ok && s != "" {
				parts = append(parts, s)
			}
		}
		meta.Keywords = strings.Join(parts, ", ")
	}

	return meta
}
