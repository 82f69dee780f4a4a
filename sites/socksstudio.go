package sites

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const socksStudioBaseURL = "https://socks-studio.com"

// SocksStudio extracts from socks-studio.com, a WordPress blog. Listing
// pages wrap each post title in article > h2 > a; article metadata lives in
// JSON-LD blocks; every img in the content region is a candidate, with
// figure captions supplying per-image overrides when present.
type SocksStudio struct {
	base    string
	fetcher *fetcher
	opts    Options
}

// NewSocksStudio creates the socks-studio variant.
func NewSocksStudio(opts Options) *SocksStudio {
	base := opts.BaseURL
	if base == "" {
		base = socksStudioBaseURL
	}
	return &SocksStudio{
		base:    strings.TrimSuffix(base, "/"),
		fetcher: newFetcher(opts),
		opts:    opts,
	}
}

// Name returns the registry name of the variant.
func (s *SocksStudio) Name() string { return "socks-studio" }

// ListItems walks the paginated index and returns article URLs, most-recent
// first.
func (s *SocksStudio) ListItems(limit int) ([]string, error) {
	baseURL, err := url.Parse(s.base)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	pageURL := func(page int) string {
		if page == 1 {
			return s.base
		}
		return fmt.Sprintf("%s/page/%d/", s.base, page)
	}

	extractLinks := func(doc *goquery.Document) []string {
		var links []string
		doc.Find("article h2 a").Each(func(_ int, a *goquery.Selection) {
			href, ok := a.Attr("href")
			if !ok || href == "" {
				return
			}
			ref, err := url.Parse(href)
			if err != nil {
				return
			}
			links = append(links, baseURL.ResolveReference(ref).String())
		})
		return links
	}

	return paginate(s.fetcher, s.opts, pageURL, extractLinks, limit), nil
}

// Extract fetches one article page and returns its metadata and qualifying
// images. A page with zero qualifying images is a valid result.
func (s *SocksStudio) Extract(itemURL string) (*Item, error) {
	doc, err := s.fetcher.fetchDocument(itemURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNoData, itemURL, err)
	}

	pageURL, err := url.Parse(itemURL)
	if err != nil {
		return nil, fmt.Errorf("invalid item URL: %w", err)
	}

	item := &Item{
		URL:      itemURL,
		Title:    Unknown,
		Author:   Unknown,
		Year:     Unknown,
		Medium:   Unknown,
		Keywords: Unknown,
	}

	applyPageMeta(item, parseJSONLD(doc))

	if item.Title == Unknown {
		if heading := headingText(doc); heading != "" {
			item.Title = heading
		}
	}
	if item.Author == Unknown {
		if author := authorLinkText(doc); author != "" {
			item.Author = author
		}
	}

	region := contentRegion(doc, "article", "div.entry-content")
	item.BodyText = regionText(region)
	item.Images = collectImages(region, pageURL, allImages, item, s.opts, s.fetcher.contentLength)

	return item, nil
}

// applyPageMeta copies resolved structured-data fields onto the item.
func applyPageMeta(item *Item, meta pageMeta) {
	if meta.Author != "" {
		item.Author = meta.Author
	}
	if meta.Title != "" {
		item.Title = meta.Title
	}
	if meta.Year != "" {
		item.Year = meta.Year
	}
	if meta.Keywords != "" {
		item.Keywords = meta.Keywords
	}
}

// headingText returns the first h1 (or h2) text, whitespace-normalized.
func headingText(doc *goquery.Document) string {
	heading := doc.Find("h1").First()
	if heading.Length() == 0 {
		heading = doc.Find("h2").First()
	}
	return strings.Join(strings.Fields(heading.Text()), " ")
}

// authorLinkText returns the text of the first link whose href mentions an
// author page.
func authorLinkText(doc *goquery.Document) string {
	var author string
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if strings.Contains(href, "author") {
			author = strings.TrimSpace(a.Text())
			return author == ""
		}
		return true
	})
	return author
}

// contentRegion locates the main content region via the prioritized
// selector chain, falling back to the page body.
func contentRegion(doc *goquery.Document, selectors ...string) *goquery.Selection {
	for _, selector := range selectors {
		if region := doc.Find(selector).First(); region.Length() > 0 {
			return region
		}
	}
	return doc.Find("body").First()
}

// regionText returns the region's visible text with whitespace collapsed.
func regionText(region *goquery.Selection) string {
	return strings.Join(strings.Fields(region.Text()), " ")
}
