package sites

import (
	"fmt"
	"log"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

const publicDomainReviewBaseURL = "https://publicdomainreview.org"

// collectionPathPattern matches the item URLs the Public Domain Review uses
// for its image collections.
var collectionPathPattern = regexp.MustCompile(`/collection/[a-z0-9-]+/?$`)

// PublicDomainReview extracts from publicdomainreview.org. Discovery reads
// the site's RSS feed and tops it up from the paginated collections index;
// only images nested in captioned figure elements qualify, since the site
// wraps its plates in figures with attribution captions.
type PublicDomainReview struct {
	base    string
	fetcher *fetcher
	opts    Options
	feed    *gofeed.Parser
}

// NewPublicDomainReview creates the public-domain-review variant.
func NewPublicDomainReview(opts Options) *PublicDomainReview {
	base := opts.BaseURL
	if base == "" {
		base = publicDomainReviewBaseURL
	}
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent
	return &PublicDomainReview{
		base:    strings.TrimSuffix(base, "/"),
		fetcher: newFetcher(opts),
		opts:    opts,
		feed:    parser,
	}
}

// Name returns the registry name of the variant.
func (p *PublicDomainReview) Name() string { return "public-domain-review" }

// ListItems returns collection URLs, most-recent first. The RSS feed is the
// primary source, but it only carries a handful of recent entries; whenever
// it yields fewer than limit links, the paginated collections index is
// walked too and the results merged, feed order first.
func (p *PublicDomainReview) ListItems(limit int) ([]string, error) {
	urls := p.listFromFeed(limit)
	if limit > 0 && len(urls) >= limit {
		return urls, nil
	}

	indexed, err := p.listFromIndex(limit)
	if err != nil {
		if len(urls) > 0 {
			return urls, nil
		}
		return nil, err
	}

	seen := make(map[string]bool, len(urls))
	for _, u := range urls {
		seen[u] = true
	}
	for _, u := range indexed {
		if seen[u] {
			continue
		}
		seen[u] = true
		urls = append(urls, u)
		if limit > 0 && len(urls) >= limit {
			break
		}
	}
	return urls, nil
}

// listFromFeed pulls collection links out of the site feed. Any feed
// failure returns nil so the caller falls back to index pagination.
func (p *PublicDomainReview) listFromFeed(limit int) []string {
	feed, err := p.feed.ParseURL(p.base + "/rss.xml")
	if err != nil {
		log.Printf("feed unavailable, falling back to index pages: %v", err)
		return nil
	}

	var urls []string
	seen := make(map[string]bool)
	for _, item := range feed.Items {
		link := strings.TrimSpace(item.Link)
		if link == "" || !collectionPathPattern.MatchString(link) || seen[link] {
			continue
		}
		seen[link] = true
		urls = append(urls, link)
		if limit > 0 && len(urls) >= limit {
			break
		}
	}
	return urls
}

// listFromIndex walks the numbered collections pages.
func (p *PublicDomainReview) listFromIndex(limit int) ([]string, error) {
	baseURL, err := url.Parse(p.base)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	pageURL := func(page int) string {
		if page == 1 {
			return p.base + "/collections/"
		}
		return fmt.Sprintf("%s/collections/page/%d/", p.base, page)
	}

	extractLinks := func(doc *goquery.Document) []string {
		var links []string
		doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			ref, err := url.Parse(href)
			if err != nil {
				return
			}
			abs := baseURL.ResolveReference(ref).String()
			if collectionPathPattern.MatchString(abs) {
				links = append(links, abs)
			}
		})
		return links
	}

	return paginate(p.fetcher, p.opts, pageURL, extractLinks, limit), nil
}

// Extract fetches one collection page and returns its metadata and the
// images found in captioned figures. A page with zero qualifying images is
// a valid result.
func (p *PublicDomainReview) Extract(itemURL string) (*Item, error) {
	doc, err := p.fetcher.fetchDocument(itemURL)
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

	region := contentRegion(doc, "div.essay-body", "article")
	item.BodyText = regionText(region)
	item.Images = collectImages(region, pageURL, figuresOnly, item, p.opts, p.fetcher.contentLength)

	return item, nil
}
