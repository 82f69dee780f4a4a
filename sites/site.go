// Package sites implements per-site discovery and extraction of article
// images and artwork metadata. Each supported website is a Site variant with
// its own listing pattern and extraction rules; callers see a uniform Item
// shape regardless of the source. New sites are added by registering a new
// variant, not by editing shared extraction code.
package sites

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Unknown is the sentinel for metadata fields the extractor could not
// resolve. Downstream components (the enhancer, the caption fallback) key
// off this exact value.
const Unknown = "Unknown"

// ErrNoData indicates the item page could not be fetched at all. Callers
// should skip the item; it is retryable on a later run.
var ErrNoData = errors.New("page could not be fetched")

// Item is one source article or collection page, with its resolved metadata
// and the ordered list of qualifying images found in its content region.
type Item struct {
	URL      string
	Title    string
	Author   string
	Year     string
	Medium   string
	Keywords string

	// BodyText is the visible text of the main content region, used as the
	// enhancer's excerpt source. May be empty.
	BodyText string

	Images []Image
}

// Image is one qualifying image discovered inside an item's page. The
// Artist/Title/Year/Medium fields are already resolved: caption-derived
// values where the caption supplied them, the item's values otherwise. The
// fallback is strictly field-by-field.
type Image struct {
	URL     string
	Caption string

	Artist string
	Title  string
	Year   string
	Medium string
}

// CaptionLines returns the slide caption for the image, one metadata field
// per line.
func (img Image) CaptionLines() []string {
	return []string{img.Artist, img.Title, img.Medium, img.Year}
}

// Site is one supported website. ListItems returns item URLs most-recent
// first, deduplicated, up to limit (0 means no limit). A fetch failure mid
// pagination ends the listing early with partial results rather than an
// error. Extract fetches and parses a single item page; it returns ErrNoData
// (wrapped) when the page cannot be fetched, and an Item with zero Images
// when the page simply has no qualifying content.
type Site interface {
	Name() string
	ListItems(limit int) ([]string, error)
	Extract(itemURL string) (*Item, error)
}

// Options carries the tunables shared by all site variants. Zero values are
// replaced with defaults by newFetcher and the listing walker.
type Options struct {
	// RequestTimeout bounds each HTTP request (default 10s).
	RequestTimeout time.Duration
	// PageDelay is the politeness delay between listing page fetches
	// (default 500ms).
	PageDelay time.Duration
	// MaxPages is the pagination safety ceiling (default 50).
	MaxPages int
	// MinDimension rejects images whose declared width or height is below
	// this threshold (default 50).
	MinDimension int
	// MinBytes rejects images whose probed content length is below this
	// threshold (default 5000). Only applies when Probe is set.
	MinBytes int
	// Probe enables the advisory HEAD request per image. Probe errors never
	// reject an image.
	Probe bool
	// BaseURL overrides the site's production base URL. Used by tests.
	BaseURL string
}

var registry = map[string]func(Options) Site{
	"socks-studio":         func(opts Options) Site { return NewSocksStudio(opts) },
	"public-domain-review": func(opts Options) Site { return NewPublicDomainReview(opts) },
}

// New returns the Site variant registered under name. The name set is
// closed; an unknown name is a setup error.
func New(name string, opts Options) (Site, error) {
	build, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown site %q (available: %v)", name, Names())
	}
	return build(opts), nil
}

// Names returns the registered site names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
