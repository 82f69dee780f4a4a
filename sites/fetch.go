package sites

import (
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"

const (
	defaultRequestTimeout = 10 * time.Second
	defaultPageDelay      = 500 * time.Millisecond
	defaultMaxPages       = 50
	defaultMinDimension   = 50
	defaultMinBytes       = 5000
	probeTimeout          = 5 * time.Second
)

// fetcher wraps the HTTP client shared by a site variant's listing and
// extraction paths.
type fetcher struct {
	client *http.Client
	probe  *http.Client
}

func newFetcher(opts Options) *fetcher {
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &fetcher{
		client: &http.Client{Timeout: timeout},
		probe:  &http.Client{Timeout: probeTimeout},
	}
}

// fetchDocument fetches the URL and parses the response body with goquery.
func (f *fetcher) fetchDocument(url string) (*goquery.Document, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return doc, nil
}

// contentLength issues a HEAD request and reports the declared byte size.
// Returns -1 when the size is unavailable or the probe fails; the probe is
// advisory and its errors must never reject an image.
func (f *fetcher) contentLength(url string) int64 {
	req, err := http.NewRequest(http.MethodHead, url, nil)
	if err != nil {
		return -1
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.probe.Do(req)
	if err != nil {
		return -1
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return -1
	}
	return resp.ContentLength
}
