package sites

import (
	"log"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// paginate walks numbered listing pages starting at 1 and collects item
// URLs in discovery order. pageURL maps a page number to its listing URL;
// extractLinks pulls the absolute item links out of one listing page.
//
// The walk stops when a page yields zero new links, the page ceiling is
// reached, or limit links (limit > 0) have been collected. A fetch error
// ends pagination early and returns the partial results; listing failures
// never abort the caller.
func paginate(f *fetcher, opts Options, pageURL func(page int) string, extractLinks func(*goquery.Document) []string, limit int) []string {
	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}
	delay := opts.PageDelay
	if delay < 0 {
		delay = 0
	} else if delay == 0 {
		delay = defaultPageDelay
	}

	var urls []string
	seen := make(map[string]bool)

	for page := 1; page <= maxPages; page++ {
		doc, err := f.fetchDocument(pageURL(page))
		if err != nil {
			log.Printf("listing page %d failed, returning partial results: %v", page, err)
			return urls
		}

		added := 0
		for _, link := range extractLinks(doc) {
			if seen[link] {
				continue
			}
			seen[link] = true
			urls = append(urls, link)
			added++
			if limit > 0 && len(urls) >= limit {
				return urls
			}
		}

		if added == 0 {
			return urls
		}

		time.Sleep(delay)
	}

	return urls
}
