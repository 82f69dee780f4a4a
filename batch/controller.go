// Package batch orchestrates one processing run: discover unprocessed
// items, turn each into a presentation, and record the outcome. One item's
// failure never aborts the batch, and nothing already produced is ever
// rolled back.
package batch

import (
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"artslides/enhance"
	"artslides/ledger"
	"artslides/sites"
	"artslides/slides"
)

const (
	defaultTarget        = 10
	defaultDiscoverBatch = 25
	defaultItemDelay     = time.Second
)

// Source is the site being processed: listing plus extraction.
type Source interface {
	Name() string
	ListItems(limit int) ([]string, error)
	Extract(itemURL string) (*sites.Item, error)
}

// Builder produces the presentation artifact for one item.
type Builder interface {
	Create(title string, images []slides.SlideImage, sourceURL, sourceLabel string) (id, url string, err error)
}

// Organizer files a produced artifact into the output folder.
type Organizer interface {
	Move(fileID string) error
}

// Cataloger appends one row per produced presentation.
type Cataloger interface {
	Append(row slides.Row) error
}

// Enhancer backfills metadata gaps from body text. Optional.
type Enhancer interface {
	Enhance(excerpt, knownTitle string) (enhance.Fields, error)
}

// Status classifies the outcome of one item.
type Status string

const (
	// StatusCreated means a presentation was built and recorded.
	StatusCreated Status = "created"
	// StatusSkipped means the item was valid but produced nothing (for
	// example, zero qualifying images).
	StatusSkipped Status = "skipped"
	// StatusFailed means a step errored; the item stays absent from the
	// ledger and is retried on a later run.
	StatusFailed Status = "failed"
)

// ItemResult is the per-item outcome reported in the summary.
type ItemResult struct {
	URL             string
	Title           string
	PresentationURL string
	SlideCount      int
	Status          Status
	Reason          string
	Err             error
}

// Summary is the final tally of a run. Skipped counts both valid skips and
// failures.
type Summary struct {
	Created int
	Skipped int
	Stopped bool
	Results []ItemResult
}

func (s *Summary) add(res ItemResult) {
	s.Results = append(s.Results, res)
	if res.Status == StatusCreated {
		s.Created++
	} else {
		s.Skipped++
	}
}

// Config wires a Controller. Site, Store, and Builder are required;
// Organizer, Catalog, and Enhancer may be nil to disable that step.
type Config struct {
	Site      Source
	Store     ledger.Store
	Builder   Builder
	Organizer Organizer
	Catalog   Cataloger
	Enhancer  Enhancer

	// SourceLabel is the link text on each slide (defaults to the site
	// name).
	SourceLabel string
	// ItemDelay is the politeness delay between items, applied toward the
	// source website only.
	ItemDelay time.Duration
	// DiscoverBatch sizes the incremental listing rounds during discovery.
	DiscoverBatch int
}

// Controller runs the batch. A Controller is single-use per Run and assumes
// it is the only active writer against the ledger.
type Controller struct {
	cfg  Config
	stop atomic.Bool

	// fallbackExcerpt re-derives body text when extraction produced none.
	fallbackExcerpt func(pageURL string) string
}

// New creates a Controller.
func New(cfg Config) (*Controller, error) {
	if cfg.Site == nil || cfg.Store == nil || cfg.Builder == nil {
		return nil, fmt.Errorf("site, store, and builder are required")
	}
	if cfg.SourceLabel == "" {
		cfg.SourceLabel = cfg.Site.Name()
	}
	if cfg.ItemDelay <= 0 {
		cfg.ItemDelay = defaultItemDelay
	}
	if cfg.DiscoverBatch <= 0 {
		cfg.DiscoverBatch = defaultDiscoverBatch
	}
	return &Controller{
		cfg:             cfg,
		fallbackExcerpt: enhance.ReadableExcerpt,
	}, nil
}

// Stop requests a cooperative stop. The request is honored between items:
// the in-flight item always finishes or fails cleanly first.
func (c *Controller) Stop() {
	c.stop.Store(true)
}

// Run processes up to target new items and returns the summary. Only a
// discovery-phase failure (a broken ledger or site setup) returns an
// error; per-item failures are recorded in the summary and never abort the
// run.
func (c *Controller) Run(target int) (*Summary, error) {
	if target <= 0 {
		target = defaultTarget
	}

	log.Printf("Discovering unprocessed items on %s...", c.cfg.Site.Name())
	urls, err := c.discover(target)
	if err != nil {
		return nil, err
	}
	log.Printf("Found %d unprocessed items", len(urls))

	summary := &Summary{}
	for i, itemURL := range urls {
		if c.stop.Load() {
			log.Printf("Stop requested; ending run after %d items", i)
			summary.Stopped = true
			break
		}

		log.Printf("[%d/%d] Processing %s", i+1, len(urls), itemURL)
		res := c.processItem(itemURL)
		summary.add(res)

		switch res.Status {
		case StatusCreated:
			log.Printf("✓ %s (%d slides) %s", res.Title, res.SlideCount, res.PresentationURL)
		case StatusSkipped:
			log.Printf("– Skipped %s: %s", itemURL, res.Reason)
		case StatusFailed:
			log.Printf("✗ Failed %s: %v", itemURL, res.Err)
		}

		if i < len(urls)-1 {
			time.Sleep(c.cfg.ItemDelay)
		}
	}

	log.Printf("Done: %d created, %d skipped", summary.Created, summary.Skipped)
	return summary, nil
}

// Discover returns up to target unprocessed item URLs without processing
// any of them.
func (c *Controller) Discover(target int) ([]string, error) {
	if target <= 0 {
		target = defaultTarget
	}
	return c.discover(target)
}

// discover lists items in incremental rounds and filters them against the
// ledger until target unprocessed candidates accumulate or the listing is
// exhausted. Already-processed URLs are dropped without fetching their
// pages.
func (c *Controller) discover(target int) ([]string, error) {
	limit := c.cfg.DiscoverBatch

	for {
		listed, err := c.cfg.Site.ListItems(limit)
		if err != nil {
			return nil, fmt.Errorf("listing %s failed: %w", c.cfg.Site.Name(), err)
		}

		var unprocessed []string
		for _, itemURL := range listed {
			processed, err := c.cfg.Store.IsProcessed(itemURL)
			if err != nil {
				return nil, fmt.Errorf("ledger lookup failed: %w", err)
			}
			if processed {
				continue
			}
			unprocessed = append(unprocessed, itemURL)
			if len(unprocessed) >= target {
				return unprocessed, nil
			}
		}

		// Fewer results than asked for means the listing is exhausted.
		if len(listed) < limit {
			return unprocessed, nil
		}
		limit += c.cfg.DiscoverBatch
	}
}

// processItem runs extract → enhance → build → record → catalog for one
// item. Every failure path leaves the ledger untouched.
func (c *Controller) processItem(itemURL string) ItemResult {
	res := ItemResult{URL: itemURL}

	item, err := c.cfg.Site.Extract(itemURL)
	if err != nil {
		res.Status = StatusFailed
		res.Err = fmt.Errorf("extraction failed: %w", err)
		return res
	}
	res.Title = item.Title

	if len(item.Images) == 0 {
		res.Status = StatusSkipped
		res.Reason = "no qualifying images"
		return res
	}

	c.maybeEnhance(item)

	images := make([]slides.SlideImage, 0, len(item.Images))
	for _, img := range item.Images {
		images = append(images, slides.SlideImage{
			URL:          img.URL,
			CaptionLines: img.CaptionLines(),
		})
	}

	presentationID, presentationURL, err := c.cfg.Builder.Create(item.Title, images, item.URL, c.cfg.SourceLabel)
	if err != nil {
		res.Status = StatusFailed
		res.Err = fmt.Errorf("build failed: %w", err)
		return res
	}
	res.PresentationURL = presentationURL
	res.SlideCount = len(images)

	if c.cfg.Organizer != nil {
		if err := c.cfg.Organizer.Move(presentationID); err != nil {
			// The presentation exists; filing it is best-effort.
			log.Printf("warning: could not move %s into folder: %v", presentationID, err)
		}
	}

	rec := ledger.Record{
		PresentationID:  presentationID,
		PresentationURL: presentationURL,
		Title:           item.Title,
		Author:          item.Author,
		Year:            item.Year,
		Medium:          item.Medium,
		Keywords:        item.Keywords,
		SlideCount:      len(images),
		ProcessedAt:     time.Now(),
	}
	if err := c.cfg.Store.Add(itemURL, rec); err != nil {
		// The presentation exists but is unrecorded: the next run will
		// rebuild it. Surface this as a failure so the operator notices.
		res.Status = StatusFailed
		res.Err = fmt.Errorf("ledger write failed after build (presentation %s exists): %w", presentationID, err)
		return res
	}

	if c.cfg.Catalog != nil {
		err := c.cfg.Catalog.Append(slides.Row{
			ProcessedAt:     rec.ProcessedAt,
			Site:            c.cfg.Site.Name(),
			Title:           rec.Title,
			Author:          rec.Author,
			Year:            rec.Year,
			Medium:          rec.Medium,
			Keywords:        rec.Keywords,
			SlideCount:      rec.SlideCount,
			ArticleURL:      itemURL,
			PresentationURL: rec.PresentationURL,
		})
		if err != nil {
			// Recorded and built; the catalog row is best-effort.
			log.Printf("warning: could not append catalog row for %s: %v", itemURL, err)
		}
	}

	res.Status = StatusCreated
	return res
}

// maybeEnhance backfills unresolved metadata when an enhancer is
// configured. Enhancement failures never fail the item.
func (c *Controller) maybeEnhance(item *sites.Item) {
	if c.cfg.Enhancer == nil || !enhance.Needed(item) {
		return
	}

	excerpt := item.BodyText
	if excerpt == "" && c.fallbackExcerpt != nil {
		excerpt = c.fallbackExcerpt(item.URL)
	}
	if excerpt == "" {
		return
	}

	fields, err := c.cfg.Enhancer.Enhance(excerpt, item.Title)
	if err != nil {
		log.Printf("warning: enhancement failed for %s: %v", item.URL, err)
		return
	}
	enhance.Apply(item, fields)
}
