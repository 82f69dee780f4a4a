// Package ledger records which item URLs have already produced a
// presentation. A recorded URL is permanently processed for the lifetime of
// the store: there is no TTL and no re-processing policy.
//
// Stores assume a single active writer (one batch run at a time). They are
// not safe against external concurrent writers, and callers must not add a
// second one.
package ledger

import "time"

// Record is one ledger entry, keyed externally by the item URL. Created
// only after a presentation has been successfully built; a build failure
// leaves the URL absent so the next run retries it.
type Record struct {
	PresentationID  string    `json:"presentation_id"`
	PresentationURL string    `json:"presentation_url"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	Year            string    `json:"year"`
	Medium          string    `json:"medium"`
	Keywords        string    `json:"keywords"`
	SlideCount      int       `json:"slide_count"`
	ProcessedAt     time.Time `json:"processed_at"`
}

// Store is the processed-item ledger. Implementations hold exactly one
// record per URL.
type Store interface {
	// IsProcessed reports whether the URL already has a record.
	IsProcessed(url string) (bool, error)
	// Add writes the record for the URL. Call only after a successful
	// build.
	Add(url string, rec Record) error
	Close() error
}
