package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore keeps the ledger as one JSON object per site, keyed by item
// URL. Every Add loads the whole file, inserts, and rewrites it; there is
// no append log, which is why the single-active-writer precondition in the
// package doc matters.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed ledger for the given site under dir.
// The directory is created if needed; the file itself appears on first Add.
func NewFileStore(dir, site string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create ledger directory: %w", err)
	}
	return &FileStore{
		path: filepath.Join(dir, fmt.Sprintf("processed_%s.json", site)),
	}, nil
}

// IsProcessed reports whether the URL already has a record.
func (s *FileStore) IsProcessed(url string) (bool, error) {
	records, err := s.load()
	if err != nil {
		return false, err
	}
	_, ok := records[url]
	return ok, nil
}

// Add inserts the record and rewrites the ledger file.
func (s *FileStore) Add(url string, rec Record) error {
	records, err := s.load()
	if err != nil {
		return err
	}
	records[url] = rec

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal ledger: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	return nil
}

// Close is a no-op for the file store.
func (s *FileStore) Close() error { return nil }

// load reads the whole ledger. A missing file is an empty ledger.
func (s *FileStore) load() (map[string]Record, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}

	var records map[string]Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse ledger: %w", err)
	}
	if records == nil {
		records = map[string]Record{}
	}
	return records, nil
}
