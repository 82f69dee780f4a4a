package ledger

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps the ledger in a SQLite database, one row per processed
// URL. Same contract as FileStore; the primary key enforces the
// one-record-per-URL invariant.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if necessary initializes) the ledger database
// at dbPath. Callers use one database per site.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS processed_items (
		url TEXT PRIMARY KEY,
		presentation_id TEXT NOT NULL,
		presentation_url TEXT NOT NULL,
		title TEXT NOT NULL,
		author TEXT NOT NULL,
		year TEXT NOT NULL,
		medium TEXT NOT NULL,
		keywords TEXT NOT NULL,
		slide_count INTEGER NOT NULL,
		processed_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// IsProcessed reports whether the URL already has a record.
func (s *SQLiteStore) IsProcessed(url string) (bool, error) {
	var one int
	err := s.db.QueryRow("SELECT 1 FROM processed_items WHERE url = ?", url).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query ledger: %w", err)
	}
	return true, nil
}

// Add inserts the record. Inserting a URL twice is an error by way of the
// primary key.
func (s *SQLiteStore) Add(url string, rec Record) error {
	_, err := s.db.Exec(
		`INSERT INTO processed_items
		(url, presentation_id, presentation_url, title, author, year, medium, keywords, slide_count, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		url, rec.PresentationID, rec.PresentationURL,
		rec.Title, rec.Author, rec.Year, rec.Medium, rec.Keywords,
		rec.SlideCount, rec.ProcessedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
