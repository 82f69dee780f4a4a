package ledger

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord() Record {
	return Record{
		PresentationID:  "pres-123",
		PresentationURL: "https://docs.google.com/presentation/d/pres-123",
		Title:           "Invisible Cities Drawn",
		Author:          "Mariabruna",
		Year:            "2016",
		Medium:          "drawing",
		Keywords:        "architecture",
		SlideCount:      7,
		ProcessedAt:     time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

// storeFactory builds a fresh store and a reopen function for contract
// tests shared by both backends.
type storeFactory struct {
	name   string
	open   func(t *testing.T) Store
	reopen func(t *testing.T) Store
}

func factories(t *testing.T) []storeFactory {
	t.Helper()

	fileDir := t.TempDir()
	sqlitePath := filepath.Join(t.TempDir(), "ledger.db")

	return []storeFactory{
		{
			name: "file",
			open: func(t *testing.T) Store {
				s, err := NewFileStore(fileDir, "socks-studio")
				require.NoError(t, err)
				return s
			},
			reopen: func(t *testing.T) Store {
				s, err := NewFileStore(fileDir, "socks-studio")
				require.NoError(t, err)
				return s
			},
		},
		{
			name: "sqlite",
			open: func(t *testing.T) Store {
				s, err := NewSQLiteStore(sqlitePath)
				require.NoError(t, err)
				return s
			},
			reopen: func(t *testing.T) Store {
				s, err := NewSQLiteStore(sqlitePath)
				require.NoError(t, err)
				return s
			},
		},
	}
}

// TestStoreContract verifies the is_processed transition and durability for
// both backends.
func TestStoreContract(t *testing.T) {
	for _, f := range factories(t) {
		t.Run(f.name, func(t *testing.T) {
			store := f.open(t)

			url := "https://socks-studio.com/2016/09/invisible-cities/"

			processed, err := store.IsProcessed(url)
			require.NoError(t, err)
			assert.False(t, processed, "URL must not be processed before Add")

			require.NoError(t, store.Add(url, sampleRecord()))

			processed, err = store.IsProcessed(url)
			require.NoError(t, err)
			assert.True(t, processed, "URL must be processed immediately after Add")

			// Other URLs are unaffected.
			processed, err = store.IsProcessed("https://socks-studio.com/other/")
			require.NoError(t, err)
			assert.False(t, processed)

			require.NoError(t, store.Close())

			// Records survive a reopen.
			store = f.reopen(t)
			processed, err = store.IsProcessed(url)
			require.NoError(t, err)
			assert.True(t, processed)
			require.NoError(t, store.Close())
		})
	}
}

// TestFileStorePerSite verifies that sites get separate ledger files.
func TestFileStorePerSite(t *testing.T) {
	dir := t.TempDir()

	socks, err := NewFileStore(dir, "socks-studio")
	require.NoError(t, err)
	pdr, err := NewFileStore(dir, "public-domain-review")
	require.NoError(t, err)

	require.NoError(t, socks.Add("https://socks-studio.com/a/", sampleRecord()))

	processed, err := pdr.IsProcessed("https://socks-studio.com/a/")
	require.NoError(t, err)
	assert.False(t, processed, "ledgers are per site")

	_, err = os.Stat(filepath.Join(dir, "processed_socks-studio.json"))
	assert.NoError(t, err)
}

// TestFileStoreRoundTrip verifies the record fields survive the JSON write
// and reload.
func TestFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, "socks-studio")
	require.NoError(t, err)

	url := "https://socks-studio.com/a/"
	require.NoError(t, store.Add(url, sampleRecord()))

	records, err := store.load()
	require.NoError(t, err)
	require.Contains(t, records, url)
	assert.Equal(t, sampleRecord(), records[url])
}

// TestFileStoreCorruptFile verifies that a corrupt ledger surfaces an error
// instead of silently losing history.
func TestFileStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, "socks-studio")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "processed_socks-studio.json"), []byte("{broken"), 0o600))

	_, err = store.IsProcessed("https://socks-studio.com/a/")
	require.Error(t, err)

	err = store.Add("https://socks-studio.com/a/", sampleRecord())
	require.Error(t, err)
}

// TestSQLiteStoreDuplicateAdd verifies the one-record-per-URL invariant.
func TestSQLiteStoreDuplicateAdd(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	defer store.Close()

	url := "https://socks-studio.com/a/"
	require.NoError(t, store.Add(url, sampleRecord()))
	require.Error(t, store.Add(url, sampleRecord()), "second Add for the same URL must fail")
}
