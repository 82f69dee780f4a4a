package slides

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// catalogHeader is the first row of a freshly created catalog sheet.
var catalogHeader = []interface{}{
	"Processed At", "Site", "Title", "Author", "Year", "Medium",
	"Keywords", "Slides", "Article URL", "Presentation URL",
}

// Row is one catalog entry: the denormalized projection of a processing
// record plus the originating article URL.
type Row struct {
	ProcessedAt     time.Time
	Site            string
	Title           string
	Author          string
	Year            string
	Medium          string
	Keywords        string
	SlideCount      int
	ArticleURL      string
	PresentationURL string
}

// Catalog appends one row per produced presentation to a Google Sheets
// spreadsheet. Rows are only ever appended, never updated or deleted.
type Catalog struct {
	svc           *sheetsapi.Service
	drive         *Drive
	spreadsheetID string
}

// NewCatalog creates a Catalog over an authenticated client. The Drive
// organizer is used to look up existing spreadsheets by name.
func NewCatalog(client *http.Client, drive *Drive) (*Catalog, error) {
	svc, err := sheetsapi.NewService(context.Background(), option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &Catalog{svc: svc, drive: drive}, nil
}

// Ensure binds the named catalog spreadsheet, creating it with a header row
// when absent. Returns the spreadsheet ID and whether it was newly created
// (a new catalog still needs to be filed into the Drive folder).
func (c *Catalog) Ensure(name string) (string, bool, error) {
	id, err := c.drive.FindSpreadsheet(name)
	if err != nil {
		return "", false, err
	}
	if id != "" {
		c.spreadsheetID = id
		return id, false, nil
	}

	spreadsheet, err := c.svc.Spreadsheets.Create(&sheetsapi.Spreadsheet{
		Properties: &sheetsapi.SpreadsheetProperties{Title: name},
	}).Do()
	if err != nil {
		return "", false, fmt.Errorf("failed to create catalog spreadsheet: %w", err)
	}

	c.spreadsheetID = spreadsheet.SpreadsheetId
	if err := c.appendValues(catalogHeader); err != nil {
		return "", false, fmt.Errorf("failed to write catalog header: %w", err)
	}
	return c.spreadsheetID, true, nil
}

// SpreadsheetURL returns the browser URL of the bound catalog.
func (c *Catalog) SpreadsheetURL() string {
	return "https://docs.google.com/spreadsheets/d/" + c.spreadsheetID
}

// Append adds one row to the bound catalog.
func (c *Catalog) Append(row Row) error {
	if c.spreadsheetID == "" {
		return fmt.Errorf("no catalog bound; call Ensure first")
	}
	return c.appendValues([]interface{}{
		row.ProcessedAt.Format(time.RFC3339),
		row.Site,
		row.Title,
		row.Author,
		row.Year,
		row.Medium,
		row.Keywords,
		row.SlideCount,
		row.ArticleURL,
		row.PresentationURL,
	})
}

func (c *Catalog) appendValues(values []interface{}) error {
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, "A1", &sheetsapi.ValueRange{
		Values: [][]interface{}{values},
	}).ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Do()
	if err != nil {
		return fmt.Errorf("failed to append catalog row: %w", err)
	}
	return nil
}
