// Package slides wraps the Google Slides, Drive, and Sheets APIs behind the
// three collaborators the batch pipeline needs: a presentation builder, a
// folder organizer, and an append-only catalog.
package slides

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	driveapi "google.golang.org/api/drive/v3"
	sheetsapi "google.golang.org/api/sheets/v4"
	slidesapi "google.golang.org/api/slides/v1"
)

// NewHTTPClient builds an authenticated Google API client from the OAuth
// client credentials and a previously provisioned token file. A missing or
// unreadable credential set is a fatal setup condition: the caller must not
// start processing without it.
func NewHTTPClient(credentialsPath, tokenPath string) (*http.Client, error) {
	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file %s: %w", credentialsPath, err)
	}

	conf, err := google.ConfigFromJSON(data,
		slidesapi.PresentationsScope,
		driveapi.DriveFileScope,
		sheetsapi.SpreadsheetsScope,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}

	token, err := loadToken(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load token (run the authorization flow first): %w", err)
	}

	return conf.Client(context.Background(), token), nil
}

func loadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}
	return &token, nil
}
