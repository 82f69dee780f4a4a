package slides

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	driveapi "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const folderMimeType = "application/vnd.google-apps.folder"

// Drive organizes produced artifacts into a single Drive folder.
type Drive struct {
	svc      *driveapi.Service
	folderID string
}

// NewDrive creates a Drive organizer over an authenticated client.
func NewDrive(client *http.Client) (*Drive, error) {
	svc, err := driveapi.NewService(context.Background(), option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return &Drive{svc: svc}, nil
}

// EnsureFolder finds the named folder, creating it when absent, and binds
// it as the target for Move. Returns the folder ID.
func (d *Drive) EnsureFolder(name string) (string, error) {
	query := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false", escapeQuery(name), folderMimeType)
	list, err := d.svc.Files.List().Q(query).Fields("files(id, name)").PageSize(1).Do()
	if err != nil {
		return "", fmt.Errorf("failed to search for folder: %w", err)
	}

	if len(list.Files) > 0 {
		d.folderID = list.Files[0].Id
		return d.folderID, nil
	}

	folder, err := d.svc.Files.Create(&driveapi.File{
		Name:     name,
		MimeType: folderMimeType,
	}).Fields("id").Do()
	if err != nil {
		return "", fmt.Errorf("failed to create folder: %w", err)
	}

	d.folderID = folder.Id
	return d.folderID, nil
}

// FolderURL returns the browser URL of the bound folder.
func (d *Drive) FolderURL() string {
	return "https://drive.google.com/drive/folders/" + d.folderID
}

// Move files the artifact into the bound folder.
func (d *Drive) Move(fileID string) error {
	if d.folderID == "" {
		return fmt.Errorf("no folder bound; call EnsureFolder first")
	}
	_, err := d.svc.Files.Update(fileID, nil).AddParents(d.folderID).Fields("id, parents").Do()
	if err != nil {
		return fmt.Errorf("failed to move file into folder: %w", err)
	}
	return nil
}

// FindSpreadsheet returns the ID of the named spreadsheet, or "" when none
// exists.
func (d *Drive) FindSpreadsheet(name string) (string, error) {
	query := fmt.Sprintf("name = '%s' and mimeType = 'application/vnd.google-apps.spreadsheet' and trashed = false", escapeQuery(name))
	list, err := d.svc.Files.List().Q(query).Fields("files(id)").PageSize(1).Do()
	if err != nil {
		return "", fmt.Errorf("failed to search for spreadsheet: %w", err)
	}
	if len(list.Files) == 0 {
		return "", nil
	}
	return list.Files[0].Id, nil
}

// escapeQuery escapes single quotes in Drive query string literals.
func escapeQuery(s string) string {
	return strings.ReplaceAll(s, `'`, `\'`)
}
