package gworkspace

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"google.golang.org/api/drive/v3"
)

const pdfMimeType = "application/pdf"

// DriveUploader uploads rendered certificates into a single Drive folder.
type DriveUploader struct {
	client   *Client
	folderID string
}

// NewDriveUploader returns an uploader targeting folderID.
func (c *Client) NewDriveUploader(folderID string) *DriveUploader {
	return &DriveUploader{client: c, folderID: folderID}
}

// Publish uploads the PDF at path and returns the Drive file ID.
func (u *DriveUploader) Publish(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s for upload: %w", path, err)
	}
	defer f.Close()

	meta := &drive.File{
		Name:     filepath.Base(path),
		MimeType: pdfMimeType,
		Parents:  []string{u.folderID},
	}

	created, err := u.client.Drive.Files.Create(meta).
		Media(f).
		SupportsAllDrives(true).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to drive: %w", meta.Name, err)
	}

	slog.Info("Uploaded certificate",
		slog.String("file", meta.Name),
		slog.String("drive_file_id", created.Id),
		slog.String("folder_id", u.folderID),
	)
	return created.Id, nil
}
