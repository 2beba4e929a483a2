// Package gworkspace talks to Google Drive and Google Sheets with a service
// account: rendered certificates are uploaded to a Drive folder, and reviewer
// tables can be read straight from a spreadsheet.
package gworkspace

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Client holds the authenticated Google services.
type Client struct {
	Drive  *drive.Service
	Sheets *sheets.Service
}

// Scopes requested for the service account. Uploads target a folder shared
// with the service account, which is outside the reach of drive.file.
var Scopes = []string{
	drive.DriveScope,
	sheets.SpreadsheetsReadonlyScope,
}

// NewClient creates a Drive and Sheets client using the provided credentials file.
func NewClient(ctx context.Context, credentialsPath string) (*Client, error) {
	credentials, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read service account file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(credentials, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}

	httpClient := config.Client(ctx)

	driveService, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	sheetsService, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Client{
		Drive:  driveService,
		Sheets: sheetsService,
	}, nil
}
