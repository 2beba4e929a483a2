package gworkspace

import (
	"encoding/json"
	"fmt"
	"os"
)

// ServiceAccountCredentials represents the structure of a Google service account JSON key file.
type ServiceAccountCredentials struct {
	Type         string `json:"type"`
	ProjectID    string `json:"project_id"`
	PrivateKeyID string `json:"private_key_id"`
	PrivateKey   string `json:"private_key"`
	ClientEmail  string `json:"client_email"`
	ClientID     string `json:"client_id"`
	AuthURI      string `json:"auth_uri"`
	TokenURI     string `json:"token_uri"`
}

// ValidateCredentialsFile checks if the credentials file exists, is readable, and contains required fields.
func ValidateCredentialsFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("credentials file not found: %s", path)
	}
	if err != nil {
		return fmt.Errorf("error checking credentials file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("credentials path is a directory, expected a file: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read credentials file: %w", err)
	}
	if len(data) == 0 {
		return fmt.Errorf("credentials file is empty: %s", path)
	}

	var creds ServiceAccountCredentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return fmt.Errorf("failed to parse credentials JSON: %w", err)
	}

	if creds.Type != "service_account" {
		return fmt.Errorf("unsupported credentials type %q, expected service_account", creds.Type)
	}
	if creds.PrivateKey == "" {
		return fmt.Errorf("missing required field: private_key")
	}
	if creds.ClientEmail == "" {
		return fmt.Errorf("missing required field: client_email")
	}
	if creds.TokenURI == "" {
		return fmt.Errorf("missing required field: token_uri")
	}

	return nil
}
