package types

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"revcert/internal/gworkspace"
	"revcert/internal/renderer"
)

type APIConfig struct {
	// Addr is the listen address.
	Addr string

	// InputRoot confines the reviewer tables and templates a job may name.
	InputRoot string

	// BaseOutputDir is the directory under which each job gets its own
	// <request-id> output directory.
	// Default is "revcert-output" if not specified.
	BaseOutputDir string

	// Renderer is the LaTeX engine executable.
	Renderer string

	// RenderPasses is how many times the engine runs per certificate.
	RenderPasses int

	// CredentialsPath is the path to the Google Cloud service account JSON key file.
	// Optional; enables Sheets reviewer tables and Drive uploads.
	CredentialsPath string

	// DriveFolderID, when set, uploads every rendered PDF to this folder.
	DriveFolderID string
}

func LoadConfig(args []string, stderr io.Writer) (*APIConfig, error) {
	fs := flag.NewFlagSet("revcert-api", flag.ContinueOnError)
	fs.SetOutput(stderr)

	addr := fs.String("addr", ":8090", "Listen address (default: :8090)")
	inputRoot := fs.String("input-root", ".", "Directory that job input paths are resolved against (default: .)")
	baseOutputDir := fs.String("base-output-dir", "revcert-output", "Base path of directory for generated certificates (default: revcert-output)")
	rendererBin := fs.String("renderer", renderer.DefaultBinary, "LaTeX engine executable (default: pdflatex)")
	passes := fs.Int("passes", renderer.DefaultPasses, "Renderer passes per certificate (default: 2)")
	credentialsPath := fs.String("credentials", "", "Path to service account JSON (optional)")
	driveFolder := fs.String("drive-folder", "", "Google Drive folder ID to upload rendered PDFs to (optional)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := &APIConfig{
		Addr:            *addr,
		InputRoot:       *inputRoot,
		BaseOutputDir:   *baseOutputDir,
		Renderer:        *rendererBin,
		RenderPasses:    *passes,
		CredentialsPath: *credentialsPath,
		DriveFolderID:   *driveFolder,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *APIConfig) Validate() error {
	if c.RenderPasses <= 0 {
		return fmt.Errorf("passes must be greater than 0")
	}

	root, err := filepath.Abs(c.InputRoot)
	if err != nil {
		return fmt.Errorf("failed to resolve input root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("input root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("input root is not a directory: %s", root)
	}
	c.InputRoot = root

	if c.DriveFolderID != "" && c.CredentialsPath == "" {
		return fmt.Errorf("drive-folder requires credentials")
	}
	if c.CredentialsPath != "" {
		return gworkspace.ValidateCredentialsFile(c.CredentialsPath)
	}
	return nil
}
