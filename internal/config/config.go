package config

import (
	"errors"
	"fmt"
	"strings"

	"revcert/internal/gworkspace"
	"revcert/internal/renderer"
	"revcert/internal/reviewer"
)

// Config holds the runtime configuration for a certificate run.
type Config struct {
	// ReviewerTable is the CSV path, or a "sheets:<id>[#<range>]" reference.
	ReviewerTable string `json:"reviewer_table" yaml:"reviewer_table"`

	// TemplatePath is the LaTeX template with [Reviewer Name] and [Number] papers placeholders.
	TemplatePath string `json:"template" yaml:"template"`

	// DeleteTex removes the intermediate .tex file after a successful render.
	DeleteTex bool `json:"delete_tex" yaml:"delete_tex"`

	// OutputDir is where .tex and .pdf files are written.
	// Default is the current directory.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Renderer is the LaTeX engine executable.
	// Default is "pdflatex".
	Renderer string `json:"renderer" yaml:"renderer"`

	// RenderPasses is how many times the engine runs per certificate.
	// Default is 2 so that cross-references resolve.
	RenderPasses int `json:"render_passes" yaml:"render_passes"`

	// CredentialsPath is the Google service account JSON key file. Only needed
	// for Drive uploads or Sheets reviewer tables.
	CredentialsPath string `json:"credentials" yaml:"credentials"`

	// DriveFolderID, when set, uploads every rendered PDF to this Drive folder.
	DriveFolderID string `json:"drive_folder_id" yaml:"drive_folder_id"`

	// Watch reruns the batch whenever the reviewer table or template changes.
	Watch bool `json:"watch" yaml:"watch"`

	LogFormat string `json:"log_format" yaml:"log_format"`
	LogLevel  string `json:"log_level" yaml:"log_level"`

	// PrintTemplate asks the CLI to print the built-in template and exit.
	PrintTemplate bool `json:"-" yaml:"-"`
}

// Apply default config values
func (c *Config) ApplyDefaults() {
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	if c.Renderer == "" {
		c.Renderer = renderer.DefaultBinary
	}
	if c.RenderPasses == 0 {
		c.RenderPasses = renderer.DefaultPasses
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// UsesSheets reports whether the reviewer table is read from Google Sheets.
func (c *Config) UsesSheets() bool {
	return strings.HasPrefix(c.ReviewerTable, reviewer.SheetsScheme)
}

// NeedsCredentials reports whether any Google service is involved.
func (c *Config) NeedsCredentials() bool {
	return c.DriveFolderID != "" || c.UsesSheets()
}

// Validate checks if the configuration is valid.
// It also applies default values for fields that are not set.
// The template and table files are not checked here; a missing file is a
// run-level failure reported by the generator.
func (c *Config) Validate() error {
	c.ApplyDefaults()

	if c.ReviewerTable == "" {
		return errors.New("missing required field: reviewer_table")
	}
	if c.TemplatePath == "" {
		return errors.New("missing required field: template")
	}
	if c.RenderPasses < 0 {
		return errors.New("render_passes must be greater than 0")
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	if c.Watch && c.UsesSheets() {
		return errors.New("watch mode requires a local reviewer table")
	}

	if !c.NeedsCredentials() {
		return nil
	}
	if c.CredentialsPath == "" {
		return errors.New("missing required field: credentials (needed for Drive upload or Sheets input)")
	}
	return gworkspace.ValidateCredentialsFile(c.CredentialsPath)
}
