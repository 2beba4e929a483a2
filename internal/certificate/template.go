package certificate

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Placeholders recognised in a certificate template.
const (
	NamePlaceholder  = "[Reviewer Name]"
	CountPlaceholder = "[Number] papers"
)

// ArtifactPrefix is prepended to the sanitized reviewer name of every generated file.
const ArtifactPrefix = "Certificate_of_reviewer_"

//go:embed templates/certificate_review.tex
var defaultTemplate string

// ErrMissingTemplate is returned when the template file does not exist.
var ErrMissingTemplate = errors.New("template file not found")

// Template holds the raw certificate text loaded once per run.
type Template struct {
	Path string
	Text string
}

// DefaultTemplate returns the built-in certificate template.
func DefaultTemplate() *Template {
	return &Template{Path: "<embedded>", Text: defaultTemplate}
}

// LoadTemplate reads the template file at path.
func LoadTemplate(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingTemplate, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read template file: %w", err)
	}
	return &Template{Path: path, Text: string(data)}, nil
}

// Fill substitutes the reviewer name and paper count into the template.
// Every occurrence of each placeholder is replaced.
func (t *Template) Fill(name, count string) string {
	out := strings.ReplaceAll(t.Text, NamePlaceholder, name)
	return strings.ReplaceAll(out, CountPlaceholder, CountPhrase(count))
}

// CountPhrase renders the paper count with the right grammatical number.
func CountPhrase(count string) string {
	if count == "1" {
		return "1 paper"
	}
	return count + " papers"
}

// ArtifactBase returns the file name, without extension, used for a reviewer's
// certificate. Spaces in the name become underscores.
func ArtifactBase(name string) (string, error) {
	if strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("reviewer name %q contains a path separator", name)
	}
	if name == "" {
		return "", errors.New("reviewer name is empty")
	}
	return ArtifactPrefix + strings.ReplaceAll(name, " ", "_"), nil
}
