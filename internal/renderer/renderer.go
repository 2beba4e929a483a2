package renderer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const (
	DefaultBinary = "pdflatex"
	DefaultPasses = 2
)

// Flags passed to the renderer on every pass, before the input path.
var Flags = []string{
	"-shell-escape",
	"-halt-on-error",
	"-interaction=nonstopmode",
}

// ByproductExts lists the auxiliary files a LaTeX run leaves next to its input.
var ByproductExts = []string{".aux", ".log", ".out"}

// diagnosticLines bounds how much of stdout is kept when stderr is empty.
const diagnosticLines = 20

// Renderer turns an intermediate document into its final form.
type Renderer interface {
	Render(ctx context.Context, texPath string) error
}

// NotFoundError means the renderer executable is not installed or not on PATH.
type NotFoundError struct {
	Binary string
	Err    error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s command not found; check that LaTeX is installed: %v", e.Binary, e.Err)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// FailedError means the renderer ran and exited unsuccessfully.
type FailedError struct {
	Binary     string
	Pass       int
	ExitCode   int
	Diagnostic string
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("%s failed on pass %d (exit code %d): %s", e.Binary, e.Pass, e.ExitCode, e.Diagnostic)
}

// PDFLaTeX runs a LaTeX engine a fixed number of times so that forward
// references such as page numbers resolve.
type PDFLaTeX struct {
	Binary string
	Passes int
}

// New creates a PDFLaTeX renderer, falling back to the defaults for zero values.
func New(binary string, passes int) *PDFLaTeX {
	if binary == "" {
		binary = DefaultBinary
	}
	if passes <= 0 {
		passes = DefaultPasses
	}
	return &PDFLaTeX{Binary: binary, Passes: passes}
}

// Render compiles texPath. The engine runs in the directory holding texPath,
// so the PDF and byproducts land beside it.
func (p *PDFLaTeX) Render(ctx context.Context, texPath string) error {
	absPath, err := filepath.Abs(texPath)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	bin, err := exec.LookPath(p.Binary)
	if err != nil {
		return &NotFoundError{Binary: p.Binary, Err: err}
	}

	args := append(append([]string{}, Flags...), absPath)
	for pass := 1; pass <= p.Passes; pass++ {
		start := time.Now()

		cmd := exec.CommandContext(ctx, bin, args...)
		cmd.Dir = filepath.Dir(absPath)
		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		if err := cmd.Run(); err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				return &FailedError{
					Binary:     p.Binary,
					Pass:       pass,
					ExitCode:   exitErr.ExitCode(),
					Diagnostic: diagnostic(stderr.String(), stdout.String()),
				}
			}
			if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
				return &NotFoundError{Binary: p.Binary, Err: err}
			}
			return fmt.Errorf("failed to run %s: %w", p.Binary, err)
		}

		slog.Debug("Render pass complete",
			slog.String("file", absPath),
			slog.Int("pass", pass),
			slog.Duration("duration", time.Since(start)),
		)
	}
	return nil
}

// diagnostic prefers stderr. LaTeX engines report most errors on stdout, so
// the tail of stdout is used when stderr is empty.
func diagnostic(stderr, stdout string) string {
	if s := strings.TrimSpace(stderr); s != "" {
		return s
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) > diagnosticLines {
		lines = lines[len(lines)-diagnosticLines:]
	}
	return strings.Join(lines, "\n")
}

// Cleanup removes the byproducts of rendering base+".tex". Missing files are
// not an error.
func Cleanup(base string) error {
	var errs []error
	for _, ext := range ByproductExts {
		if err := os.Remove(base + ext); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("failed to remove %s: %w", base+ext, err))
		}
	}
	return errors.Join(errs...)
}
