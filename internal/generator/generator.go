package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"revcert/internal/certificate"
	"revcert/internal/renderer"
	"revcert/internal/reviewer"
)

// FailureKind classifies a record-level failure.
type FailureKind string

const (
	KindRendererNotFound FailureKind = "renderer_not_found"
	KindRendererFailed   FailureKind = "renderer_failed"
	KindUploadFailed     FailureKind = "upload_failed"
	KindUnexpected       FailureKind = "unexpected"
)

// Run statuses, following the success/partial/failed convention of the report.
const (
	StatusSuccess = "success"
	StatusPartial = "partial"
	StatusFailed  = "failed"
)

// Publisher delivers a rendered certificate somewhere beyond the output directory.
type Publisher interface {
	Publish(ctx context.Context, path string) (string, error)
}

// Request describes one batch.
type Request struct {
	ReviewerTable string
	TemplatePath  string
	OutputDir     string
	DeleteTex     bool
}

// RecordResult is the outcome for one reviewer row.
type RecordResult struct {
	Record      reviewer.Record `json:"record"`
	TexPath     string          `json:"tex_path,omitempty"`
	PDFPath     string          `json:"pdf_path,omitempty"`
	OK          bool            `json:"ok"`
	Kind        FailureKind     `json:"failure_kind,omitempty"`
	Error       string          `json:"error,omitempty"`
	Diagnostic  string          `json:"diagnostic,omitempty"`
	DriveFileID string          `json:"drive_file_id,omitempty"`
	Duration    time.Duration   `json:"duration"`
}

// Report summarises a batch.
type Report struct {
	RunID         string         `json:"run_id"`
	Status        string         `json:"status"`
	Records       []RecordResult `json:"records"`
	Succeeded     int            `json:"succeeded"`
	Failed        int            `json:"failed"`
	StartTime     time.Time      `json:"start_time"`
	EndTime       time.Time      `json:"end_time"`
	TotalDuration time.Duration  `json:"total_duration"`
}

// Generator renders one certificate per reviewer record, strictly in order.
type Generator struct {
	Renderer renderer.Renderer

	// Sheets is required only for "sheets:" reviewer tables.
	Sheets reviewer.SheetFetcher

	// Publisher, when set, receives every successfully rendered PDF.
	Publisher Publisher

	// OnRecord is called after each record, in table order.
	OnRecord func(RecordResult)
}

// New creates a Generator that renders with r.
func New(r renderer.Renderer) *Generator {
	return &Generator{Renderer: r}
}

// Generate runs the batch described by req.
//
// A missing template or reviewer table aborts the run before any file is
// written, returning certificate.ErrMissingTemplate or
// reviewer.ErrMissingInputTable. Record failures never abort the run; they
// are reported in the returned Report.
func (g *Generator) Generate(ctx context.Context, req Request) (*Report, error) {
	report := &Report{
		RunID:     uuid.NewString(),
		StartTime: time.Now(),
		Records:   []RecordResult{},
	}
	logger := slog.With(slog.String("run_id", report.RunID))

	// 1. Template
	tmpl, err := certificate.LoadTemplate(req.TemplatePath)
	if err != nil {
		logger.Error("Failed to load template", slog.String("error", err.Error()))
		return nil, err
	}

	// 2. Reviewer table
	src, err := reviewer.Open(ctx, req.ReviewerTable, g.Sheets)
	if err != nil {
		logger.Error("Failed to open reviewer table", slog.String("error", err.Error()))
		return nil, err
	}
	defer src.Close()

	outDir := req.OutputDir
	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	logger.Info("Generating certificates",
		slog.String("reviewer_table", req.ReviewerTable),
		slog.String("template", req.TemplatePath),
		slog.String("output_dir", outDir),
		slog.Bool("delete_tex", req.DeleteTex),
	)

	// 3. Records
	var runErr error
	for {
		if err := ctx.Err(); err != nil {
			runErr = fmt.Errorf("generation interrupted: %w", err)
			break
		}

		rec, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		var res RecordResult
		var rowErr *reviewer.RowError
		switch {
		case errors.As(err, &rowErr):
			res = RecordResult{Record: rec, Kind: KindUnexpected, Error: err.Error()}
		case err != nil:
			runErr = err
		default:
			res = g.processRecord(ctx, logger, tmpl, outDir, rec, req.DeleteTex)
		}
		if runErr != nil {
			break
		}

		report.add(res)
		if g.OnRecord != nil {
			g.OnRecord(res)
		}
	}

	report.finish(runErr)
	logger.Info("Generation complete",
		slog.String("status", report.Status),
		slog.Int("succeeded", report.Succeeded),
		slog.Int("failed", report.Failed),
		slog.Duration("total_duration", report.TotalDuration),
	)

	if runErr != nil {
		logger.Error("Generation stopped early", slog.String("error", runErr.Error()))
		return report, runErr
	}
	return report, nil
}

func (g *Generator) processRecord(
	ctx context.Context,
	logger *slog.Logger,
	tmpl *certificate.Template,
	outDir string,
	rec reviewer.Record,
	deleteTex bool,
) RecordResult {
	start := time.Now()
	res := RecordResult{Record: rec}
	fail := func(kind FailureKind, err error) RecordResult {
		res.Kind = kind
		res.Error = err.Error()
		res.Duration = time.Since(start)
		logger.Error("Certificate generation failed",
			slog.String("name", rec.Name),
			slog.Int("row", rec.Row),
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()),
		)
		return res
	}

	name, err := certificate.ArtifactBase(rec.Name)
	if err != nil {
		return fail(KindUnexpected, err)
	}
	base := filepath.Join(outDir, name)
	res.TexPath = base + ".tex"
	res.PDFPath = base + ".pdf"

	if err := os.WriteFile(res.TexPath, []byte(tmpl.Fill(rec.Name, rec.Count)), 0644); err != nil {
		return fail(KindUnexpected, fmt.Errorf("failed to write %s: %w", res.TexPath, err))
	}

	renderErr := g.Renderer.Render(ctx, res.TexPath)
	if err := renderer.Cleanup(base); err != nil {
		logger.Warn("Failed to remove render byproducts", slog.String("error", err.Error()))
	}

	if renderErr != nil {
		// Drop whatever the failed run left behind; the .tex stays for inspection.
		if err := os.Remove(res.PDFPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn("Failed to remove partial PDF", slog.String("error", err.Error()))
		}
		var notFound *renderer.NotFoundError
		var failed *renderer.FailedError
		switch {
		case errors.As(renderErr, &notFound):
			return fail(KindRendererNotFound, renderErr)
		case errors.As(renderErr, &failed):
			res.Diagnostic = failed.Diagnostic
			return fail(KindRendererFailed, renderErr)
		default:
			return fail(KindUnexpected, renderErr)
		}
	}

	if deleteTex {
		if err := os.Remove(res.TexPath); err != nil {
			return fail(KindUnexpected, fmt.Errorf("failed to delete %s: %w", res.TexPath, err))
		}
		res.TexPath = ""
	}

	if g.Publisher != nil {
		id, err := g.Publisher.Publish(ctx, res.PDFPath)
		if err != nil {
			return fail(KindUploadFailed, err)
		}
		res.DriveFileID = id
	}

	res.OK = true
	res.Duration = time.Since(start)
	logger.Info("Certificate generated",
		slog.String("name", rec.Name),
		slog.String("pdf", res.PDFPath),
		slog.Duration("duration", res.Duration),
	)
	return res
}

func (r *Report) add(res RecordResult) {
	r.Records = append(r.Records, res)
	if res.OK {
		r.Succeeded++
	} else {
		r.Failed++
	}
}

// finish stamps the end time and derives the status. A run stopped by
// runErr is never a success.
func (r *Report) finish(runErr error) {
	r.EndTime = time.Now()
	r.TotalDuration = r.EndTime.Sub(r.StartTime)
	switch {
	case runErr != nil && r.Succeeded == 0:
		r.Status = StatusFailed
	case runErr != nil:
		r.Status = StatusPartial
	case r.Failed == 0:
		r.Status = StatusSuccess
	case r.Succeeded == 0:
		r.Status = StatusFailed
	default:
		r.Status = StatusPartial
	}
}
