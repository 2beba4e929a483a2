package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	models "revcert/cmd/app/models/v1"
	"revcert/cmd/app/types"
	"revcert/internal/certificate"
	"revcert/internal/generator"
	"revcert/internal/reviewer"
)

func JobPost(rc types.RouteConfig) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID, _ := types.RequestID(r.Context())
		render := func(resp *types.Response) {
			if err := resp.Render(w, r); err != nil {
				slog.Error("error writing response", "error", err.Error(), "requestID", requestID)
			}
		}

		if r.Method != http.MethodPost {
			render(types.MethodNotAllowed())
			return
		}

		payload := models.JobPost{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			slog.Error("failed to decode request body", "error", err.Error(), "requestID", requestID)
			render(types.BadRequest(fmt.Errorf("invalid request body: %w", err)))
			return
		}
		if payload.ReviewerTable == "" {
			render(types.BadRequest(errors.New("reviewer_table is required")))
			return
		}
		if payload.Template == "" {
			render(types.BadRequest(errors.New("template is required")))
			return
		}

		table := payload.ReviewerTable
		if !strings.HasPrefix(table, reviewer.SheetsScheme) {
			var err error
			if table, err = resolveInput(rc.APIConfig.InputRoot, table); err != nil {
				render(types.Forbidden(err))
				return
			}
		}
		template, err := resolveInput(rc.APIConfig.InputRoot, payload.Template)
		if err != nil {
			render(types.Forbidden(err))
			return
		}

		req := generator.Request{
			ReviewerTable: table,
			TemplatePath:  template,
			OutputDir:     filepath.Join(rc.APIConfig.BaseOutputDir, requestID),
			DeleteTex:     payload.DeleteTex,
		}

		report, err := rc.Runner.Generate(r.Context(), req)
		switch {
		case errors.Is(err, certificate.ErrMissingTemplate), errors.Is(err, reviewer.ErrMissingInputTable):
			render(types.NotFound(err))
			return
		case errors.Is(err, reviewer.ErrMissingColumn),
			errors.Is(err, reviewer.ErrSheetsUnavailable),
			errors.Is(err, reviewer.ErrInvalidReference):
			render(types.BadRequest(err))
			return
		case err != nil:
			slog.Error("job failed", "error", err.Error(), "requestID", requestID)
			resp := types.InternalError(fmt.Errorf("failed to execute job: %w", err))
			resp.Report = report
			render(resp)
			return
		}

		slog.Info("job executed",
			"requestID", requestID,
			"status", report.Status,
			"succeeded", report.Succeeded,
			"failed", report.Failed,
		)
		render(types.Success(report))
	}
}

func GetHealth(w http.ResponseWriter, r *http.Request) {
	if err := (&types.Response{Code: http.StatusOK}).Render(w, r); err != nil {
		slog.Error("error writing response", "error", err.Error())
	}
}

// resolveInput maps a job path onto the input root, refusing paths that
// escape it.
func resolveInput(root, p string) (string, error) {
	full := p
	if !filepath.IsAbs(full) {
		full = filepath.Join(root, p)
	}
	rel, err := filepath.Rel(root, filepath.Clean(full))
	if err != nil || !filepath.IsLocal(rel) {
		return "", fmt.Errorf("path %q is outside the input root", p)
	}
	return filepath.Join(root, rel), nil
}
