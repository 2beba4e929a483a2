package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"revcert/internal/certificate"
	"revcert/internal/config"
	"revcert/internal/generator"
	"revcert/internal/gworkspace"
	"revcert/internal/logging"
	"revcert/internal/renderer"
	"revcert/internal/watch"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the CLI and returns the process exit code. Record-level
// failures still exit 0; only run-level failures exit 1.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Parse(args, stderr)
	switch {
	case errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, config.ErrUsage):
		return 2
	case err != nil:
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return 2
	}

	if cfg.PrintTemplate {
		fmt.Fprint(stdout, certificate.DefaultTemplate().Text)
		return 0
	}

	logger, err := logging.New(stderr, cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return 2
	}
	slog.SetDefault(logger)

	gen := generator.New(renderer.New(cfg.Renderer, cfg.RenderPasses))
	if cfg.NeedsCredentials() {
		client, err := gworkspace.NewClient(ctx, cfg.CredentialsPath)
		if err != nil {
			fmt.Fprintf(stderr, "ERROR: %v\n", err)
			return 1
		}
		if cfg.UsesSheets() {
			gen.Sheets = client
		}
		if cfg.DriveFolderID != "" {
			gen.Publisher = client.NewDriveUploader(cfg.DriveFolderID)
		}
	}

	printer := generator.NewPrinter(stdout)
	gen.OnRecord = printer.Record

	req := generator.Request{
		ReviewerTable: cfg.ReviewerTable,
		TemplatePath:  cfg.TemplatePath,
		OutputDir:     cfg.OutputDir,
		DeleteTex:     cfg.DeleteTex,
	}
	batch := func(ctx context.Context) error {
		report, err := gen.Generate(ctx, req)
		if report != nil {
			printer.Summary(report)
		}
		return err
	}

	if cfg.Watch {
		err := watch.Run(ctx, []string{cfg.ReviewerTable, cfg.TemplatePath}, watch.DefaultDebounce, func(ctx context.Context) {
			if err := batch(ctx); err != nil && ctx.Err() == nil {
				fmt.Fprintf(stderr, "ERROR: %v\n", err)
			}
		})
		if err != nil {
			fmt.Fprintf(stderr, "ERROR: %v\n", err)
			return 1
		}
		return 0
	}

	if err := batch(ctx); err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return 1
	}
	return 0
}
