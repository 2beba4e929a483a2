package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"revcert/cmd/app/core/middleware"
	"revcert/cmd/app/types"
	v1 "revcert/cmd/app/v1"
	"revcert/internal/generator"
	"revcert/internal/gworkspace"
	"revcert/internal/logging"
	"revcert/internal/renderer"
)

func run() error {
	logger, err := logging.New(os.Stdout, "json", "info")
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	slog.Info("startup", "status", "initializing API")
	defer slog.Info("shutdown complete")

	cfg, err := types.LoadConfig(os.Args[1:], os.Stderr)
	if err != nil {
		slog.Error("failed to load config", "error", err.Error())
		return err
	}

	gen := generator.New(renderer.New(cfg.Renderer, cfg.RenderPasses))
	if cfg.CredentialsPath != "" {
		client, err := gworkspace.NewClient(context.Background(), cfg.CredentialsPath)
		if err != nil {
			slog.Error("failed to create Google client", "error", err.Error())
			return err
		}
		gen.Sheets = client
		if cfg.DriveFolderID != "" {
			gen.Publisher = client.NewDriveUploader(cfg.DriveFolderID)
		}
	}

	rc := types.RouteConfig{
		APIConfig: *cfg,
		Runner:    gen,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/job", v1.JobPost(rc))
	mux.HandleFunc("/api/v1/health", v1.GetHealth)
	slog.Info("starting server", "address", cfg.Addr, "input_root", cfg.InputRoot)
	err = http.ListenAndServe(cfg.Addr, middleware.RequestTrace(mux))

	if err != nil {
		slog.Error("server error", "error", err.Error())
		slog.Info("shutdown complete with errors")
		return err
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}
