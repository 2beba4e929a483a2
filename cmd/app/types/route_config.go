package types

import (
	"context"

	"revcert/internal/generator"
)

// Runner executes a certificate batch.
type Runner interface {
	Generate(ctx context.Context, req generator.Request) (*generator.Report, error)
}

type RouteConfig struct {
	APIConfig APIConfig
	Runner    Runner
}
