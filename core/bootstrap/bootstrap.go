// Package bootstrap runs the start-up pipeline shared by bots: logging first, then storage seeders.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	coreconfig "github.com/m3rciful/filmbot/core/config"
	"github.com/m3rciful/filmbot/core/logger"
)

// Options control the generic bootstrap pipeline.
type Options struct {
	Config *coreconfig.Config

	// Storage is handed to every seeder unchanged.
	Storage Storage
	Modules Modules

	LoggerInit func(*coreconfig.Config) error
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
type Result struct {
	Storage Storage
}

// Run initializes the logger and applies the configured seeders in order.
// The first failing seeder aborts the pipeline.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	for i, seeder := range opts.Modules.Seeders {
		if seeder == nil {
			continue
		}
		start := time.Now()
		err := seeder.Seed(ctx, opts.Storage)
		logger.Info(ctx, "app", "seed",
			slog.String("status", logger.Status(err)),
			slog.Int("seeder", i),
			slog.Duration("duration", logger.Took(start)),
		)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: seeder %d failed: %w", i, err)
		}
	}

	return &Result{Storage: opts.Storage}, nil
}
