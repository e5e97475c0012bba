package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/specialistvlad/cicrender/internal/catalogue"
	"github.com/specialistvlad/cicrender/internal/cohort"
	"github.com/specialistvlad/cicrender/internal/ctxlog"
	"github.com/specialistvlad/cicrender/internal/snapshot"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	logger *slog.Logger
	config *Config

	// openSource is swapped in tests.
	openSource func(ctx context.Context) (cohort.Source, func() error, error)
}

// NewApp is the constructor for the main application. Logs are written to
// logW; reports go to the configured output directory.
func NewApp(logW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.", "config", *cfg)

	a := &App{
		logger: logger,
		config: cfg,
	}
	a.openSource = a.defaultSource
	return a
}

// defaultSource opens the HCL snapshot when one is configured and the
// catalogue database otherwise. The returned func releases the source.
func (a *App) defaultSource(ctx context.Context) (cohort.Source, func() error, error) {
	logger := ctxlog.FromContext(ctx)

	if a.config.Snapshot != "" {
		logger.Info("Reading configurations from snapshot.", "path", a.config.Snapshot)
		return snapshot.NewLoader(a.config.Snapshot), func() error { return nil }, nil
	}

	logger.Info("Connecting to catalogue.", "driver", a.config.Driver, "server", a.config.Server, "database", a.config.Database)
	store, err := catalogue.Open(ctx, a.config.CatalogueOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open catalogue: %w", err)
	}
	return store, store.Close, nil
}
