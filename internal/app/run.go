package app

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/specialistvlad/cicrender/internal/cohort"
	"github.com/specialistvlad/cicrender/internal/ctxlog"
	"github.com/specialistvlad/cicrender/internal/render"
	"github.com/specialistvlad/cicrender/internal/sink"
	"golang.org/x/sync/errgroup"
)

// Run loads every configuration from the source and writes one report per
// configuration into the output directory.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	src, closeSource, err := a.openSource(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeSource(); err != nil {
			a.logger.Warn("Failed to close configuration source.", "error", err)
		}
	}()

	configs, err := src.Configurations(ctx)
	if err != nil {
		return fmt.Errorf("failed to load configurations: %w", err)
	}
	a.logger.Info("Configurations discovered.", "count", len(configs))

	out := sink.New(a.config.Out)
	if err := out.Prepare(ctx); err != nil {
		return err
	}

	if len(configs) == 0 {
		a.logger.Warn("No configurations found, nothing to write.")
		return nil
	}

	configs = dropShadowed(ctx, configs)

	a.logger.Info("🚀 Rendering reports...", "workers", a.config.Workers)
	var written atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.config.Workers)
	for _, cfg := range configs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			wctx := ctxlog.With(gctx, "configuration", cfg.Name)
			lines := render.Render(cfg)
			path, err := out.Write(wctx, cfg.Name, lines)
			if err != nil {
				return err
			}
			written.Add(1)
			ctxlog.FromContext(wctx).Debug("Report written.", "path", path, "lines", len(lines))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to write reports: %w", err)
	}

	a.logger.Info("🏁 Reports written.", "count", written.Load(), "dir", out.Dir())
	return nil
}

// dropShadowed removes configurations whose report would be overwritten by a
// later configuration mapping to the same file name. The later one wins.
func dropShadowed(ctx context.Context, configs []*cohort.Configuration) []*cohort.Configuration {
	last := make(map[string]int, len(configs))
	for i, cfg := range configs {
		last[sink.FileName(cfg.Name)] = i
	}
	if len(last) == len(configs) {
		return configs
	}

	logger := ctxlog.FromContext(ctx)
	kept := make([]*cohort.Configuration, 0, len(last))
	for i, cfg := range configs {
		file := sink.FileName(cfg.Name)
		if winner := last[file]; winner != i {
			logger.Warn("Report file name collision, later configuration wins.",
				"file", file, "skipped", cfg.Name, "kept", configs[winner].Name)
			continue
		}
		kept = append(kept, cfg)
	}
	return kept
}
