package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/CalebMUC/Quickcrate-Merchant-Dashboard-sub000/internal/catalog"
	"github.com/CalebMUC/Quickcrate-Merchant-Dashboard-sub000/internal/client"
	"github.com/CalebMUC/Quickcrate-Merchant-Dashboard-sub000/internal/metrics"
)

const exporterShutdownTimeout = 5 * time.Second

// runWatch refreshes the hierarchy on a fixed interval and serves request and
// load metrics until interrupted or the requested number of refreshes is done.
func runWatch(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "watch")
	interval := fs.Duration("interval", a.cfg.Watch.Interval, "Time between refreshes")
	iterations := fs.Int("iterations", 0, "Stop after this many refreshes (0 runs until interrupted)")
	metricsPort := fs.Int("metrics-port", -1, "Metrics port (-1 uses the configured port, 0 picks a free one)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *interval <= 0 {
		return fmt.Errorf("%w: -interval must be positive", errUsage)
	}
	if *iterations < 0 {
		return fmt.Errorf("%w: -iterations must not be negative", errUsage)
	}

	exporterCfg := metrics.DefaultPrometheusExporterConfig()
	exporterCfg.Port = a.cfg.Metrics.Port
	exporterCfg.Path = a.cfg.Metrics.Path
	exporterCfg.Namespace = a.cfg.Metrics.Namespace
	if *metricsPort >= 0 {
		exporterCfg.Port = *metricsPort
	}

	exporter := metrics.NewPrometheusExporter(exporterCfg)
	if err := exporter.Start(); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), exporterShutdownTimeout)
		defer cancel()
		if err := exporter.Stop(stopCtx); err != nil {
			a.logger.Warn("stopping metrics exporter", zap.Error(err))
		}
	}()
	a.logger.Info("serving metrics", zap.String("address", exporter.Address()))

	s, err := a.connect(client.WithObserver(exporter))
	if err != nil {
		return err
	}
	hierarchy := catalog.NewHierarchy(s.loader(a.cfg.Loader, a.logger, catalog.WithLoadObserver(exporter)))

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	var refreshes, failures int
	for {
		tree, err := hierarchy.Refresh(ctx)
		if ctx.Err() != nil {
			break
		}
		refreshes++
		if err != nil {
			failures++
			a.logger.Warn("hierarchy refresh failed", zap.Int("refresh", refreshes), zap.Error(err))
		} else {
			_, gen := hierarchy.Snapshot()
			a.logger.Info("hierarchy refreshed",
				zap.Int("refresh", refreshes),
				zap.Uint64("generation", gen),
				zap.Int("entries", len(catalog.Flatten(tree))),
			)
		}

		if *iterations > 0 && refreshes >= *iterations {
			break
		}
		select {
		case <-ctx.Done():
		case <-ticker.C:
			continue
		}
		break
	}

	a.logger.Info("watch stopped", zap.Int("refreshes", refreshes), zap.Int("failures", failures))
	fmt.Fprintf(a.stdout, "%d refreshes, %d failed\n", refreshes, failures)
	return nil
}
