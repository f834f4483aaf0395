package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/contre95/dispatch/src/features/config"
	"github.com/contre95/dispatch/src/features/dispatching"
	"github.com/contre95/dispatch/src/features/hosting"
	"github.com/contre95/dispatch/src/features/logging"
	"github.com/contre95/dispatch/src/features/metrics"
	"github.com/contre95/dispatch/src/features/reporting"
	"github.com/contre95/dispatch/src/infra/database"
	"github.com/contre95/dispatch/src/infra/files"
	"github.com/contre95/dispatch/src/infra/tag"
	"github.com/contre95/dispatch/src/infra/walker"
	"github.com/contre95/dispatch/src/infra/watcher"
	"github.com/contre95/dispatch/src/music"
)

// runDispatch wires the dispatcher from cfg and runs it over source. Per-file
// problems are reported in the summary; only structural problems are returned.
func runDispatch(ctx context.Context, out io.Writer, cfg *config.Config, verbose bool, source, dest string) error {
	logger := logging.SetupLogger(cfg.Logger, verbose, os.Stderr)
	slog.SetDefault(logger)

	sourceRoot, err := filepath.Abs(source)
	if err != nil {
		return fmt.Errorf("invalid source %q: %w", source, err)
	}
	destRoot, err := filepath.Abs(dest)
	if err != nil {
		return fmt.Errorf("invalid destination %q: %w", dest, err)
	}

	template, err := files.ParseTemplate(cfg.Format, files.TemplateOptions{Strict: cfg.StrictTemplate, Asciify: cfg.Asciify})
	if err != nil {
		return fmt.Errorf("invalid format: %w", err)
	}
	transferer := files.NewTransferer(logger)
	organizer := files.NewFileOrganizer(destRoot, template, transferer)
	logger.Debug("Dispatcher configured", "format", template.String(), "copy_strategy", transferer.Strategy())

	mode := music.Copy
	if cfg.Move {
		mode = music.Move
	}

	var recorder dispatching.Recorder
	if cfg.History.Enabled {
		history, err := database.NewSqliteHistory(cfg.History.Path)
		if err != nil {
			return fmt.Errorf("failed to open history journal: %w", err)
		}
		defer history.Close()
		recorder = history
	}

	dispatchMetrics := metrics.NewDispatchMetrics()
	service := dispatching.NewService(dispatching.Options{
		SourceRoot:     sourceRoot,
		Format:         cfg.Format,
		Mode:           mode,
		DryRun:         cfg.DryRun,
		Workers:        cfg.Workers,
		PruneEmptyDirs: cfg.PruneEmptyDirs,
	}, walker.NewFSWalker(logger), tag.NewTagReader(logger), organizer, recorder, logger, dispatchMetrics)

	if cfg.Server.Enabled {
		server := hosting.NewServer(cfg.Server, service, dispatchMetrics.Registry(), logger)
		go func() {
			if err := server.Start(); err != nil {
				logger.Error("Metrics server stopped", "error", err)
			}
		}()
		defer server.Shutdown()
	}

	start := time.Now()
	summary, err := service.Run(ctx)
	if err != nil {
		return err
	}

	if cfg.Watch.Enabled && ctx.Err() == nil {
		if err := watchSource(ctx, service, cfg.Watch, sourceRoot, destRoot, logger); err != nil {
			return err
		}
		summary = service.Stats()
		summary.Interrupted = false
		summary.Elapsed = time.Since(start)
		if recorder != nil {
			if err := recorder.FinishRun(context.WithoutCancel(ctx), service.RunID(), summary); err != nil {
				logger.Warn("Failed to record watch totals", "run_id", service.RunID(), "error", err)
			}
		}
	}

	if err := reporting.WriteSummary(out, summary); err != nil {
		logger.Warn("Failed to print summary", "error", err)
	}
	notifySummary(cfg.Telegram, summary, logger)
	return nil
}

// watchSource dispatches files added to the source tree until ctx is cancelled.
func watchSource(ctx context.Context, service *dispatching.Service, cfg config.Watch, sourceRoot, destRoot string, logger *slog.Logger) error {
	paths := make(chan string)
	w, err := watcher.NewWatcher(paths, watcher.Options{
		Debounce:      time.Duration(cfg.DebounceSecs) * time.Second,
		IncludeWrites: cfg.IncludeWrites,
		Exclude:       destRoot,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Start(ctx, sourceRoot); err != nil {
		w.Stop()
		return fmt.Errorf("failed to watch %s: %w", sourceRoot, err)
	}
	defer w.Stop()

	service.Watch(ctx, paths)
	return nil
}

func notifySummary(cfg config.Telegram, summary dispatching.Summary, logger *slog.Logger) {
	if !cfg.Enabled {
		return
	}
	notifier, err := hosting.NewTelegramNotifier(cfg, logger)
	if err != nil {
		logger.Error("Failed to set up telegram notifications", "error", err)
		return
	}
	if err := notifier.NotifySummary(summary); err != nil {
		logger.Error("Failed to send run summary", "error", err)
	}
}
