package main

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/edvalho/recipelint/pkg/eventbus"
	"github.com/edvalho/recipelint/pkg/validation"
)

// Watcher re-validates every recipe document under a directory on a cron
// schedule and publishes one lifecycle event per recipe per sweep.
type Watcher struct {
	logger   *slog.Logger
	runner   *validation.Runner
	bus      eventbus.EventBus
	dir      string
	schedule string
	cron     *cron.Cron
}

func NewWatcher(
	logger *slog.Logger,
	runner *validation.Runner,
	bus eventbus.EventBus,
	dir string,
	schedule string,
) *Watcher {
	return &Watcher{
		logger:   logger,
		runner:   runner,
		bus:      bus,
		dir:      dir,
		schedule: schedule,
	}
}

// Start validates the schedule, runs one immediate sweep and then blocks
// until the context is cancelled or a termination signal arrives.
func (w *Watcher) Start(ctx context.Context) error {
	if _, err := cron.ParseStandard(w.schedule); err != nil {
		return err
	}

	wCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	w.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	if _, err := w.cron.AddFunc(w.schedule, func() {
		w.sweep(wCtx)
	}); err != nil {
		return err
	}

	w.logger.Info("Starting recipe watcher", "dir", w.dir, "schedule", w.schedule)
	w.sweep(wCtx)
	w.cron.Start()

	w.handleSignals(cancel)
	<-wCtx.Done()

	stopCtx := w.cron.Stop()
	<-stopCtx.Done()

	w.logger.Info("Recipe watcher stopped")

	return nil
}

func (w *Watcher) handleSignals(cancel context.CancelFunc) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-signals
		w.logger.Info("Received signal, shutting down gracefully", "signal", sig)
		cancel()
	}()
}

// sweep validates every .json document under the watched directory.
func (w *Watcher) sweep(ctx context.Context) {
	var validated, failed int

	err := filepath.WalkDir(w.dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			return nil
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		if w.validateOne(ctx, path) {
			validated++
		} else {
			failed++
		}

		return nil
	})
	if err != nil {
		w.logger.Error("Sweep aborted", "error", err)

		return
	}

	w.logger.Info("Sweep finished", "passed", validated, "failed", failed)
}

func (w *Watcher) validateOne(ctx context.Context, path string) bool {
	logger := w.logger.With("recipe", path)

	raw, err := os.ReadFile(path)
	if err != nil {
		logger.Error("Failed to read recipe", "error", err)

		return false
	}

	started := time.Now()
	report := w.runner.Run(ctx, raw)
	elapsed := time.Since(started)

	if err := publishReport(ctx, w.bus, path, report, elapsed); err != nil {
		logger.Error("Failed to publish validation event", "error", err)
	}

	logger.Debug("Validated recipe",
		"run_id", report.RunID,
		"verdict", report.Verdict,
		"errors", report.Errors,
		"warnings", report.Warnings)

	return report.Passed()
}
