package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/javiermolinar/studydesk/internal/config"
	"github.com/javiermolinar/studydesk/internal/db"
	"github.com/javiermolinar/studydesk/internal/logging"
	"github.com/javiermolinar/studydesk/internal/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, closeLog, err := logging.New(logging.Config{
		Level:    cfg.Log.Level,
		Encoding: cfg.Log.Encoding,
		File:     cfg.Log.File,
	})
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer closeLog()

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.DBPath), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	repo, err := db.New(cfg.Storage.DBPath, db.WithLogger(logger))
	if err != nil {
		return err
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Warn("closing database", zap.Error(err))
		}
	}()

	app := ui.NewApp(repo, cfg, ui.WithLogger(logger))
	return app.ExecuteContext(ctx)
}
