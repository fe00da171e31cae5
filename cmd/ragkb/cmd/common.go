package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ragkb/ragkb/internal/app"
	"github.com/ragkb/ragkb/internal/config"
	"github.com/ragkb/ragkb/internal/logging"
)

// buildApp loads configuration from the working directory, sets up file
// logging, and constructs every wired dependency. The returned cleanup
// closes the logger and every opened store; callers must defer it.
func buildApp(ctx context.Context) (*app.App, func(), error) {
	logCfg := logging.DefaultConfig()
	logCfg.WriteToStderr = false
	if debugMode {
		logCfg = logging.DebugConfig()
		logCfg.WriteToStderr = false
	}
	logger, logCleanup, err := logging.Setup(logCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("setup logging: %w", err)
	}

	dir, err := os.Getwd()
	if err != nil {
		logCleanup()
		return nil, nil, fmt.Errorf("get working directory: %w", err)
	}

	cfg, err := config.Load(dir)
	if err != nil {
		logCleanup()
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logCleanup()
		return nil, nil, fmt.Errorf("build app: %w", err)
	}

	cleanup := func() {
		if err := a.Close(); err != nil {
			slog.Error("error closing app", slog.String("error", err.Error()))
		}
		logCleanup()
	}
	return a, cleanup, nil
}
