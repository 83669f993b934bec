package cli

import (
	"fmt"
	"log/slog"

	"github.com/sadopc/fillr/internal/config"
	"github.com/sadopc/fillr/internal/logging"
	"github.com/sadopc/fillr/internal/store"
)

// runtime bundles what every command needs: config, logger and store.
type runtime struct {
	cfg      config.Config
	store    *store.Store
	logger   *slog.Logger
	closeLog func() error
}

func resolvedConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultPath()
}

func loadConfig() (config.Config, error) {
	cfg, err := config.LoadFile(resolvedConfigPath())
	if err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	return cfg, nil
}

func openRuntime() (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, closeLog, err := logging.Open(cfg.LogPath)
	if err != nil {
		return nil, err
	}

	s, err := store.New(cfg.DBPath)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("open database %s: %w", cfg.DBPath, err)
	}

	logger.Debug("runtime opened", "config", cfg.Path(), "db", cfg.DBPath)
	return &runtime{cfg: cfg, store: s, logger: logger, closeLog: closeLog}, nil
}

func (r *runtime) Close() {
	if err := r.store.Close(); err != nil {
		r.logger.Error("close database", "err", err)
	}
	r.closeLog()
}
