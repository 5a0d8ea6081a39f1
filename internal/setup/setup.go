// Package setup wires the application together: configuration, logging,
// and the storage backend.
package setup

import (
	"fmt"

	"github.com/straznik-bot/straznik/internal/logging"
	"github.com/straznik-bot/straznik/internal/redis"
	"github.com/straznik-bot/straznik/internal/setup/config"
	"github.com/straznik-bot/straznik/internal/storage"
	"go.uber.org/zap"
)

// App bundles the shared dependencies created at startup.
type App struct {
	Config       *config.Config
	Logger       *zap.Logger
	Store        storage.Store
	RedisManager *redis.Manager
	Denylist     []string
}

// InitializeApp loads the configuration, sets up logging, and opens the
// configured storage backend.
func InitializeApp() (*App, error) {
	cfg, configPath, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.Setup(cfg.Logging.Dir, cfg.Logging.Level, cfg.Logging.MaxLogsToKeep)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	app := &App{
		Config:   cfg,
		Logger:   logger,
		Denylist: config.LoadWordlist(configPath),
	}

	switch cfg.Storage.Backend {
	case config.BackendFile:
		store, err := storage.NewFileStore(cfg.Storage.DataDir, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open file store: %w", err)
		}

		app.Store = store

	case config.BackendRedis:
		app.RedisManager = redis.NewManager(&cfg.Redis, logger)

		client, err := app.RedisManager.GetClient(cfg.Redis.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to open redis store: %w", err)
		}

		app.Store = storage.NewRedisStore(client, logger)

	default:
		return nil, fmt.Errorf("%w: %s", storage.ErrUnknownBackend, cfg.Storage.Backend)
	}

	logger.Info("Application initialized",
		zap.String("configPath", configPath),
		zap.String("storageBackend", cfg.Storage.Backend))

	return app, nil
}

// Cleanup releases the resources held by the application.
func (a *App) Cleanup() {
	if a.RedisManager != nil {
		a.RedisManager.Close()
	}

	_ = a.Logger.Sync()
}
