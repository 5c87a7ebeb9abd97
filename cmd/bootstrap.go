package cmd

import (
	"context"
	"fmt"
	"time"

	"inventory-import/core/config"
	"inventory-import/core/database"
	"inventory-import/core/logger"
	"inventory-import/core/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// services bundles what every command needs after startup.
type services struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
	client storage.Client
}

// bootstrap loads configuration and opens the logger, database and storage client.
// Connection failures are logged and leave the matching field nil. Without a database
// the inventory feature is disabled; without storage, object imports and error reports are.
func bootstrap(ctx context.Context) (*services, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	rt := &services{cfg: cfg, logger: l}

	if db, err := database.Connect(cfg.Database); err != nil {
		l.Warn("Database connection failed", zap.Error(err))
	} else {
		rt.db = db
		l.Info("Connected to inventory database", zap.String("driver", cfg.Database.Driver))
	}

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		l.Warn("Storage unavailable, object imports and error reports disabled", zap.Error(err))
		return rt, nil
	}

	timeout := time.Duration(cfg.Storage.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	bctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := storage.EnsureBucket(bctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
		l.Warn("Storage unavailable, object imports and error reports disabled",
			zap.String("bucket", cfg.Storage.Bucket), zap.Error(err))
		return rt, nil
	}
	rt.client = client
	return rt, nil
}
