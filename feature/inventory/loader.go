package inventory

import (
	"context"
	"time"

	"inventory-import/core/importer"
	"inventory-import/core/storage"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const prepareTimeout = 30 * time.Second

// Feature implements the loader.Feature interface.
type Feature struct {
	db      *gorm.DB
	store   *GormStore
	service *Service
	handler *Handler
}

// NewFeature creates the inventory import feature. It is disabled without a database.
func NewFeature(db *gorm.DB, client storage.Client, storageCfg storage.Config, cfg importer.Config, logger *zap.Logger) *Feature {
	f := &Feature{db: db}
	if db == nil {
		return f
	}
	f.store = NewGormStore(db, logger)
	f.service = NewService(f.store, client, storageCfg, cfg, logger)
	f.handler = NewHandler(f.service)
	return f
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "inventory"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.db != nil
}

// Load prepares the items table and registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	ctx, cancel := context.WithTimeout(context.Background(), prepareTimeout)
	defer cancel()

	if err := f.store.Prepare(ctx); err != nil {
		return err
	}
	f.handler.RegisterRoutes(app)
	return nil
}

// Service returns the import service, or nil when the feature is disabled.
func (f *Feature) Service() *Service {
	return f.service
}
