package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"inventory-import/core/database"
	"inventory-import/core/importer"
	"inventory-import/feature/inventory/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrItemNotFound is returned when an item id or SKU does not exist.
var ErrItemNotFound = errors.New("item not found")

// GormStore persists inventory items through GORM. It implements importer.ItemStore.
type GormStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormStore creates a store on an open database.
func NewGormStore(db *gorm.DB, logger *zap.Logger) *GormStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GormStore{db: db, logger: logger}
}

// Prepare migrates the items table and verifies it afterwards.
func (s *GormStore) Prepare(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&models.Item{}); err != nil {
		return fmt.Errorf("failed to migrate %s: %w", models.Item{}.TableName(), err)
	}
	return s.Verify(ctx)
}

// MissingColumns lists the columns the store writes that the items table lacks.
func (s *GormStore) MissingColumns(ctx context.Context) ([]string, error) {
	return database.MissingColumns(s.db.WithContext(ctx), models.Item{}.TableName(), models.ColumnNames())
}

// Verify fails when the items table lacks a column the store writes.
func (s *GormStore) Verify(ctx context.Context) error {
	table := models.Item{}.TableName()
	missing, err := s.MissingColumns(ctx)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("table %s is missing columns: %s", table, strings.Join(missing, ", "))
	}
	return nil
}

// Lookup resolves an item by SKU first, then by exact name. The oldest match wins.
func (s *GormStore) Lookup(ctx context.Context, sku, name string) (importer.ItemRef, bool, error) {
	if sku != "" {
		ref, ok, err := s.first(ctx, "sku = ?", sku)
		if err != nil || ok {
			return ref, ok, err
		}
	}
	if name != "" {
		return s.first(ctx, "name = ?", name)
	}
	return importer.ItemRef{}, false, nil
}

func (s *GormStore) first(ctx context.Context, query string, arg string) (importer.ItemRef, bool, error) {
	var item models.Item
	err := s.db.WithContext(ctx).
		Select("id", "sku", "name").
		Where(query, arg).
		Order("created_at").
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return importer.ItemRef{}, false, nil
	}
	if err != nil {
		return importer.ItemRef{}, false, fmt.Errorf("failed to look up item: %w", err)
	}
	return item.Ref(), true, nil
}

// Create inserts a new item from imported fields.
func (s *GormStore) Create(ctx context.Context, fields importer.Fields) (importer.ItemID, error) {
	item := models.FromFields(fields)
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return "", err
	}
	return importer.ItemID(item.ID), nil
}

// Update writes only the provided fields onto an existing item.
func (s *GormStore) Update(ctx context.Context, id importer.ItemID, fields importer.Fields) error {
	cols := models.Columns(fields)
	if len(cols) == 0 {
		_, err := s.Get(ctx, string(id))
		return err
	}

	res := s.db.WithContext(ctx).Model(&models.Item{}).Where("id = ?", string(id)).Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// MySQL reports zero affected rows for an unchanged row.
		if _, err := s.Get(ctx, string(id)); err != nil {
			return err
		}
	}
	return nil
}

// Get loads one item by id.
func (s *GormStore) Get(ctx context.Context, id string) (*models.Item, error) {
	var item models.Item
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindBySKU returns every item with the SKU, oldest first. Create mode may have
// produced more than one.
func (s *GormStore) FindBySKU(ctx context.Context, sku string) ([]models.Item, error) {
	var items []models.Item
	if err := s.db.WithContext(ctx).Where("sku = ?", sku).Order("created_at").Find(&items).Error; err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: sku %s", ErrItemNotFound, sku)
	}
	return items, nil
}
