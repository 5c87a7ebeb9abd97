package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"inventory-import/core/database"
	"inventory-import/core/importer"
	"inventory-import/feature/inventory"
	"inventory-import/feature/inventory/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) (*inventory.GormStore, *gorm.DB) {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)

	store := inventory.NewGormStore(db, zap.NewNop())
	require.NoError(t, store.Prepare(context.Background()))
	return store, db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB, mock
}

func TestGormStore_Lookup(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	widget := models.Item{SKU: "W1", Name: "Widget", Active: true}
	gadget := models.Item{Name: "Gadget", Active: true}
	require.NoError(t, db.Create(&widget).Error)
	require.NoError(t, db.Create(&gadget).Error)

	tests := []struct {
		name  string
		sku   string
		item  string
		want  string
		found bool
	}{
		{"SKU wins over name", "W1", "Gadget", widget.ID, true},
		{"Name only", "", "Gadget", gadget.ID, true},
		{"Unknown SKU falls back to name", "ZZ", "Widget", widget.ID, true},
		{"Name is exact", "", "widget", "", false},
		{"Nothing matches", "ZZ", "", "", false},
		{"Empty identity", "", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, ok, err := store.Lookup(ctx, tt.sku, tt.item)
			require.NoError(t, err)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, importer.ItemID(tt.want), ref.ID)
		})
	}
}

func TestGormStore_LookupOldestWins(t *testing.T) {
	store, db := newTestStore(t)
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	newer := models.Item{SKU: "DUP", Name: "newer", CreatedAt: t0.Add(time.Hour)}
	older := models.Item{SKU: "DUP", Name: "older", CreatedAt: t0}
	require.NoError(t, db.Create(&newer).Error)
	require.NoError(t, db.Create(&older).Error)

	ref, ok, err := store.Lookup(context.Background(), "DUP", "")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "older", ref.Name)

	items, err := store.FindBySKU(context.Background(), "DUP")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "older", items[0].Name)
}

func TestGormStore_Create(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, importer.Fields{
		"name":     "Widget",
		"sku":      "W1",
		"quantity": int64(10),
		"tags":     []string{"red", "blue"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	item, err := store.Get(ctx, string(id))
	require.NoError(t, err)
	assert.Equal(t, "Widget", item.Name)
	assert.Equal(t, 10, item.Quantity)
	assert.True(t, item.Active)
	assert.Equal(t, []string{"red", "blue"}, item.TagList())
	assert.False(t, item.CreatedAt.IsZero())

	// Create never dedupes.
	_, err = store.Create(ctx, importer.Fields{"sku": "W1", "active": false})
	require.NoError(t, err)
	items, err := store.FindBySKU(ctx, "W1")
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.False(t, items[1].Active)
}

func TestGormStore_Update(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, importer.Fields{"name": "Widget", "sku": "W1", "quantity": int64(10), "cost_price": 2.5})
	require.NoError(t, err)

	require.NoError(t, store.Update(ctx, id, importer.Fields{"sku": "W1", "quantity": int64(4), "active": false}))

	item, err := store.Get(ctx, string(id))
	require.NoError(t, err)
	assert.Equal(t, 4, item.Quantity)
	assert.False(t, item.Active)
	assert.Equal(t, "Widget", item.Name, "absent fields keep their value")
	assert.Equal(t, 2.5, item.CostPrice)

	// Writing the same values again is not an error.
	require.NoError(t, store.Update(ctx, id, importer.Fields{"sku": "W1", "quantity": int64(4)}))
}

func TestGormStore_UpdateUnknownItem(t *testing.T) {
	store, _ := newTestStore(t)

	err := store.Update(context.Background(), "missing", importer.Fields{"sku": "W1"})
	assert.ErrorIs(t, err, inventory.ErrItemNotFound)

	err = store.Update(context.Background(), "missing", importer.Fields{})
	assert.ErrorIs(t, err, inventory.ErrItemNotFound)
}

func TestGormStore_FindBySKUUnknown(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.FindBySKU(context.Background(), "nope")
	assert.ErrorIs(t, err, inventory.ErrItemNotFound)
}

func TestGormStore_VerifyMissingColumns(t *testing.T) {
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE inventory_items (id TEXT, sku TEXT, name TEXT)").Error)

	err = inventory.NewGormStore(db, nil).Verify(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing columns")
	assert.Contains(t, err.Error(), "quantity")
}

func TestGormStore_MySQL(t *testing.T) {
	ctx := context.Background()

	t.Run("Lookup failure is wrapped", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectQuery("SELECT .* FROM `inventory_items` WHERE sku = \\?").
			WillReturnError(errors.New("connection reset"))

		_, ok, err := inventory.NewGormStore(db, nil).Lookup(ctx, "W1", "Widget")
		assert.False(t, ok)
		assert.ErrorContains(t, err, "failed to look up item: connection reset")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Lookup falls back to name", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectQuery("SELECT .* FROM `inventory_items` WHERE sku = \\?").
			WillReturnRows(sqlmock.NewRows([]string{"id", "sku", "name"}))
		mock.ExpectQuery("SELECT .* FROM `inventory_items` WHERE name = \\?").
			WillReturnRows(sqlmock.NewRows([]string{"id", "sku", "name"}).AddRow("item-1", "", "Widget"))

		ref, ok, err := inventory.NewGormStore(db, nil).Lookup(ctx, "W1", "Widget")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, importer.ItemID("item-1"), ref.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Update failure", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE `inventory_items` SET").WillReturnError(errors.New("lock wait timeout"))
		mock.ExpectRollback()

		err := inventory.NewGormStore(db, nil).Update(ctx, "item-1", importer.Fields{"quantity": int64(1)})
		assert.ErrorContains(t, err, "lock wait timeout")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Verify matching table", func(t *testing.T) {
		db, mock := setupMockDB(t)
		rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"})
		for _, name := range models.ColumnNames() {
			rows.AddRow(name, "varchar(255)", "YES", "", nil, "")
		}
		mock.ExpectQuery("SHOW COLUMNS FROM `inventory_items`").WillReturnRows(rows)

		assert.NoError(t, inventory.NewGormStore(db, nil).Verify(ctx))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
