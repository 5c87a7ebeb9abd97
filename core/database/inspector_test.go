package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTableColumns(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)

	err = db.Exec("CREATE TABLE test_items (id INTEGER PRIMARY KEY, sku TEXT NOT NULL, name TEXT)").Error
	require.NoError(t, err)

	columns, err := GetTableColumns(db, "test_items")
	require.NoError(t, err)
	require.Len(t, columns, 3)

	colMap := make(map[string]ColumnInfo)
	for _, col := range columns {
		colMap[col.Field] = col
	}
	assert.Equal(t, "integer", colMap["id"].Type)
	assert.Equal(t, "text", colMap["sku"].Type)
	assert.Equal(t, "NO", colMap["sku"].Null)
	assert.Equal(t, "YES", colMap["name"].Null)

	// PRAGMA table_info returns nothing for an unknown table.
	cols, err := GetTableColumns(db, "non_existent")
	assert.NoError(t, err)
	assert.Empty(t, cols)
}

func TestMissingColumns(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE inventory_items (id TEXT, sku TEXT, Name TEXT)").Error)

	missing, err := MissingColumns(db, "inventory_items", []string{"sku", "name", "quantity", "tags"})
	require.NoError(t, err)
	assert.Equal(t, []string{"quantity", "tags"}, missing)

	missing, err = MissingColumns(db, "inventory_items", []string{"id", "SKU"})
	require.NoError(t, err)
	assert.Empty(t, missing)
}
