package models_test

import (
	"testing"

	"inventory-import/core/importer"
	"inventory-import/feature/inventory/models"

	"github.com/stretchr/testify/assert"
)

func TestFromFields(t *testing.T) {
	item := models.FromFields(importer.Fields{
		"name":       "Widget",
		"sku":        "W1",
		"quantity":   int64(10),
		"cost_price": 2.5,
		"tags":       []string{"red", "blue"},
	})

	assert.Equal(t, "Widget", item.Name)
	assert.Equal(t, "W1", item.SKU)
	assert.Equal(t, 10, item.Quantity)
	assert.Equal(t, 2.5, item.CostPrice)
	assert.Equal(t, "red;blue", item.Tags)
	assert.Equal(t, []string{"red", "blue"}, item.TagList())
	assert.True(t, item.Active, "active defaults to true")
	assert.Empty(t, item.ID)
}

func TestFromFields_ExplicitInactive(t *testing.T) {
	item := models.FromFields(importer.Fields{"sku": "W1", "active": false})
	assert.False(t, item.Active)
}

func TestColumns(t *testing.T) {
	cols := models.Columns(importer.Fields{
		"name":     "Widget",
		"quantity": int64(3),
		"active":   false,
		"tags":     []string{"a"},
		"colour":   "teal",
	})

	assert.Equal(t, map[string]any{
		"name":     "Widget",
		"quantity": 3,
		"active":   false,
		"tags":     "a",
	}, cols)
}

func TestColumnNames(t *testing.T) {
	names := models.ColumnNames()
	assert.Contains(t, names, "id")
	assert.Contains(t, names, "reorder_point")
	assert.Contains(t, names, "tags")
	assert.Len(t, names, len(importer.Schema)+3)
}
