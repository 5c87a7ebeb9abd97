package inventory_test

import (
	"testing"

	"inventory-import/feature/inventory"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadRequest_Validate(t *testing.T) {
	assert.NoError(t, inventory.UploadRequest{Mode: "UpdateBySku", Size: 10}.Validate(100))

	err := inventory.UploadRequest{Mode: "", Size: 200}.Validate(100)
	var errs validation.Errors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, "mode is required", errs["mode"].Error())
	assert.Equal(t, "file is too large", errs["size"].Error())
}

func TestObjectImportRequest_Validate(t *testing.T) {
	tests := []struct {
		name string
		req  inventory.ObjectImportRequest
		bad  []string
	}{
		{"Valid", inventory.ObjectImportRequest{Object: "uploads/items.csv", Mode: "upsert"}, nil},
		{"Not csv", inventory.ObjectImportRequest{Object: "uploads/items.xlsx", Mode: "upsert"}, []string{"object"}},
		{"Leading space", inventory.ObjectImportRequest{Object: " items.csv", Mode: "create"}, []string{"object"}},
		{"Missing all", inventory.ObjectImportRequest{}, []string{"object", "mode"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.bad == nil {
				assert.NoError(t, err)
				return
			}
			var errs validation.Errors
			require.ErrorAs(t, err, &errs)
			for _, field := range tt.bad {
				assert.Contains(t, errs, field)
			}
		})
	}
}
