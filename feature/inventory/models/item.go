package models

import (
	"time"

	"inventory-import/core/importer"
	"inventory-import/core/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Item represents the 'inventory_items' table.
// Column names match the canonical import field names.
type Item struct {
	ID           string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	SKU          string    `gorm:"column:sku;size:64;index" json:"sku"` // not unique: create mode may duplicate
	Name         string    `gorm:"column:name;size:255;index" json:"name"`
	Category     string    `gorm:"column:category;size:128" json:"category,omitempty"`
	Subcategory  string    `gorm:"column:subcategory;size:128" json:"subcategory,omitempty"`
	Supplier     string    `gorm:"column:supplier;size:128" json:"supplier,omitempty"`
	Location     string    `gorm:"column:location;size:128" json:"location,omitempty"`
	Description  string    `gorm:"column:description;type:text" json:"description,omitempty"`
	Unit         string    `gorm:"column:unit;size:32" json:"unit,omitempty"`
	Barcode      string    `gorm:"column:barcode;size:64" json:"barcode,omitempty"`
	Color        string    `gorm:"column:color;size:64" json:"color,omitempty"`
	Material     string    `gorm:"column:material;size:64" json:"material,omitempty"`
	Notes        string    `gorm:"column:notes;type:text" json:"notes,omitempty"`
	Quantity     int       `gorm:"column:quantity" json:"quantity"`
	ReorderPoint int       `gorm:"column:reorder_point" json:"reorder_point"`
	CostPrice    float64   `gorm:"column:cost_price" json:"cost_price"`
	SellingPrice float64   `gorm:"column:selling_price" json:"selling_price"`
	Width        float64   `gorm:"column:width" json:"width"`
	Height       float64   `gorm:"column:height" json:"height"`
	Length       float64   `gorm:"column:length" json:"length"`
	MarkupRatio  float64   `gorm:"column:markup_ratio" json:"markup_ratio"`
	TaxRate      float64   `gorm:"column:tax_rate" json:"tax_rate"`
	DiscountRate float64   `gorm:"column:discount_rate" json:"discount_rate"`
	Active       bool      `gorm:"column:active;not null" json:"active"`
	Tags         string    `gorm:"column:tags;size:512" json:"tags,omitempty"` // ';' joined
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName overrides the table name.
func (Item) TableName() string {
	return "inventory_items"
}

// BeforeCreate assigns a UUID when the caller did not.
func (i *Item) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// Ref returns the lookup view of the item.
func (i Item) Ref() importer.ItemRef {
	return importer.ItemRef{ID: importer.ItemID(i.ID), SKU: i.SKU, Name: i.Name}
}

// TagList returns the tags as a list.
func (i Item) TagList() []string {
	return utils.SplitList(i.Tags, importer.TagDelimiter)
}

// FromFields builds a new item from imported fields. Active defaults to true.
func FromFields(f importer.Fields) Item {
	item := Item{
		SKU:          utils.ToString(f[importer.FieldSKU]),
		Name:         utils.ToString(f[importer.FieldName]),
		Category:     utils.ToString(f[importer.FieldCategory]),
		Subcategory:  utils.ToString(f[importer.FieldSubcategory]),
		Supplier:     utils.ToString(f[importer.FieldSupplier]),
		Location:     utils.ToString(f[importer.FieldLocation]),
		Description:  utils.ToString(f[importer.FieldDescription]),
		Unit:         utils.ToString(f[importer.FieldUnit]),
		Barcode:      utils.ToString(f[importer.FieldBarcode]),
		Color:        utils.ToString(f[importer.FieldColor]),
		Material:     utils.ToString(f[importer.FieldMaterial]),
		Notes:        utils.ToString(f[importer.FieldNotes]),
		Quantity:     utils.ToInt(f[importer.FieldQuantity]),
		ReorderPoint: utils.ToInt(f[importer.FieldReorderPoint]),
		CostPrice:    utils.ToFloat(f[importer.FieldCostPrice]),
		SellingPrice: utils.ToFloat(f[importer.FieldSellingPrice]),
		Width:        utils.ToFloat(f[importer.FieldWidth]),
		Height:       utils.ToFloat(f[importer.FieldHeight]),
		Length:       utils.ToFloat(f[importer.FieldLength]),
		MarkupRatio:  utils.ToFloat(f[importer.FieldMarkupRatio]),
		TaxRate:      utils.ToFloat(f[importer.FieldTaxRate]),
		DiscountRate: utils.ToFloat(f[importer.FieldDiscountRate]),
		Active:       true,
		Tags:         utils.JoinList(f[importer.FieldTags], importer.TagDelimiter),
	}
	if v, ok := f[importer.FieldActive]; ok {
		item.Active = utils.ToBool(v)
	}
	return item
}

// Columns converts imported fields to an update map keyed by column name.
// Fields outside the schema are ignored, so absent fields never overwrite stored values.
func Columns(f importer.Fields) map[string]any {
	cols := make(map[string]any, len(f))
	for name, v := range f {
		spec, ok := importer.LookupField(name)
		if !ok {
			continue
		}
		switch spec.Kind {
		case importer.KindInt:
			cols[name] = utils.ToInt(v)
		case importer.KindFloat:
			cols[name] = utils.ToFloat(v)
		case importer.KindBool:
			cols[name] = utils.ToBool(v)
		case importer.KindList:
			cols[name] = utils.JoinList(v, importer.TagDelimiter)
		default:
			cols[name] = utils.ToString(v)
		}
	}
	return cols
}

// ColumnNames lists the columns the store relies on.
func ColumnNames() []string {
	names := []string{"id"}
	for _, spec := range importer.Schema {
		names = append(names, spec.Name)
	}
	return append(names, "created_at", "updated_at")
}
