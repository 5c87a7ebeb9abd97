package importer

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"inventory-import/core/utils"
)

// Canonical field names.
const (
	FieldName         = "name"
	FieldSKU          = "sku"
	FieldCategory     = "category"
	FieldSubcategory  = "subcategory"
	FieldSupplier     = "supplier"
	FieldLocation     = "location"
	FieldDescription  = "description"
	FieldUnit         = "unit"
	FieldBarcode      = "barcode"
	FieldColor        = "color"
	FieldMaterial     = "material"
	FieldNotes        = "notes"
	FieldQuantity     = "quantity"
	FieldReorderPoint = "reorder_point"
	FieldCostPrice    = "cost_price"
	FieldSellingPrice = "selling_price"
	FieldWidth        = "width"
	FieldHeight       = "height"
	FieldLength       = "length"
	FieldMarkupRatio  = "markup_ratio"
	FieldTaxRate      = "tax_rate"
	FieldDiscountRate = "discount_rate"
	FieldActive       = "active"
	FieldTags         = "tags"
)

// TagDelimiter separates entries of the tags list inside a single cell.
// A comma cannot be used because cells are split on commas without quoting.
const TagDelimiter = ";"

// MissingIdentityMessage is the row error for records with neither name nor sku.
const MissingIdentityMessage = "Missing name or sku"

// FieldKind is the expected data type for a CSV column.
type FieldKind int

const (
	KindString FieldKind = iota
	KindInt
	KindFloat
	KindBool
	KindList
)

func (k FieldKind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	default:
		return "string"
	}
}

// FieldSpec defines how one canonical field is coerced.
type FieldSpec struct {
	Name     string
	Kind     FieldKind
	Identity bool // name or sku
	Required bool // a failed coercion invalidates the record instead of dropping the field
}

// Schema is the fixed allow-list of importable fields.
var Schema = []FieldSpec{
	{Name: FieldName, Kind: KindString, Identity: true},
	{Name: FieldSKU, Kind: KindString, Identity: true},
	{Name: FieldCategory, Kind: KindString},
	{Name: FieldSubcategory, Kind: KindString},
	{Name: FieldSupplier, Kind: KindString},
	{Name: FieldLocation, Kind: KindString},
	{Name: FieldDescription, Kind: KindString},
	{Name: FieldUnit, Kind: KindString},
	{Name: FieldBarcode, Kind: KindString},
	{Name: FieldColor, Kind: KindString},
	{Name: FieldMaterial, Kind: KindString},
	{Name: FieldNotes, Kind: KindString},
	{Name: FieldQuantity, Kind: KindInt},
	{Name: FieldReorderPoint, Kind: KindInt},
	{Name: FieldCostPrice, Kind: KindFloat},
	{Name: FieldSellingPrice, Kind: KindFloat},
	{Name: FieldWidth, Kind: KindFloat},
	{Name: FieldHeight, Kind: KindFloat},
	{Name: FieldLength, Kind: KindFloat},
	{Name: FieldMarkupRatio, Kind: KindFloat},
	{Name: FieldTaxRate, Kind: KindFloat},
	{Name: FieldDiscountRate, Kind: KindFloat},
	{Name: FieldActive, Kind: KindBool},
	{Name: FieldTags, Kind: KindList},
}

var schemaByName = func() map[string]FieldSpec {
	m := make(map[string]FieldSpec, len(Schema))
	for _, spec := range Schema {
		m[spec.Name] = spec
	}
	return m
}()

// LookupField returns the definition of a canonical field.
func LookupField(name string) (FieldSpec, bool) {
	spec, ok := schemaByName[name]
	return spec, ok
}

// Column binds a CSV column position to the schema entry it feeds.
type Column struct {
	Pos  int
	Spec FieldSpec
}

// HeaderIndex lists the recognised columns in header order.
// Columns that match no known field are absent and get dropped.
type HeaderIndex []Column

// NewHeaderIndex resolves headers against the schema once per file.
// When a field appears twice the first column wins.
func NewHeaderIndex(headers []string) HeaderIndex {
	idx := make(HeaderIndex, 0, len(headers))
	seen := make(map[string]bool, len(headers))
	for i, h := range headers {
		spec, ok := schemaByName[normalizeKey(h)]
		if !ok || seen[spec.Name] {
			continue
		}
		seen[spec.Name] = true
		idx = append(idx, Column{Pos: i, Spec: spec})
	}
	return idx
}

// Fields returns the canonical names of the recognised columns.
func (idx HeaderIndex) Fields() []string {
	names := make([]string, len(idx))
	for i, col := range idx {
		names[i] = col.Spec.Name
	}
	return names
}

// ToCandidate applies the schema to one data row.
func ToCandidate(headers []string, row []string, rowNumber int) CandidateRecord {
	return NewHeaderIndex(headers).Candidate(row, rowNumber)
}

// Candidate builds a typed record from a data row.
func (idx HeaderIndex) Candidate(row []string, rowNumber int) CandidateRecord {
	rec := CandidateRecord{RowNumber: rowNumber, Fields: make(Fields)}

	for _, col := range idx {
		if col.Pos >= len(row) {
			continue
		}
		spec := col.Spec
		raw := strings.TrimSpace(row[col.Pos])
		if raw == "" {
			continue
		}
		val, err := coerce(spec.Kind, raw)
		if err != nil {
			if (spec.Required || spec.Identity) && rec.Invalid == "" {
				rec.Invalid = fmt.Sprintf("invalid %s %q", spec.Name, raw)
			}
			continue
		}
		rec.Fields[spec.Name] = val
	}

	if rec.Invalid == "" && rec.SKU() == "" && rec.Name() == "" {
		rec.Invalid = MissingIdentityMessage
	}
	return rec
}

func coerce(kind FieldKind, raw string) (any, error) {
	switch kind {
	case KindInt:
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return n, nil
		}
		// "12.0" is accepted when it is integral.
		// int64(f) is platform dependent outside [-2^63, 2^63).
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || f < -(1<<63) || f >= 1<<63 || f != math.Trunc(f) {
			return nil, fmt.Errorf("not an integer: %q", raw)
		}
		return int64(f), nil
	case KindFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("not a finite number: %q", raw)
		}
		return f, nil
	case KindBool:
		return strings.EqualFold(raw, "true"), nil
	case KindList:
		return utils.SplitList(raw, TagDelimiter), nil
	default:
		return raw, nil
	}
}

// normalizeKey turns "Cost Price" or "cost-price" into "cost_price".
func normalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}
