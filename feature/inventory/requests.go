package inventory

import (
	"errors"
	"regexp"

	"inventory-import/core/importer"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var objectKeyRegex = regexp.MustCompile(`^[^\s].*\.csv$`)

// validMode accepts anything importer.ParseMode accepts.
var validMode = validation.By(func(value any) error {
	s, _ := value.(string)
	if _, err := importer.ParseMode(s); err != nil {
		return errors.New("must be one of create, update_by_sku, upsert")
	}
	return nil
})

// UploadRequest describes a CSV upload.
type UploadRequest struct {
	Mode string `json:"mode"`
	Size int    `json:"size"`
}

// Validate checks the mode and the body size against max bytes.
func (r UploadRequest) Validate(max int) error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Mode, validation.Required.Error("mode is required"), validMode),
		validation.Field(&r.Size,
			validation.Required.Error("file is empty"),
			validation.Max(max).Error("file is too large"),
		),
	)
}

// ObjectImportRequest asks to import a CSV object from the bucket.
type ObjectImportRequest struct {
	Object string `json:"object"`
	Mode   string `json:"mode"`
}

// Validate checks the object key and mode.
func (r ObjectImportRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Object,
			validation.Required.Error("object is required"),
			validation.Length(1, 1024),
			validation.Match(objectKeyRegex).Error("object must be a .csv key"),
		),
		validation.Field(&r.Mode, validation.Required.Error("mode is required"), validMode),
	)
}
