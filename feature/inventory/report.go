package inventory

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"inventory-import/core/importer"
)

// reportHeader is the first line of an error report.
var reportHeader = []string{"row", "message"}

// BuildReport renders row errors as CSV. Job-level entries keep row 0.
func BuildReport(errs []importer.RowError) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(reportHeader); err != nil {
		return nil, err
	}
	for _, e := range errs {
		if err := w.Write([]string{strconv.Itoa(e.Row), e.Message}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
