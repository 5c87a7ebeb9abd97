package importer

import "strings"

const (
	cellDelimiter = ","
	quoteChar     = `"`
)

// Parse splits CSV text into a header and data rows.
//
// The dialect is deliberately simple: lines are split on commas, quote characters are
// stripped, and embedded delimiters are not supported. Blank lines are skipped.
// Use ParseLines when the physical line number of each row is needed.
func Parse(text string) ([]string, [][]string, error) {
	headers, lines, err := ParseLines(text)
	if err != nil {
		return nil, nil, err
	}
	rows := make([][]string, len(lines))
	for i, l := range lines {
		rows[i] = l.Cells
	}
	return headers, rows, nil
}

// Line is one data row with its 1-based physical line number.
type Line struct {
	Number int
	Cells  []string
}

// ParseLines is Parse that keeps track of where each row came from.
func ParseLines(text string) ([]string, []Line, error) {
	text = strings.TrimPrefix(text, "\ufeff")
	raw := strings.Split(text, "\n")

	var (
		headers []string
		lines   []Line
		seen    int
	)
	for i, l := range raw {
		l = strings.TrimSuffix(l, "\r")
		if strings.TrimSpace(l) == "" {
			continue
		}
		seen++
		cells := splitCells(l)
		if headers == nil {
			headers = cells
			continue
		}
		lines = append(lines, Line{Number: i + 1, Cells: cells})
	}

	if seen < 2 {
		reason := "expected a header and at least one data row"
		if seen == 0 {
			reason = "file is empty"
		}
		return nil, nil, &MalformedInputError{Lines: seen, Reason: reason}
	}
	return headers, lines, nil
}

// ParseRecords parses CSV text and applies the field schema to every data row.
func ParseRecords(text string) ([]CandidateRecord, error) {
	headers, lines, err := ParseLines(text)
	if err != nil {
		return nil, err
	}
	idx := NewHeaderIndex(headers)
	records := make([]CandidateRecord, len(lines))
	for i, l := range lines {
		records[i] = idx.Candidate(l.Cells, l.Number)
	}
	return records, nil
}

func splitCells(line string) []string {
	cells := strings.Split(line, cellDelimiter)
	for i, c := range cells {
		cells[i] = strings.TrimSpace(strings.ReplaceAll(c, quoteChar, ""))
	}
	return cells
}
