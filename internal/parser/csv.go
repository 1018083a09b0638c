package parser

import (
	"encoding/csv"
	"io"
	"strings"
)

// CSVParser handles CSV exports of budget tables. Each record becomes one
// space-separated line so the same row patterns apply as for PDF text.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (string, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return "", &ExtractionError{Filename: filename, Err: err}
	}

	lines := make([]string, 0, len(records))
	for _, rec := range records {
		cells := make([]string, 0, len(rec))
		for _, cell := range rec {
			if cell = strings.TrimSpace(cell); cell != "" {
				cells = append(cells, cell)
			}
		}
		lines = append(lines, strings.Join(cells, " "))
	}
	return strings.Join(lines, "\n"), nil
}
