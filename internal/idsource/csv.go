package idsource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// CSVReader reads one column of a CSV export.
type CSVReader struct {
	Column int
	Header bool
}

// Read returns the non-empty cells of the configured column. Rows too short
// to have the column are an error; blank cells are skipped.
func (c *CSVReader) Read(r io.Reader) ([]Entry, error) {
	if c.Column < 0 {
		return nil, fmt.Errorf("invalid column %d", c.Column)
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var entries []Entry
	row := 0
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		if row == 1 && c.Header {
			continue
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		if c.Column >= len(record) {
			return nil, fmt.Errorf("row %d: column %d out of range (%d columns)", row, c.Column+1, len(record))
		}

		value := strings.TrimSpace(strings.TrimPrefix(record[c.Column], "\ufeff"))
		if value == "" {
			continue
		}
		entries = append(entries, Entry{Value: value, Location: fmt.Sprintf("row %d", row)})
	}
	return entries, nil
}
