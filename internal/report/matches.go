// Package report renders the artifacts of a run: the identifier match
// table, the duplicates log, the walk audit log and the console summary.
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/harrison/mrncopy/internal/matcher"
	"github.com/harrison/mrncopy/internal/models"
)

// WriteMatchTable writes one CSV row per identifier: the identifier key
// followed by its matched paths. Identifiers without matches get a row with
// the key alone.
func WriteMatchTable(w io.Writer, matches *models.MatchMap) error {
	cw := csv.NewWriter(w)
	for _, key := range matches.Keys() {
		row := append([]string{key}, matches.Paths(key)...)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row for %s: %w", key, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadMatchTable parses a table written by WriteMatchTable, possibly edited
// by hand in between. Blank rows are skipped; a repeated identifier merges
// its paths into the first row's entry.
func ReadMatchTable(r io.Reader) (*models.MatchMap, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var ids []models.Identifier
	var rows [][]string
	line := 0
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		if strings.TrimSpace(record[0]) == "" {
			continue
		}
		id, err := matcher.ParseIdentifier(record[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		ids = append(ids, id)
		rows = append(rows, record)
	}

	matches := models.NewMatchMap(ids)
	for i, record := range rows {
		for _, p := range record[1:] {
			if p = strings.TrimSpace(p); p != "" {
				matches.Append(ids[i].Key, p)
			}
		}
	}
	return matches, nil
}
