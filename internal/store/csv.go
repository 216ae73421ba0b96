package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// RawRow is one dataset row before normalization. Every column is kept as text.
type RawRow struct {
	Date     string `json:"date"`
	State    string `json:"state"`
	District string `json:"district"`
	Type     string `json:"type"`
	Crimes   string `json:"crimes"`
}

// Columns lists the required dataset columns in canonical order.
var Columns = []string{"date", "state", "district", "type", "crimes"}

// ReadCSV reads a headed CSV stream into raw rows. Header names are matched
// case-insensitively; columns beyond the required set are ignored.
func ReadCSV(r io.Reader) ([]RawRow, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty dataset", ErrLoad)
		}
		return nil, fmt.Errorf("%w: failed to read CSV header: %v", ErrLoad, err)
	}

	index := make(map[string]int, len(Columns))
	for i, h := range headers {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, seen := index[key]; !seen {
			index[key] = i
		}
	}
	for _, col := range Columns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrLoad, col)
		}
	}

	var rows []RawRow
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrLoad, line, err)
		}

		field := func(col string) string {
			i := index[col]
			if i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		rows = append(rows, RawRow{
			Date:     field("date"),
			State:    field("state"),
			District: field("district"),
			Type:     field("type"),
			Crimes:   field("crimes"),
		})
	}

	return rows, nil
}
