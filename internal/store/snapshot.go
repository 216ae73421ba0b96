package store

import (
	"fmt"
	"strconv"
	"time"

	"crimestats/internal/models"
)

// dateLayouts are tried in order when parsing the date column.
var dateLayouts = []string{
	models.DateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
}

// Snapshot is an immutable, ordered view of the dataset taken when a query
// began. Operations derive new snapshots rather than modifying one.
type Snapshot struct {
	records []models.CrimeRecord
}

// NewSnapshot builds a snapshot over a private copy of records.
func NewSnapshot(records []models.CrimeRecord) *Snapshot {
	owned := make([]models.CrimeRecord, len(records))
	copy(owned, records)
	return &Snapshot{records: owned}
}

// Normalize converts raw rows into a snapshot of typed records. An unparseable
// date or a crimes value that is not a non-negative integer fails the whole load.
func Normalize(rows []RawRow) (*Snapshot, error) {
	records := make([]models.CrimeRecord, 0, len(rows))
	for i, row := range rows {
		rec, err := normalizeRow(row)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrLoad, i+1, err)
		}
		records = append(records, rec)
	}
	return &Snapshot{records: records}, nil
}

func normalizeRow(row RawRow) (models.CrimeRecord, error) {
	date, err := ParseDate(row.Date)
	if err != nil {
		return models.CrimeRecord{}, err
	}

	crimes, err := strconv.ParseInt(row.Crimes, 10, 64)
	if err != nil {
		return models.CrimeRecord{}, fmt.Errorf("invalid crimes %q", row.Crimes)
	}
	if crimes < 0 {
		return models.CrimeRecord{}, fmt.Errorf("negative crimes %d", crimes)
	}

	return models.CrimeRecord{
		Date:     date,
		State:    row.State,
		District: row.District,
		Type:     row.Type,
		Crimes:   crimes,
	}, nil
}

// ParseDate parses a dataset date string into a UTC calendar date.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// Len returns the number of records.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

// At returns the i-th record.
func (s *Snapshot) At(i int) models.CrimeRecord {
	return s.records[i]
}

// Records returns a copy of the records in order.
func (s *Snapshot) Records() []models.CrimeRecord {
	out := make([]models.CrimeRecord, s.Len())
	if s != nil {
		copy(out, s.records)
	}
	return out
}

// Where returns a new snapshot holding the records for which keep is true.
func (s *Snapshot) Where(keep func(models.CrimeRecord) bool) *Snapshot {
	out := make([]models.CrimeRecord, 0, s.Len()/2)
	for i := 0; i < s.Len(); i++ {
		if keep(s.records[i]) {
			out = append(out, s.records[i])
		}
	}
	return &Snapshot{records: out}
}
