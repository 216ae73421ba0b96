package models

import "time"

// AllValue marks an aggregate row: district "All" is a state total, type "All"
// is a total across crime categories.
const AllValue = "All"

// CrimeRecord is one normalized row of the incident dataset.
type CrimeRecord struct {
	Date     time.Time
	State    string
	District string
	Type     string
	Crimes   int64
}

// Year returns the calendar year of Date.
func (r CrimeRecord) Year() int {
	return r.Date.Year()
}

// IsStateTotal reports whether the record is a state-level aggregate row.
func (r CrimeRecord) IsStateTotal() bool {
	return r.District == AllValue
}

// IsAllTypes reports whether the record aggregates every crime category.
func (r CrimeRecord) IsAllTypes() bool {
	return r.Type == AllValue
}
