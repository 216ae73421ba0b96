package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// DateTotal is one point of the trends series.
type DateTotal struct {
	Date   time.Time
	Crimes int64
}

// MarshalJSON renders the date as YYYY-MM-DD.
func (d DateTotal) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date   string `json:"date"`
		Crimes int64  `json:"crimes"`
	}{Date: d.Date.Format(DateLayout), Crimes: d.Crimes})
}

// TypeTotal is one slice of the crime distribution.
type TypeTotal struct {
	Type   string `json:"type"`
	Crimes int64  `json:"crimes"`
}

// YearChange is one year of the year-over-year series.
type YearChange struct {
	Year          int     `json:"year"`
	Crimes        int64   `json:"crimes"`
	PercentChange float64 `json:"percent_change"`
}

// DistrictKey is the JSON key of the district name in a DistrictRow. No type
// column may share it.
const DistrictKey = "district"

// DistrictRow is one row of the district x type pivot. Counts holds a cell for
// every type column of the pivot, zero-filled.
type DistrictRow struct {
	District string
	Counts   map[string]int64
}

// Total sums every cell of the row.
func (r DistrictRow) Total() int64 {
	var total int64
	for _, n := range r.Counts {
		total += n
	}
	return total
}

// MarshalJSON flattens the row into {"district": ..., "<type>": n, ...} with the
// type columns in ascending order.
func (r DistrictRow) MarshalJSON() ([]byte, error) {
	types := make([]string, 0, len(r.Counts))
	for t := range r.Counts {
		types = append(types, t)
	}
	sort.Strings(types)

	var buf bytes.Buffer
	buf.WriteString(`{"` + DistrictKey + `":`)
	name, err := json.Marshal(r.District)
	if err != nil {
		return nil, err
	}
	buf.Write(name)
	for _, t := range types {
		if t == DistrictKey {
			return nil, fmt.Errorf("type column %q collides with the district key", t)
		}
		key, err := json.Marshal(t)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		val, _ := json.Marshal(r.Counts[t])
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// FilterOptions lists the values available to the dashboard filter controls.
type FilterOptions struct {
	States []string `json:"states"`
	Types  []string `json:"types"`
}

// TokenResponse is returned by the login endpoints.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
}

// HealthResponse reports process liveness.
type HealthResponse struct {
	Status           string `json:"status"`
	TemplateFeatures int    `json:"template_features"`
}
