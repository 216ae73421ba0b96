package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestCrimeRecord_Year(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want int
	}{
		{"first day", time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC), 2016},
		{"last day", time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), 2023},
		{"zero date", time.Time{}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := CrimeRecord{Date: tt.date}
			if got := r.Year(); got != tt.want {
				t.Errorf("Year() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCrimeRecord_Aggregates(t *testing.T) {
	tests := []struct {
		name       string
		record     CrimeRecord
		stateTotal bool
		allTypes   bool
	}{
		{"state total all types", CrimeRecord{District: "All", Type: "All"}, true, true},
		{"state total one type", CrimeRecord{District: "All", Type: "theft"}, true, false},
		{"district all types", CrimeRecord{District: "Johor Bahru", Type: "All"}, false, true},
		{"granular", CrimeRecord{District: "Johor Bahru", Type: "theft"}, false, false},
		{"lowercase all is not aggregate", CrimeRecord{District: "all", Type: "all"}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.record.IsStateTotal(); got != tt.stateTotal {
				t.Errorf("IsStateTotal() = %v, want %v", got, tt.stateTotal)
			}
			if got := tt.record.IsAllTypes(); got != tt.allTypes {
				t.Errorf("IsAllTypes() = %v, want %v", got, tt.allTypes)
			}
		})
	}
}

func TestDistrictRow_MarshalJSON(t *testing.T) {
	row := DistrictRow{
		District: "d1",
		Counts:   map[string]int64{"theft": 5, "assault": 3},
	}

	got, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"district":"d1","assault":3,"theft":5}`
	if string(got) != want {
		t.Errorf("Marshal() = %s, want %s", got, want)
	}
	if row.Total() != 8 {
		t.Errorf("Total() = %d, want 8", row.Total())
	}
}

func TestDistrictRow_MarshalJSONRejectsDistrictColumn(t *testing.T) {
	row := DistrictRow{
		District: "d1",
		Counts:   map[string]int64{DistrictKey: 4},
	}
	if got, err := json.Marshal(row); err == nil {
		t.Errorf("Marshal() = %s, want error", got)
	}
}

func TestDateTotal_MarshalJSON(t *testing.T) {
	d := DateTotal{Date: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), Crimes: 42}

	got, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"date":"2020-01-01","crimes":42}`
	if string(got) != want {
		t.Errorf("Marshal() = %s, want %s", got, want)
	}
}
