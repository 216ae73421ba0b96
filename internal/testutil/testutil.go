// Package testutil provides test utilities and helpers.
package testutil

import (
	"context"
	"os"
	"testing"

	"crimestats/internal/db"
	"crimestats/internal/store"
)

// GeoTemplate is a three-state boundary collection. Perak has no records in
// CrimeRows.
const GeoTemplate = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"name": "Selangor"}, "geometry": {"type": "Point", "coordinates": [101.5, 3.1]}},
    {"type": "Feature", "properties": {"name": "Johor"}, "geometry": {"type": "Point", "coordinates": [103.7, 1.5]}},
    {"type": "Feature", "properties": {"name": "Perak"}, "geometry": {"type": "Point", "coordinates": [101.1, 4.6]}}
  ]
}`

// CrimeRows returns a small dataset covering state totals, per-type state
// totals and district rows over two years.
func CrimeRows() []store.RawRow {
	return []store.RawRow{
		{Date: "2020-01-01", State: "Selangor", District: "All", Type: "All", Crimes: "100"},
		{Date: "2020-01-01", State: "Selangor", District: "All", Type: "theft", Crimes: "60"},
		{Date: "2020-01-01", State: "Selangor", District: "Petaling", Type: "theft", Crimes: "60"},
		{Date: "2020-01-01", State: "Selangor", District: "Petaling", Type: "assault", Crimes: "3"},
		{Date: "2020-01-01", State: "Selangor", District: "Klang", Type: "theft", Crimes: "5"},
		{Date: "2021-01-01", State: "Selangor", District: "All", Type: "All", Crimes: "150"},
		{Date: "2021-01-01", State: "Selangor", District: "All", Type: "theft", Crimes: "70"},
		{Date: "2021-01-01", State: "Johor", District: "All", Type: "All", Crimes: "40"},
	}
}

// CrimeCSV renders CrimeRows as a CSV document.
func CrimeCSV() string {
	out := "date,state,district,type,crimes\n"
	for _, r := range CrimeRows() {
		out += r.Date + "," + r.State + "," + r.District + "," + r.Type + "," + r.Crimes + "\n"
	}
	return out
}

// StaticSource serves fixed rows, or Err when set.
type StaticSource struct {
	Rows []store.RawRow
	Err  error
}

// Name implements source.Source.
func (s *StaticSource) Name() string { return "static" }

// Fetch implements source.Source.
func (s *StaticSource) Fetch(context.Context) ([]store.RawRow, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return append([]store.RawRow(nil), s.Rows...), nil
}

// TestDB creates a test database connection and returns a cleanup function.
// Skips the test unless TEST_DATABASE_URL is set.
func TestDB(t *testing.T) (*db.DB, func()) {
	t.Helper()

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("Skipping integration test: TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	database, err := db.New(ctx, connString)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	if err := database.RunMigrations(connString); err != nil {
		database.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	cleanup := func() {
		database.Pool.Exec(ctx, "TRUNCATE crime_records RESTART IDENTITY")
		database.Close()
	}

	return database, cleanup
}
