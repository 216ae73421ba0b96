package query

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"crimestats/internal/engine"
	"crimestats/internal/geo"
	"crimestats/internal/models"
	"crimestats/internal/store"
	"crimestats/internal/testutil"
)

func newService(t *testing.T, rows []store.RawRow) *Service {
	t.Helper()
	tpl, err := geo.ParseTemplate(strings.NewReader(testutil.GeoTemplate))
	if err != nil {
		t.Fatalf("ParseTemplate() error = %v", err)
	}
	return NewService(&testutil.StaticSource{Rows: rows}, tpl)
}

func intPtr(v int) *int { return &v }

func TestHeatmap(t *testing.T) {
	svc := newService(t, testutil.CrimeRows())

	got, err := svc.Heatmap(context.Background(), HeatmapParams{Year: intPtr(2021), Type: models.AllValue})
	if err != nil {
		t.Fatalf("Heatmap() error = %v", err)
	}

	crimes := map[string]int64{}
	for _, f := range got.Features {
		crimes[f.Name] = f.Crimes
	}
	want := map[string]int64{"Selangor": 150, "Johor": 40, "Perak": 0}
	if diff := cmp.Diff(want, crimes); diff != "" {
		t.Errorf("Heatmap() crimes mismatch (-want +got):\n%s", diff)
	}
}

func TestHeatmap_AmbiguousWithoutType(t *testing.T) {
	svc := newService(t, testutil.CrimeRows())

	_, err := svc.Heatmap(context.Background(), HeatmapParams{Year: intPtr(2020)})
	if !errors.Is(err, engine.ErrAggregation) || !errors.Is(err, engine.ErrAmbiguousStateTotal) {
		t.Errorf("Heatmap() error = %v, want ErrAmbiguousStateTotal", err)
	}
}

func TestHeatmap_RepeatedCallsAreIndependent(t *testing.T) {
	svc := newService(t, testutil.CrimeRows())
	ctx := context.Background()

	a, err := svc.Heatmap(ctx, HeatmapParams{Year: intPtr(2021), Type: models.AllValue})
	if err != nil {
		t.Fatal(err)
	}
	first, _ := json.Marshal(a)
	a.Features[0].Crimes = 999

	b, _ := svc.Heatmap(ctx, HeatmapParams{Year: intPtr(2021), Type: models.AllValue})
	second, _ := json.Marshal(b)
	if string(first) != string(second) {
		t.Errorf("second heatmap differs:\n%s\n%s", first, second)
	}
}

func TestTrends(t *testing.T) {
	svc := newService(t, testutil.CrimeRows())

	got, err := svc.Trends(context.Background(), TrendsParams{State: "Selangor", Type: "theft"})
	if err != nil {
		t.Fatalf("Trends() error = %v", err)
	}
	if len(got) != 2 || got[0].Crimes != 125 || got[1].Crimes != 70 {
		t.Errorf("Trends() = %+v", got)
	}
	if !got[0].Date.Before(got[1].Date) {
		t.Error("Trends() not in ascending date order")
	}
}

func TestFilters(t *testing.T) {
	svc := newService(t, testutil.CrimeRows())

	got, err := svc.Filters(context.Background())
	if err != nil {
		t.Fatalf("Filters() error = %v", err)
	}
	want := models.FilterOptions{
		States: []string{"Selangor", "Johor"},
		Types:  []string{models.AllValue, "theft", "assault"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Filters() mismatch (-want +got):\n%s", diff)
	}
}

func TestMostDistricts(t *testing.T) {
	svc := newService(t, testutil.CrimeRows())

	got, err := svc.MostDistricts(context.Background(), DistrictsParams{Year: 2020, State: "Selangor"})
	if err != nil {
		t.Fatalf("MostDistricts() error = %v", err)
	}
	want := []models.DistrictRow{
		{District: "Petaling", Counts: map[string]int64{"assault": 3, "theft": 60}},
		{District: "Klang", Counts: map[string]int64{"assault": 0, "theft": 5}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("MostDistricts() mismatch (-want +got):\n%s", diff)
	}
}

func TestDistribution(t *testing.T) {
	svc := newService(t, testutil.CrimeRows())

	got, err := svc.Distribution(context.Background(), DistributionParams{Year: intPtr(2020), State: "Selangor"})
	if err != nil {
		t.Fatalf("Distribution() error = %v", err)
	}
	want := []models.TypeTotal{
		{Type: models.AllValue, Crimes: 100},
		{Type: "assault", Crimes: 3},
		{Type: "theft", Crimes: 125},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Distribution() mismatch (-want +got):\n%s", diff)
	}
}

func TestRateChange(t *testing.T) {
	svc := newService(t, testutil.CrimeRows())

	got, err := svc.RateChange(context.Background(), "Selangor")
	if err != nil {
		t.Fatalf("RateChange() error = %v", err)
	}
	want := []models.YearChange{{Year: 2021, Crimes: 220, PercentChange: 37.5}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("RateChange() mismatch (-want +got):\n%s", diff)
	}
}

func TestEmptyResultsAreNotErrors(t *testing.T) {
	svc := newService(t, testutil.CrimeRows())
	ctx := context.Background()

	trends, err := svc.Trends(ctx, TrendsParams{State: "Atlantis"})
	if err != nil || trends == nil || len(trends) != 0 {
		t.Errorf("Trends(unknown) = %v, %v", trends, err)
	}
	rows, err := svc.MostDistricts(ctx, DistrictsParams{Year: 1999, State: "Selangor"})
	if err != nil || rows == nil || len(rows) != 0 {
		t.Errorf("MostDistricts(1999) = %v, %v", rows, err)
	}
	heat, err := svc.Heatmap(ctx, HeatmapParams{Year: intPtr(1999)})
	if err != nil || len(heat.Features) != 3 {
		t.Errorf("Heatmap(1999) = %v, %v", heat, err)
	}
}

func TestLoadErrorPropagates(t *testing.T) {
	tpl, _ := geo.ParseTemplate(strings.NewReader(testutil.GeoTemplate))
	svc := NewService(&testutil.StaticSource{Err: store.ErrLoad}, tpl)

	if _, err := svc.Filters(context.Background()); !errors.Is(err, store.ErrLoad) {
		t.Errorf("Filters() error = %v, want ErrLoad", err)
	}
}
