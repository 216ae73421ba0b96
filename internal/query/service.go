// Package query binds a dataset source and the boundary template into the six
// dashboard operations. Every call loads a fresh snapshot; nothing is shared
// between requests except the read-only template.
package query

import (
	"context"
	"time"

	"crimestats/internal/engine"
	"crimestats/internal/geo"
	"crimestats/internal/metrics"
	"crimestats/internal/models"
	"crimestats/internal/source"
	"crimestats/internal/store"
)

// Operation names, used as metric labels.
const (
	OpHeatmap      = "heatmap"
	OpTrends       = "trends"
	OpFilters      = "filters"
	OpDistricts    = "most_districts"
	OpDistribution = "distribution"
	OpRateChange   = "rate_change"
)

// Service answers dashboard queries.
type Service struct {
	src      source.Source
	template *geo.Template
}

// NewService creates a service. template is only read.
func NewService(src source.Source, template *geo.Template) *Service {
	return &Service{src: src, template: template}
}

// HeatmapParams filters the heatmap. Nil/empty means no restriction.
type HeatmapParams struct {
	Year *int
	Type string
}

// TrendsParams filters the trend series.
type TrendsParams struct {
	State string
	Type  string
}

// DistrictsParams selects the district breakdown. Both fields are required.
type DistrictsParams struct {
	Year  int
	State string
}

// DistributionParams filters the type distribution.
type DistributionParams struct {
	Year  *int
	Type  string
	State string
}

// Heatmap returns the template enriched with per-state totals.
func (s *Service) Heatmap(ctx context.Context, p HeatmapParams) (out *geo.Collection, err error) {
	defer observe(OpHeatmap, time.Now(), &err)

	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	totals, err := engine.StateTotals(snap, engine.Filters{Year: p.Year, Type: p.Type})
	if err != nil {
		return nil, err
	}
	return geo.Enrich(s.template, totals), nil
}

// Trends returns totals per date, ascending.
func (s *Service) Trends(ctx context.Context, p TrendsParams) (out []models.DateTotal, err error) {
	defer observe(OpTrends, time.Now(), &err)

	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return engine.AggregateByDate(engine.Apply(snap, engine.Filters{State: p.State, Type: p.Type})), nil
}

// Filters returns the distinct states and types.
func (s *Service) Filters(ctx context.Context) (out models.FilterOptions, err error) {
	defer observe(OpFilters, time.Now(), &err)

	snap, err := s.snapshot(ctx)
	if err != nil {
		return models.FilterOptions{}, err
	}
	return engine.Catalog(snap), nil
}

// MostDistricts returns the district by type pivot for one state and year.
func (s *Service) MostDistricts(ctx context.Context, p DistrictsParams) (out []models.DistrictRow, err error) {
	defer observe(OpDistricts, time.Now(), &err)

	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	year := p.Year
	return engine.PivotDistrictByType(engine.Apply(snap, engine.Filters{Year: &year, State: p.State}))
}

// Distribution returns totals per crime type.
func (s *Service) Distribution(ctx context.Context, p DistributionParams) (out []models.TypeTotal, err error) {
	defer observe(OpDistribution, time.Now(), &err)

	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return engine.AggregateByType(engine.Apply(snap, engine.Filters{Year: p.Year, State: p.State, Type: p.Type})), nil
}

// RateChange returns the year over year series for state, or for all states
// when state is empty.
func (s *Service) RateChange(ctx context.Context, state string) (out []models.YearChange, err error) {
	defer observe(OpRateChange, time.Now(), &err)

	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return engine.PercentChangeByYear(snap, state)
}

// TemplateFeatures reports the size of the loaded template.
func (s *Service) TemplateFeatures() int {
	return s.template.Len()
}

func (s *Service) snapshot(ctx context.Context) (*store.Snapshot, error) {
	return source.Load(ctx, s.src)
}

func observe(op string, start time.Time, err *error) {
	metrics.ObserveQuery(op, start, *err)
}
