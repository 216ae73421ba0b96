package engine

import (
	"fmt"
	"math"
	"sort"
	"time"

	"crimestats/internal/models"
	"crimestats/internal/store"
)

// AggregateByDate sums crimes per date, ascending by date.
func AggregateByDate(s *store.Snapshot) []models.DateTotal {
	sums := make(map[time.Time]int64)
	order := make([]time.Time, 0)
	for i := 0; i < s.Len(); i++ {
		r := s.At(i)
		if _, ok := sums[r.Date]; !ok {
			order = append(order, r.Date)
		}
		sums[r.Date] += r.Crimes
	}

	sort.SliceStable(order, func(i, j int) bool { return order[i].Before(order[j]) })

	out := make([]models.DateTotal, 0, len(order))
	for _, d := range order {
		out = append(out, models.DateTotal{Date: d, Crimes: sums[d]})
	}
	return out
}

// AggregateByType sums crimes per crime type, ascending by type name.
func AggregateByType(s *store.Snapshot) []models.TypeTotal {
	sums := make(map[string]int64)
	for i := 0; i < s.Len(); i++ {
		r := s.At(i)
		sums[r.Type] += r.Crimes
	}

	out := make([]models.TypeTotal, 0, len(sums))
	for t, n := range sums {
		out = append(out, models.TypeTotal{Type: t, Crimes: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// PivotDistrictByType reshapes granular rows (district and type both not "All")
// into one row per district with one zero-filled column per type. Rows are
// ordered by their total, descending; equal totals keep first-appearance order.
// A type named like models.DistrictKey is reported as ErrColumnCollision.
func PivotDistrictByType(s *store.Snapshot) ([]models.DistrictRow, error) {
	cells := make(map[string]map[string]int64)
	districts := make([]string, 0)
	types := make(map[string]struct{})

	for i := 0; i < s.Len(); i++ {
		r := s.At(i)
		if r.IsStateTotal() || r.IsAllTypes() {
			continue
		}
		if r.Type == models.DistrictKey {
			return nil, &aggregationError{
				cause:  ErrColumnCollision,
				detail: fmt.Sprintf("district %q", r.District),
			}
		}
		row, ok := cells[r.District]
		if !ok {
			row = make(map[string]int64)
			cells[r.District] = row
			districts = append(districts, r.District)
		}
		row[r.Type] += r.Crimes
		types[r.Type] = struct{}{}
	}

	rows := make([]models.DistrictRow, 0, len(districts))
	totals := make([]int64, 0, len(districts))
	for _, d := range districts {
		counts := make(map[string]int64, len(types))
		var total int64
		for t := range types {
			counts[t] = cells[d][t]
			total += cells[d][t]
		}
		rows = append(rows, models.DistrictRow{District: d, Counts: counts})
		totals = append(totals, total)
	}

	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return totals[idx[a]] > totals[idx[b]] })

	sorted := make([]models.DistrictRow, len(rows))
	for i, j := range idx {
		sorted[i] = rows[j]
	}
	return sorted, nil
}

// PercentChangeByYear sums state-level rows (district "All"), optionally for
// one state, per year and reports the change against the previous year. The
// first year has no baseline and is not emitted.
func PercentChangeByYear(s *store.Snapshot, state string) ([]models.YearChange, error) {
	s = FilterByState(FilterByDistrict(s, models.AllValue), state)

	sums := make(map[int]int64)
	years := make([]int, 0)
	for i := 0; i < s.Len(); i++ {
		r := s.At(i)
		y := r.Year()
		if _, ok := sums[y]; !ok {
			years = append(years, y)
		}
		sums[y] += r.Crimes
	}
	sort.Ints(years)

	out := make([]models.YearChange, 0, len(years))
	for i := 1; i < len(years); i++ {
		prev, cur := sums[years[i-1]], sums[years[i]]
		if prev == 0 {
			return nil, &aggregationError{
				cause:  ErrZeroBaseline,
				detail: fmt.Sprintf("year %d has no crimes to compare %d against", years[i-1], years[i]),
			}
		}
		out = append(out, models.YearChange{
			Year:          years[i],
			Crimes:        cur,
			PercentChange: RoundTo2(float64(cur-prev) / float64(prev) * 100),
		})
	}
	return out, nil
}

// StateTotals looks up the state-level crime count of every state after
// applying f. The lookup takes the single matching "All" district row per state;
// several matching rows are reported as ErrAmbiguousStateTotal rather than
// picked arbitrarily.
func StateTotals(s *store.Snapshot, f Filters) (map[string]int64, error) {
	s = Apply(FilterByDistrict(s, models.AllValue), f)

	totals := make(map[string]int64)
	for i := 0; i < s.Len(); i++ {
		r := s.At(i)
		if _, dup := totals[r.State]; dup {
			return nil, &aggregationError{
				cause:  ErrAmbiguousStateTotal,
				detail: fmt.Sprintf("state %q; narrow the query by year and type", r.State),
			}
		}
		totals[r.State] = r.Crimes
	}
	return totals, nil
}

// RoundTo2 rounds to 2 decimal places, halves away from zero.
func RoundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
