package engine

import (
	"crimestats/internal/models"
	"crimestats/internal/store"
)

// Filters holds the optional AND-combined restrictions of a query. A nil Year
// or an empty string means no restriction on that dimension.
type Filters struct {
	Year  *int
	State string
	Type  string
}

// IsEmpty reports whether no restriction is set.
func (f Filters) IsEmpty() bool {
	return f.Year == nil && f.State == "" && f.Type == ""
}

func (f Filters) match(r models.CrimeRecord) bool {
	if f.Year != nil && r.Year() != *f.Year {
		return false
	}
	if f.State != "" && r.State != f.State {
		return false
	}
	if f.Type != "" && r.Type != f.Type {
		return false
	}
	return true
}

// Apply returns the records matching every set filter in a single pass.
func Apply(s *store.Snapshot, f Filters) *store.Snapshot {
	if f.IsEmpty() {
		return s
	}
	return s.Where(f.match)
}

// FilterByYear keeps records whose year equals year.
func FilterByYear(s *store.Snapshot, year int) *store.Snapshot {
	return s.Where(func(r models.CrimeRecord) bool { return r.Year() == year })
}

// FilterByState keeps records of one state. An empty state keeps everything.
func FilterByState(s *store.Snapshot, state string) *store.Snapshot {
	if state == "" {
		return s
	}
	return s.Where(func(r models.CrimeRecord) bool { return r.State == state })
}

// FilterByType keeps records of one crime type. An empty type keeps everything.
func FilterByType(s *store.Snapshot, crimeType string) *store.Snapshot {
	if crimeType == "" {
		return s
	}
	return s.Where(func(r models.CrimeRecord) bool { return r.Type == crimeType })
}

// FilterByDistrict keeps records of one district. Passing models.AllValue
// restricts the snapshot to state aggregate rows.
func FilterByDistrict(s *store.Snapshot, district string) *store.Snapshot {
	if district == "" {
		return s
	}
	return s.Where(func(r models.CrimeRecord) bool { return r.District == district })
}

// ExcludeDistrict drops records of one district. Excluding models.AllValue
// leaves only genuine sub-district rows.
func ExcludeDistrict(s *store.Snapshot, district string) *store.Snapshot {
	return s.Where(func(r models.CrimeRecord) bool { return r.District != district })
}

// ExcludeType drops records of one crime type.
func ExcludeType(s *store.Snapshot, crimeType string) *store.Snapshot {
	return s.Where(func(r models.CrimeRecord) bool { return r.Type != crimeType })
}
