package engine

import (
	"crimestats/internal/models"
	"crimestats/internal/store"
)

// DistinctStates returns the non-empty states in first-appearance order.
func DistinctStates(s *store.Snapshot) []string {
	return distinct(s, func(r models.CrimeRecord) string { return r.State })
}

// DistinctTypes returns the non-empty crime types in first-appearance order.
func DistinctTypes(s *store.Snapshot) []string {
	return distinct(s, func(r models.CrimeRecord) string { return r.Type })
}

// Catalog collects the filter control values of a snapshot.
func Catalog(s *store.Snapshot) models.FilterOptions {
	return models.FilterOptions{
		States: DistinctStates(s),
		Types:  DistinctTypes(s),
	}
}

func distinct(s *store.Snapshot, key func(models.CrimeRecord) string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for i := 0; i < s.Len(); i++ {
		v := key(s.At(i))
		if v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
