package source

import (
	"context"
	"fmt"
	"time"

	"crimestats/internal/metrics"
	"crimestats/internal/store"
)

// RowLister is implemented by *db.DB.
type RowLister interface {
	ListCrimeRows(ctx context.Context) ([]store.RawRow, error)
}

// Postgres reads the crime_records table on every fetch.
type Postgres struct {
	db RowLister
}

// NewPostgres creates a database-backed source.
func NewPostgres(db RowLister) *Postgres {
	return &Postgres{db: db}
}

// Name implements Source.
func (p *Postgres) Name() string { return "postgres" }

// Fetch implements Source.
func (p *Postgres) Fetch(ctx context.Context) (rows []store.RawRow, err error) {
	start := time.Now()
	defer func() { metrics.ObserveFetch(p.Name(), start, err) }()

	rows, err = p.db.ListCrimeRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrLoad, err)
	}
	return rows, nil
}
