// Package source reads the raw crime dataset from a CSV file, an S3 object or
// the crime_records table, optionally through a shared cache.
package source

import (
	"context"
	"fmt"
	"os"
	"time"

	"crimestats/internal/metrics"
	"crimestats/internal/store"
)

// Source yields the full set of raw dataset rows.
type Source interface {
	Fetch(ctx context.Context) ([]store.RawRow, error)
	Name() string
}

// Load fetches rows from src and normalizes them into a fresh snapshot.
func Load(ctx context.Context, src Source) (*store.Snapshot, error) {
	rows, err := src.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	snap, err := store.Normalize(rows)
	if err != nil {
		return nil, err
	}
	metrics.SetSnapshotRecords(snap.Len())
	return snap, nil
}

// File reads a CSV file from the local filesystem on every fetch.
type File struct {
	Path string
}

// NewFile creates a file source.
func NewFile(path string) *File {
	return &File{Path: path}
}

// Name implements Source.
func (f *File) Name() string { return "file" }

// Fetch implements Source.
func (f *File) Fetch(ctx context.Context) (rows []store.RawRow, err error) {
	start := time.Now()
	defer func() { metrics.ObserveFetch(f.Name(), start, err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fh, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrLoad, err)
	}
	defer fh.Close()

	return store.ReadCSV(fh)
}
