package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"crimestats/internal/models"
	"crimestats/internal/store"
)

// ListCrimeRows returns every stored record in insertion order, rendered as raw
// dataset rows so they pass through the same normalization as file input. An
// empty table yields an empty slice.
func (d *DB) ListCrimeRows(ctx context.Context) ([]store.RawRow, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT to_char(date, 'YYYY-MM-DD'), state, district, type, crimes::text
		FROM crime_records
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query crime records: %w", err)
	}
	defer rows.Close()

	out := make([]store.RawRow, 0)
	for rows.Next() {
		var r store.RawRow
		if err := rows.Scan(&r.Date, &r.State, &r.District, &r.Type, &r.Crimes); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// CountCrimeRecords returns the number of stored records.
func (d *DB) CountCrimeRecords(ctx context.Context) (int64, error) {
	var n int64
	err := d.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM crime_records`).Scan(&n)
	return n, err
}

// CopyCrimeRecords bulk-loads records with COPY and returns the number written.
func (d *DB) CopyCrimeRecords(ctx context.Context, records []models.CrimeRecord) (int64, error) {
	n, err := d.Pool.CopyFrom(ctx,
		pgx.Identifier{"crime_records"},
		[]string{"date", "state", "district", "type", "crimes"},
		pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
			r := records[i]
			return []any{r.Date, r.State, r.District, r.Type, r.Crimes}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to copy crime records: %w", err)
	}
	return n, nil
}

// ReplaceCrimeRecords truncates the table and loads records in one transaction.
func (d *DB) ReplaceCrimeRecords(ctx context.Context, records []models.CrimeRecord) (int64, error) {
	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `TRUNCATE crime_records RESTART IDENTITY`); err != nil {
		return 0, fmt.Errorf("failed to truncate crime records: %w", err)
	}

	n, err := tx.CopyFrom(ctx,
		pgx.Identifier{"crime_records"},
		[]string{"date", "state", "district", "type", "crimes"},
		pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
			r := records[i]
			return []any{r.Date, r.State, r.District, r.Type, r.Crimes}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to copy crime records: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return n, nil
}
