package engine

import "errors"

var (
	// ErrAggregation is the parent of every aggregation failure.
	ErrAggregation = errors.New("aggregation failed")

	// ErrZeroBaseline is returned when a percent change would divide by a
	// prior-year total of zero.
	ErrZeroBaseline = errors.New("prior-year total is zero")

	// ErrAmbiguousStateTotal is returned when more than one state-level row
	// matches a state after filtering.
	ErrAmbiguousStateTotal = errors.New("multiple state total rows match")

	// ErrColumnCollision is returned when a crime type would become a pivot
	// column named like the row's district key.
	ErrColumnCollision = errors.New("crime type collides with the district column")
)

// aggregationError tags a concrete cause as an ErrAggregation.
type aggregationError struct {
	cause  error
	detail string
}

func (e *aggregationError) Error() string {
	return e.cause.Error() + ": " + e.detail
}

func (e *aggregationError) Is(target error) bool {
	return target == ErrAggregation
}

func (e *aggregationError) Unwrap() error {
	return e.cause
}
