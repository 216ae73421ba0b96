package store

import "errors"

// ErrLoad marks a dataset that is unreachable or malformed. It is fatal for the
// query that triggered the load.
var ErrLoad = errors.New("dataset load failed")
