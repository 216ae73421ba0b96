// Package engine answers the dashboard's analytical queries over a dataset
// snapshot. Every function is pure: it reads a *store.Snapshot and returns a new
// derived value without modifying its input, so any number of requests can run
// it in parallel without coordination.
package engine
