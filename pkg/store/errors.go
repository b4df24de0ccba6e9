package store

import "errors"

var (
	// ErrNotFound is returned when a task or message lookup finds no row.
	ErrNotFound = errors.New("store: not found")

	// ErrFailedToQuery is returned when a query against the pool fails.
	ErrFailedToQuery = errors.New("store: query failed")

	// ErrFailedToScan is returned when a row cannot be decoded into its model.
	ErrFailedToScan = errors.New("store: scan failed")

	// ErrFailedToMarshal is returned when a JSONB column value cannot be encoded.
	ErrFailedToMarshal = errors.New("store: marshal failed")
)
