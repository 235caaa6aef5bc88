package domain

import "errors"

// Fatal error kinds. All three abort the run before any output is
// written; callers wrap them with feed-specific context via %w.
var (
	// ErrSchemaMismatch means a feed's header row did not match the
	// expected column contract.
	ErrSchemaMismatch = errors.New("feed schema mismatch")

	// ErrFetchFailure means a feed could not be retrieved (network error
	// or non-success HTTP status).
	ErrFetchFailure = errors.New("feed fetch failure")

	// ErrInsufficientData means a feed returned fewer rows or regions
	// than the sanity-check minimum, indicating a truncated or empty
	// upstream response.
	ErrInsufficientData = errors.New("insufficient feed data")
)
