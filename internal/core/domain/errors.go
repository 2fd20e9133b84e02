package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrIngestionFailed indicates a warm-up operation could not populate
	// the index. The source stays un-ensured and a later call retries.
	ErrIngestionFailed = errors.New("ingestion failed")

	// ErrAnswererUnavailable indicates no language model is configured.
	// The chat route still returns sources; only the answer is disabled.
	ErrAnswererUnavailable = errors.New("answerer unavailable")
)
