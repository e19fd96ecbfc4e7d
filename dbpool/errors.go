package dbpool

import "errors"

var (
	// ErrNilClient is returned by New when no client is given.
	ErrNilClient = errors.New("dbpool: client is required")

	// ErrInvalidConfig wraps configuration validation failures.
	ErrInvalidConfig = errors.New("dbpool: invalid config")
)
