package resilience

import "errors"

// Sentinel errors for resilience operations.
var (
	// ErrTimeout is returned when an attempt outlives RetryPolicy.Timeout.
	ErrTimeout = errors.New("resilience: operation timeout")

	// ErrNilOperation is returned when Do or Execute is given a nil operation.
	ErrNilOperation = errors.New("resilience: operation is nil")
)
