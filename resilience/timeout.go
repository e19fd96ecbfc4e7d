package resilience

import (
	"context"
	"time"
)

type outcome[T any] struct {
	value T
	err   error
}

// runWithTimeout races op against timeout.
//
// op runs in its own goroutine with a context that expires at the deadline.
// When the deadline wins, runWithTimeout returns ErrTimeout without waiting
// for op; the goroutine finishes on its own and its result is dropped.
// Cancellation of the parent context is reported as the parent's error.
func runWithTimeout[T any](ctx context.Context, timeout time.Duration, op func(context.Context) (T, error)) (T, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan outcome[T], 1)
	go func() {
		v, err := op(attemptCtx)
		done <- outcome[T]{value: v, err: err}
	}()

	select {
	case res := <-done:
		return res.value, res.err
	case <-attemptCtx.Done():
		var zero T
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		return zero, ErrTimeout
	}
}

// WithTimeout runs op with a deadline and no admission or retry.
func WithTimeout(ctx context.Context, timeout time.Duration, op func(context.Context) error) error {
	if op == nil {
		return ErrNilOperation
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	_, err := runWithTimeout(ctx, timeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}
