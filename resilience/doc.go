// Package resilience runs operations with bounded concurrency, a per-attempt
// deadline and classified retries.
//
// An Executor combines three concerns around a caller-supplied operation:
//
//   - Admission: every attempt holds a slot of a shared gate.Gate for exactly
//     as long as the attempt runs. The slot is released on every exit path,
//     including timeouts.
//
//   - Timeout: each attempt races the operation against RetryPolicy.Timeout.
//     When the timer wins the attempt fails with ErrTimeout and the slot is
//     released at once, even if the operation is still running.
//
//   - Retry: failures are classified. Fatal errors are returned on first
//     occurrence. Transient and stale-session errors are retried with linear
//     backoff (BaseDelay * attempt) until MaxAttempts is reached. Before a
//     stale-session retry the recover hook runs to clear shared client state.
//
// Errors are never wrapped or renamed: the caller sees either the
// operation's value or the last error the operation produced.
//
// # Usage
//
//	g := gate.New(10)
//	exec := resilience.NewExecutor(g,
//	    resilience.WithPolicy(resilience.RetryPolicy{
//	        MaxAttempts: 3,
//	        BaseDelay:   time.Second,
//	        Timeout:     30 * time.Second,
//	    }),
//	    resilience.WithRecover(func(ctx context.Context, err error) error {
//	        return client.Reconnect(ctx)
//	    }),
//	)
//
//	rows, err := resilience.Do(ctx, exec, func(ctx context.Context) ([]Row, error) {
//	    return client.List(ctx)
//	})
package resilience
