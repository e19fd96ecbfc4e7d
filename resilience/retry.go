package resilience

import (
	"context"
	"math"
	"time"
)

// BackoffStrategy defines how delays grow between retries.
type BackoffStrategy int

const (
	// BackoffLinear waits BaseDelay * attempt.
	BackoffLinear BackoffStrategy = iota
	// BackoffExponential waits BaseDelay * 2^(attempt-1).
	BackoffExponential
)

// String returns the string representation of the strategy.
func (s BackoffStrategy) String() string {
	switch s {
	case BackoffLinear:
		return "linear"
	case BackoffExponential:
		return "exponential"
	default:
		return "unknown"
	}
}

// Policy defaults.
const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = time.Second
	DefaultTimeout     = 30 * time.Second
)

// RetryPolicy configures attempts, backoff and the per-attempt deadline.
type RetryPolicy struct {
	// MaxAttempts is the maximum number of attempts (including the first).
	// Default: 3
	MaxAttempts int

	// BaseDelay is the backoff unit.
	// Default: 1s
	BaseDelay time.Duration

	// Timeout bounds each attempt.
	// Default: 30s
	Timeout time.Duration

	// Backoff is the delay growth strategy.
	// Default: BackoffLinear
	Backoff BackoffStrategy

	// MaxDelay caps the delay between attempts. Zero means uncapped.
	MaxDelay time.Duration
}

// DefaultPolicy returns the policy used when none is configured.
func DefaultPolicy() RetryPolicy {
	return RetryPolicy{}.withDefaults()
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultBaseDelay
	}
	if p.Timeout <= 0 {
		p.Timeout = DefaultTimeout
	}
	return p
}

// longestDelay is where growing delays saturate instead of overflowing.
const longestDelay = time.Duration(math.MaxInt64)

// Delay returns the wait after the given failed attempt (1-based).
// Delays that would overflow saturate before MaxDelay is applied.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	var delay time.Duration
	switch p.Backoff {
	case BackoffExponential:
		shift := attempt - 1
		if shift >= 63 || p.BaseDelay > longestDelay>>shift {
			delay = longestDelay
		} else {
			delay = p.BaseDelay << shift
		}
	default:
		if p.BaseDelay > longestDelay/time.Duration(attempt) {
			delay = longestDelay
		} else {
			delay = p.BaseDelay * time.Duration(attempt)
		}
	}

	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay
}

// CallOption overrides the executor policy for a single call.
type CallOption func(*RetryPolicy)

// MaxAttempts overrides RetryPolicy.MaxAttempts.
func MaxAttempts(n int) CallOption {
	return func(p *RetryPolicy) { p.MaxAttempts = n }
}

// BaseDelay overrides RetryPolicy.BaseDelay.
func BaseDelay(d time.Duration) CallOption {
	return func(p *RetryPolicy) { p.BaseDelay = d }
}

// AttemptTimeout overrides RetryPolicy.Timeout.
func AttemptTimeout(d time.Duration) CallOption {
	return func(p *RetryPolicy) { p.Timeout = d }
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
