package resilience

import (
	"context"
	"math"
	"testing"
	"time"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()

	if p.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", p.MaxAttempts)
	}
	if p.BaseDelay != time.Second {
		t.Errorf("BaseDelay = %v, want 1s", p.BaseDelay)
	}
	if p.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", p.Timeout)
	}
	if p.Backoff != BackoffLinear {
		t.Errorf("Backoff = %v, want linear", p.Backoff)
	}
}

func TestRetryPolicy_Delay(t *testing.T) {
	t.Run("linear", func(t *testing.T) {
		p := RetryPolicy{BaseDelay: 10 * time.Millisecond}

		for attempt, want := range map[int]time.Duration{
			1: 10 * time.Millisecond,
			2: 20 * time.Millisecond,
			3: 30 * time.Millisecond,
		} {
			if got := p.Delay(attempt); got != want {
				t.Errorf("Delay(%d) = %v, want %v", attempt, got, want)
			}
		}
	})

	t.Run("exponential", func(t *testing.T) {
		p := RetryPolicy{BaseDelay: 10 * time.Millisecond, Backoff: BackoffExponential}

		// 10ms * 2^2
		if got := p.Delay(3); got != 40*time.Millisecond {
			t.Errorf("Delay(3) = %v, want 40ms", got)
		}
	})

	t.Run("max delay cap", func(t *testing.T) {
		p := RetryPolicy{BaseDelay: time.Second, MaxDelay: 2 * time.Second}

		if got := p.Delay(5); got != 2*time.Second {
			t.Errorf("Delay(5) = %v, want 2s", got)
		}
	})

	t.Run("attempt below one", func(t *testing.T) {
		p := RetryPolicy{BaseDelay: time.Second}

		if got := p.Delay(0); got != time.Second {
			t.Errorf("Delay(0) = %v, want 1s", got)
		}
	})
}

func TestRetryPolicy_DelaySaturates(t *testing.T) {
	tests := []struct {
		name   string
		policy RetryPolicy
		want   time.Duration
	}{
		{
			name:   "exponential capped",
			policy: RetryPolicy{BaseDelay: time.Second, Backoff: BackoffExponential, MaxDelay: time.Minute},
			want:   time.Minute,
		},
		{
			name:   "exponential uncapped",
			policy: RetryPolicy{BaseDelay: time.Second, Backoff: BackoffExponential},
			want:   longestDelay,
		},
		{
			name:   "linear capped",
			policy: RetryPolicy{BaseDelay: time.Duration(math.MaxInt64 / 2), MaxDelay: time.Hour},
			want:   time.Hour,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, attempt := range []int{35, 63, 64, 100, math.MaxInt32} {
				got := tt.policy.Delay(attempt)
				if got != tt.want {
					t.Errorf("Delay(%d) = %v, want %v", attempt, got, tt.want)
				}
			}
		})
	}

	p := RetryPolicy{BaseDelay: time.Second, Backoff: BackoffExponential, MaxDelay: time.Minute}
	if got := p.Delay(30); got != time.Minute {
		t.Errorf("Delay(30) = %v, want 1m", got)
	}
	prev := time.Duration(0)
	for attempt := 1; attempt <= 70; attempt++ {
		d := p.Delay(attempt)
		if d <= 0 || d < prev {
			t.Fatalf("Delay(%d) = %v after %v, want positive and non-decreasing", attempt, d, prev)
		}
		prev = d
	}
}

func TestRetryPolicy_DelayStrictlyIncreasing(t *testing.T) {
	for _, strategy := range []BackoffStrategy{BackoffLinear, BackoffExponential} {
		p := RetryPolicy{BaseDelay: time.Millisecond, Backoff: strategy}

		prev := time.Duration(0)
		for attempt := 1; attempt <= 6; attempt++ {
			d := p.Delay(attempt)
			if d <= prev {
				t.Errorf("%v: Delay(%d) = %v, not greater than %v", strategy, attempt, d, prev)
			}
			prev = d
		}
	}
}

func TestCallOptions(t *testing.T) {
	p := DefaultPolicy()
	for _, opt := range []CallOption{
		MaxAttempts(7),
		BaseDelay(5 * time.Millisecond),
		AttemptTimeout(time.Minute),
	} {
		opt(&p)
	}

	if p.MaxAttempts != 7 || p.BaseDelay != 5*time.Millisecond || p.Timeout != time.Minute {
		t.Errorf("policy = %+v", p)
	}
}

func TestSleep_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	if err := sleep(ctx, time.Minute); err != context.Canceled {
		t.Errorf("sleep() error = %v, want context.Canceled", err)
	}
	if time.Since(start) > time.Second {
		t.Error("sleep() ignored cancellation")
	}
}
