package dbpool

import (
	"fmt"
	"time"

	"github.com/israelbalog04/acer-music-sub000/gate"
	"github.com/israelbalog04/acer-music-sub000/resilience"
)

// DefaultRecoverPause is how long recovery waits between disconnect and
// reconnect so the pooler can recycle the backend.
const DefaultRecoverPause = 500 * time.Millisecond

// Config tunes a Pool. Zero fields take defaults.
type Config struct {
	// Capacity is the maximum number of operations in flight.
	Capacity int

	// Policy is the default retry policy for every operation.
	Policy resilience.RetryPolicy

	// RecoverPause is the wait between disconnect and reconnect.
	RecoverPause time.Duration
}

// Validate reports configuration values that cannot be defaulted.
func (c Config) Validate() error {
	switch {
	case c.Capacity < 0:
		return fmt.Errorf("%w: capacity must not be negative, got %d", ErrInvalidConfig, c.Capacity)
	case c.Policy.MaxAttempts < 0:
		return fmt.Errorf("%w: max attempts must not be negative, got %d", ErrInvalidConfig, c.Policy.MaxAttempts)
	case c.Policy.BaseDelay < 0, c.Policy.Timeout < 0, c.Policy.MaxDelay < 0:
		return fmt.Errorf("%w: policy durations must not be negative", ErrInvalidConfig)
	case c.RecoverPause < 0:
		return fmt.Errorf("%w: recover pause must not be negative, got %s", ErrInvalidConfig, c.RecoverPause)
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.Capacity == 0 {
		c.Capacity = gate.DefaultCapacity
	}
	if c.RecoverPause == 0 {
		c.RecoverPause = DefaultRecoverPause
	}
	return c
}
