package gormclient

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig wraps configuration validation failures.
var ErrInvalidConfig = errors.New("gormclient: invalid config")

// DefaultSlowThreshold is the query duration above which a warning is logged.
const DefaultSlowThreshold = 200 * time.Millisecond

// Config configures the GORM connection.
type Config struct {
	// DSN is a libpq-style connection string or postgres:// URL.
	DSN string

	// PrepareStmt caches prepared statements per connection in GORM.
	// Leave it off behind a transaction-mode pooler.
	PrepareStmt bool

	// SimpleProtocol disables the extended protocol in pgx so no
	// server-side statements are created at all.
	SimpleProtocol bool

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// SlowThreshold marks queries to be logged as slow. Default: 200ms.
	SlowThreshold time.Duration
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch {
	case c.DSN == "":
		return fmt.Errorf("%w: DSN is required", ErrInvalidConfig)
	case c.MaxOpenConns < 0, c.MaxIdleConns < 0:
		return fmt.Errorf("%w: connection limits must not be negative", ErrInvalidConfig)
	case c.ConnMaxLifetime < 0, c.SlowThreshold < 0:
		return fmt.Errorf("%w: durations must not be negative", ErrInvalidConfig)
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.SlowThreshold == 0 {
		c.SlowThreshold = DefaultSlowThreshold
	}
	return c
}
