package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/israelbalog04/acer-music-sub000/dbpool"
	"github.com/israelbalog04/acer-music-sub000/dbpool/gormclient"
	"github.com/israelbalog04/acer-music-sub000/observe"
	"github.com/israelbalog04/acer-music-sub000/resilience"
)

// Profiles.
const (
	ProfileDevelopment = "development"
	ProfileProduction  = "production"
)

// Capacity defaults per profile.
const (
	DevelopmentCapacity = 5
	ProductionCapacity  = 20
)

// Environment variables.
const (
	EnvProfile         = "DBGATE_PROFILE"
	EnvCapacity        = "DBGATE_CAPACITY"
	EnvMaxAttempts     = "DBGATE_MAX_ATTEMPTS"
	EnvBaseDelay       = "DBGATE_BASE_DELAY"
	EnvTimeout         = "DBGATE_TIMEOUT"
	EnvRecoverPause    = "DBGATE_RECOVER_PAUSE"
	EnvDatabaseURL     = "DATABASE_URL"
	EnvPrepareStmt     = "DBGATE_PREPARE_STMT"
	EnvSimpleProtocol  = "DBGATE_SIMPLE_PROTOCOL"
	EnvLogLevel        = "DBGATE_LOG_LEVEL"
	EnvTracingExporter = "DBGATE_TRACING_EXPORTER"
	EnvMetricsExporter = "DBGATE_METRICS_EXPORTER"
	EnvRedisAddr       = "DBGATE_REDIS_ADDR"
	EnvDiagAddr        = "DBGATE_DIAG_ADDR"
	EnvDiagJWTSecret   = "DBGATE_DIAG_JWT_SECRET"
)

// DefaultDiagAddr is where diagnostics are served when unset.
const DefaultDiagAddr = ":8080"

// Config is the full dbgate configuration.
type Config struct {
	Profile string

	Pool     dbpool.Config
	Database gormclient.Config

	LogLevel        string
	TracingExporter string
	MetricsExporter string

	// RedisAddr enables the Redis outcome ledger when set.
	RedisAddr string

	DiagAddr string
	// DiagJWTSecret, when set, guards /debug/pool with HS256 bearer tokens.
	DiagJWTSecret string
}

// FromEnv loads configuration from the process environment.
func FromEnv(ctx context.Context) (Config, error) {
	return Load(ctx, os.LookupEnv)
}

// Load builds a Config from lookup and validates it.
func Load(ctx context.Context, lookup LookupFunc) (Config, error) {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	cfg := Config{
		Profile:         strings.ToLower(get(EnvProfile)),
		LogLevel:        strings.ToLower(get(EnvLogLevel)),
		TracingExporter: strings.ToLower(get(EnvTracingExporter)),
		MetricsExporter: strings.ToLower(get(EnvMetricsExporter)),
		RedisAddr:       get(EnvRedisAddr),
		DiagAddr:        get(EnvDiagAddr),
	}
	if cfg.Profile == "" {
		cfg.Profile = ProfileDevelopment
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.DiagAddr == "" {
		cfg.DiagAddr = DefaultDiagAddr
	}

	switch cfg.Profile {
	case ProfileDevelopment:
		cfg.Pool.Capacity = DevelopmentCapacity
	case ProfileProduction:
		cfg.Pool.Capacity = ProductionCapacity
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrInvalidProfile, cfg.Profile)
	}

	var err error
	if cfg.Pool.Capacity, err = intVar(get, EnvCapacity, cfg.Pool.Capacity); err != nil {
		return Config{}, err
	}
	if cfg.Pool.Policy.MaxAttempts, err = intVar(get, EnvMaxAttempts, resilience.DefaultMaxAttempts); err != nil {
		return Config{}, err
	}
	if cfg.Pool.Policy.BaseDelay, err = durationVar(get, EnvBaseDelay, resilience.DefaultBaseDelay); err != nil {
		return Config{}, err
	}
	if cfg.Pool.Policy.Timeout, err = durationVar(get, EnvTimeout, resilience.DefaultTimeout); err != nil {
		return Config{}, err
	}
	if cfg.Pool.RecoverPause, err = durationVar(get, EnvRecoverPause, dbpool.DefaultRecoverPause); err != nil {
		return Config{}, err
	}
	if cfg.Database.PrepareStmt, err = boolVar(get, EnvPrepareStmt, false); err != nil {
		return Config{}, err
	}
	if cfg.Database.SimpleProtocol, err = boolVar(get, EnvSimpleProtocol, false); err != nil {
		return Config{}, err
	}

	providers := []SecretProvider{EnvProvider{Lookup: lookup}, FileProvider{}}
	if raw := get(EnvDatabaseURL); raw != "" {
		if cfg.Database.DSN, err = resolveValue(ctx, raw, lookup, providers...); err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvDatabaseURL, err)
		}
	}
	if raw := get(EnvDiagJWTSecret); raw != "" {
		if cfg.DiagJWTSecret, err = resolveValue(ctx, raw, lookup, providers...); err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvDiagJWTSecret, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that Load cannot default.
// A missing DATABASE_URL is reported by RequireDatabase, not here.
func (c Config) Validate() error {
	if c.Pool.Capacity <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidValue, EnvCapacity, c.Pool.Capacity)
	}
	if c.Pool.Policy.MaxAttempts <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidValue, EnvMaxAttempts, c.Pool.Policy.MaxAttempts)
	}
	if err := c.Pool.Validate(); err != nil {
		return err
	}
	return c.Observe("dbgate", "").Validate()
}

// RequireDatabase reports whether a database connection is configured.
func (c Config) RequireDatabase() error {
	if c.Database.DSN == "" {
		return fmt.Errorf("%w: %s", ErrMissingVariable, EnvDatabaseURL)
	}
	return c.Database.Validate()
}

// Observe derives the telemetry configuration.
func (c Config) Observe(service, version string) observe.Config {
	return observe.Config{
		ServiceName: service,
		Version:     version,
		Tracing: observe.TracingConfig{
			Enabled:   c.TracingExporter != "" && c.TracingExporter != "none",
			Exporter:  c.TracingExporter,
			SamplePct: 1.0,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  c.MetricsExporter != "" && c.MetricsExporter != "none",
			Exporter: c.MetricsExporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   c.LogLevel,
		},
	}
}

func intVar(get func(string) string, key string, def int) (int, error) {
	raw := get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q: %v", ErrInvalidValue, key, raw, err)
	}
	return n, nil
}

func durationVar(get func(string) string, key string, def time.Duration) (time.Duration, error) {
	raw := get(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q: %v", ErrInvalidValue, key, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: %s must not be negative", ErrInvalidValue, key)
	}
	return d, nil
}

func boolVar(get func(string) string, key string, def bool) (bool, error) {
	raw := get(key)
	if raw == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q: %v", ErrInvalidValue, key, raw, err)
	}
	return b, nil
}
