package stats

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Default RedisRecorder settings.
const (
	DefaultRedisPrefix = "dbgate:stats"
	DefaultRedisTTL    = 24 * time.Hour
)

// RedisRecorder aggregates outcomes into Redis hashes:
//
//	<prefix>:total               cumulative, never expires
//	<prefix>:minute:<yyyymmddhhmm> per-minute bucket, expires after TTL
//	<prefix>:op:<operation>      cumulative per operation
//
// Each hash carries one field per outcome plus an "attempts" field.
type RedisRecorder struct {
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
	bucket bool
}

// RedisOption configures a RedisRecorder.
type RedisOption func(*RedisRecorder)

// WithPrefix sets the key prefix. Surrounding colons are trimmed.
func WithPrefix(prefix string) RedisOption {
	return func(r *RedisRecorder) { r.prefix = strings.Trim(prefix, ":") }
}

// WithTTL sets how long per-minute buckets live. Zero keeps them forever.
func WithTTL(d time.Duration) RedisOption {
	return func(r *RedisRecorder) { r.ttl = d }
}

// WithMinuteBuckets toggles the per-minute time series.
func WithMinuteBuckets(enabled bool) RedisOption {
	return func(r *RedisRecorder) { r.bucket = enabled }
}

// NewRedisRecorder creates a recorder writing through rdb.
func NewRedisRecorder(rdb redis.Cmdable, opts ...RedisOption) *RedisRecorder {
	r := &RedisRecorder{
		rdb:    rdb,
		prefix: DefaultRedisPrefix,
		ttl:    DefaultRedisTTL,
		bucket: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// TotalKey returns the hash holding cumulative counters.
func (r *RedisRecorder) TotalKey() string {
	return r.prefix + ":total"
}

// MinuteKey returns the bucket hash for the minute containing at.
func (r *RedisRecorder) MinuteKey(at time.Time) string {
	return fmt.Sprintf("%s:minute:%s", r.prefix, at.UTC().Format("200601021504"))
}

// OperationKey returns the hash holding counters for one operation.
func (r *RedisRecorder) OperationKey(op string) string {
	return r.prefix + ":op:" + op
}

// Record implements Recorder with a single pipelined round trip.
func (r *RedisRecorder) Record(ctx context.Context, ev Event) error {
	if r == nil || r.rdb == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	field := string(ev.Outcome)
	attempts := int64(ev.Attempts)

	pipe := r.rdb.Pipeline()

	totalKey := r.TotalKey()
	pipe.HIncrBy(ctx, totalKey, field, 1)
	pipe.HIncrBy(ctx, totalKey, "attempts", attempts)

	if r.bucket {
		bucketKey := r.MinuteKey(at)
		pipe.HIncrBy(ctx, bucketKey, field, 1)
		if r.ttl > 0 {
			pipe.Expire(ctx, bucketKey, r.ttl)
		}
	}

	if op := strings.TrimSpace(ev.Operation); op != "" {
		opKey := r.OperationKey(op)
		pipe.HIncrBy(ctx, opKey, field, 1)
		pipe.HIncrBy(ctx, opKey, "attempts", attempts)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("stats: redis record: %w", err)
	}
	return nil
}

// Total reads the cumulative counters back.
func (r *RedisRecorder) Total(ctx context.Context) (Counters, error) {
	return r.read(ctx, r.TotalKey())
}

// Operation reads the counters for one operation.
func (r *RedisRecorder) Operation(ctx context.Context, op string) (Counters, error) {
	return r.read(ctx, r.OperationKey(op))
}

func (r *RedisRecorder) read(ctx context.Context, key string) (Counters, error) {
	var raw struct {
		Success   int64 `redis:"success"`
		Fatal     int64 `redis:"fatal"`
		Exhausted int64 `redis:"exhausted"`
		Canceled  int64 `redis:"canceled"`
		Attempts  int64 `redis:"attempts"`
	}
	if err := r.rdb.HGetAll(ctx, key).Scan(&raw); err != nil {
		return Counters{}, fmt.Errorf("stats: redis read %s: %w", key, err)
	}
	return Counters(raw), nil
}

var _ Recorder = (*RedisRecorder)(nil)
