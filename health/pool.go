package health

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/israelbalog04/acer-music-sub000/gate"
)

// Pool is the part of dbpool.Pool a PoolChecker needs.
type Pool interface {
	Ping(ctx context.Context) error
	Stats() gate.Stats
}

// PoolChecker pings the database through the admission gate.
//
// The ping waits its turn like any other operation, so a check that times
// out on a saturated gate reports unhealthy. A ping that succeeds while
// callers are queued reports degraded.
type PoolChecker struct {
	pool Pool
}

// NewPoolChecker creates a checker for pool.
func NewPoolChecker(pool Pool) *PoolChecker {
	return &PoolChecker{pool: pool}
}

// Name returns "database".
func (c *PoolChecker) Name() string { return "database" }

// Check pings through the pool and attaches gate stats.
func (c *PoolChecker) Check(ctx context.Context) Result {
	err := c.pool.Ping(ctx)
	stats := c.pool.Stats()
	details := statsDetails(stats)

	switch {
	case err != nil:
		return Unhealthy("database ping failed", err).WithDetails(details)
	case stats.Saturated():
		return Degraded(fmt.Sprintf("gate saturated: %d of %d active, %d queued",
			stats.Active, stats.Capacity, stats.Queued)).WithDetails(details)
	default:
		return Healthy("database reachable").WithDetails(details)
	}
}

func statsDetails(s gate.Stats) map[string]any {
	return map[string]any{
		"active":     s.Active,
		"capacity":   s.Capacity,
		"queued":     s.Queued,
		"available":  s.Available,
		"max_active": s.MaxActive,
	}
}

// RedisChecker pings the Redis server backing the outcome ledger.
// The ledger is best-effort, so a failed ping only degrades.
type RedisChecker struct {
	rdb redis.Cmdable
}

// NewRedisChecker creates a checker for rdb.
func NewRedisChecker(rdb redis.Cmdable) *RedisChecker {
	return &RedisChecker{rdb: rdb}
}

// Name returns "redis".
func (c *RedisChecker) Name() string { return "redis" }

// Check sends PING.
func (c *RedisChecker) Check(ctx context.Context) Result {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		r := Degraded("stats ledger unreachable")
		r.Error = err
		return r
	}
	return Healthy("stats ledger reachable")
}
