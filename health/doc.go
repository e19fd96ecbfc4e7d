// Package health reports whether the database façade can serve traffic.
//
// Checkers report a Status of Healthy, Degraded or Unhealthy. PoolChecker
// pings through the admission gate and degrades when callers are queueing
// behind a full gate; RedisChecker covers the outcome ledger. An Aggregator
// runs checkers together, and the HTTP handlers expose them:
//
//	agg := health.NewAggregator()
//	agg.Register("database", health.NewPoolChecker(pool))
//
//	mux := http.NewServeMux()
//	health.RegisterHandlers(mux, agg)                      // /healthz /readyz /health
//	mux.Handle("/debug/pool", health.RequireBearer(secret, // optional guard
//	    health.PoolStatsHandler(pool)))
package health
