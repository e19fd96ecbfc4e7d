package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/israelbalog04/acer-music-sub000/config"
	"github.com/israelbalog04/acer-music-sub000/dbpool"
	"github.com/israelbalog04/acer-music-sub000/dbpool/gormclient"
	"github.com/israelbalog04/acer-music-sub000/health"
	"github.com/israelbalog04/acer-music-sub000/observe"
	"github.com/israelbalog04/acer-music-sub000/observe/exporters"
	"github.com/israelbalog04/acer-music-sub000/stats"
)

// runtime holds everything a command needs, wired from config.
type runtime struct {
	cfg      config.Config
	obs      observe.Observer
	registry *prometheus.Registry
	pool     *dbpool.Pool
	rdb      *redis.Client
	memory   *stats.MemoryRecorder
}

func newRuntime(ctx context.Context, cfg config.Config) (*runtime, error) {
	if err := cfg.RequireDatabase(); err != nil {
		return nil, err
	}

	rt := &runtime{cfg: cfg, registry: prometheus.NewRegistry()}

	obsCfg := cfg.Observe("dbgate", version)
	obsCfg.Exporters = exporters.Options{Registerer: rt.registry}
	obs, err := observe.NewObserver(ctx, obsCfg)
	if err != nil {
		return nil, fmt.Errorf("observer: %w", err)
	}
	rt.obs = obs
	logger := obs.Logger()

	var recorder stats.Recorder
	if cfg.RedisAddr != "" {
		rt.rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		recorder = stats.NewRedisRecorder(rt.rdb)
	} else {
		rt.memory = stats.NewMemoryRecorder()
		recorder = rt.memory
	}

	client, err := gormclient.New(cfg.Database, logger)
	if err != nil {
		return nil, errors.Join(err, rt.close(ctx))
	}

	pool, err := dbpool.New(client, cfg.Pool,
		dbpool.WithObserver(obs),
		dbpool.WithRecorder(recorder),
		dbpool.WithClassifier(gormclient.Classify),
	)
	if err != nil {
		return nil, errors.Join(err, rt.close(ctx))
	}
	rt.pool = pool

	logger.Info(ctx, "pool configured",
		observe.Field{Key: "profile", Value: cfg.Profile},
		observe.Field{Key: "capacity", Value: pool.Stats().Capacity},
		observe.Field{Key: "max_attempts", Value: pool.Policy().MaxAttempts},
		observe.Field{Key: "base_delay", Value: pool.Policy().BaseDelay.String()},
		observe.Field{Key: "timeout", Value: pool.Policy().Timeout.String()},
	)
	return rt, nil
}

// mux builds the diagnostics routes.
func (rt *runtime) mux() *http.ServeMux {
	agg := health.NewAggregator()
	agg.Register("database", health.NewPoolChecker(rt.pool))
	if rt.rdb != nil {
		agg.Register("redis", health.NewRedisChecker(rt.rdb))
	}

	mux := http.NewServeMux()
	health.RegisterHandlers(mux, agg)
	mux.Handle("GET /debug/pool", health.RequireBearer([]byte(rt.cfg.DiagJWTSecret), health.PoolStatsHandler(rt.pool)))
	if rt.cfg.MetricsExporter == "prometheus" {
		mux.Handle("GET /metrics", promhttp.HandlerFor(rt.registry, promhttp.HandlerOpts{}))
	}
	return mux
}

// close releases everything in reverse order of construction.
func (rt *runtime) close(ctx context.Context) error {
	var errs []error
	if rt.pool != nil {
		if err := rt.pool.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("disconnect: %w", err))
		}
		if err := rt.pool.Close(); err != nil {
			errs = append(errs, fmt.Errorf("pool close: %w", err))
		}
	}
	if rt.rdb != nil {
		if err := rt.rdb.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}
	if rt.obs != nil {
		if err := rt.obs.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
