package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/israelbalog04/acer-music-sub000/gate"
)

// Metrics records execution metrics for gated database operations.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordExecution records one completed call, including all its attempts.
	RecordExecution(ctx context.Context, meta OpMeta, duration time.Duration, attempts int, err error)

	// RecordRetry records a failed attempt that is about to be retried.
	RecordRetry(ctx context.Context, meta OpMeta, class string)

	// RecordRecovery records one run of the client recovery hook.
	RecordRecovery(ctx context.Context, err error)
}

type metricsImpl struct {
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	retryCount   metric.Int64Counter
	recoverCount metric.Int64Counter
	durationHist metric.Float64Histogram
	attemptHist  metric.Int64Histogram
}

// NewMetrics creates the dbpool instruments on meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	totalCount, err := meter.Int64Counter(
		"dbpool.exec.total",
		metric.WithDescription("Total number of gated database calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"dbpool.exec.errors",
		metric.WithDescription("Total number of gated database calls that failed"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	retryCount, err := meter.Int64Counter(
		"dbpool.exec.retries",
		metric.WithDescription("Failed attempts that were retried"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	recoverCount, err := meter.Int64Counter(
		"dbpool.client.recoveries",
		metric.WithDescription("Client reconnects triggered by stale session state"),
		metric.WithUnit("{recovery}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"dbpool.exec.duration_ms",
		metric.WithDescription("Call duration including queueing and retries, in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	attemptHist, err := meter.Int64Histogram(
		"dbpool.exec.attempts",
		metric.WithDescription("Attempts per call"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		totalCount:   totalCount,
		errorCount:   errorCount,
		retryCount:   retryCount,
		recoverCount: recoverCount,
		durationHist: durationHist,
		attemptHist:  attemptHist,
	}, nil
}

func (m *metricsImpl) RecordExecution(ctx context.Context, meta OpMeta, duration time.Duration, attempts int, err error) {
	opt := metric.WithAttributes(meta.attributes()...)

	m.totalCount.Add(ctx, 1, opt)
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
	m.attemptHist.Record(ctx, int64(attempts), opt)
}

func (m *metricsImpl) RecordRetry(ctx context.Context, meta OpMeta, class string) {
	attrs := append(meta.attributes(), attribute.String("error.class", class))
	m.retryCount.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *metricsImpl) RecordRecovery(ctx context.Context, err error) {
	m.recoverCount.Add(ctx, 1, metric.WithAttributes(attribute.Bool("failed", err != nil)))
}

// RegisterGateGauges exports gate occupancy as observable gauges.
// The returned registration should be unregistered when the gate goes away.
func RegisterGateGauges(meter metric.Meter, stats func() gate.Stats) (metric.Registration, error) {
	active, err := meter.Int64ObservableGauge(
		"dbpool.gate.active",
		metric.WithDescription("Operations currently holding a slot"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, err
	}

	queued, err := meter.Int64ObservableGauge(
		"dbpool.gate.queued",
		metric.WithDescription("Operations waiting for a slot"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, err
	}

	capacity, err := meter.Int64ObservableGauge(
		"dbpool.gate.capacity",
		metric.WithDescription("Maximum concurrent operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, err
	}

	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := stats()
		o.ObserveInt64(active, int64(s.Active))
		o.ObserveInt64(queued, int64(s.Queued))
		o.ObserveInt64(capacity, int64(s.Capacity))
		return nil
	}, active, queued, capacity)
}

// NopMetrics returns a Metrics that records nothing.
func NopMetrics() Metrics {
	return noopMetrics{}
}

type noopMetrics struct{}

func (noopMetrics) RecordExecution(ctx context.Context, meta OpMeta, duration time.Duration, attempts int, err error) {
}
func (noopMetrics) RecordRetry(ctx context.Context, meta OpMeta, class string) {}
func (noopMetrics) RecordRecovery(ctx context.Context, err error)              {}
