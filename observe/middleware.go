package observe

import (
	"context"
	"time"
)

// RunFunc performs one gated call and reports how many attempts it took.
type RunFunc func(ctx context.Context) (attempts int, err error)

// Middleware wraps gated database calls with tracing, metrics, and logging.
//
// Contract:
//   - Concurrency: Run is safe for concurrent use.
//   - Context: the span context is passed to fn.
//   - Errors: errors from fn are recorded and returned unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a Middleware. Nil components are replaced by no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = NopTracer()
	}
	if metrics == nil {
		metrics = NopMetrics()
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// Run executes fn inside a span for meta and records the outcome.
func (m *Middleware) Run(ctx context.Context, meta OpMeta, fn RunFunc) error {
	ctx, span := m.tracer.StartSpan(ctx, meta)
	start := time.Now()

	attempts, err := fn(ctx)

	duration := time.Since(start)
	m.tracer.EndSpan(span, attempts, err)
	m.metrics.RecordExecution(ctx, meta, duration, attempts, err)

	fields := []Field{
		{Key: "operation", Value: meta.Operation},
		{Key: "attempts", Value: attempts},
		{Key: "duration_ms", Value: duration.Milliseconds()},
	}
	if meta.Model != "" {
		fields = append(fields, Field{Key: "model", Value: meta.Model})
	}

	if err != nil {
		fields = append(fields, Field{Key: "error", Value: err})
		m.logger.Error(ctx, "database operation failed", fields...)
	} else {
		m.logger.Debug(ctx, "database operation completed", fields...)
	}

	return err
}

// Metrics returns the metrics sink used by the middleware.
func (m *Middleware) Metrics() Metrics { return m.metrics }

// Logger returns the logger used by the middleware.
func (m *Middleware) Logger() Logger { return m.logger }

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}
	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}
