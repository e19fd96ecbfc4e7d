package dbpool

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/singleflight"

	"github.com/israelbalog04/acer-music-sub000/gate"
	"github.com/israelbalog04/acer-music-sub000/observe"
	"github.com/israelbalog04/acer-music-sub000/resilience"
	"github.com/israelbalog04/acer-music-sub000/stats"
)

// Pool is a Client whose data operations are admitted through a shared
// gate and retried on transient and stale-session failures.
type Pool struct {
	client       Client
	gate         *gate.Gate
	exec         *resilience.Executor
	mw           *observe.Middleware
	metrics      observe.Metrics
	logger       observe.Logger
	recorder     stats.Recorder
	recoverPause time.Duration

	// recovering coalesces concurrent reconnects into one.
	recovering singleflight.Group
	gauges     metric.Registration
}

// New wraps client. The pool does not connect; call Connect first.
func New(client Client, cfg Config, opts ...Option) (*Pool, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = observe.NopLogger()
	}
	if o.recorder == nil {
		o.recorder = stats.NopRecorder()
	}
	if o.classifier == nil {
		o.classifier = resilience.Classify
	}

	p := &Pool{
		client:       client,
		gate:         gate.New(cfg.Capacity),
		logger:       o.logger.With(observe.Field{Key: "component", Value: "dbpool"}),
		recorder:     o.recorder,
		recoverPause: cfg.RecoverPause,
		metrics:      observe.NopMetrics(),
	}

	if o.meter != nil {
		m, err := observe.NewMetrics(o.meter)
		if err != nil {
			return nil, err
		}
		p.metrics = m

		reg, err := observe.RegisterGateGauges(o.meter, p.gate.Stats)
		if err != nil {
			return nil, err
		}
		p.gauges = reg
	}

	tracer := observe.NopTracer()
	if o.tracer != nil {
		tracer = observe.NewTracer(o.tracer)
	}
	p.mw = observe.NewMiddleware(tracer, p.metrics, p.logger)

	p.exec = resilience.NewExecutor(p.gate,
		resilience.WithPolicy(cfg.Policy),
		resilience.WithClassifier(o.classifier),
		resilience.WithRecover(p.reconnect),
		resilience.WithOnRecoverError(func(err error) {
			p.logger.Error(context.Background(), "client recovery failed", observe.Field{Key: "error", Value: err})
		}),
	)

	return p, nil
}

// Stats returns a snapshot of gate occupancy.
func (p *Pool) Stats() gate.Stats {
	return p.gate.Stats()
}

// Policy returns the default retry policy in effect.
func (p *Pool) Policy() resilience.RetryPolicy {
	return p.exec.Policy()
}

// Client returns the wrapped client. Calls made on it bypass the gate.
func (p *Pool) Client() Client {
	return p.client
}

// Close stops exporting gate gauges. It does not disconnect the client.
func (p *Pool) Close() error {
	if p.gauges == nil {
		return nil
	}
	return p.gauges.Unregister()
}

// Do runs fn against the pool's client as one gated, retried operation.
// op names the operation in telemetry.
func Do[T any](ctx context.Context, p *Pool, op string, fn func(context.Context, Client) (T, error), opts ...resilience.CallOption) (T, error) {
	return run(ctx, p, observe.OpMeta{Operation: op}, fn, opts...)
}

func run[T any](ctx context.Context, p *Pool, meta observe.OpMeta, fn func(context.Context, Client) (T, error), opts ...resilience.CallOption) (T, error) {
	var (
		v      T
		report resilience.Report
	)
	start := time.Now()

	exec := p.exec.With(resilience.WithOnRetry(func(ev resilience.RetryEvent) {
		p.metrics.RecordRetry(ctx, meta, ev.Class.String())
		p.logger.Warn(ctx, "retrying database operation",
			observe.Field{Key: "operation", Value: meta.Operation},
			observe.Field{Key: "attempt", Value: ev.Attempt},
			observe.Field{Key: "class", Value: ev.Class.String()},
			observe.Field{Key: "delay_ms", Value: ev.Delay.Milliseconds()},
			observe.Field{Key: "error", Value: ev.Err},
		)
	}))

	err := p.mw.Run(ctx, meta, func(ctx context.Context) (int, error) {
		var err error
		v, report, err = resilience.DoWithReport(ctx, exec, func(ctx context.Context) (T, error) {
			return fn(ctx, p.client)
		}, opts...)
		return report.Attempts, err
	})

	p.record(ctx, meta, report, err, time.Since(start))
	return v, err
}

func (p *Pool) record(ctx context.Context, meta observe.OpMeta, report resilience.Report, err error, d time.Duration) {
	ev := stats.Event{
		Operation: meta.Operation,
		Outcome:   outcomeOf(ctx, report, err),
		Attempts:  report.Attempts,
		Duration:  d,
		At:        time.Now(),
	}
	if rerr := p.recorder.Record(context.WithoutCancel(ctx), ev); rerr != nil {
		p.logger.Debug(ctx, "stats record failed", observe.Field{Key: "error", Value: rerr})
	}
}

func outcomeOf(ctx context.Context, report resilience.Report, err error) stats.Outcome {
	switch {
	case err == nil:
		return stats.OutcomeSuccess
	case ctx.Err() != nil, errors.Is(err, context.Canceled):
		return stats.OutcomeCanceled
	case report.Class.Retryable():
		return stats.OutcomeExhausted
	default:
		return stats.OutcomeFatal
	}
}

// reconnect disconnects, pauses and reconnects the client. Concurrent
// calls share one run, which ignores the caller's cancellation.
func (p *Pool) reconnect(ctx context.Context, cause error) error {
	_, err, _ := p.recovering.Do("recover", func() (any, error) {
		ctx := context.WithoutCancel(ctx)
		p.logger.Warn(ctx, "stale session detected, reconnecting",
			observe.Field{Key: "error", Value: cause},
			observe.Field{Key: "pause_ms", Value: p.recoverPause.Milliseconds()},
		)

		if err := p.client.Disconnect(ctx); err != nil {
			p.logger.Warn(ctx, "disconnect during recovery failed", observe.Field{Key: "error", Value: err})
		}

		time.Sleep(p.recoverPause)

		err := p.client.Connect(ctx)
		p.metrics.RecordRecovery(ctx, err)
		if err == nil {
			p.logger.Info(ctx, "client reconnected")
		}
		return nil, err
	})
	return err
}

var _ Client = (*Pool)(nil)
