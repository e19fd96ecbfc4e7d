package resilience

import (
	"context"
	"time"

	"github.com/israelbalog04/acer-music-sub000/gate"
)

// RetryEvent describes a failed attempt that is about to be retried.
type RetryEvent struct {
	Attempt int
	Err     error
	Class   ErrorClass
	Delay   time.Duration
}

// Report summarizes one Do call.
type Report struct {
	// Attempts is the number of attempts started.
	Attempts int

	// Class is the class of the returned error. It is meaningless on success.
	Class ErrorClass
}

// RecoverFunc clears shared state implicated by a stale-session failure.
// It may be called concurrently and should be idempotent.
type RecoverFunc func(ctx context.Context, err error) error

// Executor runs operations through an admission gate with per-attempt
// timeouts and classified retries.
//
// Contract:
//   - Concurrency: safe for concurrent use; all calls share one gate.
//   - Context: cancellation aborts waiting for a slot or a backoff delay.
//   - Errors: operation errors are returned unchanged.
type Executor struct {
	gate           *gate.Gate
	policy         RetryPolicy
	classify       Classifier
	recoverFn      RecoverFunc
	onRetry        func(RetryEvent)
	onRecoverError func(error)
}

// Option configures an Executor.
type Option func(*Executor)

// NewExecutor creates an executor admitting attempts through g.
// A nil gate is replaced by gate.New(gate.DefaultCapacity).
func NewExecutor(g *gate.Gate, opts ...Option) *Executor {
	if g == nil {
		g = gate.New(gate.DefaultCapacity)
	}
	e := &Executor{
		gate:     g,
		policy:   DefaultPolicy(),
		classify: Classify,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.policy = e.policy.withDefaults()
	return e
}

// WithPolicy sets the default retry policy. Zero fields take defaults.
func WithPolicy(p RetryPolicy) Option {
	return func(e *Executor) {
		e.policy = p
	}
}

// WithClassifier replaces the default Classify.
func WithClassifier(c Classifier) Option {
	return func(e *Executor) {
		if c != nil {
			e.classify = c
		}
	}
}

// WithRecover sets the hook run before retrying a stale-session failure.
func WithRecover(fn RecoverFunc) Option {
	return func(e *Executor) {
		e.recoverFn = fn
	}
}

// WithOnRetry sets a callback invoked before each backoff delay.
func WithOnRetry(fn func(RetryEvent)) Option {
	return func(e *Executor) {
		e.onRetry = fn
	}
}

// WithOnRecoverError sets a callback receiving recover hook failures.
// The failures are otherwise discarded.
func WithOnRecoverError(fn func(error)) Option {
	return func(e *Executor) {
		e.onRecoverError = fn
	}
}

// Gate returns the admission gate shared by all calls.
func (e *Executor) Gate() *gate.Gate {
	return e.gate
}

// Policy returns the default retry policy.
func (e *Executor) Policy() RetryPolicy {
	return e.policy
}

// With returns a copy of e with opts applied on top. The copy shares the
// gate, so it competes for the same slots.
func (e *Executor) With(opts ...Option) *Executor {
	c := *e
	for _, opt := range opts {
		opt(&c)
	}
	c.policy = c.policy.withDefaults()
	return &c
}

// Execute runs op until it succeeds, fails fatally, or attempts run out.
func (e *Executor) Execute(ctx context.Context, op func(context.Context) error, opts ...CallOption) error {
	if op == nil {
		return ErrNilOperation
	}
	_, err := Do(ctx, e, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	}, opts...)
	return err
}

// Do runs op through e and returns its value.
func Do[T any](ctx context.Context, e *Executor, op func(context.Context) (T, error), opts ...CallOption) (T, error) {
	v, _, err := DoWithReport(ctx, e, op, opts...)
	return v, err
}

// DoWithReport is Do that also reports how the call went.
//
// Each attempt acquires a gate slot, races op against the attempt timeout
// and releases the slot before the error is looked at. Fatal errors return
// immediately. Retryable errors wait Delay(attempt) and try again, running
// the recover hook first for stale-session errors. The last error is
// returned once MaxAttempts is reached.
func DoWithReport[T any](ctx context.Context, e *Executor, op func(context.Context) (T, error), opts ...CallOption) (T, Report, error) {
	var (
		zero   T
		report Report
	)
	if op == nil {
		return zero, report, ErrNilOperation
	}

	policy := e.policy
	for _, opt := range opts {
		opt(&policy)
	}
	policy = policy.withDefaults()

	for attempt := 1; ; attempt++ {
		report.Attempts = attempt

		v, err := runAttempt(ctx, e.gate, policy.Timeout, op)
		if err == nil {
			return v, report, nil
		}

		// The caller gave up; nothing left to retry for.
		if ctx.Err() != nil {
			report.Class = ClassFatal
			return zero, report, err
		}

		class := e.classify(err)
		report.Class = class
		if !class.Retryable() || attempt >= policy.MaxAttempts {
			return zero, report, err
		}

		if class == ClassStaleSession && e.recoverFn != nil {
			if rerr := e.recoverFn(ctx, err); rerr != nil && e.onRecoverError != nil {
				e.onRecoverError(rerr)
			}
		}

		delay := policy.Delay(attempt)
		if e.onRetry != nil {
			e.onRetry(RetryEvent{Attempt: attempt, Err: err, Class: class, Delay: delay})
		}
		if serr := sleep(ctx, delay); serr != nil {
			report.Class = ClassFatal
			return zero, report, serr
		}
	}
}

func runAttempt[T any](ctx context.Context, g *gate.Gate, timeout time.Duration, op func(context.Context) (T, error)) (T, error) {
	if err := g.Acquire(ctx); err != nil {
		var zero T
		return zero, err
	}
	defer g.Release()

	return runWithTimeout(ctx, timeout, op)
}
