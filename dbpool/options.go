package dbpool

import (
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/israelbalog04/acer-music-sub000/observe"
	"github.com/israelbalog04/acer-music-sub000/resilience"
	"github.com/israelbalog04/acer-music-sub000/stats"
)

// Option configures a Pool.
type Option func(*options)

type options struct {
	logger     observe.Logger
	meter      metric.Meter
	tracer     trace.Tracer
	recorder   stats.Recorder
	classifier resilience.Classifier
}

// WithLogger sets the structured logger.
func WithLogger(l observe.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMeter records metrics and gate gauges on m.
func WithMeter(m metric.Meter) Option {
	return func(o *options) { o.meter = m }
}

// WithTracer emits one span per operation on t.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// WithObserver takes logger, meter and tracer from obs.
func WithObserver(obs observe.Observer) Option {
	return func(o *options) {
		o.logger = obs.Logger()
		o.meter = obs.Meter()
		o.tracer = obs.Tracer()
	}
}

// WithRecorder sends one stats.Event per finished operation to r.
func WithRecorder(r stats.Recorder) Option {
	return func(o *options) { o.recorder = r }
}

// WithClassifier replaces resilience.Classify, for example with a
// driver-aware classifier.
func WithClassifier(c resilience.Classifier) Option {
	return func(o *options) { o.classifier = c }
}
