package stats

import (
	"context"
	"time"
)

// Outcome is how a gated call ended.
type Outcome string

const (
	// OutcomeSuccess means an attempt returned without error.
	OutcomeSuccess Outcome = "success"

	// OutcomeFatal means the call failed with a non-retryable error.
	OutcomeFatal Outcome = "fatal"

	// OutcomeExhausted means every attempt failed with a retryable error.
	OutcomeExhausted Outcome = "exhausted"

	// OutcomeCanceled means the caller's context ended first.
	OutcomeCanceled Outcome = "canceled"
)

// Event describes one finished call.
type Event struct {
	Operation string
	Outcome   Outcome
	Attempts  int
	Duration  time.Duration
	At        time.Time
}

// Recorder persists call outcomes.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: callers treat errors as best-effort and never fail a call on them.
type Recorder interface {
	Record(ctx context.Context, ev Event) error
}

// Counters tallies outcomes.
type Counters struct {
	Success   int64 `json:"success"`
	Fatal     int64 `json:"fatal"`
	Exhausted int64 `json:"exhausted"`
	Canceled  int64 `json:"canceled"`
	Attempts  int64 `json:"attempts"`
}

// Total returns the number of calls counted.
func (c Counters) Total() int64 {
	return c.Success + c.Fatal + c.Exhausted + c.Canceled
}

func (c *Counters) add(ev Event) {
	switch ev.Outcome {
	case OutcomeSuccess:
		c.Success++
	case OutcomeFatal:
		c.Fatal++
	case OutcomeExhausted:
		c.Exhausted++
	case OutcomeCanceled:
		c.Canceled++
	}
	c.Attempts += int64(ev.Attempts)
}

// NopRecorder returns a Recorder that drops every event.
func NopRecorder() Recorder {
	return nopRecorder{}
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, Event) error { return nil }
