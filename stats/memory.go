package stats

import (
	"context"
	"sync"
)

// MemoryRecorder keeps outcome counters in process. It never expires
// anything, so it suits tests and short-lived commands.
type MemoryRecorder struct {
	mu    sync.Mutex
	total Counters
	byOp  map[string]Counters
}

// NewMemoryRecorder creates an empty MemoryRecorder.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{byOp: make(map[string]Counters)}
}

// Record implements Recorder.
func (r *MemoryRecorder) Record(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.total.add(ev)
	if ev.Operation != "" {
		c := r.byOp[ev.Operation]
		c.add(ev)
		r.byOp[ev.Operation] = c
	}
	return nil
}

// Total returns the counters across all operations.
func (r *MemoryRecorder) Total() Counters {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total
}

// ByOperation returns a copy of the per-operation counters.
func (r *MemoryRecorder) ByOperation() map[string]Counters {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]Counters, len(r.byOp))
	for k, v := range r.byOp {
		out[k] = v
	}
	return out
}

var _ Recorder = (*MemoryRecorder)(nil)
