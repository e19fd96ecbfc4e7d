package gate

import (
	"container/list"
	"context"
	"sync"
)

// DefaultCapacity is used when New is given a non-positive capacity.
const DefaultCapacity = 10

// Gate limits concurrent operations and queues excess callers in FIFO order.
type Gate struct {
	capacity int

	mu        sync.Mutex
	active    int
	maxActive int
	waiters   list.List // of chan struct{}
}

// New creates a gate admitting at most capacity concurrent holders.
func New(capacity int) *Gate {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Gate{capacity: capacity}
}

// Capacity returns the configured ceiling.
func (g *Gate) Capacity() int {
	return g.capacity
}

// Acquire blocks until a slot is granted or ctx is done.
//
// When a slot is free and nobody is queued the grant is immediate. Otherwise
// the caller joins the tail of the waiter queue. If ctx ends first the caller
// leaves the queue and ctx.Err() is returned; a slot handed over concurrently
// with the cancellation is passed on to the next waiter.
func (g *Gate) Acquire(ctx context.Context) error {
	g.mu.Lock()
	if g.active < g.capacity && g.waiters.Len() == 0 {
		g.grantLocked()
		g.mu.Unlock()
		return nil
	}

	ready := make(chan struct{})
	elem := g.waiters.PushBack(ready)
	g.mu.Unlock()

	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		g.mu.Lock()
		select {
		case <-ready:
			// Granted while we were giving up; hand the slot along.
			g.releaseLocked()
		default:
			g.waiters.Remove(elem)
		}
		g.mu.Unlock()
		return ctx.Err()
	}
}

// TryAcquire grants a slot only if one is free and no caller is queued.
func (g *Gate) TryAcquire() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.active < g.capacity && g.waiters.Len() == 0 {
		g.grantLocked()
		return true
	}
	return false
}

// Release returns a slot. If callers are queued the slot goes straight to
// the oldest one.
//
// Release panics when no slot is held; that is an unbalanced caller.
func (g *Gate) Release() {
	g.mu.Lock()
	g.releaseLocked()
	g.mu.Unlock()
}

func (g *Gate) grantLocked() {
	g.active++
	if g.active > g.maxActive {
		g.maxActive = g.active
	}
}

func (g *Gate) releaseLocked() {
	if g.active <= 0 {
		panic("gate: release without matching acquire")
	}
	g.active--

	front := g.waiters.Front()
	if front == nil {
		return
	}
	g.waiters.Remove(front)
	g.grantLocked()
	close(front.Value.(chan struct{}))
}

// Stats returns a snapshot of the gate counters.
func (g *Gate) Stats() Stats {
	g.mu.Lock()
	defer g.mu.Unlock()

	return Stats{
		Active:    g.active,
		Capacity:  g.capacity,
		Queued:    g.waiters.Len(),
		Available: g.capacity - g.active,
		MaxActive: g.maxActive,
	}
}

// Stats contains gate counters at a point in time.
type Stats struct {
	Active    int `json:"active"`
	Capacity  int `json:"capacity"`
	Queued    int `json:"queued"`
	Available int `json:"available"`
	MaxActive int `json:"max_active"`
}

// Saturated reports whether every slot is held and callers are waiting.
func (s Stats) Saturated() bool {
	return s.Available == 0 && s.Queued > 0
}
