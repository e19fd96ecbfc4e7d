package gate

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNew_DefaultCapacity(t *testing.T) {
	g := New(0)

	if g.Capacity() != DefaultCapacity {
		t.Errorf("Capacity() = %d, want %d", g.Capacity(), DefaultCapacity)
	}
}

func TestGate_AcquireRelease(t *testing.T) {
	g := New(2)
	ctx := context.Background()

	if err := g.Acquire(ctx); err != nil {
		t.Fatalf("first Acquire() error = %v", err)
	}
	if err := g.Acquire(ctx); err != nil {
		t.Fatalf("second Acquire() error = %v", err)
	}

	stats := g.Stats()
	if stats.Active != 2 || stats.Available != 0 {
		t.Errorf("Stats() = %+v, want active=2 available=0", stats)
	}

	if g.TryAcquire() {
		t.Error("TryAcquire() succeeded at capacity")
	}

	g.Release()
	g.Release()

	stats = g.Stats()
	if stats.Active != 0 || stats.Available != 2 || stats.Queued != 0 {
		t.Errorf("Stats() = %+v, want empty gate", stats)
	}
	if stats.MaxActive != 2 {
		t.Errorf("MaxActive = %d, want 2", stats.MaxActive)
	}
}

func TestGate_ReleaseWithoutAcquirePanics(t *testing.T) {
	g := New(1)

	defer func() {
		if recover() == nil {
			t.Error("Release() on empty gate did not panic")
		}
	}()
	g.Release()
}

func waitQueued(t *testing.T, g *Gate, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for g.Stats().Queued != n {
		if time.Now().After(deadline) {
			t.Fatalf("queued = %d, want %d", g.Stats().Queued, n)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestGate_FIFOOrder(t *testing.T) {
	g := New(1)
	ctx := context.Background()

	if err := g.Acquire(ctx); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	const waiters = 5
	order := make(chan int, waiters)

	for i := 0; i < waiters; i++ {
		go func(i int) {
			if err := g.Acquire(ctx); err != nil {
				t.Errorf("waiter %d Acquire() error = %v", i, err)
				return
			}
			order <- i
		}(i)
		// Enqueue one at a time so arrival order is known.
		waitQueued(t, g, i+1)
	}

	for want := 0; want < waiters; want++ {
		g.Release()
		select {
		case got := <-order:
			if got != want {
				t.Fatalf("granted waiter %d, want %d", got, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("waiter %d was never granted", want)
		}
	}

	g.Release()
	if stats := g.Stats(); stats.Active != 0 || stats.Queued != 0 {
		t.Errorf("Stats() = %+v, want empty gate", stats)
	}
}

func TestGate_HandOffKeepsActive(t *testing.T) {
	g := New(1)
	ctx := context.Background()
	_ = g.Acquire(ctx)

	granted := make(chan struct{})
	go func() {
		_ = g.Acquire(ctx)
		close(granted)
	}()
	waitQueued(t, g, 1)

	g.Release()
	<-granted

	stats := g.Stats()
	if stats.Active != 1 || stats.Queued != 0 {
		t.Errorf("Stats() = %+v, want active=1 queued=0", stats)
	}
}

func TestGate_TryAcquireDoesNotJumpQueue(t *testing.T) {
	g := New(1)
	ctx := context.Background()
	_ = g.Acquire(ctx)

	go func() { _ = g.Acquire(ctx) }()
	waitQueued(t, g, 1)

	g.Release()
	if g.TryAcquire() {
		t.Error("TryAcquire() took a slot handed to a queued waiter")
	}
}

func TestGate_ContextCancellation(t *testing.T) {
	g := New(1)
	_ = g.Acquire(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	if err := g.Acquire(ctx); err != context.Canceled {
		t.Errorf("Acquire() error = %v, want context.Canceled", err)
	}

	stats := g.Stats()
	if stats.Queued != 0 {
		t.Errorf("Queued = %d, want 0 after cancellation", stats.Queued)
	}
	if stats.Active != 1 {
		t.Errorf("Active = %d, want 1", stats.Active)
	}

	g.Release()
	if !g.TryAcquire() {
		t.Error("TryAcquire() failed after release")
	}
}

func TestGate_CapacityInvariant(t *testing.T) {
	const capacity = 4
	g := New(capacity)

	var (
		wg      sync.WaitGroup
		current int32
		peak    int32
	)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := g.Acquire(context.Background()); err != nil {
				t.Errorf("Acquire() error = %v", err)
				return
			}
			defer g.Release()

			n := atomic.AddInt32(&current, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}

			stats := g.Stats()
			if stats.Active > capacity || stats.Active < 0 {
				t.Errorf("Active = %d outside [0, %d]", stats.Active, capacity)
			}

			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&current, -1)
		}()
	}
	wg.Wait()

	if p := atomic.LoadInt32(&peak); p > capacity {
		t.Errorf("peak concurrency = %d, want <= %d", p, capacity)
	}
	if stats := g.Stats(); stats.Active != 0 || stats.Queued != 0 {
		t.Errorf("Stats() = %+v, want empty gate", stats)
	}
}

func TestStats_Saturated(t *testing.T) {
	tests := []struct {
		name  string
		stats Stats
		want  bool
	}{
		{"idle", Stats{Capacity: 2, Available: 2}, false},
		{"full no waiters", Stats{Capacity: 2, Active: 2}, false},
		{"full with waiters", Stats{Capacity: 2, Active: 2, Queued: 3}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stats.Saturated(); got != tt.want {
				t.Errorf("Saturated() = %v, want %v", got, tt.want)
			}
		})
	}
}
