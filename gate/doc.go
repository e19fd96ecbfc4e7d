// Package gate provides a bounded-concurrency admission gate.
//
// A Gate enforces a hard ceiling on the number of operations in flight.
// Callers beyond the ceiling are queued and granted slots strictly in arrival
// order: a released slot is handed directly to the oldest waiter, so a newer
// caller can never overtake a queued one.
//
// The waiter queue is unbounded. The gate itself never rejects a caller; the
// only way out of a blocked Acquire is cancellation of the caller's context.
//
//	g := gate.New(5)
//
//	if err := g.Acquire(ctx); err != nil {
//	    return err
//	}
//	defer g.Release()
//
// Stats returns a point-in-time snapshot intended for diagnostics only.
package gate
