// Package gate implements the counting permit pool that bounds how many
// requests execute concurrently. Acquisition blocks the task goroutine, never
// the submitter.
package gate

import "context"

// Gate is a permit pool with fixed capacity. One permit must be acquired
// before a task performs its remote call and released when it completes.
type Gate struct {
	permits chan struct{}
}

// New creates a Gate with the given capacity. A capacity below one is
// clamped to one so the pool can always make progress.
func New(capacity int) *Gate {
	if capacity < 1 {
		capacity = 1
	}

	return &Gate{permits: make(chan struct{}, capacity)}
}

// Capacity returns the total number of permits.
func (g *Gate) Capacity() int { return cap(g.permits) }

// InFlight returns the number of permits currently held.
func (g *Gate) InFlight() int { return len(g.permits) }

// Acquire blocks until a permit is available or ctx is done.
func (g *Gate) Acquire(ctx context.Context) error {
	select {
	case g.permits <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a permit to the pool. It must be called exactly once per
// successful Acquire; releasing an unheld permit panics.
func (g *Gate) Release() {
	select {
	case <-g.permits:
	default:
		panic("gate: release without acquire")
	}
}
