package scheduler

import (
	"context"
	"sync"
)

// Gate is a pause switch that many goroutines can wait on.
//
// Waiters block on a channel that is closed when the gate opens, so resuming
// wakes every waiter at once without polling.
type Gate struct {
	mu     sync.Mutex
	open   chan struct{}
	paused bool
}

// NewGate returns an open Gate.
func NewGate() *Gate {
	ch := make(chan struct{})
	close(ch)
	return &Gate{open: ch}
}

// Pause closes the gate. It reports whether the state changed.
func (g *Gate) Pause() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.paused {
		return false
	}
	g.paused = true
	g.open = make(chan struct{})
	return true
}

// Resume opens the gate and releases every waiter.
// It reports whether the state changed.
func (g *Gate) Resume() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.paused {
		return false
	}
	g.paused = false
	close(g.open)
	return true
}

// Paused reports whether the gate is closed.
func (g *Gate) Paused() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.paused
}

// Wait blocks until the gate is open or ctx is done.
func (g *Gate) Wait(ctx context.Context) error {
	g.mu.Lock()
	open := g.open
	g.mu.Unlock()

	select {
	case <-open:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
