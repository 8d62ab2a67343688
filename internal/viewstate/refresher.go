package viewstate

import (
	"context"
	"sync"
	"time"
)

// Refresher is an explicitly stoppable repeating task, used for the
// order-tracking auto-refresh loop. It is never detached: the loop exits as
// soon as Stop is called or the owning context is cancelled, whichever
// comes first.
type Refresher struct {
	interval time.Duration
	fn       func(ctx context.Context)

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// NewRefresher creates a Refresher that invokes fn every interval while
// running.
func NewRefresher(interval time.Duration, fn func(ctx context.Context)) *Refresher {
	return &Refresher{interval: interval, fn: fn}
}

// Start launches the refresh loop bound to ctx. Starting an already-running
// Refresher is a no-op.
func (r *Refresher) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	r.running = true

	go r.loop(loopCtx, r.done)
}

func (r *Refresher) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.fn(ctx)
		}
	}
}

// Stop halts the loop and waits for the in-flight iteration, if any, to
// return. Stopping a stopped Refresher is a no-op.
func (r *Refresher) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	cancel := r.cancel
	done := r.done
	r.running = false
	r.mu.Unlock()

	cancel()
	<-done
}

// Running reports whether the loop is active.
func (r *Refresher) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}
