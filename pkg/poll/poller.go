// Package poll provides a cancellable fixed-interval poller. It stands in
// for server push: an entity is polled while it is relevant and the poller
// is stopped when its owner goes away.
package poll

import (
	"context"
	"sync"
	"time"
)

// Poller runs a function at a fixed interval until stopped. Results are
// best-effort snapshots: ticks are skipped while a run is still in flight
// rather than queued, and the last delivered value wins.
type Poller struct {
	interval time.Duration
	fn       func(context.Context)

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// New creates a poller that invokes fn every interval.
func New(interval time.Duration, fn func(context.Context)) *Poller {
	return &Poller{
		interval: interval,
		fn:       fn,
	}
}

// Start begins polling. The first run happens immediately, not after the
// first interval. Start is a no-op if the poller is already running.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true

	go p.run(ctx)
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)

	p.fn(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fn(ctx)
		}
	}
}

// Stop cancels polling and waits for an in-flight run to return.
// Stop is idempotent and safe to call on a poller that never started.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.running = false
	p.mu.Unlock()

	cancel()
	<-done
}

// Running reports whether the poller is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}
