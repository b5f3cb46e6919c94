// internal/poller/runner.go
package poller

import "context"

// Run ticks once immediately and then on every interval until ctx is done.
// Each tick runs in its own goroutine on a context that ignores ctx's
// cancellation: stopping prevents the next tick, never aborts one in flight.
// A tick that outlives the interval may overlap the next one.
func (p *Poller) Run(ctx context.Context) {
	tickCtx := context.WithoutCancel(ctx)

	p.spawn(tickCtx)

	ticker := p.clock.NewTicker(p.mon.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.spawn(tickCtx)
		}
	}
}

func (p *Poller) spawn(ctx context.Context) {
	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()
		_ = p.Tick(ctx) // logged and recorded inside Tick
	}()
}

// Drain blocks until every started tick has returned.
func (p *Poller) Drain() {
	p.inflight.Wait()
}
