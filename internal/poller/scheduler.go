// internal/poller/scheduler.go
package poller

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/tamzrod/faction-relay/internal/status"
)

// Scheduler runs every poller on its own goroutine.
// Pollers share nothing through the scheduler; a stuck one never delays another.
type Scheduler struct {
	tracker *status.Tracker
	logger  *slog.Logger

	mu      sync.Mutex
	runCtx  context.Context // set by Start
	pollers map[string]*running
}

type running struct {
	p      *Poller
	cancel context.CancelFunc
	done   chan struct{}
}

func NewScheduler(tracker *status.Tracker, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		tracker: tracker,
		logger:  logger,
		pollers: make(map[string]*running),
	}
}

// Add registers a poller. Monitor ids must be unique.
// Pollers added after Start begin immediately.
func (s *Scheduler) Add(p *Poller) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := p.mon.ID
	if _, dup := s.pollers[id]; dup {
		return fmt.Errorf("poller: duplicate monitor id %q", id)
	}
	r := &running{p: p}
	s.pollers[id] = r
	if s.runCtx != nil {
		s.launchLocked(s.runCtx, r)
	}
	return nil
}

// Start launches every registered poller. Calling it twice is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runCtx != nil {
		return
	}
	s.runCtx = ctx
	for _, r := range s.pollers {
		s.launchLocked(ctx, r)
	}
}

func (s *Scheduler) launchLocked(ctx context.Context, r *running) {
	rctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})

	s.logger.Info("monitor started",
		"monitor", r.p.mon.ID,
		"topic", string(r.p.mon.Topic),
		"interval", r.p.mon.Interval,
	)

	go func() {
		defer close(r.done)
		r.p.Run(rctx)
	}()
}

// Stop halts one monitor's timer. A tick already running completes.
func (s *Scheduler) Stop(id string) bool {
	s.mu.Lock()
	r, ok := s.pollers[id]
	s.mu.Unlock()
	if !ok || r.cancel == nil {
		return false
	}
	r.cancel()
	<-r.done
	if s.tracker != nil {
		s.tracker.Disable(id)
	}
	s.logger.Info("monitor stopped", "monitor", id)
	return true
}

// Shutdown halts every timer. It does not wait for in-flight ticks.
func (s *Scheduler) Shutdown() {
	for _, id := range s.IDs() {
		s.Stop(id)
	}
}

// Wait blocks until every timer loop and every in-flight tick has returned.
func (s *Scheduler) Wait() {
	s.mu.Lock()
	rs := make([]*running, 0, len(s.pollers))
	for _, r := range s.pollers {
		rs = append(rs, r)
	}
	s.mu.Unlock()

	for _, r := range rs {
		if r.done != nil {
			<-r.done
		}
		r.p.Drain()
	}
}

// IDs lists registered monitors in order.
func (s *Scheduler) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.pollers))
	for id := range s.pollers {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
