// internal/poller/poller.go
package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tamzrod/faction-relay/internal/api"
	"github.com/tamzrod/faction-relay/internal/clock"
	"github.com/tamzrod/faction-relay/internal/metrics"
	"github.com/tamzrod/faction-relay/internal/status"
)

// DefaultTimeout bounds a tick when the monitor sets none.
const DefaultTimeout = 30 * time.Second

// Config is the minimal runtime wiring a poller needs.
type Config struct {
	Monitor Monitor
	Handler Handler
	Fetcher api.Fetcher
	Clock   clock.Clock
	Tracker *status.Tracker // optional
	Logger  *slog.Logger
}

// Poller is a dumb, clock-driven monitor runner.
type Poller struct {
	mon     Monitor
	handler Handler
	fetcher api.Fetcher
	clock   clock.Clock
	tracker *status.Tracker
	logger  *slog.Logger

	inflight sync.WaitGroup
}

// New creates a poller with immutable config.
func New(cfg Config) (*Poller, error) {
	if cfg.Monitor.ID == "" {
		return nil, errors.New("poller: monitor id required")
	}
	if cfg.Monitor.Interval <= 0 {
		return nil, fmt.Errorf("poller: monitor %q: interval must be > 0", cfg.Monitor.ID)
	}
	if cfg.Handler == nil {
		return nil, fmt.Errorf("poller: monitor %q: handler required", cfg.Monitor.ID)
	}
	if cfg.Fetcher == nil {
		return nil, fmt.Errorf("poller: monitor %q: fetcher required", cfg.Monitor.ID)
	}

	mon := cfg.Monitor
	if mon.Timeout <= 0 {
		mon.Timeout = DefaultTimeout
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.Tracker != nil {
		cfg.Tracker.Register(mon.ID, mon.Interval)
	}

	return &Poller{
		mon:     mon,
		handler: cfg.Handler,
		fetcher: cfg.Fetcher,
		clock:   clk,
		tracker: cfg.Tracker,
		logger: logger.With(
			"monitor", mon.ID,
			"topic", string(mon.Topic),
			"scope", mon.Scope,
		),
	}, nil
}

// Tick performs exactly one fetch-and-reconcile cycle.
// A failed fetch leaves every cache entry and slot untouched.
func (p *Poller) Tick(ctx context.Context) error {
	started := time.Now()
	now := p.clock.Now()

	defer func() {
		metrics.TickDuration.WithLabelValues(p.mon.ID).Observe(time.Since(started).Seconds())
	}()

	fctx, cancel := context.WithTimeout(ctx, p.mon.Timeout)
	res := p.fetcher.Fetch(fctx, p.handler.Request(p.mon, now))
	cancel()

	if !res.OK {
		err := res.Err()
		p.finish(OutcomeFetchError, err)
		p.logger.Warn("fetch failed, skipping tick",
			"code", status.ErrorCode(err),
			"error", err,
		)
		return err
	}

	rctx, cancel := context.WithTimeout(ctx, p.mon.Timeout)
	defer cancel()

	if err := p.handler.Reconcile(rctx, p.mon, now, res.Payload); err != nil {
		err = fmt.Errorf("poller: %s: reconcile: %w", p.mon.ID, err)
		p.finish(OutcomeReconcileError, err)
		p.logger.Warn("reconcile failed", "error", err)
		return err
	}

	p.finish(OutcomeOK, nil)
	return nil
}

func (p *Poller) finish(o Outcome, err error) {
	metrics.TicksTotal.WithLabelValues(p.mon.ID, string(o)).Inc()
	if p.tracker != nil {
		p.tracker.Record(p.mon.ID, err)
	}
}
