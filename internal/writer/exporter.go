// internal/writer/exporter.go
package writer

import (
	"context"
	"log/slog"
	"time"

	"github.com/tamzrod/faction-relay/internal/clock"
	"github.com/tamzrod/faction-relay/internal/status"
)

// Exporter drives the status tracker at 1 Hz and mirrors every planned
// monitor's snapshot into status memory.
type Exporter struct {
	tracker *status.Tracker
	clock   clock.Clock
	logger  *slog.Logger
	writers map[string]StatusWriter // by monitor id

	failing map[string]bool
}

// NewExporter builds one writer per plan on the shared client.
// A nil client with plans is an error; no plans means tick-only.
func NewExporter(tracker *status.Tracker, plans []StatusPlan, cli endpointClient, c clock.Clock, logger *slog.Logger) (*Exporter, error) {
	if c == nil {
		c = clock.Real()
	}
	if logger == nil {
		logger = slog.Default()
	}

	e := &Exporter{
		tracker: tracker,
		clock:   c,
		logger:  logger,
		writers: make(map[string]StatusWriter, len(plans)),
		failing: make(map[string]bool),
	}
	for _, p := range plans {
		w, err := NewMonitorStatusWriter(p, cli)
		if err != nil {
			return nil, err
		}
		e.writers[p.MonitorID] = w
	}
	return e, nil
}

// Run ticks until ctx is done.
func (e *Exporter) Run(ctx context.Context) {
	t := e.clock.NewTicker(time.Second)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			e.Step()
		}
	}
}

// Step advances the tracker by one second and writes every block.
// Failures are logged on the transition into failure only.
func (e *Exporter) Step() {
	e.tracker.Tick()

	for id, w := range e.writers {
		snap, ok := e.tracker.Snapshot(id)
		if !ok {
			continue
		}
		err := w.WriteStatus(snap)
		switch {
		case err != nil && !e.failing[id]:
			e.failing[id] = true
			e.logger.Warn("status export failed", "monitor", id, "error", err)
		case err == nil && e.failing[id]:
			e.failing[id] = false
			e.logger.Info("status export recovered", "monitor", id)
		}
	}
}
