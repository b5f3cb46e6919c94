// internal/poller/builder.go
package poller

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/tamzrod/faction-relay/internal/api"
	"github.com/tamzrod/faction-relay/internal/clock"
	cfg "github.com/tamzrod/faction-relay/internal/config"
	"github.com/tamzrod/faction-relay/internal/diff"
	"github.com/tamzrod/faction-relay/internal/snapshot"
	"github.com/tamzrod/faction-relay/internal/status"
)

// Env is what every poller shares.
type Env struct {
	Fetcher  api.Fetcher
	Clock    clock.Clock
	Tracker  *status.Tracker
	Logger   *slog.Logger
	Handlers map[snapshot.Topic]Handler
}

// MonitorFrom converts validated, normalized config into a Monitor.
func MonitorFrom(m cfg.MonitorConfig) Monitor {
	return Monitor{
		ID:       m.ID,
		Topic:    snapshot.Topic(m.Topic),
		Scope:    m.Scope,
		Channel:  m.Channel,
		Interval: time.Duration(m.IntervalMin * float64(time.Minute)),
		Timeout:  time.Duration(m.TimeoutMs) * time.Millisecond,
		Filter:   diff.Filter{Allow: m.Filter.Allow, Deny: m.Filter.Deny},
	}
}

// Build constructs one poller per configured monitor and registers them
// with a new Scheduler. Nothing is started.
func Build(monitors []cfg.MonitorConfig, env Env) (*Scheduler, error) {
	s := NewScheduler(env.Tracker, env.Logger)

	for _, mc := range monitors {
		m := MonitorFrom(mc)

		h, ok := env.Handlers[m.Topic]
		if !ok {
			return nil, fmt.Errorf("poller: monitor %q: no handler for topic %q", m.ID, m.Topic)
		}

		p, err := New(Config{
			Monitor: m,
			Handler: h,
			Fetcher: env.Fetcher,
			Clock:   env.Clock,
			Tracker: env.Tracker,
			Logger:  env.Logger,
		})
		if err != nil {
			return nil, err
		}

		if err := s.Add(p); err != nil {
			return nil, err
		}
	}

	return s, nil
}
