// internal/poller/types.go
package poller

import (
	"context"
	"encoding/json"
	"time"

	"github.com/tamzrod/faction-relay/internal/api"
	"github.com/tamzrod/faction-relay/internal/diff"
	"github.com/tamzrod/faction-relay/internal/snapshot"
)

// Monitor is one polled topic. Immutable after startup.
type Monitor struct {
	ID       string
	Topic    snapshot.Topic
	Scope    string // faction id; empty means the key owner's faction
	Channel  string
	Interval time.Duration
	Timeout  time.Duration // bounds the fetch and the reconcile separately
	Filter   diff.Filter
}

// Key is the snapshot cache key for the monitor.
func (m Monitor) Key() snapshot.Key {
	return snapshot.Key{Topic: m.Topic, Scope: m.Scope}
}

// Handler turns fetched payloads into published notifications.
// One per topic; shared by every monitor of that topic.
type Handler interface {
	// Request describes the fetch for this tick.
	Request(m Monitor, now time.Time) api.Request

	// Reconcile diffs the payload against cached state and publishes.
	// An error means nothing was committed for this tick.
	Reconcile(ctx context.Context, m Monitor, now time.Time, payload json.RawMessage) error
}

// Outcome labels a finished tick for metrics and logs.
type Outcome string

const (
	OutcomeOK             Outcome = "ok"
	OutcomeFetchError     Outcome = "fetch_error"
	OutcomeReconcileError Outcome = "reconcile_error"
)
