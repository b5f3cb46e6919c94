// internal/topic/liveness.go
package topic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/tamzrod/faction-relay/internal/api"
	"github.com/tamzrod/faction-relay/internal/poller"
	"github.com/tamzrod/faction-relay/internal/status"
)

// maxSkew is how far the API clock may drift before the board says so.
const maxSkew = 2 * time.Minute

// Liveness probes the API clock and publishes the health of every monitor.
type Liveness struct{ d Deps }

func (h *Liveness) Request(_ poller.Monitor, _ time.Time) api.Request {
	return api.Request{Section: "torn", Selections: []string{"timestamp"}}
}

func (h *Liveness) Reconcile(ctx context.Context, m poller.Monitor, now time.Time, payload json.RawMessage) error {
	var ts int64
	if err := decodeField(payload, "timestamp", &ts); err != nil {
		return err
	}

	var entries []status.Entry
	if h.d.Tracker != nil {
		entries = h.d.Tracker.All()
	}

	_, err := h.d.Registry.Publish(ctx, slotFor(m, "status"), renderLiveness(time.Unix(ts, 0), now, entries))
	return err
}

func renderLiveness(apiNow, now time.Time, entries []status.Entry) string {
	var b strings.Builder

	b.WriteString("**Relay status**\n")
	skew := now.Sub(apiNow)
	if skew < 0 {
		skew = -skew
	}
	if skew > maxSkew {
		fmt.Fprintf(&b, "API reachable, clock off by %s\n", humanize.RelTime(apiNow, now, "behind", "ahead"))
	} else {
		b.WriteString("API reachable\n")
	}

	for _, e := range entries {
		fmt.Fprintf(&b, "`%s` %s", e.ID, status.HealthLabel(e.Snap.Health))
		switch e.Snap.Health {
		case status.HealthError, status.HealthStale:
			if e.Snap.LastErrorCode != 0 {
				fmt.Fprintf(&b, " (code %d: %s)", e.Snap.LastErrorCode, e.Snap.LastError)
			}
		}
		if !e.Snap.LastSuccess.IsZero() {
			fmt.Fprintf(&b, ", last ok %s", stamp(e.Snap.LastSuccess.Unix(), "R"))
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}
