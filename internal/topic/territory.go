// internal/topic/territory.go
package topic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/tamzrod/faction-relay/internal/api"
	"github.com/tamzrod/faction-relay/internal/diff"
	"github.com/tamzrod/faction-relay/internal/poller"
	"github.com/tamzrod/faction-relay/internal/snapshot"
)

// Territory reports territory codes gained and lost by a faction.
type Territory struct{ d Deps }

func (h *Territory) Request(m poller.Monitor, _ time.Time) api.Request {
	return api.Request{Section: "faction", ID: m.Scope, Selections: []string{"territory"}}
}

func (h *Territory) Reconcile(ctx context.Context, m poller.Monitor, now time.Time, payload json.RawMessage) error {
	var held map[string]api.Territory
	if err := decodeField(payload, "territory", &held); err != nil {
		return err
	}

	curr := snapshot.NewSet()
	for code := range held {
		curr[code] = struct{}{}
	}
	next := snapshot.Snapshot{Key: m.Key(), TakenAt: now, Members: curr}
	ttl := snapshot.TTLFor(m.Interval)

	prev, ok := h.d.Cache.Get(m.Key())
	if !ok {
		h.d.coldStart(m)
		h.d.Cache.Put(next, ttl)
		return nil
	}

	delta := diff.Sets(prev.Members, curr)
	if delta.Empty() {
		h.d.Cache.Put(next, ttl)
		return nil
	}

	content := renderTerritory(m.Scope, delta, held, now)
	if _, err := h.d.Registry.Publish(ctx, slotFor(m, "territory"), content); err != nil {
		return err
	}
	h.d.Cache.Put(next, ttl)
	return nil
}

func renderTerritory(scope string, delta diff.SetDelta, held map[string]api.Territory, now time.Time) string {
	var b strings.Builder

	who := "Faction"
	if scope != "" {
		who = "Faction " + scope
	}
	fmt.Fprintf(&b, "**Territory update** %s now holds %d (%s)\n", who, len(held), stamp(now.Unix(), "f"))

	if len(delta.Added) > 0 {
		parts := make([]string, 0, len(delta.Added))
		for _, code := range delta.Added {
			t := held[code]
			part := fmt.Sprintf("%s (sector %d, %s respect/day)", code, t.Sector, humanize.Comma(int64(t.DailyRespect)))
			if t.Racket != nil {
				part += fmt.Sprintf(" racket %s L%d", t.Racket.Name, t.Racket.Level)
			}
			parts = append(parts, part)
		}
		fmt.Fprintf(&b, "Gained: %s\n", strings.Join(parts, ", "))
	}
	if len(delta.Removed) > 0 {
		fmt.Fprintf(&b, "Lost: %s\n", strings.Join(delta.Removed, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}
