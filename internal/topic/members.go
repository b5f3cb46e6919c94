// internal/topic/members.go
package topic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tamzrod/faction-relay/internal/api"
	"github.com/tamzrod/faction-relay/internal/diff"
	"github.com/tamzrod/faction-relay/internal/poller"
	"github.com/tamzrod/faction-relay/internal/snapshot"
)

// Members logs joins, departures and status changes of faction members.
// The monitor's filter applies to the new status of a change; joins and
// departures always pass.
type Members struct{ d Deps }

// attr values are "name\tstate"
const attrSep = "\t"

func (h *Members) Request(m poller.Monitor, _ time.Time) api.Request {
	return api.Request{Section: "faction", ID: m.Scope, Selections: []string{"basic"}}
}

func (h *Members) Reconcile(ctx context.Context, m poller.Monitor, now time.Time, payload json.RawMessage) error {
	var members map[string]api.Member
	if err := decodeField(payload, "members", &members); err != nil {
		return err
	}

	curr := make(map[string]string, len(members))
	for id, mem := range members {
		curr[id] = mem.Name + attrSep + mem.Status.State
	}
	ttl := snapshot.TTLFor(m.Interval)

	prev, ok := h.d.Cache.Get(m.Key())
	if !ok {
		h.d.coldStart(m)
		h.d.Cache.Put(snapshot.Snapshot{Key: m.Key(), TakenAt: now, Attrs: curr}, ttl)
		return nil
	}

	next := prev.Clone()
	next.TakenAt = now
	next.Attrs = curr

	lines := memberLines(prev.Attrs, curr, m.Filter, now)
	if len(lines) == 0 {
		h.d.Cache.Put(next, ttl)
		return nil
	}
	next.Lines = roll(prev.Lines, lines)

	if _, err := h.d.Registry.Publish(ctx, slotFor(m, "members"), rollingLog("Members", next.Lines)); err != nil {
		return err
	}
	h.d.Cache.Put(next, ttl)
	return nil
}

func memberLines(prev, curr map[string]string, f diff.Filter, now time.Time) []string {
	d := diff.Keyed(prev, curr)
	at := stamp(now.Unix(), "t")
	var out []string

	for _, id := range d.Added {
		name, state := splitAttr(curr[id])
		out = append(out, fmt.Sprintf("%s %s [%s] joined (%s)", at, name, id, state))
	}
	for _, id := range d.Removed {
		name, _ := splitAttr(prev[id])
		out = append(out, fmt.Sprintf("%s %s [%s] left", at, name, id))
	}
	for _, c := range d.Changed {
		oldName, oldState := splitAttr(c.From)
		newName, newState := splitAttr(c.To)
		if oldName != newName {
			out = append(out, fmt.Sprintf("%s %s [%s] renamed to %s", at, oldName, c.Key, newName))
		}
		if oldState != newState && f.Match(newState) {
			out = append(out, fmt.Sprintf("%s %s [%s] %s -> %s", at, newName, c.Key, oldState, newState))
		}
	}
	return out
}

func splitAttr(v string) (name, state string) {
	name, state, _ = strings.Cut(v, attrSep)
	return name, state
}
