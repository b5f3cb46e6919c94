// internal/topic/retal.go
package topic

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/tamzrod/faction-relay/internal/api"
	"github.com/tamzrod/faction-relay/internal/diff"
	"github.com/tamzrod/faction-relay/internal/notice"
	"github.com/tamzrod/faction-relay/internal/poller"
	"github.com/tamzrod/faction-relay/internal/snapshot"
)

// hostileResults are attack outcomes that open a retaliation window.
var hostileResults = map[string]bool{
	"attacked":     true,
	"mugged":       true,
	"hospitalized": true,
}

// Retal opens an ephemeral notice for each incoming hit on a member.
type Retal struct{ d Deps }

func (h *Retal) Request(m poller.Monitor, _ time.Time) api.Request {
	req := api.Request{Section: "faction", ID: m.Scope, Selections: []string{"attacks"}}
	if prev, ok := h.d.Cache.Get(m.Key()); ok {
		req.From = prev.Cursor
	}
	return req
}

// Reconcile reads the cursor independently of Request, so two
// overlapping ticks of one monitor may both open notices for the same
// window. That is tolerated.
func (h *Retal) Reconcile(ctx context.Context, m poller.Monitor, now time.Time, payload json.RawMessage) error {
	var attacks map[string]api.Attack
	if err := decodeField(payload, "attacks", &attacks); err != nil {
		return err
	}

	ours := h.d.factionOf(m)
	byID := make(map[string]api.Attack, len(attacks))
	events := make([]diff.Event, 0, len(attacks))
	for id, a := range attacks {
		if !qualifies(a, ours) {
			continue
		}
		byID[id] = a
		events = append(events, diff.Event{ID: id, Timestamp: a.Ended, Category: a.Result})
	}

	ttl := snapshot.TTLFor(m.Interval)
	prev, ok := h.d.Cache.Get(m.Key())
	if !ok {
		h.d.coldStart(m)
		h.d.Cache.Put(snapshot.Snapshot{Key: m.Key(), TakenAt: now, Cursor: diff.Advance(now)}, ttl)
		return nil
	}

	next := snapshot.Snapshot{Key: m.Key(), TakenAt: now, Cursor: diff.Advance(now)}

	// attack id -> timestamp, for hits announced above a rewound cursor
	opened := make(map[string]string, len(prev.Attrs))
	for id, ts := range prev.Attrs {
		opened[id] = ts
	}

	for _, ev := range m.Filter.Select(diff.Since(events, prev.Cursor)) {
		if _, done := opened[ev.ID]; done {
			continue
		}
		a := byID[ev.ID]
		content := notice.Content{
			Active:  renderRetal(a),
			Expired: renderRetalExpired(a),
		}
		if _, err := h.d.Notices.Open(ctx, m.Channel, content); err != nil {
			// keep the unopened remainder for the next tick
			if ev.Timestamp-1 > prev.Cursor {
				next.Cursor = ev.Timestamp - 1
			} else {
				next.Cursor = prev.Cursor
			}
			next.Attrs = openedAbove(opened, next.Cursor)
			h.d.Cache.Put(next, ttl)
			return fmt.Errorf("topic: retal notice for attack %s: %w", ev.ID, err)
		}
		opened[ev.ID] = strconv.FormatInt(ev.Timestamp, 10)
	}

	h.d.Cache.Put(next, ttl)
	return nil
}

// openedAbove keeps the ids whose timestamp the cursor will replay.
func openedAbove(opened map[string]string, cursor int64) map[string]string {
	var out map[string]string
	for id, ts := range opened {
		n, err := strconv.ParseInt(ts, 10, 64)
		if err != nil || n <= cursor {
			continue
		}
		if out == nil {
			out = make(map[string]string)
		}
		out[id] = ts
	}
	return out
}

// qualifies: a visible attacker from outside our faction hit one of ours.
func qualifies(a api.Attack, ours int64) bool {
	if int64(a.DefenderFaction) != ours {
		return false
	}
	if int64(a.AttackerFaction) == ours {
		return false
	}
	if a.AttackerID == 0 || a.Stealthed != 0 {
		return false
	}
	return hostileResults[strings.ToLower(a.Result)]
}

func renderRetal(a api.Attack) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Retal available** on %s", profileLink(a.AttackerName, int64(a.AttackerID)))
	if a.AttackerFactionName != "" {
		fmt.Fprintf(&b, " of %s", a.AttackerFactionName)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s at %s", a.Result, a.DefenderName, stamp(a.Ended, "t"))
	if a.RespectGain > 0 {
		fmt.Fprintf(&b, " for %s respect", humanize.FtoaWithDigits(a.RespectGain, 2))
	}
	if a.Chain > 0 {
		fmt.Fprintf(&b, " (chain %s)", humanize.Comma(int64(a.Chain)))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Window closes %s: https://www.torn.com/loader.php?sid=attack&user2ID=%d",
		stamp(a.Ended+int64(notice.DefaultExpireAfter/time.Second), "R"), int64(a.AttackerID))
	return b.String()
}

func renderRetalExpired(a api.Attack) string {
	return fmt.Sprintf("~~Retal on %s [%d]~~ expired", a.AttackerName, int64(a.AttackerID))
}
