// internal/topic/armory.go
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

// Armory relays armory news through the monitor's category filter
// into a rolling log.
type Armory struct{ d Deps }

func (h *Armory) Request(m poller.Monitor, _ time.Time) api.Request {
	req := api.Request{Section: "faction", ID: m.Scope, Selections: []string{"armorynews"}}
	if prev, ok := h.d.Cache.Get(m.Key()); ok {
		req.From = prev.Cursor
	}
	return req
}

func (h *Armory) Reconcile(ctx context.Context, m poller.Monitor, now time.Time, payload json.RawMessage) error {
	var news map[string]api.NewsEntry
	if err := decodeField(payload, "armorynews", &news); err != nil {
		return err
	}

	events := make([]diff.Event, 0, len(news))
	for id, n := range news {
		text := stripTags(n.News)
		action, item := parseArmory(text)
		events = append(events, diff.Event{
			ID:        id,
			Timestamp: n.Timestamp,
			Category:  strings.TrimSpace(action + " " + item),
			Text:      text,
		})
	}

	return reconcileFeed(ctx, h.d, m, now, events, "armory", "Armory")
}

// reconcileFeed is the shared cursor + filter + rolling-log path for feeds.
func reconcileFeed(ctx context.Context, d Deps, m poller.Monitor, now time.Time, events []diff.Event, slot, title string) error {
	ttl := snapshot.TTLFor(m.Interval)

	prev, ok := d.Cache.Get(m.Key())
	if !ok {
		d.coldStart(m)
		d.Cache.Put(snapshot.Snapshot{Key: m.Key(), TakenAt: now, Cursor: diff.Advance(now)}, ttl)
		return nil
	}

	next := prev.Clone()
	next.TakenAt = now
	next.Cursor = diff.Advance(now)

	fresh := m.Filter.Select(diff.Since(events, prev.Cursor))
	if len(fresh) == 0 {
		d.Cache.Put(next, ttl)
		return nil
	}

	add := make([]string, 0, len(fresh))
	for _, ev := range fresh {
		add = append(add, fmt.Sprintf("%s %s", stamp(ev.Timestamp, "t"), ev.Text))
	}
	next.Lines = roll(prev.Lines, add)

	if _, err := d.Registry.Publish(ctx, slotFor(m, slot), rollingLog(title, next.Lines)); err != nil {
		return err
	}
	d.Cache.Put(next, ttl)
	return nil
}

// armoryActions maps news phrasing to a short action verb.
// Longer phrases first: "filled one of the faction's" before "filled".
var armoryActions = []struct{ phrase, verb string }{
	{"used one of the faction's", "used"},
	{"filled one of the faction's", "filled"},
	{"deposited", "deposited"},
	{"donated", "deposited"},
	{"loaned", "loaned"},
	{"returned", "returned"},
	{"retrieved", "retrieved"},
	{"gave", "gave"},
}

// parseArmory extracts the action and item from a tag-stripped news line,
// e.g. "Bob used one of the faction's Xanax items." -> ("used", "Xanax").
// Unknown phrasing returns ("", "").
func parseArmory(text string) (action, item string) {
	lower := strings.ToLower(text)
	for _, a := range armoryActions {
		i := strings.Index(lower, " "+a.phrase+" ")
		if i < 0 || len(lower) != len(text) {
			continue
		}
		rest := text[i+len(a.phrase)+2:]
		return a.verb, cleanItem(rest)
	}
	return "", ""
}

func cleanItem(s string) string {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "."))

	lower := strings.ToLower(s)
	for _, sep := range []string{" back to ", " to ", " from ", " for "} {
		if i := strings.Index(lower, sep); i >= 0 {
			s, lower = s[:i], lower[:i]
		}
	}
	for _, suf := range []string{" items", " item"} {
		if strings.HasSuffix(lower, suf) {
			s = s[:len(s)-len(suf)]
			lower = lower[:len(lower)-len(suf)]
		}
	}

	// "5 x Blood Bag : A+" -> "Blood Bag : A+"
	if i := strings.Index(lower, " x "); i > 0 && isDigits(s[:i]) {
		s = s[i+3:]
	}
	return strings.TrimSpace(s)
}

func isDigits(s string) bool {
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
