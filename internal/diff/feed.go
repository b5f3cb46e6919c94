// internal/diff/feed.go
package diff

import (
	"sort"
	"strings"
	"time"
)

// Event is one entry of a narrative feed (armory news, attack log).
type Event struct {
	ID        string
	Timestamp int64
	Category  string
	Text      string
}

// Since returns the events strictly newer than cursor, oldest first.
func Since(events []Event, cursor int64) []Event {
	var out []Event
	for _, ev := range events {
		if ev.Timestamp > cursor {
			out = append(out, ev)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp < out[j].Timestamp
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Advance returns the cursor to store after a processed batch.
// It is always now, not the newest event's timestamp: the feed keeps
// moving when empty, and an event stamped just before now but published
// late can be missed or repeated near the boundary.
func Advance(now time.Time) int64 {
	return now.Unix()
}

// Filter selects feed events by category. Matching is case-insensitive
// substring. An empty Allow admits everything; Deny always wins.
type Filter struct {
	Allow []string
	Deny  []string
}

func (f Filter) Match(category string) bool {
	c := strings.ToLower(category)
	for _, d := range f.Deny {
		if d != "" && strings.Contains(c, strings.ToLower(d)) {
			return false
		}
	}
	if len(f.Allow) == 0 {
		return true
	}
	for _, a := range f.Allow {
		if a != "" && strings.Contains(c, strings.ToLower(a)) {
			return true
		}
	}
	return false
}

// Select applies the filter to events, preserving order.
func (f Filter) Select(events []Event) []Event {
	var out []Event
	for _, ev := range events {
		if f.Match(ev.Category) {
			out = append(out, ev)
		}
	}
	return out
}
