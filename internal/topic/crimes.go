// internal/topic/crimes.go
package topic

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tamzrod/faction-relay/internal/api"
	"github.com/tamzrod/faction-relay/internal/poller"
	"github.com/tamzrod/faction-relay/internal/snapshot"
)

const (
	crimePlanning = "planning"
	crimeReady    = "ready"
)

// Crimes keeps a board of organized crimes still waiting to be initiated.
// Crimes that became ready since the last tick are marked new.
// An empty board removes the message.
type Crimes struct{ d Deps }

func (h *Crimes) Request(m poller.Monitor, _ time.Time) api.Request {
	return api.Request{Section: "faction", ID: m.Scope, Selections: []string{"crimes"}}
}

type boardRow struct {
	id    string
	crime api.Crime
	fresh bool
}

func (h *Crimes) Reconcile(ctx context.Context, m poller.Monitor, now time.Time, payload json.RawMessage) error {
	var crimes map[string]api.Crime
	if err := decodeField(payload, "crimes", &crimes); err != nil {
		return err
	}

	curr := make(map[string]string)
	for id, c := range crimes {
		if c.Initiated != 0 || c.TimeCompleted != 0 {
			continue
		}
		if c.TimeReady <= now.Unix() {
			curr[id] = crimeReady
		} else {
			curr[id] = crimePlanning
		}
	}
	next := snapshot.Snapshot{Key: m.Key(), TakenAt: now, Attrs: curr}
	ttl := snapshot.TTLFor(m.Interval)

	prev, ok := h.d.Cache.Get(m.Key())
	if !ok {
		h.d.coldStart(m)
		h.d.Cache.Put(next, ttl)
		return nil
	}

	var planning int
	var ready []boardRow
	for id, state := range curr {
		if state == crimePlanning {
			planning++
			continue
		}
		ready = append(ready, boardRow{
			id:    id,
			crime: crimes[id],
			fresh: prev.Attrs[id] != crimeReady,
		})
	}
	sort.Slice(ready, func(i, j int) bool {
		if ready[i].crime.TimeReady != ready[j].crime.TimeReady {
			return ready[i].crime.TimeReady < ready[j].crime.TimeReady
		}
		return ready[i].id < ready[j].id
	})

	if _, err := h.d.Registry.Publish(ctx, slotFor(m, "crimes"), renderCrimes(planning, ready)); err != nil {
		return err
	}
	h.d.Cache.Put(next, ttl)
	return nil
}

func renderCrimes(planning int, ready []boardRow) string {
	if planning == 0 && len(ready) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Organized crimes** %d planning, %d ready", planning, len(ready))
	for _, r := range ready {
		fmt.Fprintf(&b, "\n%s #%s, %d participants, ready %s", r.crime.Name, r.id, len(r.crime.Participants), stamp(r.crime.TimeReady, "R"))
		if r.fresh {
			b.WriteString(" (new)")
		}
	}
	return b.String()
}
