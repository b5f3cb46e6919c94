// internal/topic/war.go
package topic

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/tamzrod/faction-relay/internal/api"
	"github.com/tamzrod/faction-relay/internal/poller"
	"github.com/tamzrod/faction-relay/internal/snapshot"
	"github.com/tamzrod/faction-relay/internal/war"
)

// War keeps one live scoreboard for the faction's ranked war.
// NoWar publishes empty content, which removes the board.
type War struct{ d Deps }

func (h *War) Request(m poller.Monitor, _ time.Time) api.Request {
	return api.Request{Section: "faction", ID: m.Scope, Selections: []string{"rankedwars", "mainnews"}}
}

func (h *War) Reconcile(ctx context.Context, m poller.Monitor, now time.Time, payload json.RawMessage) error {
	var p api.WarPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("topic: decode war payload: %w", err)
	}
	if p.RankedWars == nil {
		return fmt.Errorf("%w %q", ErrMissingField, "rankedwars")
	}

	in := warInput(p, h.d.factionOf(m), now.Unix())
	res := h.d.Resolver.Resolve(in)

	if _, err := h.d.Registry.Publish(ctx, slotFor(m, "war"), renderWar(res)); err != nil {
		return err
	}

	state := res.State.String()
	if prev, ok := h.d.Cache.Get(m.Key()); ok && prev.Attrs["state"] != state {
		h.d.logger().Info("war state changed",
			"monitor", m.ID,
			"from", prev.Attrs["state"],
			"to", state,
		)
	}
	h.d.Cache.Put(snapshot.Snapshot{
		Key:     m.Key(),
		TakenAt: now,
		Attrs:   map[string]string{"state": state},
	}, snapshot.TTLFor(m.Interval))
	return nil
}

// warInput picks the most recent ranked war our faction is part of.
func warInput(p api.WarPayload, ours int64, now int64) war.Input {
	in := war.Input{Now: now}
	oursKey := strconv.FormatInt(ours, 10)

	for id, rw := range p.RankedWars {
		us, ok := rw.Factions[oursKey]
		if !ok {
			continue
		}
		if in.War != nil && rw.War.Start <= in.War.Start {
			continue
		}

		in.War = &war.Window{
			ID:     id,
			Start:  rw.War.Start,
			End:    rw.War.End,
			Target: rw.War.Target,
			Winner: int64(rw.War.Winner),
		}
		in.Ours = war.Side{ID: ours, Name: us.Name, Score: us.Score}
		in.Theirs = war.Side{}
		for fid, f := range rw.Factions {
			if fid == oursKey {
				continue
			}
			theirID, _ := strconv.ParseInt(fid, 10, 64)
			in.Theirs = war.Side{ID: theirID, Name: f.Name, Score: f.Score}
		}
	}

	for _, n := range p.MainNews {
		in.News = append(in.News, war.NewsEntry{Timestamp: n.Timestamp, Text: stripTags(n.News)})
	}
	sort.Slice(in.News, func(i, j int) bool { return in.News[i].Timestamp < in.News[j].Timestamp })
	return in
}

func renderWar(r war.Result) string {
	var b strings.Builder

	switch r.State {
	case war.NoWar:
		return ""

	case war.Enlisted:
		return "**Ranked war** enlisted, waiting for matchmaking"

	case war.Pending:
		fmt.Fprintf(&b, "**Ranked war** vs %s starts %s (%s)\n", r.Theirs.Name, stamp(r.War.Start, "R"), stamp(r.War.Start, "f"))
		fmt.Fprintf(&b, "Target lead %s", humanize.Comma(r.War.Target))

	case war.Active:
		fmt.Fprintf(&b, "**Ranked war** vs %s\n", r.Theirs.Name)
		fmt.Fprintf(&b, "%s %s : %s %s\n", r.Ours.Name, humanize.Comma(r.Ours.Score), humanize.Comma(r.Theirs.Score), r.Theirs.Name)
		fmt.Fprintf(&b, "Lead %s / %s", humanize.Comma(r.Lead), humanize.Comma(r.War.Target))
		if r.Standing != war.Neutral {
			fmt.Fprintf(&b, " (%s)", r.Standing)
		}
		b.WriteString("\n")
		if r.Projection != nil {
			fmt.Fprintf(&b, "Projected end %s (%s)", stamp(r.Projection.EndsAt, "R"), stamp(r.Projection.EndsAt, "f"))
		} else {
			b.WriteString("No projection yet")
		}

	case war.Ended:
		outcome := "draw"
		switch r.Standing {
		case war.Won:
			outcome = "victory"
		case war.Lost:
			outcome = "defeat"
		}
		fmt.Fprintf(&b, "**Ranked war** vs %s ended: %s\n", r.Theirs.Name, outcome)
		fmt.Fprintf(&b, "Final %s : %s", humanize.Comma(r.Ours.Score), humanize.Comma(r.Theirs.Score))
		if r.War.End > 0 {
			fmt.Fprintf(&b, " (%s)", stamp(r.War.End, "f"))
		}
	}

	return b.String()
}
