// internal/topic/deps.go
package topic

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/tamzrod/faction-relay/internal/message"
	"github.com/tamzrod/faction-relay/internal/metrics"
	"github.com/tamzrod/faction-relay/internal/notice"
	"github.com/tamzrod/faction-relay/internal/poller"
	"github.com/tamzrod/faction-relay/internal/snapshot"
	"github.com/tamzrod/faction-relay/internal/status"
	"github.com/tamzrod/faction-relay/internal/war"
)

// Deps is the shared state every handler reads and writes.
type Deps struct {
	Cache     *snapshot.Cache
	Registry  *message.Registry
	Notices   *notice.Manager
	Tracker   *status.Tracker
	Resolver  *war.Resolver
	Logger    *slog.Logger
	FactionID int64 // our faction
}

func (d Deps) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

// Handlers returns one handler per topic, all sharing d.
func Handlers(d Deps) map[snapshot.Topic]poller.Handler {
	if d.Resolver == nil {
		d.Resolver = war.NewResolver(nil)
	}
	return map[snapshot.Topic]poller.Handler{
		snapshot.TopicTerritory: &Territory{d: d},
		snapshot.TopicArmory:    &Armory{d: d},
		snapshot.TopicRetal:     &Retal{d: d},
		snapshot.TopicWar:       &War{d: d},
		snapshot.TopicMembers:   &Members{d: d},
		snapshot.TopicCrimes:    &Crimes{d: d},
		snapshot.TopicLiveness:  &Liveness{d: d},
	}
}

// ---- shared helpers ----

// ErrMissingField is a render error: the payload lacks a required field.
var ErrMissingField = errors.New("topic: payload missing field")

// decodeField decodes payload[field] into v. A missing or null field is
// an error so that a truncated payload never reads as "empty".
func decodeField(payload json.RawMessage, field string, v any) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(payload, &top); err != nil {
		return fmt.Errorf("topic: decode payload: %w", err)
	}
	raw, ok := top[field]
	if !ok || string(raw) == "null" {
		return fmt.Errorf("%w %q", ErrMissingField, field)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("topic: decode %q: %w", field, err)
	}
	return nil
}

func slotFor(m poller.Monitor, name string) message.SlotKey {
	return message.SlotKey{Channel: m.Channel, Name: name, Scope: m.Scope}
}

// factionOf returns the monitor's scope as a faction id, falling back to ours.
func (d Deps) factionOf(m poller.Monitor) int64 {
	if m.Scope != "" {
		if id, err := strconv.ParseInt(m.Scope, 10, 64); err == nil {
			return id
		}
	}
	return d.FactionID
}

func (d Deps) coldStart(m poller.Monitor) {
	metrics.ColdStarts.WithLabelValues(string(m.Topic)).Inc()
	d.logger().Info("cold start, seeding snapshot",
		"monitor", m.ID,
		"topic", string(m.Topic),
		"scope", m.Scope,
	)
}
