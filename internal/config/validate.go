// internal/config/validate.go
package config

import (
	"fmt"
	"strings"
)

// Topics lists the monitor topics the relay knows how to reconcile.
var Topics = []string{"territory", "armory", "retal", "war", "members", "crimes", "liveness"}

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	r := cfg.Relay

	if r.API.TimeoutMs < 0 {
		return fmt.Errorf("api: timeout_ms must be >= 0")
	}
	if r.API.RequestsPerMinute < 0 {
		return fmt.Errorf("api: requests_per_minute must be >= 0")
	}
	if r.Notices.ExpireMin < 0 || r.Notices.RemoveMin < 0 {
		return fmt.Errorf("notices: durations must be >= 0")
	}
	if r.Notices.RemoveMin != 0 && r.Notices.RemoveMin <= r.Notices.ExpireMin {
		return fmt.Errorf("notices: remove_min must be greater than expire_min")
	}

	if len(r.Monitors) == 0 {
		return fmt.Errorf("at least one monitor is required")
	}

	// ------------------------------------------------------------
	// MONITOR VALIDATION
	// ------------------------------------------------------------

	ids := make(map[string]struct{})
	needsFaction := false

	for i, m := range r.Monitors {
		if m.ID == "" {
			return fmt.Errorf("monitor #%d: id is required", i)
		}
		if _, dup := ids[m.ID]; dup {
			return fmt.Errorf("monitor %q: duplicate id", m.ID)
		}
		ids[m.ID] = struct{}{}

		if !knownTopic(m.Topic) {
			return fmt.Errorf("monitor %q: unknown topic %q (want one of %s)",
				m.ID, m.Topic, strings.Join(Topics, ", "))
		}
		if m.Channel == "" {
			return fmt.Errorf("monitor %q: channel is required", m.ID)
		}
		if m.IntervalMin <= 0 {
			return fmt.Errorf("monitor %q: interval_min must be > 0", m.ID)
		}
		if m.TimeoutMs < 0 {
			return fmt.Errorf("monitor %q: timeout_ms must be >= 0", m.ID)
		}

		switch strings.ToLower(m.Topic) {
		case "retal", "war":
			needsFaction = true
		}

		// status_name sanity (ASCII only)
		for j := 0; j < len(m.StatusName); j++ {
			if m.StatusName[j] > 0x7F {
				return fmt.Errorf(
					"monitor %q: status_name must contain ASCII characters only",
					m.ID,
				)
			}
		}
	}

	if needsFaction && r.FactionID <= 0 {
		return fmt.Errorf("faction_id is required by retal and war monitors")
	}

	// ------------------------------------------------------------
	// STATUS BLOCK VALIDATION (OPT-IN)
	// ------------------------------------------------------------

	slotOwner := make(map[uint16]string)

	for _, m := range r.Monitors {
		// status is opt-in
		if m.StatusSlot == nil {
			continue
		}

		// status requires a status memory
		if r.StatusMemory == nil {
			return fmt.Errorf(
				"monitor %q: status_slot is set but no status_memory is defined",
				m.ID,
			)
		}

		slot := *m.StatusSlot
		if (uint32(slot)+1)*20 > 65536 {
			return fmt.Errorf("monitor %q: status_slot %d out of range", m.ID, slot)
		}
		if prev, exists := slotOwner[slot]; exists {
			return fmt.Errorf(
				"status_slot collision: endpoint=%s unit_id=%d slot=%d used by monitors %q and %q",
				r.StatusMemory.Endpoint,
				r.StatusMemory.UnitID,
				slot,
				prev,
				m.ID,
			)
		}
		slotOwner[slot] = m.ID
	}

	if r.StatusMemory != nil {
		if r.StatusMemory.Endpoint == "" {
			return fmt.Errorf("status_memory: endpoint is required")
		}
		if r.StatusMemory.TimeoutMs < 0 {
			return fmt.Errorf("status_memory: timeout_ms must be >= 0")
		}
	}

	return nil
}

func knownTopic(t string) bool {
	t = strings.ToLower(t)
	for _, k := range Topics {
		if k == t {
			return true
		}
	}
	return false
}
