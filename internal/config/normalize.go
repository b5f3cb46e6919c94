// internal/config/normalize.go
package config

import "strings"

// Defaults applied by Normalize.
const (
	DefaultBaseURL           = "https://api.torn.com"
	DefaultKeysEnv           = "RELAY_API_KEYS"
	DefaultTokenEnv          = "RELAY_DISCORD_TOKEN"
	DefaultAPITimeoutMs      = 10000
	DefaultRequestsPerMinute = 60
	DefaultMonitorTimeoutMs  = 30000
	DefaultStatusTimeoutMs   = 1000
	DefaultExpireMin         = 5
	DefaultRemoveMin         = 15
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}
	r := &cfg.Relay

	// ------------------------------------------------------------
	// API / CHAT DEFAULTS
	// ------------------------------------------------------------

	if r.API.BaseURL == "" {
		r.API.BaseURL = DefaultBaseURL
	}
	r.API.BaseURL = strings.TrimRight(r.API.BaseURL, "/")
	if r.API.KeysEnv == "" {
		r.API.KeysEnv = DefaultKeysEnv
	}
	if r.API.TimeoutMs == 0 {
		r.API.TimeoutMs = DefaultAPITimeoutMs
	}
	if r.API.RequestsPerMinute == 0 {
		r.API.RequestsPerMinute = DefaultRequestsPerMinute
	}
	if r.Discord.TokenEnv == "" {
		r.Discord.TokenEnv = DefaultTokenEnv
	}

	if r.Notices.ExpireMin == 0 {
		r.Notices.ExpireMin = DefaultExpireMin
	}
	if r.Notices.RemoveMin == 0 {
		r.Notices.RemoveMin = DefaultRemoveMin
	}

	if r.StatusMemory != nil && r.StatusMemory.TimeoutMs == 0 {
		r.StatusMemory.TimeoutMs = DefaultStatusTimeoutMs
	}

	// ------------------------------------------------------------
	// MONITORS
	// ------------------------------------------------------------

	for i := range r.Monitors {
		m := &r.Monitors[i]

		m.Topic = strings.ToLower(m.Topic)
		if m.TimeoutMs == 0 {
			m.TimeoutMs = DefaultMonitorTimeoutMs
		}

		// Skip monitors that did not opt in to status export
		if m.StatusSlot == nil {
			continue
		}

		// Normalize status_name:
		// - ASCII already validated
		// - Defaults to the monitor id
		// - Truncate to max 16 characters
		if m.StatusName == "" {
			m.StatusName = m.ID
		}
		if len(m.StatusName) > 16 {
			m.StatusName = m.StatusName[:16]
		}
	}
}
