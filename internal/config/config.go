// internal/config/config.go
package config

type Config struct {
	Relay RelayConfig `yaml:"relay"`
}

type RelayConfig struct {
	FactionID    int64            `yaml:"faction_id"`
	MetricsAddr  string           `yaml:"metrics_addr"`
	API          APIConfig        `yaml:"api"`
	Discord      DiscordConfig    `yaml:"discord"`
	Monitors     []MonitorConfig  `yaml:"monitors"`
	StatusMemory *StatusMemConfig `yaml:"status_memory"` // optional
	War          WarConfig        `yaml:"war"`
	Notices      NoticeConfig     `yaml:"notices"`
}

// ---- GAME API ----

type APIConfig struct {
	BaseURL           string `yaml:"base_url"`
	KeysEnv           string `yaml:"keys_env"` // comma-separated keys
	TimeoutMs         int    `yaml:"timeout_ms"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
}

// ---- CHAT ----

type DiscordConfig struct {
	TokenEnv string `yaml:"token_env"`
}

// ---- MONITOR ----

type MonitorConfig struct {
	ID          string       `yaml:"id"`
	Topic       string       `yaml:"topic"`
	Scope       string       `yaml:"scope"`
	Channel     string       `yaml:"channel"`
	IntervalMin float64      `yaml:"interval_min"`
	TimeoutMs   int          `yaml:"timeout_ms"`
	Filter      FilterConfig `yaml:"filter"`

	// Status block export (optional, opt-in)
	StatusSlot *uint16 `yaml:"status_slot"`
	StatusName string  `yaml:"status_name"`
}

type FilterConfig struct {
	Allow []string `yaml:"allow"`
	Deny  []string `yaml:"deny"`
}

// ---- STATUS EXPORT ----

type StatusMemConfig struct {
	Endpoint  string `yaml:"endpoint"`
	UnitID    uint8  `yaml:"unit_id"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// ---- WAR NEWS MARKERS ----

type WarConfig struct {
	EnlistMarkers   []string `yaml:"enlist_markers"`
	UnenlistMarkers []string `yaml:"unenlist_markers"`
	DefeatMarkers   []string `yaml:"defeat_markers"`
}

// ---- EPHEMERAL NOTICES ----

type NoticeConfig struct {
	ExpireMin float64 `yaml:"expire_min"`
	RemoveMin float64 `yaml:"remove_min"`
}
