// internal/api/types.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// Request names one API call. Selections are joined into a single call.
// From/To are unix seconds; zero means unset.
type Request struct {
	Section    string // "faction", "torn", "user"
	ID         string // empty for the caller's own entity
	Selections []string
	From       int64
	To         int64
}

// Result is the tri-value outcome of a fetch.
// When OK is false, Status carries the reason and Payload is nil.
type Result struct {
	OK      bool
	Status  string
	Code    uint16
	Payload json.RawMessage
}

// Err converts a failed result into an *Error. Returns nil when OK.
func (r Result) Err() error {
	if r.OK {
		return nil
	}
	code := r.Code
	if code == 0 {
		code = CodeTransport
	}
	return &Error{Number: code, Message: r.Status}
}

// Fetcher is the only view of the game API the relay core has.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) Result
}

// CodeTransport marks failures that never reached the API (network, HTTP status).
const CodeTransport uint16 = 1000

// Error is an upstream or transport failure.
type Error struct {
	Number  uint16
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Number, e.Message)
}

// Code exposes the numeric code to status tracking.
func (e *Error) Code() uint16 { return e.Number }

// ---- payload shapes ----

// ID decodes numeric ids that the API sometimes sends as strings,
// and as "" for hidden attackers.
type ID int64

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*id = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*id = 0
			return nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("api: id %q: %w", s, err)
		}
		*id = ID(n)
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n)
	return nil
}

func (id ID) String() string { return strconv.FormatInt(int64(id), 10) }

type TerritoryPayload struct {
	Territory map[string]Territory `json:"territory"`
}

type Territory struct {
	Sector       int     `json:"sector"`
	Size         int     `json:"size"`
	Density      int     `json:"density"`
	Slots        int     `json:"slots"`
	DailyRespect int     `json:"daily_respect"`
	Faction      ID      `json:"faction"`
	Racket       *Racket `json:"racket,omitempty"`
}

type Racket struct {
	Name    string `json:"name"`
	Level   int    `json:"level"`
	Reward  string `json:"reward"`
	Created int64  `json:"created"`
	Changed int64  `json:"changed"`
}

type NewsEntry struct {
	News      string `json:"news"`
	Timestamp int64  `json:"timestamp"`
}

type ArmoryNewsPayload struct {
	ArmoryNews map[string]NewsEntry `json:"armorynews"`
}

type AttacksPayload struct {
	Attacks map[string]Attack `json:"attacks"`
}

type Attack struct {
	Code                string  `json:"code"`
	Started             int64   `json:"timestamp_started"`
	Ended               int64   `json:"timestamp_ended"`
	AttackerID          ID      `json:"attacker_id"`
	AttackerName        string  `json:"attacker_name"`
	AttackerFaction     ID      `json:"attacker_faction"`
	AttackerFactionName string  `json:"attacker_factionname"`
	DefenderID          ID      `json:"defender_id"`
	DefenderName        string  `json:"defender_name"`
	DefenderFaction     ID      `json:"defender_faction"`
	DefenderFactionName string  `json:"defender_factionname"`
	Result              string  `json:"result"`
	Stealthed           int     `json:"stealthed"`
	RespectGain         float64 `json:"respect_gain"`
	Chain               int     `json:"chain"`
}

// WarPayload answers selections=rankedwars,mainnews.
type WarPayload struct {
	RankedWars map[string]RankedWar `json:"rankedwars"`
	MainNews   map[string]NewsEntry `json:"mainnews"`
}

type RankedWar struct {
	Factions map[string]WarFaction `json:"factions"`
	War      WarInfo               `json:"war"`
}

type WarFaction struct {
	Name  string `json:"name"`
	Score int64  `json:"score"`
	Chain int    `json:"chain"`
}

type WarInfo struct {
	Start  int64 `json:"start"`
	End    int64 `json:"end"`
	Target int64 `json:"target"`
	Winner ID    `json:"winner"`
}

type MembersPayload struct {
	Members map[string]Member `json:"members"`
}

type Member struct {
	Name       string       `json:"name"`
	Level      int          `json:"level"`
	Position   string       `json:"position"`
	Status     MemberStatus `json:"status"`
	LastAction LastAction   `json:"last_action"`
}

type MemberStatus struct {
	Description string `json:"description"`
	Details     string `json:"details"`
	State       string `json:"state"`
	Until       int64  `json:"until"`
}

type LastAction struct {
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
	Relative  string `json:"relative"`
}

type CrimesPayload struct {
	Crimes map[string]Crime `json:"crimes"`
}

type Crime struct {
	CrimeID       int                          `json:"crime_id"`
	Name          string                       `json:"crime_name"`
	Participants  []map[string]json.RawMessage `json:"participants"`
	TimeStarted   int64                        `json:"time_started"`
	TimeReady     int64                        `json:"time_ready"`
	TimeLeft      int64                        `json:"time_left"`
	TimeCompleted int64                        `json:"time_completed"`
	Initiated     int                          `json:"initiated"`
	Success       int                          `json:"success"`
	MoneyGain     int64                        `json:"money_gain"`
	RespectGain   int64                        `json:"respect_gain"`
}

type TimestampPayload struct {
	Timestamp int64 `json:"timestamp"`
}
