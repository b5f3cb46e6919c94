// internal/status/tracker.go
package status

import (
	"sort"
	"sync"
	"time"

	"github.com/tamzrod/faction-relay/internal/clock"
)

// Tracker holds the live Snapshot of every monitor.
// The scheduler records tick outcomes; readers get copies.
type Tracker struct {
	mu       sync.Mutex
	clock    clock.Clock
	monitors map[string]*tracked
}

type tracked struct {
	snap     Snapshot
	interval time.Duration
	lastTick time.Time
}

func NewTracker(c clock.Clock) *Tracker {
	if c == nil {
		c = clock.Real()
	}
	return &Tracker{clock: c, monitors: make(map[string]*tracked)}
}

// Register declares a monitor so it is reported before its first tick.
func (t *Tracker) Register(id string, interval time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.monitors[id]; ok {
		return
	}
	t.monitors[id] = &tracked{
		snap:     Snapshot{Health: HealthUnknown},
		interval: interval,
		lastTick: t.clock.Now(),
	}
}

// Record applies one tick outcome. A nil err is a success.
// Ticks finishing after Disable update counters but not health.
func (t *Tracker) Record(id string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	m, ok := t.monitors[id]
	if !ok {
		m = &tracked{}
		t.monitors[id] = m
	}
	now := t.clock.Now()
	m.lastTick = now
	disabled := m.snap.Health == HealthDisabled

	if err == nil {
		// Recovery / OK
		if !disabled {
			m.snap.Health = HealthOK
		}
		m.snap.LastErrorCode = 0
		m.snap.SecondsInError = 0
		m.snap.LastError = ""
		m.snap.LastSuccess = now
		m.snap.Ticks++
		return
	}

	// NOTE: SecondsInError increments on Tick only.
	if !disabled {
		m.snap.Health = HealthError
	}
	m.snap.LastErrorCode = ErrorCode(err)
	m.snap.LastError = err.Error()
}

// Disable marks a stopped monitor.
func (t *Tracker) Disable(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if m, ok := t.monitors[id]; ok {
		m.snap.Health = HealthDisabled
	}
}

// Tick advances time-based state; call at 1 Hz.
// Monitors not OK accumulate SecondsInError (saturating).
// Monitors silent for two intervals become stale.
func (t *Tracker) Tick() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	for _, m := range t.monitors {
		if m.snap.Health == HealthDisabled {
			continue
		}
		if m.interval > 0 && now.Sub(m.lastTick) > 2*m.interval && m.snap.Health != HealthUnknown {
			m.snap.Health = HealthStale
		}
		if m.snap.Health != HealthOK && m.snap.SecondsInError < MaxSecondsInError {
			m.snap.SecondsInError++
		}
	}
}

// Snapshot returns the current state of one monitor.
func (t *Tracker) Snapshot(id string) (Snapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.monitors[id]
	if !ok {
		return Snapshot{}, false
	}
	return m.snap, true
}

// Entry pairs a monitor id with its snapshot.
type Entry struct {
	ID   string
	Snap Snapshot
}

// All returns every monitor, sorted by id.
func (t *Tracker) All() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Entry, 0, len(t.monitors))
	for id, m := range t.monitors {
		out = append(out, Entry{ID: id, Snap: m.snap})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
