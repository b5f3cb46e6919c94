// internal/snapshot/cache.go
package snapshot

import (
	"sync"
	"time"

	"github.com/tamzrod/faction-relay/internal/clock"
)

// Cache is the last-seen state per (topic, scope), with expiry.
// Absent and expired both read as "no snapshot": the caller's cold start.
// Writes are last-writer-wins; the cache orders nothing.
type Cache struct {
	mu      sync.Mutex
	clock   clock.Clock
	entries map[Key]entry
}

type entry struct {
	snap      Snapshot
	expiresAt time.Time
}

func NewCache(c clock.Clock) *Cache {
	if c == nil {
		c = clock.Real()
	}
	return &Cache{clock: c, entries: make(map[Key]entry)}
}

// TTLFor returns the expiry used for a monitor polling every interval:
// one late tick still diffs, a longer outage becomes a cold start.
func TTLFor(interval time.Duration) time.Duration {
	return 2 * interval
}

// Get returns a copy of the live snapshot for key.
func (c *Cache) Get(key Key) (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return Snapshot{}, false
	}
	if !c.clock.Now().Before(e.expiresAt) {
		delete(c.entries, key)
		return Snapshot{}, false
	}
	return e.snap.Clone(), true
}

// Put stores snap under snap.Key for ttl.
func (c *Cache) Put(snap Snapshot, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[snap.Key] = entry{
		snap:      snap.Clone(),
		expiresAt: c.clock.Now().Add(ttl),
	}
}

// Delete drops key.
func (c *Cache) Delete(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Sweep removes expired entries and returns how many were removed.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	n := 0
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// Len counts entries, including expired ones not yet swept.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
