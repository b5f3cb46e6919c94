// internal/snapshot/cache_test.go
package snapshot

import (
	"testing"
	"time"

	"github.com/tamzrod/faction-relay/internal/clock"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestCache_AbsentIsColdStart(t *testing.T) {
	c := NewCache(clock.Fake(epoch))
	if _, ok := c.Get(Key{Topic: TopicTerritory, Scope: "1"}); ok {
		t.Fatalf("empty cache must report absent")
	}
}

func TestCache_ExpiresAfterTTL(t *testing.T) {
	fc := clock.Fake(epoch)
	c := NewCache(fc)
	key := Key{Topic: TopicTerritory, Scope: "1"}
	interval := 5 * time.Minute

	c.Put(Snapshot{Key: key, Members: NewSet("AAA")}, TTLFor(interval))

	// one late tick still inside the window
	fc.Advance(interval + interval/2)
	if _, ok := c.Get(key); !ok {
		t.Fatalf("snapshot should survive a late tick")
	}

	fc.Advance(interval)
	if _, ok := c.Get(key); ok {
		t.Fatalf("snapshot should expire after 2x interval")
	}
	if c.Len() != 0 {
		t.Fatalf("expired read should drop the entry")
	}
}

func TestCache_ReturnsCopies(t *testing.T) {
	c := NewCache(clock.Fake(epoch))
	key := Key{Topic: TopicMembers, Scope: "1"}
	c.Put(Snapshot{Key: key, Attrs: map[string]string{"1": "Okay"}, Lines: []string{"a"}}, time.Hour)

	got, _ := c.Get(key)
	got.Attrs["1"] = "Hospital"
	got.Lines[0] = "b"

	again, _ := c.Get(key)
	if again.Attrs["1"] != "Okay" || again.Lines[0] != "a" {
		t.Fatalf("cached snapshot was mutated through a copy: %+v", again)
	}
}

func TestCache_LastWriterWins(t *testing.T) {
	c := NewCache(clock.Fake(epoch))
	key := Key{Topic: TopicArmory, Scope: "1"}

	c.Put(Snapshot{Key: key, Cursor: 200}, time.Hour)
	c.Put(Snapshot{Key: key, Cursor: 100}, time.Hour)

	got, _ := c.Get(key)
	if got.Cursor != 100 {
		t.Fatalf("cursor=%d want 100", got.Cursor)
	}
}

func TestCache_Sweep(t *testing.T) {
	fc := clock.Fake(epoch)
	c := NewCache(fc)
	c.Put(Snapshot{Key: Key{Topic: TopicWar, Scope: "1"}}, time.Minute)
	c.Put(Snapshot{Key: Key{Topic: TopicWar, Scope: "2"}}, time.Hour)

	fc.Advance(2 * time.Minute)
	if n := c.Sweep(); n != 1 {
		t.Fatalf("swept=%d", n)
	}
	if c.Len() != 1 {
		t.Fatalf("len=%d", c.Len())
	}
}
