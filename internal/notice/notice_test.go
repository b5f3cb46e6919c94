// internal/notice/notice_test.go
package notice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tamzrod/faction-relay/internal/chat/chattest"
	"github.com/tamzrod/faction-relay/internal/clock"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

var retal = Content{
	Active:  "**Retal** on Attacker [123] (hospitalized Defender)",
	Expired: "~~Retal on Attacker [123]~~ expired",
}

func TestPhaseAt(t *testing.T) {
	n := Notice{
		OpenedAt: t0,
		ExpireAt: t0.Add(5 * time.Minute),
		RemoveAt: t0.Add(15 * time.Minute),
		Content:  retal,
	}

	cases := []struct {
		at   time.Duration
		want Phase
	}{
		{0, Active},
		{5*time.Minute - time.Second, Active},
		{5 * time.Minute, Expired},
		{15*time.Minute - time.Second, Expired},
		{15 * time.Minute, Removed},
		{time.Hour, Removed},
	}
	for _, tc := range cases {
		if got := n.PhaseAt(t0.Add(tc.at)); got != tc.want {
			t.Fatalf("at +%v: got %v want %v", tc.at, got, tc.want)
		}
	}
	if n.ContentAt(t0.Add(6*time.Minute)) != retal.Expired {
		t.Fatalf("expired content not shown in the expired window")
	}
	if n.ContentAt(t0.Add(15*time.Minute)) != "" {
		t.Fatalf("removed notice has no content")
	}
}

func TestManager_Timeline(t *testing.T) {
	fc := clock.Fake(t0)
	rec := chattest.NewRecorder()
	m := NewManager(rec, fc, nil, Config{})

	id, err := m.Open(context.Background(), "retals", retal)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	n, ok := m.Get(id)
	if !ok {
		t.Fatalf("notice not tracked")
	}
	if got, _ := rec.Content(n.MessageID); got != retal.Active {
		t.Fatalf("initial content=%q", got)
	}

	fc.Advance(5 * time.Minute)
	if got, _ := rec.Content(n.MessageID); got != retal.Expired {
		t.Fatalf("content at T+5m=%q", got)
	}

	fc.Advance(10*time.Minute - time.Second)
	if _, ok := rec.Content(n.MessageID); !ok {
		t.Fatalf("message removed before T+15m")
	}

	fc.Advance(time.Second)
	if _, ok := rec.Content(n.MessageID); ok {
		t.Fatalf("message still exists at T+15m")
	}
	if _, ok := m.Get(id); ok {
		t.Fatalf("notice still tracked after removal")
	}
	if fc.Pending() != 0 {
		t.Fatalf("timers left behind: %d", fc.Pending())
	}
}

func TestManager_OverlappingNoticesAreIndependent(t *testing.T) {
	fc := clock.Fake(t0)
	rec := chattest.NewRecorder()
	m := NewManager(rec, fc, nil, Config{})

	first, _ := m.Open(context.Background(), "retals", retal)
	fc.Advance(3 * time.Minute)
	second, _ := m.Open(context.Background(), "retals", retal)

	a, _ := m.Get(first)
	b, _ := m.Get(second)
	if a.MessageID == b.MessageID {
		t.Fatalf("notices must not share a message")
	}

	fc.Advance(2 * time.Minute) // first expires, second still active
	if got, _ := rec.Content(a.MessageID); got != retal.Expired {
		t.Fatalf("first content=%q", got)
	}
	if got, _ := rec.Content(b.MessageID); got != retal.Active {
		t.Fatalf("second content=%q", got)
	}

	fc.Advance(10 * time.Minute) // first removed at +15
	if m.Len() != 1 {
		t.Fatalf("open notices=%d", m.Len())
	}
	fc.Advance(3 * time.Minute)
	if m.Len() != 0 || rec.Live() != 0 {
		t.Fatalf("open=%d live=%d", m.Len(), rec.Live())
	}
}

func TestManager_RetriesFailedTransition(t *testing.T) {
	fc := clock.Fake(t0)
	rec := chattest.NewRecorder()
	m := NewManager(rec, fc, nil, Config{RetryDelay: 30 * time.Second, Attempts: 3})

	id, _ := m.Open(context.Background(), "retals", retal)
	n, _ := m.Get(id)

	failures := 1
	rec.Fail = func(op string) error {
		if op == "edit" && failures > 0 {
			failures--
			return errors.New("gateway timeout")
		}
		return nil
	}

	fc.Advance(5 * time.Minute)
	if got, _ := rec.Content(n.MessageID); got != retal.Active {
		t.Fatalf("edit should have failed first time, content=%q", got)
	}

	fc.Advance(30 * time.Second)
	if got, _ := rec.Content(n.MessageID); got != retal.Expired {
		t.Fatalf("retry did not apply, content=%q", got)
	}
}

func TestManager_MessageGoneCountsAsRemoved(t *testing.T) {
	fc := clock.Fake(t0)
	rec := chattest.NewRecorder()
	m := NewManager(rec, fc, nil, Config{})

	id, _ := m.Open(context.Background(), "retals", retal)
	n, _ := m.Get(id)
	rec.Remove(n.MessageID)

	fc.Advance(5 * time.Minute)
	if _, ok := m.Get(id); ok {
		t.Fatalf("notice whose message vanished should be dropped")
	}
	fc.Advance(10 * time.Minute)
	if rec.Count("delete") != 0 {
		t.Fatalf("no delete expected for a vanished message")
	}
}

func TestManager_CloseCancelsTimers(t *testing.T) {
	fc := clock.Fake(t0)
	rec := chattest.NewRecorder()
	m := NewManager(rec, fc, nil, Config{})

	_, _ = m.Open(context.Background(), "retals", retal)
	_, _ = m.Open(context.Background(), "retals", retal)
	m.Close()

	fc.Advance(time.Hour)
	if rec.Count("edit") != 0 || rec.Count("delete") != 0 {
		t.Fatalf("transitions ran after Close: %+v", rec.Calls())
	}
	if _, err := m.Open(context.Background(), "retals", retal); !errors.Is(err, ErrClosed) {
		t.Fatalf("Open after Close: %v", err)
	}
}

func TestManager_SendFailureOpensNothing(t *testing.T) {
	fc := clock.Fake(t0)
	rec := chattest.NewRecorder()
	rec.Fail = func(string) error { return errors.New("missing access") }
	m := NewManager(rec, fc, nil, Config{})

	if _, err := m.Open(context.Background(), "retals", retal); err == nil {
		t.Fatalf("expected error")
	}
	if m.Len() != 0 || fc.Pending() != 0 {
		t.Fatalf("failed open left state: notices=%d timers=%d", m.Len(), fc.Pending())
	}
}
