// internal/status/tracker_test.go
package status

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tamzrod/faction-relay/internal/clock"
)

type codedErr struct{ code uint16 }

func (e codedErr) Error() string { return fmt.Sprintf("code %d", e.code) }
func (e codedErr) Code() uint16  { return e.code }

func TestErrorCode(t *testing.T) {
	if ErrorCode(nil) != 0 {
		t.Fatalf("nil error must map to 0")
	}
	if ErrorCode(errors.New("plain")) != 1 {
		t.Fatalf("uncoded error must map to 1")
	}
	wrapped := fmt.Errorf("tick: %w", codedErr{code: 5})
	if ErrorCode(wrapped) != 5 {
		t.Fatalf("wrapped coded error not unwrapped")
	}
}

func TestTracker_ErrorThenRecovery(t *testing.T) {
	fc := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	tr := NewTracker(fc)
	tr.Register("war", time.Minute)

	tr.Record("war", codedErr{code: 8})
	tr.Tick()
	tr.Tick()
	tr.Tick()

	s, _ := tr.Snapshot("war")
	if s.Health != HealthError || s.LastErrorCode != 8 || s.SecondsInError != 3 {
		t.Fatalf("error state: %+v", s)
	}

	tr.Record("war", nil)
	s, _ = tr.Snapshot("war")
	if s.Health != HealthOK || s.LastErrorCode != 0 || s.SecondsInError != 0 || s.Ticks != 1 {
		t.Fatalf("recovery state: %+v", s)
	}
}

func TestTracker_StaleAfterTwoIntervals(t *testing.T) {
	fc := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	tr := NewTracker(fc)
	tr.Register("members", time.Minute)
	tr.Record("members", nil)

	fc.Advance(2*time.Minute + time.Second)
	tr.Tick()

	s, _ := tr.Snapshot("members")
	if s.Health != HealthStale {
		t.Fatalf("health=%s", HealthLabel(s.Health))
	}
}

func TestTracker_SecondsInErrorSaturates(t *testing.T) {
	tr := NewTracker(clock.Fake(time.Unix(0, 0)))
	tr.Register("x", 0)
	tr.Record("x", errors.New("down"))
	for i := 0; i < MaxSecondsInError+10; i++ {
		tr.Tick()
	}
	s, _ := tr.Snapshot("x")
	if s.SecondsInError != MaxSecondsInError {
		t.Fatalf("seconds=%d", s.SecondsInError)
	}
}

func TestEncode_NameAtEndOfBlock(t *testing.T) {
	regs := Encode(Snapshot{Health: HealthOK, Ticks: 0x00010002}, "war")
	if len(regs) != SlotsPerMonitor {
		t.Fatalf("len=%d", len(regs))
	}
	if regs[SlotTicksHigh] != 1 || regs[SlotTicksLow] != 2 {
		t.Fatalf("ticks not split: %v", regs[SlotTicksHigh:SlotTicksLow+1])
	}
	if regs[SlotNameStart] != uint16('w')<<8|uint16('a') || regs[SlotNameStart+1] != uint16('r')<<8 {
		t.Fatalf("name regs: %v", regs[SlotNameStart:])
	}
}
