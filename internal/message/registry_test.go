// internal/message/registry_test.go
package message

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/tamzrod/faction-relay/internal/chat/chattest"
)

var slotA = SlotKey{Channel: "chan-1", Name: "war", Scope: "42"}

func TestPublish_IdenticalContentIsIdempotent(t *testing.T) {
	rec := chattest.NewRecorder()
	r := NewRegistry(rec, nil)
	ctx := context.Background()

	op, err := r.Publish(ctx, slotA, "War active")
	if err != nil || op != Created {
		t.Fatalf("first publish: op=%v err=%v", op, err)
	}
	op, err = r.Publish(ctx, slotA, "War active")
	if err != nil || op != Unchanged {
		t.Fatalf("second publish: op=%v err=%v", op, err)
	}

	if rec.Count("send") != 1 || rec.Count("edit") != 0 || rec.Count("delete") != 0 {
		t.Fatalf("calls: %+v", rec.Calls())
	}
}

func TestPublish_ChangedContentEditsInPlace(t *testing.T) {
	rec := chattest.NewRecorder()
	r := NewRegistry(rec, nil)
	ctx := context.Background()

	_, _ = r.Publish(ctx, slotA, "lead 100")
	id, _ := r.Live(slotA)

	op, err := r.Publish(ctx, slotA, "lead 200")
	if err != nil || op != Edited {
		t.Fatalf("op=%v err=%v", op, err)
	}
	if got, _ := rec.Content(id); got != "lead 200" {
		t.Fatalf("content=%q", got)
	}
	if rec.Count("send") != 1 {
		t.Fatalf("edit must not create a second message")
	}
}

func TestPublish_EmptyDeletesAndClearsSlot(t *testing.T) {
	rec := chattest.NewRecorder()
	r := NewRegistry(rec, nil)
	ctx := context.Background()

	_, _ = r.Publish(ctx, slotA, "non-empty")
	op, err := r.Publish(ctx, slotA, "")
	if err != nil || op != Deleted {
		t.Fatalf("op=%v err=%v", op, err)
	}
	if rec.Count("delete") != 1 {
		t.Fatalf("delete calls=%d", rec.Count("delete"))
	}
	if _, live := r.Live(slotA); live {
		t.Fatalf("slot should report no live message")
	}

	// empty on an empty slot is a no-op
	op, err = r.Publish(ctx, slotA, "")
	if err != nil || op != Unchanged || rec.Count("delete") != 1 {
		t.Fatalf("op=%v err=%v deletes=%d", op, err, rec.Count("delete"))
	}
}

func TestPublish_OutOfBandDeleteSelfHeals(t *testing.T) {
	rec := chattest.NewRecorder()
	r := NewRegistry(rec, nil)
	ctx := context.Background()

	_, _ = r.Publish(ctx, slotA, "v1")
	id, _ := r.Live(slotA)
	rec.Remove(id)

	op, err := r.Publish(ctx, slotA, "v2")
	if err != nil {
		t.Fatalf("vanished message must be swallowed, got %v", err)
	}
	if op != Created {
		t.Fatalf("op=%v, want created in the same call", op)
	}
	newID, live := r.Live(slotA)
	if !live || newID == id {
		t.Fatalf("slot not re-pointed: live=%v id=%q", live, newID)
	}
	if got, _ := rec.Content(newID); got != "v2" || rec.Live() != 1 {
		t.Fatalf("content=%q live messages=%d", got, rec.Live())
	}

	op, err = r.Publish(ctx, slotA, "v2")
	if err != nil || op != Unchanged {
		t.Fatalf("republish: op=%v err=%v", op, err)
	}
}

func TestPublish_PlatformFailureKeepsLastKnownState(t *testing.T) {
	rec := chattest.NewRecorder()
	r := NewRegistry(rec, nil)
	ctx := context.Background()

	_, _ = r.Publish(ctx, slotA, "v1")
	id, _ := r.Live(slotA)

	boom := errors.New("503")
	rec.Fail = func(op string) error { return boom }
	if _, err := r.Publish(ctx, slotA, "v2"); !errors.Is(err, boom) {
		t.Fatalf("expected platform error, got %v", err)
	}
	if got, live := r.Live(slotA); !live || got != id {
		t.Fatalf("slot changed after failure: %q %v", got, live)
	}

	rec.Fail = nil
	op, err := r.Publish(ctx, slotA, "v2")
	if err != nil || op != Edited {
		t.Fatalf("retry: op=%v err=%v", op, err)
	}
}

func TestPublish_FailedCreateLeavesSlotEmpty(t *testing.T) {
	rec := chattest.NewRecorder()
	rec.Fail = func(op string) error { return errors.New("forbidden") }
	r := NewRegistry(rec, nil)

	if _, err := r.Publish(context.Background(), slotA, "v1"); err == nil {
		t.Fatalf("expected error")
	}
	if _, live := r.Live(slotA); live {
		t.Fatalf("slot must not assume a message exists")
	}
}

func TestPublish_ConcurrentSameSlotCreatesOnce(t *testing.T) {
	rec := chattest.NewRecorder()
	r := NewRegistry(rec, nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = r.Publish(context.Background(), slotA, "same")
		}()
	}
	wg.Wait()

	if rec.Count("send") != 1 {
		t.Fatalf("sends=%d", rec.Count("send"))
	}
}

func TestPublish_SlotsAreIndependent(t *testing.T) {
	rec := chattest.NewRecorder()
	r := NewRegistry(rec, nil)
	ctx := context.Background()

	other := SlotKey{Channel: "chan-1", Name: "war", Scope: "43"}
	_, _ = r.Publish(ctx, slotA, "x")
	_, _ = r.Publish(ctx, other, "x")
	_, _ = r.Publish(ctx, slotA, "")

	if _, live := r.Live(other); !live {
		t.Fatalf("deleting one slot touched another")
	}
}
