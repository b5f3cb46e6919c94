// internal/message/registry.go
package message

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/zeebo/blake3"

	"github.com/tamzrod/faction-relay/internal/chat"
	"github.com/tamzrod/faction-relay/internal/metrics"
)

// SlotKey addresses the single live notification for one topic
// (and optional scope) in one channel.
type SlotKey struct {
	Channel string
	Name    string
	Scope   string
}

func (k SlotKey) String() string {
	if k.Scope == "" {
		return k.Channel + "/" + k.Name
	}
	return k.Channel + "/" + k.Name + "/" + k.Scope
}

// Op is what Publish did.
type Op int

const (
	Unchanged Op = iota
	Created
	Edited
	Deleted
)

func (o Op) String() string {
	switch o {
	case Created:
		return "created"
	case Edited:
		return "edited"
	case Deleted:
		return "deleted"
	default:
		return "unchanged"
	}
}

// Registry guarantees at most one live message per slot.
// It remembers the message id and a fingerprint of the content last
// delivered, so identical content costs zero platform calls.
type Registry struct {
	chat   chat.Client
	logger *slog.Logger

	mu    sync.Mutex
	slots map[SlotKey]*slot
}

type slot struct {
	// held across the platform call: overlapping ticks for one slot
	// queue here instead of racing to create two messages
	mu          sync.Mutex
	messageID   string
	fingerprint [32]byte
}

func NewRegistry(c chat.Client, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		chat:   c,
		logger: logger,
		slots:  make(map[SlotKey]*slot),
	}
}

// Publish reconciles the slot with content. Empty content means the slot
// should have no message.
//
// On a platform failure the slot keeps its last known state and the error
// is returned; the next Publish compares against that state again.
// An edit or delete that finds the message already gone clears the slot
// and is not an error.
func (r *Registry) Publish(ctx context.Context, key SlotKey, content string) (Op, error) {
	s := r.slot(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	op, err := r.reconcile(ctx, key, s, content)
	if err != nil {
		metrics.PublishTotal.WithLabelValues("failed").Inc()
		r.logger.Warn("publish failed", "slot", key.String(), "error", err)
		return Unchanged, err
	}
	metrics.PublishTotal.WithLabelValues(op.String()).Inc()
	return op, nil
}

func (r *Registry) reconcile(ctx context.Context, key SlotKey, s *slot, content string) (Op, error) {
	live := s.messageID != ""

	// ---- empty content: slot should be vacant ----
	if content == "" {
		if !live {
			return Unchanged, nil
		}
		err := r.chat.Delete(ctx, key.Channel, s.messageID)
		if err != nil && !errors.Is(err, chat.ErrMessageNotFound) {
			return Unchanged, fmt.Errorf("message: delete %s: %w", key, err)
		}
		s.clear()
		return Deleted, nil
	}

	fp := blake3.Sum256([]byte(content))

	// ---- no live message: create ----
	if !live {
		return r.create(ctx, key, s, content, fp)
	}

	// ---- live message: edit only on change ----
	if fp == s.fingerprint {
		return Unchanged, nil
	}
	err := r.chat.Edit(ctx, key.Channel, s.messageID, content)
	if errors.Is(err, chat.ErrMessageNotFound) {
		r.logger.Info("slot message vanished, recreating", "slot", key.String(), "message_id", s.messageID)
		s.clear()
		return r.create(ctx, key, s, content, fp)
	}
	if err != nil {
		return Unchanged, fmt.Errorf("message: edit %s: %w", key, err)
	}
	s.fingerprint = fp
	return Edited, nil
}

func (r *Registry) create(ctx context.Context, key SlotKey, s *slot, content string, fp [32]byte) (Op, error) {
	id, err := r.chat.Send(ctx, key.Channel, content)
	if err != nil {
		return Unchanged, fmt.Errorf("message: send %s: %w", key, err)
	}
	s.messageID = id
	s.fingerprint = fp
	return Created, nil
}

// Live returns the message currently occupying key.
func (r *Registry) Live(key SlotKey) (string, bool) {
	r.mu.Lock()
	s, ok := r.slots[key]
	r.mu.Unlock()
	if !ok {
		return "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messageID, s.messageID != ""
}

// Forget drops what the registry knows about key without touching the platform.
func (r *Registry) Forget(key SlotKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.slots, key)
}

func (r *Registry) slot(key SlotKey) *slot {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[key]
	if !ok {
		s = &slot{}
		r.slots[key] = s
	}
	return s
}

func (s *slot) clear() {
	s.messageID = ""
	s.fingerprint = [32]byte{}
}
