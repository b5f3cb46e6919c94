// internal/chat/chattest/recorder.go
package chattest

import (
	"context"
	"fmt"
	"sync"

	"github.com/tamzrod/faction-relay/internal/chat"
)

// Call is one recorded platform call.
type Call struct {
	Op        string // "send", "edit", "delete"
	Channel   string
	MessageID string
	Content   string
}

// Recorder is an in-memory chat.Client for tests. It keeps the current
// content of every live message and a log of calls.
type Recorder struct {
	mu       sync.Mutex
	calls    []Call
	messages map[string]string
	seq      int

	// Fail, when set, is consulted before every call; a non-nil error
	// is returned without touching state.
	Fail func(op string) error
}

var _ chat.Client = (*Recorder)(nil)

func NewRecorder() *Recorder {
	return &Recorder{messages: make(map[string]string)}
}

func (r *Recorder) Send(_ context.Context, channel, content string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failLocked("send"); err != nil {
		return "", err
	}
	r.seq++
	id := fmt.Sprintf("msg-%d", r.seq)
	r.messages[id] = content
	r.calls = append(r.calls, Call{Op: "send", Channel: channel, MessageID: id, Content: content})
	return id, nil
}

func (r *Recorder) Edit(_ context.Context, channel, messageID, content string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failLocked("edit"); err != nil {
		return err
	}
	r.calls = append(r.calls, Call{Op: "edit", Channel: channel, MessageID: messageID, Content: content})
	if _, ok := r.messages[messageID]; !ok {
		return chat.ErrMessageNotFound
	}
	r.messages[messageID] = content
	return nil
}

func (r *Recorder) Delete(_ context.Context, channel, messageID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failLocked("delete"); err != nil {
		return err
	}
	r.calls = append(r.calls, Call{Op: "delete", Channel: channel, MessageID: messageID})
	if _, ok := r.messages[messageID]; !ok {
		return chat.ErrMessageNotFound
	}
	delete(r.messages, messageID)
	return nil
}

// Remove deletes a message behind the relay's back.
func (r *Recorder) Remove(messageID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.messages, messageID)
}

// Content returns the live content of messageID.
func (r *Recorder) Content(messageID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.messages[messageID]
	return c, ok
}

// Calls returns a copy of the call log.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Count returns how many calls of op were made.
func (r *Recorder) Count(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Live returns the number of messages that still exist.
func (r *Recorder) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}

func (r *Recorder) failLocked(op string) error {
	if r.Fail == nil {
		return nil
	}
	return r.Fail(op)
}
