// internal/notice/manager.go
package notice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tamzrod/faction-relay/internal/chat"
	"github.com/tamzrod/faction-relay/internal/clock"
	"github.com/tamzrod/faction-relay/internal/metrics"
)

// ErrClosed is returned by Open after Close.
var ErrClosed = errors.New("notice: manager closed")

// Config tunes the timeline and the local retry of failed transitions.
type Config struct {
	ExpireAfter time.Duration
	RemoveAfter time.Duration
	RetryDelay  time.Duration
	Attempts    int
	CallTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.ExpireAfter <= 0 {
		c.ExpireAfter = DefaultExpireAfter
	}
	if c.RemoveAfter <= c.ExpireAfter {
		c.RemoveAfter = c.ExpireAfter + (DefaultRemoveAfter - DefaultExpireAfter)
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 30 * time.Second
	}
	if c.Attempts <= 0 {
		c.Attempts = 3
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = 10 * time.Second
	}
	return c
}

// Manager owns every open notice and its two transition timers.
// Notices never share a message; nothing here is persisted.
type Manager struct {
	chat   chat.Client
	clock  clock.Clock
	logger *slog.Logger
	cfg    Config

	mu      sync.Mutex
	notices map[uuid.UUID]*entry
	closed  bool
}

type entry struct {
	notice  Notice
	applied Phase
	timers  []*clock.Timer
}

func NewManager(c chat.Client, clk clock.Clock, logger *slog.Logger, cfg Config) *Manager {
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		chat:    c,
		clock:   clk,
		logger:  logger,
		cfg:     cfg.withDefaults(),
		notices: make(map[uuid.UUID]*entry),
	}
}

// Open posts the active rendering and arms the expire and remove transitions.
func (m *Manager) Open(ctx context.Context, channel string, content Content) (uuid.UUID, error) {
	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return uuid.Nil, ErrClosed
	}
	if content.Active == "" {
		return uuid.Nil, errors.New("notice: empty content")
	}

	msgID, err := m.chat.Send(ctx, channel, content.Active)
	if err != nil {
		return uuid.Nil, fmt.Errorf("notice: send: %w", err)
	}

	now := m.clock.Now()
	n := Notice{
		ID:        uuid.New(),
		Channel:   channel,
		MessageID: msgID,
		OpenedAt:  now,
		ExpireAt:  now.Add(m.cfg.ExpireAfter),
		RemoveAt:  now.Add(m.cfg.RemoveAfter),
		Content:   content,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		// lost the race with Close; the message stays, untracked
		return uuid.Nil, ErrClosed
	}

	e := &entry{notice: n, applied: Active}
	m.notices[n.ID] = e
	e.timers = append(e.timers,
		m.clock.AfterFunc(m.cfg.ExpireAfter, func() { m.transition(n.ID, Expired, 1) }),
		m.clock.AfterFunc(m.cfg.RemoveAfter, func() { m.transition(n.ID, Removed, 1) }),
	)
	metrics.NoticesOpen.Inc()

	m.logger.Debug("notice opened", "notice", n.ID.String(), "channel", channel, "message_id", msgID)
	return n.ID, nil
}

// Get returns a copy of an open notice.
func (m *Manager) Get(id uuid.UUID) (Notice, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.notices[id]
	if !ok {
		return Notice{}, false
	}
	return e.notice, true
}

// Len is the number of notices not yet removed.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.notices)
}

// Close cancels every pending transition. Messages already posted stay
// as they are.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	for id, e := range m.notices {
		for _, t := range e.timers {
			t.Stop()
		}
		delete(m.notices, id)
		metrics.NoticesOpen.Dec()
	}
}

func (m *Manager) transition(id uuid.UUID, phase Phase, attempt int) {
	m.mu.Lock()
	e, ok := m.notices[id]
	if !ok || m.closed || e.applied >= phase {
		m.mu.Unlock()
		return
	}
	n := e.notice
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.CallTimeout)
	defer cancel()

	var err error
	switch phase {
	case Expired:
		err = m.chat.Edit(ctx, n.Channel, n.MessageID, n.Content.Expired)
	case Removed:
		err = m.chat.Delete(ctx, n.Channel, n.MessageID)
	}
	if errors.Is(err, chat.ErrMessageNotFound) {
		// someone removed it already; nothing left to show
		err = nil
		phase = Removed
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok = m.notices[id]
	if !ok || m.closed {
		return
	}

	if err == nil {
		metrics.NoticeTransitions.WithLabelValues(phase.String(), "ok").Inc()
		e.applied = phase
		if phase == Removed {
			for _, t := range e.timers {
				t.Stop()
			}
			delete(m.notices, id)
			metrics.NoticesOpen.Dec()
		}
		return
	}

	metrics.NoticeTransitions.WithLabelValues(phase.String(), "error").Inc()
	log := m.logger.With("notice", id.String(), "phase", phase.String(), "attempt", attempt)

	if attempt >= m.cfg.Attempts {
		log.Error("notice transition abandoned", "error", err)
		if phase == Removed {
			delete(m.notices, id)
			metrics.NoticesOpen.Dec()
		}
		return
	}

	log.Warn("notice transition failed, retrying", "error", err, "retry_in", m.cfg.RetryDelay)
	e.timers = append(e.timers, m.clock.AfterFunc(m.cfg.RetryDelay, func() {
		m.transition(id, phase, attempt+1)
	}))
}
