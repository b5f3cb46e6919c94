// internal/notice/notice.go
package notice

import (
	"time"

	"github.com/google/uuid"
)

// Phase is where an ephemeral notice is in its fixed timeline.
type Phase int

const (
	Active  Phase = iota // full content shown
	Expired              // reduced content shown
	Removed              // message deleted
)

func (p Phase) String() string {
	switch p {
	case Active:
		return "active"
	case Expired:
		return "expired"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// Default timeline.
const (
	DefaultExpireAfter = 5 * time.Minute
	DefaultRemoveAfter = 15 * time.Minute
)

// Content is the two renderings of one notice.
type Content struct {
	Active  string
	Expired string
}

// Notice is one ephemeral notification. Both transition instants are
// fixed at creation; the phase at any time follows from them alone.
type Notice struct {
	ID        uuid.UUID
	Channel   string
	MessageID string
	OpenedAt  time.Time
	ExpireAt  time.Time
	RemoveAt  time.Time
	Content   Content
}

// PhaseAt is the phase the notice should be in at t.
func (n Notice) PhaseAt(t time.Time) Phase {
	switch {
	case !t.Before(n.RemoveAt):
		return Removed
	case !t.Before(n.ExpireAt):
		return Expired
	default:
		return Active
	}
}

// ContentAt is what the message should show at t; empty once removed.
func (n Notice) ContentAt(t time.Time) string {
	switch n.PhaseAt(t) {
	case Active:
		return n.Content.Active
	case Expired:
		return n.Content.Expired
	default:
		return ""
	}
}
