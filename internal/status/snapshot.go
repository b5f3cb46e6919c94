// internal/status/snapshot.go
package status

import (
	"errors"
	"time"
)

// Snapshot is the health of one monitor at one moment.
type Snapshot struct {
	Health         uint16
	LastErrorCode  uint16
	SecondsInError uint16
	Ticks          uint32 // successful ticks since start

	LastSuccess time.Time
	LastError   string
}

// HealthLabel renders a health code for humans.
func HealthLabel(h uint16) string {
	switch h {
	case HealthOK:
		return "ok"
	case HealthError:
		return "error"
	case HealthStale:
		return "stale"
	case HealthDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// ErrorCode extracts a best-effort uint16 code from an error without
// assuming concrete types. If the error exposes no code, returns 1.
func ErrorCode(err error) uint16 {
	if err == nil {
		return 0
	}

	type coder interface{ Code() uint16 }

	var c coder
	if errors.As(err, &c) {
		return c.Code()
	}
	return 1
}
