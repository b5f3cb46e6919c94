// internal/chat/chat.go
package chat

import (
	"context"
	"errors"
)

// ErrMessageNotFound means the platform no longer has the message
// (deleted out-of-band, channel gone). Callers treat the slot as empty.
var ErrMessageNotFound = errors.New("chat: message not found")

// Client is the subset of the chat platform the relay uses.
// Content is platform markdown; an empty string is never sent.
type Client interface {
	Send(ctx context.Context, channel, content string) (messageID string, err error)
	Edit(ctx context.Context, channel, messageID, content string) error
	Delete(ctx context.Context, channel, messageID string) error
}
