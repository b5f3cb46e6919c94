// internal/chat/discord/client.go
package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"github.com/tamzrod/faction-relay/internal/chat"
)

// Session is the discordgo surface this adapter needs.
type Session interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEdit(channelID, messageID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
}

// Client implements chat.Client on a Discord bot session.
type Client struct {
	session Session
}

// Discord messages are capped at 2000 characters.
const maxContent = 2000

func New(session Session) *Client {
	return &Client{session: session}
}

// Open creates a bot session for token. No gateway connection is made;
// the relay only uses the REST endpoints.
func Open(token string) (*Client, error) {
	if token == "" {
		return nil, errors.New("discord: bot token required")
	}
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord: session: %w", err)
	}
	return New(s), nil
}

func (c *Client) Send(ctx context.Context, channel, content string) (string, error) {
	m, err := c.session.ChannelMessageSend(channel, clip(content), discordgo.WithContext(ctx))
	if err != nil {
		return "", mapError("send", err)
	}
	return m.ID, nil
}

func (c *Client) Edit(ctx context.Context, channel, messageID, content string) error {
	if _, err := c.session.ChannelMessageEdit(channel, messageID, clip(content), discordgo.WithContext(ctx)); err != nil {
		return mapError("edit", err)
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, channel, messageID string) error {
	if err := c.session.ChannelMessageDelete(channel, messageID, discordgo.WithContext(ctx)); err != nil {
		return mapError("delete", err)
	}
	return nil
}

// mapError folds "message is gone" responses into chat.ErrMessageNotFound.
func mapError(op string, err error) error {
	var rest *discordgo.RESTError
	if errors.As(err, &rest) {
		if rest.Message != nil && rest.Message.Code == discordgo.ErrCodeUnknownMessage {
			return fmt.Errorf("discord: %s: %w", op, chat.ErrMessageNotFound)
		}
		if rest.Response != nil && rest.Response.StatusCode == http.StatusNotFound {
			return fmt.Errorf("discord: %s: %w", op, chat.ErrMessageNotFound)
		}
	}
	return fmt.Errorf("discord: %s: %w", op, err)
}

func clip(content string) string {
	r := []rune(content)
	if len(r) <= maxContent {
		return content
	}
	return string(r[:maxContent-1]) + "…"
}
