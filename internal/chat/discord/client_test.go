// internal/chat/discord/client_test.go
package discord

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"github.com/tamzrod/faction-relay/internal/chat"
)

type fakeSession struct {
	sent      []string
	editErr   error
	deleteErr error
}

func (f *fakeSession) ChannelMessageSend(channelID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.sent = append(f.sent, content)
	return &discordgo.Message{ID: "m1", ChannelID: channelID, Content: content}, nil
}

func (f *fakeSession) ChannelMessageEdit(channelID, messageID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.editErr != nil {
		return nil, f.editErr
	}
	return &discordgo.Message{ID: messageID, ChannelID: channelID, Content: content}, nil
}

func (f *fakeSession) ChannelMessageDelete(channelID, messageID string, _ ...discordgo.RequestOption) error {
	return f.deleteErr
}

func TestEdit_UnknownMessageMapsToNotFound(t *testing.T) {
	s := &fakeSession{editErr: &discordgo.RESTError{
		Message: &discordgo.APIErrorMessage{Code: discordgo.ErrCodeUnknownMessage, Message: "Unknown Message"},
	}}
	c := New(s)

	err := c.Edit(context.Background(), "c1", "m1", "hello")
	if !errors.Is(err, chat.ErrMessageNotFound) {
		t.Fatalf("expected ErrMessageNotFound, got %v", err)
	}
}

func TestDelete_HTTP404MapsToNotFound(t *testing.T) {
	s := &fakeSession{deleteErr: &discordgo.RESTError{
		Response: &http.Response{StatusCode: http.StatusNotFound},
	}}
	c := New(s)

	if err := c.Delete(context.Background(), "c1", "m1"); !errors.Is(err, chat.ErrMessageNotFound) {
		t.Fatalf("expected ErrMessageNotFound, got %v", err)
	}
}

func TestDelete_OtherErrorsPassThrough(t *testing.T) {
	s := &fakeSession{deleteErr: &discordgo.RESTError{
		Response: &http.Response{StatusCode: http.StatusForbidden},
		Message:  &discordgo.APIErrorMessage{Code: 50013, Message: "Missing Permissions"},
	}}
	c := New(s)

	err := c.Delete(context.Background(), "c1", "m1")
	if err == nil || errors.Is(err, chat.ErrMessageNotFound) {
		t.Fatalf("expected plain error, got %v", err)
	}
}

func TestSend_ClipsLongContent(t *testing.T) {
	s := &fakeSession{}
	c := New(s)

	id, err := c.Send(context.Background(), "c1", strings.Repeat("x", 2500))
	if err != nil || id != "m1" {
		t.Fatalf("send: id=%q err=%v", id, err)
	}
	if n := utf8.RuneCountInString(s.sent[0]); n != maxContent {
		t.Fatalf("clipped length=%d", n)
	}
}
