// Package discord adapts a discordgo session to the bot's remote client and
// gateway channel interfaces.
package discord

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"github.com/fabricbot/fabricbot/internal/core"
)

// Session is the subset of *discordgo.Session the client uses.
type Session interface {
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
	ChannelWebhooks(channelID string, options ...discordgo.RequestOption) ([]*discordgo.Webhook, error)
	WebhookCreate(channelID, name, avatar string, options ...discordgo.RequestOption) (*discordgo.Webhook, error)
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Client implements core.RemoteClient over the Discord REST API.
type Client struct {
	session Session
}

var _ core.RemoteClient = (*Client)(nil)

// NewClient wraps an authenticated session.
func NewClient(s Session) *Client {
	return &Client{session: s}
}

// NewSession creates a bot session for token. It is not connected yet.
func NewSession(token string) (*discordgo.Session, error) {
	if token == "" {
		return nil, errors.New("discord token not set: add discord.token to config or set FABRICBOT_DISCORD_TOKEN")
	}
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent
	return s, nil
}

// DeleteMessage deletes one message. A message or channel that no longer
// exists yields an error wrapping core.ErrNotFound.
func (c *Client) DeleteMessage(ctx context.Context, msg core.MessageHandle) error {
	err := c.session.ChannelMessageDelete(msg.ChannelID, msg.MessageID, discordgo.WithContext(ctx))
	if err != nil {
		return classify(fmt.Errorf("delete message %s: %w", msg, err))
	}
	return nil
}

// ListHooks lists the webhooks bound to a channel.
func (c *Client) ListHooks(ctx context.Context, channelID string) ([]core.HookRecord, error) {
	hooks, err := c.session.ChannelWebhooks(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, classify(fmt.Errorf("list webhooks: %w", err))
	}
	out := make([]core.HookRecord, 0, len(hooks))
	for _, h := range hooks {
		out = append(out, toRecord(h))
	}
	return out, nil
}

// CreateHook creates a webhook with the given name and avatar image.
func (c *Client) CreateHook(ctx context.Context, channelID, name string, avatar []byte) (*core.HookRecord, error) {
	h, err := c.session.WebhookCreate(channelID, name, AvatarDataURI(avatar), discordgo.WithContext(ctx))
	if err != nil {
		return nil, classify(fmt.Errorf("create webhook: %w", err))
	}
	rec := toRecord(h)
	return &rec, nil
}

// SendMessage posts content to a channel and returns the posted message.
func (c *Client) SendMessage(ctx context.Context, channelID, content string) (core.MessageHandle, error) {
	m, err := c.session.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	if err != nil {
		return core.MessageHandle{}, classify(fmt.Errorf("send message: %w", err))
	}
	return core.MessageHandle{ChannelID: m.ChannelID, MessageID: m.ID}, nil
}

// AvatarDataURI encodes image bytes the way the API expects avatars.
func AvatarDataURI(img []byte) string {
	if len(img) == 0 {
		return ""
	}
	return "data:" + http.DetectContentType(img) + ";base64," + base64.StdEncoding.EncodeToString(img)
}

func toRecord(h *discordgo.Webhook) core.HookRecord {
	return core.HookRecord{
		ID:        h.ID,
		Name:      h.Name,
		ChannelID: h.ChannelID,
		Token:     h.Token,
	}
}

// classify marks "already gone" responses with core.ErrNotFound.
func classify(err error) error {
	var rest *discordgo.RESTError
	if !errors.As(err, &rest) {
		return err
	}
	if rest.Response != nil && rest.Response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %w", core.ErrNotFound, err)
	}
	if rest.Message != nil {
		switch rest.Message.Code {
		case discordgo.ErrCodeUnknownMessage, discordgo.ErrCodeUnknownChannel, discordgo.ErrCodeUnknownWebhook:
			return fmt.Errorf("%w: %w", core.ErrNotFound, err)
		}
	}
	return err
}
