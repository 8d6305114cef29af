package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/fabricbot/fabricbot/internal/core"
	"github.com/fabricbot/fabricbot/internal/gateway"
)

// ChannelName identifies Discord in gateway messages.
const ChannelName = "discord"

// Channel implements gateway.Channel: it streams message events from the
// websocket into the gateway and posts replies over REST.
type Channel struct {
	session *discordgo.Session
	client  *Client
}

// NewChannel wraps an unopened session.
func NewChannel(s *discordgo.Session) *Channel {
	return &Channel{session: s, client: NewClient(s)}
}

// Client returns the REST client sharing this channel's session.
func (c *Channel) Client() *Client { return c.client }

func (c *Channel) Name() string {
	return ChannelName
}

// Start opens the websocket and blocks until ctx is canceled.
func (c *Channel) Start(ctx context.Context, ingress chan<- gateway.Message) error {
	remove := c.session.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		msg, ok := toMessage(m)
		if !ok {
			return
		}
		select {
		case ingress <- msg:
		case <-ctx.Done():
		}
	})
	defer remove()

	if err := c.session.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}
	slog.Info("Discord connected", "component", "gateway")

	<-ctx.Done()
	return c.session.Close()
}

// Send posts content to channelID.
func (c *Channel) Send(ctx context.Context, channelID, content string) (core.MessageHandle, error) {
	return c.client.SendMessage(ctx, channelID, content)
}

// toMessage converts an event; bot authors (including ourselves) are dropped.
func toMessage(m *discordgo.MessageCreate) (gateway.Message, bool) {
	if m == nil || m.Message == nil || m.Author == nil || m.Author.Bot {
		return gateway.Message{}, false
	}
	msg := gateway.Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		AuthorID:  m.Author.ID,
		Content:   m.Content,
		Channel:   ChannelName,
	}
	if m.Member != nil {
		msg.RoleIDs = append(msg.RoleIDs, m.Member.Roles...)
	}
	return msg, true
}
