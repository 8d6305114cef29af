package commands

import (
	"context"

	"github.com/fabricbot/fabricbot/internal/core"
	"github.com/fabricbot/fabricbot/internal/gateway"
)

type replyChannel struct {
	sent []string
}

func (c *replyChannel) Name() string { return "test" }

func (c *replyChannel) Start(ctx context.Context, ingress chan<- gateway.Message) error {
	<-ctx.Done()
	return nil
}

func (c *replyChannel) Send(ctx context.Context, channelID, content string) (core.MessageHandle, error) {
	c.sent = append(c.sent, content)
	return core.MessageHandle{ChannelID: channelID, MessageID: "1"}, nil
}
