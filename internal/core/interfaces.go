package core

import (
	"context"
)

// MessageDeleter removes a single message from the platform.
// Implementations return an error wrapping ErrNotFound when the message
// (or its channel) no longer exists.
type MessageDeleter interface {
	DeleteMessage(ctx context.Context, msg MessageHandle) error
}

// HookClient lists and creates the webhooks bound to a channel.
type HookClient interface {
	ListHooks(ctx context.Context, channelID string) ([]HookRecord, error)
	CreateHook(ctx context.Context, channelID, name string, avatar []byte) (*HookRecord, error)
}

// RemoteClient is the full capability surface the bot needs from the platform.
type RemoteClient interface {
	MessageDeleter
	HookClient
}
