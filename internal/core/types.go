package core

import "errors"

// ErrNotFound marks a remote resource that is already gone.
var ErrNotFound = errors.New("remote resource not found")

// MessageHandle addresses a message on the platform.
type MessageHandle struct {
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id"`
}

func (h MessageHandle) String() string {
	return h.ChannelID + "/" + h.MessageID
}

// HookRecord is a webhook bound to a channel.
type HookRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ChannelID string `json:"channel_id"`
	Token     string `json:"-"` // only returned to the creator; never logged
}
