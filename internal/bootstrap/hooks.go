package bootstrap

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fabricbot/fabricbot/internal/core"
	"golang.org/x/sync/singleflight"
)

// HookName is the well-known name the bot's webhook is found by.
const HookName = "Fabric Bot"

//go:embed assets/avatar.png
var defaultAvatar []byte

// DefaultAvatar returns the bundled webhook avatar.
func DefaultAvatar() ([]byte, error) {
	if len(defaultAvatar) == 0 {
		return nil, errors.New("bundled avatar is empty")
	}
	return defaultAvatar, nil
}

// ProvisionError reports which step of hook provisioning failed for a channel.
type ProvisionError struct {
	ChannelID string
	Op        string // "list", "avatar" or "create"
	Err       error
}

func (e *ProvisionError) Error() string {
	return fmt.Sprintf("provision hook in channel %s: %s: %v", e.ChannelID, e.Op, e.Err)
}

func (e *ProvisionError) Unwrap() error { return e.Err }

// Journal records hooks created by this process.
type Journal interface {
	RecordHook(ctx context.Context, hook core.HookRecord) error
}

// HookProvisioner returns the bot's webhook in a channel, creating it on first use.
//
// Concurrent calls for the same channel inside one process share a single
// list-then-create sequence. Two processes provisioning the same channel at the
// same moment can still both create a hook; run provisioning from one place.
type HookProvisioner struct {
	client   core.HookClient
	avatar   func() ([]byte, error)
	journal  Journal
	inflight singleflight.Group
}

// ProvisionerOption configures a HookProvisioner.
type ProvisionerOption func(*HookProvisioner)

// WithAvatar replaces the bundled avatar loader.
func WithAvatar(load func() ([]byte, error)) ProvisionerOption {
	return func(p *HookProvisioner) { p.avatar = load }
}

// WithJournal records every created hook.
func WithJournal(j Journal) ProvisionerOption {
	return func(p *HookProvisioner) { p.journal = j }
}

// NewHookProvisioner creates a provisioner backed by client.
func NewHookProvisioner(client core.HookClient, opts ...ProvisionerOption) *HookProvisioner {
	p := &HookProvisioner{
		client: client,
		avatar: DefaultAvatar,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Ensure returns the hook named HookName in channelID, creating it if absent.
// Failures are returned as *ProvisionError and are not retried. A caller
// whose ctx ends while sharing another caller's call gets ctx.Err(); the
// shared call itself is not canceled by any one caller.
func (p *HookProvisioner) Ensure(ctx context.Context, channelID string) (*core.HookRecord, error) {
	shared := context.WithoutCancel(ctx)
	ch := p.inflight.DoChan(channelID, func() (interface{}, error) {
		return p.ensure(shared, channelID)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		hook := *res.Val.(*core.HookRecord)
		return &hook, nil
	}
}

// EnsureAll provisions each channel in order and keeps going past failures.
func (p *HookProvisioner) EnsureAll(ctx context.Context, channelIDs []string) ([]core.HookRecord, error) {
	var hooks []core.HookRecord
	var errs []error
	for _, id := range channelIDs {
		hook, err := p.Ensure(ctx, id)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		hooks = append(hooks, *hook)
	}
	return hooks, errors.Join(errs...)
}

func (p *HookProvisioner) ensure(ctx context.Context, channelID string) (*core.HookRecord, error) {
	existing, err := p.client.ListHooks(ctx, channelID)
	if err != nil {
		return nil, &ProvisionError{ChannelID: channelID, Op: "list", Err: err}
	}
	for i := range existing {
		if existing[i].Name == HookName {
			return &existing[i], nil
		}
	}

	avatar, err := p.avatar()
	if err != nil {
		return nil, &ProvisionError{ChannelID: channelID, Op: "avatar", Err: err}
	}
	hook, err := p.client.CreateHook(ctx, channelID, HookName, avatar)
	if err != nil {
		return nil, &ProvisionError{ChannelID: channelID, Op: "create", Err: err}
	}
	slog.Info("Webhook created", "component", "hooks", "channel_id", channelID, "hook_id", hook.ID)

	if p.journal != nil {
		if err := p.journal.RecordHook(ctx, *hook); err != nil {
			slog.Warn("Failed to journal webhook", "component", "hooks", "hook_id", hook.ID, "error", err)
		}
	}
	return hook, nil
}
