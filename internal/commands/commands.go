// Package commands holds the chat commands and observers the bot registers
// on the gateway.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fabricbot/fabricbot/internal/gateway"
	"github.com/fabricbot/fabricbot/internal/health"
	"github.com/fabricbot/fabricbot/internal/humanize"
	"github.com/fabricbot/fabricbot/internal/identity"
)

// Recorder receives notable events for later review.
type Recorder interface {
	LogWarn(component, message string) error
}

// Deps is what the commands read from.
type Deps struct {
	Started  time.Time
	Now      func() time.Time
	Roles    identity.RoleSource
	Health   *health.Registry
	Recorder Recorder
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// Register wires every command and observer into g.
func Register(g *gateway.Gateway, d Deps) {
	g.Handle("uptime", Uptime(d))
	g.Handle("roles", Roles(d))
	if d.Health != nil {
		g.Handle("status", Status(d))
	}
	g.Observe(NewAccountWatcher(d))
}

// Uptime replies with how long the process has been running.
func Uptime(d Deps) gateway.Handler {
	return func(ctx context.Context, msg gateway.Message, args []string) (string, error) {
		text, ok := humanize.Duration(d.now().Sub(d.Started))
		if !ok {
			return "I just started.", nil
		}
		return "Up for " + text + ".", nil
	}
}

// Roles lists the staff categories the caller holds.
func Roles(d Deps) gateway.Handler {
	return func(ctx context.Context, msg gateway.Message, args []string) (string, error) {
		cats := identity.CategoriesOf(d.Roles, msg.RoleIDs)
		if len(cats) == 0 {
			return "You hold no special roles.", nil
		}
		keys := make([]string, len(cats))
		for i, c := range cats {
			keys[i] = c.Key()
		}
		return "Your roles: " + humanize.Join(keys) + ".", nil
	}
}

// Status summarizes component health.
func Status(d Deps) gateway.Handler {
	return func(ctx context.Context, msg gateway.Message, args []string) (string, error) {
		report := d.Health.Check()
		var b strings.Builder
		fmt.Fprintf(&b, "Status: %s", report.Status())
		for _, name := range report.Names() {
			c := report.Components[name]
			fmt.Fprintf(&b, "\n%s: %s", name, c.Status)
			if c.Message != "" {
				fmt.Fprintf(&b, " (%s)", c.Message)
			}
		}
		return b.String(), nil
	}
}

// NewAccountWatcher notes messages from accounts created within
// identity.NewAccountWindow.
func NewAccountWatcher(d Deps) gateway.Observer {
	return func(ctx context.Context, msg gateway.Message) {
		now := d.now()
		created, err := identity.CreatedAt(msg.AuthorID)
		if err != nil || !identity.IsRecent(created, now) {
			return
		}
		age, ok := humanize.Duration(now.Sub(created))
		if !ok {
			age = "moments"
		}
		slog.Warn("Message from new account", "component", "identity", "author_id", msg.AuthorID, "channel_id", msg.ChannelID, "age", age)
		if d.Recorder == nil {
			return
		}
		text := fmt.Sprintf("new account %s (created %s ago) posted in %s", msg.AuthorID, age, msg.ChannelID)
		if err := d.Recorder.LogWarn("identity", text); err != nil {
			slog.Warn("Failed to record new account", "component", "identity", "error", err)
		}
	}
}
