package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fabricbot/fabricbot/internal/core"
	"github.com/fabricbot/fabricbot/internal/scheduler"
)

// Message represents a chat message flowing through the gateway
type Message struct {
	ID        string
	ChannelID string // platform channel the message was posted in
	AuthorID  string
	Content   string
	Channel   string // gateway channel name, e.g. "discord"
	RoleIDs   []string
}

// Handle addresses the message for deletion.
func (m Message) Handle() core.MessageHandle {
	return core.MessageHandle{ChannelID: m.ChannelID, MessageID: m.ID}
}

// Channel defines the interface for all communication channels
type Channel interface {
	// Name returns the unique name of the channel
	Name() string
	// Start begins listening for messages. It should block until ctx is canceled.
	Start(ctx context.Context, ingress chan<- Message) error
	// Send posts content to a platform channel and returns the posted message.
	Send(ctx context.Context, channelID, content string) (core.MessageHandle, error)
}

// DeleteScheduler is satisfied by *scheduler.Deleter.
type DeleteScheduler interface {
	Schedule(msg core.MessageHandle, delay time.Duration, allowRetry bool) *scheduler.Task
}

// Handler answers a command. args are the whitespace separated words after
// the command name. An empty reply posts nothing.
type Handler func(ctx context.Context, msg Message, args []string) (string, error)

// Observer sees every message, command or not.
type Observer func(ctx context.Context, msg Message)

// CleanupPolicy says when command invocations and their replies are removed.
type CleanupPolicy struct {
	Delay time.Duration
	Retry bool
}

// Gateway reads messages from its channels, runs commands and cleans up after them.
type Gateway struct {
	Prefix string

	channels  map[string]Channel
	handlers  map[string]Handler
	observers []Observer
	ingress   chan Message
	deleter   DeleteScheduler
	cleanup   CleanupPolicy
	mu        sync.RWMutex

	dispatching sync.WaitGroup
}

// New creates a Gateway. A nil deleter leaves messages in place.
func New(deleter DeleteScheduler, cleanup CleanupPolicy) *Gateway {
	return &Gateway{
		Prefix:   "!",
		channels: make(map[string]Channel),
		handlers: make(map[string]Handler),
		ingress:  make(chan Message, 100),
		deleter:  deleter,
		cleanup:  cleanup,
	}
}

// Register adds a channel to the gateway
func (g *Gateway) Register(c Channel) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.channels[c.Name()] = c
}

// Handle registers a command; names are case-insensitive.
func (g *Gateway) Handle(name string, h Handler) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.handlers[strings.ToLower(name)] = h
}

// Observe registers an observer.
func (g *Gateway) Observe(o Observer) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.observers = append(g.observers, o)
}

// StartAll starts all registered channels and the ingress processor, and
// blocks until ctx is canceled, every channel has stopped and every
// in-flight command has finished.
func (g *Gateway) StartAll(ctx context.Context) error {
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		g.processIngress(ctx)
	}()

	g.mu.RLock()
	for _, c := range g.channels {
		wg.Add(1)
		go func(ch Channel) {
			defer wg.Done()
			if err := ch.Start(ctx, g.ingress); err != nil {
				slog.Error("Channel stopped", "component", "gateway", "channel", ch.Name(), "error", err)
			}
		}(c)
	}
	g.mu.RUnlock()

	<-ctx.Done()
	wg.Wait()
	// processIngress has returned, so no dispatch can start now.
	g.dispatching.Wait()
	return nil
}

func (g *Gateway) processIngress(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-g.ingress:
			g.dispatching.Add(1)
			go func() {
				defer g.dispatching.Done()
				g.Dispatch(ctx, msg)
			}()
		}
	}
}

// Dispatch runs observers and, if msg is a known command, its handler.
// The reply is posted to the same channel and both messages are scheduled
// for deletion.
func (g *Gateway) Dispatch(ctx context.Context, msg Message) {
	g.mu.RLock()
	observers := append([]Observer(nil), g.observers...)
	g.mu.RUnlock()
	for _, o := range observers {
		o(ctx, msg)
	}

	name, args, ok := g.parse(msg.Content)
	if !ok {
		return
	}
	g.mu.RLock()
	h, ok := g.handlers[name]
	ch, chOK := g.channels[msg.Channel]
	g.mu.RUnlock()
	if !ok {
		return
	}

	log := slog.With("component", "gateway", "command", name, "channel_id", msg.ChannelID, "author_id", msg.AuthorID)
	reply, err := h(ctx, msg, args)
	if err != nil {
		log.Error("Command failed", "error", err)
		reply = fmt.Sprintf("Error: %v", err)
	}

	g.scheduleCleanup(msg.Handle())
	if reply == "" {
		return
	}
	if !chOK {
		log.Error("Channel not found for reply", "channel", msg.Channel)
		return
	}
	posted, err := ch.Send(ctx, msg.ChannelID, reply)
	if err != nil {
		log.Error("Failed to send reply", "error", err)
		return
	}
	g.scheduleCleanup(posted)
}

func (g *Gateway) scheduleCleanup(h core.MessageHandle) {
	if g.deleter == nil {
		return
	}
	g.deleter.Schedule(h, g.cleanup.Delay, g.cleanup.Retry)
}

func (g *Gateway) parse(content string) (string, []string, bool) {
	if g.Prefix == "" || !strings.HasPrefix(content, g.Prefix) {
		return "", nil, false
	}
	fields := strings.Fields(content[len(g.Prefix):])
	if len(fields) == 0 {
		return "", nil, false
	}
	return strings.ToLower(fields[0]), fields[1:], true
}
