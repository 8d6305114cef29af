package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fabricbot/fabricbot/internal/bootstrap"
	"github.com/fabricbot/fabricbot/internal/channels/discord"
	"github.com/fabricbot/fabricbot/internal/commands"
	"github.com/fabricbot/fabricbot/internal/gateway"
	"github.com/fabricbot/fabricbot/internal/health"
	"github.com/fabricbot/fabricbot/internal/scheduler"
	"github.com/fabricbot/fabricbot/internal/store"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to Discord and serve commands until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func serve(ctx context.Context) error {
	started := time.Now()

	db, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	logStore := store.NewLogStore(db.DB)

	session, err := discord.NewSession(cfg.Discord.Token)
	if err != nil {
		return err
	}
	channel := discord.NewChannel(session)
	client := channel.Client()

	// Hooks are provisioned before the gateway takes traffic; failures are
	// reported but do not keep the bot offline.
	provisioner := bootstrap.NewHookProvisioner(client, bootstrap.WithJournal(db))
	hooks, err := provisioner.EnsureAll(ctx, cfg.Hooks.Channels)
	for _, h := range hooks {
		slog.Info("Hook ready", "component", "hooks", "channel_id", h.ChannelID, "hook_id", h.ID)
		if lerr := logStore.LogInfo("hooks", fmt.Sprintf("hook %s ready in channel %s", h.ID, h.ChannelID)); lerr != nil {
			slog.Warn("Failed to record hook", "component", "hooks", "error", lerr)
		}
	}
	if err != nil {
		slog.Error("Hook provisioning incomplete", "component", "hooks", "error", err)
		if lerr := logStore.LogError("hooks", err.Error()); lerr != nil {
			slog.Warn("Failed to record provisioning error", "component", "hooks", "error", lerr)
		}
	}

	deleter := scheduler.NewDeleter(ctx, client, scheduler.WithRecorder(logStore))

	registry := health.NewRegistry()
	registry.Register("database", db)
	registry.Register("deleter", deleter)

	gw := gateway.New(deleter, gateway.CleanupPolicy{
		Delay: cfg.Cleanup.Delay,
		Retry: cfg.Cleanup.Retry,
	})
	gw.Register(channel)
	commands.Register(gw, commands.Deps{
		Started:  started,
		Roles:    cfg.RoleTable(),
		Health:   registry,
		Recorder: logStore,
	})

	slog.Info("Fabric Bot starting", "component", "cli", "version", Version, "cleanup_delay", cfg.Cleanup.Delay)
	if err := gw.StartAll(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("gateway: %w", err)
	}

	// Pending deletions are abandoned with ctx; wait for their goroutines.
	deleter.Wait()
	if err := logStore.Cleanup(); err != nil {
		slog.Warn("Log cleanup failed", "component", "cli", "error", err)
	}
	slog.Info("Fabric Bot stopped", "component", "cli")
	return nil
}
