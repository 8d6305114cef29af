package cli

import (
	"context"
	"fmt"

	"github.com/fabricbot/fabricbot/internal/config"
	"github.com/fabricbot/fabricbot/internal/store"
	"github.com/spf13/cobra"
)

// Version information (set at build time via ldflags)
var Version = "dev"

// Global flags
var configPath string

// cfg is loaded once before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "fabricbot",
	Short: "Discord housekeeping bot",
	Long: `Fabric Bot answers a few chat commands, deletes each exchange after a
configurable delay, and provisions its "Fabric Bot" webhook in the channels
listed under hooks.channels.

Use "fabricbot run" to connect and serve.`,
	Version:       Version,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		initLogger(cfg.Log.Level)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default ./fabricbot.yaml or .fabricbot/fabricbot.yaml)")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// openStore opens the configured database.
func openStore(ctx context.Context) (*store.DB, error) {
	db, err := store.Open(ctx, cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", cfg.Database.Path, err)
	}
	return db, nil
}
