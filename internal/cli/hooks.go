package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fabricbot/fabricbot/internal/bootstrap"
	"github.com/fabricbot/fabricbot/internal/channels/discord"
	"github.com/fabricbot/fabricbot/internal/core"
	"github.com/fabricbot/fabricbot/internal/store"
	"github.com/spf13/cobra"
)

var hooksCmd = &cobra.Command{
	Use:   "hooks",
	Short: "Manage the bot's channel webhooks",
}

var hooksEnsureCmd = &cobra.Command{
	Use:   "ensure [channel...]",
	Short: "Provision the webhook in each channel (default: hooks.channels)",
	RunE: func(cmd *cobra.Command, args []string) error {
		channels := args
		if len(channels) == 0 {
			channels = cfg.Hooks.Channels
		}
		if len(channels) == 0 {
			return fmt.Errorf("no channels given and hooks.channels is empty")
		}

		ctx := cmd.Context()
		db, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		session, err := discord.NewSession(cfg.Discord.Token)
		if err != nil {
			return err
		}
		return ensureHooks(ctx, cmd.OutOrStdout(), discord.NewClient(session), db, channels)
	},
}

var hooksListChannel string

var hooksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List webhooks this bot has created",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		hooks, err := db.ListHooks(ctx, hooksListChannel)
		if err != nil {
			return fmt.Errorf("list hooks: %w", err)
		}
		return printJournal(cmd.OutOrStdout(), hooks)
	},
}

func init() {
	hooksListCmd.Flags().StringVar(&hooksListChannel, "channel", "", "Only list hooks in this channel")
	hooksCmd.AddCommand(hooksEnsureCmd, hooksListCmd)
	rootCmd.AddCommand(hooksCmd)
}

// ensureHooks provisions every channel and prints what it got. Channels that
// fail are reported in the returned error after the rest are printed.
func ensureHooks(ctx context.Context, w io.Writer, client core.HookClient, journal bootstrap.Journal, channels []string) error {
	p := bootstrap.NewHookProvisioner(client, bootstrap.WithJournal(journal))
	hooks, err := p.EnsureAll(ctx, channels)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CHANNEL\tHOOK\tNAME")
	for _, h := range hooks {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", h.ChannelID, h.ID, h.Name)
	}
	if ferr := tw.Flush(); ferr != nil {
		return ferr
	}
	return err
}

func printJournal(w io.Writer, hooks []store.JournaledHook) error {
	if len(hooks) == 0 {
		_, err := fmt.Fprintln(w, "No hooks recorded.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CREATED\tCHANNEL\tHOOK\tNAME")
	for _, h := range hooks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", h.CreatedAt.Format("2006-01-02 15:04:05"), h.ChannelID, h.HookID, h.Name)
	}
	return tw.Flush()
}
