package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fabricbot/fabricbot/internal/store"
	"github.com/spf13/cobra"
)

const maxLogLimit = 200

var (
	logsLevel     string
	logsComponent string
	logsLimit     int
	logsJSON      bool
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show recorded background events, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		limit := logsLimit
		if limit <= 0 {
			limit = 50
		}
		if limit > maxLogLimit {
			limit = maxLogLimit
		}
		logStore := store.NewLogStore(db.DB)
		entries, err := logStore.GetLogs(strings.ToLower(logsLevel), logsComponent, limit)
		if err != nil {
			return fmt.Errorf("read logs: %w", err)
		}
		if logsJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}
		total, err := logStore.Count()
		if err != nil {
			return fmt.Errorf("count logs: %w", err)
		}
		return printLogs(cmd.OutOrStdout(), entries, total)
	},
}

func init() {
	logsCmd.Flags().StringVar(&logsLevel, "level", "", "Filter by level (error, warn, info)")
	logsCmd.Flags().StringVar(&logsComponent, "component", "", "Filter by component (deleter, hooks, identity)")
	logsCmd.Flags().IntVarP(&logsLimit, "limit", "n", 50, "Maximum entries to show")
	logsCmd.Flags().BoolVarP(&logsJSON, "json", "j", false, "Output in JSON format")
	rootCmd.AddCommand(logsCmd)
}

func printLogs(w io.Writer, entries []store.LogEntry, total int) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No log entries.")
		return err
	}
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%s %-5s [%s] %s\n", e.Timestamp.Format("2006-01-02 15:04:05"), strings.ToUpper(e.Level), e.Component, e.Message); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d of %d entries shown\n", len(entries), total)
	return err
}
