package main

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-pet/internal/storage"
)

var (
	flagHistoryLimit int
	flagHistoryLocal bool
	flagHistoryClear bool
	flagHistoryID    string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent changes",
	Long: `Display the most recent changes from the change journal, newest first.

By default the running server is asked. With --local the journal database
from the config file is read directly, and per-action totals are shown.

Examples:
  pet history
  pet history --limit 50
  pet history --local
  pet history --local --clear
  pet history --local --id 0b6c2f9e-...`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "Number of entries to show (max 100)")
	historyCmd.Flags().BoolVar(&flagHistoryLocal, "local", false, "Read the journal database directly")
	historyCmd.Flags().BoolVar(&flagHistoryClear, "clear", false, "Delete the whole journal (requires --local)")
	historyCmd.Flags().StringVar(&flagHistoryID, "id", "", "Show a single change by its change id (requires --local)")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if flagHistoryClear && !flagHistoryLocal {
		return fmt.Errorf("--clear requires --local")
	}
	if flagHistoryID != "" && !flagHistoryLocal {
		return fmt.Errorf("--id requires --local")
	}
	if flagHistoryLocal {
		return runLocalHistory(cmd.OutOrStdout())
	}

	c, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
	defer cancel()

	entries, err := c.History(ctx, flagHistoryLimit)
	if err != nil {
		return fmt.Errorf("cannot fetch history: %w", err)
	}
	return printHistory(cmd.OutOrStdout(), entries)
}

func runLocalHistory(w io.Writer) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := storage.Open(cfg.Journal.DBPath)
	if err != nil {
		return fmt.Errorf("cannot open journal: %w", err)
	}
	defer store.Close()

	if flagHistoryClear {
		if err := store.ClearChanges(); err != nil {
			return err
		}
		fmt.Fprintln(w, "Journal cleared.")
		return nil
	}

	if flagHistoryID != "" {
		entry, err := store.ChangeByID(flagHistoryID)
		if err != nil {
			return err
		}
		if entry == nil {
			return fmt.Errorf("no change with id %q", flagHistoryID)
		}
		return printHistory(w, []storage.ChangeEntry{*entry})
	}

	entries, err := store.RecentChanges(flagHistoryLimit)
	if err != nil {
		return fmt.Errorf("cannot read journal: %w", err)
	}
	if err := printHistory(w, entries); err != nil || len(entries) == 0 || flagJSON {
		return err
	}

	stats, err := store.Stats()
	if err != nil {
		return err
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Totals")
	for _, action := range slices.Sorted(maps.Keys(stats)) {
		st := stats[action]
		fmt.Fprintf(w, "  %-14s  %5d  last %s\n", action, st.Count, st.LastSeen.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func printHistory(w io.Writer, entries []storage.ChangeEntry) error {
	if flagJSON {
		return printJSON(w, entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(w, "No changes recorded yet.")
		return nil
	}

	fmt.Fprintf(w, "  %-6s  %-14s  %-6s  %-6s  %s\n", "#", "Action", "Hearts", "Audio", "When")
	fmt.Fprintf(w, "  %-6s  %-14s  %-6s  %-6s  %s\n", "-", "------", "------", "-----", "----")
	for _, e := range entries {
		audio := "on"
		if e.IsMuted {
			audio = "muted"
		}
		fmt.Fprintf(w, "  %-6d  %-14s  %-6d  %-6s  %s\n",
			e.ID, e.Action, e.Hearts, audio, e.LastUpdated.Local().Format("2006-01-02 15:04:05"))
	}
	return nil
}
