package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-pet/internal/client"
	"github.com/vovakirdan/tui-pet/internal/pet"
	"github.com/vovakirdan/tui-pet/internal/platform/tui"
)

// requestTimeout bounds a single CLI call.
const requestTimeout = 10 * time.Second

var (
	flagSetHearts int
	flagSetMuted  bool
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show the pet's current state",
	Args:  cobra.NoArgs,
	RunE: clientAction(func(ctx context.Context, c *client.Client) (client.Result, error) {
		return c.GetState(ctx)
	}),
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a heart (up to 6)",
	Args:  cobra.NoArgs,
	RunE: clientAction(func(ctx context.Context, c *client.Client) (client.Result, error) {
		return c.AddHeart(ctx)
	}),
}

var removeCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove a heart (down to 0)",
	Args:  cobra.NoArgs,
	RunE: clientAction(func(ctx context.Context, c *client.Client) (client.Result, error) {
		return c.RemoveHeart(ctx)
	}),
}

var muteCmd = &cobra.Command{
	Use:   "mute",
	Short: "Toggle the pet's earmuffs",
	Args:  cobra.NoArgs,
	RunE: clientAction(func(ctx context.Context, c *client.Client) (client.Result, error) {
		return c.ToggleAudio(ctx)
	}),
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore 3 hearts and earmuffs off",
	Args:  cobra.NoArgs,
	RunE: clientAction(func(ctx context.Context, c *client.Client) (client.Result, error) {
		return c.Reset(ctx)
	}),
}

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Set hearts and/or the muted flag",
	Long: `Update one or both fields at once. Only the flags you pass are sent;
the other field keeps its value.

Examples:
  pet set --hearts 6
  pet set --muted
  pet set --hearts 0 --muted=false`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		u, err := updateFromFlags(cmd)
		if err != nil {
			return err
		}
		return clientAction(func(ctx context.Context, c *client.Client) (client.Result, error) {
			return c.UpdateState(ctx, u)
		})(cmd, nil)
	},
}

func init() {
	setCmd.Flags().IntVar(&flagSetHearts, "hearts", pet.DefaultHearts, "Heart count (0-6)")
	setCmd.Flags().BoolVar(&flagSetMuted, "muted", false, "Earmuffs on")
}

// updateFromFlags builds an update from the flags that were actually given.
func updateFromFlags(cmd *cobra.Command) (pet.Update, error) {
	var u pet.Update
	if cmd.Flags().Changed("hearts") {
		hearts := flagSetHearts
		u.Hearts = &hearts
	}
	if cmd.Flags().Changed("muted") {
		muted := flagSetMuted
		u.IsMuted = &muted
	}
	if u.Hearts == nil && u.IsMuted == nil {
		return u, fmt.Errorf("nothing to set: pass --hearts and/or --muted")
	}
	return u, nil
}

// clientAction wraps a single API call into a cobra RunE.
func clientAction(call func(context.Context, *client.Client) (client.Result, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()

		res, err := call(ctx, c)
		if err != nil {
			return err
		}
		return printResult(cmd.OutOrStdout(), res)
	}
}

func printResult(w io.Writer, res client.Result) error {
	if flagJSON {
		return printJSON(w, res.State)
	}

	if res.Message != "" {
		fmt.Fprintln(w, res.Message)
	}
	fmt.Fprint(w, tui.RenderStatus(res.State))
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
