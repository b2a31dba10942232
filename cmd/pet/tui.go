package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-pet/internal/platform/tui"
)

var flagPoll time.Duration

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the control panel",
	Long: `Open an interactive control panel against a running server.

Controls:
  ←/a   add heart       →/d   remove heart
  m     earmuffs        r     reset
  h     history         q     quit

Changes made by other clients show up on the next poll.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().DurationVar(&flagPoll, "poll", 2*time.Second, "How often to refresh from the server (0 disables)")
}

func runTUI(_ *cobra.Command, _ []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}

	opts := []tui.ModelOption{
		tui.WithTitle("Pet @ " + c.BaseURL()),
		tui.WithPolling(flagPoll),
	}
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		opts = append(opts, tui.WithSize(w, h))
	}

	return tui.Run(tui.RemoteController{Client: c}, opts...)
}
