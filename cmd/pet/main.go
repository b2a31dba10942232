// pet is a tiny virtual pet service: an HTTP API holding the pet's hearts and
// earmuffs, plus a CLI and terminal control panel that drive it.
//
// Usage:
//
//	pet serve                - Start the HTTP API (and optionally the SSH panel)
//	pet state                - Show the current state
//	pet add | remove         - Add or remove a heart
//	pet mute                 - Toggle the earmuffs
//	pet set --hearts 5       - Update fields directly
//	pet reset                - Restore the defaults
//	pet tui                  - Open the control panel against a server
//	pet history              - Show recent changes
//	pet config               - Print the default configuration
//
// Global flags:
//
//	--config <path>     - Config file for serve and --local history
//	--server <url>      - API base URL (default: http://localhost:3001/api/pet)
//	--log-level <lvl>   - Log level override
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-pet/internal/client"
	"github.com/vovakirdan/tui-pet/internal/config"
)

var (
	// Global flags
	flagConfig   string
	flagServer   string
	flagLogLevel string
	flagJSON     bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pet",
	Short: "Tiny virtual pet - keep its hearts up",
	Long: `Pet is a tiny virtual pet with up to six hearts and a pair of earmuffs.

The server keeps the state in memory; every other command talks to it
over HTTP.

Examples:
  pet serve
  pet add
  pet set --hearts 6 --muted=false
  pet tui --server http://pet.local:3001/api/pet`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", client.DefaultBaseURL, "Pet API base URL")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Print raw JSON instead of the status view")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(stateCmd, addCmd, removeCmd, muteCmd, setCmd, resetCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
}

// loadConfig loads the config and applies the --log-level override.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagLogLevel != "" {
		if _, err := log.ParseLevel(flagLogLevel); err != nil {
			return cfg, fmt.Errorf("invalid --log-level: %w", err)
		}
		cfg.Log.Level = flagLogLevel
	}
	return cfg, nil
}

func newLogger(level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "pet",
	})
	if lvl, err := log.ParseLevel(level); err == nil {
		logger.SetLevel(lvl)
	}
	return logger
}

func newClient() (*client.Client, error) {
	c, err := client.New(flagServer)
	if err != nil {
		return nil, fmt.Errorf("invalid --server: %w", err)
	}
	return c, nil
}
