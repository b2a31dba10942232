package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/tui-pet/internal/api"
	"github.com/vovakirdan/tui-pet/internal/config"
	"github.com/vovakirdan/tui-pet/internal/pet"
	"github.com/vovakirdan/tui-pet/internal/platform/tui"
	"github.com/vovakirdan/tui-pet/internal/storage"
)

var (
	flagHTTPAddr  string
	flagSSH       bool
	flagSSHAddr   string
	flagNoJournal bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the pet server",
	Long: `Start the HTTP API. The pet lives in memory and starts with 3 hearts
and earmuffs off every time the server starts.

Optional extras:
  - The change journal records every change to SQLite (journal.enabled)
  - The SSH control panel shares the same pet (--ssh or ssh.enabled)

Examples:
  pet serve                      # Listen on :3001
  pet serve --addr :8080         # Listen on port 8080
  pet serve --ssh                # Also serve the control panel on :23235
  pet serve --config ./pet.yaml  # Use a specific config file

Connect to the SSH panel with:
  ssh localhost -p 23235`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagHTTPAddr, "addr", "", "HTTP listen address (overrides server.address)")
	serveCmd.Flags().BoolVar(&flagSSH, "ssh", false, "Enable the SSH control panel")
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh-addr", "", "SSH listen address (overrides ssh.address)")
	serveCmd.Flags().BoolVar(&flagNoJournal, "no-journal", false, "Disable the change journal")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyServeFlags(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return serve(ctx, cfg, logger)
}

// applyServeFlags lets command-line flags win over the config file.
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	if flagHTTPAddr != "" {
		cfg.Server.Address = flagHTTPAddr
	}
	if cmd.Flags().Changed("ssh") {
		cfg.SSH.Enabled = flagSSH
	}
	if flagSSHAddr != "" {
		cfg.SSH.Address = flagSSHAddr
	}
	if flagNoJournal {
		cfg.Journal.Enabled = false
	}
}

// journalBuffer is how many changes may queue for the journal writer
// before the oldest are dropped.
const journalBuffer = 4096

// serve runs every configured component until ctx is done or one of them fails.
func serve(ctx context.Context, cfg config.Config, logger *log.Logger) error {
	return run(ctx, cfg, pet.NewStore(), logger)
}

// run serves store. The journal writer outlives the servers so changes
// committed by in-flight requests during shutdown are still recorded.
func run(ctx context.Context, cfg config.Config, store *pet.Store, logger *log.Logger) error {
	var journal *storage.Store
	if cfg.Journal.Enabled {
		var err error
		journal, err = storage.Open(cfg.Journal.DBPath)
		if err != nil {
			return fmt.Errorf("cannot open journal: %w", err)
		}
		defer journal.Close()
	}

	var handlerOpts []api.HandlerOption
	var history tui.HistorySource
	if journal != nil {
		handlerOpts = append(handlerOpts, api.WithHistory(journal))
		history = journal
	}

	handler := api.NewHandler(store, logger.WithPrefix("api"), handlerOpts...)
	router := api.NewRouter(handler, api.RouterConfig{
		BasePath:       cfg.Server.BasePath,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}, logger.WithPrefix("http"))
	httpServer := api.NewServer(api.ServerConfig{
		Address:         cfg.Server.Address,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, router, logger.WithPrefix("http"))

	var sshServer *tui.SSHServer
	if cfg.SSH.Enabled {
		sshCfg := tui.DefaultSSHServerConfig()
		sshCfg.Address = cfg.SSH.Address
		sshCfg.HostKeyPath = cfg.SSH.HostKeyPath
		if cfg.SSH.IdleTimeout > 0 {
			sshCfg.IdleTimeout = cfg.SSH.IdleTimeout
		}
		if cfg.Server.ShutdownTimeout > 0 {
			sshCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
		}

		var err error
		sshServer, err = tui.NewSSHServer(sshCfg, store, history, logger.WithPrefix("ssh"))
		if err != nil {
			return err
		}
	}

	journalDone := make(chan error, 1)
	journalCtx, stopJournal := context.WithCancel(context.Background())
	defer stopJournal()
	if journal != nil {
		sub := store.Subscribe(journalBuffer)
		go func() {
			journalDone <- pet.RunJournal(journalCtx, sub, journal, logger.WithPrefix("journal"))
		}()
	} else {
		journalDone <- nil
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return httpServer.ListenAndServe(gctx)
	})

	sshAddr := ""
	if sshServer != nil {
		sshAddr = sshServer.Addr()
		g.Go(func() error {
			return sshServer.ListenAndServe(gctx)
		})
	}

	logger.Info("pet is awake",
		"hearts", store.State().Hearts,
		"api", cfg.Server.Address+cfg.Server.BasePath,
		"journal", cfg.Journal.Enabled,
		"ssh", sshAddr,
	)

	err := g.Wait()

	// Servers are down; flush what is left for the journal.
	stopJournal()
	if jerr := <-journalDone; err == nil {
		err = jerr
	}

	logger.Info("pet is asleep")
	return err
}
