package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-match3/internal/config"
	"github.com/vovakirdan/tui-match3/internal/platform/httpapi"
	"github.com/vovakirdan/tui-match3/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHTTPAddr    string
	flagHostKey     string
	flagIdleTimeout int
	flagGameTTL     time.Duration
	flagServeConfig string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve games over SSH and HTTP",
	Long: `Start an SSH server, an HTTP JSON API, or both. Every SSH session
and every HTTP game runs its own engine; they share only the journal.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.match3/host_key

HTTP endpoints:
  GET    /api/presets
  POST   /api/games               {"preset":"classic","seed":42}
  GET    /api/games/{id}
  POST   /api/games/{id}/activate {"row":3,"col":4}
  GET    /api/games/{id}/hint
  DELETE /api/games/{id}

Examples:
  match3 serve                       # SSH on :23234
  match3 serve --http :8080          # SSH and HTTP
  match3 serve --ssh "" --http :8080 # HTTP only
  match3 serve --host-key ./host_key

Users can connect with:
  ssh localhost -p 23234`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (empty to disable)")
	serveCmd.Flags().StringVar(&flagHTTPAddr, "http", "", "HTTP API address (empty to disable)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "SSH idle timeout in minutes before disconnecting")
	serveCmd.Flags().DurationVar(&flagGameTTL, "game-ttl", time.Hour, "Drop HTTP games unused for this long (0 = never)")
	serveCmd.Flags().StringVar(&flagServeConfig, "config", "", "Path to a custom match3 config YAML")
}

func runServe(cmd *cobra.Command, _ []string) error {
	if flagSSHAddr == "" && flagHTTPAddr == "" {
		return errors.New("nothing to serve: both --ssh and --http are empty")
	}

	settings, err := config.LoadMatch3(flagServeConfig)
	if err != nil {
		return err
	}

	store, err := openStore(false)
	if err != nil {
		return err
	}
	var journal tui.Store
	if store != nil {
		defer store.Close()
		journal = store
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	type result struct {
		name string
		err  error
	}
	done := make(chan result, 2)
	running := 0

	if flagSSHAddr != "" {
		cfg := tui.DefaultSSHServerConfig()
		cfg.Address = flagSSHAddr
		cfg.HostKeyPath = flagHostKey
		cfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
		cfg.TickRate = flagFPS

		srv, err := tui.NewSSHServer(cfg, settings, journal, logger.WithPrefix("match3-ssh"))
		if err != nil {
			return fmt.Errorf("creating SSH server: %w", err)
		}
		running++
		go func() { done <- result{"ssh", srv.ListenAndServe(ctx)} }()
		fmt.Printf("SSH: connect with ssh localhost -p %s\n", port(flagSSHAddr))
	}

	if flagHTTPAddr != "" {
		cfg := httpapi.DefaultConfig()
		cfg.Address = flagHTTPAddr
		cfg.IdleTTL = flagGameTTL

		api := httpapi.New(cfg, settings, journal, logger.WithPrefix("match3-http"))
		running++
		go func() { done <- result{"http", api.ListenAndServe(ctx)} }()
		fmt.Printf("HTTP: API on %s\n", flagHTTPAddr)
	}
	fmt.Println("Press Ctrl+C to stop")

	// The first server to stop takes the other one down with it.
	var firstErr error
	for range running {
		res := <-done
		if res.err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%s server: %w", res.name, res.err)
		}
		stop()
	}
	return firstErr
}

// port extracts the port of a listen address for the connect hint.
func port(addr string) string {
	if _, p, err := net.SplitHostPort(addr); err == nil {
		return p
	}
	return addr
}
