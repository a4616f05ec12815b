// match3 is a match-3 board game for the terminal, SSH and HTTP.
//
// Usage:
//
//	match3 list                - List board presets
//	match3 play [--preset id]  - Play locally (menu when no preset is given)
//	match3 serve               - Serve games over SSH and/or HTTP
//	match3 sim                 - Run an autoplayer simulation
//	match3 history             - Browse recorded games
//	match3 replay <session>    - Re-run a recorded game and verify it
//
// Global flags:
//
//	--fps <rate>         - Animation tick rate (default: 60)
//	--seed <value>       - RNG seed for reproducible boards
//	--db <path>          - Journal database (default: ~/.match3/journal.db)
//	--log-level <level>  - debug, info, warn or error (env MATCH3_LOG_LEVEL)
//	--log-file <path>    - Log file for terminal play (env MATCH3_LOG_FILE)
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-match3/internal/storage"
)

var (
	// Global flags
	flagFPS      int
	flagSeed     int64
	flagDBPath   string
	flagLogLevel string
	flagLogFile  string

	logger = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "match3"})
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "match3",
	Short: "Match-3 - swap tokens, clear chains, chase cascades",
	Long: `Match-3 is a terminal match-3 game with a deterministic board engine.

Available commands:
  list     - Show board presets
  play     - Play in this terminal
  serve    - Serve games over SSH and HTTP
  sim      - Simulate games with a random player
  history  - Browse the move journal
  replay   - Verify a recorded game

Examples:
  match3 play
  match3 play --preset compact --seed 42
  match3 serve --ssh :23234 --http :8080
  match3 sim --games 1000 --workers 8`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Animation tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.match3/journal.db", "Path to the move journal")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Write logs to this file during terminal play")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(simCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(replayCmd)
}

// setup loads .env and configures the shared logger. Flags win over the
// environment.
func setup(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()

	level := flagLogLevel
	if level == "" {
		level = getEnv("MATCH3_LOG_LEVEL", "info")
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q", level)
	}
	logger.SetLevel(lvl)

	if flagLogFile == "" {
		flagLogFile = os.Getenv("MATCH3_LOG_FILE")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// terminalLogger returns the logger for full-screen play. Output to the
// terminal would tear the UI, so it goes to --log-file or nowhere.
func terminalLogger() (*log.Logger, func()) {
	if flagLogFile == "" {
		return log.New(io.Discard), func() {}
	}
	f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logger.Warn("cannot open log file, logging disabled", "path", flagLogFile, "error", err)
		return log.New(io.Discard), func() {}
	}
	l := log.NewWithOptions(f, log.Options{ReportTimestamp: true, Level: logger.GetLevel(), Prefix: "match3"})
	return l, func() { f.Close() }
}

// openStore opens the journal. When required is false a failure is logged
// and nil is returned so play can continue without recording.
func openStore(required bool) (*storage.Store, error) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		if required {
			return nil, err
		}
		logger.Warn("journal unavailable, games will not be recorded", "db", flagDBPath, "error", err)
		return nil, nil
	}
	return store, nil
}
