package main

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-match3/internal/config"
	"github.com/vovakirdan/tui-match3/internal/registry"
	"github.com/vovakirdan/tui-match3/internal/sim"
)

var (
	flagSimGames    int
	flagSimWorkers  int
	flagSimMaxMoves int
	flagSimPreset   string
	flagSimConfig   string
	flagSimOut      string
	flagSimQuiet    bool
)

var simCmd = &cobra.Command{
	Use:   "sim",
	Short: "Simulate games with a random player",
	Long: `Play many seeded games with a player that picks a random legal swap
each turn, then print score statistics. The same --seed always gives the
same results, whatever the number of workers.

Examples:
  match3 sim
  match3 sim --games 10000 --workers 8 --seed 1
  match3 sim --preset relaxed --max-moves 50
  match3 sim --out report.json.zst`,
	Args: cobra.NoArgs,
	RunE: runSim,
}

func init() {
	simCmd.Flags().IntVar(&flagSimGames, "games", 1000, "Number of games to play")
	simCmd.Flags().IntVar(&flagSimWorkers, "workers", runtime.NumCPU(), "Games played concurrently")
	simCmd.Flags().IntVar(&flagSimMaxMoves, "max-moves", sim.DefaultMaxMoves, "Moves per game before it is stopped")
	simCmd.Flags().StringVar(&flagSimPreset, "preset", "classic", "Board preset")
	simCmd.Flags().StringVar(&flagSimConfig, "config", "", "Path to a custom match3 config YAML")
	simCmd.Flags().StringVar(&flagSimOut, "out", "", "Also write the full report as zstd-compressed JSON")
	simCmd.Flags().BoolVar(&flagSimQuiet, "quiet", false, "Hide the progress bar")
}

func runSim(cmd *cobra.Command, _ []string) error {
	preset, err := registry.Get(flagSimPreset)
	if err != nil {
		return err
	}
	settings, err := config.LoadMatch3(flagSimConfig)
	if err != nil {
		return err
	}

	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	logger.Debug("simulation starting", "preset", preset.ID, "games", flagSimGames, "workers", flagSimWorkers, "seed", seed)
	report, err := sim.Run(cmd.Context(), sim.Options{
		Games:        flagSimGames,
		Workers:      flagSimWorkers,
		MaxMoves:     flagSimMaxMoves,
		Seed:         seed,
		Config:       settings.WithBoard(preset.Size, preset.Colors).EngineConfig(seed),
		ShowProgress: !flagSimQuiet,
		Progress:     os.Stderr,
	})
	if err != nil {
		return err
	}

	if err := report.Write(os.Stdout); err != nil {
		return err
	}

	if flagSimOut != "" {
		if err := sim.WriteReport(flagSimOut, report); err != nil {
			return err
		}
		fmt.Printf("Report written to %s\n", flagSimOut)
	}
	return nil
}
