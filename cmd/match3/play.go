package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-match3/internal/config"
	"github.com/vovakirdan/tui-match3/internal/core"
	"github.com/vovakirdan/tui-match3/internal/platform/tui"
	"github.com/vovakirdan/tui-match3/internal/registry"
)

var (
	flagPreset string
	flagConfig string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play in this terminal",
	Long: `Start a game in the terminal. Without --preset a menu lets you pick
a board and browse the journal.

Controls:
  Arrows/hjkl  - Move the cursor
  Enter/Space  - Select a token, then an adjacent one to swap
  ?            - Show a hint
  N            - New game
  Esc          - Back to the menu
  Q/Ctrl+C     - Quit

Examples:
  match3 play
  match3 play --preset large
  match3 play --preset classic --seed 42
  match3 play --config ./my-match3.yaml`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagPreset, "preset", "", "Board preset (see 'match3 list')")
	playCmd.Flags().StringVar(&flagConfig, "config", "", "Path to a custom match3 config YAML")
}

func runPlay(cmd *cobra.Command, _ []string) error {
	var preset registry.Preset
	if flagPreset != "" {
		p, err := registry.Get(flagPreset)
		if err != nil {
			return fmt.Errorf("%w (run 'match3 list' to see presets)", err)
		}
		preset = p
	}

	settings, err := config.LoadMatch3(flagConfig)
	if err != nil {
		return err
	}

	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}
	runtime := core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     flagSeed,
	}

	tuiLog, closeLog := terminalLogger()
	defer closeLog()

	store, err := openStore(false)
	if err != nil {
		return err
	}
	var journal tui.Store
	if store != nil {
		defer store.Close()
		journal = store
	}

	if flagPreset == "" {
		return tui.RunSession(tui.SessionOptions{
			Settings: settings,
			Runtime:  runtime,
			Store:    journal,
			Logger:   tuiLog,
		})
	}

	return tui.Run(tui.GameOptions{
		Preset:   preset,
		Settings: settings,
		Runtime:  runtime,
		Store:    journal,
		Logger:   tuiLog,
	})
}
