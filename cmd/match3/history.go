package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-match3/internal/platform/tui"
	"github.com/vovakirdan/tui-match3/internal/storage"
)

var flagHistoryLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse recorded games",
	Long: `List the most recent games in the move journal, newest first.
In a terminal the list is an interactive table; otherwise it is printed.

Examples:
  match3 history
  match3 history --limit 20
  match3 history | grep quit`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", tui.HistoryLimit, "Number of games to show")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	store, err := openStore(true)
	if err != nil {
		return err
	}
	defer store.Close()

	if term.IsTerminal(int(os.Stdout.Fd())) {
		width, height := 80, 24
		if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			width, height = w, h
		}
		return tui.RunHistory(limitedHistory{store, flagHistoryLimit}, width, height)
	}

	sessions, err := store.RecentSessions(flagHistoryLimit)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("No games recorded yet.")
		return nil
	}

	fmt.Printf("%-16s  %-14s  %7s  %5s  %-10s  %s\n", "Started", "Board", "Score", "Moves", "Result", "Session")
	for _, s := range sessions {
		row := tui.HistoryRow(s)
		fmt.Printf("%-16s  %-14s  %7s  %5s  %-10s  %s\n", row[0], row[1], row[2], row[3], row[4], s.ID)
	}

	if stats, err := store.GetStats(); err == nil {
		fmt.Println()
		fmt.Printf("%d games, %d finished, %d moves, best %d, average %.0f\n",
			stats.Sessions, stats.Finished, stats.TotalMoves, stats.HighScore, stats.AvgScore)
	}
	return nil
}

// limitedHistory applies --limit to the interactive table.
type limitedHistory struct {
	store *storage.Store
	limit int
}

func (h limitedHistory) RecentSessions(int) ([]storage.Session, error) {
	return h.store.RecentSessions(h.limit)
}
