package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-match3/internal/registry"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List board presets",
	Long:  `Shows every board preset that play, serve and sim accept.`,
	Run:   runList,
}

func runList(cmd *cobra.Command, args []string) {
	presets := registry.List()

	if len(presets) == 0 {
		fmt.Println("No presets available.")
		return
	}

	fmt.Println("Board presets:")
	fmt.Println()

	maxIDLen := 2 // "ID" header
	for _, p := range presets {
		maxIDLen = max(maxIDLen, len(p.ID))
	}

	fmt.Printf("  %-*s  %-7s  %-6s  %s\n", maxIDLen, "ID", "Board", "Colors", "Description")
	fmt.Printf("  %-*s  %-7s  %-6s  %s\n", maxIDLen, "--", "-----", "------", "-----------")

	for _, p := range presets {
		board := fmt.Sprintf("%dx%d", p.Size, p.Size)
		fmt.Printf("  %-*s  %-7s  %-6d  %s\n", maxIDLen, p.ID, board, p.Colors, p.Description)
	}

	fmt.Println()
	fmt.Println("Run 'match3 play --preset <id>' to play a board.")
}
