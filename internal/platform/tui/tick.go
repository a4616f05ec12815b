// Package tui provides the Bubble Tea frontend for the match-3 engine: the
// board view, the preset menu, the journal history table and the SSH server.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg advances the animation of the batch on display.
type TickMsg time.Time

// tickCmd returns a Bubble Tea command that sends a tick message at the specified rate.
func tickCmd(tickRate int) tea.Cmd {
	interval := time.Second / time.Duration(tickRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// framesFor returns how many ticks a batch shown for d spans. A positive
// duration always lasts at least one tick.
func framesFor(d time.Duration, tickRate int) int {
	if d <= 0 || tickRate <= 0 {
		return 0
	}
	interval := time.Second / time.Duration(tickRate)
	return max(int((d+interval-1)/interval), 1)
}
