package engine

import (
	"fmt"

	"github.com/vovakirdan/tui-match3/internal/board"
)

// Phase is the engine state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAwaitingSecondSelection
	PhaseResolving
	PhaseGameOver
)

// String returns a human-readable phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAwaitingSecondSelection:
		return "awaiting_second_selection"
	case PhaseResolving:
		return "resolving"
	case PhaseGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a name written by MarshalText.
func (p *Phase) UnmarshalText(b []byte) error {
	for q := PhaseIdle; q <= PhaseGameOver; q++ {
		if q.String() == string(b) {
			*p = q
			return nil
		}
	}
	return fmt.Errorf("engine: unknown phase %q", b)
}

// OutcomeKind tells what an activation did.
type OutcomeKind int

const (
	OutcomeIgnored    OutcomeKind = iota // Busy, game over or out of range
	OutcomeSelected                      // First cell selected
	OutcomeDeselected                    // Same cell activated twice
	OutcomeReselected                    // Non-adjacent cell replaced the selection
	OutcomeReverted                      // Swap produced no match and was undone
	OutcomeResolved                      // Swap matched and the cascade ran
)

// String returns the outcome name.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeSelected:
		return "selected"
	case OutcomeDeselected:
		return "deselected"
	case OutcomeReselected:
		return "reselected"
	case OutcomeReverted:
		return "reverted"
	case OutcomeResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name, so JSON carries "resolved" rather
// than 5.
func (k OutcomeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a name written by MarshalText.
func (k *OutcomeKind) UnmarshalText(b []byte) error {
	for q := OutcomeIgnored; q <= OutcomeResolved; q++ {
		if q.String() == string(b) {
			*k = q
			return nil
		}
	}
	return fmt.Errorf("engine: unknown outcome %q", b)
}

// Outcome is returned from every Activate call.
type Outcome struct {
	Kind       OutcomeKind `json:"kind"`
	Move       board.Move  `json:"move"`
	Cascades   int         `json:"cascades"`
	ScoreDelta int         `json:"score_delta"`
	Chains     int         `json:"chains"`
	GameOver   bool        `json:"game_over"`
}

// Swapped reports whether the activation swapped two cells.
func (o Outcome) Swapped() bool {
	return o.Kind == OutcomeReverted || o.Kind == OutcomeResolved
}

// Snapshot is a consistent copy of the engine state.
type Snapshot struct {
	Grid           *board.Grid
	Score          int
	Selected       *board.Coord
	Phase          Phase
	MoveInProgress bool
	GameOver       bool
	Moves          int
	Seed           int64
}
