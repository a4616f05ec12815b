package engine

import "github.com/vovakirdan/tui-match3/internal/board"

// Observer receives fire-and-forget score and lifecycle notifications.
// Calls happen on the goroutine running Activate, without the engine lock.
type Observer interface {
	OnScoreChanged(score int)
	OnGameOver()
}

// Restarter is an optional extension of Observer. Restart calls OnRestart
// with the new seed after the board is replaced and before the score reset
// is reported.
type Restarter interface {
	OnRestart(seed int64)
}

// MoveRecord describes a completed swap attempt.
type MoveRecord struct {
	Seq        int         // 1-based move number within the game
	Move       board.Move  // Swapped cells, in activation order
	Kind       OutcomeKind // OutcomeReverted or OutcomeResolved
	Cascades   int
	ScoreDelta int
	Score      int // Total after the move
	GameOver   bool
}

// MoveRecorder is notified after every swap attempt.
type MoveRecorder interface {
	RecordMove(rec MoveRecord)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	Score    func(score int)
	GameOver func()
}

// OnScoreChanged implements Observer.
func (o ObserverFuncs) OnScoreChanged(score int) {
	if o.Score != nil {
		o.Score(score)
	}
}

// OnGameOver implements Observer.
func (o ObserverFuncs) OnGameOver() {
	if o.GameOver != nil {
		o.GameOver()
	}
}
