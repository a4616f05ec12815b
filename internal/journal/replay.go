package journal

import (
	"context"
	"fmt"

	"github.com/vovakirdan/tui-match3/internal/board"
	"github.com/vovakirdan/tui-match3/internal/engine"
	"github.com/vovakirdan/tui-match3/internal/storage"
)

// Reader is the subset of *storage.Store Replay needs.
type Reader interface {
	Session(id string) (*storage.Session, error)
	Moves(sessionID string) ([]storage.MoveEntry, error)
}

// Result is the outcome of a replay.
type Result struct {
	Session  storage.Session
	Moves    int  // Moves replayed
	Score    int  // Score reached by the replay
	GameOver bool // Whether the replay ended in game over
	Match    bool // Every move and the final state agree with the journal
	// Divergence describes the first disagreement when Match is false.
	Divergence string
	Final      *board.Grid
}

// Replay rebuilds the seeded engine of a recorded session and re-applies
// its moves. Because generation and refill are driven by the seed alone,
// a faithful journal reproduces every score exactly.
func Replay(ctx context.Context, store Reader, id string) (*Result, error) {
	sess, err := store.Session(id)
	if err != nil {
		return nil, err
	}
	moves, err := store.Moves(id)
	if err != nil {
		return nil, err
	}

	cfg := engine.DefaultConfig()
	cfg.Size = sess.Size
	cfg.Colors = sess.Colors
	cfg.Seed = sess.Seed
	eng, err := engine.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("journal: session %s: %w", id, err)
	}

	res := &Result{Session: *sess, Match: true}
	for _, m := range moves {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		a, b := board.C(m.ARow, m.ACol), board.C(m.BRow, m.BCol)
		eng.Activate(a)
		out := eng.Activate(b)
		res.Moves++

		if res.Match {
			switch {
			case out.Kind.String() != m.Kind:
				res.diverge("move %d %v-%v: got %s, journal has %s", m.Seq, a, b, out.Kind, m.Kind)
			case eng.Score() != m.Score:
				res.diverge("move %d %v-%v: score %d, journal has %d", m.Seq, a, b, eng.Score(), m.Score)
			}
		}
	}

	snap := eng.Snapshot()
	res.Score = snap.Score
	res.GameOver = snap.GameOver
	res.Final = snap.Grid

	if res.Match && sess.Finished() {
		switch {
		case res.Score != sess.FinalScore:
			res.diverge("final score %d, journal has %d", res.Score, sess.FinalScore)
		case res.GameOver != sess.GameOver:
			res.diverge("game over %v, journal has %v", res.GameOver, sess.GameOver)
		}
	}
	return res, nil
}

func (r *Result) diverge(format string, args ...any) {
	r.Match = false
	r.Divergence = fmt.Sprintf(format, args...)
}
