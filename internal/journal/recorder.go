// Package journal connects a running engine to the move journal: Recorder
// writes every swap attempt as it happens, Replay re-runs a recorded game
// and checks that it ends the same way.
package journal

import (
	"errors"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-match3/internal/engine"
	"github.com/vovakirdan/tui-match3/internal/storage"
)

// Writer is the subset of *storage.Store the recorder needs.
type Writer interface {
	CreateSession(preset string, seed int64, size, colors int) (storage.Session, error)
	AppendMove(m storage.MoveEntry) error
	FinishSession(id string, finalScore int, gameOver bool) error
}

// Recorder journals one game. It implements engine.Observer and
// engine.MoveRecorder; pass it to both WithObserver and WithRecorder.
// Engine.Restart rotates it to a fresh session (see OnRestart).
//
// Write failures are logged and remembered, never returned to the engine.
type Recorder struct {
	store  Writer
	preset string
	size   int
	colors int
	log    *log.Logger

	mu       sync.Mutex
	session  storage.Session // zero after a failed rotation
	score    int
	finished bool
	err      error
}

// Start creates a journal session for a game about to begin.
func Start(store Writer, preset string, cfg engine.Config, logger *log.Logger) (*Recorder, error) {
	sess, err := store.CreateSession(preset, cfg.Seed, cfg.Size, cfg.Colors)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Recorder{
		store:   store,
		preset:  preset,
		size:    cfg.Size,
		colors:  cfg.Colors,
		log:     logger,
		session: sess,
	}, nil
}

// SessionID returns the current journal session ID, or "" if the last
// rotation could not create a session.
func (r *Recorder) SessionID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session.ID
}

// RecordMove implements engine.MoveRecorder.
func (r *Recorder) RecordMove(rec engine.MoveRecord) {
	id := r.SessionID()
	if id == "" {
		return
	}
	err := r.store.AppendMove(storage.MoveEntry{
		SessionID:  id,
		Seq:        rec.Seq,
		ARow:       rec.Move.A.Row,
		ACol:       rec.Move.A.Col,
		BRow:       rec.Move.B.Row,
		BCol:       rec.Move.B.Col,
		Kind:       rec.Kind.String(),
		Cascades:   rec.Cascades,
		ScoreDelta: rec.ScoreDelta,
		Score:      rec.Score,
	})
	r.fail(err)
}

// OnScoreChanged implements engine.Observer.
func (r *Recorder) OnScoreChanged(score int) {
	r.mu.Lock()
	r.score = score
	r.mu.Unlock()
}

// OnGameOver implements engine.Observer.
func (r *Recorder) OnGameOver() {
	r.finish(true)
}

// OnRestart implements engine.Restarter. The running session is finished
// as abandoned unless game over already closed it, and moves from then on
// go to a new session for seed.
func (r *Recorder) OnRestart(seed int64) {
	r.finish(false)

	sess, err := r.store.CreateSession(r.preset, seed, r.size, r.colors)
	r.mu.Lock()
	r.score = 0
	if err != nil {
		r.session = storage.Session{}
		r.finished = true
	} else {
		r.session = sess
		r.finished = false
	}
	r.mu.Unlock()

	if err != nil {
		r.fail(err)
		return
	}
	r.log.Debug("session started", "session", sess.ID, "seed", seed)
}

// Close ends the session if the game was abandoned before game over and
// returns the first write error seen.
func (r *Recorder) Close() error {
	r.finish(false)
	return r.Err()
}

// Err returns the first write error, if any.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func (r *Recorder) finish(gameOver bool) {
	r.mu.Lock()
	if r.finished {
		r.mu.Unlock()
		return
	}
	r.finished = true
	id, score := r.session.ID, r.score
	r.mu.Unlock()

	r.fail(r.store.FinishSession(id, score, gameOver))
	r.log.Debug("session finished", "session", id, "score", score, "game_over", gameOver)
}

func (r *Recorder) fail(err error) {
	if err == nil {
		return
	}
	r.log.Warn("journal write failed", "session", r.SessionID(), "error", err)
	r.mu.Lock()
	r.err = errors.Join(r.err, err)
	r.mu.Unlock()
}
