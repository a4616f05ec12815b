package tui

import (
	"sync"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-match3/internal/board"
	"github.com/vovakirdan/tui-match3/internal/engine"
	"github.com/vovakirdan/tui-match3/internal/journal"
)

// Messages produced by a running game. gen identifies the game that sent
// them; messages from a replaced game are dropped.
type (
	batchMsg struct {
		gen   int
		batch engine.Batch
	}
	scoreMsg struct {
		gen      int
		score    int
		gameOver bool
	}
	outcomeMsg struct {
		gen     int
		outcome engine.Outcome
	}
)

// scoreFeed is the engine observer of the terminal view. It keeps only the
// latest values and wakes the listener without ever blocking the engine.
type scoreFeed struct {
	score  atomic.Int64
	over   atomic.Bool
	notify chan struct{}
}

func newScoreFeed() *scoreFeed {
	return &scoreFeed{notify: make(chan struct{}, 1)}
}

// OnScoreChanged implements engine.Observer.
func (f *scoreFeed) OnScoreChanged(score int) {
	f.score.Store(int64(score))
	f.poke()
}

// OnGameOver implements engine.Observer.
func (f *scoreFeed) OnGameOver() {
	f.over.Store(true)
	f.poke()
}

func (f *scoreFeed) poke() {
	select {
	case f.notify <- struct{}{}:
	default:
	}
}

// listenCmd waits for the next batch or score change of one game. Exactly
// one listener is outstanding per game; it stops when the animator closes.
func listenCmd(gen int, anim *engine.ChanAnimator, feed *scoreFeed) tea.Cmd {
	return func() tea.Msg {
		select {
		case b := <-anim.Batches():
			return batchMsg{gen: gen, batch: b}
		case <-feed.notify:
			return scoreMsg{gen: gen, score: int(feed.score.Load()), gameOver: feed.over.Load()}
		case <-anim.Done():
			return nil
		}
	}
}

// activateCmd runs one activation off the UI goroutine. For a swap it
// returns only after every batch of the move has been acknowledged.
func activateCmd(gen int, eng *engine.Engine, c board.Coord) tea.Cmd {
	return func() tea.Msg {
		return outcomeMsg{gen: gen, outcome: eng.Activate(c)}
	}
}

// liveGame holds the resources of the game on display. Model copies share
// it so the game can be stopped from outside the Bubble Tea loop.
type liveGame struct {
	mu   sync.Mutex
	anim *engine.ChanAnimator
	rec  *journal.Recorder
}

// replace closes the current game and installs the next one. Nil values
// just close.
func (l *liveGame) replace(anim *engine.ChanAnimator, rec *journal.Recorder, logger *log.Logger) {
	l.mu.Lock()
	oldAnim, oldRec := l.anim, l.rec
	l.anim, l.rec = anim, rec
	l.mu.Unlock()

	if oldAnim != nil {
		oldAnim.Close()
	}
	if oldRec != nil {
		if err := oldRec.Close(); err != nil {
			logger.Warn("journal incomplete", "session", oldRec.SessionID(), "error", err)
		}
	}
}
