// Package engine runs a match-3 game: it owns the grid, turns cell
// activations into swaps, resolves cascades and keeps the score. Rendering,
// input and score display live behind the Animator, Observer and
// MoveRecorder interfaces.
package engine

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-match3/internal/board"
)

// ErrBusy is returned by Restart while a move is being resolved.
var ErrBusy = errors.New("engine: move in progress")

// Filler refills the empty cells left at the top of each column after
// gravity. *board.Generator satisfies it.
type Filler interface {
	Refill(g *board.Grid) []board.Placement
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for cascade diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithAnimator sets the batch presenter. Defaults to NopAnimator.
func WithAnimator(a Animator) Option {
	return func(e *Engine) {
		if a != nil {
			e.animator = a
		}
	}
}

// WithObserver adds a score/game-over observer. May be given more than once.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observers = append(e.observers, o)
		}
	}
}

// WithRecorder adds a move recorder. May be given more than once.
func WithRecorder(r MoveRecorder) Option {
	return func(e *Engine) {
		if r != nil {
			e.recorders = append(e.recorders, r)
		}
	}
}

// WithFiller replaces the random refill source. Restart keeps it.
func WithFiller(f Filler) Option {
	return func(e *Engine) {
		e.filler = f
	}
}

// WithGrid starts the first game from a copy of g instead of a generated
// board.
func WithGrid(g *board.Grid) Option {
	return func(e *Engine) {
		if g != nil {
			e.initial = g.Clone()
		}
	}
}

// Engine is a single match-3 game. Activate may be called from any
// goroutine; calls that arrive while a move is resolving are ignored.
type Engine struct {
	cfg       Config
	log       *log.Logger
	animator  Animator
	observers []Observer
	recorders []MoveRecorder
	filler    Filler
	initial   *board.Grid

	moveInProgress atomic.Bool

	mu       sync.Mutex // guards everything below
	grid     *board.Grid
	gen      *board.Generator
	seed     int64
	score    int
	moves    int
	selected *board.Coord
	phase    Phase
}

// New validates cfg, generates the first board and returns a ready engine.
// Configuration problems are reported as *ConfigError.
func New(cfg Config, opts ...Option) (*Engine, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:      cfg,
		log:      log.New(io.Discard),
		animator: NopAnimator{},
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.initial != nil && e.initial.Size() != cfg.Size {
		return nil, &ConfigError{Field: "grid size", Value: e.initial.Size(), Err: ErrGridMismatch}
	}

	if err := e.reset(cfg.Seed, e.initial); err != nil {
		return nil, err
	}
	if e.phase == PhaseGameOver {
		e.log.Debug("generated board has no legal move", "seed", cfg.Seed)
		e.notifyGameOver()
	}
	return e, nil
}

// reset starts a new game. Caller must hold mu or own e exclusively.
func (e *Engine) reset(seed int64, start *board.Grid) error {
	gen, err := board.NewGenerator(rand.New(rand.NewSource(seed)), e.cfg.Colors)
	if err != nil {
		return &ConfigError{Field: "colors", Value: e.cfg.Colors, Err: err}
	}

	var g *board.Grid
	if start != nil {
		g = start.Clone()
	} else {
		g, err = gen.Generate(e.cfg.Size)
		if err != nil {
			return &ConfigError{Field: "size", Value: e.cfg.Size, Err: err}
		}
	}

	e.gen = gen
	e.grid = g
	e.seed = seed
	e.score = 0
	e.moves = 0
	e.selected = nil
	e.phase = PhaseIdle
	if !board.HasAnyLegalMove(g) {
		e.phase = PhaseGameOver
	}
	return nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Restart replaces the board with a freshly generated one from seed and
// resets the score. Observers that implement Restarter are told before the
// score reset. Returns ErrBusy if a move is resolving.
func (e *Engine) Restart(seed int64) error {
	if !e.moveInProgress.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer e.moveInProgress.Store(false)

	e.mu.Lock()
	err := e.reset(seed, nil)
	over := e.phase == PhaseGameOver
	e.mu.Unlock()
	if err != nil {
		return fmt.Errorf("engine: restart: %w", err)
	}

	e.log.Debug("new game", "seed", seed)
	for _, o := range e.observers {
		if r, ok := o.(Restarter); ok {
			r.OnRestart(seed)
		}
	}
	e.notifyScore(0)
	if over {
		e.notifyGameOver()
	}
	return nil
}

// Snapshot returns a consistent copy of the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := Snapshot{
		Grid:           e.grid.Clone(),
		Score:          e.score,
		Phase:          e.phase,
		MoveInProgress: e.moveInProgress.Load(),
		GameOver:       e.phase == PhaseGameOver,
		Moves:          e.moves,
		Seed:           e.seed,
	}
	if e.selected != nil {
		sel := *e.selected
		snap.Selected = &sel
	}
	return snap
}

// Score returns the current score.
func (e *Engine) Score() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.score
}

// GameOver reports whether the board has no legal move left.
func (e *Engine) GameOver() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase == PhaseGameOver
}

// Hint returns the first legal move in scan order.
func (e *Engine) Hint() (board.Move, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase == PhaseGameOver {
		return board.Move{}, false
	}
	return board.FirstLegalMove(e.grid)
}

// Activate handles a click or key press on cell c.
//
// The first activation selects c. Activating the selected cell again clears
// the selection; activating a non-adjacent cell moves the selection there.
// Activating an adjacent cell swaps the two: without a match the swap is
// undone, otherwise the cascade runs to completion before Activate returns.
func (e *Engine) Activate(c board.Coord) Outcome {
	if !e.moveInProgress.CompareAndSwap(false, true) {
		return Outcome{Kind: OutcomeIgnored}
	}
	defer e.moveInProgress.Store(false)

	e.mu.Lock()
	if e.phase == PhaseGameOver {
		e.mu.Unlock()
		return Outcome{Kind: OutcomeIgnored, GameOver: true}
	}
	if !e.grid.InBounds(c) {
		e.mu.Unlock()
		e.log.Debug("activation out of range", "at", c)
		return Outcome{Kind: OutcomeIgnored}
	}

	if e.selected == nil {
		e.selected = &c
		e.phase = PhaseAwaitingSecondSelection
		e.mu.Unlock()
		return Outcome{Kind: OutcomeSelected}
	}

	first := *e.selected
	switch {
	case first == c:
		e.selected = nil
		e.phase = PhaseIdle
		e.mu.Unlock()
		return Outcome{Kind: OutcomeDeselected}
	case !board.AreAdjacent(first, c):
		e.selected = &c
		e.mu.Unlock()
		return Outcome{Kind: OutcomeReselected}
	}

	move := board.Move{A: first, B: c}
	e.selected = nil
	e.phase = PhaseResolving
	e.moves++
	seq := e.moves
	e.grid.Swap(move.A, move.B)
	matched := board.AnyMatchExists(e.grid)
	swap := e.batchLocked(BatchSwap, 0)
	swap.Swap = move
	e.mu.Unlock()

	e.animator.Animate(swap)

	out := Outcome{Move: move}
	if !matched {
		e.mu.Lock()
		e.grid.Swap(move.A, move.B)
		back := e.batchLocked(BatchSwapBack, 0)
		back.Swap = move
		e.mu.Unlock()

		e.animator.Animate(back)

		e.mu.Lock()
		e.phase = PhaseIdle
		score := e.score
		e.mu.Unlock()

		out.Kind = OutcomeReverted
		e.record(seq, out, score)
		return out
	}

	res := e.resolve()
	out.Kind = OutcomeResolved
	out.Cascades = res.cascades
	out.ScoreDelta = res.points
	out.Chains = res.chains
	out.GameOver = res.gameOver
	e.record(seq, out, res.score)
	if res.gameOver {
		e.notifyGameOver()
	}
	return out
}

// batchLocked builds a batch carrying a copy of the grid. Caller holds mu.
func (e *Engine) batchLocked(kind BatchKind, depth int) Batch {
	return Batch{
		Kind:  kind,
		Grid:  e.grid.Clone(),
		Score: e.score,
		Depth: depth,
	}
}

func (e *Engine) record(seq int, out Outcome, score int) {
	if len(e.recorders) == 0 {
		return
	}
	rec := MoveRecord{
		Seq:        seq,
		Move:       out.Move,
		Kind:       out.Kind,
		Cascades:   out.Cascades,
		ScoreDelta: out.ScoreDelta,
		Score:      score,
		GameOver:   out.GameOver,
	}
	for _, r := range e.recorders {
		r.RecordMove(rec)
	}
}

func (e *Engine) notifyScore(score int) {
	for _, o := range e.observers {
		o.OnScoreChanged(score)
	}
}

func (e *Engine) notifyGameOver() {
	for _, o := range e.observers {
		o.OnGameOver()
	}
}
