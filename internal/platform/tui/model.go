package tui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-match3/internal/board"
	"github.com/vovakirdan/tui-match3/internal/config"
	"github.com/vovakirdan/tui-match3/internal/core"
	"github.com/vovakirdan/tui-match3/internal/engine"
	"github.com/vovakirdan/tui-match3/internal/journal"
	"github.com/vovakirdan/tui-match3/internal/registry"
)

// GameOptions configures a board view.
type GameOptions struct {
	Preset   registry.Preset
	Settings config.Match3Config
	Runtime  core.RuntimeConfig
	Store    journal.Writer // Optional; nil disables the journal
	Logger   *log.Logger
}

// Model is the Bubble Tea model for one match-3 board.
//
// Each activation runs in a command against the engine. The engine's
// ChanAnimator hands every visual step to the model, which keeps the step's
// grid on screen for the configured duration before acknowledging it.
type Model struct {
	preset   registry.Preset
	settings config.Match3Config
	runtime  core.RuntimeConfig
	store    journal.Writer
	logger   *log.Logger
	keys     KeyMap
	help     help.Model
	screen   *core.Screen

	live *liveGame
	gen  int
	eng  *engine.Engine
	anim *engine.ChanAnimator
	feed *scoreFeed
	seed int64

	grid     *board.Grid
	cursor   board.Coord
	selected *board.Coord
	hint     *board.Move
	batch    *engine.Batch
	frames   int
	pending  bool
	score    int
	moves    int
	gameOver bool
	status   string

	quitOnBack bool
	backToMenu bool
	quitting   bool
}

// NewModel creates a board view and starts its first game.
func NewModel(opts GameOptions) (Model, error) {
	return newModel(opts, &liveGame{})
}

func newModel(opts GameOptions, live *liveGame) (Model, error) {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Runtime.TickRate <= 0 {
		opts.Runtime.TickRate = core.DefaultConfig().TickRate
	}

	h := help.New()
	h.ShowAll = false

	m := Model{
		preset:   opts.Preset,
		settings: opts.Settings,
		runtime:  opts.Runtime,
		store:    opts.Store,
		logger:   opts.Logger,
		keys:     DefaultKeyMap(),
		help:     h,
		screen:   core.NewScreen(opts.Runtime.ScreenW, opts.Runtime.ScreenH),
		live:     live,
	}

	seed := opts.Runtime.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if err := m.startGame(seed); err != nil {
		return Model{}, err
	}
	return m, nil
}

// startGame replaces the running game with a fresh board.
func (m *Model) startGame(seed int64) error {
	cfg := m.settings.WithBoard(m.preset.Size, m.preset.Colors).EngineConfig(seed)

	anim := engine.NewChanAnimator()
	feed := newScoreFeed()
	opts := []engine.Option{
		engine.WithLogger(m.logger),
		engine.WithAnimator(anim),
		engine.WithObserver(feed),
	}

	var rec *journal.Recorder
	if m.store != nil {
		r, err := journal.Start(m.store, m.preset.ID, cfg, m.logger)
		if err != nil {
			m.logger.Warn("journal disabled for this game", "error", err)
		} else {
			rec = r
			opts = append(opts, engine.WithObserver(rec), engine.WithRecorder(rec))
		}
	}

	eng, err := engine.New(cfg, opts...)
	if err != nil {
		anim.Close()
		if rec != nil {
			rec.Close() //nolint:errcheck // the game never started
		}
		return err
	}

	m.live.replace(anim, rec, m.logger)
	m.gen++
	m.eng, m.anim, m.feed, m.seed = eng, anim, feed, seed

	snap := eng.Snapshot()
	m.grid = snap.Grid
	m.cursor = board.C(cfg.Size/2, cfg.Size/2)
	m.selected = nil
	m.hint = nil
	m.batch = nil
	m.frames = 0
	m.pending = false
	m.score = 0
	m.moves = 0
	m.gameOver = snap.GameOver
	m.status = ""
	if m.gameOver {
		m.status = "No moves on this board. Press n for a new one."
	}
	m.logger.Debug("new game", "preset", m.preset.ID, "seed", seed)
	return nil
}

// stopGame releases the current engine and closes its journal session.
func (m *Model) stopGame() {
	m.live.replace(nil, nil, m.logger)
}

// Stop ends the game on display. Safe to call from any goroutine and more
// than once.
func (m Model) Stop() {
	m.stopGame()
}

// Init starts listening to the first game.
func (m Model) Init() tea.Cmd {
	return listenCmd(m.gen, m.anim, m.feed)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.runtime.ScreenW = msg.Width
		m.runtime.ScreenH = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case batchMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		return m.showBatch(msg.batch)

	case TickMsg:
		return m.handleTick()

	case scoreMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.score = msg.score
		m.gameOver = m.gameOver || msg.gameOver
		return m, listenCmd(m.gen, m.anim, m.feed)

	case outcomeMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		return m.handleOutcome(msg.outcome), nil
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+s" {
		m.saveScreenshot()
		return m, nil
	}
	if key.Matches(msg, m.keys.Back) {
		if m.pending {
			return m, nil
		}
		m.stopGame()
		m.backToMenu = true
		if m.quitOnBack {
			return m, tea.Quit
		}
		return m, nil
	}

	action := m.keys.Action(msg)
	switch action {
	case core.ActionQuit:
		m.stopGame()
		m.quitting = true
		return m, tea.Quit

	case core.ActionUp, core.ActionDown, core.ActionLeft, core.ActionRight:
		dr, dc := action.Delta()
		last := m.grid.Size() - 1
		m.cursor = board.C(core.Clamp(m.cursor.Row+dr, 0, last), core.Clamp(m.cursor.Col+dc, 0, last))

	case core.ActionActivate:
		if m.gameOver || m.pending {
			return m, nil
		}
		m.pending = true
		m.hint = nil
		return m, activateCmd(m.gen, m.eng, m.cursor)

	case core.ActionHint:
		if m.pending {
			return m, nil
		}
		if mv, ok := m.eng.Hint(); ok {
			m.hint = &mv
			m.status = fmt.Sprintf("Try swapping %s and %s", mv.A, mv.B)
		}

	case core.ActionNewGame:
		if m.pending {
			m.status = "Wait for the board to settle."
			return m, nil
		}
		if err := m.startGame(time.Now().UnixNano()); err != nil {
			m.status = fmt.Sprintf("Cannot start a new game: %v", err)
			return m, nil
		}
		return m, listenCmd(m.gen, m.anim, m.feed)

	case core.ActionHelp:
		m.help.ShowAll = !m.help.ShowAll
	}

	return m, nil
}

// showBatch puts a batch on screen and starts its hold timer.
func (m Model) showBatch(b engine.Batch) (tea.Model, tea.Cmd) {
	m.batch = &b
	m.grid = b.Grid
	m.score = b.Score
	m.selected = nil

	listen := listenCmd(m.gen, m.anim, m.feed)
	m.frames = framesFor(m.batchDuration(b.Kind), m.runtime.TickRate)
	if m.frames == 0 {
		m.ackBatch()
		return m, listen
	}
	return m, tea.Batch(listen, tickCmd(m.runtime.TickRate))
}

func (m Model) batchDuration(kind engine.BatchKind) time.Duration {
	switch kind {
	case engine.BatchSwap, engine.BatchSwapBack:
		return m.settings.Animation.Swap()
	case engine.BatchDestroy:
		return m.settings.Animation.Destroy()
	default:
		return m.settings.Animation.Fall()
	}
}

// handleTick counts down the batch on display.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.batch == nil {
		return m, nil
	}
	m.frames--
	if m.frames > 0 {
		return m, tickCmd(m.runtime.TickRate)
	}
	m.ackBatch()
	return m, nil
}

func (m *Model) ackBatch() {
	m.batch = nil
	m.frames = 0
	m.anim.Ack()
}

// handleOutcome syncs the view with the engine once an activation returns.
func (m Model) handleOutcome(out engine.Outcome) Model {
	m.pending = false

	snap := m.eng.Snapshot()
	m.grid = snap.Grid
	m.selected = snap.Selected
	m.score = snap.Score
	m.moves = snap.Moves
	m.gameOver = snap.GameOver

	switch out.Kind {
	case engine.OutcomeSelected:
		m.status = fmt.Sprintf("Selected %s", m.cursor)
	case engine.OutcomeDeselected:
		m.status = ""
	case engine.OutcomeReselected:
		m.status = "Not adjacent, selection moved"
	case engine.OutcomeReverted:
		m.status = "No match, swapped back"
	case engine.OutcomeResolved:
		m.status = fmt.Sprintf("+%d", out.ScoreDelta)
		if out.Cascades > 1 {
			m.status += fmt.Sprintf("  (%d cascades)", out.Cascades)
		}
	}
	if m.gameOver {
		m.status = "No moves left. Press n for a new board."
	}
	return m
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	m.render()

	dir := filepath.Join(os.Getenv("HOME"), ".match3", "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", m.preset.ID, timestamp))

	//nolint:errcheck // Best-effort save, game continues regardless
	os.WriteFile(path, []byte(m.screen.String()), 0o600)
}

// render draws the current frame into the screen buffer.
func (m *Model) render() {
	helpH := lipgloss.Height(m.help.View(m.keys))
	m.screen.Resize(m.runtime.ScreenW, max(m.runtime.ScreenH-helpH, 1))
	m.screen.Clear()

	bw, bh := boardSize(m.grid.Size())
	if bw > m.screen.Width() || bh+4 > m.screen.Height() {
		m.screen.DrawText(0, 0, "Terminal too small", core.ColorRed, core.AttrBold)
		return
	}

	area := m.screen.Bounds().Centered(bw, bh+4)

	title := fmt.Sprintf("MATCH-3 · %s", m.preset.Title)
	m.screen.DrawText(area.X, area.Y, title, core.ColorMagenta, core.AttrBold)

	view := boardView{
		grid:     m.grid,
		cursor:   m.cursor,
		selected: m.selected,
		hint:     m.hint,
	}
	if b := m.batch; b != nil {
		view.marked = batchCells(*b)
		view.removed = b.Kind == engine.BatchDestroy
	}
	drawBoard(m.screen, area.X, area.Y+1, view)

	info := fmt.Sprintf("Score %d   Moves %d", m.score, m.moves)
	m.screen.DrawText(area.X, area.Y+bh+1, info, core.ColorWhite, core.AttrBold)

	color := core.ColorGray
	if m.gameOver {
		color = core.ColorRed
	}
	m.screen.DrawText(area.X, area.Y+bh+2, m.status, color, 0)
}

// batchCells returns the cells a batch changed.
func batchCells(b engine.Batch) map[board.Coord]bool {
	cells := make(map[board.Coord]bool)
	switch b.Kind {
	case engine.BatchSwap, engine.BatchSwapBack:
		cells[b.Swap.A] = true
		cells[b.Swap.B] = true
	case engine.BatchDestroy:
		for _, c := range b.Removed {
			cells[c] = true
		}
	case engine.BatchFall:
		for _, f := range b.Falls {
			cells[f.To] = true
		}
	case engine.BatchRefill:
		for _, p := range b.Created {
			cells[p.At] = true
		}
	}
	return cells
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting || m.backToMenu {
		return ""
	}

	m.render()
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	return RenderScreen(m.screen) + "\n" + helpStyle.Render(m.help.View(m.keys))
}

// Score returns the score shown on screen.
func (m Model) Score() int {
	return m.score
}

// Seed returns the seed of the board on display.
func (m Model) Seed() int64 {
	return m.seed
}

// IsQuitting returns true if the user requested to quit entirely.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if the user requested to go back to the menu.
func (m Model) BackToMenu() bool {
	return m.backToMenu
}

// Run plays a single preset until the user quits.
func Run(opts GameOptions) error {
	model, err := NewModel(opts)
	if err != nil {
		return err
	}
	model.quitOnBack = true

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	final, err := p.Run()
	if m, ok := final.(Model); ok {
		m.stopGame()
	}
	return err
}
