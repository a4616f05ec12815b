package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-match3/internal/config"
	"github.com/vovakirdan/tui-match3/internal/core"
	"github.com/vovakirdan/tui-match3/internal/engine"
	"github.com/vovakirdan/tui-match3/internal/registry"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	preset, err := registry.Get("compact")
	if err != nil {
		t.Fatal(err)
	}
	settings := config.DefaultMatch3Config()
	settings.Animation = config.AnimationConfig{}

	m, err := NewModel(GameOptions{
		Preset:   preset,
		Settings: settings,
		Runtime:  core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60, Seed: 7},
	})
	if err != nil {
		t.Fatalf("NewModel() failed: %v", err)
	}
	t.Cleanup(m.Stop)
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update() returned %T", next)
	}
	return model, cmd
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// play runs an activation command to completion, feeding batches and score
// changes back into the model the way the Bubble Tea loop would.
func play(t *testing.T, m Model, activate tea.Cmd) Model {
	t.Helper()
	outcome := make(chan tea.Msg, 1)
	go func() { outcome <- activate() }()

	listen := listenCmd(m.gen, m.anim, m.feed)
	events := make(chan tea.Msg, 1)
	go func() { events <- listen() }()

	timeout := time.After(5 * time.Second)
	for {
		select {
		case msg := <-events:
			var cmd tea.Cmd
			m, cmd = update(t, m, msg)
			if cmd == nil {
				t.Fatalf("listener stopped after %T", msg)
			}
			go func() { events <- cmd() }()
		case msg := <-outcome:
			m, _ = update(t, m, msg)
			return m
		case <-timeout:
			t.Fatal("activation did not finish")
		}
	}
}

func TestModelStartsPlayableGame(t *testing.T) {
	m := newTestModel(t)

	if m.Seed() != 7 {
		t.Errorf("Seed() = %d, expected 7", m.Seed())
	}
	if m.grid.Size() != 6 {
		t.Errorf("board size = %d, expected 6", m.grid.Size())
	}
	if m.gameOver {
		t.Error("a generated board should be playable")
	}
	if m.cursor.Row != 3 || m.cursor.Col != 3 {
		t.Errorf("cursor = %s, expected the board center", m.cursor)
	}
}

func TestModelCursorStaysOnBoard(t *testing.T) {
	m := newTestModel(t)

	for range 10 {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
		m, _ = update(t, m, keyRunes("h"))
	}
	if m.cursor.Row != 0 || m.cursor.Col != 0 {
		t.Errorf("cursor = %s, expected (0,0)", m.cursor)
	}

	for range 10 {
		m, _ = update(t, m, keyRunes("j"))
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	}
	if m.cursor.Row != 5 || m.cursor.Col != 5 {
		t.Errorf("cursor = %s, expected (5,5)", m.cursor)
	}
}

func TestModelSelectAndDeselect(t *testing.T) {
	m := newTestModel(t)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil || !m.pending {
		t.Fatal("activation should dispatch a command")
	}

	// A second activation while pending is dropped.
	if _, again := update(t, m, tea.KeyMsg{Type: tea.KeyEnter}); again != nil {
		t.Error("activation while pending should be ignored")
	}

	m, _ = update(t, m, cmd())
	if m.pending {
		t.Error("pending should clear when the outcome arrives")
	}
	if m.selected == nil || *m.selected != m.cursor {
		t.Fatalf("selected = %v, expected %s", m.selected, m.cursor)
	}

	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(t, m, cmd())
	if m.selected != nil {
		t.Error("activating the selected cell again should clear the selection")
	}
}

func TestModelPlaysHintedMove(t *testing.T) {
	m := newTestModel(t)

	m, _ = update(t, m, keyRunes("?"))
	if m.hint == nil {
		t.Fatal("hint should be shown on a playable board")
	}
	mv := *m.hint

	m.cursor = mv.A
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(t, m, cmd())
	if m.hint != nil {
		t.Error("activation should clear the hint")
	}

	m.cursor = mv.B
	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = play(t, m, cmd)

	snap := m.eng.Snapshot()
	if m.moves != 1 {
		t.Errorf("moves = %d, expected 1", m.moves)
	}
	if m.Score() == 0 || m.Score() != snap.Score {
		t.Errorf("Score() = %d, engine score %d", m.Score(), snap.Score)
	}
	if !m.grid.Equal(snap.Grid) {
		t.Error("view should show the settled board")
	}
	if m.batch != nil {
		t.Error("no batch should remain on display")
	}
}

func TestModelNewGameDropsStaleMessages(t *testing.T) {
	m := newTestModel(t)
	oldGen, oldAnim := m.gen, m.anim

	m, cmd := update(t, m, keyRunes("n"))
	if cmd == nil {
		t.Fatal("new game should start a listener")
	}
	if m.gen == oldGen {
		t.Fatal("new game should bump the generation")
	}
	select {
	case <-oldAnim.Done():
	default:
		t.Error("old animator should be closed")
	}

	before := m.score
	m, _ = update(t, m, scoreMsg{gen: oldGen, score: 999})
	if m.score != before {
		t.Error("score from the previous game should be ignored")
	}
	m, _ = update(t, m, batchMsg{gen: oldGen, batch: engine.Batch{Grid: m.grid}})
	if m.batch != nil {
		t.Error("batch from the previous game should be ignored")
	}
}

func TestModelBackStopsGame(t *testing.T) {
	m := newTestModel(t)
	anim := m.anim

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if !m.BackToMenu() {
		t.Error("esc should request the menu")
	}
	select {
	case <-anim.Done():
	default:
		t.Error("leaving the board should close the animator")
	}
	if m.View() != "" {
		t.Error("a model that left should render nothing")
	}
}

func TestModelViewShowsBoard(t *testing.T) {
	m := newTestModel(t)
	view := m.View()

	for _, want := range []string{"MATCH-3", "Compact", "Score 0"} {
		if !containsPlain(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestFramesFor(t *testing.T) {
	tests := []struct {
		d        time.Duration
		rate     int
		expected int
	}{
		{0, 60, 0},
		{180 * time.Millisecond, 0, 0},
		{time.Millisecond, 60, 1},
		{180 * time.Millisecond, 60, 11},
		{time.Second, 50, 50},
	}

	for _, tc := range tests {
		if got := framesFor(tc.d, tc.rate); got != tc.expected {
			t.Errorf("framesFor(%v, %d) = %d, expected %d", tc.d, tc.rate, got, tc.expected)
		}
	}
}
