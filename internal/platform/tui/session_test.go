package tui

import (
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-match3/internal/config"
	"github.com/vovakirdan/tui-match3/internal/core"
	"github.com/vovakirdan/tui-match3/internal/storage"
)

func newTestSession(t *testing.T, store Store) SessionModel {
	t.Helper()
	settings := config.DefaultMatch3Config()
	settings.Animation = config.AnimationConfig{}
	m := NewSessionModel(SessionOptions{
		Settings: settings,
		Runtime:  core.RuntimeConfig{ScreenW: 100, ScreenH: 30, TickRate: 60, Seed: 3},
		Store:    store,
	})
	t.Cleanup(m.Stop)
	return m
}

func updateSession(t *testing.T, m SessionModel, msg tea.Msg) SessionModel {
	t.Helper()
	next, _ := m.Update(msg)
	s, ok := next.(SessionModel)
	if !ok {
		t.Fatalf("Update() returned %T", next)
	}
	return s
}

func (l *liveGame) running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.anim != nil
}

func TestSessionMenuToGameAndBack(t *testing.T) {
	m := newTestSession(t, nil)

	m = updateSession(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.game == nil {
		t.Fatal("Enter on the menu should start a game")
	}
	if m.game.preset.ID != "classic" {
		t.Errorf("preset = %q, expected classic", m.game.preset.ID)
	}
	if !m.live.running() {
		t.Error("the game engine should be live")
	}

	m = updateSession(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.game != nil {
		t.Fatal("Esc should return to the menu")
	}
	if m.live.running() {
		t.Error("leaving the game should stop its engine")
	}
	if m.quitting {
		t.Error("Esc from a game should not quit the session")
	}
}

func TestSessionHistoryNeedsStore(t *testing.T) {
	m := newTestSession(t, nil)
	m = updateSession(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.history != nil {
		t.Error("history opened without a journal")
	}

	store, err := storage.Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	m = newTestSession(t, store)
	m = updateSession(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.history == nil {
		t.Fatal("Tab should open the history")
	}

	m = updateSession(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.history != nil {
		t.Error("Esc should close the history")
	}
}

func TestSessionStopIsIdempotent(t *testing.T) {
	m := newTestSession(t, nil)
	m = updateSession(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	m.Stop()
	m.Stop()
	if m.live.running() {
		t.Error("Stop() should end the game")
	}
}
