package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-match3/internal/core"
	"github.com/vovakirdan/tui-match3/internal/registry"
)

// MenuModel is the Bubble Tea model for the preset picker.
type MenuModel struct {
	items       []registry.Preset
	cursor      int
	width       int
	height      int
	keys        KeyMap
	canHistory  bool
	quitting    bool
	selected    *registry.Preset // Set when user selects a preset
	openHistory bool             // True if user pressed Tab for history
}

// NewMenuModel creates a new menu model. withHistory enables the Tab key.
func NewMenuModel(cfg core.RuntimeConfig, withHistory bool) MenuModel {
	return MenuModel{
		items:      registry.List(),
		width:      cfg.ScreenW,
		height:     cfg.ScreenH,
		keys:       DefaultKeyMap(),
		canHistory: withHistory,
	}
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

// handleKey processes keyboard input for menu navigation.
func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.canHistory && key.Matches(msg, m.keys.History) {
		m.openHistory = true
		return m, nil
	}

	switch m.keys.Action(msg) {
	case core.ActionQuit:
		m.quitting = true
		return m, tea.Quit

	case core.ActionUp:
		m.cursor = core.Wrap(m.cursor-1, len(m.items))

	case core.ActionDown:
		m.cursor = core.Wrap(m.cursor+1, len(m.items))

	case core.ActionActivate:
		if len(m.items) > 0 {
			selected := m.items[m.cursor]
			m.selected = &selected
		}
	}

	return m, nil
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	activeStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render("M A T C H - 3"), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("Select a board", m.width))
	b.WriteString("\n\n")

	for i, p := range m.items {
		line := fmt.Sprintf("  %-8s %s", p.Title, dimStyle.Render(p.Description))
		if i == m.cursor {
			line = activeStyle.Render("> "+fmt.Sprintf("%-8s", p.Title)) + " " + dimStyle.Render(p.Description)
		}
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	controls := "Up/Down: Navigate  |  Enter: Play  |  Q: Quit"
	if m.canHistory {
		controls = "Up/Down: Navigate  |  Enter: Play  |  Tab: History  |  Q: Quit"
	}
	b.WriteString(centerText(dimStyle.Render(controls), m.width))
	b.WriteString("\n")

	return b.String()
}

// Selected returns the selected preset, or nil if none selected.
func (m MenuModel) Selected() *registry.Preset {
	return m.selected
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// WantsHistory returns true if user requested the journal history.
func (m MenuModel) WantsHistory() bool {
	return m.openHistory
}

// centerText centers text within given width, measuring the printed width
// so styled text is placed correctly.
func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	return strings.Repeat(" ", (width-w)/2) + text
}
