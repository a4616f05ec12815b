package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-match3/internal/board"
	"github.com/vovakirdan/tui-match3/internal/core"
)

// colorStyles maps core.Color to lipgloss styles.
var colorStyles = map[core.Color]lipgloss.Style{
	core.ColorDefault: lipgloss.NewStyle(),
	core.ColorBlue:    lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
	core.ColorGreen:   lipgloss.NewStyle().Foreground(lipgloss.Color("40")),
	core.ColorOrange:  lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	core.ColorRed:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	core.ColorWhite:   lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
	core.ColorYellow:  lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
	core.ColorGray:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	core.ColorCyan:    lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	core.ColorMagenta: lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
}

func cellStyle(c core.Cell) lipgloss.Style {
	style, ok := colorStyles[c.Color]
	if !ok {
		style = colorStyles[core.ColorDefault]
	}
	if c.Attr.Has(core.AttrBold) {
		style = style.Bold(true)
	}
	if c.Attr.Has(core.AttrReverse) {
		style = style.Reverse(true)
	}
	if c.Attr.Has(core.AttrFaint) {
		style = style.Faint(true)
	}
	return style
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same color and attributes to minimize ANSI
// escape sequences.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < s.Width() {
			start := s.GetCell(x, y)

			var run strings.Builder
			for x < s.Width() {
				cell := s.GetCell(x, y)
				if cell.Color != start.Color || cell.Attr != start.Attr {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			sb.WriteString(cellStyle(start).Render(run.String()))
		}
	}
	return sb.String()
}

// tokenColor returns the screen color of a token.
func tokenColor(t board.Token) core.Color {
	switch t {
	case board.Blue:
		return core.ColorBlue
	case board.Green:
		return core.ColorGreen
	case board.Orange:
		return core.ColorOrange
	case board.Red:
		return core.ColorRed
	case board.White:
		return core.ColorWhite
	case board.Yellow:
		return core.ColorYellow
	default:
		return core.ColorGray
	}
}

// tokenGlyph gives every color its own shape so the board stays readable
// without color support.
func tokenGlyph(t board.Token) rune {
	switch t {
	case board.Blue:
		return '●'
	case board.Green:
		return '▲'
	case board.Orange:
		return '◆'
	case board.Red:
		return '■'
	case board.White:
		return '★'
	case board.Yellow:
		return '♥'
	default:
		return '·'
	}
}

// cellWidth is the number of screen columns per board cell.
const cellWidth = 3

// boardView is everything needed to draw one frame of the board.
type boardView struct {
	grid     *board.Grid
	cursor   board.Coord
	selected *board.Coord
	hint     *board.Move
	marked   map[board.Coord]bool // Cells touched by the batch on display
	removed  bool                 // Marked cells were just destroyed
}

// boardSize returns the width and height of the framed board.
func boardSize(size int) (w, h int) {
	return size*cellWidth + 2, size + 2
}

// drawBoard draws the framed board with its top-left corner at (x, y).
func drawBoard(s *core.Screen, x, y int, v boardView) {
	w, h := boardSize(v.grid.Size())
	s.DrawBox(core.NewRect(x, y, w, h), core.ColorGray)

	for row := range v.grid.Size() {
		for col := range v.grid.Size() {
			c := board.C(row, col)
			tok := v.grid.Get(c)

			cell := core.Cell{Rune: tokenGlyph(tok), Color: tokenColor(tok)}
			if tok == board.Empty {
				cell.Attr |= core.AttrFaint
			}
			if v.marked[c] {
				if v.removed {
					cell = core.Cell{Rune: '✱', Color: core.ColorWhite, Attr: core.AttrBold}
				} else {
					cell.Attr |= core.AttrBold
				}
			}
			if v.hint != nil && (v.hint.A == c || v.hint.B == c) {
				cell.Attr |= core.AttrBold
			}

			left, right := ' ', ' '
			if v.selected != nil && *v.selected == c {
				left, right = '[', ']'
			}
			if v.hint != nil && (v.hint.A == c || v.hint.B == c) {
				left, right = '<', '>'
			}

			cx := x + 1 + col*cellWidth
			cy := y + 1 + row
			frame := core.Cell{Rune: left, Color: core.ColorCyan, Attr: core.AttrBold}
			if c == v.cursor {
				cell.Attr |= core.AttrReverse
				frame.Attr |= core.AttrReverse
			}
			s.SetCell(cx, cy, frame)
			s.SetCell(cx+1, cy, cell)
			frame.Rune = right
			s.SetCell(cx+2, cy, frame)
		}
	}
}
