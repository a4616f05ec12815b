package tui

import (
	"regexp"
	"strings"
	"testing"

	"github.com/vovakirdan/tui-match3/internal/board"
	"github.com/vovakirdan/tui-match3/internal/core"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// containsPlain reports whether s contains want once styling is removed.
func containsPlain(s, want string) bool {
	return strings.Contains(ansi.ReplaceAllString(s, ""), want)
}

func TestRenderScreenKeepsText(t *testing.T) {
	s := core.NewScreen(12, 2)
	s.DrawText(0, 0, "Score", core.ColorWhite, core.AttrBold)
	s.DrawText(6, 0, "42", core.ColorYellow, 0)
	s.DrawText(0, 1, "ok", core.ColorDefault, 0)

	out := RenderScreen(s)
	plain := ansi.ReplaceAllString(out, "")
	lines := strings.Split(plain, "\n")
	if len(lines) != 2 {
		t.Fatalf("RenderScreen() produced %d lines, expected 2", len(lines))
	}
	if lines[0] != "Score 42    " {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "ok") {
		t.Errorf("line 1 = %q", lines[1])
	}
}

func TestTokenGlyphsAreDistinct(t *testing.T) {
	seen := make(map[rune]board.Token)
	for _, tok := range board.Palette(board.MaxColors) {
		g := tokenGlyph(tok)
		if other, dup := seen[g]; dup {
			t.Errorf("%v and %v share glyph %q", tok, other, g)
		}
		seen[g] = tok
		if tokenColor(tok) == core.ColorGray {
			t.Errorf("%v has no color", tok)
		}
	}
}

func TestDrawBoard(t *testing.T) {
	g := board.MustParseGrid(`
		B G O
		G O B
		O B G`)
	sel := board.C(0, 1)
	s := core.NewScreen(20, 6)

	drawBoard(s, 0, 0, boardView{grid: g, cursor: board.C(2, 2), selected: &sel})

	w, h := boardSize(3)
	if w != 11 || h != 5 {
		t.Fatalf("boardSize(3) = %dx%d, expected 11x5", w, h)
	}
	if s.Get(0, 0) != '┌' || s.Get(w-1, h-1) != '┘' {
		t.Error("board frame missing")
	}

	// Cell (row, col) is drawn at x = 1 + col*3 + 1, y = 1 + row.
	if got := s.GetCell(2, 1); got.Rune != tokenGlyph(board.Blue) || got.Color != core.ColorBlue {
		t.Errorf("cell (0,0) = %+v", got)
	}
	if s.Get(4, 1) != '[' || s.Get(6, 1) != ']' {
		t.Errorf("selected cell should be bracketed, row = %q", s.Row(1))
	}
	if !s.GetCell(8, 3).Attr.Has(core.AttrReverse) {
		t.Error("cursor cell should be reversed")
	}
	if s.GetCell(2, 1).Attr.Has(core.AttrReverse) {
		t.Error("only the cursor cell should be reversed")
	}
}

func TestDrawBoardDestroyedCells(t *testing.T) {
	g := board.MustParseGrid(`
		. . .
		G O B
		O B G`)
	s := core.NewScreen(20, 6)
	marked := map[board.Coord]bool{board.C(0, 0): true, board.C(0, 1): true, board.C(0, 2): true}

	drawBoard(s, 0, 0, boardView{grid: g, cursor: board.C(2, 2), marked: marked, removed: true})

	for col := range 3 {
		if got := s.Get(2+col*cellWidth, 1); got != '✱' {
			t.Errorf("destroyed cell %d = %q", col, got)
		}
	}
}
