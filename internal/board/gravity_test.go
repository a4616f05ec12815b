package board_test

import (
	"math/rand"
	"testing"

	"github.com/vovakirdan/tui-match3/internal/board"
)

func TestApplyGravityColumnScenario(t *testing.T) {
	g := board.MustParseGrid(`
		B...
		....
		G...
		....`)

	falls := board.ApplyGravity(g)

	expected := []board.Token{board.Empty, board.Empty, board.Blue, board.Green}
	col := g.Column(0)
	for i := range expected {
		if col[i] != expected[i] {
			t.Fatalf("column 0 = %v, expected %v", col, expected)
		}
	}
	if len(falls) != 2 {
		t.Errorf("expected 2 falls, got %d: %+v", len(falls), falls)
	}
}

func TestApplyGravity(t *testing.T) {
	tests := []struct {
		name     string
		grid     string
		expected string
	}{
		{"already settled", "... B.. GO.", "... B.. GO."},
		{"full column", "B.. G.. O..", "B.. G.. O.."},
		{"gap in middle", ".R. ... .Y.", "... .R. .Y."},
		{"columns independent", "BGO ... ..R", "... ..O BGR"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := board.MustParseGrid(tc.grid)
			board.ApplyGravity(g)
			want := board.MustParseGrid(tc.expected)
			if !g.Equal(want) {
				t.Errorf("got:\n%s\nexpected:\n%s", g, want)
			}
		})
	}
}

func TestApplyGravityProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	for trial := range 200 {
		g := randomGrid(rng, 6, 4, 0.35)
		before := g.Clone()

		board.ApplyGravity(g)

		for col := range g.Size() {
			// Non-empty tokens keep their relative order.
			var want, got []board.Token
			for _, tok := range before.Column(col) {
				if tok != board.Empty {
					want = append(want, tok)
				}
			}
			seenToken := false
			for _, tok := range g.Column(col) {
				if tok == board.Empty {
					if seenToken {
						t.Fatalf("trial %d: empty below a token in column %d\n%s", trial, col, g)
					}
					continue
				}
				seenToken = true
				got = append(got, tok)
			}
			if len(got) != len(want) {
				t.Fatalf("trial %d: column %d token count changed", trial, col)
			}
			for i := range want {
				if got[i] != want[i] {
					t.Fatalf("trial %d: column %d order changed: %v -> %v", trial, col, want, got)
				}
			}
		}

		settled := g.Clone()
		if falls := board.ApplyGravity(g); len(falls) != 0 || !g.Equal(settled) {
			t.Fatalf("trial %d: gravity not idempotent", trial)
		}
	}
}
