package board_test

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/vovakirdan/tui-match3/internal/board"
)

func TestGenerateHasNoInitialMatch(t *testing.T) {
	for size := board.MinSize; size <= 10; size++ {
		for colors := board.MinColors; colors <= board.MaxColors; colors++ {
			for seed := range int64(5) {
				gen, err := board.NewGenerator(rand.New(rand.NewSource(seed)), colors)
				if err != nil {
					t.Fatalf("NewGenerator(%d) failed: %v", colors, err)
				}
				g, err := gen.Generate(size)
				if err != nil {
					t.Fatalf("Generate(%d) with %d colors failed: %v", size, colors, err)
				}
				if g.EmptyCount() != 0 {
					t.Errorf("size=%d colors=%d seed=%d: generated grid has empty cells", size, colors, seed)
				}
				if board.AnyMatchExists(g) {
					t.Errorf("size=%d colors=%d seed=%d: generated grid contains a match\n%s", size, colors, seed, g)
				}
			}
		}
	}
}

func TestGenerateUsesOnlyPalette(t *testing.T) {
	gen, _ := board.NewGenerator(rand.New(rand.NewSource(3)), 4)
	g, err := gen.Generate(8)
	if err != nil {
		t.Fatal(err)
	}
	allowed := map[board.Token]bool{}
	for _, tok := range board.Palette(4) {
		allowed[tok] = true
	}
	for _, row := range g.Rows() {
		for _, tok := range row {
			if !allowed[tok] {
				t.Errorf("token %v outside palette", tok)
			}
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a, _ := board.NewGenerator(rand.New(rand.NewSource(42)), 6)
	b, _ := board.NewGenerator(rand.New(rand.NewSource(42)), 6)

	ga, _ := a.Generate(8)
	gb, _ := b.Generate(8)
	if !ga.Equal(gb) {
		t.Errorf("same seed produced different grids:\n%s\n\n%s", ga, gb)
	}
}

func TestGeneratorRejectsBadConfig(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	if _, err := board.NewGenerator(rng, 2); !errors.Is(err, board.ErrInvalidColor) {
		t.Errorf("NewGenerator(2) error = %v, expected ErrInvalidColor", err)
	}
	if _, err := board.NewGenerator(rng, 7); !errors.Is(err, board.ErrInvalidColor) {
		t.Errorf("NewGenerator(7) error = %v, expected ErrInvalidColor", err)
	}

	gen, _ := board.NewGenerator(rng, 3)
	if _, err := gen.Generate(2); !errors.Is(err, board.ErrInvalidSize) {
		t.Errorf("Generate(2) error = %v, expected ErrInvalidSize", err)
	}
}

func TestRefillColumnFillsTopCells(t *testing.T) {
	gen, _ := board.NewGenerator(rand.New(rand.NewSource(9)), 3)
	g := board.MustParseGrid("... ..B .GO")

	placed := gen.RefillColumn(g, 2, 1)
	if len(placed) != 1 {
		t.Fatalf("expected 1 placement, got %d", len(placed))
	}
	if placed[0].At != board.C(0, 2) || placed[0].FromRow != -1 {
		t.Errorf("unexpected placement %+v", placed[0])
	}
	if g.IsEmpty(board.C(0, 2)) {
		t.Error("cell (0,2) should be filled")
	}
	if g.At(1, 2) != board.Blue || g.At(2, 2) != board.Orange {
		t.Error("RefillColumn must not touch cells below the empty run")
	}
	if !g.IsEmpty(board.C(0, 0)) {
		t.Error("RefillColumn must not touch other columns")
	}
}

func TestRefillLeavesNoEmpties(t *testing.T) {
	gen, _ := board.NewGenerator(rand.New(rand.NewSource(5)), 5)
	g := board.MustParseGrid("..O. .GO. RGOB RGOB")

	placed := gen.Refill(g)
	if g.EmptyCount() != 0 {
		t.Errorf("grid still has empties:\n%s", g)
	}
	if len(placed) != 5 {
		t.Errorf("expected 5 placements, got %d", len(placed))
	}
	for _, p := range placed {
		if p.FromRow >= 0 {
			t.Errorf("placement %+v should enter from above the board", p)
		}
		if g.Get(p.At) != p.Token {
			t.Errorf("placement %+v does not match grid", p)
		}
	}
}
