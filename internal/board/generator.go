package board

import (
	"errors"
	"fmt"
	"math/rand"
)

// MinSize is the smallest supported board dimension.
const MinSize = 3

// Generation errors. Both are fatal configuration errors.
var (
	ErrNoCandidate  = errors.New("board: no color can be placed without creating a match")
	ErrInvalidSize  = errors.New("board: grid size too small")
	ErrInvalidColor = errors.New("board: palette size out of range")
)

// Placement is a token created by refill. FromRow is the virtual row the token
// enters from (negative: above the board) so a renderer can slide it in.
type Placement struct {
	At      Coord `json:"at"`
	Token   Token `json:"token"`
	FromRow int   `json:"from_row"`
}

// Generator produces match-free boards and refills vacated cells.
// It is deterministic for a given rng state.
type Generator struct {
	rng     *rand.Rand
	palette []Token
}

// NewGenerator creates a generator drawing colors from the first n colors.
func NewGenerator(rng *rand.Rand, colors int) (*Generator, error) {
	if colors < MinColors || colors > MaxColors {
		return nil, fmt.Errorf("%w: %d (want %d-%d)", ErrInvalidColor, colors, MinColors, MaxColors)
	}
	return &Generator{
		rng:     rng,
		palette: Palette(colors),
	}, nil
}

// Colors returns the palette size.
func (gen *Generator) Colors() int {
	return len(gen.palette)
}

// Generate fills a new size×size grid row by row so that no cell, at the
// moment it is assigned, forms a match with cells already placed.
func (gen *Generator) Generate(size int) (*Grid, error) {
	if size < MinSize {
		return nil, fmt.Errorf("%w: %d (want >= %d)", ErrInvalidSize, size, MinSize)
	}
	g := NewGrid(size)
	candidates := make([]Token, 0, len(gen.palette))

	for row := range size {
		for col := range size {
			c := C(row, col)
			candidates = candidates[:0]
			for _, t := range gen.palette {
				g.Set(c, t)
				if !IsMatchAt(g, c) {
					candidates = append(candidates, t)
				}
			}
			if len(candidates) == 0 {
				return nil, fmt.Errorf("%w at %v", ErrNoCandidate, c)
			}
			g.Set(c, candidates[gen.rng.Intn(len(candidates))])
		}
	}
	return g, nil
}

// RefillColumn assigns uniformly random colors to the top emptyFromTop cells
// of the column. No anti-match constraint is applied.
func (gen *Generator) RefillColumn(g *Grid, col, emptyFromTop int) []Placement {
	placed := make([]Placement, 0, emptyFromTop)
	for row := range emptyFromTop {
		t := gen.palette[gen.rng.Intn(len(gen.palette))]
		g.Set(C(row, col), t)
		placed = append(placed, Placement{
			At:      C(row, col),
			Token:   t,
			FromRow: row - emptyFromTop,
		})
	}
	return placed
}

// Refill counts the leading empty cells of every column and refills them.
// Call after ApplyGravity so every empty cell sits at the top.
func (gen *Generator) Refill(g *Grid) []Placement {
	var placed []Placement
	for col := range g.Size() {
		n := 0
		for n < g.Size() && g.IsEmpty(C(n, col)) {
			n++
		}
		if n > 0 {
			placed = append(placed, gen.RefillColumn(g, col, n)...)
		}
	}
	return placed
}
