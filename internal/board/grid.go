package board

import (
	"fmt"
	"strings"
)

// Coord is a cell position. Row grows downward, Col grows rightward.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// C is a convenience constructor for Coord.
func C(row, col int) Coord {
	return Coord{Row: row, Col: col}
}

// String returns a string representation of the coordinate.
func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Manhattan returns the Manhattan distance to another coordinate.
func (c Coord) Manhattan(other Coord) int {
	dr := c.Row - other.Row
	dc := c.Col - other.Col
	if dr < 0 {
		dr = -dr
	}
	if dc < 0 {
		dc = -dc
	}
	return dr + dc
}

// Grid is a square board of tokens stored in row-major order:
// index = row*size + col. Every cell always holds a value.
type Grid struct {
	size  int
	cells []Token
}

// NewGrid creates a size×size grid with every cell Empty.
// Panics if size is not positive.
func NewGrid(size int) *Grid {
	if size <= 0 {
		panic(fmt.Sprintf("board: invalid grid size %d", size))
	}
	return &Grid{
		size:  size,
		cells: make([]Token, size*size),
	}
}

// ParseGrid builds a grid from rows of token letters (see Token.Char),
// separated by newlines or spaces. Used for fixtures and tests.
func ParseGrid(s string) (*Grid, error) {
	rows := strings.Fields(s)
	if len(rows) == 0 {
		return nil, fmt.Errorf("board: empty grid")
	}
	g := NewGrid(len(rows))
	for r, line := range rows {
		if len(line) != len(rows) {
			return nil, fmt.Errorf("board: row %d has %d cells, expected %d", r, len(line), len(rows))
		}
		for col, ch := range line {
			t, ok := ParseToken(string(ch))
			if !ok {
				return nil, fmt.Errorf("board: unknown token %q at %v", ch, C(r, col))
			}
			g.cells[r*g.size+col] = t
		}
	}
	return g, nil
}

// MustParseGrid is like ParseGrid but panics on error.
func MustParseGrid(s string) *Grid {
	g, err := ParseGrid(s)
	if err != nil {
		panic(err)
	}
	return g
}

// Size returns the grid dimension.
func (g *Grid) Size() int {
	return g.size
}

// InBounds returns true if the coordinate is inside the grid.
func (g *Grid) InBounds(c Coord) bool {
	return c.Row >= 0 && c.Row < g.size && c.Col >= 0 && c.Col < g.size
}

// index converts a coordinate to a flat index.
// Out-of-bounds access is a programming error and panics.
func (g *Grid) index(c Coord) int {
	if !g.InBounds(c) {
		panic(fmt.Sprintf("board: coordinate %v out of bounds for %dx%d grid", c, g.size, g.size))
	}
	return c.Row*g.size + c.Col
}

// Get returns the token at c.
func (g *Grid) Get(c Coord) Token {
	return g.cells[g.index(c)]
}

// At returns the token at (row, col).
func (g *Grid) At(row, col int) Token {
	return g.Get(C(row, col))
}

// Set stores t at c.
func (g *Grid) Set(c Coord, t Token) {
	g.cells[g.index(c)] = t
}

// IsEmpty reports whether the cell at c is Empty.
func (g *Grid) IsEmpty(c Coord) bool {
	return g.Get(c) == Empty
}

// Swap exchanges the tokens at a and b. No adjacency validation.
func (g *Grid) Swap(a, b Coord) {
	ia, ib := g.index(a), g.index(b)
	g.cells[ia], g.cells[ib] = g.cells[ib], g.cells[ia]
}

// Column returns a copy of a column, top to bottom.
func (g *Grid) Column(col int) []Token {
	out := make([]Token, g.size)
	for row := range g.size {
		out[row] = g.Get(C(row, col))
	}
	return out
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	cells := make([]Token, len(g.cells))
	copy(cells, g.cells)
	return &Grid{
		size:  g.size,
		cells: cells,
	}
}

// Equal returns true if both grids have the same size and contents.
func (g *Grid) Equal(other *Grid) bool {
	if other == nil || g.size != other.size {
		return false
	}
	for i, t := range g.cells {
		if t != other.cells[i] {
			return false
		}
	}
	return true
}

// EmptyCount returns the number of empty cells.
func (g *Grid) EmptyCount() int {
	n := 0
	for _, t := range g.cells {
		if t == Empty {
			n++
		}
	}
	return n
}

// Rows returns the grid as a slice of rows, each a slice of tokens.
func (g *Grid) Rows() [][]Token {
	rows := make([][]Token, g.size)
	for r := range rows {
		rows[r] = make([]Token, g.size)
		copy(rows[r], g.cells[r*g.size:(r+1)*g.size])
	}
	return rows
}

// String renders the grid one row per line using Token.Char.
func (g *Grid) String() string {
	var sb strings.Builder
	sb.Grow(g.size*g.size + g.size)
	for r := range g.size {
		if r > 0 {
			sb.WriteByte('\n')
		}
		for _, t := range g.cells[r*g.size : (r+1)*g.size] {
			sb.WriteRune(t.Char())
		}
	}
	return sb.String()
}
