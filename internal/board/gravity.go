package board

// Fall is a token moving from one cell to another within a column.
type Fall struct {
	From  Coord `json:"from"`
	To    Coord `json:"to"`
	Token Token `json:"token"`
}

// ApplyGravity compacts every column independently: tokens fall into the
// empty space below them keeping their order, empties rise to the top.
// Returns the moves performed; callers that only need the final state may
// ignore them.
func ApplyGravity(g *Grid) []Fall {
	var falls []Fall
	n := g.Size()
	for col := range n {
		for row := n - 1; row >= 0; row-- {
			c := C(row, col)
			if g.IsEmpty(c) {
				continue
			}
			lowest, ok := lowestEmptyBelow(g, c)
			if !ok {
				continue
			}
			falls = append(falls, Fall{From: c, To: lowest, Token: g.Get(c)})
			g.Swap(c, lowest)
		}
	}
	return falls
}

// lowestEmptyBelow finds the lowest empty cell strictly below c.
func lowestEmptyBelow(g *Grid, c Coord) (Coord, bool) {
	for row := g.Size() - 1; row > c.Row; row-- {
		below := C(row, c.Col)
		if g.IsEmpty(below) {
			return below, true
		}
	}
	return Coord{}, false
}
