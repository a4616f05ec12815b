package board

// Move is a pair of cells proposed for swapping.
type Move struct {
	A Coord `json:"a"`
	B Coord `json:"b"`
}

// AreAdjacent reports whether a and b share an edge (no diagonals).
func AreAdjacent(a, b Coord) bool {
	return a.Manhattan(b) == 1
}

// HasAnyLegalMove reports whether swapping some cell with its right or lower
// neighbour would produce a match. The grid is left unchanged.
func HasAnyLegalMove(g *Grid) bool {
	_, ok := firstLegalMove(g)
	return ok
}

// FirstLegalMove returns the first productive swap in scan order.
func FirstLegalMove(g *Grid) (Move, bool) {
	return firstLegalMove(g)
}

func firstLegalMove(g *Grid) (Move, bool) {
	found := Move{}
	ok := false
	forEachCandidate(g, func(m Move) bool {
		if productive(g, m) {
			found, ok = m, true
			return false
		}
		return true
	})
	return found, ok
}

// LegalMoves returns every productive swap in scan order.
func LegalMoves(g *Grid) []Move {
	var moves []Move
	forEachCandidate(g, func(m Move) bool {
		if productive(g, m) {
			moves = append(moves, m)
		}
		return true
	})
	return moves
}

// forEachCandidate visits every right and down swap until fn returns false.
func forEachCandidate(g *Grid, fn func(Move) bool) {
	n := g.Size()
	for row := range n {
		for col := range n {
			c := C(row, col)
			if col+1 < n && !fn(Move{A: c, B: C(row, col+1)}) {
				return
			}
			if row+1 < n && !fn(Move{A: c, B: C(row+1, col)}) {
				return
			}
		}
	}
}

// productive swaps, tests and swaps back.
func productive(g *Grid, m Move) bool {
	g.Swap(m.A, m.B)
	ok := AnyMatchExists(g)
	g.Swap(m.A, m.B)
	return ok
}
