package board

// ExplosionThreshold is the minimum run length that forms a chain.
const ExplosionThreshold = 3

// Chain is a maximal run of ≥ExplosionThreshold equal non-empty tokens along
// one row (Horizontal) or one column.
type Chain struct {
	Cells      []Coord
	Token      Token
	Horizontal bool
}

// Len returns the number of cells in the chain.
func (ch Chain) Len() int {
	return len(ch.Cells)
}

// IsMatchAt reports whether the token at c belongs to any horizontal or
// vertical window of ExplosionThreshold equal colors. Empty never matches.
func IsMatchAt(g *Grid, c Coord) bool {
	if g.Get(c) == Empty {
		return false
	}
	return matchAlong(g, c, 0, 1) || matchAlong(g, c, 1, 0)
}

// matchAlong tests every window containing c along (dr, dc) that fits in the grid.
func matchAlong(g *Grid, c Coord, dr, dc int) bool {
	pos := c.Col
	if dr != 0 {
		pos = c.Row
	}
	for start := pos - ExplosionThreshold + 1; start <= pos; start++ {
		end := start + ExplosionThreshold - 1
		if start < 0 || end >= g.Size() {
			continue
		}
		first := C(c.Row-(pos-start)*dr, c.Col-(pos-start)*dc)
		t := g.Get(first)
		if t == Empty {
			continue
		}
		uniform := true
		for i := 1; i < ExplosionThreshold; i++ {
			if g.Get(C(first.Row+i*dr, first.Col+i*dc)) != t {
				uniform = false
				break
			}
		}
		if uniform {
			return true
		}
	}
	return false
}

// AnyMatchExists reports whether any cell of the grid is part of a match.
func AnyMatchExists(g *Grid) bool {
	for row := range g.Size() {
		for col := range g.Size() {
			if IsMatchAt(g, C(row, col)) {
				return true
			}
		}
	}
	return false
}

// FindAllChains returns every maximal chain: rows left to right first, then
// columns top to bottom. A cell shared by a horizontal and a vertical chain
// appears in both.
func FindAllChains(g *Grid) []Chain {
	var chains []Chain
	for row := range g.Size() {
		chains = scanLine(g, chains, C(row, 0), 0, 1)
	}
	for col := range g.Size() {
		chains = scanLine(g, chains, C(0, col), 1, 0)
	}
	return chains
}

// scanLine walks one line with a single forward cursor and appends its runs.
func scanLine(g *Grid, chains []Chain, start Coord, dr, dc int) []Chain {
	n := g.Size()
	at := func(i int) Coord { return C(start.Row+i*dr, start.Col+i*dc) }

	i := 0
	for i < n {
		t := g.Get(at(i))
		if t == Empty {
			i++
			continue
		}
		j := i + 1
		for j < n && g.Get(at(j)) == t {
			j++
		}
		if j-i < ExplosionThreshold {
			i++
			continue
		}
		cells := make([]Coord, 0, j-i)
		for k := i; k < j; k++ {
			cells = append(cells, at(k))
		}
		chains = append(chains, Chain{Cells: cells, Token: t, Horizontal: dc != 0})
		i = j
	}
	return chains
}

// ChainCells returns the union of all chain cells in row-major order.
func ChainCells(g *Grid, chains []Chain) []Coord {
	marked := make([]bool, g.Size()*g.Size())
	for _, ch := range chains {
		for _, c := range ch.Cells {
			marked[g.index(c)] = true
		}
	}
	var cells []Coord
	for i, m := range marked {
		if m {
			cells = append(cells, C(i/g.Size(), i%g.Size()))
		}
	}
	return cells
}
