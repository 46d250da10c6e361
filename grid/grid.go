package grid

// CellType classifies a cell. Start/Goal/Obstacle are placed by the user;
// Path/Visited/Frontier/Current are overlays painted during a search.
type CellType uint8

const (
	Empty CellType = iota
	Obstacle
	Start
	Goal
	Path
	Visited
	Frontier
	Current
)

// Grid is a 2D board of cells. It knows nothing about search algorithms;
// the engine queries walkability and paints overlays through it.
type Grid struct {
	width  int
	height int
	cells  [][]CellType
}

// New returns a grid of the given size with every cell Empty.
func New(width, height int) *Grid {
	cells := make([][]CellType, height)
	for y := range cells {
		cells[y] = make([]CellType, width)
	}
	return &Grid{width: width, height: height, cells: cells}
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// Cell returns the cell type at pos. Out-of-bounds positions read as
// Obstacle so callers never walk off the board.
func (g *Grid) Cell(pos Position) CellType {
	if !g.InBounds(pos) {
		return Obstacle
	}
	return g.cells[pos.Y][pos.X]
}

// SetCell sets the cell type at pos. Out-of-bounds writes are dropped.
func (g *Grid) SetCell(pos Position, t CellType) {
	if g.InBounds(pos) {
		g.cells[pos.Y][pos.X] = t
	}
}

func (g *Grid) InBounds(pos Position) bool {
	return pos.X >= 0 && pos.X < g.width && pos.Y >= 0 && pos.Y < g.height
}

// IsWalkable reports whether pos is in bounds and not an obstacle.
func (g *Grid) IsWalkable(pos Position) bool {
	return g.InBounds(pos) && g.Cell(pos) != Obstacle
}

// WalkableNeighbors returns the walkable four-connected neighbors of pos in
// north, east, south, west order.
func (g *Grid) WalkableNeighbors(pos Position) []Position {
	out := make([]Position, 0, 4)
	for _, n := range pos.Neighbors() {
		if g.IsWalkable(n) {
			out = append(out, n)
		}
	}
	return out
}

// ClearSearchCells resets every search overlay back to Empty, leaving
// obstacles and the start/goal markers alone.
func (g *Grid) ClearSearchCells() {
	for y := range g.cells {
		for x, c := range g.cells[y] {
			switch c {
			case Path, Visited, Frontier, Current:
				g.cells[y][x] = Empty
			}
		}
	}
}

// MarkCurrent paints pos as the cell the search just expanded. Start and
// goal keep their own markers.
func (g *Grid) MarkCurrent(pos Position) {
	if c := g.Cell(pos); c == Start || c == Goal {
		return
	}
	g.SetCell(pos, Current)
}

// MarkPreviousVisited ages the previous Current cell into Visited.
func (g *Grid) MarkPreviousVisited(pos Position) {
	if g.Cell(pos) == Current {
		g.SetCell(pos, Visited)
	}
}

// MarkFrontier paints newly discovered cells. Only plain Empty cells are
// painted so a higher-priority overlay is never downgraded.
func (g *Grid) MarkFrontier(positions []Position) {
	for _, pos := range positions {
		if g.Cell(pos) == Empty {
			g.SetCell(pos, Frontier)
		}
	}
}

// MarkVisited paints expanded cells. Empty and Frontier cells are painted;
// Current, Path, Start and Goal are left alone.
func (g *Grid) MarkVisited(positions []Position) {
	for _, pos := range positions {
		if c := g.Cell(pos); c == Empty || c == Frontier {
			g.SetCell(pos, Visited)
		}
	}
}

// MarkPath paints a reconstructed path over whatever overlays are present,
// skipping the start and goal cells.
func (g *Grid) MarkPath(path []Position) {
	for _, pos := range path {
		if c := g.Cell(pos); c == Start || c == Goal {
			continue
		}
		g.SetCell(pos, Path)
	}
}

// Clone returns a deep copy of the grid. Useful for running several
// algorithms over the same layout without repainting.
func (g *Grid) Clone() *Grid {
	out := New(g.width, g.height)
	for y := range g.cells {
		copy(out.cells[y], g.cells[y])
	}
	return out
}
