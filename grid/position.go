// Package grid defines the board the search algorithms walk over: integer
// coordinates, cell classifications, walkability queries, and the overlay
// marks the search engine paints while it runs.
package grid

// Position is a grid coordinate. (0,0) is the top-left cell; x grows east
// and y grows south.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Manhattan returns the manhattan distance to other.
func (p Position) Manhattan(other Position) int {
	return abs(p.X-other.X) + abs(p.Y-other.Y)
}

// Neighbors returns the four-connected neighbors in north, east, south,
// west order. The order is load-bearing: DFS reverses it before pushing,
// and changing it changes which equal-length path every algorithm finds.
func (p Position) Neighbors() []Position {
	return []Position{
		{X: p.X, Y: p.Y - 1}, // north
		{X: p.X + 1, Y: p.Y}, // east
		{X: p.X, Y: p.Y + 1}, // south
		{X: p.X - 1, Y: p.Y}, // west
	}
}

// Direction is a compass direction between two positions, used by the
// inspector to draw back-pointer arrows.
type Direction int

const (
	DirNone Direction = iota
	DirNorth
	DirEast
	DirSouth
	DirWest
)

// DirectionTo returns the direction from p to other. Only the four cardinal
// directions are meaningful on this grid; anything else reports DirNone.
func (p Position) DirectionTo(other Position) Direction {
	dx, dy := other.X-p.X, other.Y-p.Y
	switch {
	case dx == 0 && dy < 0:
		return DirNorth
	case dx > 0 && dy == 0:
		return DirEast
	case dx == 0 && dy > 0:
		return DirSouth
	case dx < 0 && dy == 0:
		return DirWest
	}
	return DirNone
}

// Arrow returns a single-rune arrow for the direction.
func (d Direction) Arrow() string {
	switch d {
	case DirNorth:
		return "↑"
	case DirEast:
		return "→"
	case DirSouth:
		return "↓"
	case DirWest:
		return "←"
	}
	return "•"
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
