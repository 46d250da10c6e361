package search

import "github.com/robonav/robonav/grid"

// Read-only views for the UI. None of these mutate the run; callers must
// not write through the returned maps and slices.

// StepCount returns how many pops have completed.
func (s *State) StepCount() int { return s.stepCount }

// FrontierLen returns the size of the frontier for the given algorithm,
// including any stale duplicate entries in the A* open set.
func (s *State) FrontierLen(algo Algorithm) int {
	switch algo {
	case AStar:
		return s.openSet.Len()
	case BFS:
		return len(s.bfsQueue)
	case DFS:
		return len(s.dfsStack)
	}
	return 0
}

// ClosedSetLen returns how many positions have been expanded.
func (s *State) ClosedSetLen() int { return len(s.closedSet) }

// InClosedSet reports whether pos has been expanded.
func (s *State) InClosedSet(pos grid.Position) bool {
	_, ok := s.closedSet[pos]
	return ok
}

// LastStepInfo returns the one-line trace of the most recent step.
func (s *State) LastStepInfo() string { return s.lastStepInfo }

// LastNeighbors returns the neighbor decisions of the most recent step.
func (s *State) LastNeighbors() []NeighborDecision { return s.lastNeighbors }

// CurrentNode returns the most recently popped position, if any step has
// completed.
func (s *State) CurrentNode() (grid.Position, bool) { return s.current, s.hasCurrent }

// CameFrom returns the back-pointer tree: child position to the parent that
// discovered it. The start has no entry.
func (s *State) CameFrom() map[grid.Position]grid.Position { return s.cameFrom }

// GCost returns the accumulated distance from start for a discovered
// position.
func (s *State) GCost(pos grid.Position) (int, bool) {
	v, ok := s.gCosts[pos]
	return v, ok
}

// HCost returns the heuristic estimate recorded for pos. Only A* records
// h costs.
func (s *State) HCost(pos grid.Position) (int, bool) {
	v, ok := s.hCosts[pos]
	return v, ok
}

// FCost returns g+h as recorded at admission time. Only A* records f costs.
func (s *State) FCost(pos grid.Position) (int, bool) {
	v, ok := s.fCosts[pos]
	return v, ok
}

// Terminated reports whether a terminal outcome has been returned.
func (s *State) Terminated() bool { return s.terminal != nil }

// OpenEntries returns a copy of the raw A* open set, stale duplicates
// included. Intended for the inspector.
func (s *State) OpenEntries() []Node {
	out := make([]Node, len(s.openSet))
	copy(out, s.openSet)
	return out
}
