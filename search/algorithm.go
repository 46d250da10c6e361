// Package search implements the incremental pathfinding engine. A State is
// initialized once per run and advanced one expansion at a time so a caller
// can render the frontier, visited set, and per-step decisions between
// steps.
package search

import "fmt"

// Algorithm selects the stepping discipline. It is a closed three-way set;
// Step branches on it once per call.
type Algorithm int

const (
	BFS Algorithm = iota
	DFS
	AStar
)

func (a Algorithm) String() string {
	switch a {
	case BFS:
		return "bfs"
	case DFS:
		return "dfs"
	case AStar:
		return "astar"
	}
	return fmt.Sprintf("algorithm(%d)", int(a))
}

// Display returns the short human-facing name.
func (a Algorithm) Display() string {
	switch a {
	case BFS:
		return "BFS"
	case DFS:
		return "DFS"
	case AStar:
		return "A*"
	}
	return a.String()
}

// Description returns a one-paragraph explanation for the UI legend.
func (a Algorithm) Description() string {
	switch a {
	case BFS:
		return "Breadth-First Search (BFS) explores all nodes at depth d before any node at depth d+1. It guarantees the shortest path in unweighted graphs. Uses a FIFO queue for the frontier, giving layer-by-layer exploration."
	case DFS:
		return "Depth-First Search (DFS) follows each branch as far as it goes before backtracking. It does not guarantee the shortest path but keeps a small frontier. Uses a LIFO stack, diving deep before exploring alternatives."
	case AStar:
		return "A* is an informed search combining the actual distance from start (g) with a heuristic estimate to goal (h). It expands the most promising node first by f = g + h and finds the optimal path with an admissible heuristic."
	}
	return ""
}

// ParseAlgorithm converts a flag/query value into an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch s {
	case "bfs":
		return BFS, nil
	case "dfs":
		return DFS, nil
	case "astar", "a*":
		return AStar, nil
	}
	return 0, fmt.Errorf("unknown algorithm %q (want bfs, dfs, or astar)", s)
}
