package search

import (
	"container/heap"
	"fmt"

	"github.com/robonav/robonav/grid"
)

// Outcome is the result of one Step call.
type Outcome int

const (
	// Continue means the frontier is not exhausted and the goal has not
	// been reached; call Step again.
	Continue Outcome = iota
	// PathFound means the goal was just expanded; StepResult.Path holds the
	// reconstructed start-to-goal path.
	PathFound
	// NoPath means the frontier drained without reaching the goal.
	NoPath
)

func (o Outcome) String() string {
	switch o {
	case Continue:
		return "continue"
	case PathFound:
		return "path_found"
	case NoPath:
		return "no_path"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// StepResult is what one Step call produced. Path is set only for PathFound
// and always runs start to goal inclusive.
type StepResult struct {
	Outcome Outcome
	Path    []grid.Position
}

// NeighborDecision records what happened to one neighbor considered during
// the most recent step. Cost fields are nil when the algorithm did not
// compute them (BFS/DFS skips, and h/f outside A*).
type NeighborDecision struct {
	Pos      grid.Position
	G        *int
	H        *int
	F        *int
	Decision string
}

// State holds all bookkeeping for a single search run. Create one with New,
// call Initialize exactly once, then call Step until it returns a terminal
// outcome. A State is never reused; a new run needs a new State.
//
// Exactly one frontier is populated per run, selected by the algorithm
// passed to Initialize. Calling Step after a terminal outcome is a no-op
// that returns the same terminal result again.
type State struct {
	openSet  openHeap        // A*
	bfsQueue []grid.Position // FIFO
	dfsStack []grid.Position // LIFO

	closedSet map[grid.Position]struct{}
	cameFrom  map[grid.Position]grid.Position

	// Cost annotations for every discovered position. Display-only for
	// BFS/DFS; A* additionally reads gCosts through its open-set entries.
	gCosts map[grid.Position]int
	hCosts map[grid.Position]int
	fCosts map[grid.Position]int

	current     grid.Position
	hasCurrent  bool
	previous    grid.Position
	hasPrevious bool
	stepCount   int

	lastStepInfo  string
	lastNeighbors []NeighborDecision

	terminal *StepResult
}

// New returns an empty State. Initialize must be called before Step.
func New() *State {
	return &State{
		closedSet: make(map[grid.Position]struct{}),
		cameFrom:  make(map[grid.Position]grid.Position),
		gCosts:    make(map[grid.Position]int),
		hCosts:    make(map[grid.Position]int),
		fCosts:    make(map[grid.Position]int),
	}
}

// Initialize resets everything and seeds the frontier for the chosen
// algorithm with the start position. Start/goal validity (in bounds, not an
// obstacle) is the caller's responsibility.
func (s *State) Initialize(algo Algorithm, start, goal grid.Position) {
	*s = *New()

	switch algo {
	case AStar:
		h := start.Manhattan(goal)
		heap.Push(&s.openSet, Node{Pos: start, G: 0, H: h})
		s.gCosts[start] = 0
		s.hCosts[start] = h
		s.fCosts[start] = h
	case BFS:
		s.bfsQueue = append(s.bfsQueue, start)
		s.gCosts[start] = 0
	case DFS:
		s.dfsStack = append(s.dfsStack, start)
		s.gCosts[start] = 0
	}
}

// Step advances the search by one expansion. It pops one frontier element,
// paints the current/frontier/visited overlays on g, records the inspector
// trace, and reports whether the run is over. The engine keeps no reference
// to g between calls.
func (s *State) Step(algo Algorithm, goal grid.Position, g *grid.Grid) StepResult {
	if s.terminal != nil {
		return *s.terminal
	}
	var res StepResult
	switch algo {
	case AStar:
		res = s.stepAStar(goal, g)
	case BFS:
		res = s.stepBFS(goal, g)
	case DFS:
		res = s.stepDFS(goal, g)
	default:
		res = StepResult{Outcome: NoPath}
	}
	if res.Outcome != Continue {
		s.terminal = &res
	}
	return res
}

func (s *State) stepAStar(goal grid.Position, g *grid.Grid) StepResult {
	// Discard stale duplicates for positions that already closed. They were
	// superseded by a cheaper entry that popped earlier.
	var node Node
	for {
		if s.openSet.Len() == 0 {
			s.lastStepInfo = "open set empty: no path"
			return StepResult{Outcome: NoPath}
		}
		node = heap.Pop(&s.openSet).(Node)
		if _, closed := s.closedSet[node.Pos]; !closed {
			break
		}
	}

	s.closedSet[node.Pos] = struct{}{}
	s.beginStep(node.Pos, g)

	s.lastStepInfo = fmt.Sprintf("step %d: pop (%d, %d) with g=%d, h=%d, f=%d (%d open, %d closed)",
		s.stepCount, node.Pos.X, node.Pos.Y, node.G, node.H, node.F(), s.openSet.Len(), len(s.closedSet))
	s.lastNeighbors = s.lastNeighbors[:0]

	if node.Pos == goal {
		return StepResult{Outcome: PathFound, Path: s.reconstructPath(node.Pos)}
	}

	var admitted []Node
	for _, nb := range g.WalkableNeighbors(node.Pos) {
		if _, closed := s.closedSet[nb]; closed {
			continue
		}
		tentativeG := node.G + 1
		h := nb.Manhattan(goal)

		// No decrease-key: scan the open set for an entry of this position
		// that is at least as good. Ties reject, so only a strictly cheaper
		// rediscovery is re-admitted (and the old entry goes stale).
		skip := false
		for _, existing := range s.openSet {
			if existing.Pos == nb && existing.G <= tentativeG {
				s.logNeighbor(nb, &tentativeG, &h,
					fmt.Sprintf("skip: existing g=%d ≤ tentative g=%d", existing.G, tentativeG))
				skip = true
				break
			}
		}
		if skip {
			continue
		}

		admitted = append(admitted, Node{Pos: nb, G: tentativeG, H: h})
		s.logNeighbor(nb, &tentativeG, &h,
			fmt.Sprintf("push: g=%d, h=%d, f=%d", tentativeG, h, tentativeG+h))
	}

	for _, nb := range admitted {
		s.cameFrom[nb.Pos] = node.Pos
		s.gCosts[nb.Pos] = nb.G
		s.hCosts[nb.Pos] = nb.H
		s.fCosts[nb.Pos] = nb.F()
		heap.Push(&s.openSet, nb)
		g.MarkFrontier([]grid.Position{nb.Pos})
	}

	s.paintClosed(g)
	return StepResult{Outcome: Continue}
}

func (s *State) stepBFS(goal grid.Position, g *grid.Grid) StepResult {
	if len(s.bfsQueue) == 0 {
		s.lastStepInfo = "queue empty: no path"
		return StepResult{Outcome: NoPath}
	}

	current := s.bfsQueue[0]
	s.bfsQueue = s.bfsQueue[1:]
	s.closedSet[current] = struct{}{}
	s.beginStep(current, g)

	gCost := s.gCosts[current]
	s.lastStepInfo = fmt.Sprintf("step %d: pop (%d, %d) at distance g=%d (queue=%d, closed=%d)",
		s.stepCount, current.X, current.Y, gCost, len(s.bfsQueue), len(s.closedSet))
	s.lastNeighbors = s.lastNeighbors[:0]

	if current == goal {
		return StepResult{Outcome: PathFound, Path: s.reconstructPath(current)}
	}

	for _, nb := range g.WalkableNeighbors(current) {
		if s.seen(nb) {
			s.logNeighbor(nb, nil, nil, "skip: already seen")
			continue
		}
		newG := gCost + 1
		s.cameFrom[nb] = current
		s.gCosts[nb] = newG
		s.bfsQueue = append(s.bfsQueue, nb)
		g.MarkFrontier([]grid.Position{nb})
		s.logNeighbor(nb, &newG, nil, "enqueue")
	}

	s.paintClosed(g)
	return StepResult{Outcome: Continue}
}

func (s *State) stepDFS(goal grid.Position, g *grid.Grid) StepResult {
	if len(s.dfsStack) == 0 {
		s.lastStepInfo = "stack empty: no path"
		return StepResult{Outcome: NoPath}
	}

	current := s.dfsStack[len(s.dfsStack)-1]
	s.dfsStack = s.dfsStack[:len(s.dfsStack)-1]
	s.closedSet[current] = struct{}{}
	s.beginStep(current, g)

	gCost := s.gCosts[current]
	s.lastStepInfo = fmt.Sprintf("step %d: pop (%d, %d) depth g=%d (stack=%d, closed=%d)",
		s.stepCount, current.X, current.Y, gCost, len(s.dfsStack), len(s.closedSet))
	s.lastNeighbors = s.lastNeighbors[:0]

	if current == goal {
		return StepResult{Outcome: PathFound, Path: s.reconstructPath(current)}
	}

	// Reversed so the first neighbor in grid order ends up on top of the
	// stack and is explored first.
	neighbors := g.WalkableNeighbors(current)
	for i, j := 0, len(neighbors)-1; i < j; i, j = i+1, j-1 {
		neighbors[i], neighbors[j] = neighbors[j], neighbors[i]
	}

	for _, nb := range neighbors {
		if s.seen(nb) {
			s.logNeighbor(nb, nil, nil, "skip: already seen")
			continue
		}
		newG := gCost + 1
		s.cameFrom[nb] = current
		s.gCosts[nb] = newG
		s.dfsStack = append(s.dfsStack, nb)
		g.MarkFrontier([]grid.Position{nb})
		s.logNeighbor(nb, &newG, nil, "push")
	}

	s.paintClosed(g)
	return StepResult{Outcome: Continue}
}

// beginStep does the bookkeeping shared by every pop: step counter, the
// current marker, and aging the previous current cell into visited.
func (s *State) beginStep(pos grid.Position, g *grid.Grid) {
	s.stepCount++
	if s.hasPrevious {
		g.MarkPreviousVisited(s.previous)
	}
	s.previous, s.hasPrevious = pos, true
	s.current, s.hasCurrent = pos, true
	g.MarkCurrent(pos)
}

// seen reports whether BFS/DFS already discovered pos. Those algorithms
// never revisit: first discovery wins.
func (s *State) seen(pos grid.Position) bool {
	if _, ok := s.closedSet[pos]; ok {
		return true
	}
	_, ok := s.cameFrom[pos]
	return ok
}

func (s *State) logNeighbor(pos grid.Position, gCost, hCost *int, decision string) {
	d := NeighborDecision{Pos: pos, Decision: decision}
	if gCost != nil {
		v := *gCost
		d.G = &v
	}
	if hCost != nil {
		v := *hCost
		d.H = &v
	}
	if gCost != nil && hCost != nil {
		f := *gCost + *hCost
		d.F = &f
	}
	s.lastNeighbors = append(s.lastNeighbors, d)
}

func (s *State) paintClosed(g *grid.Grid) {
	closed := make([]grid.Position, 0, len(s.closedSet))
	for pos := range s.closedSet {
		closed = append(closed, pos)
	}
	g.MarkVisited(closed)
}

// reconstructPath walks the back-pointer tree from goal to the position
// with no parent (the start) and reverses. Pure function of cameFrom,
// computed once when the goal pops.
func (s *State) reconstructPath(goal grid.Position) []grid.Position {
	path := []grid.Position{goal}
	current := goal
	for {
		parent, ok := s.cameFrom[current]
		if !ok {
			break
		}
		path = append(path, parent)
		current = parent
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
