package search

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/robonav/robonav/grid"
)

// parseBoard builds a grid from an ASCII picture: '#' obstacle, 'S' start,
// 'G' goal, '.' empty. Rows are top to bottom.
func parseBoard(t *testing.T, rows []string) (*grid.Grid, grid.Position, grid.Position) {
	t.Helper()
	g := grid.New(len(rows[0]), len(rows))
	var start, goal grid.Position
	for y, row := range rows {
		for x, c := range row {
			pos := grid.Position{X: x, Y: y}
			switch c {
			case '#':
				g.SetCell(pos, grid.Obstacle)
			case 'S':
				g.SetCell(pos, grid.Start)
				start = pos
			case 'G':
				g.SetCell(pos, grid.Goal)
				goal = pos
			}
		}
	}
	return g, start, goal
}

// dumpBoard renders the grid with overlays for failure logs.
func dumpBoard(g *grid.Grid) string {
	glyphs := map[grid.CellType]byte{
		grid.Empty:    '.',
		grid.Obstacle: '#',
		grid.Start:    'S',
		grid.Goal:     'G',
		grid.Path:     'o',
		grid.Visited:  'v',
		grid.Frontier: 'f',
		grid.Current:  'C',
	}
	var sb strings.Builder
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			sb.WriteByte(glyphs[g.Cell(grid.Position{X: x, Y: y})])
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// runToEnd drives a fresh run until a terminal outcome.
func runToEnd(t *testing.T, algo Algorithm, g *grid.Grid, start, goal grid.Position) (*State, StepResult) {
	t.Helper()
	s := New()
	s.Initialize(algo, start, goal)
	limit := g.Width()*g.Height() + 1
	for i := 0; i < limit; i++ {
		res := s.Step(algo, goal, g)
		if res.Outcome != Continue {
			return s, res
		}
	}
	t.Fatalf("%s did not terminate within %d steps:\n%s", algo, limit, dumpBoard(g))
	return nil, StepResult{}
}

// trueDistances computes shortest path lengths from start with a plain
// flood fill, independent of the engine under test.
func trueDistances(g *grid.Grid, start grid.Position) map[grid.Position]int {
	dist := map[grid.Position]int{start: 0}
	frontier := []grid.Position{start}
	for len(frontier) > 0 {
		var next []grid.Position
		for _, pos := range frontier {
			for _, nb := range pos.Neighbors() {
				if !g.IsWalkable(nb) {
					continue
				}
				if _, ok := dist[nb]; ok {
					continue
				}
				dist[nb] = dist[pos] + 1
				next = append(next, nb)
			}
		}
		frontier = next
	}
	return dist
}

func randomBoard(r *rand.Rand, w, h int) (*grid.Grid, grid.Position, grid.Position) {
	g := grid.New(w, h)
	start := grid.Position{X: r.Intn(w), Y: r.Intn(h)}
	goal := grid.Position{X: r.Intn(w), Y: r.Intn(h)}
	for goal == start {
		goal = grid.Position{X: r.Intn(w), Y: r.Intn(h)}
	}
	grid.GenerateWalls(g, r, 3, w*h/2, 0.35, start, goal)
	g.SetCell(start, grid.Start)
	g.SetCell(goal, grid.Goal)
	return g, start, goal
}

func checkPathValid(t *testing.T, g *grid.Grid, path []grid.Position, start, goal grid.Position) {
	t.Helper()
	if len(path) == 0 {
		t.Fatalf("empty path")
	}
	if path[0] != start || path[len(path)-1] != goal {
		t.Fatalf("path endpoints %v..%v want %v..%v", path[0], path[len(path)-1], start, goal)
	}
	for i, pos := range path {
		if !g.IsWalkable(pos) {
			t.Fatalf("path[%d]=%v not walkable:\n%s", i, pos, dumpBoard(g))
		}
		if i > 0 && path[i-1].Manhattan(pos) != 1 {
			t.Fatalf("path[%d]=%v not adjacent to %v", i, pos, path[i-1])
		}
	}
}

func TestBFSShortestPathOnOpenGrid(t *testing.T) {
	g, start, goal := parseBoard(t, []string{
		"S....",
		".....",
		".....",
		".....",
		"....G",
	})
	s, res := runToEnd(t, BFS, g, start, goal)
	t.Logf("BFS finished after %d steps:\n%s", s.StepCount(), dumpBoard(g))
	if res.Outcome != PathFound {
		t.Fatalf("outcome=%v want PathFound", res.Outcome)
	}
	if len(res.Path) != 9 {
		t.Fatalf("path len=%d want 9 (manhattan distance)", len(res.Path))
	}
	checkPathValid(t, g, res.Path, start, goal)
}

func TestAStarMatchesBFSOnOpenGrid(t *testing.T) {
	rows := []string{
		"S....",
		".....",
		".....",
		".....",
		"....G",
	}
	gb, start, goal := parseBoard(t, rows)
	_, bfsRes := runToEnd(t, BFS, gb, start, goal)

	ga, _, _ := parseBoard(t, rows)
	s, res := runToEnd(t, AStar, ga, start, goal)
	t.Logf("A* finished after %d steps:\n%s", s.StepCount(), dumpBoard(ga))
	if res.Outcome != PathFound {
		t.Fatalf("outcome=%v want PathFound", res.Outcome)
	}
	if len(res.Path) != len(bfsRes.Path) {
		t.Fatalf("A* path len=%d, BFS len=%d", len(res.Path), len(bfsRes.Path))
	}
	checkPathValid(t, ga, res.Path, start, goal)
}

func TestDFSWalksEastThenSouthOnOpenGrid(t *testing.T) {
	g, start, goal := parseBoard(t, []string{
		"S....",
		".....",
		".....",
		".....",
		"....G",
	})
	s, res := runToEnd(t, DFS, g, start, goal)
	t.Logf("DFS finished after %d steps:\n%s", s.StepCount(), dumpBoard(g))
	if res.Outcome != PathFound {
		t.Fatalf("outcome=%v want PathFound", res.Outcome)
	}

	// Neighbor order N,E,S,W reversed before pushing puts east on top of
	// the stack for the top-left corner, so DFS slides along the top edge
	// and then straight down the right edge.
	want := []grid.Position{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 3, Y: 0}, {X: 4, Y: 0},
		{X: 4, Y: 1}, {X: 4, Y: 2}, {X: 4, Y: 3}, {X: 4, Y: 4},
	}
	if len(res.Path) != len(want) {
		t.Fatalf("path len=%d want %d: %v", len(res.Path), len(want), res.Path)
	}
	for i := range want {
		if res.Path[i] != want[i] {
			t.Fatalf("path[%d]=%v want %v (full path %v)", i, res.Path[i], want[i], res.Path)
		}
	}
}

func TestStartEqualsGoal(t *testing.T) {
	for _, algo := range []Algorithm{BFS, DFS, AStar} {
		g := grid.New(3, 3)
		pos := grid.Position{X: 1, Y: 1}
		g.SetCell(pos, grid.Start)

		s := New()
		s.Initialize(algo, pos, pos)
		res := s.Step(algo, pos, g)
		if res.Outcome != PathFound {
			t.Fatalf("%s: outcome=%v want PathFound", algo, res.Outcome)
		}
		if len(res.Path) != 1 || res.Path[0] != pos {
			t.Fatalf("%s: path=%v want [%v]", algo, res.Path, pos)
		}
		if s.StepCount() != 1 {
			t.Fatalf("%s: step count=%d want 1", algo, s.StepCount())
		}
	}
}

func TestEnclosedGoalReturnsNoPath(t *testing.T) {
	rows := []string{
		"S....",
		".....",
		".###.",
		".#G#.",
		".###.",
	}
	for _, algo := range []Algorithm{BFS, DFS, AStar} {
		g, start, goal := parseBoard(t, rows)
		s, res := runToEnd(t, algo, g, start, goal)
		if res.Outcome != NoPath {
			t.Fatalf("%s: outcome=%v want NoPath:\n%s", algo, res.Outcome, dumpBoard(g))
		}

		// The closed set must be exactly the reachable component around
		// start.
		reachable := trueDistances(g, start)
		if s.ClosedSetLen() != len(reachable) {
			t.Fatalf("%s: closed=%d want %d reachable cells", algo, s.ClosedSetLen(), len(reachable))
		}
		for pos := range reachable {
			if !s.InClosedSet(pos) {
				t.Fatalf("%s: reachable %v never expanded", algo, pos)
			}
		}
	}
}

func TestBFSOptimalityOnRandomGrids(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		g, start, goal := randomBoard(r, 9, 7)
		want, reachable := 0, false
		if d, ok := trueDistances(g, start)[goal]; ok {
			want, reachable = d, true
		}

		s, res := runToEnd(t, BFS, g.Clone(), start, goal)
		if !reachable {
			if res.Outcome != NoPath {
				t.Fatalf("grid %d: goal unreachable but outcome=%v\n%s", i, res.Outcome, dumpBoard(g))
			}
			continue
		}
		if res.Outcome != PathFound {
			t.Fatalf("grid %d: outcome=%v want PathFound (dist=%d)\n%s", i, res.Outcome, want, dumpBoard(g))
		}
		if len(res.Path)-1 != want {
			t.Fatalf("grid %d: BFS path edges=%d want %d after %d steps\n%s",
				i, len(res.Path)-1, want, s.StepCount(), dumpBoard(g))
		}
		checkPathValid(t, g, res.Path, start, goal)
	}
}

func TestAStarOptimalityOnRandomGrids(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	for i := 0; i < 50; i++ {
		g, start, goal := randomBoard(r, 9, 7)
		_, bfsRes := runToEnd(t, BFS, g.Clone(), start, goal)
		_, aRes := runToEnd(t, AStar, g.Clone(), start, goal)

		if bfsRes.Outcome != aRes.Outcome {
			t.Fatalf("grid %d: BFS=%v A*=%v\n%s", i, bfsRes.Outcome, aRes.Outcome, dumpBoard(g))
		}
		if aRes.Outcome != PathFound {
			continue
		}
		if len(aRes.Path) != len(bfsRes.Path) {
			t.Fatalf("grid %d: A* len=%d BFS len=%d\n%s", i, len(aRes.Path), len(bfsRes.Path), dumpBoard(g))
		}
		checkPathValid(t, g, aRes.Path, start, goal)
	}
}

func TestDFSPathValidOnRandomGrids(t *testing.T) {
	r := rand.New(rand.NewSource(13))
	for i := 0; i < 50; i++ {
		g, start, goal := randomBoard(r, 9, 7)
		_, reachable := trueDistances(g, start)[goal]
		_, res := runToEnd(t, DFS, g, start, goal)
		if !reachable {
			if res.Outcome != NoPath {
				t.Fatalf("grid %d: goal unreachable but outcome=%v", i, res.Outcome)
			}
			continue
		}
		if res.Outcome != PathFound {
			t.Fatalf("grid %d: outcome=%v want PathFound\n%s", i, res.Outcome, dumpBoard(g))
		}
		checkPathValid(t, g, res.Path, start, goal)
	}
}

func TestClosedSetOnlyGrows(t *testing.T) {
	rows := []string{
		"S..#....",
		".#.#.##.",
		".#...#..",
		".###.#..",
		".....#.G",
	}
	for _, algo := range []Algorithm{BFS, DFS, AStar} {
		g, start, goal := parseBoard(t, rows)
		s := New()
		s.Initialize(algo, start, goal)

		seen := map[grid.Position]struct{}{}
		prevLen := 0
		for i := 0; i < g.Width()*g.Height()+1; i++ {
			res := s.Step(algo, goal, g)
			if s.ClosedSetLen() < prevLen {
				t.Fatalf("%s: closed set shrank %d -> %d", algo, prevLen, s.ClosedSetLen())
			}
			prevLen = s.ClosedSetLen()
			for pos := range seen {
				if !s.InClosedSet(pos) {
					t.Fatalf("%s: %v dropped from closed set", algo, pos)
				}
			}
			if cur, ok := s.CurrentNode(); ok {
				seen[cur] = struct{}{}
			}
			if res.Outcome != Continue {
				break
			}
		}
	}
}

func TestFirstDiscoveryWinsForBFSAndDFS(t *testing.T) {
	r := rand.New(rand.NewSource(17))
	for _, algo := range []Algorithm{BFS, DFS} {
		for i := 0; i < 20; i++ {
			g, start, goal := randomBoard(r, 8, 8)
			s := New()
			s.Initialize(algo, start, goal)

			parents := map[grid.Position]grid.Position{}
			for j := 0; j < g.Width()*g.Height()+1; j++ {
				res := s.Step(algo, goal, g)
				for child, parent := range s.CameFrom() {
					if old, ok := parents[child]; ok && old != parent {
						t.Fatalf("%s grid %d: %v reassigned parent %v -> %v", algo, i, child, old, parent)
					}
					parents[child] = parent
				}
				if res.Outcome != Continue {
					break
				}
			}
		}
	}
}

func TestAStarNeverPopsNonMinimalEntry(t *testing.T) {
	r := rand.New(rand.NewSource(23))
	for i := 0; i < 30; i++ {
		g, start, goal := randomBoard(r, 9, 9)
		s := New()
		s.Initialize(AStar, start, goal)

		for j := 0; j < g.Width()*g.Height()+1; j++ {
			res := s.Step(AStar, goal, g)
			if res.Outcome != Continue {
				break
			}
			cur, ok := s.CurrentNode()
			if !ok {
				t.Fatal("continue step without a current node")
			}
			popF, _ := s.FCost(cur)
			for _, entry := range s.OpenEntries() {
				if entry.Pos == cur && entry.F() < popF {
					t.Fatalf("grid %d: popped %v at f=%d while open holds stale f=%d", i, cur, popF, entry.F())
				}
			}
		}
	}
}

func TestTerminationWithinWalkableCellBound(t *testing.T) {
	r := rand.New(rand.NewSource(29))
	for _, algo := range []Algorithm{BFS, DFS, AStar} {
		for i := 0; i < 20; i++ {
			g, start, goal := randomBoard(r, 8, 6)
			walkable := 0
			for y := 0; y < g.Height(); y++ {
				for x := 0; x < g.Width(); x++ {
					if g.IsWalkable(grid.Position{X: x, Y: y}) {
						walkable++
					}
				}
			}
			s, _ := runToEnd(t, algo, g, start, goal)
			if s.StepCount() > walkable {
				t.Fatalf("%s grid %d: %d steps for %d walkable cells", algo, i, s.StepCount(), walkable)
			}
		}
	}
}

func TestStepAfterTerminalIsNoOp(t *testing.T) {
	rows := []string{
		"S#G",
		".#.",
		".#.",
	}
	for _, algo := range []Algorithm{BFS, DFS, AStar} {
		g, start, goal := parseBoard(t, rows)
		s, res := runToEnd(t, algo, g, start, goal)
		if res.Outcome != NoPath {
			t.Fatalf("%s: outcome=%v want NoPath", algo, res.Outcome)
		}
		steps := s.StepCount()
		for i := 0; i < 3; i++ {
			again := s.Step(algo, goal, g)
			if again.Outcome != NoPath {
				t.Fatalf("%s: terminated state returned %v", algo, again.Outcome)
			}
		}
		if s.StepCount() != steps {
			t.Fatalf("%s: step count advanced after termination", algo)
		}
		if !s.Terminated() {
			t.Fatalf("%s: Terminated() = false after NoPath", algo)
		}
	}
}

func TestInspectorTraceRecordsDecisions(t *testing.T) {
	g, start, goal := parseBoard(t, []string{
		"S..",
		"...",
		"..G",
	})
	s := New()
	s.Initialize(BFS, start, goal)

	s.Step(BFS, goal, g)
	if s.LastStepInfo() == "" {
		t.Fatal("no step info after first step")
	}
	if n := len(s.LastNeighbors()); n != 2 {
		t.Fatalf("corner pop considered %d neighbors, want 2", n)
	}
	for _, d := range s.LastNeighbors() {
		if d.Decision != "enqueue" {
			t.Fatalf("first expansion decision=%q want enqueue", d.Decision)
		}
		if d.G == nil || *d.G != 1 {
			t.Fatalf("admitted neighbor missing g=1: %+v", d)
		}
		if d.H != nil || d.F != nil {
			t.Fatalf("BFS recorded h/f costs: %+v", d)
		}
	}

	// Second step must see the start's other neighbor as already seen.
	s.Step(BFS, goal, g)
	var skips int
	for _, d := range s.LastNeighbors() {
		if strings.HasPrefix(d.Decision, "skip") {
			skips++
		}
	}
	if skips == 0 {
		t.Fatalf("expected a skip decision on second step, got %+v", s.LastNeighbors())
	}
}

func TestAStarSkipDecisionOnDuplicateFrontier(t *testing.T) {
	// A 3x3 open grid forces two expansions that rediscover cells already
	// sitting in the open set with equal or better g.
	g, start, goal := parseBoard(t, []string{
		"S..",
		"...",
		"..G",
	})
	s := New()
	s.Initialize(AStar, start, goal)

	sawSkip := false
	for i := 0; i < 9; i++ {
		res := s.Step(AStar, goal, g)
		for _, d := range s.LastNeighbors() {
			if strings.HasPrefix(d.Decision, "skip: existing g=") {
				sawSkip = true
			}
		}
		if res.Outcome != Continue {
			break
		}
	}
	if !sawSkip {
		t.Fatal("no lazy-deletion skip decision observed on open 3x3 grid")
	}
}

func TestAStarCostAnnotations(t *testing.T) {
	g, start, goal := parseBoard(t, []string{
		"S....",
		".....",
		"....G",
	})
	s := New()
	s.Initialize(AStar, start, goal)

	if gc, ok := s.GCost(start); !ok || gc != 0 {
		t.Fatalf("start g=%d,%v want 0,true", gc, ok)
	}
	if hc, ok := s.HCost(start); !ok || hc != start.Manhattan(goal) {
		t.Fatalf("start h=%d,%v want %d,true", hc, ok, start.Manhattan(goal))
	}

	_, res := runToEnd(t, AStar, g, start, goal)
	if res.Outcome != PathFound {
		t.Fatalf("outcome=%v", res.Outcome)
	}
}
