// Command solvegrid runs grid searches to completion without a UI: load or
// generate a map, run one algorithm (or all three), print the solved board,
// and optionally record the runs as parquet for the viewer's history page.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/robonav/robonav/grid"
	"github.com/robonav/robonav/logging"
	"github.com/robonav/robonav/search"
	"github.com/robonav/robonav/store"
)

func main() {
	mapPath := flag.String("map", "", "Path to a .robonavmap file (overrides generation flags)")
	width := flag.Int("width", 20, "Grid width for generated maps")
	height := flag.Int("height", 14, "Grid height for generated maps")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Seed for generated obstacles")
	density := flag.Float64("density", 0.35, "Obstacle density for generated maps")
	algoName := flag.String("algo", "all", "Algorithm to run: bfs, dfs, astar, or all")
	outDir := flag.String("out", "", "Directory to record parquet run history (empty disables)")
	recordSteps := flag.Bool("record-steps", false, "Also record a per-step trace row for every expansion")
	quiet := flag.Bool("quiet", false, "Skip printing the solved board")
	flag.Parse()

	logger := slog.New(logging.NewPrettyHandler(os.Stdout, nil))

	var algos []search.Algorithm
	if *algoName == "all" {
		algos = []search.Algorithm{search.BFS, search.DFS, search.AStar}
	} else {
		a, err := search.ParseAlgorithm(*algoName)
		if err != nil {
			logger.Error("bad -algo", "err", err)
			os.Exit(2)
		}
		algos = []search.Algorithm{a}
	}

	base, start, goal, mapName, err := buildGrid(*mapPath, *width, *height, *seed, *density)
	if err != nil {
		logger.Error("failed to prepare grid", "err", err)
		os.Exit(1)
	}

	var rec *store.Recorder
	if *outDir != "" {
		rec, err = store.NewRecorder(*outDir)
		if err != nil {
			logger.Error("failed to open recorder", "err", err)
			os.Exit(1)
		}
	}

	for _, algo := range algos {
		g := base.Clone()
		summary, steps := runSearch(algo, g, start, goal)

		if !*quiet {
			fmt.Printf("\n%s on %s:\n%s", algo.Display(), mapName, renderBoard(g))
		}
		logger.Info("run finished",
			"algorithm", algo.String(),
			"map", mapName,
			"outcome", summary.Outcome,
			"path_len", summary.PathLen,
			"steps", summary.Steps,
			"expanded", summary.Expanded,
			"duration", time.Duration(summary.DurationNs))

		if rec != nil {
			summary.MapName = mapName
			if err := rec.WriteRun(summary); err != nil {
				logger.Error("failed to record run", "err", err)
				os.Exit(1)
			}
			if *recordSteps {
				if err := rec.WriteSteps(steps); err != nil {
					logger.Error("failed to record steps", "err", err)
					os.Exit(1)
				}
			}
		}
	}

	if rec != nil {
		runsPath, stepsPath, err := rec.Finalize()
		if err != nil {
			logger.Error("failed to finalize recording", "err", err)
			os.Exit(1)
		}
		logger.Info("recorded", "runs", runsPath, "steps", stepsPath)
	}
}

func buildGrid(mapPath string, width, height int, seed int64, density float64) (*grid.Grid, grid.Position, grid.Position, string, error) {
	if mapPath != "" {
		m, err := grid.LoadMap(mapPath)
		if err != nil {
			return nil, grid.Position{}, grid.Position{}, "", err
		}
		g, err := m.ToGrid()
		if err != nil {
			return nil, grid.Position{}, grid.Position{}, "", err
		}
		name := m.Name
		if name == "" {
			name = mapPath
		}
		return g, m.Start, m.Goal, name, nil
	}

	start := grid.Position{X: 0, Y: 0}
	goal := grid.Position{X: width - 1, Y: height - 1}
	g := grid.New(width, height)
	grid.GenerateWalls(g, rand.New(rand.NewSource(seed)), 4, width*height/2, density, start, goal)
	g.SetCell(start, grid.Start)
	g.SetCell(goal, grid.Goal)
	return g, start, goal, fmt.Sprintf("random-%d", seed), nil
}

// runSearch drives one run to completion, building the run summary and the
// per-step trace as it goes. The grid ends up painted with the overlays and
// the final path.
func runSearch(algo search.Algorithm, g *grid.Grid, start, goal grid.Position) (store.RunRow, []store.StepRow) {
	runID := fmt.Sprintf("%s_%s", algo, uuid.NewString())
	st := search.New()
	st.Initialize(algo, start, goal)

	row := store.RunRow{
		RunID:     runID,
		Algorithm: algo.String(),
		Width:     int32(g.Width()),
		Height:    int32(g.Height()),
		StartX:    int32(start.X), StartY: int32(start.Y),
		GoalX: int32(goal.X), GoalY: int32(goal.Y),
		StartedNs: time.Now().UnixNano(),
	}

	var steps []store.StepRow
	began := time.Now()
	limit := g.Width()*g.Height() + 1
	for i := 0; i < limit; i++ {
		res := st.Step(algo, goal, g)
		if cur, ok := st.CurrentNode(); ok && res.Outcome != search.NoPath {
			steps = append(steps, stepRowOf(runID, st, algo, cur))
		}
		if res.Outcome == search.Continue {
			continue
		}
		row.Outcome = res.Outcome.String()
		if res.Outcome == search.PathFound {
			g.MarkPath(res.Path)
			row.PathLen = int32(len(res.Path))
		}
		break
	}
	row.DurationNs = time.Since(began).Nanoseconds()
	row.Steps = int32(st.StepCount())
	row.Expanded = int32(st.ClosedSetLen())
	row.Discovered = int32(len(st.CameFrom()) + 1) // plus the start

	return row, steps
}

func stepRowOf(runID string, st *search.State, algo search.Algorithm, cur grid.Position) store.StepRow {
	row := store.StepRow{
		RunID:       runID,
		Step:        int32(st.StepCount()),
		X:           int32(cur.X),
		Y:           int32(cur.Y),
		FrontierLen: int32(st.FrontierLen(algo)),
		ClosedLen:   int32(st.ClosedSetLen()),
	}
	if v, ok := st.GCost(cur); ok {
		row.G = int32(v)
	}
	if v, ok := st.HCost(cur); ok {
		row.H = int32(v)
	}
	if v, ok := st.FCost(cur); ok {
		row.F = int32(v)
	}
	for _, d := range st.LastNeighbors() {
		if strings.HasPrefix(d.Decision, "skip") {
			row.Skipped++
		} else {
			row.Admitted++
		}
	}
	return row
}

func renderBoard(g *grid.Grid) string {
	glyphs := map[grid.CellType]byte{
		grid.Empty:    '.',
		grid.Obstacle: '#',
		grid.Start:    'S',
		grid.Goal:     'G',
		grid.Path:     'o',
		grid.Visited:  '-',
		grid.Frontier: '+',
		grid.Current:  '@',
	}
	var sb strings.Builder
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			sb.WriteByte(glyphs[g.Cell(grid.Position{X: x, Y: y})])
			sb.WriteByte(' ')
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
