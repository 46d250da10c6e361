package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/robonav/robonav/grid"
	"github.com/robonav/robonav/search"
)

// Server holds shared state for HTTP handlers.
type Server struct {
	runsDB   *RunsDB
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewServer(roots []string, refresh time.Duration, logger *slog.Logger) *Server {
	return &Server{
		runsDB: NewRunsDB(roots, refresh),
		logger: logger,
		// The embedded client and dev frontends run on other ports.
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
	}
}

func (s *Server) Close() { _ = s.runsDB.Close() }

// RegisterRoutes sets up all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/solve", s.handleSolve)
	mux.HandleFunc("/api/runs", s.handleRuns)
	mux.HandleFunc("/ws/solve", s.handleSolveWS)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	// DuckDB rejects negative LIMIT/OFFSET values outright.
	limit := parseIntQuery(r, "limit", 200)
	if limit < 0 {
		limit = 0
	}
	offset := parseIntQuery(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	runs, err := s.runsDB.QueryRuns(r.Context(), limit, offset)
	if err != nil {
		s.logger.Error("runs query failed", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, RunsResponse{Total: len(runs), Runs: runs})
}

// handleSolve runs a whole search server-side and returns every snapshot at
// once; the embedded client animates them locally.
func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	req, err := parseSolveRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := solve(req, nil, nil)
	writeJSON(w, resp)
}

// handleSolveWS streams one snapshot per step over a websocket, pacing them
// with the requested delay, so the client renders the search as it runs.
func (s *Server) handleSolveWS(w http.ResponseWriter, r *http.Request) {
	req, err := parseSolveRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	delay := time.Duration(parseIntQuery(r, "delay_ms", 60)) * time.Millisecond
	if delay > 2*time.Second {
		delay = 2 * time.Second
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	send := func(snap StepSnapshot) bool {
		if err := conn.WriteJSON(map[string]any{"type": "step", "step": snap}); err != nil {
			return false
		}
		if delay > 0 {
			time.Sleep(delay)
		}
		return true
	}
	onLayout := func(resp SolveResponse) bool {
		return conn.WriteJSON(map[string]any{"type": "layout", "layout": resp}) == nil
	}

	resp := solve(req, onLayout, send)
	_ = conn.WriteJSON(map[string]any{"type": "done", "result": resp})
	s.logger.Info("streamed run",
		"algorithm", resp.Algorithm, "outcome", resp.Outcome, "steps", len(resp.Steps))
}

// solve owns the step loop for both transports. onLayout, when non-nil,
// gets the static layout before the first step; onStep gets each snapshot
// as it is produced. Either callback can stop the run by returning false;
// the full response is built either way.
func solve(req SolveRequest, onLayout func(SolveResponse) bool, onStep func(StepSnapshot) bool) SolveResponse {
	g := grid.New(req.Width, req.Height)
	r := rand.New(rand.NewSource(req.Seed))
	grid.GenerateWalls(g, r, 4, req.Width*req.Height/2, req.Density, req.Start, req.Goal)
	g.SetCell(req.Start, grid.Start)
	g.SetCell(req.Goal, grid.Goal)

	resp := SolveResponse{
		Algorithm: req.Algorithm.String(),
		Width:     req.Width,
		Height:    req.Height,
		Seed:      req.Seed,
		Start:     req.Start,
		Goal:      req.Goal,
		Walls:     cellsOfType(g, grid.Obstacle),
	}

	if onLayout != nil && !onLayout(resp) {
		return resp
	}

	st := search.New()
	st.Initialize(req.Algorithm, req.Start, req.Goal)

	limit := req.Width*req.Height + 1
	for i := 0; i < limit; i++ {
		res := st.Step(req.Algorithm, req.Goal, g)
		snap := snapshotOf(st, g, res)
		resp.Steps = append(resp.Steps, snap)
		resp.Outcome = res.Outcome.String()
		if onStep != nil && !onStep(snap) {
			return resp
		}
		if res.Outcome != search.Continue {
			resp.PathLen = len(res.Path)
			break
		}
	}
	return resp
}

func snapshotOf(st *search.State, g *grid.Grid, res search.StepResult) StepSnapshot {
	snap := StepSnapshot{
		Step:     st.StepCount(),
		Info:     st.LastStepInfo(),
		Frontier: cellsOfType(g, grid.Frontier),
		Visited:  cellsOfType(g, grid.Visited),
		Outcome:  res.Outcome.String(),
		Path:     res.Path,
	}
	// A NoPath step popped nothing; CurrentNode still reports the previous
	// pop, which would highlight a stale cell in the final frame.
	if cur, ok := st.CurrentNode(); ok && res.Outcome != search.NoPath {
		snap.Current = &cur
	}
	for _, d := range st.LastNeighbors() {
		snap.Neighbors = append(snap.Neighbors, NeighborView{
			Pos: d.Pos, G: d.G, H: d.H, F: d.F, Decision: d.Decision,
		})
	}
	return snap
}

func cellsOfType(g *grid.Grid, t grid.CellType) []grid.Position {
	var out []grid.Position
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			pos := grid.Position{X: x, Y: y}
			if g.Cell(pos) == t {
				out = append(out, pos)
			}
		}
	}
	return out
}

func parseSolveRequest(r *http.Request) (SolveRequest, error) {
	algoName := r.URL.Query().Get("algo")
	if algoName == "" {
		algoName = "astar"
	}
	algo, err := search.ParseAlgorithm(algoName)
	if err != nil {
		return SolveRequest{}, err
	}

	req := SolveRequest{
		Algorithm: algo,
		Width:     parseIntQuery(r, "w", 20),
		Height:    parseIntQuery(r, "h", 14),
		Seed:      int64(parseIntQuery(r, "seed", int(time.Now().UnixNano()))),
		Density:   parseFloatQuery(r, "density", 0.35),
	}
	if req.Width < 2 || req.Width > 200 || req.Height < 2 || req.Height > 200 {
		return SolveRequest{}, fmt.Errorf("grid size %dx%d out of range (2..200)", req.Width, req.Height)
	}
	if req.Density < 0 || req.Density > 0.9 {
		return SolveRequest{}, fmt.Errorf("density %v out of range (0..0.9)", req.Density)
	}

	req.Start = grid.Position{X: parseIntQuery(r, "sx", 0), Y: parseIntQuery(r, "sy", 0)}
	req.Goal = grid.Position{X: parseIntQuery(r, "gx", req.Width-1), Y: parseIntQuery(r, "gy", req.Height-1)}
	bounds := grid.New(req.Width, req.Height)
	if !bounds.InBounds(req.Start) || !bounds.InBounds(req.Goal) {
		return SolveRequest{}, fmt.Errorf("start %v or goal %v out of bounds", req.Start, req.Goal)
	}
	return req, nil
}

func parseIntQuery(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func parseFloatQuery(r *http.Request, key string, def float64) float64 {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
