package main

import (
	"github.com/robonav/robonav/grid"
	"github.com/robonav/robonav/search"
)

// SolveRequest describes one on-demand search. Maps are generated from the
// seed so the client can rerun the same layout with every algorithm.
type SolveRequest struct {
	Algorithm search.Algorithm
	Width     int
	Height    int
	Seed      int64
	Density   float64
	Start     grid.Position
	Goal      grid.Position
}

// NeighborView is one inspector line in a snapshot.
type NeighborView struct {
	Pos      grid.Position `json:"pos"`
	G        *int          `json:"g,omitempty"`
	H        *int          `json:"h,omitempty"`
	F        *int          `json:"f,omitempty"`
	Decision string        `json:"decision"`
}

// StepSnapshot is the engine state after one step, shaped for the client:
// overlay cell lists instead of internal structures.
type StepSnapshot struct {
	Step      int             `json:"step"`
	Info      string          `json:"info"`
	Current   *grid.Position  `json:"current,omitempty"`
	Frontier  []grid.Position `json:"frontier"`
	Visited   []grid.Position `json:"visited"`
	Neighbors []NeighborView  `json:"neighbors,omitempty"`
	Outcome   string          `json:"outcome"`
	Path      []grid.Position `json:"path,omitempty"`
}

// SolveResponse is the batch solve payload: the static layout plus every
// step snapshot in order.
type SolveResponse struct {
	Algorithm string          `json:"algorithm"`
	Width     int             `json:"width"`
	Height    int             `json:"height"`
	Seed      int64           `json:"seed"`
	Start     grid.Position   `json:"start"`
	Goal      grid.Position   `json:"goal"`
	Walls     []grid.Position `json:"walls"`
	Steps     []StepSnapshot  `json:"steps"`
	Outcome   string          `json:"outcome"`
	PathLen   int             `json:"path_len"`
}

// RunSummary is one row of recorded run history.
type RunSummary struct {
	RunID      string `json:"run_id"`
	MapName    string `json:"map_name"`
	Algorithm  string `json:"algorithm"`
	Width      int32  `json:"width"`
	Height     int32  `json:"height"`
	Outcome    string `json:"outcome"`
	PathLen    int32  `json:"path_len"`
	Steps      int32  `json:"steps"`
	Expanded   int32  `json:"expanded"`
	DurationNs int64  `json:"duration_ns"`
	StartedNs  int64  `json:"started_ns"`
}

// RunsResponse is the run-history payload.
type RunsResponse struct {
	Total int          `json:"total"`
	Runs  []RunSummary `json:"runs"`
}
