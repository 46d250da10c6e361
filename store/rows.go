// Package store persists completed search runs as parquet files so run
// history can be queried later (the viewer reads these with SQL).
package store

// RunRow is one completed search run.
//
// Outcome is "path_found" or "no_path". PathLen is the number of positions
// in the reconstructed path, zero when no path was found.
type RunRow struct {
	RunID     string `parquet:"run_id,dict"`
	MapName   string `parquet:"map_name,dict"`
	Algorithm string `parquet:"algorithm,dict"`
	Width     int32  `parquet:"width"`
	Height    int32  `parquet:"height"`
	StartX    int32  `parquet:"start_x"`
	StartY    int32  `parquet:"start_y"`
	GoalX     int32  `parquet:"goal_x"`
	GoalY     int32  `parquet:"goal_y"`
	Outcome   string `parquet:"outcome,dict"`
	PathLen   int32  `parquet:"path_len"`
	// Steps is the number of completed pops; Expanded the closed-set size
	// at termination; Discovered how many positions ever got a g cost.
	Steps      int32 `parquet:"steps"`
	Expanded   int32 `parquet:"expanded"`
	Discovered int32 `parquet:"discovered"`
	DurationNs int64 `parquet:"duration_ns"`
	StartedNs  int64 `parquet:"started_ns"`
}

// StepRow is one expansion within a run: the popped position, its costs
// (h/f meaningful for A* only), frontier/closed sizes after the pop, and
// how the neighbors were decided.
type StepRow struct {
	RunID       string `parquet:"run_id,dict"`
	Step        int32  `parquet:"step"`
	X           int32  `parquet:"x"`
	Y           int32  `parquet:"y"`
	G           int32  `parquet:"g"`
	H           int32  `parquet:"h"`
	F           int32  `parquet:"f"`
	FrontierLen int32  `parquet:"frontier_len"`
	ClosedLen   int32  `parquet:"closed_len"`
	Admitted    int32  `parquet:"admitted"`
	Skipped     int32  `parquet:"skipped"`
}
