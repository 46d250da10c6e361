package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
)

// RunsDB maintains a cached DuckDB connection with a `runs` view over the
// recorded parquet files. The view is rebuilt periodically so freshly
// finalized files show up without a restart.
type RunsDB struct {
	roots       []string
	refreshRate time.Duration

	mu          sync.RWMutex
	db          *sql.DB
	lastRefresh time.Time
}

func NewRunsDB(roots []string, refreshRate time.Duration) *RunsDB {
	return &RunsDB{roots: roots, refreshRate: refreshRate}
}

// Get returns the cached connection, re-globbing when stale.
func (c *RunsDB) Get() (*sql.DB, error) {
	c.mu.RLock()
	if c.db != nil && time.Since(c.lastRefresh) < c.refreshRate {
		db := c.db
		c.mu.RUnlock()
		return db, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db != nil && time.Since(c.lastRefresh) < c.refreshRate {
		return c.db, nil
	}
	return c.refreshLocked()
}

func (c *RunsDB) refreshLocked() (*sql.DB, error) {
	start := time.Now()
	db, err := openRunsView(c.roots)
	if err != nil {
		return nil, err
	}
	if c.db != nil {
		_ = c.db.Close()
	}
	c.db = db
	c.lastRefresh = time.Now()
	log.Printf("runs view refreshed in %v", time.Since(start))
	return c.db, nil
}

func (c *RunsDB) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db != nil {
		err := c.db.Close()
		c.db = nil
		return err
	}
	return nil
}

// openRunsView opens an in-memory DuckDB and builds the runs view with glob
// patterns, which is far cheaper than enumerating files ourselves.
func openRunsView(roots []string) (*sql.DB, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, err
	}
	_, _ = db.Exec("PRAGMA threads=4")

	globs := make([]string, 0, len(roots))
	for _, root := range roots {
		if root = strings.TrimSpace(root); root == "" {
			continue
		}
		glob := filepath.Join(root, "runs_*.parquet")
		globs = append(globs, "'"+strings.ReplaceAll(glob, "'", "''")+"'")
	}

	// DuckDB errors on globs matching nothing, so fall back to a typed
	// empty view when there is nothing to read yet.
	if len(globs) > 0 {
		stmt := fmt.Sprintf(
			`CREATE OR REPLACE VIEW runs AS SELECT * FROM read_parquet([%s], union_by_name=true)`,
			strings.Join(globs, ", "))
		if _, err := db.Exec(stmt); err == nil {
			return db, nil
		}
	}
	if _, err := db.Exec(emptyRunsView); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create empty runs view: %w", err)
	}
	return db, nil
}

const emptyRunsView = `CREATE OR REPLACE VIEW runs AS SELECT
	NULL::VARCHAR AS run_id,
	NULL::VARCHAR AS map_name,
	NULL::VARCHAR AS algorithm,
	NULL::INTEGER AS width,
	NULL::INTEGER AS height,
	NULL::INTEGER AS start_x,
	NULL::INTEGER AS start_y,
	NULL::INTEGER AS goal_x,
	NULL::INTEGER AS goal_y,
	NULL::VARCHAR AS outcome,
	NULL::INTEGER AS path_len,
	NULL::INTEGER AS steps,
	NULL::INTEGER AS expanded,
	NULL::INTEGER AS discovered,
	NULL::BIGINT AS duration_ns,
	NULL::BIGINT AS started_ns
WHERE false`

// QueryRuns returns recorded run summaries, newest first.
func (c *RunsDB) QueryRuns(ctx context.Context, limit, offset int) ([]RunSummary, error) {
	db, err := c.Get()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `
		SELECT run_id, map_name, algorithm, width, height, outcome,
		       path_len, steps, expanded, duration_ns, started_ns
		FROM runs
		ORDER BY started_ns DESC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.RunID, &r.MapName, &r.Algorithm, &r.Width, &r.Height,
			&r.Outcome, &r.PathLen, &r.Steps, &r.Expanded, &r.DurationNs, &r.StartedNs); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
