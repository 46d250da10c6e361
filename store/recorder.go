package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
)

// Recorder buffers run and step rows into parquet files under a tmp/
// directory and atomically renames them into outDir on Finalize. Files that
// end up empty are removed instead of published.
type Recorder struct {
	outDir string
	tmpDir string

	runs  *rowFile[RunRow]
	steps *rowFile[StepRow]
}

type rowFile[T any] struct {
	tmpPath string
	outPath string
	file    *os.File
	writer  *parquet.GenericWriter[T]
	rows    int
}

// NewRecorder opens a recorder writing runs_<ns>.parquet and
// steps_<ns>.parquet under outDir.
func NewRecorder(outDir string) (*Recorder, error) {
	if outDir == "" {
		return nil, fmt.Errorf("outDir is required")
	}
	absOut, err := filepath.Abs(outDir)
	if err != nil {
		absOut = outDir
	}
	tmpDir := filepath.Join(absOut, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return nil, fmt.Errorf("create tmp dir: %w", err)
	}

	ns := time.Now().UnixNano()
	runs, err := openRowFile[RunRow](absOut, tmpDir, fmt.Sprintf("runs_%d.parquet", ns), "run_row_v1")
	if err != nil {
		return nil, err
	}
	steps, err := openRowFile[StepRow](absOut, tmpDir, fmt.Sprintf("steps_%d.parquet", ns), "step_row_v1")
	if err != nil {
		runs.discard()
		return nil, err
	}
	return &Recorder{outDir: absOut, tmpDir: tmpDir, runs: runs, steps: steps}, nil
}

func openRowFile[T any](outDir, tmpDir, name, schema string) (*rowFile[T], error) {
	tmpPath := filepath.Join(tmpDir, name)
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open tmp parquet: %w", err)
	}
	w := parquet.NewGenericWriter[T](f,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}))
	w.SetKeyValueMetadata("schema", schema)
	return &rowFile[T]{
		tmpPath: tmpPath,
		outPath: filepath.Join(outDir, name),
		file:    f,
		writer:  w,
	}, nil
}

func (rf *rowFile[T]) write(rows []T) error {
	if rf.writer == nil {
		return fmt.Errorf("recorder is closed")
	}
	if len(rows) == 0 {
		return nil
	}
	if _, err := rf.writer.Write(rows); err != nil {
		return err
	}
	rf.rows += len(rows)
	return nil
}

// finalize closes the writer and publishes the file, or removes it when it
// holds no rows. Returns the published path ("" when removed).
func (rf *rowFile[T]) finalize() (string, int, error) {
	if rf.writer == nil && rf.file == nil {
		return "", 0, nil
	}
	var closeErr, fileErr error
	if rf.writer != nil {
		closeErr = rf.writer.Close()
		rf.writer = nil
	}
	if rf.file != nil {
		_ = rf.file.Sync()
		fileErr = rf.file.Close()
		rf.file = nil
	}
	if closeErr != nil {
		return "", 0, fmt.Errorf("close parquet writer: %w", closeErr)
	}
	if fileErr != nil {
		return "", 0, fmt.Errorf("close parquet file: %w", fileErr)
	}
	if rf.rows == 0 {
		_ = os.Remove(rf.tmpPath)
		return "", 0, nil
	}
	if err := os.Rename(rf.tmpPath, rf.outPath); err != nil {
		return "", 0, fmt.Errorf("rename parquet: %w", err)
	}
	return rf.outPath, rf.rows, nil
}

func (rf *rowFile[T]) discard() {
	if rf.writer != nil {
		_ = rf.writer.Close()
		rf.writer = nil
	}
	if rf.file != nil {
		_ = rf.file.Close()
		rf.file = nil
	}
	_ = os.Remove(rf.tmpPath)
}

// WriteRun appends one run summary.
func (r *Recorder) WriteRun(row RunRow) error { return r.runs.write([]RunRow{row}) }

// WriteSteps appends the per-step trace of a run.
func (r *Recorder) WriteSteps(rows []StepRow) error { return r.steps.write(rows) }

// BufferedRuns reports how many run rows have been written so far.
func (r *Recorder) BufferedRuns() int { return r.runs.rows }

// Finalize publishes both files. Paths are empty for files with no rows.
// On error the returned paths still name whatever was published before the
// failure, so callers never lose track of a renamed file.
func (r *Recorder) Finalize() (runsPath, stepsPath string, err error) {
	runsPath, _, err = r.runs.finalize()
	if err != nil {
		r.steps.discard()
		return "", "", err
	}
	stepsPath, _, err = r.steps.finalize()
	if err != nil {
		return runsPath, "", err
	}
	return runsPath, stepsPath, nil
}
