package materialize

import (
	"encoding/csv"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"camtrap/internal/ingest"
	"camtrap/internal/model"
)

// Apply stamps the eventID column onto every row of the snapshot: assigned
// rows get their identifier, everything else an empty value. Rows, columns,
// and order are otherwise untouched.
func Apply(snap *ingest.Snapshot, assignments map[int]string) {
	col := snap.EnsureEventIDColumn()
	for i := range snap.Rows {
		snap.SetField(i, col, assignments[i])
	}
}

// Write replaces the snapshot's source file. The new contents go to a
// temporary file in the same directory first and are renamed over the
// original, so a failure mid-write leaves the source intact.
func Write(snap *ingest.Snapshot) error {
	rows := make([][]string, 0, len(snap.Rows)+1)
	rows = append(rows, snap.Header)
	rows = append(rows, snap.Rows...)
	return writeCSV(snap.Path, rows)
}

// WriteSummaries exports one row per event alongside the detailed output.
func WriteSummaries(path string, summaries []model.EventSummary) error {
	rows := make([][]string, 0, len(summaries)+1)
	rows = append(rows, []string{"eventID", "deploymentID", "groupingKey", "eventStart", "eventEnd", "observationCount"})
	for _, s := range summaries {
		end := ""
		if !s.End.IsZero() {
			end = s.End.UTC().Format(time.RFC3339)
		}
		rows = append(rows, []string{
			s.EventID,
			s.DeploymentID,
			s.GroupingKey,
			s.Start.UTC().Format(time.RFC3339),
			end,
			fmt.Sprintf("%d", s.Observations),
		})
	}
	return writeCSV(path, rows)
}

func writeCSV(path string, rows [][]string) error {
	dir := filepath.Dir(path)
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	w := csv.NewWriter(tmp)
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			cleanup()
			return fmt.Errorf("write output row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		cleanup()
		return fmt.Errorf("flush output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp output: %w", err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace output: %w", err)
	}
	return nil
}
