package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"

	"camtrap/internal/model"
	"camtrap/internal/normalize"
)

// Snapshot is the full contents of one observations file: the header, every
// data row in file order, and the resolved column positions. Rows are kept
// verbatim so the materializer can write them back untouched.
type Snapshot struct {
	Path    string
	Header  []string
	Rows    [][]string
	Columns ColumnIndex
}

// ColumnIndex holds zero-based column positions, -1 when absent.
type ColumnIndex struct {
	ObservationID   int
	DeploymentID    int
	ObservationType int
	ScientificName  int
	EventStart      int
	EventEnd        int
	EventID         int
}

// ReadSnapshot loads the whole file. Ragged rows are tolerated; a missing
// deploymentID, observationType, or eventStart column is a hard error
// because no row could ever be eligible.
func ReadSnapshot(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open observations: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read observations: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("observations file %s has no header", path)
	}

	snap := &Snapshot{
		Path:    path,
		Header:  records[0],
		Rows:    records[1:],
		Columns: resolveColumns(records[0]),
	}
	if err := snap.Columns.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return snap, nil
}

func resolveColumns(header []string) ColumnIndex {
	cols := ColumnIndex{
		ObservationID:   -1,
		DeploymentID:    -1,
		ObservationType: -1,
		ScientificName:  -1,
		EventStart:      -1,
		EventEnd:        -1,
		EventID:         -1,
	}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "observationid", "observation_id":
			cols.ObservationID = i
		case "deploymentid", "deployment_id":
			cols.DeploymentID = i
		case "observationtype", "observation_type":
			cols.ObservationType = i
		case "scientificname", "scientific_name":
			cols.ScientificName = i
		case "eventstart", "event_start":
			cols.EventStart = i
		case "eventend", "event_end":
			cols.EventEnd = i
		case "eventid", "event_id":
			cols.EventID = i
		}
	}
	return cols
}

func (c ColumnIndex) validate() error {
	var missing []string
	if c.DeploymentID < 0 {
		missing = append(missing, "deploymentID")
	}
	if c.ObservationType < 0 {
		missing = append(missing, "observationType")
	}
	if c.EventStart < 0 {
		missing = append(missing, "eventStart")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Field returns the cell at col for the given row, or "" when the column is
// absent or the row is short.
func (s *Snapshot) Field(row, col int) string {
	if col < 0 || row < 0 || row >= len(s.Rows) {
		return ""
	}
	cells := s.Rows[row]
	if col >= len(cells) {
		return ""
	}
	return cells[col]
}

// SetField writes the cell at col for the given row, padding short rows so
// the position exists.
func (s *Snapshot) SetField(row, col int, value string) {
	if col < 0 || row < 0 || row >= len(s.Rows) {
		return
	}
	cells := s.Rows[row]
	for len(cells) <= col {
		cells = append(cells, "")
	}
	cells[col] = value
	s.Rows[row] = cells
}

// EnsureEventIDColumn appends an eventID column to the header when the
// source file did not already carry one, returning its position.
func (s *Snapshot) EnsureEventIDColumn() int {
	if s.Columns.EventID >= 0 {
		return s.Columns.EventID
	}
	s.Header = append(s.Header, "eventID")
	s.Columns.EventID = len(s.Header) - 1
	return s.Columns.EventID
}

// Observations normalizes every row in file order.
func (s *Snapshot) Observations(loc *time.Location) []model.Observation {
	out := make([]model.Observation, 0, len(s.Rows))
	for i := range s.Rows {
		fields := normalize.RecordFields{
			ObservationID:   s.Field(i, s.Columns.ObservationID),
			DeploymentID:    s.Field(i, s.Columns.DeploymentID),
			ObservationType: s.Field(i, s.Columns.ObservationType),
			ScientificName:  s.Field(i, s.Columns.ScientificName),
			EventStart:      s.Field(i, s.Columns.EventStart),
			EventEnd:        s.Field(i, s.Columns.EventEnd),
		}
		out = append(out, normalize.Normalize(fields, i, loc))
	}
	return out
}
