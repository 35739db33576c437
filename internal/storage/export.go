package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// AnchorRow is one anchors.csv record.
type AnchorRow struct {
	Tick    int     `json:"tick"`
	ID      string  `json:"id"`
	Species string  `json:"species"`
	Scale   int     `json:"scale"`
	Anchor  [3]int  `json:"anchor"`
	Phase   int     `json:"phase"`
	Energy  float64 `json:"energy"`
	Flavor  string  `json:"flavor,omitempty"`
}

// LoadRows reads the full anchors table of a saved run.
func (s *Store) LoadRows(runID string) ([]AnchorRow, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "anchors.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	rows := make([]AnchorRow, 0, len(records))
	for i := 1; i < len(records); i++ {
		rec := records[i]
		if len(rec) < 9 {
			continue
		}
		tick, _ := strconv.Atoi(rec[0])
		scale, _ := strconv.Atoi(rec[3])
		x, _ := strconv.Atoi(rec[4])
		y, _ := strconv.Atoi(rec[5])
		z, _ := strconv.Atoi(rec[6])
		phase, _ := strconv.Atoi(rec[7])
		energy, _ := strconv.ParseFloat(rec[8], 64)
		flavor := ""
		if len(rec) > 9 {
			flavor = rec[9]
		}
		rows = append(rows, AnchorRow{
			Tick:    tick,
			ID:      rec[1],
			Species: rec[2],
			Scale:   scale,
			Anchor:  [3]int{x, y, z},
			Phase:   phase,
			Energy:  energy,
			Flavor:  flavor,
		})
	}
	return rows, nil
}

// EventRow is one events.csv record.
type EventRow struct {
	Tick     int      `json:"tick"`
	Type     string   `json:"type"`
	At       [3]int   `json:"at"`
	Patterns []string `json:"patterns"`
	Energy   float64  `json:"energy"`
}

// LoadEvents reads the event log of a saved run.
func (s *Store) LoadEvents(runID string) ([]EventRow, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "events.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	events := make([]EventRow, 0, len(records))
	for i := 1; i < len(records); i++ {
		rec := records[i]
		if len(rec) < 7 {
			continue
		}
		tick, _ := strconv.Atoi(rec[0])
		x, _ := strconv.Atoi(rec[2])
		y, _ := strconv.Atoi(rec[3])
		z, _ := strconv.Atoi(rec[4])
		energy, _ := strconv.ParseFloat(rec[6], 64)
		var ids []string
		if rec[5] != "" {
			ids = strings.Split(rec[5], " ")
		}
		events = append(events, EventRow{
			Tick:     tick,
			Type:     rec[1],
			At:       [3]int{x, y, z},
			Patterns: ids,
			Energy:   energy,
		})
	}
	return events, nil
}

// ExportCSV rewrites the anchors table of a saved run to w.
func (s *Store) ExportCSV(runID string, out io.Writer) error {
	rows, err := s.LoadRows(runID)
	if err != nil {
		return err
	}

	w := csv.NewWriter(out)
	defer w.Flush()

	header := []string{"tick", "id", "species", "scale", "x", "y", "z", "phase", "energy", "flavor"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			strconv.Itoa(r.Tick),
			r.ID,
			r.Species,
			strconv.Itoa(r.Scale),
			strconv.Itoa(r.Anchor[0]),
			strconv.Itoa(r.Anchor[1]),
			strconv.Itoa(r.Anchor[2]),
			strconv.Itoa(r.Phase),
			strconv.FormatFloat(r.Energy, 'f', 6, 64),
			r.Flavor,
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// ExportData is the full JSON form of a saved run.
type ExportData struct {
	Meta    TrialMetadata `json:"meta"`
	Anchors []AnchorRow   `json:"anchors"`
	Events  []EventRow    `json:"events"`
}

// ExportJSON writes the saved run as one indented JSON document.
func (s *Store) ExportJSON(runID string, out io.Writer) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	rows, err := s.LoadRows(runID)
	if err != nil {
		return err
	}
	events, err := s.LoadEvents(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Meta: *meta, Anchors: rows, Events: events})
}
