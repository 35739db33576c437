package storage

import (
	"compress/gzip"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/etmsim/internal/lattice"
	"github.com/san-kum/etmsim/internal/trial"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type TrialMetadata struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Timestamp time.Time          `json:"timestamp"`
	Ticks     int                `json:"ticks"`
	Dims      [3]int             `json:"dims"`
	Patterns  int                `json:"patterns"`
	Events    int                `json:"events"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes one trial under a fresh run directory and returns the run
// id: metadata.json, anchors.csv with the per-tick pattern states,
// events.csv, and the gzipped final echo field.
func (s *Store) Save(result *trial.Result) (string, error) {
	runID := fmt.Sprintf("%s_%s", result.Name, result.ID)
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	patterns := 0
	if final := result.FinalSample(); final != nil {
		patterns = len(final.Patterns)
	}
	meta := TrialMetadata{
		ID:        runID,
		Name:      result.Name,
		Timestamp: time.Now(),
		Ticks:     result.Ticks,
		Dims:      result.Dims,
		Patterns:  patterns,
		Events:    len(result.Events),
		Metrics:   result.Metrics,
	}
	if err := s.writeMetadata(runDir, meta); err != nil {
		return "", err
	}
	if err := s.writeAnchors(runDir, result); err != nil {
		return "", err
	}
	if err := s.writeEvents(runDir, result); err != nil {
		return "", err
	}
	if err := s.writeEcho(runDir, result); err != nil {
		return "", err
	}
	return runID, nil
}

func (s *Store) writeMetadata(runDir string, meta TrialMetadata) error {
	file, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func (s *Store) writeAnchors(runDir string, result *trial.Result) error {
	file, err := os.Create(filepath.Join(runDir, "anchors.csv"))
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	header := []string{"tick", "id", "species", "scale", "x", "y", "z", "phase", "energy", "flavor"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, sample := range result.Samples {
		for _, p := range sample.Patterns {
			row := []string{
				strconv.Itoa(sample.Tick),
				p.ID,
				p.Species,
				strconv.Itoa(p.Scale),
				strconv.Itoa(p.Anchor[0]),
				strconv.Itoa(p.Anchor[1]),
				strconv.Itoa(p.Anchor[2]),
				strconv.Itoa(p.Phase),
				strconv.FormatFloat(p.Energy, 'f', 6, 64),
				p.Flavor,
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Store) writeEvents(runDir string, result *trial.Result) error {
	file, err := os.Create(filepath.Join(runDir, "events.csv"))
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	header := []string{"tick", "type", "x", "y", "z", "patterns", "energy"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, e := range result.Events {
		ids := ""
		for i, id := range e.Patterns {
			if i > 0 {
				ids += " "
			}
			ids += id
		}
		row := []string{
			strconv.Itoa(e.Tick),
			e.Type.String(),
			strconv.Itoa(e.At.X),
			strconv.Itoa(e.At.Y),
			strconv.Itoa(e.At.Z),
			ids,
			strconv.FormatFloat(e.Energy, 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

type echoDump struct {
	Dims   [3]int    `json:"dims"`
	Values []float64 `json:"values"`
}

func (s *Store) writeEcho(runDir string, result *trial.Result) error {
	if len(result.FinalEcho) == 0 {
		return nil
	}
	file, err := os.Create(filepath.Join(runDir, "echo.json.gz"))
	if err != nil {
		return err
	}
	defer file.Close()

	zw := gzip.NewWriter(file)
	if err := json.NewEncoder(zw).Encode(echoDump{Dims: result.Dims, Values: result.FinalEcho}); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

func (s *Store) List() ([]TrialMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []TrialMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]TrialMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		metaPath := filepath.Join(s.baseDir, entry.Name(), "metadata.json")
		data, err := os.ReadFile(metaPath)
		if err != nil {
			continue
		}

		var meta TrialMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*TrialMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta TrialMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadAnchors rebuilds each pattern's anchor path in tick order from the
// saved CSV.
func (s *Store) LoadAnchors(runID string) (map[string][]lattice.Coord, error) {
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

	paths := make(map[string][]lattice.Coord)
	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) < 7 {
			continue
		}
		x, errX := strconv.Atoi(record[4])
		y, errY := strconv.Atoi(record[5])
		z, errZ := strconv.Atoi(record[6])
		if errX != nil || errY != nil || errZ != nil {
			continue
		}
		id := record[1]
		paths[id] = append(paths[id], lattice.Coord{X: x, Y: y, Z: z})
	}
	return paths, nil
}

// LoadEcho reads back the gzipped final field snapshot.
func (s *Store) LoadEcho(runID string) ([3]int, []float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "echo.json.gz"))
	if err != nil {
		return [3]int{}, nil, err
	}
	defer file.Close()

	zr, err := gzip.NewReader(file)
	if err != nil {
		return [3]int{}, nil, err
	}
	defer zr.Close()

	var dump echoDump
	if err := json.NewDecoder(zr).Decode(&dump); err != nil {
		return [3]int{}, nil, err
	}
	return dump.Dims, dump.Values, nil
}
