package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/mppinav/internal/mppi"
	"github.com/san-kum/mppinav/internal/sim"
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

type RunMetadata struct {
	ID         string             `json:"id"`
	Model      string             `json:"model"`
	Integrator string             `json:"integrator"`
	Timestamp  time.Time          `json:"timestamp"`
	Start      []float64          `json:"start"`
	Goals      [][]float64        `json:"goals"`
	Ticks      int                `json:"ticks"`
	Done       bool               `json:"done"`
	Controller mppi.Config        `json:"controller"`
	Metrics    map[string]float64 `json:"metrics"`
}

var csvHeader = []string{"time", "x", "y", "theta", "u_left", "u_right"}

// Save writes meta and the recorded trajectory under a fresh run ID and
// returns that ID.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	runID := fmt.Sprintf("%s_%s", meta.Model, uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = time.Now()
	meta.Ticks = result.Ticks
	meta.Done = result.Done
	meta.Metrics = result.Metrics

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writeStates(filepath.Join(runDir, "states.csv"), result); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeStates stores one row per state. The control column holds the
// command applied from that state; the final state has none and gets zeros.
func writeStates(path string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}

	format := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for i, x := range result.States {
		row := []string{format(result.Times[i])}
		for _, val := range x {
			row = append(row, format(val))
		}
		if i < len(result.Controls) {
			for _, val := range result.Controls[i] {
				row = append(row, format(val))
			}
		} else {
			row = append(row, "0", "0")
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Trajectory is a stored run read back from states.csv.
type Trajectory struct {
	Times    []float64   `json:"times"`
	States   [][]float64 `json:"states"`
	Controls [][]float64 `json:"controls"`
}

func (s *Store) LoadStates(runID string) (*Trajectory, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "states.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(csvHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	traj := &Trajectory{}
	if len(records) < 2 {
		return traj, nil
	}

	for line, record := range records[1:] {
		vals := make([]float64, len(record))
		for j, field := range record {
			vals[j], err = strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("states.csv line %d: %w", line+2, err)
			}
		}
		traj.Times = append(traj.Times, vals[0])
		traj.States = append(traj.States, vals[1:4])
		traj.Controls = append(traj.Controls, vals[4:6])
	}
	return traj, nil
}
