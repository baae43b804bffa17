package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	Run      RunMetadata `json:"run"`
	Steps    int         `json:"steps"`
	Times    []float64   `json:"times"`
	States   [][]float64 `json:"states"`
	Controls [][]float64 `json:"controls"`
}

// ExportJSON writes a stored run, metadata and trajectory together, to w.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	traj, err := s.LoadStates(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		Run:      *meta,
		Steps:    len(traj.Times),
		Times:    traj.Times,
		States:   traj.States,
		Controls: traj.Controls,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
