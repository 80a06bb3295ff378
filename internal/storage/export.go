package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/mhdsim/internal/sim"
)

type ExportData struct {
	Run     RunMetadata      `json:"run"`
	History []sim.StepRecord `json:"history"`
}

// ExportJSON writes the metadata and history of a stored run to w.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	history, err := s.LoadHistory(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Run: *meta, History: history})
}
