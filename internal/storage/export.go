package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"

	"github.com/san-kum/sirddft/internal/config"
	"github.com/san-kum/sirddft/internal/sim"
)

type ExportData struct {
	Run    RunMetadata    `json:"run"`
	Config *config.Config `json:"config"`
	Fields []string       `json:"fields"`
	Frames []sim.Frame    `json:"frames"`
}

// Export reads every part of run id except the snapshot.
func (s *Store) Export(id string) (*ExportData, error) {
	meta, err := s.Load(id)
	if err != nil {
		return nil, err
	}
	cfg, err := s.LoadConfig(id)
	if err != nil {
		return nil, err
	}
	fields, frames, err := s.LoadFrames(id)
	if err != nil {
		return nil, err
	}
	return &ExportData{Run: *meta, Config: cfg, Fields: fields, Frames: frames}, nil
}

func ExportJSON(w io.Writer, data *ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportCSV(w io.Writer, data *ExportData) error {
	return WriteFramesCSV(csv.NewWriter(w), data.Fields, data.Frames)
}
