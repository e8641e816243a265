// Package storage persists runs on disk. Every run gets its own directory
// under the store's base directory holding:
//
//	metadata.json   run summary: model, solver, reason, stats, metrics
//	config.yaml     the full run configuration
//	totals.csv      per-frame time, field totals and solver counters
//	snapshot.json   the field values after the last frame
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/sirddft/internal/config"
	"github.com/san-kum/sirddft/internal/dynamo"
	"github.com/san-kum/sirddft/internal/sim"
	"github.com/san-kum/sirddft/internal/sir"
)

const (
	metadataFile = "metadata.json"
	configFile   = "config.yaml"
	totalsFile   = "totals.csv"
	snapshotFile = "snapshot.json"
)

// ErrNotFound indicates a run id without a run directory.
var ErrNotFound = errors.New("storage: run not found")

// statColumns trail the field totals in totals.csv.
var statColumns = []string{"steps", "rejected", "evaluations", "last_dt"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// Dir returns the directory of run id.
func (s *Store) Dir(id string) string {
	return filepath.Join(s.baseDir, id)
}

type RunMetadata struct {
	ID            string             `json:"id"`
	Model         string             `json:"model"`
	Solver        string             `json:"solver"`
	Scan          string             `json:"scan,omitempty"`
	Params        map[string]float64 `json:"params,omitempty"`
	Timestamp     time.Time          `json:"timestamp"`
	Frames        int                `json:"frames"`
	FrameDuration float64            `json:"frame_duration"`
	FinalTime     float64            `json:"final_time"`
	Fields        []string           `json:"fields"`
	Reason        sim.Reason         `json:"reason"`
	Error         string             `json:"error,omitempty"`
	Stats         dynamo.Stats       `json:"stats"`
	Metrics       map[string]float64 `json:"metrics"`
}

// Run is everything Save writes. Final and Params may be nil.
type Run struct {
	Config *config.Config
	Result *sim.Result
	Final  sir.Snapshot
	// Scan and Params identify a scan point.
	Scan   string
	Params map[string]float64
	Err    error
}

// Save writes run into a fresh directory and returns its id.
func (s *Store) Save(run Run) (string, error) {
	if run.Config == nil || run.Result == nil {
		return "", errors.New("storage: run needs a config and a result")
	}
	if err := s.Init(); err != nil {
		return "", err
	}
	id, err := s.create(run.Config.Model)
	if err != nil {
		return "", err
	}
	dir := s.Dir(id)

	fields := fieldNames(run.Final, run.Result)
	final := run.Result.Final()
	meta := RunMetadata{
		ID:            id,
		Model:         run.Config.Model,
		Solver:        run.Config.Solver.Name,
		Scan:          run.Scan,
		Params:        run.Params,
		Timestamp:     time.Now(),
		Frames:        len(run.Result.Frames),
		FrameDuration: run.Config.FrameDuration,
		FinalTime:     final.Time,
		Fields:        fields,
		Reason:        run.Result.Reason,
		Stats:         run.Result.Stats,
		Metrics:       run.Result.Metrics,
	}
	if run.Err != nil {
		meta.Error = run.Err.Error()
	}

	if err := writeJSON(filepath.Join(dir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := config.Save(filepath.Join(dir, configFile), run.Config); err != nil {
		return "", err
	}
	if err := writeTotals(filepath.Join(dir, totalsFile), fields, run.Result.Frames); err != nil {
		return "", err
	}
	if run.Final != nil {
		if err := writeJSON(filepath.Join(dir, snapshotFile), NewSnapshot(run.Final)); err != nil {
			return "", err
		}
	}
	return id, nil
}

// create makes a new run directory, adding a suffix if the time based id is
// already taken.
func (s *Store) create(model string) (string, error) {
	base := fmt.Sprintf("%s_%s", model, time.Now().Format("20060102-150405"))
	id := base
	for i := 1; ; i++ {
		err := os.Mkdir(s.Dir(id), 0755)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", err
		}
		id = fmt.Sprintf("%s-%d", base, i)
	}
}

func fieldNames(final sir.Snapshot, result *sim.Result) []string {
	if final != nil {
		fs := final.Fields()
		names := make([]string, len(fs))
		for i, f := range fs {
			names[i] = f.Name
		}
		return names
	}
	if len(result.Frames) == 0 {
		return nil
	}
	names := make([]string, 0, len(result.Frames[0].Totals))
	for name := range result.Frames[0].Totals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return f.Close()
}

func writeTotals(path string, fields []string, frames []sim.Frame) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := WriteFramesCSV(w, fields, frames); err != nil {
		return err
	}
	return f.Close()
}

// WriteFramesCSV writes a header and one row per frame to w and flushes it.
func WriteFramesCSV(w *csv.Writer, fields []string, frames []sim.Frame) error {
	header := append([]string{"time"}, fields...)
	header = append(header, statColumns...)
	if err := w.Write(header); err != nil {
		return err
	}

	for _, fr := range frames {
		row := make([]string, 0, len(header))
		row = append(row, formatFloat(fr.Time))
		for _, name := range fields {
			row = append(row, formatFloat(fr.Totals[name]))
		}
		row = append(row,
			strconv.Itoa(fr.Stats.Steps),
			strconv.Itoa(fr.Stats.Rejected),
			strconv.Itoa(fr.Stats.Evaluations),
			formatFloat(fr.Stats.LastDt),
		)
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List returns the metadata of every run, oldest first. Directories without
// readable metadata are skipped.
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

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(id string) (*RunMetadata, error) {
	data, err := s.read(id, metadataFile)
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: %s: %w", id, err)
	}
	return &meta, nil
}

func (s *Store) LoadConfig(id string) (*config.Config, error) {
	if _, err := s.read(id, configFile); err != nil {
		return nil, err
	}
	return config.Load(filepath.Join(s.Dir(id), configFile))
}

// LoadFrames reads totals.csv back into frames. The returned field names
// follow the column order of the file.
func (s *Store) LoadFrames(id string) ([]string, []sim.Frame, error) {
	f, err := s.open(id, totalsFile)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("storage: %s: %w", id, err)
	}
	if len(records) == 0 {
		return nil, []sim.Frame{}, nil
	}

	header := records[0]
	nFields := len(header) - 1 - len(statColumns)
	if nFields < 0 || header[0] != "time" || !slices.Equal(header[1+nFields:], statColumns) {
		return nil, nil, fmt.Errorf("storage: %s: unexpected header %v", id, header)
	}
	fields := header[1 : 1+nFields]

	frames := make([]sim.Frame, 0, len(records)-1)
	for i, rec := range records[1:] {
		fr, err := parseFrame(rec, fields)
		if err != nil {
			return nil, nil, fmt.Errorf("storage: %s line %d: %w", id, i+2, err)
		}
		fr.Index = i
		frames = append(frames, fr)
	}
	return fields, frames, nil
}

func parseFrame(rec, fields []string) (sim.Frame, error) {
	var fr sim.Frame
	var err error
	if fr.Time, err = strconv.ParseFloat(rec[0], 64); err != nil {
		return fr, err
	}
	fr.Totals = make(map[string]float64, len(fields))
	for j, name := range fields {
		v, err := strconv.ParseFloat(rec[1+j], 64)
		if err != nil {
			return fr, err
		}
		fr.Totals[name] = v
	}
	stats := rec[1+len(fields):]
	if fr.Stats.Steps, err = strconv.Atoi(stats[0]); err != nil {
		return fr, err
	}
	if fr.Stats.Rejected, err = strconv.Atoi(stats[1]); err != nil {
		return fr, err
	}
	if fr.Stats.Evaluations, err = strconv.Atoi(stats[2]); err != nil {
		return fr, err
	}
	if fr.Stats.LastDt, err = strconv.ParseFloat(stats[3], 64); err != nil {
		return fr, err
	}
	fr.Stats.Time = fr.Time
	return fr, nil
}

// LoadSnapshot reads the final field values of run id.
func (s *Store) LoadSnapshot(id string) (*Snapshot, error) {
	data, err := s.read(id, snapshotFile)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("storage: %s: %w", id, err)
	}
	return &snap, nil
}

func (s *Store) open(id, name string) (*os.File, error) {
	f, err := os.Open(filepath.Join(s.Dir(id), name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return f, err
}

func (s *Store) read(id, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(id), name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return data, err
}
