package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/mhdsim/internal/config"
	"github.com/san-kum/mhdsim/internal/mhd"
	"github.com/san-kum/mhdsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	historyFile  = "history.csv"
	stateFile    = "state.json"
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
	ID        string             `json:"id"`
	Problem   string             `json:"problem"`
	Timestamp time.Time          `json:"timestamp"`
	Method    string             `json:"temporal_method"`
	CFL       float64            `json:"cfl"`
	Gamma     float64            `json:"gamma"`
	Nx        int                `json:"nx"`
	Ny        int                `json:"ny"`
	Steps     int                `json:"steps"`
	T         float64            `json:"t"`
	Elapsed   float64            `json:"elapsed_seconds"`
	Metrics   map[string]float64 `json:"metrics"`
	Config    *config.Config     `json:"config"`
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

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// Save writes a run directory named <problem>_<id> holding the metadata,
// the step history and, when state is not nil, a full snapshot.
func (s *Store) Save(cfg *config.Config, result *sim.Result, state *mhd.Simulation) (string, error) {
	runID := fmt.Sprintf("%s_%s", cfg.Problem, uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Problem:   cfg.Problem,
		Timestamp: time.Now(),
		Method:    cfg.MHD.TemporalMethod,
		CFL:       cfg.Driver.CFL,
		Gamma:     cfg.EOS.Gamma,
		Nx:        cfg.Mesh.Nx,
		Ny:        cfg.Mesh.Ny,
		Steps:     result.Steps,
		T:         result.T,
		Elapsed:   result.Elapsed.Seconds(),
		Metrics:   result.Metrics,
		Config:    cfg,
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeHistory(filepath.Join(runDir, historyFile), result.History); err != nil {
		return "", err
	}
	if state != nil {
		if err := writeJSON(filepath.Join(runDir, stateFile), NewSnapshot(state)); err != nil {
			return "", err
		}
	}
	return runID, nil
}

func metricNames(history []sim.StepRecord) []string {
	seen := make(map[string]bool)
	for _, rec := range history {
		for k := range rec.Metrics {
			seen[k] = true
		}
	}
	names := make([]string, 0, len(seen))
	for k := range seen {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func writeHistory(path string, history []sim.StepRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	names := metricNames(history)
	if err := w.Write(append([]string{"step", "t", "dt"}, names...)); err != nil {
		return err
	}
	for _, rec := range history {
		row := []string{strconv.Itoa(rec.Step), formatFloat(rec.T), formatFloat(rec.Dt)}
		for _, n := range names {
			row = append(row, formatFloat(rec.Metrics[n]))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		var meta RunMetadata
		if err := readJSON(filepath.Join(s.baseDir, entry.Name(), metadataFile), &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	var meta RunMetadata
	if err := readJSON(filepath.Join(s.baseDir, runID, metadataFile), &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadHistory(runID string) ([]sim.StepRecord, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, historyFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []sim.StepRecord{}, nil
	}

	header := records[0]
	history := make([]sim.StepRecord, 0, len(records)-1)
	for line, record := range records[1:] {
		if len(record) != len(header) || len(record) < 3 {
			return nil, fmt.Errorf("%s line %d: want %d fields, got %d", historyFile, line+2, len(header), len(record))
		}
		step, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", historyFile, line+2, err)
		}
		vals := make([]float64, len(record)-1)
		for k, field := range record[1:] {
			if vals[k], err = strconv.ParseFloat(field, 64); err != nil {
				return nil, fmt.Errorf("%s line %d: %w", historyFile, line+2, err)
			}
		}
		rec := sim.StepRecord{Step: step, T: vals[0], Dt: vals[1], Metrics: make(map[string]float64, len(header)-3)}
		for k, name := range header[3:] {
			rec.Metrics[name] = vals[k+2]
		}
		history = append(history, rec)
	}
	return history, nil
}

// LoadSnapshot reads the final state saved with a run.
func (s *Store) LoadSnapshot(runID string) (*Snapshot, error) {
	var snap Snapshot
	if err := readJSON(filepath.Join(s.baseDir, runID, stateFile), &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
