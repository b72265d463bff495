// Package storage persists simulation runs: metadata as JSON, trajectories
// as CSV, one directory per run.
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

	"github.com/san-kum/mppi/internal/config"
	"github.com/san-kum/mppi/internal/dynamo"
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
	ID         string                `json:"id"`
	Model      string                `json:"model"`
	Timestamp  time.Time             `json:"timestamp"`
	Seed       int64                 `json:"seed"`
	Dt         float64               `json:"dt"`
	Duration   float64               `json:"duration"`
	Integrator string                `json:"integrator"`
	Controller string                `json:"controller"`
	Planner    *config.PlannerConfig `json:"planner,omitempty"`
	Metrics    map[string]float64    `json:"metrics"`
}

func (s *Store) Save(cfg *config.Config, result *dynamo.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", cfg.Model, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Model:      cfg.Model,
		Timestamp:  time.Now(),
		Seed:       cfg.Seed,
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		Integrator: cfg.Integrator,
		Controller: cfg.Controller,
		Metrics:    result.Metrics,
	}
	if cfg.Controller == "mppi" {
		p := cfg.Planner
		meta.Planner = &p
	}

	metaData, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(runDir, "metadata.json"), metaData, 0644); err != nil {
		return "", err
	}

	if err := s.writeTrajectory(filepath.Join(runDir, "trajectory.csv"), result); err != nil {
		return "", err
	}

	return runID, nil
}

func (s *Store) writeTrajectory(path string, result *dynamo.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if len(result.States) == 0 {
		return nil
	}

	header := []string{"t"}
	for i := range result.States[0] {
		header = append(header, fmt.Sprintf("x%d", i))
	}
	if len(result.Controls) > 0 {
		for i := range result.Controls[0] {
			header = append(header, fmt.Sprintf("u%d", i))
		}
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, x := range result.States {
		row := []string{strconv.FormatFloat(result.Times[i], 'g', -1, 64)}
		for _, v := range x {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if i < len(result.Controls) {
			for _, v := range result.Controls[i] {
				row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var runs []RunMetadata
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		meta, err := s.LoadMetadata(e.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})

	return runs, nil
}

func (s *Store) LoadMetadata(runID string) (*RunMetadata, error) {
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

// LoadTrajectory reads a saved run back as times, states and controls.
func (s *Store) LoadTrajectory(runID string) ([]float64, []dynamo.State, []dynamo.Control, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "trajectory.csv"))
	if err != nil {
		return nil, nil, nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, nil, err
	}
	if len(rows) < 2 {
		return nil, nil, nil, nil
	}

	nx, nu := 0, 0
	for _, col := range rows[0][1:] {
		if col[0] == 'x' {
			nx++
		} else if col[0] == 'u' {
			nu++
		}
	}

	var times []float64
	var states []dynamo.State
	var controls []dynamo.Control
	for _, row := range rows[1:] {
		t, err := strconv.ParseFloat(row[0], 64)
		if err != nil {
			return nil, nil, nil, err
		}
		times = append(times, t)

		x := make(dynamo.State, nx)
		for i := 0; i < nx; i++ {
			if x[i], err = strconv.ParseFloat(row[1+i], 64); err != nil {
				return nil, nil, nil, err
			}
		}
		states = append(states, x)

		if len(row) > 1+nx {
			u := make(dynamo.Control, nu)
			for i := 0; i < nu; i++ {
				if u[i], err = strconv.ParseFloat(row[1+nx+i], 64); err != nil {
					return nil, nil, nil, err
				}
			}
			controls = append(controls, u)
		}
	}

	return times, states, controls, nil
}
