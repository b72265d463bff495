package storage

import (
	"testing"

	"github.com/san-kum/mppi/internal/config"
	"github.com/san-kum/mppi/internal/dynamo"
)

func TestSaveAndLoad(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	result := &dynamo.Result{
		States:   []dynamo.State{{1, 2}, {3, 4}},
		Controls: []dynamo.Control{{0.5}},
		Times:    []float64{0, 0.02},
		Metrics:  map[string]float64{"tracking": 1.5},
	}

	runID, err := store.Save(cfg, result)
	if err != nil {
		t.Fatal(err)
	}

	meta, err := store.LoadMetadata(runID)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Model != cfg.Model {
		t.Errorf("expected model %s, got %s", cfg.Model, meta.Model)
	}
	if meta.Planner == nil {
		t.Error("expected planner config in metadata for mppi run")
	}
	if meta.Metrics["tracking"] != 1.5 {
		t.Errorf("expected tracking 1.5, got %f", meta.Metrics["tracking"])
	}

	times, states, controls, err := store.LoadTrajectory(runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(times) != 2 || len(states) != 2 || len(controls) != 1 {
		t.Fatalf("trajectory shape wrong: %d times, %d states, %d controls",
			len(times), len(states), len(controls))
	}
	if states[1][1] != 4 {
		t.Errorf("expected state value 4, got %f", states[1][1])
	}
	if controls[0][0] != 0.5 {
		t.Errorf("expected control 0.5, got %f", controls[0][0])
	}

	runs, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].ID != runID {
		t.Errorf("expected one run %s in listing, got %v", runID, runs)
	}
}
