package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")

	cfg := DefaultConfig()
	cfg.Planner.Samples = 42
	cfg.Planner.NoiseSigma = []float64{2.5}
	cfg.Planner.SampleNullAction = true

	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if loaded.Planner.Samples != 42 {
		t.Errorf("expected samples 42, got %d", loaded.Planner.Samples)
	}
	if loaded.Planner.NoiseSigma[0] != 2.5 {
		t.Errorf("expected sigma 2.5, got %f", loaded.Planner.NoiseSigma[0])
	}
	if !loaded.Planner.SampleNullAction {
		t.Error("expected sample_null_action to survive round trip")
	}
}

func TestLoadMergesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "partial.yaml")

	if err := os.WriteFile(path, []byte("model: cartpole\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Model != "cartpole" {
		t.Errorf("expected cartpole, got %s", cfg.Model)
	}
	if cfg.Dt != DefaultDt {
		t.Errorf("expected default dt, got %f", cfg.Dt)
	}
}

func TestValidateRejectsBadPlanner(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Planner.Lambda = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero lambda")
	}

	cfg = DefaultConfig()
	cfg.Planner.NoiseSigma = []float64{-1}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative sigma")
	}
}

func TestPresetsValidate(t *testing.T) {
	for model, presets := range Presets {
		for name, cfg := range presets {
			if err := cfg.Validate(); err != nil {
				t.Errorf("preset %s/%s invalid: %v", model, name, err)
			}
		}
	}
}
