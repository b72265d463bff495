package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt       = 0.02
	DefaultDuration = 10.0
	DefaultSamples  = 200
	DefaultHorizon  = 20
	DefaultLambda   = 1.0
	DefaultSigma    = 1.0
	DefaultKp       = 10.0
	DefaultKi       = 0.1
	DefaultKd       = 5.0
)

type Config struct {
	Model      string    `yaml:"model"`
	Integrator string    `yaml:"integrator"`
	Controller string    `yaml:"controller"`
	Dt         float64   `yaml:"dt"`
	Duration   float64   `yaml:"duration"`
	Seed       int64     `yaml:"seed"`
	InitState  []float64 `yaml:"init_state"`

	Planner PlannerConfig `yaml:"planner"`
	PID     PIDConfig     `yaml:"pid"`
}

// PlannerConfig is the YAML surface of the sampling planner. NoiseSigma is
// the diagonal of the perturbation covariance, one entry per control
// dimension.
type PlannerConfig struct {
	Samples          int       `yaml:"samples"`
	Horizon          int       `yaml:"horizon"`
	Lambda           float64   `yaml:"lambda"`
	NoiseSigma       []float64 `yaml:"noise_sigma"`
	NoiseMu          []float64 `yaml:"noise_mu"`
	UMin             []float64 `yaml:"u_min"`
	UMax             []float64 `yaml:"u_max"`
	UScale           float64   `yaml:"u_scale"`
	UPerCommand      int       `yaml:"u_per_command"`
	UInit            []float64 `yaml:"u_init"`
	SampleNullAction bool      `yaml:"sample_null_action"`
	NoiseAbsCost     bool      `yaml:"noise_abs_cost"`
}

type PIDConfig struct {
	Kp     float64 `yaml:"kp"`
	Ki     float64 `yaml:"ki"`
	Kd     float64 `yaml:"kd"`
	Target float64 `yaml:"target"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:      "pendulum",
		Integrator: "rk4",
		Controller: "mppi",
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		InitState:  []float64{3.14, 0},
		Planner: PlannerConfig{
			Samples:    DefaultSamples,
			Horizon:    DefaultHorizon,
			Lambda:     DefaultLambda,
			NoiseSigma: []float64{DefaultSigma},
			UMax:       []float64{8.0},
		},
		PID: PIDConfig{
			Kp: DefaultKp,
			Ki: DefaultKi,
			Kd: DefaultKd,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("config: dt must be positive, got %f", c.Dt)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("config: duration must be positive, got %f", c.Duration)
	}
	if c.Controller == "mppi" {
		p := c.Planner
		if p.Samples < 1 {
			return fmt.Errorf("config: planner samples must be >= 1, got %d", p.Samples)
		}
		if p.Horizon < 1 {
			return fmt.Errorf("config: planner horizon must be >= 1, got %d", p.Horizon)
		}
		if p.Lambda <= 0 {
			return fmt.Errorf("config: planner lambda must be positive, got %f", p.Lambda)
		}
		for i, v := range p.NoiseSigma {
			if v <= 0 {
				return fmt.Errorf("config: noise_sigma[%d] must be positive, got %f", i, v)
			}
		}
	}
	return nil
}
