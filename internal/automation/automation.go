// Package automation runs batches of simulations described in YAML
// scenario files or generated by a parameter sweep.
package automation

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/mhdsim/internal/config"
	"github.com/san-kum/mhdsim/internal/sim"
)

// Scenario is a named batch of independent runs.
type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Parallel    int           `yaml:"parallel"`
	Runs        []ScenarioRun `yaml:"runs"`
}

// ScenarioRun starts from the defaults, or from a preset of Problem, and
// overlays Config on top. Keys missing from Config keep their base value.
type ScenarioRun struct {
	Name    string    `yaml:"name"`
	Problem string    `yaml:"problem"`
	Preset  string    `yaml:"preset"`
	Config  yaml.Node `yaml:"config"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Runs) == 0 {
		return nil, fmt.Errorf("scenario %q has no runs", scenario.Name)
	}
	return &scenario, nil
}

// Configs resolves every run into a validated configuration.
func (s *Scenario) Configs() ([]*config.Config, error) {
	cfgs := make([]*config.Config, 0, len(s.Runs))
	for i, run := range s.Runs {
		cfg, err := run.resolve()
		if err != nil {
			return nil, fmt.Errorf("run %d (%s): %w", i+1, run.Name, err)
		}
		cfgs = append(cfgs, cfg)
	}
	return cfgs, nil
}

func (r ScenarioRun) resolve() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if r.Problem != "" {
		cfg.Problem = r.Problem
	}
	if r.Preset != "" {
		p := config.GetPreset(cfg.Problem, r.Preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset %q for %s", r.Preset, cfg.Problem)
		}
		cfg = p
	}
	if !r.Config.IsZero() {
		if err := r.Config.Decode(cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RunScenario runs every configuration of the scenario, Parallel at a time.
func RunScenario(ctx context.Context, scenario *Scenario, log *slog.Logger) ([]*config.Config, []*sim.Result, error) {
	cfgs, err := scenario.Configs()
	if err != nil {
		return nil, nil, err
	}
	log.Info("running scenario", "name", scenario.Name, "runs", len(cfgs), "parallel", scenario.Parallel)
	results, err := sim.Sweep(ctx, cfgs, scenario.Parallel, log)
	return cfgs, results, err
}

// ParameterSweep varies one numeric parameter of Base, e.g. "driver.cfl"
// or "params.amp".
type ParameterSweep struct {
	Base   *config.Config
	Param  string
	Values []float64
}

// Linspace returns n values evenly spaced from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n < 2 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

func (p *ParameterSweep) Configs() ([]*config.Config, error) {
	if len(p.Values) == 0 {
		return nil, fmt.Errorf("sweep of %s has no values", p.Param)
	}
	cfgs := make([]*config.Config, 0, len(p.Values))
	for _, v := range p.Values {
		cfg := p.Base.Clone()
		if err := cfg.Set(p.Param, v); err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("%s=%g: %w", p.Param, v, err)
		}
		cfgs = append(cfgs, cfg)
	}
	return cfgs, nil
}

// Run executes the sweep, at most limit runs at a time.
func (p *ParameterSweep) Run(ctx context.Context, limit int, log *slog.Logger) ([]*config.Config, []*sim.Result, error) {
	cfgs, err := p.Configs()
	if err != nil {
		return nil, nil, err
	}
	results, err := sim.Sweep(ctx, cfgs, limit, log)
	return cfgs, results, err
}
