package config

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/san-kum/mhdsim/internal/dynamo"
	"gopkg.in/yaml.v3"
)

const (
	DefaultCFL            = 0.4
	DefaultTMax           = 1.0
	DefaultMaxSteps       = 10000
	DefaultInitTstep      = 0.1
	DefaultMaxDtChange    = 2.0
	DefaultGamma          = 1.4
	DefaultTemporalMethod = "RK2"
	DefaultN              = 64
	DefaultGhost          = 4
)

type Config struct {
	Problem   string             `yaml:"problem"`
	Driver    DriverConfig       `yaml:"driver"`
	Mesh      MeshConfig         `yaml:"mesh"`
	MHD       MHDConfig          `yaml:"mhd"`
	EOS       EOSConfig          `yaml:"eos"`
	Particles ParticlesConfig    `yaml:"particles"`
	Params    map[string]float64 `yaml:"params"`
}

type DriverConfig struct {
	CFL             float64 `yaml:"cfl"`
	FixDt           float64 `yaml:"fix_dt"`
	TMax            float64 `yaml:"tmax"`
	MaxSteps        int     `yaml:"max_steps"`
	InitTstepFactor float64 `yaml:"init_tstep_factor"`
	MaxDtChange     float64 `yaml:"max_dt_change"`
}

type MeshConfig struct {
	Nx         int     `yaml:"nx"`
	Ny         int     `yaml:"ny"`
	Ng         int     `yaml:"ng"`
	Xmin       float64 `yaml:"xmin"`
	Xmax       float64 `yaml:"xmax"`
	Ymin       float64 `yaml:"ymin"`
	Ymax       float64 `yaml:"ymax"`
	XLBoundary string  `yaml:"xlboundary"`
	XRBoundary string  `yaml:"xrboundary"`
	YLBoundary string  `yaml:"ylboundary"`
	YRBoundary string  `yaml:"yrboundary"`
}

type MHDConfig struct {
	TemporalMethod string `yaml:"temporal_method"`
}

type EOSConfig struct {
	Gamma float64 `yaml:"gamma"`
}

type ParticlesConfig struct {
	DoParticles bool   `yaml:"do_particles"`
	NParticles  int    `yaml:"n_particles"`
	Generator   string `yaml:"particle_generator"`
	Seed        int64  `yaml:"seed"`
}

func DefaultConfig() *Config {
	return &Config{
		Problem: "orszag_tang",
		Driver: DriverConfig{
			CFL:             DefaultCFL,
			FixDt:           -1,
			TMax:            DefaultTMax,
			MaxSteps:        DefaultMaxSteps,
			InitTstepFactor: DefaultInitTstep,
			MaxDtChange:     DefaultMaxDtChange,
		},
		Mesh: MeshConfig{
			Nx: DefaultN, Ny: DefaultN, Ng: DefaultGhost,
			Xmin: 0, Xmax: 1, Ymin: 0, Ymax: 1,
			XLBoundary: "periodic", XRBoundary: "periodic",
			YLBoundary: "periodic", YRBoundary: "periodic",
		},
		MHD:       MHDConfig{TemporalMethod: DefaultTemporalMethod},
		EOS:       EOSConfig{Gamma: DefaultGamma},
		Particles: ParticlesConfig{NParticles: 100, Generator: "grid", Seed: 1},
		Params:    map[string]float64{},
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
	if cfg.Params == nil {
		cfg.Params = map[string]float64{}
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

// Clone returns a deep copy, so sweeps can vary one copy per run.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Params = make(map[string]float64, len(c.Params))
	for k, v := range c.Params {
		cp.Params[k] = v
	}
	return &cp
}

// MaxDt is the fixed upper bound on dt; +Inf when fix_dt is not positive.
func (c *Config) MaxDt() float64 {
	if c.Driver.FixDt > 0 {
		return c.Driver.FixDt
	}
	return math.Inf(1)
}

// Param returns a problem parameter, or def when it is not set.
func (c *Config) Param(name string, def float64) float64 {
	if v, ok := c.Params[name]; ok {
		return v
	}
	return def
}

// Get looks a runtime parameter up by its dotted name, e.g. "driver.cfl".
func (c *Config) Get(key string) (any, error) {
	switch key {
	case "problem":
		return c.Problem, nil
	case "driver.cfl":
		return c.Driver.CFL, nil
	case "driver.fix_dt":
		return c.Driver.FixDt, nil
	case "driver.tmax":
		return c.Driver.TMax, nil
	case "driver.max_steps":
		return c.Driver.MaxSteps, nil
	case "driver.init_tstep_factor":
		return c.Driver.InitTstepFactor, nil
	case "driver.max_dt_change":
		return c.Driver.MaxDtChange, nil
	case "mesh.nx":
		return c.Mesh.Nx, nil
	case "mesh.ny":
		return c.Mesh.Ny, nil
	case "mesh.ng":
		return c.Mesh.Ng, nil
	case "mhd.temporal_method":
		return c.MHD.TemporalMethod, nil
	case "eos.gamma":
		return c.EOS.Gamma, nil
	case "particles.do_particles":
		return c.Particles.DoParticles, nil
	case "particles.n_particles":
		return c.Particles.NParticles, nil
	case "particles.particle_generator":
		return c.Particles.Generator, nil
	}
	if name, ok := strings.CutPrefix(key, "params."); ok {
		if v, ok := c.Params[name]; ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: unknown parameter %q", dynamo.ErrConfig, key)
}

// Set assigns a numeric runtime parameter by its dotted name. Integer
// options are truncated.
func (c *Config) Set(key string, v float64) error {
	switch key {
	case "driver.cfl":
		c.Driver.CFL = v
	case "driver.fix_dt":
		c.Driver.FixDt = v
	case "driver.tmax":
		c.Driver.TMax = v
	case "driver.max_steps":
		c.Driver.MaxSteps = int(v)
	case "driver.init_tstep_factor":
		c.Driver.InitTstepFactor = v
	case "driver.max_dt_change":
		c.Driver.MaxDtChange = v
	case "mesh.nx":
		c.Mesh.Nx = int(v)
	case "mesh.ny":
		c.Mesh.Ny = int(v)
	case "eos.gamma":
		c.EOS.Gamma = v
	case "particles.n_particles":
		c.Particles.NParticles = int(v)
	default:
		name, ok := strings.CutPrefix(key, "params.")
		if !ok || name == "" {
			return fmt.Errorf("%w: cannot set %q", dynamo.ErrConfig, key)
		}
		if c.Params == nil {
			c.Params = make(map[string]float64)
		}
		c.Params[name] = v
	}
	return nil
}

// Validate checks the options every run needs. The temporal method is
// resolved by the integrator when a step starts.
func (c *Config) Validate() error {
	if !(c.Driver.CFL > 0 && c.Driver.CFL <= 1) {
		return fmt.Errorf("%w: driver.cfl must be in (0,1], got %g", dynamo.ErrConfig, c.Driver.CFL)
	}
	if !(c.EOS.Gamma > 1) {
		return fmt.Errorf("%w: eos.gamma must be > 1, got %g", dynamo.ErrConfig, c.EOS.Gamma)
	}
	if c.Mesh.Nx < 1 || c.Mesh.Ny < 1 {
		return fmt.Errorf("%w: mesh size must be positive, got %dx%d", dynamo.ErrConfig, c.Mesh.Nx, c.Mesh.Ny)
	}
	if c.Mesh.Ng < 1 {
		return fmt.Errorf("%w: mesh.ng must be at least 1, got %d", dynamo.ErrConfig, c.Mesh.Ng)
	}
	if c.Mesh.Ng > c.Mesh.Nx || c.Mesh.Ng > c.Mesh.Ny {
		return fmt.Errorf("%w: mesh.ng=%d exceeds the %dx%d mesh", dynamo.ErrConfig, c.Mesh.Ng, c.Mesh.Nx, c.Mesh.Ny)
	}
	if c.Mesh.Xmax <= c.Mesh.Xmin || c.Mesh.Ymax <= c.Mesh.Ymin {
		return fmt.Errorf("%w: empty mesh domain", dynamo.ErrConfig)
	}
	if c.Driver.MaxSteps < 0 {
		return fmt.Errorf("%w: driver.max_steps must not be negative", dynamo.ErrConfig)
	}
	if strings.TrimSpace(c.MHD.TemporalMethod) == "" {
		return fmt.Errorf("%w: mhd.temporal_method is not set", dynamo.ErrConfig)
	}
	if c.Particles.DoParticles && c.Particles.NParticles < 1 {
		return fmt.Errorf("%w: particles.n_particles must be positive", dynamo.ErrConfig)
	}
	return nil
}
