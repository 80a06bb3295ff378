package config

import "sort"

func preset(problem string, nx int, tmax float64, edit func(*Config)) *Config {
	c := DefaultConfig()
	c.Problem = problem
	c.Mesh.Nx, c.Mesh.Ny = nx, nx
	c.Driver.TMax = tmax
	if edit != nil {
		edit(c)
	}
	return c
}

var Presets = map[string]map[string]*Config{
	"orszag_tang": {
		"small": preset("orszag_tang", 32, 0.1, func(c *Config) { c.EOS.Gamma = 5.0 / 3.0 }),
		"standard": preset("orszag_tang", 128, 0.5, func(c *Config) {
			c.EOS.Gamma = 5.0 / 3.0
			c.MHD.TemporalMethod = "RK3"
		}),
	},
	"advect": {
		"tracer": preset("advect", 64, 1.0, func(c *Config) {
			c.Particles.DoParticles = true
			c.Particles.NParticles = 64
		}),
		"fast": preset("advect", 32, 0.25, func(c *Config) { c.Params["u"] = 4.0; c.Params["v"] = 4.0 }),
	},
	"blast": {
		"weak-field": preset("blast", 64, 0.05, func(c *Config) {
			c.Mesh.Xmin, c.Mesh.Xmax, c.Mesh.Ymin, c.Mesh.Ymax = -0.5, 0.5, -0.5, 0.5
			c.Mesh.XLBoundary, c.Mesh.XRBoundary = "outflow", "outflow"
			c.Mesh.YLBoundary, c.Mesh.YRBoundary = "outflow", "outflow"
			c.Params["b0"] = 0.1
		}),
		"walled": preset("blast", 64, 0.05, func(c *Config) {
			c.Mesh.Xmin, c.Mesh.Xmax, c.Mesh.Ymin, c.Mesh.Ymax = -0.5, 0.5, -0.5, 0.5
			c.Mesh.XLBoundary, c.Mesh.XRBoundary = "reflect", "reflect"
			c.Mesh.YLBoundary, c.Mesh.YRBoundary = "reflect", "reflect"
		}),
	},
	"uniform": {
		"quiet": preset("uniform", 16, 0.1, nil),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(problem, name string) *Config {
	problemPresets, ok := Presets[problem]
	if !ok {
		return nil
	}
	cfg, ok := problemPresets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(problem string) []string {
	problemPresets, ok := Presets[problem]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(problemPresets))
	for name := range problemPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
