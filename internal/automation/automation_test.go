package automation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/mhdsim/internal/config"
	"github.com/san-kum/mhdsim/internal/dynamo"
	"github.com/san-kum/mhdsim/internal/logging"
)

const scenarioYAML = `
name: methods
description: compare integrators on a small vortex
parallel: 2
runs:
  - name: euler
    problem: orszag_tang
    config:
      mesh:
        nx: 16
        ny: 16
      driver:
        tmax: 0.01
      mhd:
        temporal_method: EULER
  - name: rk3
    problem: orszag_tang
    preset: small
    config:
      mesh:
        nx: 16
        ny: 16
      driver:
        tmax: 0.01
      mhd:
        temporal_method: RK3
      params:
        amp: 0.5
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	require.NoError(t, err)
	assert.Equal(t, "methods", sc.Name)
	assert.Equal(t, 2, sc.Parallel)

	cfgs, err := sc.Configs()
	require.NoError(t, err)
	require.Len(t, cfgs, 2)

	assert.Equal(t, "EULER", cfgs[0].MHD.TemporalMethod)
	assert.Equal(t, 16, cfgs[0].Mesh.Nx)
	assert.Equal(t, config.DefaultCFL, cfgs[0].Driver.CFL)
	assert.Equal(t, config.DefaultGamma, cfgs[0].EOS.Gamma)

	// preset values survive where the overlay is silent
	assert.InDelta(t, 5.0/3.0, cfgs[1].EOS.Gamma, 1e-15)
	assert.Equal(t, "RK3", cfgs[1].MHD.TemporalMethod)
	assert.Equal(t, 0.5, cfgs[1].Param("amp", 0))
}

func TestLoadScenarioErrors(t *testing.T) {
	_, err := LoadScenario(writeScenario(t, "name: empty\n"))
	assert.Error(t, err)

	sc, err := LoadScenario(writeScenario(t, "runs:\n  - problem: blast\n    preset: nope\n"))
	require.NoError(t, err)
	_, err = sc.Configs()
	assert.Error(t, err)

	sc, err = LoadScenario(writeScenario(t, "runs:\n  - config:\n      driver:\n        cfl: 3\n"))
	require.NoError(t, err)
	_, err = sc.Configs()
	assert.ErrorIs(t, err, dynamo.ErrConfig)
}

func TestRunScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	require.NoError(t, err)

	cfgs, results, err := RunScenario(context.Background(), sc, logging.Discard())
	require.NoError(t, err)
	require.Len(t, results, len(cfgs))
	for _, r := range results {
		assert.InDelta(t, 0.01, r.T, 1e-12)
		assert.Greater(t, r.Steps, 0)
	}
}

func TestLinspace(t *testing.T) {
	assert.Equal(t, []float64{0.2, 0.4, 0.6, 0.8}, roundAll(Linspace(0.2, 0.8, 4)))
	assert.Equal(t, []float64{1}, Linspace(1, 2, 1))
}

func roundAll(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(int(x*1e9+0.5)) / 1e9
	}
	return out
}

func TestParameterSweep(t *testing.T) {
	base := config.DefaultConfig()
	base.Mesh.Nx, base.Mesh.Ny = 16, 16
	base.Driver.TMax = 0.01

	sw := &ParameterSweep{Base: base, Param: "driver.cfl", Values: []float64{0.2, 0.4}}
	cfgs, results, err := sw.Run(context.Background(), 0, logging.Discard())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 0.2, cfgs[0].Driver.CFL)
	assert.Equal(t, 0.4, cfgs[1].Driver.CFL)
	assert.Equal(t, config.DefaultCFL, base.Driver.CFL)
	// a smaller CFL number needs more steps
	assert.GreaterOrEqual(t, results[0].Steps, results[1].Steps)

	bad := &ParameterSweep{Base: base, Param: "driver.cfl", Values: []float64{2}}
	_, err = bad.Configs()
	assert.ErrorIs(t, err, dynamo.ErrConfig)

	_, err = (&ParameterSweep{Base: base, Param: "driver.cfl"}).Configs()
	assert.Error(t, err)
}
