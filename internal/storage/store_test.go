package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/mhdsim/internal/config"
	"github.com/san-kum/mhdsim/internal/dynamo"
	"github.com/san-kum/mhdsim/internal/logging"
	"github.com/san-kum/mhdsim/internal/metrics"
	"github.com/san-kum/mhdsim/internal/mhd"
	"github.com/san-kum/mhdsim/internal/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runSmall(t *testing.T) (*config.Config, *sim.Result, *mhd.Simulation) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Problem = "advect"
	cfg.Mesh.Nx, cfg.Mesh.Ny = 12, 10
	cfg.Driver.TMax = 0.02

	s := sim.New(cfg, logging.Discard())
	for _, m := range metrics.Standard() {
		s.AddMetric(m)
	}
	result, err := s.Run(context.Background())
	require.NoError(t, err)
	return cfg, result, s.Simulation()
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())
	cfg, result, state := runSmall(t)

	runID, err := st.Save(cfg, result, state)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(runID, "advect_"))
	assert.Len(t, runID, len("advect_")+8)

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, "advect", meta.Problem)
	assert.Equal(t, result.Steps, meta.Steps)
	assert.Equal(t, cfg.MHD.TemporalMethod, meta.Method)
	assert.InDelta(t, result.Metrics["total_mass"], meta.Metrics["total_mass"], 1e-15)
	require.NotNil(t, meta.Config)
	assert.Equal(t, cfg.Mesh, meta.Config.Mesh)

	history, err := st.LoadHistory(runID)
	require.NoError(t, err)
	require.Len(t, history, len(result.History))
	for i := range history {
		assert.Equal(t, result.History[i].Step, history[i].Step)
		assert.Equal(t, result.History[i].T, history[i].T)
		assert.Equal(t, result.History[i].Dt, history[i].Dt)
		assert.Equal(t, result.History[i].Metrics, history[i].Metrics)
	}

	runs, err := st.List()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].ID)
}

func TestSnapshotRestore(t *testing.T) {
	st := New(t.TempDir())
	cfg, result, state := runSmall(t)
	runID, err := st.Save(cfg, result, state)
	require.NoError(t, err)

	snap, err := st.LoadSnapshot(runID)
	require.NoError(t, err)
	cc, fx, fy, err := snap.Restore()
	require.NoError(t, err)

	assert.Equal(t, state.CC().Names(), cc.Names())
	assert.Equal(t, state.CC().Data().Data, cc.Data().Data)
	assert.Equal(t, state.FaceX().Data().Data, fx.Data().Data)
	assert.Equal(t, state.FaceY().Data().Data, fy.Data().Data)
	assert.Equal(t, state.T(), cc.T)
	assert.Equal(t, cc.BC(0), state.CC().BC(0))
	assert.True(t, cc.GhostsConsistent(0))

	// the variable layout and gamma come back with the container alone
	q, vars, err := mhd.Primitives(cc)
	require.NoError(t, err)
	assert.Equal(t, state.Vars(), vars)
	want, _, err := mhd.Primitives(state.CC())
	require.NoError(t, err)
	assert.Equal(t, want.Data, q.Data)

	vel, err := cc.Derived("velocity")
	require.NoError(t, err)
	assert.Len(t, vel, 2)
}

func TestSnapshotMismatch(t *testing.T) {
	_, _, state := runSmall(t)
	snap := NewSnapshot(state)
	snap.Data = snap.Data[:10]
	_, _, _, err := snap.Restore()
	assert.ErrorIs(t, err, dynamo.ErrDimensionMismatch)
}

func TestListEmpty(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "missing"))
	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestLoadHistoryMalformed(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "bad"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad", historyFile), []byte("step,t,dt\n1,abc,0.1\n"), 0644))

	_, err := st.LoadHistory("bad")
	assert.Error(t, err)
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	cfg, result, _ := runSmall(t)
	runID, err := st.Save(cfg, result, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, st.ExportJSON(&buf, runID))

	var out ExportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, runID, out.Run.ID)
	assert.Len(t, out.History, len(result.History))

	_, err = st.LoadSnapshot(runID)
	assert.Error(t, err, "no snapshot was saved")
}
