package grid

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCellCenterData_Registration(t *testing.T) {
	g, err := New(4, 4, 1, 0, 1, 0, 1)
	require.NoError(t, err)
	bc, _ := NewBC("outflow", "outflow", "outflow", "outflow")

	cc := NewCellCenterData(g)
	require.NoError(t, cc.RegisterVar("density", bc))
	require.NoError(t, cc.RegisterVar("energy", bc))
	assert.Error(t, cc.RegisterVar("density", bc))

	_, err = cc.Var("density")
	assert.ErrorIs(t, err, ErrNotCreated)

	require.NoError(t, cc.Create())
	assert.Error(t, cc.RegisterVar("late", bc))
	assert.Equal(t, []string{"density", "energy"}, cc.Names())

	idx, err := cc.Index("energy")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	_, err = cc.Var("pressure")
	assert.True(t, errors.Is(err, ErrUnknownVar))
}

func TestCellCenterData_CloneAndAux(t *testing.T) {
	g, _ := New(2, 2, 1, 0, 1, 0, 1)
	bc, _ := NewBC("outflow", "outflow", "outflow", "outflow")
	cc := NewCellCenterData(g)
	require.NoError(t, cc.RegisterVar("density", bc))
	require.NoError(t, cc.Create())
	cc.SetAux("gamma", 1.4)
	cc.T = 0.5

	c := cc.Clone()
	rho, _ := c.Var("density")
	rho.Set(1, 1, 3)
	c.SetAux("gamma", 2)

	orig, _ := cc.Var("density")
	assert.Equal(t, 0.0, orig.At(1, 1))
	gamma, ok := cc.Aux("gamma")
	assert.True(t, ok)
	assert.Equal(t, 1.4, gamma)
	assert.Equal(t, 0.5, c.T)
	assert.Equal(t, []string{"gamma"}, cc.AuxNames())
}

func TestCellCenterData_Derived(t *testing.T) {
	g, _ := New(2, 2, 1, 0, 1, 0, 1)
	bc, _ := NewBC("outflow", "outflow", "outflow", "outflow")
	cc := NewCellCenterData(g)
	require.NoError(t, cc.RegisterVar("density", bc))
	require.NoError(t, cc.Create())

	cc.AddDerived(func(d *CellCenterData, name string) ([]Plane, bool, error) {
		if name != "twice" {
			return nil, false, nil
		}
		rho, err := d.Var("density")
		if err != nil {
			return nil, true, err
		}
		out := NewPlane(rho.Nx, rho.Ny)
		for k, v := range rho.Data {
			out.Data[k] = 2 * v
		}
		return []Plane{out}, true, nil
	})

	rho, _ := cc.Var("density")
	rho.Set(1, 1, 4)

	planes, err := cc.Derived("twice")
	require.NoError(t, err)
	require.Len(t, planes, 1)
	assert.Equal(t, 8.0, planes[0].At(1, 1))

	planes, err = cc.Derived("density")
	require.NoError(t, err)
	assert.Equal(t, 4.0, planes[0].At(1, 1))

	_, err = cc.Derived("vorticity")
	assert.ErrorIs(t, err, ErrUnknownVar)
}
