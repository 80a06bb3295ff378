package mhd

import (
	"math"

	"github.com/san-kum/mhdsim/internal/grid"
	"gonum.org/v1/gonum/floats"
)

// ComputeTimestep applies the CFL condition over the valid region of g:
//
//	dt = cfl * min(min dx/(|u|+cfx), min dy/(|v|+cfy), maxDt)
//
// Pass math.Inf(1) for maxDt when there is no fixed bound.
func ComputeTimestep(g *grid.Grid, u, v, cfx, cfy grid.Plane, cfl, maxDt float64) float64 {
	xt := make([]float64, 0, g.Nx*g.Ny)
	yt := make([]float64, 0, g.Nx*g.Ny)
	for i := g.Ilo; i <= g.Ihi; i++ {
		for j := g.Jlo; j <= g.Jhi; j++ {
			xt = append(xt, g.Dx/(math.Abs(u.At(i, j))+cfx.At(i, j)))
			yt = append(yt, g.Dy/(math.Abs(v.At(i, j))+cfy.At(i, j)))
		}
	}
	return cfl * math.Min(math.Min(floats.Min(xt), floats.Min(yt)), maxDt)
}

// timestepFor computes the admissible dt of the state held in cc.
func timestepFor(cc *grid.CellCenterData, cfl, maxDt float64) (float64, error) {
	vel, err := cc.Derived("velocity")
	if err != nil {
		return 0, err
	}
	cf, err := cc.Derived("magnetosonic")
	if err != nil {
		return 0, err
	}
	return ComputeTimestep(cc.Grid, vel[0], vel[1], cf[0], cf[1], cfl, maxDt), nil
}
