package problems

import (
	"github.com/san-kum/mhdsim/internal/grid"
	"github.com/san-kum/mhdsim/internal/mhd"
)

// Potential is the z component of a vector potential.
type Potential func(x, y float64) float64

// faceField sets the face fields to the discrete curl of az, which keeps
// the face divergence zero to round-off.
func faceField(fx, fy *grid.FaceCenterData, az Potential) {
	g := fx.Grid
	bx := fx.Plane()
	for i := 0; i < bx.Nx; i++ {
		x := g.Xmin + float64(i-g.Ng)*g.Dx
		for j := 0; j < bx.Ny; j++ {
			y := g.Yl(j)
			bx.Set(i, j, (az(x, y+g.Dy)-az(x, y))/g.Dy)
		}
	}
	by := fy.Plane()
	for i := 0; i < by.Nx; i++ {
		x := g.Xl(i)
		for j := 0; j < by.Ny; j++ {
			y := g.Ymin + float64(j-g.Ng)*g.Dy
			by.Set(i, j, -(az(x+g.Dx, y)-az(x, y))/g.Dx)
		}
	}
}

// Cell is the primitive hydrodynamic state of one cell. X holds the mass
// fractions of the passive scalars.
type Cell struct {
	Rho, U, V, P float64
	X            []float64
}

// setState fills every cell of cc from prim, taking the magnetic field
// from the face averages so the total energy matches what the run sees.
func setState(cc *grid.CellCenterData, fx, fy *grid.FaceCenterData, gamma float64, prim func(x, y float64) Cell) error {
	vars, err := mhd.NewVariables(cc)
	if err != nil {
		return err
	}
	g := cc.Grid
	q := g.ScratchArray(vars.NVar)
	grid.CenterFromFaces(q.Plane(vars.IBx), fx)
	grid.CenterFromFaces(q.Plane(vars.IBy), fy)

	for i := 0; i < g.Qx; i++ {
		for j := 0; j < g.Qy; j++ {
			c := prim(g.X[i], g.Y[j])
			q.Set(i, j, vars.IRho, c.Rho)
			q.Set(i, j, vars.IU, c.U)
			q.Set(i, j, vars.IV, c.V)
			q.Set(i, j, vars.IP, c.P)
			for n := 0; n < vars.NAux && n < len(c.X); n++ {
				q.Set(i, j, vars.IX+n, c.X[n])
			}
		}
	}

	U, err := mhd.PrimToCons(q, gamma, vars)
	if err != nil {
		return err
	}
	return cc.Data().CopyFrom(U)
}
