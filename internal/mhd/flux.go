package mhd

import (
	"fmt"
	"math"

	"github.com/san-kum/mhdsim/internal/config"
	"github.com/san-kum/mhdsim/internal/dynamo"
	"github.com/san-kum/mhdsim/internal/grid"
	"github.com/san-kum/mhdsim/internal/timing"
)

// Substepper turns a stage state into its time derivative. The ghost cells
// of st are filled on entry; st may be modified.
type Substepper interface {
	Substep(st StageState, cfg *config.Config, vars Variables, solid grid.Solid, tc *timing.Collection, dt float64) (Increment, error)
}

// SubstepFunc adapts a function to Substepper.
type SubstepFunc func(st StageState, cfg *config.Config, vars Variables, solid grid.Solid, tc *timing.Collection, dt float64) (Increment, error)

func (f SubstepFunc) Substep(st StageState, cfg *config.Config, vars Variables, solid grid.Solid, tc *timing.Collection, dt float64) (Increment, error) {
	return f(st, cfg, vars, solid, tc, dt)
}

// Rusanov is a first-order finite-volume update with local Lax-Friedrichs
// fluxes for the cell-centered variables and constrained transport for
// the face-centered field, which keeps the face divergence of B fixed.
type Rusanov struct{}

func begin(tc *timing.Collection, name string) *timing.Timer {
	if tc == nil {
		return nil
	}
	t := tc.Timer(name)
	t.Begin()
	return t
}

func end(t *timing.Timer) {
	if t != nil {
		t.End()
	}
}

// checkFinite reports the first valid cell holding a non-finite conserved
// value.
func checkFinite(g *grid.Grid, U *grid.Array) error {
	for n := 0; n < U.NVar; n++ {
		p := U.Plane(n)
		for i := g.Ilo; i <= g.Ihi; i++ {
			for j := g.Jlo; j <= g.Jhi; j++ {
				if v := p.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
					return fmt.Errorf("%w: variable %d is %g at cell (%d,%d)", dynamo.ErrUnstable, n, v, i, j)
				}
			}
		}
	}
	return nil
}

// cellState is the primitive state of one cell plus its conserved values.
type cellState struct {
	rho, u, v, p, bx, by float64
	ener                 float64
	cf                   [2]float64
}

func (Rusanov) Substep(st StageState, cfg *config.Config, vars Variables, solid grid.Solid, tc *timing.Collection, dt float64) (Increment, error) {
	g := st.CC.Grid
	U := st.CC.Data()
	if err := checkFinite(g, U); err != nil {
		return Increment{}, err
	}
	gamma, err := Gamma(st.CC)
	if err != nil {
		return Increment{}, err
	}

	tPrim := begin(tc, "cons_to_prim")
	q, err := ConsToPrim(U, gamma, vars)
	end(tPrim)
	if err != nil {
		return Increment{}, err
	}

	cell := func(i, j int) cellState {
		c := cellState{
			rho: q.At(i, j, vars.IRho), u: q.At(i, j, vars.IU), v: q.At(i, j, vars.IV),
			p: q.At(i, j, vars.IP), bx: q.At(i, j, vars.IBx), by: q.At(i, j, vars.IBy),
			ener: U.At(i, j, vars.UEner),
		}
		cs := math.Sqrt(gamma * c.p / c.rho)
		b2 := c.bx*c.bx + c.by*c.by
		c.cf[0] = FastSpeed(c.rho, cs, c.bx, b2)
		c.cf[1] = FastSpeed(c.rho, cs, c.by, b2)
		return c
	}

	inc := NewIncrement(st)
	nflux := 4 + vars.NAux
	fl := make([]float64, nflux)
	fr := make([]float64, nflux)
	ul := make([]float64, nflux)
	ur := make([]float64, nflux)
	f := make([]float64, nflux)

	// physical flux of the non-field conserved variables along dir
	physFlux := func(out, cons []float64, c cellState, i, j int, dir grid.Direction) {
		un, bn, bt, ut := c.u, c.bx, c.by, c.v
		if dir == grid.YDir {
			un, bn, bt, ut = c.v, c.by, c.bx, c.u
		}
		ptot := c.p + 0.5*(c.bx*c.bx+c.by*c.by)
		mn, mt := 1, 2
		if dir == grid.YDir {
			mn, mt = 2, 1
		}
		cons[0] = c.rho
		cons[1] = c.rho * c.u
		cons[2] = c.rho * c.v
		cons[3] = c.ener
		out[0] = c.rho * un
		out[mn] = c.rho*un*un + ptot - bn*bn
		out[mt] = c.rho*un*ut - bn*bt
		out[3] = (c.ener+ptot)*un - bn*(c.u*c.bx+c.v*c.by)
		for n := 0; n < vars.NAux; n++ {
			cons[4+n] = U.At(i, j, vars.IRhoX+n)
			out[4+n] = cons[4+n] * un
		}
	}

	slot := func(k int) int {
		switch k {
		case 0:
			return vars.URho
		case 1:
			return vars.UMx
		case 2:
			return vars.UMy
		case 3:
			return vars.UEner
		}
		return vars.IRhoX + k - 4
	}

	// wall zeroes every flux but the normal momentum one
	rusanov := func(l, r cellState, il, jl, ir, jr int, dir grid.Direction, wall bool) {
		physFlux(fl, ul, l, il, jl, dir)
		physFlux(fr, ur, r, ir, jr, dir)
		d := 0
		un := func(c cellState) float64 { return c.u }
		if dir == grid.YDir {
			d = 1
			un = func(c cellState) float64 { return c.v }
		}
		smax := math.Max(math.Abs(un(l))+l.cf[d], math.Abs(un(r))+r.cf[d])
		for k := range f {
			f[k] = 0.5*(fl[k]+fr[k]) - 0.5*smax*(ur[k]-ul[k])
		}
		if wall {
			mn := 1 + d
			for k := range f {
				if k != mn {
					f[k] = 0
				}
			}
		}
	}

	tFlux := begin(tc, "fluxes")
	dU := inc.DU
	// x faces: face i sits between cells i-1 and i
	for i := g.Ilo; i <= g.Ihi+1; i++ {
		wall := (i == g.Ilo && solid.XL) || (i == g.Ihi+1 && solid.XR)
		for j := g.Jlo; j <= g.Jhi; j++ {
			rusanov(cell(i-1, j), cell(i, j), i-1, j, i, j, grid.XDir, wall)
			for k, fk := range f {
				n := slot(k)
				if i <= g.Ihi {
					dU.Set(i, j, n, dU.At(i, j, n)+fk/g.Dx)
				}
				if i > g.Ilo {
					dU.Set(i-1, j, n, dU.At(i-1, j, n)-fk/g.Dx)
				}
			}
		}
	}
	for i := g.Ilo; i <= g.Ihi; i++ {
		for j := g.Jlo; j <= g.Jhi+1; j++ {
			wall := (j == g.Jlo && solid.YL) || (j == g.Jhi+1 && solid.YR)
			rusanov(cell(i, j-1), cell(i, j), i, j-1, i, j, grid.YDir, wall)
			for k, fk := range f {
				n := slot(k)
				if j <= g.Jhi {
					dU.Set(i, j, n, dU.At(i, j, n)+fk/g.Dy)
				}
				if j > g.Jlo {
					dU.Set(i, j-1, n, dU.At(i, j-1, n)-fk/g.Dy)
				}
			}
		}
	}
	end(tFlux)

	tCT := begin(tc, "ct")
	constrainedTransport(g, q, vars, inc)
	end(tCT)
	return inc, nil
}

// constrainedTransport updates the face fields from the corner
// electric field, Ez = v Bx - u By averaged over the four cells sharing
// each corner. Corner (i,j) is the lower-left corner of cell (i,j).
func constrainedTransport(g *grid.Grid, q *grid.Array, vars Variables, inc Increment) {
	ez := grid.NewPlane(g.Qx, g.Qy)
	for i := g.Ilo - 1; i <= g.Ihi+1; i++ {
		for j := g.Jlo - 1; j <= g.Jhi+1; j++ {
			ez.Set(i, j, q.At(i, j, vars.IV)*q.At(i, j, vars.IBx)-q.At(i, j, vars.IU)*q.At(i, j, vars.IBy))
		}
	}
	corner := func(i, j int) float64 {
		return 0.25 * (ez.At(i-1, j-1) + ez.At(i, j-1) + ez.At(i-1, j) + ez.At(i, j))
	}

	dbx := inc.DBx.Plane(0)
	for i := g.Ilo; i <= g.Ihi+1; i++ {
		for j := g.Jlo; j <= g.Jhi; j++ {
			dbx.Set(i, j, -(corner(i, j+1)-corner(i, j))/g.Dy)
		}
	}
	dby := inc.DBy.Plane(0)
	for i := g.Ilo; i <= g.Ihi; i++ {
		for j := g.Jlo; j <= g.Jhi+1; j++ {
			dby.Set(i, j, (corner(i+1, j)-corner(i, j))/g.Dx)
		}
	}
}
