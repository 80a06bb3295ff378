package mhd

import (
	"fmt"

	"github.com/san-kum/mhdsim/internal/dynamo"
	"github.com/san-kum/mhdsim/internal/eos"
	"github.com/san-kum/mhdsim/internal/grid"
	"gonum.org/v1/gonum/floats"
)

// Floors applied on every conversion.
const (
	SmallDens = 1e-10
	SmallPres = 1e-10
)

// floor returns f when v is at or below f, or NaN.
func floor(v, f float64) float64 {
	if !(v > f) {
		return f
	}
	return v
}

func checkShape(a *grid.Array, v Variables) error {
	if a.NVar != v.NVar {
		return fmt.Errorf("%w: array has %d variables, layout has %d", dynamo.ErrDimensionMismatch, a.NVar, v.NVar)
	}
	return nil
}

// ConsToPrim converts the conserved state U to a new primitive array.
//
// The density in U is floored at SmallDens in place before it is used, so
// U is modified. Use FloorDensity first to keep the caller's array intact.
// Every element is converted, ghost cells included.
func ConsToPrim(U *grid.Array, gamma float64, v Variables) (*grid.Array, error) {
	if err := checkShape(U, v); err != nil {
		return nil, err
	}
	q := grid.NewArray(U.Nx, U.Ny, U.NVar)

	rho := U.Plane(v.URho).Data
	for i := range rho {
		rho[i] = floor(rho[i], SmallDens)
	}

	copy(q.Plane(v.IRho).Data, rho)
	u := q.Plane(v.IU).Data
	vv := q.Plane(v.IV).Data
	floats.DivTo(u, U.Plane(v.UMx).Data, rho)
	floats.DivTo(vv, U.Plane(v.UMy).Data, rho)

	bx := q.Plane(v.IBx).Data
	by := q.Plane(v.IBy).Data
	copy(bx, U.Plane(v.UBx).Data)
	copy(by, U.Plane(v.UBy).Data)

	ener := U.Plane(v.UEner).Data
	p := q.Plane(v.IP).Data
	for i := range p {
		ke := 0.5 * rho[i] * (u[i]*u[i] + vv[i]*vv[i])
		me := 0.5 * (bx[i]*bx[i] + by[i]*by[i])
		e := (ener[i] - ke - me) / rho[i]
		p[i] = floor(eos.Pressure(gamma, rho[i], e), SmallPres)
	}

	for n := 0; n < v.NAux; n++ {
		floats.DivTo(q.Plane(v.IX+n).Data, U.Plane(v.IRhoX+n).Data, rho)
	}
	return q, nil
}

// PrimToCons converts the primitive state q to a new conserved array.
// Density and pressure are floored on the way; q is not modified.
func PrimToCons(q *grid.Array, gamma float64, v Variables) (*grid.Array, error) {
	if err := checkShape(q, v); err != nil {
		return nil, err
	}
	U := grid.NewArray(q.Nx, q.Ny, q.NVar)

	rho := U.Plane(v.URho).Data
	for i, r := range q.Plane(v.IRho).Data {
		rho[i] = floor(r, SmallDens)
	}

	u := q.Plane(v.IU).Data
	vv := q.Plane(v.IV).Data
	floats.MulTo(U.Plane(v.UMx).Data, u, rho)
	floats.MulTo(U.Plane(v.UMy).Data, vv, rho)

	bx := q.Plane(v.IBx).Data
	by := q.Plane(v.IBy).Data
	copy(U.Plane(v.UBx).Data, bx)
	copy(U.Plane(v.UBy).Data, by)

	p := q.Plane(v.IP).Data
	ener := U.Plane(v.UEner).Data
	for i := range ener {
		rhoe := eos.Rhoe(gamma, floor(p[i], SmallPres))
		ener[i] = rhoe + 0.5*rho[i]*(u[i]*u[i]+vv[i]*vv[i]) + 0.5*(bx[i]*bx[i]+by[i]*by[i])
	}

	for n := 0; n < v.NAux; n++ {
		floats.MulTo(U.Plane(v.IRhoX+n).Data, q.Plane(v.IX+n).Data, rho)
	}
	return U, nil
}

// FloorDensity returns a copy of U with the density floored at SmallDens.
func FloorDensity(U *grid.Array, v Variables) (*grid.Array, error) {
	if err := checkShape(U, v); err != nil {
		return nil, err
	}
	c := U.Clone()
	rho := c.Plane(v.URho).Data
	for i := range rho {
		rho[i] = floor(rho[i], SmallDens)
	}
	return c, nil
}
