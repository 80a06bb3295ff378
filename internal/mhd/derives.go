package mhd

import (
	"fmt"
	"math"

	"github.com/san-kum/mhdsim/internal/dynamo"
	"github.com/san-kum/mhdsim/internal/grid"
)

// Gamma reads the adiabatic index stored on the container.
func Gamma(cc *grid.CellCenterData) (float64, error) {
	gamma, ok := cc.Aux("gamma")
	if !ok {
		return 0, fmt.Errorf("%w: aux gamma", dynamo.ErrMissingField)
	}
	return gamma, nil
}

// FastSpeed returns the fast magnetosonic speed along a direction whose
// normal field component is bn, given sound speed cs and total field
// magnitude squared b2.
func FastSpeed(rho, cs, bn, b2 float64) float64 {
	a2 := cs * cs
	B2 := b2 / rho
	bn2 := bn * bn / rho
	s := a2 + B2
	return math.Sqrt(0.5 * (s + math.Sqrt(math.Max(s*s-4*a2*bn2, 0))))
}

// Derives resolves the derived quantities of an MHD container:
//
//	velocity      u, v
//	primitive     every primitive plane, in Variables order
//	pressure      p
//	soundspeed    cs
//	magnetosonic  fast speed along x, fast speed along y
//
// Like ConsToPrim it floors the container's density in place.
func Derives(cc *grid.CellCenterData, name string) ([]grid.Plane, bool, error) {
	switch name {
	case "velocity", "primitive", "pressure", "soundspeed", "magnetosonic":
	default:
		return nil, false, nil
	}

	v, err := NewVariables(cc)
	if err != nil {
		return nil, true, err
	}
	gamma, err := Gamma(cc)
	if err != nil {
		return nil, true, err
	}
	q, err := ConsToPrim(cc.Data(), gamma, v)
	if err != nil {
		return nil, true, err
	}

	switch name {
	case "velocity":
		return []grid.Plane{q.Plane(v.IU), q.Plane(v.IV)}, true, nil
	case "primitive":
		planes := make([]grid.Plane, q.NVar)
		for n := range planes {
			planes[n] = q.Plane(n)
		}
		return planes, true, nil
	case "pressure":
		return []grid.Plane{q.Plane(v.IP)}, true, nil
	}

	rho := q.Plane(v.IRho).Data
	p := q.Plane(v.IP).Data
	cs := grid.NewPlane(q.Nx, q.Ny)
	for i := range cs.Data {
		cs.Data[i] = math.Sqrt(gamma * p[i] / rho[i])
	}
	if name == "soundspeed" {
		return []grid.Plane{cs}, true, nil
	}

	bx := q.Plane(v.IBx).Data
	by := q.Plane(v.IBy).Data
	cfx := grid.NewPlane(q.Nx, q.Ny)
	cfy := grid.NewPlane(q.Nx, q.Ny)
	for i := range cfx.Data {
		b2 := bx[i]*bx[i] + by[i]*by[i]
		cfx.Data[i] = FastSpeed(rho[i], cs.Data[i], bx[i], b2)
		cfy.Data[i] = FastSpeed(rho[i], cs.Data[i], by[i], b2)
	}
	return []grid.Plane{cfx, cfy}, true, nil
}
