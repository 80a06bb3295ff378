package problems

import (
	"math"

	"github.com/san-kum/mhdsim/internal/config"
	"github.com/san-kum/mhdsim/internal/grid"
)

// Uniform is a constant state. Params: rho, u, v, p, bx, by.
type Uniform struct{}

func (Uniform) Name() string        { return "uniform" }
func (Uniform) ExtraVars() []string { return nil }

func (Uniform) Init(cc *grid.CellCenterData, fx, fy *grid.FaceCenterData, cfg *config.Config) error {
	bx, by := cfg.Param("bx", 0), cfg.Param("by", 0)
	faceField(fx, fy, func(x, y float64) float64 { return bx*y - by*x })

	c := Cell{Rho: cfg.Param("rho", 1), U: cfg.Param("u", 0), V: cfg.Param("v", 0), P: cfg.Param("p", 1)}
	return setState(cc, fx, fy, cfg.EOS.Gamma, func(x, y float64) Cell { return c })
}

// Advect carries a Gaussian density bump and a tracer disc diagonally
// through a periodic box at constant pressure. Params: u, v, amp, width.
type Advect struct{}

func (Advect) Name() string        { return "advect" }
func (Advect) ExtraVars() []string { return []string{"tracer"} }

func (Advect) Init(cc *grid.CellCenterData, fx, fy *grid.FaceCenterData, cfg *config.Config) error {
	g := cc.Grid
	faceField(fx, fy, func(x, y float64) float64 { return 0 })

	u, v := cfg.Param("u", 1), cfg.Param("v", 1)
	amp, w := cfg.Param("amp", 1), cfg.Param("width", 0.1)
	xc, yc := 0.5*(g.Xmin+g.Xmax), 0.5*(g.Ymin+g.Ymax)
	return setState(cc, fx, fy, cfg.EOS.Gamma, func(x, y float64) Cell {
		r2 := (x-xc)*(x-xc) + (y-yc)*(y-yc)
		tracer := 0.0
		if r2 < 4*w*w {
			tracer = 1
		}
		return Cell{Rho: 1 + amp*math.Exp(-r2/(w*w)), U: u, V: v, P: 1, X: []float64{tracer}}
	})
}

// OrszagTang is the Orszag-Tang vortex on the unit box.
type OrszagTang struct{}

func (OrszagTang) Name() string        { return "orszag_tang" }
func (OrszagTang) ExtraVars() []string { return nil }

func (OrszagTang) Init(cc *grid.CellCenterData, fx, fy *grid.FaceCenterData, cfg *config.Config) error {
	b0 := 1 / math.Sqrt(4*math.Pi)
	faceField(fx, fy, func(x, y float64) float64 {
		return b0 * (math.Cos(4*math.Pi*x)/(4*math.Pi) + math.Cos(2*math.Pi*y)/(2*math.Pi))
	})

	rho := 25 / (36 * math.Pi)
	p := 5 / (12 * math.Pi)
	return setState(cc, fx, fy, cfg.EOS.Gamma, func(x, y float64) Cell {
		return Cell{Rho: rho, U: -math.Sin(2 * math.Pi * y), V: math.Sin(2 * math.Pi * x), P: p}
	})
}

// Blast is an over-pressured disc in a uniform oblique field.
// Params: p_in, p_out, r0, b0, angle (degrees from x).
type Blast struct{}

func (Blast) Name() string        { return "blast" }
func (Blast) ExtraVars() []string { return nil }

func (Blast) Init(cc *grid.CellCenterData, fx, fy *grid.FaceCenterData, cfg *config.Config) error {
	g := cc.Grid
	b0 := cfg.Param("b0", 1/math.Sqrt(4*math.Pi))
	angle := cfg.Param("angle", 45) * math.Pi / 180
	bx, by := b0*math.Cos(angle), b0*math.Sin(angle)
	faceField(fx, fy, func(x, y float64) float64 { return bx*y - by*x })

	pin, pout := cfg.Param("p_in", 10), cfg.Param("p_out", 0.1)
	r0 := cfg.Param("r0", 0.1)
	xc, yc := 0.5*(g.Xmin+g.Xmax), 0.5*(g.Ymin+g.Ymax)
	return setState(cc, fx, fy, cfg.EOS.Gamma, func(x, y float64) Cell {
		p := pout
		if math.Hypot(x-xc, y-yc) < r0 {
			p = pin
		}
		return Cell{Rho: 1, P: p}
	})
}
