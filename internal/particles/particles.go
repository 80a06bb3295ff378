// Package particles advects passive tracer particles with the
// cell-centered velocity of a grid container.
package particles

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/san-kum/mhdsim/internal/dynamo"
	"github.com/san-kum/mhdsim/internal/grid"
	"github.com/san-kum/mhdsim/internal/integrators"
)

type Particle struct {
	ID   int
	X, Y float64
}

// Set is a collection of tracers tied to one container. The container must
// resolve the derived quantity "velocity".
type Set struct {
	cc      *grid.CellCenterData
	bc      grid.BC
	stepper dynamo.Integrator

	particles []Particle
	initial   map[int][2]float64
}

// New seeds n particles with the named generator: "random" draws uniform
// positions from seed, "grid" lays them on a regular lattice.
func New(cc *grid.CellCenterData, bc grid.BC, n int, generator string, seed int64) (*Set, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: need at least one particle", dynamo.ErrConfig)
	}
	stepper, err := integrators.New("RK2")
	if err != nil {
		return nil, err
	}

	g := cc.Grid
	var pos [][2]float64
	switch generator {
	case "random":
		rng := rand.New(rand.NewSource(seed))
		for k := 0; k < n; k++ {
			pos = append(pos, [2]float64{
				g.Xmin + rng.Float64()*(g.Xmax-g.Xmin),
				g.Ymin + rng.Float64()*(g.Ymax-g.Ymin),
			})
		}
	case "grid":
		side := int(math.Ceil(math.Sqrt(float64(n))))
		for k := 0; k < side*side; k++ {
			ix, iy := k/side, k%side
			pos = append(pos, [2]float64{
				g.Xmin + (float64(ix)+0.5)*(g.Xmax-g.Xmin)/float64(side),
				g.Ymin + (float64(iy)+0.5)*(g.Ymax-g.Ymin)/float64(side),
			})
		}
	default:
		return nil, fmt.Errorf("%w: unknown particle generator %q", dynamo.ErrConfig, generator)
	}

	s := &Set{cc: cc, bc: bc, stepper: stepper, initial: make(map[int][2]float64, len(pos))}
	for id, p := range pos {
		s.particles = append(s.particles, Particle{ID: id, X: p[0], Y: p[1]})
		s.initial[id] = p
	}
	return s, nil
}

func (s *Set) Len() int { return len(s.particles) }

// Positions returns a copy of the live particles, ordered by ID.
func (s *Set) Positions() []Particle {
	out := append([]Particle(nil), s.particles...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// InitPositions returns the seeded position of every particle, including
// ones that have since left the domain.
func (s *Set) InitPositions() map[int][2]float64 {
	out := make(map[int][2]float64, len(s.initial))
	for k, v := range s.initial {
		out[k] = v
	}
	return out
}

// flow is the frozen velocity field seen by one particle as an ODE system.
type flow struct {
	g    *grid.Grid
	u, v grid.Plane
}

func (f *flow) StateDim() int { return 2 }

func (f *flow) Derive(x dynamo.State, _ float64) dynamo.State {
	return dynamo.State{Interpolate(f.g, f.u, x[0], x[1]), Interpolate(f.g, f.v, x[0], x[1])}
}

// Update moves every particle through the current velocity field for dt.
// Particles leaving through an outflow edge are removed. A non-finite
// position is a dynamo.ErrInvalidState error and leaves the set untouched.
func (s *Set) Update(dt float64) error {
	vel, err := s.cc.Derived("velocity")
	if err != nil {
		return err
	}
	f := &flow{g: s.cc.Grid, u: vel[0], v: vel[1]}

	kept := make([]Particle, 0, len(s.particles))
	for _, p := range s.particles {
		x := s.stepper.Step(f, dynamo.State{p.X, p.Y}, s.cc.T, dt)
		if !x.IsValid() {
			return fmt.Errorf("%w: particle %d at t=%g", dynamo.ErrInvalidState, p.ID, s.cc.T)
		}
		nx, okx := s.boundary(x[0], s.cc.Grid.Xmin, s.cc.Grid.Xmax, s.bc.XL, s.bc.XR)
		ny, oky := s.boundary(x[1], s.cc.Grid.Ymin, s.cc.Grid.Ymax, s.bc.YL, s.bc.YR)
		if !okx || !oky {
			continue
		}
		p.X, p.Y = nx, ny
		kept = append(kept, p)
	}
	s.particles = kept
	return nil
}

// boundary applies the edge conditions along one axis. ok is false when
// the particle is lost.
func (s *Set) boundary(x, lo, hi float64, left, right grid.Kind) (float64, bool) {
	l := hi - lo
	switch {
	case x < lo:
		switch left {
		case grid.Periodic:
			return lo + math.Mod(math.Mod(x-lo, l)+l, l), true
		case grid.ReflectEven, grid.ReflectOdd:
			return 2*lo - x, true
		}
		return x, false
	case x > hi:
		switch right {
		case grid.Periodic:
			return lo + math.Mod(x-lo, l), true
		case grid.ReflectEven, grid.ReflectOdd:
			return 2*hi - x, true
		}
		return x, false
	}
	return x, true
}

// Interpolate evaluates the cell-centered plane p at (x, y) bilinearly.
// Points outside the cell centers use the nearest ghost cells.
func Interpolate(g *grid.Grid, p grid.Plane, x, y float64) float64 {
	fx := (x-g.Xmin)/g.Dx - 0.5 + float64(g.Ng)
	fy := (y-g.Ymin)/g.Dy - 0.5 + float64(g.Ng)
	i := clamp(int(math.Floor(fx)), 0, g.Qx-2)
	j := clamp(int(math.Floor(fy)), 0, g.Qy-2)
	ax := math.Min(math.Max(fx-float64(i), 0), 1)
	ay := math.Min(math.Max(fy-float64(j), 0), 1)

	return (1-ax)*(1-ay)*p.At(i, j) + ax*(1-ay)*p.At(i+1, j) +
		(1-ax)*ay*p.At(i, j+1) + ax*ay*p.At(i+1, j+1)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
