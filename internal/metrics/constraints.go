package metrics

import (
	"math"

	"github.com/san-kum/mhdsim/internal/grid"
	"github.com/san-kum/mhdsim/internal/mhd"
	"gonum.org/v1/gonum/floats"
)

// DivB returns the face divergence of B over the valid region.
func DivB(g *grid.Grid, fx, fy *grid.FaceCenterData) []float64 {
	bx, by := fx.Plane(), fy.Plane()
	out := make([]float64, 0, g.Nx*g.Ny)
	for i := g.Ilo; i <= g.Ihi; i++ {
		for j := g.Jlo; j <= g.Jhi; j++ {
			out = append(out, (bx.At(i+1, j)-bx.At(i, j))/g.Dx+(by.At(i, j+1)-by.At(i, j))/g.Dy)
		}
	}
	return out
}

// MaxDivB tracks the largest |div B| seen.
type MaxDivB struct {
	name  string
	value float64
}

func NewMaxDivB() *MaxDivB { return &MaxDivB{name: "max_divb"} }

func (m *MaxDivB) Name() string { return m.name }

func (m *MaxDivB) Observe(s *mhd.Simulation) {
	for _, d := range DivB(s.Grid(), s.FaceX(), s.FaceY()) {
		m.value = math.Max(m.value, math.Abs(d))
	}
}

func (m *MaxDivB) Value() float64 { return m.value }

func (m *MaxDivB) Reset() { m.value = 0 }

// MinDensity is the smallest density seen in the valid region.
type MinDensity struct {
	name    string
	value   float64
	samples int
}

func NewMinDensity() *MinDensity { return &MinDensity{name: "min_density"} }

func (m *MinDensity) Name() string { return m.name }

func (m *MinDensity) Observe(s *mhd.Simulation) {
	rho := floats.Min(s.CC().Data().Plane(s.Vars().URho).Interior(s.Grid()))
	if m.samples == 0 || rho < m.value {
		m.value = rho
	}
	m.samples++
}

func (m *MinDensity) Value() float64 { return m.value }

func (m *MinDensity) Reset() {
	m.value = 0
	m.samples = 0
}

// FloorHits counts the valid zones whose density sits at the floor in the
// latest observation.
type FloorHits struct {
	name  string
	zones int
}

func NewFloorHits() *FloorHits { return &FloorHits{name: "floor_hits"} }

func (f *FloorHits) Name() string { return f.name }

func (f *FloorHits) Observe(s *mhd.Simulation) {
	f.zones = 0
	for _, rho := range s.CC().Data().Plane(s.Vars().URho).Interior(s.Grid()) {
		if rho <= mhd.SmallDens {
			f.zones++
		}
	}
}

func (f *FloorHits) Value() float64 { return float64(f.zones) }

func (f *FloorHits) Reset() {
	f.zones = 0
}
