package metrics

import (
	"math"

	"github.com/san-kum/mhdsim/internal/mhd"
	"gonum.org/v1/gonum/floats"
)

// volumeIntegral integrates conserved variable n over the valid region.
func volumeIntegral(s *mhd.Simulation, n int) float64 {
	g := s.Grid()
	return floats.Sum(s.CC().Data().Plane(n).Interior(g)) * g.Dx * g.Dy
}

type TotalMass struct {
	name  string
	value float64
}

func NewTotalMass() *TotalMass { return &TotalMass{name: "total_mass"} }

func (m *TotalMass) Name() string { return m.name }

func (m *TotalMass) Observe(s *mhd.Simulation) {
	m.value = volumeIntegral(s, s.Vars().URho)
}

func (m *TotalMass) Value() float64 { return m.value }

func (m *TotalMass) Reset() { m.value = 0 }

type TotalEnergy struct {
	name  string
	value float64
}

func NewTotalEnergy() *TotalEnergy { return &TotalEnergy{name: "total_energy"} }

func (e *TotalEnergy) Name() string { return e.name }

func (e *TotalEnergy) Observe(s *mhd.Simulation) {
	e.value = volumeIntegral(s, s.Vars().UEner)
}

func (e *TotalEnergy) Value() float64 { return e.value }

func (e *TotalEnergy) Reset() { e.value = 0 }

// MassDrift is the largest relative change of the total mass since the
// first observation.
type MassDrift struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
}

func NewMassDrift() *MassDrift { return &MassDrift{name: "mass_drift"} }

func (d *MassDrift) Name() string { return d.name }

func (d *MassDrift) Observe(s *mhd.Simulation) {
	mass := volumeIntegral(s, s.Vars().URho)
	if d.samples == 0 {
		d.initial = mass
	}
	d.samples++

	if d.initial != 0 {
		d.maxDrift = math.Max(d.maxDrift, math.Abs(mass-d.initial)/math.Abs(d.initial))
	}
}

func (d *MassDrift) Value() float64 { return d.maxDrift }

func (d *MassDrift) Reset() {
	d.initial = 0
	d.maxDrift = 0
	d.samples = 0
}
