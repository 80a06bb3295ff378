// Package metrics computes per-step diagnostics of a running MHD
// simulation: conserved totals, the divergence constraint and density
// positivity.
package metrics

import "github.com/san-kum/mhdsim/internal/mhd"

// Metric observes the simulation after every step.
type Metric interface {
	Name() string
	Observe(s *mhd.Simulation)
	Value() float64
	Reset()
}

// Standard returns a fresh instance of every built-in metric.
func Standard() []Metric {
	return []Metric{
		NewTotalMass(),
		NewTotalEnergy(),
		NewMassDrift(),
		NewMaxDivB(),
		NewMinDensity(),
		NewFloorHits(),
	}
}

// Names lists the names of the standard metrics in order.
func Names() []string {
	ms := Standard()
	names := make([]string, len(ms))
	for i, m := range ms {
		names[i] = m.Name()
	}
	return names
}
