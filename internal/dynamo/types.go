package dynamo

import (
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// System is an ODE right-hand side.
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

// Integrator advances a System by one step of size dt.
type Integrator interface {
	Step(dyn System, x State, t float64, dt float64) State
}
