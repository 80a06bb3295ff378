package integrators

import "github.com/san-kum/mhdsim/internal/dynamo"

// Explicit steps an ODE system with an explicit Runge-Kutta tableau.
type Explicit struct {
	tab     Tableau
	k       []dynamo.State
	scratch dynamo.State
}

var _ dynamo.Integrator = (*Explicit)(nil)

func New(method string) (*Explicit, error) {
	tab, err := Lookup(method)
	if err != nil {
		return nil, err
	}
	return NewExplicit(tab), nil
}

func NewExplicit(tab Tableau) *Explicit {
	return &Explicit{tab: tab}
}

func (e *Explicit) Tableau() Tableau { return e.tab }

func (e *Explicit) ensureScratch(n int) {
	if len(e.scratch) != n || len(e.k) != e.tab.NStages() {
		e.k = make([]dynamo.State, e.tab.NStages())
		for s := range e.k {
			e.k[s] = make(dynamo.State, n)
		}
		e.scratch = make(dynamo.State, n)
	}
}

func (e *Explicit) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	n := len(x)
	e.ensureScratch(n)

	for s := 0; s < e.tab.NStages(); s++ {
		copy(e.scratch, x)
		for j, a := range e.tab.A[s] {
			if a == 0 {
				continue
			}
			for i := 0; i < n; i++ {
				e.scratch[i] += dt * a * e.k[j][i]
			}
		}
		copy(e.k[s], dyn.Derive(e.scratch, t+e.tab.C[s]*dt))
	}

	result := x.Clone()
	for s, b := range e.tab.B {
		if b == 0 {
			continue
		}
		for i := 0; i < n; i++ {
			result[i] += dt * b * e.k[s][i]
		}
	}
	return result
}
