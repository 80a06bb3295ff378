package mhd

import (
	"fmt"

	"github.com/san-kum/mhdsim/internal/dynamo"
	"github.com/san-kum/mhdsim/internal/grid"
	"github.com/san-kum/mhdsim/internal/integrators"
	"gonum.org/v1/gonum/floats"
)

// StageState is the full evolved state: cell-centered conserved variables
// and the two face-centered field components.
type StageState struct {
	CC *grid.CellCenterData
	FX *grid.FaceCenterData
	FY *grid.FaceCenterData
}

func (s StageState) Clone() StageState {
	return StageState{CC: s.CC.Clone(), FX: s.FX.Clone(), FY: s.FY.Clone()}
}

// FillBCAll refreshes the ghost cells of all three components.
func (s StageState) FillBCAll() {
	s.CC.FillBCAll()
	s.FX.FillBCAll()
	s.FY.FillBCAll()
}

// GhostsConsistent reports whether every ghost cell already holds what a
// boundary fill would put there.
func (s StageState) GhostsConsistent(tol float64) bool {
	return s.CC.GhostsConsistent(tol) && s.FX.GhostsConsistent(tol) && s.FY.GhostsConsistent(tol)
}

// Increment is the time derivative produced by one stage.
type Increment struct {
	DU  *grid.Array
	DBx *grid.Array
	DBy *grid.Array
}

// NewIncrement allocates a zero increment for st.
func NewIncrement(st StageState) Increment {
	g := st.CC.Grid
	return Increment{
		DU:  g.ScratchArray(st.CC.NVar()),
		DBx: g.FaceArray(grid.XDir),
		DBy: g.FaceArray(grid.YDir),
	}
}

// RKIntegrator accumulates the stages of one explicit Runge-Kutta step.
// Stages must be requested and stored in order 0..NStages()-1.
type RKIntegrator struct {
	tab  integrators.Tableau
	dt   float64
	vars Variables

	start     StageState
	k         []Increment
	stored    []bool
	finalized bool
}

// NewRKIntegrator resolves the temporal method. An unknown method is a
// dynamo.ErrConfig error.
func NewRKIntegrator(method string, dt float64, vars Variables) (*RKIntegrator, error) {
	tab, err := integrators.Lookup(method)
	if err != nil {
		return nil, err
	}
	return &RKIntegrator{
		tab:    tab,
		dt:     dt,
		vars:   vars,
		k:      make([]Increment, tab.NStages()),
		stored: make([]bool, tab.NStages()),
	}, nil
}

func (r *RKIntegrator) NStages() int { return r.tab.NStages() }

func (r *RKIntegrator) Method() string { return r.tab.Name }

// SetStart seeds the integrator with the state at the beginning of the
// step. The state is kept by reference and overwritten by
// ComputeFinalUpdate.
func (r *RKIntegrator) SetStart(st StageState) {
	r.start = st
	r.finalized = false
	for s := range r.stored {
		r.stored[s] = false
	}
}

func (r *RKIntegrator) checkStages(n int) error {
	if r.start.CC == nil {
		return fmt.Errorf("%w: no start state", dynamo.ErrStageOrder)
	}
	if r.finalized {
		return fmt.Errorf("%w: step already finalized", dynamo.ErrStageOrder)
	}
	for s := 0; s < n; s++ {
		if !r.stored[s] {
			return fmt.Errorf("%w: increment of stage %d not stored", dynamo.ErrStageOrder, s)
		}
	}
	return nil
}

// StageStart returns a fresh copy of the state stage s starts from. Its
// ghost cells are stale.
func (r *RKIntegrator) StageStart(s int) (StageState, error) {
	if s < 0 || s >= r.NStages() {
		return StageState{}, fmt.Errorf("%w: stage %d of %d", dynamo.ErrStageOrder, s, r.NStages())
	}
	if err := r.checkStages(s); err != nil {
		return StageState{}, err
	}

	st := r.start.Clone()
	for j := 0; j < s; j++ {
		a := r.tab.A[s][j]
		if a == 0 {
			continue
		}
		r.addScaled(st, r.dt*a, r.k[j])
	}
	st.CC.T = r.start.CC.T + r.tab.C[s]*r.dt
	r.centerField(st)
	return st, nil
}

// StoreIncrement records the increment of stage s.
func (r *RKIntegrator) StoreIncrement(s int, inc Increment) error {
	if s < 0 || s >= r.NStages() {
		return fmt.Errorf("%w: stage %d of %d", dynamo.ErrStageOrder, s, r.NStages())
	}
	if err := r.checkStages(s); err != nil {
		return err
	}
	if inc.DU == nil || inc.DBx == nil || inc.DBy == nil ||
		!inc.DU.SameShape(r.start.CC.Data()) ||
		!inc.DBx.SameShape(r.start.FX.Data()) ||
		!inc.DBy.SameShape(r.start.FY.Data()) {
		return fmt.Errorf("%w: increment of stage %d", dynamo.ErrDimensionMismatch, s)
	}
	r.k[s] = inc
	r.stored[s] = true
	return nil
}

// ComputeFinalUpdate combines the stored increments into the start state,
// in place. It may be called once per SetStart.
func (r *RKIntegrator) ComputeFinalUpdate() error {
	if err := r.checkStages(r.NStages()); err != nil {
		return err
	}
	for s, b := range r.tab.B {
		if b == 0 {
			continue
		}
		r.addScaled(r.start, r.dt*b, r.k[s])
	}
	r.centerField(r.start)
	r.finalized = true
	return nil
}

// Start returns the state passed to SetStart.
func (r *RKIntegrator) Start() StageState { return r.start }

func (r *RKIntegrator) addScaled(st StageState, alpha float64, k Increment) {
	floats.AddScaled(st.CC.Data().Data, alpha, k.DU.Data)
	floats.AddScaled(st.FX.Data().Data, alpha, k.DBx.Data)
	floats.AddScaled(st.FY.Data().Data, alpha, k.DBy.Data)
}

// centerField sets the cell-centered field to the face average.
func (r *RKIntegrator) centerField(st StageState) {
	U := st.CC.Data()
	grid.CenterFromFaces(U.Plane(r.vars.UBx), st.FX)
	grid.CenterFromFaces(U.Plane(r.vars.UBy), st.FY)
}
