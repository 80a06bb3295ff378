package sim

import (
	"time"

	"github.com/san-kum/mhdsim/internal/mhd"
)

type Observer interface {
	OnStep(s *mhd.Simulation)
}

type ObserverFunc func(s *mhd.Simulation)

func (f ObserverFunc) OnStep(s *mhd.Simulation) { f(s) }

// StepRecord is the state of a run after one step. Step 0 is the initial
// state.
type StepRecord struct {
	Step    int
	T       float64
	Dt      float64
	Metrics map[string]float64
}

type Result struct {
	Problem string
	Steps   int
	T       float64
	History []StepRecord
	Metrics map[string]float64
	Elapsed time.Duration
}
