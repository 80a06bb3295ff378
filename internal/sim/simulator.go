package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/san-kum/mhdsim/internal/config"
	"github.com/san-kum/mhdsim/internal/metrics"
	"github.com/san-kum/mhdsim/internal/mhd"
	"github.com/san-kum/mhdsim/internal/problems"
)

// Simulator drives an mhd.Simulation from t=0 to driver.tmax.
type Simulator struct {
	cfg       *config.Config
	sim       *mhd.Simulation
	log       *slog.Logger
	metrics   []metrics.Metric
	observers []Observer

	prevDt float64
}

// New builds a simulator for cfg. Problems resolve through the built-in
// registry unless opts supply another source.
func New(cfg *config.Config, log *slog.Logger, opts ...mhd.Option) *Simulator {
	if log == nil {
		log = slog.Default()
	}
	opts = append([]mhd.Option{mhd.WithProblemRegistry(problems.Default()), mhd.WithLogger(log)}, opts...)
	return &Simulator{
		cfg: cfg,
		sim: mhd.NewSimulation(cfg, opts...),
		log: log,
	}
}

func (s *Simulator) AddMetric(m metrics.Metric)  { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer)      { s.observers = append(s.observers, o) }
func (s *Simulator) Simulation() *mhd.Simulation { return s.sim }

func (s *Simulator) Initialize() error {
	if err := s.sim.Initialize(); err != nil {
		return err
	}
	s.prevDt = 0
	return nil
}

// Done reports whether the run has reached tmax or max_steps.
func (s *Simulator) Done() bool {
	d := s.cfg.Driver
	if d.MaxSteps > 0 && s.sim.N() >= d.MaxSteps {
		return true
	}
	return s.sim.T() >= d.TMax*(1-1e-12)
}

// limitDt applies the run-level limits to the CFL timestep: the first
// step is scaled by init_tstep_factor, later ones may grow by at most
// max_dt_change, and no step overshoots tmax.
func (s *Simulator) limitDt() {
	d := s.cfg.Driver
	dt := s.sim.Dt()
	if s.sim.N() == 0 && d.InitTstepFactor > 0 {
		dt *= d.InitTstepFactor
	}
	if s.prevDt > 0 && d.MaxDtChange > 0 {
		dt = math.Min(dt, d.MaxDtChange*s.prevDt)
	}
	if remaining := d.TMax - s.sim.T(); dt > remaining {
		dt = remaining
	}
	s.sim.SetDt(dt)
}

// Step limits dt and advances one step.
func (s *Simulator) Step() error {
	s.limitDt()
	dt := s.sim.Dt()
	if err := s.sim.Evolve(); err != nil {
		return err
	}
	s.prevDt = dt
	return nil
}

// Run initializes the simulation and steps it until Done. The context is
// checked between steps only.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	if err := s.Initialize(); err != nil {
		return nil, err
	}
	s.ResetMetrics()

	result := &Result{
		Problem: s.cfg.Problem,
		Metrics: make(map[string]float64),
	}
	s.record(result, 0)

	for !s.Done() {
		select {
		case <-ctx.Done():
			s.finish(result, start)
			return result, ctx.Err()
		default:
		}

		if err := s.Step(); err != nil {
			s.finish(result, start)
			return result, fmt.Errorf("%s: %w", s.cfg.Problem, err)
		}
		s.record(result, s.prevDt)
	}

	s.finish(result, start)
	s.log.Info("run finished",
		"problem", s.cfg.Problem,
		"steps", result.Steps,
		"t", result.T,
		"elapsed", result.Elapsed)
	return result, nil
}

// Observe samples every metric and notifies the observers. dt is the
// step that led to the current state.
func (s *Simulator) Observe(dt float64) StepRecord {
	rec := StepRecord{Step: s.sim.N(), T: s.sim.T(), Dt: dt, Metrics: make(map[string]float64, len(s.metrics))}
	for _, m := range s.metrics {
		m.Observe(s.sim)
		rec.Metrics[m.Name()] = m.Value()
	}
	for _, obs := range s.observers {
		obs.OnStep(s.sim)
	}
	return rec
}

// LastDt is the step taken by the most recent Step, or 0 before the first.
func (s *Simulator) LastDt() float64 { return s.prevDt }

// ResetMetrics clears the accumulated state of every metric.
func (s *Simulator) ResetMetrics() {
	for _, m := range s.metrics {
		m.Reset()
	}
}

func (s *Simulator) record(result *Result, dt float64) {
	result.History = append(result.History, s.Observe(dt))
}

func (s *Simulator) finish(result *Result, start time.Time) {
	result.Steps = s.sim.N()
	result.T = s.sim.T()
	result.Elapsed = time.Since(start)
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}
