package mhd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/san-kum/mhdsim/internal/config"
	"github.com/san-kum/mhdsim/internal/dynamo"
	"github.com/san-kum/mhdsim/internal/grid"
	"github.com/san-kum/mhdsim/internal/particles"
	"github.com/san-kum/mhdsim/internal/timing"
)

// Problem sets up the initial conditions of a run.
type Problem interface {
	Name() string
	// ExtraVars lists passive scalars registered after the mandatory fields.
	ExtraVars() []string
	// Init fills the valid region of cc and both face fields. The
	// cell-centered field is recomputed from the faces afterwards.
	Init(cc *grid.CellCenterData, fx, fy *grid.FaceCenterData, cfg *config.Config) error
}

// ProblemSource resolves problems by name.
type ProblemSource interface {
	Get(name string) (Problem, error)
}

// ParticleUpdater advances whatever rides along with the flow.
type ParticleUpdater interface {
	Update(dt float64) error
}

type Option func(*Simulation)

func WithLogger(log *slog.Logger) Option {
	return func(s *Simulation) { s.log = log }
}

func WithSubstepper(sub Substepper) Option {
	return func(s *Simulation) { s.sub = sub }
}

func WithTimers(tc *timing.Collection) Option {
	return func(s *Simulation) { s.tc = tc }
}

func WithProblemRegistry(src ProblemSource) Option {
	return func(s *Simulation) { s.problems = src }
}

// WithProblem uses p regardless of the configured problem name.
func WithProblem(p Problem) Option {
	return func(s *Simulation) { s.problem = p }
}

// WithParticleUpdater replaces the tracer particles built from the
// particles section of the configuration.
func WithParticleUpdater(p ParticleUpdater) Option {
	return func(s *Simulation) { s.updater = p }
}

type Simulation struct {
	cfg *config.Config
	log *slog.Logger
	sub Substepper
	tc  *timing.Collection

	problems ProblemSource
	problem  Problem

	grid      *grid.Grid
	cc        *grid.CellCenterData
	fx, fy    *grid.FaceCenterData
	vars      Variables
	solid     grid.Solid
	particles *particles.Set
	updater   ParticleUpdater

	n           int
	dt          float64
	initialized bool
}

func NewSimulation(cfg *config.Config, opts ...Option) *Simulation {
	s := &Simulation{cfg: cfg, sub: Rusanov{}}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.tc == nil {
		s.tc = timing.New(nil)
	}
	return s
}

// Initialize builds the grid and state, applies the initial conditions,
// fills the ghost cells and computes the first timestep.
func (s *Simulation) Initialize() error {
	if err := s.cfg.Validate(); err != nil {
		return err
	}
	if s.particles != nil && s.updater == ParticleUpdater(s.particles) {
		s.particles, s.updater = nil, nil
	}
	s.initialized = false
	if s.problem == nil {
		if s.problems == nil {
			return fmt.Errorf("%w: no problem given", dynamo.ErrConfig)
		}
		p, err := s.problems.Get(s.cfg.Problem)
		if err != nil {
			return err
		}
		s.problem = p
	}

	m := s.cfg.Mesh
	g, err := grid.New(m.Nx, m.Ny, m.Ng, m.Xmin, m.Xmax, m.Ymin, m.Ymax)
	if err != nil {
		return fmt.Errorf("%w: %v", dynamo.ErrConfig, err)
	}
	bc, xodd, yodd, err := grid.Setup(m.XLBoundary, m.XRBoundary, m.YLBoundary, m.YRBoundary)
	if err != nil {
		return fmt.Errorf("%w: %v", dynamo.ErrConfig, err)
	}

	cc := grid.NewCellCenterData(g)
	fieldBC := map[string]grid.BC{
		Density: bc, XMomentum: xodd, YMomentum: yodd,
		Energy: bc, XMagField: bc, YMagField: bc,
	}
	for _, name := range MandatoryFields {
		if err := cc.RegisterVar(name, fieldBC[name]); err != nil {
			return err
		}
	}
	for _, name := range s.problem.ExtraVars() {
		if err := cc.RegisterVar(name, bc); err != nil {
			return err
		}
	}
	cc.SetAux("gamma", s.cfg.EOS.Gamma)
	if err := cc.Create(); err != nil {
		return err
	}
	cc.AddDerived(Derives)

	vars, err := NewVariables(cc)
	if err != nil {
		return err
	}

	s.grid = g
	s.cc = cc
	s.fx = grid.NewFaceCenterData(g, grid.XDir, XMagField, bc)
	s.fy = grid.NewFaceCenterData(g, grid.YDir, YMagField, bc)
	s.vars = vars
	s.solid = bc.Solid()
	s.n = 0

	if err := s.problem.Init(cc, s.fx, s.fy, s.cfg); err != nil {
		return fmt.Errorf("init %s: %w", s.problem.Name(), err)
	}
	s.fx.FillBCAll()
	s.fy.FillBCAll()
	grid.CenterFromFaces(cc.Data().Plane(vars.UBx), s.fx)
	grid.CenterFromFaces(cc.Data().Plane(vars.UBy), s.fy)
	cc.FillBCAll()

	if s.cfg.Particles.DoParticles && s.updater == nil {
		pc := s.cfg.Particles
		set, err := particles.New(cc, bc, pc.NParticles, pc.Generator, pc.Seed)
		if err != nil {
			return err
		}
		s.particles = set
		s.updater = set
	}

	if err := s.ComputeTimestep(); err != nil {
		return err
	}
	s.initialized = true

	s.log.Info("simulation initialized",
		"problem", s.problem.Name(),
		"grid", g.String(),
		"nvar", vars.NVar,
		"method", s.cfg.MHD.TemporalMethod,
		"dt", s.dt)
	return nil
}

// ComputeTimestep sets Dt from the CFL condition on the current state.
func (s *Simulation) ComputeTimestep() error {
	dt, err := timestepFor(s.cc, s.cfg.Driver.CFL, s.cfg.MaxDt())
	if err != nil {
		return err
	}
	s.dt = dt
	return nil
}

// Evolve advances the state by one step of size Dt.
//
// Every stage starts from a fresh copy of the state whose ghost cells are
// refilled before the substep sees it. If a substep fails the state, clock
// and step count are left untouched and the error is returned as a
// *dynamo.SimulationError. A particle update failure is reported only after
// the field step has been completed and the clock advanced.
func (s *Simulation) Evolve() error {
	if !s.initialized {
		return errors.New("mhd: simulation not initialized")
	}
	tm := s.tc.Timer("evolve")
	tm.Begin()
	defer tm.End()

	dt := s.dt
	rk, err := NewRKIntegrator(s.cfg.MHD.TemporalMethod, dt, s.vars)
	if err != nil {
		return err
	}
	rk.SetStart(StageState{CC: s.cc, FX: s.fx, FY: s.fy})

	for st := 0; st < rk.NStages(); st++ {
		ytmp, err := rk.StageStart(st)
		if err != nil {
			return s.stepError(st, err)
		}
		ytmp.FillBCAll()

		inc, err := s.sub.Substep(ytmp, s.cfg, s.vars, s.solid, s.tc, dt)
		if err != nil {
			return s.stepError(st, err)
		}
		if err := rk.StoreIncrement(st, inc); err != nil {
			return s.stepError(st, err)
		}
	}

	if err := rk.ComputeFinalUpdate(); err != nil {
		return s.stepError(rk.NStages(), err)
	}

	var perr error
	if s.updater != nil {
		perr = s.updater.Update(dt)
	}

	s.cc.FillBCAll()
	s.fx.FillBCAll()
	s.fy.FillBCAll()

	s.cc.T += dt
	s.n++
	if err := s.ComputeTimestep(); err != nil {
		return err
	}
	if perr != nil {
		return fmt.Errorf("particles: %w", perr)
	}

	s.log.Debug("step", "n", s.n, "t", s.cc.T, "dt", dt)
	return nil
}

func (s *Simulation) stepError(stage int, err error) error {
	return &dynamo.SimulationError{Step: s.n, Time: s.cc.T, Stage: stage, Wrapped: err}
}

func (s *Simulation) Config() *config.Config { return s.cfg }

func (s *Simulation) Problem() Problem { return s.problem }

func (s *Simulation) Grid() *grid.Grid { return s.grid }

// T is the simulation time.
func (s *Simulation) T() float64 { return s.cc.T }

// N is the number of completed steps.
func (s *Simulation) N() int { return s.n }

// Dt is the timestep the next Evolve will use.
func (s *Simulation) Dt() float64 { return s.dt }

// SetDt overrides the next timestep, e.g. to land on an output time.
func (s *Simulation) SetDt(dt float64) { s.dt = dt }

func (s *Simulation) Vars() Variables { return s.vars }

func (s *Simulation) CC() *grid.CellCenterData { return s.cc }

func (s *Simulation) FaceX() *grid.FaceCenterData { return s.fx }

func (s *Simulation) FaceY() *grid.FaceCenterData { return s.fy }

func (s *Simulation) Solid() grid.Solid { return s.solid }

// Particles is nil unless tracer particles were configured.
func (s *Simulation) Particles() *particles.Set { return s.particles }

func (s *Simulation) Timers() *timing.Collection { return s.tc }

// Primitives converts the state held by any MHD container, e.g. a
// reloaded snapshot, without touching it.
func Primitives(cc *grid.CellCenterData) (*grid.Array, Variables, error) {
	vars, err := NewVariables(cc)
	if err != nil {
		return nil, Variables{}, err
	}
	gamma, err := Gamma(cc)
	if err != nil {
		return nil, Variables{}, err
	}
	q, err := ConsToPrim(cc.Data().Clone(), gamma, vars)
	if err != nil {
		return nil, Variables{}, err
	}
	return q, vars, nil
}
