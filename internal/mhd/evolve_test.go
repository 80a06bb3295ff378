package mhd_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mhdsim/internal/config"
	"github.com/san-kum/mhdsim/internal/dynamo"
	"github.com/san-kum/mhdsim/internal/grid"
	"github.com/san-kum/mhdsim/internal/logging"
	"github.com/san-kum/mhdsim/internal/mhd"
	"github.com/san-kum/mhdsim/internal/timing"
)

// testProblem sets rho, p and a velocity everywhere plus a face field from
// a vector potential, so the discrete divergence starts at zero.
type testProblem struct {
	u, v   float64
	wave   bool
	tracer bool
}

func (p testProblem) Name() string { return "test" }

func (p testProblem) ExtraVars() []string {
	if p.tracer {
		return []string{"tracer"}
	}
	return nil
}

func (p testProblem) Init(cc *grid.CellCenterData, fx, fy *grid.FaceCenterData, cfg *config.Config) error {
	g := cc.Grid
	gamma := cfg.EOS.Gamma
	az := func(x, y float64) float64 {
		if !p.wave {
			return 0
		}
		return 0.1 * math.Sin(2*math.Pi*x) * math.Cos(2*math.Pi*y) / (2 * math.Pi)
	}
	bx, by := fx.Plane(), fy.Plane()
	for i := 0; i < bx.Nx; i++ {
		for j := 0; j < bx.Ny; j++ {
			x, y := g.Xmin+float64(i-g.Ng)*g.Dx, g.Ymin+float64(j-g.Ng)*g.Dy
			bx.Set(i, j, (az(x, y+g.Dy)-az(x, y))/g.Dy)
		}
	}
	for i := 0; i < by.Nx; i++ {
		for j := 0; j < by.Ny; j++ {
			x, y := g.Xmin+float64(i-g.Ng)*g.Dx, g.Ymin+float64(j-g.Ng)*g.Dy
			by.Set(i, j, -(az(x+g.Dx, y)-az(x, y))/g.Dx)
		}
	}

	U := cc.Data()
	for i := 0; i < g.Qx; i++ {
		for j := 0; j < g.Qy; j++ {
			rho := 1.0
			if p.wave {
				rho += 0.2 * math.Sin(2*math.Pi*g.X[i])
			}
			U.Set(i, j, 0, rho)
			U.Set(i, j, 1, rho*p.u)
			U.Set(i, j, 2, rho*p.v)
			U.Set(i, j, 3, 1/(gamma-1)+0.5*rho*(p.u*p.u+p.v*p.v))
			if p.tracer {
				U.Set(i, j, 6, rho*0.5)
			}
		}
	}
	return nil
}

func testConfig(method string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Mesh.Nx, cfg.Mesh.Ny, cfg.Mesh.Ng = 16, 16, 2
	cfg.MHD.TemporalMethod = method
	cfg.EOS.Gamma = 1.4
	return cfg
}

func newSim(cfg *config.Config, p mhd.Problem, opts ...mhd.Option) *mhd.Simulation {
	opts = append([]mhd.Option{mhd.WithProblem(p), mhd.WithLogger(logging.Discard())}, opts...)
	s := mhd.NewSimulation(cfg, opts...)
	Expect(s.Initialize()).To(Succeed())
	return s
}

// snapshot copies everything Evolve may change.
type snapshot struct {
	u, fx, fy []float64
	t, dt     float64
	n         int
}

func take(s *mhd.Simulation) snapshot {
	return snapshot{
		u:  append([]float64(nil), s.CC().Data().Data...),
		fx: append([]float64(nil), s.FaceX().Data().Data...),
		fy: append([]float64(nil), s.FaceY().Data().Data...),
		t:  s.T(), dt: s.Dt(), n: s.N(),
	}
}

func divB(s *mhd.Simulation) float64 {
	g := s.Grid()
	bx, by := s.FaceX().Plane(), s.FaceY().Plane()
	m := 0.0
	for i := g.Ilo; i <= g.Ihi; i++ {
		for j := g.Jlo; j <= g.Jhi; j++ {
			d := (bx.At(i+1, j)-bx.At(i, j))/g.Dx + (by.At(i, j+1)-by.At(i, j))/g.Dy
			m = math.Max(m, math.Abs(d))
		}
	}
	return m
}

func interiorSum(s *mhd.Simulation, n int) float64 {
	sum := 0.0
	for _, v := range s.CC().Data().Plane(n).Interior(s.Grid()) {
		sum += v
	}
	return sum
}

// recorder wraps a substepper and checks the ghost-cell precondition on
// every stage it sees.
type recorder struct {
	inner   mhd.Substepper
	stages  int
	times   []float64
	ghostOK []bool
	failAt  int
}

func (r *recorder) Substep(st mhd.StageState, cfg *config.Config, vars mhd.Variables, solid grid.Solid, tc *timing.Collection, dt float64) (mhd.Increment, error) {
	r.stages++
	r.times = append(r.times, st.CC.T)
	r.ghostOK = append(r.ghostOK, st.GhostsConsistent(0))
	if r.failAt > 0 && r.stages == r.failAt {
		return mhd.Increment{}, dynamo.ErrUnstable
	}
	return r.inner.Substep(st, cfg, vars, solid, tc, dt)
}

type countingUpdater struct {
	dts []float64
	err error
}

func (c *countingUpdater) Update(dt float64) error {
	c.dts = append(c.dts, dt)
	return c.err
}

var _ = Describe("Evolve", func() {
	Context("with a uniform state at rest", func() {
		It("leaves the state unchanged under Euler", func() {
			s := newSim(testConfig("Euler"), testProblem{})
			before := take(s)

			Expect(s.Evolve()).To(Succeed())

			after := s.CC().Data().Data
			for k := range before.u {
				Expect(after[k]).To(BeNumerically("~", before.u[k], 1e-14))
			}
			q, vars, err := mhd.Primitives(s.CC())
			Expect(err).NotTo(HaveOccurred())
			Expect(q.At(5, 5, vars.IRho)).To(BeNumerically("~", 1, 1e-14))
			Expect(q.At(5, 5, vars.IP)).To(BeNumerically("~", 1, 1e-14))
			Expect(q.At(5, 5, vars.IU)).To(BeZero())
		})

		It("limits dt by fix_dt", func() {
			cfg := testConfig("RK2")
			cfg.Driver.FixDt = 1e-4
			s := newSim(cfg, testProblem{})
			Expect(s.Dt()).To(BeNumerically("~", cfg.Driver.CFL*1e-4, 1e-18))
		})
	})

	DescribeTable("stage sequencing",
		func(method string, stages int) {
			rec := &recorder{inner: mhd.Rusanov{}}
			s := newSim(testConfig(method), testProblem{u: 1, v: 0.5, wave: true}, mhd.WithSubstepper(rec))
			dt := s.Dt()

			Expect(s.Evolve()).To(Succeed())

			Expect(rec.stages).To(Equal(stages))
			Expect(rec.ghostOK).To(HaveEach(BeTrue()), "ghost cells must be filled before every substep")
			Expect(rec.times[0]).To(BeZero())
			for _, t := range rec.times {
				Expect(t).To(BeNumerically("<=", dt+1e-15))
			}
			Expect(s.T()).To(BeNumerically("~", dt, 1e-15))
			Expect(s.N()).To(Equal(1))
		},
		Entry("Euler", "euler", 1),
		Entry("RK2", "RK2", 2),
		Entry("TVD2", "TVD2", 2),
		Entry("RK3", "RK3", 3),
		Entry("TVD3", "TVD3", 3),
		Entry("RK4", "RK4", 4),
	)

	It("advances the clock by the dt it used, then recomputes dt", func() {
		s := newSim(testConfig("RK2"), testProblem{u: 1, wave: true})
		used := s.Dt()
		s.SetDt(used / 2)

		Expect(s.Evolve()).To(Succeed())

		Expect(s.T()).To(BeNumerically("~", used/2, 1e-15))
		Expect(s.Dt()).To(BeNumerically(">", 0))
		Expect(s.Dt()).NotTo(Equal(used / 2))
	})

	It("conserves mass and keeps div B at round-off on a periodic domain", func() {
		s := newSim(testConfig("RK3"), testProblem{u: 1, v: -0.5, wave: true, tracer: true})
		mass0 := interiorSum(s, 0)
		tracer0 := interiorSum(s, 6)
		div0 := divB(s)
		Expect(div0).To(BeNumerically("<", 1e-12))

		for i := 0; i < 10; i++ {
			Expect(s.Evolve()).To(Succeed())
		}

		Expect(interiorSum(s, 0)).To(BeNumerically("~", mass0, 1e-10))
		Expect(interiorSum(s, 6)).To(BeNumerically("~", tracer0, 1e-10))
		Expect(divB(s)).To(BeNumerically("<", 1e-10))
		Expect(s.CC().GhostsConsistent(0)).To(BeTrue())
		Expect(s.N()).To(Equal(10))
	})

	It("updates attached particles once per step with the dt used", func() {
		up := &countingUpdater{}
		s := newSim(testConfig("RK2"), testProblem{u: 1}, mhd.WithParticleUpdater(up))
		dt := s.Dt()

		Expect(s.Evolve()).To(Succeed())
		Expect(up.dts).To(Equal([]float64{dt}))
	})

	It("completes the field step before reporting a particle failure", func() {
		up := &countingUpdater{err: dynamo.ErrInvalidState}
		s := newSim(testConfig("RK2"), testProblem{u: 1, wave: true}, mhd.WithParticleUpdater(up))
		dt := s.Dt()

		err := s.Evolve()

		Expect(errors.Is(err, dynamo.ErrInvalidState)).To(BeTrue())
		Expect(s.T()).To(BeNumerically("~", dt, 1e-15))
		Expect(s.N()).To(Equal(1))
		Expect(s.CC().GhostsConsistent(0)).To(BeTrue())
		Expect(s.FaceX().GhostsConsistent(0)).To(BeTrue())
		Expect(s.Dt()).To(BeNumerically(">", 0))
	})

	It("mirrors the field evenly and the normal momentum oddly at a reflecting wall", func() {
		cfg := testConfig("RK2")
		cfg.Mesh.XLBoundary, cfg.Mesh.XRBoundary = "reflect", "reflect"
		s := newSim(cfg, testProblem{u: 1, wave: true})
		g, v := s.Grid(), s.Vars()
		U := s.CC().Data()
		i, j := g.Ilo, g.Jlo

		Expect(U.At(i, j, v.UBx)).NotTo(BeZero())
		Expect(U.At(i-1, j, v.UBx)).To(Equal(U.At(i, j, v.UBx)))
		Expect(U.At(i-1, j, v.UMx)).To(Equal(-U.At(i, j, v.UMx)))

		bx := s.FaceX().Plane()
		Expect(bx.At(i+1, j)).NotTo(BeZero())
		Expect(bx.At(i-1, j)).To(Equal(bx.At(i+1, j)))
	})

	It("builds tracer particles from the configuration", func() {
		cfg := testConfig("RK2")
		cfg.Particles.DoParticles = true
		cfg.Particles.NParticles = 4
		s := newSim(cfg, testProblem{u: 1})
		Expect(s.Particles()).NotTo(BeNil())
		x0 := s.Particles().Positions()[0].X
		dt := s.Dt()

		Expect(s.Evolve()).To(Succeed())
		Expect(s.Particles().Positions()[0].X).To(BeNumerically("~", x0+dt, 1e-10))
	})

	Context("when the configuration is invalid", func() {
		It("rejects an unknown temporal method before touching the state", func() {
			s := newSim(testConfig("RK2"), testProblem{u: 1, wave: true})
			before := take(s)
			s.Config().MHD.TemporalMethod = "leapfrog"

			err := s.Evolve()

			Expect(errors.Is(err, dynamo.ErrConfig)).To(BeTrue())
			Expect(take(s)).To(Equal(before))
		})

		It("refuses to evolve before Initialize", func() {
			s := mhd.NewSimulation(testConfig("RK2"), mhd.WithProblem(testProblem{}))
			Expect(s.Evolve()).To(HaveOccurred())
		})

		It("fails Initialize without a problem", func() {
			s := mhd.NewSimulation(testConfig("RK2"), mhd.WithLogger(logging.Discard()))
			Expect(errors.Is(s.Initialize(), dynamo.ErrConfig)).To(BeTrue())
		})
	})

	Context("when a substep fails", func() {
		It("returns a SimulationError and commits nothing", func() {
			rec := &recorder{inner: mhd.Rusanov{}, failAt: 2}
			s := newSim(testConfig("RK3"), testProblem{u: 1, wave: true}, mhd.WithSubstepper(rec))
			before := take(s)

			err := s.Evolve()

			var simErr *dynamo.SimulationError
			Expect(errors.As(err, &simErr)).To(BeTrue())
			Expect(simErr.Stage).To(Equal(1))
			Expect(simErr.Step).To(Equal(0))
			Expect(errors.Is(err, dynamo.ErrUnstable)).To(BeTrue())
			Expect(rec.stages).To(Equal(2), "no stage runs after a failure")
			Expect(take(s)).To(Equal(before))
		})

		It("reports non-finite state from the Rusanov substep", func() {
			s := newSim(testConfig("Euler"), testProblem{})
			s.CC().Data().Set(s.Grid().Ilo, s.Grid().Jlo, 3, math.NaN())

			err := s.Evolve()
			Expect(errors.Is(err, dynamo.ErrUnstable)).To(BeTrue())
		})
	})

	It("records timers for every step", func() {
		tc := timing.New(nil)
		s := newSim(testConfig("RK2"), testProblem{u: 1}, mhd.WithTimers(tc))
		Expect(s.Evolve()).To(Succeed())
		Expect(s.Evolve()).To(Succeed())

		Expect(tc.Timer("evolve").Calls()).To(Equal(2))
		Expect(tc.Timer("fluxes").Calls()).To(Equal(4))
		Expect(s.Timers()).To(BeIdenticalTo(tc))
	})
})
