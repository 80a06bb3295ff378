package mhd

import (
	"math"
	"testing"

	"github.com/san-kum/mhdsim/internal/grid"
)

func speedPlanes(g *grid.Grid, u, v, cf float64) (pu, pv, cfx, cfy grid.Plane) {
	pu, pv = grid.NewPlane(g.Qx, g.Qy), grid.NewPlane(g.Qx, g.Qy)
	cfx, cfy = grid.NewPlane(g.Qx, g.Qy), grid.NewPlane(g.Qx, g.Qy)
	fill(pu, u)
	fill(pv, v)
	fill(cfx, cf)
	fill(cfy, cf)
	return
}

func TestComputeTimestep_CFL(t *testing.T) {
	g, err := grid.New(10, 10, 2, 0, 1, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	// dx / (|u| + cf) = 0.1 / 0.5 = 0.2 everywhere
	u, v, cfx, cfy := speedPlanes(g, 0, 0, 0.5)

	dt := ComputeTimestep(g, u, v, cfx, cfy, 0.5, 1.0)
	if math.Abs(dt-0.1) > 1e-15 {
		t.Errorf("dt = %g, want 0.1", dt)
	}
}

func TestComputeTimestep_Bounds(t *testing.T) {
	g, _ := grid.New(16, 8, 2, 0, 1, 0, 2)
	u, v, cfx, cfy := speedPlanes(g, 1, -2, 1)
	u.Set(g.Ilo+3, g.Jlo+2, 7)

	prev := 0.0
	for _, cfl := range []float64{0.1, 0.2, 0.4, 0.8, 1.0} {
		dt := ComputeTimestep(g, u, v, cfx, cfy, cfl, math.Inf(1))
		if !(dt > prev) {
			t.Errorf("cfl=%g: dt=%g not above %g", cfl, dt, prev)
		}
		prev = dt

		if fixed := ComputeTimestep(g, u, v, cfx, cfy, cfl, 1e-3); fixed > 1e-3 {
			t.Errorf("cfl=%g: dt=%g exceeds fix_dt", cfl, fixed)
		}
	}

	// x limits: dx / (7 + 1)
	want := 0.5 * (1.0 / 16) / 8
	if got := ComputeTimestep(g, u, v, cfx, cfy, 0.5, math.Inf(1)); math.Abs(got-want) > 1e-15 {
		t.Errorf("dt = %g, want %g", got, want)
	}
}

func TestComputeTimestep_IgnoresGhosts(t *testing.T) {
	g, _ := grid.New(8, 8, 2, 0, 1, 0, 1)
	u, v, cfx, cfy := speedPlanes(g, 0, 0, 1)
	u.Set(0, 0, 1e6)
	v.Set(g.Qx-1, g.Qy-1, 1e6)

	if got, want := ComputeTimestep(g, u, v, cfx, cfy, 1, math.Inf(1)), 1.0/8; math.Abs(got-want) > 1e-15 {
		t.Errorf("dt = %g, want %g", got, want)
	}
}

func TestComputeTimestep_AtRest(t *testing.T) {
	g, _ := grid.New(8, 8, 2, 0, 1, 0, 1)
	u, v, cfx, cfy := speedPlanes(g, 0, 0, 0)

	if got := ComputeTimestep(g, u, v, cfx, cfy, 0.5, 0.2); got != 0.1 {
		t.Errorf("dt = %g, want cfl*fix_dt = 0.1", got)
	}
}

func TestFastSpeed(t *testing.T) {
	cs := math.Sqrt(1.4)
	tests := []struct {
		name   string
		bn, b2 float64
		want   float64
	}{
		{"hydro", 0, 0, cs},
		{"parallel field", 1, 1, cs},
		{"perpendicular field", 0, 1, math.Sqrt(2.4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FastSpeed(1, cs, tt.bn, tt.b2); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("got %g, want %g", got, tt.want)
			}
		})
	}
}

func TestTimestepFromState(t *testing.T) {
	cc := newContainer(t, 8, 8, 1.4)
	v := mustVars(t, cc)
	U := cc.Data()
	fill(U.Plane(v.URho), 1)
	fill(U.Plane(v.UBx), 1)
	fill(U.Plane(v.UEner), 1/0.4+0.5)

	dt, err := timestepFor(cc, 0.8, math.Inf(1))
	if err != nil {
		t.Fatal(err)
	}
	// along x the fast speed is sqrt(1.4), across the field it is sqrt(2.4)
	want := 0.8 * (1.0 / 8) / math.Sqrt(2.4)
	if math.Abs(dt-want) > 1e-10 {
		t.Errorf("dt = %g, want %g", dt, want)
	}
}

func BenchmarkComputeTimestep(b *testing.B) {
	g, _ := grid.New(256, 256, 4, 0, 1, 0, 1)
	u, v, cfx, cfy := speedPlanes(g, 0.3, 0.2, 1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ComputeTimestep(g, u, v, cfx, cfy, 0.8, math.Inf(1))
	}
}
