package analysis

import (
	"math"
	"testing"

	"github.com/san-kum/mhdsim/internal/grid"
)

func sample(g *grid.Grid, f func(x, y float64) float64) grid.Plane {
	p := grid.NewPlane(g.Qx, g.Qy)
	for i := 0; i < g.Qx; i++ {
		for j := 0; j < g.Qy; j++ {
			p.Set(i, j, f(g.X[i], g.Y[j]))
		}
	}
	return p
}

func TestKineticSpectrumSingleMode(t *testing.T) {
	g, err := grid.New(32, 32, 4, 0, 1, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	u := sample(g, func(x, y float64) float64 { return math.Sin(2 * math.Pi * 3 * y) })
	v := sample(g, func(x, y float64) float64 { return 0 })

	e := KineticSpectrum(g, u, v)
	if len(e) != 17 {
		t.Fatalf("got %d shells, want 17", len(e))
	}
	// mean of sin^2 / 2
	if math.Abs(e[3]-0.25) > 1e-12 {
		t.Errorf("E(3) = %g, want 0.25", e[3])
	}
	for k, ek := range e {
		if k != 3 && ek > 1e-20 {
			t.Errorf("E(%d) = %g, want 0", k, ek)
		}
	}
	if k, _ := Peak(e); k != 3 {
		t.Errorf("peak at %d, want 3", k)
	}
}

func TestSpectrumParseval(t *testing.T) {
	g, _ := grid.New(16, 16, 2, 0, 1, 0, 1)
	// low modes only, so no energy falls outside the shells kept
	bx := sample(g, func(x, y float64) float64 { return 0.3 + math.Cos(2*math.Pi*x) })
	by := sample(g, func(x, y float64) float64 { return math.Sin(2*math.Pi*(x+2*y)) })

	mean := 0.0
	for i := g.Ilo; i <= g.Ihi; i++ {
		for j := g.Jlo; j <= g.Jhi; j++ {
			mean += 0.5 * (bx.At(i, j)*bx.At(i, j) + by.At(i, j)*by.At(i, j))
		}
	}
	mean /= float64(g.Nx * g.Ny)

	total := 0.0
	e := MagneticSpectrum(g, bx, by)
	for _, ek := range e {
		total += ek
	}
	if math.Abs(total-mean) > 1e-12 {
		t.Errorf("shell total %g, want %g", total, mean)
	}
	if math.Abs(e[0]-0.5*0.09) > 1e-12 {
		t.Errorf("E(0) = %g, want %g", e[0], 0.5*0.09)
	}
}

func TestPeakEmpty(t *testing.T) {
	if k, _ := Peak([]float64{1}); k != -1 {
		t.Errorf("got %d, want -1", k)
	}
}
