package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/san-kum/mhdsim/internal/grid"
)

// KineticSpectrum returns E(k) for the velocity (u, v): the energy
// 1/2 |û|^2 + 1/2 |v̂|^2 summed over shells of integer wavenumber |k|,
// normalized so the shells add up to the mean of 1/2 (u^2 + v^2). Shells
// run from 0 to min(nx, ny)/2; corners of k-space beyond that are dropped.
func KineticSpectrum(g *grid.Grid, u, v grid.Plane) []float64 {
	return shellSum(g, u, v)
}

// MagneticSpectrum is KineticSpectrum applied to (bx, by).
func MagneticSpectrum(g *grid.Grid, bx, by grid.Plane) []float64 {
	return shellSum(g, bx, by)
}

func shellSum(g *grid.Grid, a, b grid.Plane) []float64 {
	fa := fft.FFT2Real(interior(g, a))
	fb := fft.FFT2Real(interior(g, b))

	kmax := min(g.Nx, g.Ny) / 2
	e := make([]float64, kmax+1)
	norm := float64(g.Nx*g.Ny) * float64(g.Nx*g.Ny)
	for i := 0; i < g.Nx; i++ {
		kx := wavenumber(i, g.Nx)
		for j := 0; j < g.Ny; j++ {
			ky := wavenumber(j, g.Ny)
			k := int(math.Round(math.Hypot(float64(kx), float64(ky))))
			if k > kmax {
				continue
			}
			ea := cmplx.Abs(fa[i][j])
			eb := cmplx.Abs(fb[i][j])
			e[k] += 0.5 * (ea*ea + eb*eb) / norm
		}
	}
	return e
}

// wavenumber maps an FFT index onto a signed mode number.
func wavenumber(i, n int) int {
	if i <= n/2 {
		return i
	}
	return i - n
}

func interior(g *grid.Grid, p grid.Plane) [][]float64 {
	out := make([][]float64, g.Nx)
	for i := range out {
		out[i] = make([]float64, g.Ny)
		for j := range out[i] {
			out[i][j] = p.At(g.Ilo+i, g.Jlo+j)
		}
	}
	return out
}

// Peak returns the shell with the most energy, ignoring the mean flow in
// shell 0. It returns -1 when there is no such shell.
func Peak(e []float64) (int, float64) {
	best, val := -1, 0.0
	for k := 1; k < len(e); k++ {
		if e[k] > val {
			best, val = k, e[k]
		}
	}
	return best, val
}
