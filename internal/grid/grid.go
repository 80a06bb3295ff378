package grid

import "fmt"

// Grid is a uniform 2D Cartesian patch with ghost cells.
type Grid struct {
	Nx, Ny int
	Ng     int

	Qx, Qy   int
	Ilo, Ihi int
	Jlo, Jhi int

	Xmin, Xmax float64
	Ymin, Ymax float64
	Dx, Dy     float64

	// cell-center coordinates, including ghost cells
	X, Y []float64
}

func New(nx, ny, ng int, xmin, xmax, ymin, ymax float64) (*Grid, error) {
	if nx < 1 || ny < 1 {
		return nil, fmt.Errorf("grid: nx and ny must be positive, got %d x %d", nx, ny)
	}
	if ng < 1 {
		return nil, fmt.Errorf("grid: need at least one ghost cell, got %d", ng)
	}
	if ng > nx || ng > ny {
		return nil, fmt.Errorf("grid: %d ghost cells exceed the %d x %d valid region", ng, nx, ny)
	}
	if xmax <= xmin || ymax <= ymin {
		return nil, fmt.Errorf("grid: empty domain [%g,%g]x[%g,%g]", xmin, xmax, ymin, ymax)
	}

	g := &Grid{
		Nx: nx, Ny: ny, Ng: ng,
		Qx: nx + 2*ng, Qy: ny + 2*ng,
		Ilo: ng, Ihi: ng + nx - 1,
		Jlo: ng, Jhi: ng + ny - 1,
		Xmin: xmin, Xmax: xmax,
		Ymin: ymin, Ymax: ymax,
		Dx: (xmax - xmin) / float64(nx),
		Dy: (ymax - ymin) / float64(ny),
	}

	g.X = make([]float64, g.Qx)
	for i := range g.X {
		g.X[i] = xmin + (float64(i-ng)+0.5)*g.Dx
	}
	g.Y = make([]float64, g.Qy)
	for j := range g.Y {
		g.Y[j] = ymin + (float64(j-ng)+0.5)*g.Dy
	}
	return g, nil
}

// ScratchArray allocates a zeroed cell-centered array with nvar variables.
func (g *Grid) ScratchArray(nvar int) *Array {
	return NewArray(g.Qx, g.Qy, nvar)
}

// FaceArray allocates a zeroed single-variable face-centered array for the
// faces normal to dir.
func (g *Grid) FaceArray(dir Direction) *Array {
	if dir == XDir {
		return NewArray(g.Qx+1, g.Qy, 1)
	}
	return NewArray(g.Qx, g.Qy+1, 1)
}

// Xl returns the left-face coordinate of cell i.
func (g *Grid) Xl(i int) float64 { return g.X[i] - 0.5*g.Dx }

// Yl returns the bottom-face coordinate of cell j.
func (g *Grid) Yl(j int) float64 { return g.Y[j] - 0.5*g.Dy }

func (g *Grid) String() string {
	return fmt.Sprintf("2-d grid: nx = %d, ny = %d, ng = %d, [%g,%g]x[%g,%g]",
		g.Nx, g.Ny, g.Ng, g.Xmin, g.Xmax, g.Ymin, g.Ymax)
}

type Direction int

const (
	XDir Direction = 1
	YDir Direction = 2
)
