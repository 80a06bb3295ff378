package grid

import "fmt"

// Array is a flat [nvar][nx][ny] block of float64 values.
type Array struct {
	Nx, Ny int
	NVar   int
	Data   []float64
}

func NewArray(nx, ny, nvar int) *Array {
	return &Array{Nx: nx, Ny: ny, NVar: nvar, Data: make([]float64, nx*ny*nvar)}
}

func (a *Array) idx(i, j, n int) int { return (n*a.Nx+i)*a.Ny + j }

func (a *Array) At(i, j, n int) float64 { return a.Data[a.idx(i, j, n)] }

func (a *Array) Set(i, j, n int, v float64) { a.Data[a.idx(i, j, n)] = v }

// Plane returns a view of variable n sharing storage with a.
func (a *Array) Plane(n int) Plane {
	size := a.Nx * a.Ny
	return Plane{Nx: a.Nx, Ny: a.Ny, Data: a.Data[n*size : (n+1)*size : (n+1)*size]}
}

func (a *Array) Clone() *Array {
	c := &Array{Nx: a.Nx, Ny: a.Ny, NVar: a.NVar, Data: make([]float64, len(a.Data))}
	copy(c.Data, a.Data)
	return c
}

func (a *Array) SameShape(b *Array) bool {
	return a.Nx == b.Nx && a.Ny == b.Ny && a.NVar == b.NVar
}

// CopyFrom overwrites a with the contents of b.
func (a *Array) CopyFrom(b *Array) error {
	if !a.SameShape(b) {
		return fmt.Errorf("grid: cannot copy %dx%dx%d into %dx%dx%d", b.Nx, b.Ny, b.NVar, a.Nx, a.Ny, a.NVar)
	}
	copy(a.Data, b.Data)
	return nil
}

// Plane is a single 2D field.
type Plane struct {
	Nx, Ny int
	Data   []float64
}

func NewPlane(nx, ny int) Plane {
	return Plane{Nx: nx, Ny: ny, Data: make([]float64, nx*ny)}
}

func (p Plane) At(i, j int) float64 { return p.Data[i*p.Ny+j] }

func (p Plane) Set(i, j int, v float64) { p.Data[i*p.Ny+j] = v }

// Interior copies the valid region of a cell-centered plane on g into a new
// slice, row-major in i.
func (p Plane) Interior(g *Grid) []float64 {
	out := make([]float64, 0, g.Nx*g.Ny)
	for i := g.Ilo; i <= g.Ihi; i++ {
		out = append(out, p.Data[i*p.Ny+g.Jlo:i*p.Ny+g.Jhi+1]...)
	}
	return out
}
