package grid

import (
	"fmt"
	"strings"
)

// Kind is a boundary condition type for one edge.
type Kind string

const (
	Periodic    Kind = "periodic"
	Outflow     Kind = "outflow"
	ReflectEven Kind = "reflect-even"
	ReflectOdd  Kind = "reflect-odd"
)

// BC holds the boundary condition on each of the four edges.
type BC struct {
	XL, XR Kind
	YL, YR Kind
}

// Solid flags the edges the flow cannot cross.
type Solid struct {
	XL, XR bool
	YL, YR bool
}

func parseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "periodic":
		return Periodic, nil
	case "outflow", "zero-gradient":
		return Outflow, nil
	case "reflect", "reflect-even":
		return ReflectEven, nil
	case "reflect-odd":
		return ReflectOdd, nil
	}
	return "", fmt.Errorf("grid: unknown boundary condition %q", s)
}

// NewBC parses the four edge names.
func NewBC(xl, xr, yl, yr string) (BC, error) {
	var (
		bc  BC
		err error
	)
	if bc.XL, err = parseKind(xl); err != nil {
		return BC{}, err
	}
	if bc.XR, err = parseKind(xr); err != nil {
		return BC{}, err
	}
	if bc.YL, err = parseKind(yl); err != nil {
		return BC{}, err
	}
	if bc.YR, err = parseKind(yr); err != nil {
		return BC{}, err
	}
	if (bc.XL == Periodic) != (bc.XR == Periodic) {
		return BC{}, fmt.Errorf("grid: periodic x boundary must be set on both sides")
	}
	if (bc.YL == Periodic) != (bc.YR == Periodic) {
		return BC{}, fmt.Errorf("grid: periodic y boundary must be set on both sides")
	}
	return bc, nil
}

// Setup builds the plain condition plus the variants for quantities that
// flip sign across reflecting x and y walls (normal momenta).
func Setup(xl, xr, yl, yr string) (bc, xodd, yodd BC, err error) {
	bc, err = NewBC(xl, xr, yl, yr)
	if err != nil {
		return BC{}, BC{}, BC{}, err
	}

	odd := func(k Kind) Kind {
		if k == ReflectEven {
			return ReflectOdd
		}
		return k
	}
	xodd = bc
	xodd.XL, xodd.XR = odd(bc.XL), odd(bc.XR)
	yodd = bc
	yodd.YL, yodd.YR = odd(bc.YL), odd(bc.YR)
	return bc, xodd, yodd, nil
}

func isSolid(k Kind) bool { return k == ReflectEven || k == ReflectOdd }

func (b BC) Solid() Solid {
	return Solid{XL: isSolid(b.XL), XR: isSolid(b.XR), YL: isSolid(b.YL), YR: isSolid(b.YR)}
}

// fillAxis fills the ghost points of data along one axis. lo..hi is the
// valid range, period the number of cells spanned by a periodic wrap. For
// staggered (face) data lo and hi are the boundary faces.
func fillAxis(data []float64, axisLen, otherLen, axisStride, otherStride, lo, hi, period int,
	left, right Kind, staggered bool) {

	at := func(k, m int) int { return k*axisStride + m*otherStride }

	for k := 0; k < lo; k++ {
		src, sign := k, 1.0
		switch left {
		case Periodic:
			src = k + period
		case Outflow:
			src = lo
		case ReflectEven, ReflectOdd:
			if staggered {
				src = 2*lo - k
			} else {
				src = 2*lo - 1 - k
			}
			if left == ReflectOdd {
				sign = -1
			}
		}
		for m := 0; m < otherLen; m++ {
			data[at(k, m)] = sign * data[at(src, m)]
		}
	}

	first := hi + 1
	if staggered && right == Periodic {
		first = hi
	}
	for k := first; k < axisLen; k++ {
		src, sign := k, 1.0
		switch right {
		case Periodic:
			src = k - period
		case Outflow:
			src = hi
		case ReflectEven, ReflectOdd:
			if staggered {
				src = 2*hi - k
			} else {
				src = 2*hi + 1 - k
			}
			if right == ReflectOdd {
				sign = -1
			}
		}
		for m := 0; m < otherLen; m++ {
			data[at(k, m)] = sign * data[at(src, m)]
		}
	}
}

// fillCell refreshes the ghost cells of a cell-centered plane.
func fillCell(g *Grid, p Plane, bc BC) {
	fillAxis(p.Data, p.Nx, p.Ny, p.Ny, 1, g.Ilo, g.Ihi, g.Nx, bc.XL, bc.XR, false)
	fillAxis(p.Data, p.Ny, p.Nx, 1, p.Ny, g.Jlo, g.Jhi, g.Ny, bc.YL, bc.YR, false)
}

// fillFace refreshes the ghost faces of a face-centered plane.
func fillFace(g *Grid, p Plane, dir Direction, bc BC) {
	if dir == XDir {
		fillAxis(p.Data, p.Nx, p.Ny, p.Ny, 1, g.Ilo, g.Ihi+1, g.Nx, bc.XL, bc.XR, true)
		fillAxis(p.Data, p.Ny, p.Nx, 1, p.Ny, g.Jlo, g.Jhi, g.Ny, bc.YL, bc.YR, false)
		return
	}
	fillAxis(p.Data, p.Nx, p.Ny, p.Ny, 1, g.Ilo, g.Ihi, g.Nx, bc.XL, bc.XR, false)
	fillAxis(p.Data, p.Ny, p.Nx, 1, p.Ny, g.Jlo, g.Jhi+1, g.Ny, bc.YL, bc.YR, true)
}
