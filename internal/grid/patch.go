package grid

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

var (
	ErrNotCreated = errors.New("grid: data not created")
	ErrUnknownVar = errors.New("grid: unknown variable")
)

// DeriveFunc computes a derived quantity from the registered data. It
// returns ok=false when it does not know the name.
type DeriveFunc func(cc *CellCenterData, name string) (planes []Plane, ok bool, err error)

// CellCenterData holds the registered cell-centered variables of a patch.
type CellCenterData struct {
	Grid *Grid
	T    float64

	names   []string
	bcs     []BC
	aux     map[string]float64
	data    *Array
	derives []DeriveFunc
}

func NewCellCenterData(g *Grid) *CellCenterData {
	return &CellCenterData{Grid: g, aux: make(map[string]float64)}
}

// RegisterVar adds a variable. Registration order fixes the variable index.
func (d *CellCenterData) RegisterVar(name string, bc BC) error {
	if d.data != nil {
		return fmt.Errorf("grid: cannot register %q after Create", name)
	}
	for _, n := range d.names {
		if n == name {
			return fmt.Errorf("grid: variable %q already registered", name)
		}
	}
	d.names = append(d.names, name)
	d.bcs = append(d.bcs, bc)
	return nil
}

func (d *CellCenterData) SetAux(name string, v float64) { d.aux[name] = v }

func (d *CellCenterData) Aux(name string) (float64, bool) {
	v, ok := d.aux[name]
	return v, ok
}

// AuxNames lists the auxiliary keys in sorted order.
func (d *CellCenterData) AuxNames() []string {
	keys := make([]string, 0, len(d.aux))
	for k := range d.aux {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Create allocates storage for every registered variable.
func (d *CellCenterData) Create() error {
	if d.data != nil {
		return fmt.Errorf("grid: data already created")
	}
	if len(d.names) == 0 {
		return fmt.Errorf("grid: no variables registered")
	}
	d.data = d.Grid.ScratchArray(len(d.names))
	return nil
}

// Names returns the registered variable names in index order.
func (d *CellCenterData) Names() []string {
	out := make([]string, len(d.names))
	copy(out, d.names)
	return out
}

func (d *CellCenterData) NVar() int { return len(d.names) }

func (d *CellCenterData) BC(n int) BC { return d.bcs[n] }

// Data returns the backing array; callers share its storage.
func (d *CellCenterData) Data() *Array { return d.data }

func (d *CellCenterData) Index(name string) (int, error) {
	for i, n := range d.names {
		if n == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrUnknownVar, name)
}

// Var returns a view of a registered variable.
func (d *CellCenterData) Var(name string) (Plane, error) {
	if d.data == nil {
		return Plane{}, ErrNotCreated
	}
	n, err := d.Index(name)
	if err != nil {
		return Plane{}, err
	}
	return d.data.Plane(n), nil
}

func (d *CellCenterData) AddDerived(fn DeriveFunc) { d.derives = append(d.derives, fn) }

// Derived resolves a derived quantity through the registered derive
// functions. Registered variables resolve to themselves.
func (d *CellCenterData) Derived(name string) ([]Plane, error) {
	if p, err := d.Var(name); err == nil {
		return []Plane{p}, nil
	}
	for _, fn := range d.derives {
		planes, ok, err := fn(d, name)
		if err != nil {
			return nil, err
		}
		if ok {
			return planes, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownVar, name)
}

// FillBCAll refreshes the ghost cells of every variable.
func (d *CellCenterData) FillBCAll() {
	for n := range d.names {
		fillCell(d.Grid, d.data.Plane(n), d.bcs[n])
	}
}

// Clone deep-copies the data. The grid and derive functions are shared.
func (d *CellCenterData) Clone() *CellCenterData {
	c := &CellCenterData{
		Grid:    d.Grid,
		T:       d.T,
		names:   append([]string(nil), d.names...),
		bcs:     append([]BC(nil), d.bcs...),
		aux:     make(map[string]float64, len(d.aux)),
		derives: append([]DeriveFunc(nil), d.derives...),
	}
	for k, v := range d.aux {
		c.aux[k] = v
	}
	if d.data != nil {
		c.data = d.data.Clone()
	}
	return c
}

// GhostsConsistent reports whether refreshing the ghost cells would change
// any of them by more than tol.
func (d *CellCenterData) GhostsConsistent(tol float64) bool {
	c := d.Clone()
	c.FillBCAll()
	return maxAbsDiff(c.data.Data, d.data.Data) <= tol
}

func (d *CellCenterData) String() string {
	var sb strings.Builder
	sb.WriteString(d.Grid.String())
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "There are %d variables registered:\n", len(d.names))
	for n, name := range d.names {
		p := d.data.Plane(n)
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, v := range p.Interior(d.Grid) {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		fmt.Fprintf(&sb, "%20s: min: %12.8g  max: %12.8g\n", name, lo, hi)
		fmt.Fprintf(&sb, "%20s  BCs: -x: %-12s +x: %-12s -y: %-12s +y: %-12s\n",
			" ", d.bcs[n].XL, d.bcs[n].XR, d.bcs[n].YL, d.bcs[n].YR)
	}
	return sb.String()
}

// FaceCenterData holds one variable on the faces normal to Dir.
type FaceCenterData struct {
	Grid *Grid
	Dir  Direction
	Name string
	BC   BC

	data *Array
}

func NewFaceCenterData(g *Grid, dir Direction, name string, bc BC) *FaceCenterData {
	return &FaceCenterData{Grid: g, Dir: dir, Name: name, BC: bc, data: g.FaceArray(dir)}
}

func (f *FaceCenterData) Data() *Array { return f.data }

func (f *FaceCenterData) Plane() Plane { return f.data.Plane(0) }

func (f *FaceCenterData) FillBCAll() {
	fillFace(f.Grid, f.data.Plane(0), f.Dir, f.BC)
}

func (f *FaceCenterData) Clone() *FaceCenterData {
	return &FaceCenterData{Grid: f.Grid, Dir: f.Dir, Name: f.Name, BC: f.BC, data: f.data.Clone()}
}

func (f *FaceCenterData) GhostsConsistent(tol float64) bool {
	c := f.Clone()
	c.FillBCAll()
	return maxAbsDiff(c.data.Data, f.data.Data) <= tol
}

// CenterFromFaces writes the average of the two faces bounding each cell
// into dst, over every cell including ghosts.
func CenterFromFaces(dst Plane, f *FaceCenterData) {
	fp := f.Plane()
	for i := 0; i < dst.Nx; i++ {
		for j := 0; j < dst.Ny; j++ {
			if f.Dir == XDir {
				dst.Set(i, j, 0.5*(fp.At(i, j)+fp.At(i+1, j)))
			} else {
				dst.Set(i, j, 0.5*(fp.At(i, j)+fp.At(i, j+1)))
			}
		}
	}
}

func maxAbsDiff(a, b []float64) float64 {
	m := 0.0
	for i := range a {
		d := math.Abs(a[i] - b[i])
		if d > m || math.IsNaN(d) {
			m = d
		}
	}
	return m
}
