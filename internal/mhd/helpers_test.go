package mhd

import (
	"testing"

	"github.com/san-kum/mhdsim/internal/grid"
)

type names []string

func (n names) Names() []string { return n }

// newContainer builds a periodic container with the mandatory fields plus
// extra passive scalars.
func newContainer(t testing.TB, nx, ny int, gamma float64, extra ...string) *grid.CellCenterData {
	t.Helper()
	g, err := grid.New(nx, ny, 2, 0, 1, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	bc, err := grid.NewBC("periodic", "periodic", "periodic", "periodic")
	if err != nil {
		t.Fatal(err)
	}
	cc := grid.NewCellCenterData(g)
	for _, name := range append(append([]string(nil), MandatoryFields...), extra...) {
		if err := cc.RegisterVar(name, bc); err != nil {
			t.Fatal(err)
		}
	}
	cc.SetAux("gamma", gamma)
	if err := cc.Create(); err != nil {
		t.Fatal(err)
	}
	cc.AddDerived(Derives)
	return cc
}

func mustVars(t testing.TB, src NameLister) Variables {
	t.Helper()
	v, err := NewVariables(src)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func fill(p grid.Plane, v float64) {
	for i := range p.Data {
		p.Data[i] = v
	}
}
