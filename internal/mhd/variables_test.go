package mhd

import (
	"errors"
	"testing"

	"github.com/san-kum/mhdsim/internal/dynamo"
)

func TestNewVariables(t *testing.T) {
	tests := []struct {
		name     string
		extra    []string
		wantAux  int
		wantIX   int
		wantRhoX int
	}{
		{"mandatory only", nil, 0, Absent, Absent},
		{"one scalar", []string{"passive"}, 1, 6, 6},
		{"three scalars", []string{"a", "b", "c"}, 3, 6, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := mustVars(t, names(append(append([]string(nil), MandatoryFields...), tt.extra...)))

			if v.NAux != tt.wantAux {
				t.Errorf("NAux = %d, want %d", v.NAux, tt.wantAux)
			}
			if v.NAux != v.NVar-6 {
				t.Errorf("NAux = %d, want nvar-6 = %d", v.NAux, v.NVar-6)
			}
			if v.IX != tt.wantIX || v.IRhoX != tt.wantRhoX {
				t.Errorf("IX, IRhoX = %d, %d, want %d, %d", v.IX, v.IRhoX, tt.wantIX, tt.wantRhoX)
			}
			if v.HasAux() != (tt.wantAux > 0) {
				t.Errorf("HasAux = %v", v.HasAux())
			}
			got := []int{v.URho, v.UMx, v.UMy, v.UEner, v.UBx, v.UBy, v.IRho, v.IU, v.IV, v.IP, v.IBx, v.IBy}
			want := []int{0, 1, 2, 3, 4, 5, 0, 1, 2, 3, 4, 5}
			for k := range want {
				if got[k] != want[k] {
					t.Fatalf("slots = %v, want %v", got, want)
				}
			}
		})
	}
}

func TestNewVariables_Malformed(t *testing.T) {
	tests := []struct {
		name string
		in   names
	}{
		{"too few", names{"density", "x-momentum"}},
		{"wrong order", names{"x-momentum", "density", "y-momentum", "energy", "x-magnetic-field", "y-magnetic-field"}},
		{"scalar among mandatory", names{"density", "passive", "x-momentum", "y-momentum", "energy", "x-magnetic-field", "y-magnetic-field"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewVariables(tt.in)
			if !errors.Is(err, dynamo.ErrMissingField) {
				t.Errorf("err = %v, want ErrMissingField", err)
			}
		})
	}
}

func TestNewVariables_FromContainer(t *testing.T) {
	cc := newContainer(t, 4, 4, 1.4, "tracer")
	v := mustVars(t, cc)
	if v.NVar != cc.NVar() || v.IX != 6 {
		t.Errorf("got %+v", v)
	}
}
