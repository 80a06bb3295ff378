package mhd

import (
	"fmt"

	"github.com/san-kum/mhdsim/internal/dynamo"
)

// Absent marks an index that has no slot, e.g. the first passive scalar
// when none are registered.
const Absent = -1

// Names of the mandatory conserved fields, in slot order.
const (
	Density   = "density"
	XMomentum = "x-momentum"
	YMomentum = "y-momentum"
	Energy    = "energy"
	XMagField = "x-magnetic-field"
	YMagField = "y-magnetic-field"
)

// MandatoryFields lists the conserved fields every run registers first.
var MandatoryFields = []string{Density, XMomentum, YMomentum, Energy, XMagField, YMagField}

// NameLister is anything with an ordered list of registered field names.
// grid.CellCenterData satisfies it, as does a reloaded snapshot.
type NameLister interface {
	Names() []string
}

// Variables maps physical quantities to slots in the conserved and
// primitive arrays. It is a plain value, built once and passed around.
type Variables struct {
	NVar int

	// conserved
	URho, UMx, UMy, UEner, UBx, UBy int
	// first conserved passive scalar, or Absent
	IRhoX int

	// primitive
	IRho, IU, IV, IP, IBx, IBy int
	// first primitive mass fraction, or Absent
	IX int

	NAux int
}

// NewVariables resolves the slots from the names registered on src. The
// six mandatory fields must occupy the first six slots in their canonical
// order; everything after them is a passive scalar.
func NewVariables(src NameLister) (Variables, error) {
	names := src.Names()
	if len(names) < len(MandatoryFields) {
		return Variables{}, fmt.Errorf("%w: need %d fields, have %d", dynamo.ErrMissingField, len(MandatoryFields), len(names))
	}
	for n, want := range MandatoryFields {
		if names[n] != want {
			return Variables{}, fmt.Errorf("%w: slot %d is %q, want %q", dynamo.ErrMissingField, n, names[n], want)
		}
	}

	v := Variables{
		NVar: len(names),
		URho: 0, UMx: 1, UMy: 2, UEner: 3, UBx: 4, UBy: 5,
		IRho: 0, IU: 1, IV: 2, IP: 3, IBx: 4, IBy: 5,
		IRhoX: Absent,
		IX:    Absent,
	}
	v.NAux = v.NVar - len(MandatoryFields)
	if v.NAux > 0 {
		v.IRhoX = len(MandatoryFields)
		v.IX = len(MandatoryFields)
	}
	return v, nil
}

// HasAux reports whether any passive scalars are registered.
func (v Variables) HasAux() bool { return v.NAux > 0 }
