package integrators

import (
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/mhdsim/internal/dynamo"
)

// Tableau is the Butcher tableau of an explicit Runge-Kutta method.
// A is strictly lower triangular: stage s only reads increments 0..s-1.
type Tableau struct {
	Name string
	A    [][]float64
	B    []float64
	C    []float64
}

// NStages returns the number of stages of the method.
func (t Tableau) NStages() int { return len(t.B) }

var tableaus = map[string]Tableau{
	"EULER": {
		Name: "Euler",
		A:    [][]float64{{}},
		B:    []float64{1},
		C:    []float64{0},
	},
	"RK2": {
		Name: "RK2",
		A:    [][]float64{{}, {0.5}},
		B:    []float64{0, 1},
		C:    []float64{0, 0.5},
	},
	"TVD2": {
		Name: "TVD2",
		A:    [][]float64{{}, {1}},
		B:    []float64{0.5, 0.5},
		C:    []float64{0, 1},
	},
	"RK3": {
		Name: "RK3",
		A:    [][]float64{{}, {0.5}, {-1, 2}},
		B:    []float64{1.0 / 6.0, 2.0 / 3.0, 1.0 / 6.0},
		C:    []float64{0, 0.5, 1},
	},
	"TVD3": {
		Name: "TVD3",
		A:    [][]float64{{}, {1}, {0.25, 0.25}},
		B:    []float64{1.0 / 6.0, 1.0 / 6.0, 2.0 / 3.0},
		C:    []float64{0, 1, 0.5},
	},
	"RK4": {
		Name: "RK4",
		A:    [][]float64{{}, {0.5}, {0, 0.5}, {0, 0, 1}},
		B:    []float64{1.0 / 6.0, 1.0 / 3.0, 1.0 / 3.0, 1.0 / 6.0},
		C:    []float64{0, 0.5, 0.5, 1},
	},
}

// Lookup resolves a temporal method name (case-insensitive).
func Lookup(method string) (Tableau, error) {
	t, ok := tableaus[strings.ToUpper(strings.TrimSpace(method))]
	if !ok {
		return Tableau{}, fmt.Errorf("%w: unknown temporal method %q (available: %v)", dynamo.ErrConfig, method, Methods())
	}
	return t, nil
}

// Methods lists the canonical names of all known methods.
func Methods() []string {
	names := make([]string, 0, len(tableaus))
	for _, t := range tableaus {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return names
}
