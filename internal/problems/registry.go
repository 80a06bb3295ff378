// Package problems holds the named initial conditions a run can start
// from.
package problems

import (
	"fmt"
	"sort"

	"github.com/san-kum/mhdsim/internal/dynamo"
	"github.com/san-kum/mhdsim/internal/mhd"
)

type Registry struct {
	problems map[string]func() mhd.Problem
}

func NewRegistry() *Registry {
	return &Registry{problems: make(map[string]func() mhd.Problem)}
}

// Default returns a registry with every built-in problem.
func Default() *Registry {
	r := NewRegistry()
	r.problems["uniform"] = func() mhd.Problem { return Uniform{} }
	r.problems["advect"] = func() mhd.Problem { return Advect{} }
	r.problems["orszag_tang"] = func() mhd.Problem { return OrszagTang{} }
	r.problems["blast"] = func() mhd.Problem { return Blast{} }
	return r
}

func (r *Registry) Register(name string, fn func() mhd.Problem) error {
	if _, ok := r.problems[name]; ok {
		return fmt.Errorf("problem %q already registered", name)
	}
	r.problems[name] = fn
	return nil
}

func (r *Registry) Get(name string) (mhd.Problem, error) {
	fn, ok := r.problems[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown problem %q (available: %v)", dynamo.ErrConfig, name, r.Names())
	}
	return fn(), nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.problems))
	for name := range r.problems {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
