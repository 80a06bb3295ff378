// Package dynamo provides the shared primitives of the simulation core.
//
// The package defines the small vocabulary the other packages agree on:
//
//   - [State]: flat vector of float64 values (particle positions, ODE states)
//   - [System]: interface for ODE right-hand sides (dX/dt = f(X, t))
//   - [Integrator]: single-step explicit integrator interface
//   - sentinel errors and [SimulationError], the error every failed
//     timestep is reported with
//
// # Example
//
//	sys := particles.NewTracerSystem(field)
//	integ, _ := integrators.New("RK2")
//	x = integ.Step(sys, x, t, dt)
//
// # Thread Safety
//
// Nothing in this package holds shared state. States are plain slices and
// must not be mutated concurrently.
package dynamo
