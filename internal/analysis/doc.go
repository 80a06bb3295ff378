// Package analysis provides post-processing of simulation states.
//
//   - [KineticSpectrum]: shell-averaged kinetic energy spectrum E(k)
//   - [MagneticSpectrum]: the same for the cell-centered field
//   - [Peak]: the shell holding the most energy
//
// # Turbulence
//
// The spectrum of a decaying Orszag-Tang vortex steepens as energy
// cascades to small scales:
//
//	u, v := planes[0], planes[1]
//	ek := analysis.KineticSpectrum(sim.Grid(), u, v)
//	k, _ := analysis.Peak(ek)
package analysis
