// Package eos implements the gamma-law equation of state,
//
//	p = rho e (gamma - 1)
//
// where e is the specific internal energy.
package eos

import "math"

// Pressure returns the pressure for density rho and specific internal
// energy e.
func Pressure(gamma, rho, e float64) float64 {
	return rho * e * (gamma - 1.0)
}

// Dens returns the density for pressure p and specific internal energy e.
func Dens(gamma, p, e float64) float64 {
	return p / (e * (gamma - 1.0))
}

// Rhoe returns the internal energy density for pressure p.
func Rhoe(gamma, p float64) float64 {
	return p / (gamma - 1.0)
}

// SoundSpeed returns the adiabatic sound speed.
func SoundSpeed(gamma, rho, p float64) float64 {
	return math.Sqrt(gamma * p / rho)
}
