// Package mhd advances 2D ideal magnetohydrodynamics on a uniform grid.
//
// The conserved state U holds density, the two momenta, total energy and
// the two in-plane magnetic field components, followed by any passively
// advected scalars. The primitive state q holds density, velocity,
// pressure, the field and the scalar mass fractions. Field positions in
// both layouts are resolved once into a Variables value.
//
// Face-centered copies of Bx and By are evolved by constrained transport;
// the cell-centered field is always the average of the two bounding faces.
//
// A Simulation owns the state. Evolve runs one explicit Runge-Kutta step:
// each stage starts from a fresh copy with ghost cells refilled, the
// Substepper turns it into an increment, and the integrator combines the
// increments into the new state. Nothing here is safe for concurrent use.
package mhd
