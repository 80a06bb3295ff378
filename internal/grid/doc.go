// Package grid provides the structured 2D storage the solver runs on.
//
// A [Grid] describes a uniform Cartesian patch with ng ghost cells on each
// side. Data lives in [Array] values laid out variable-major, so every
// variable is one contiguous plane that whole-array routines can operate on
// directly:
//
//	g, _ := grid.New(64, 64, 4, 0, 1, 0, 1)
//	cc := grid.NewCellCenterData(g)
//	cc.RegisterVar("density", bc)
//	_ = cc.Create()
//	rho, _ := cc.Var("density")
//	rho.Set(g.Ilo, g.Jlo, 1.0)
//
// Face-centered data ([FaceCenterData]) holds one value per cell face normal
// to a direction; x-faces are indexed so that face i is the left face of
// cell i.
//
// Ghost cells are refreshed with FillBCAll, which is idempotent.
package grid
