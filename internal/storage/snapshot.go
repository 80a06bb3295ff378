package storage

import (
	"fmt"

	"github.com/san-kum/mhdsim/internal/dynamo"
	"github.com/san-kum/mhdsim/internal/grid"
	"github.com/san-kum/mhdsim/internal/mhd"
)

// Snapshot is the full evolved state of a simulation in a form that can be
// rebuilt without the configuration that produced it.
type Snapshot struct {
	Nx   int     `json:"nx"`
	Ny   int     `json:"ny"`
	Ng   int     `json:"ng"`
	Xmin float64 `json:"xmin"`
	Xmax float64 `json:"xmax"`
	Ymin float64 `json:"ymin"`
	Ymax float64 `json:"ymax"`

	T    float64 `json:"t"`
	Step int     `json:"step"`

	Names []string           `json:"names"`
	BCs   []grid.BC          `json:"bcs"`
	Aux   map[string]float64 `json:"aux"`
	Data  []float64          `json:"data"`

	FaceXBC grid.BC   `json:"face_x_bc"`
	FaceX   []float64 `json:"face_x"`
	FaceYBC grid.BC   `json:"face_y_bc"`
	FaceY   []float64 `json:"face_y"`
}

func NewSnapshot(s *mhd.Simulation) *Snapshot {
	g := s.Grid()
	cc := s.CC()
	snap := &Snapshot{
		Nx: g.Nx, Ny: g.Ny, Ng: g.Ng,
		Xmin: g.Xmin, Xmax: g.Xmax, Ymin: g.Ymin, Ymax: g.Ymax,
		T: cc.T, Step: s.N(),
		Names:   cc.Names(),
		Aux:     make(map[string]float64),
		Data:    append([]float64(nil), cc.Data().Data...),
		FaceXBC: s.FaceX().BC,
		FaceX:   append([]float64(nil), s.FaceX().Data().Data...),
		FaceYBC: s.FaceY().BC,
		FaceY:   append([]float64(nil), s.FaceY().Data().Data...),
	}
	for n := range snap.Names {
		snap.BCs = append(snap.BCs, cc.BC(n))
	}
	for _, k := range cc.AuxNames() {
		snap.Aux[k], _ = cc.Aux(k)
	}
	return snap
}

// Restore rebuilds the containers. The cell-centered data resolves the
// MHD derived quantities.
func (s *Snapshot) Restore() (*grid.CellCenterData, *grid.FaceCenterData, *grid.FaceCenterData, error) {
	g, err := grid.New(s.Nx, s.Ny, s.Ng, s.Xmin, s.Xmax, s.Ymin, s.Ymax)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(s.BCs) != len(s.Names) {
		return nil, nil, nil, fmt.Errorf("%w: %d names, %d boundary conditions", dynamo.ErrDimensionMismatch, len(s.Names), len(s.BCs))
	}

	cc := grid.NewCellCenterData(g)
	for n, name := range s.Names {
		if err := cc.RegisterVar(name, s.BCs[n]); err != nil {
			return nil, nil, nil, err
		}
	}
	for k, v := range s.Aux {
		cc.SetAux(k, v)
	}
	if err := cc.Create(); err != nil {
		return nil, nil, nil, err
	}
	if len(s.Data) != len(cc.Data().Data) {
		return nil, nil, nil, fmt.Errorf("%w: state has %d values, grid needs %d", dynamo.ErrDimensionMismatch, len(s.Data), len(cc.Data().Data))
	}
	copy(cc.Data().Data, s.Data)
	cc.T = s.T
	cc.AddDerived(mhd.Derives)

	fx := grid.NewFaceCenterData(g, grid.XDir, mhd.XMagField, s.FaceXBC)
	fy := grid.NewFaceCenterData(g, grid.YDir, mhd.YMagField, s.FaceYBC)
	if len(s.FaceX) != len(fx.Data().Data) || len(s.FaceY) != len(fy.Data().Data) {
		return nil, nil, nil, fmt.Errorf("%w: face data", dynamo.ErrDimensionMismatch)
	}
	copy(fx.Data().Data, s.FaceX)
	copy(fy.Data().Data, s.FaceY)
	return cc, fx, fy, nil
}
