package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/mhdsim/internal/grid"
	"github.com/san-kum/mhdsim/internal/particles"
)

// Heatmap draws the valid region of a cell-centered plane. Every terminal
// cell is an upper half block, so Rows text lines show 2*Rows samples.
type Heatmap struct {
	Cols, Rows int
	Theme      Theme
}

// Range returns the extrema of the valid region of p.
func Range(g *grid.Grid, p grid.Plane) (lo, hi float64) {
	vals := p.Interior(g)
	return floats.Min(vals), floats.Max(vals)
}

// Render draws p with y increasing upward. Particles, if any, are marked
// on top of the field.
func (h Heatmap) Render(g *grid.Grid, p grid.Plane, tracers []particles.Particle) string {
	lo, hi := Range(g, p)
	span := hi - lo

	marks := make(map[[2]int]bool, len(tracers))
	for _, t := range tracers {
		c := int((t.X - g.Xmin) / (g.Xmax - g.Xmin) * float64(h.Cols))
		r := int((g.Ymax - t.Y) / (g.Ymax - g.Ymin) * float64(h.Rows))
		marks[[2]int{clampInt(c, 0, h.Cols-1), clampInt(r, 0, h.Rows-1)}] = true
	}

	sample := func(c, sub int) lipgloss.Color {
		i := g.Ilo + clampInt(c*g.Nx/h.Cols, 0, g.Nx-1)
		j := g.Jhi - clampInt(sub*g.Ny/(2*h.Rows), 0, g.Ny-1)
		f := 0.5
		if span > 0 {
			f = (p.At(i, j) - lo) / span
		}
		return h.Theme.ColorAt(f)
	}

	var b strings.Builder
	for r := 0; r < h.Rows; r++ {
		for c := 0; c < h.Cols; c++ {
			top, bottom := sample(c, 2*r), sample(c, 2*r+1)
			if marks[[2]int{c, r}] {
				b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Background(top).Render("•"))
				continue
			}
			b.WriteString(lipgloss.NewStyle().Foreground(top).Background(bottom).Render("▀"))
		}
		if r < h.Rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Legend renders the colormap between lo and hi.
func (h Heatmap) Legend(lo, hi float64) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-10.4g ", lo))
	n := h.Cols - 22
	if n < 4 {
		n = 4
	}
	for k := 0; k < n; k++ {
		b.WriteString(lipgloss.NewStyle().Foreground(h.Theme.ColorAt(float64(k) / float64(n-1))).Render("█"))
	}
	b.WriteString(fmt.Sprintf(" %10.4g", hi))
	return b.String()
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
