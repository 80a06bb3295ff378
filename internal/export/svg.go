// Package export writes simulation fields as standalone images.
package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/mhdsim/internal/grid"
	"github.com/san-kum/mhdsim/internal/particles"
	"github.com/san-kum/mhdsim/internal/viz"
)

// FieldToSVG draws the valid region of p as one rect per zone, scale
// pixels wide, colored with theme. Tracers are drawn as dots on top.
func FieldToSVG(g *grid.Grid, p grid.Plane, theme viz.Theme, scale float64, tracers []particles.Particle) string {
	if scale <= 0 {
		scale = 4
	}
	width := float64(g.Nx) * scale
	height := float64(g.Ny) * scale
	lo, hi := viz.Range(g, p)
	span := hi - lo

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f" shape-rendering="crispEdges">
<g>
`, width, height, width, height))

	for i := g.Ilo; i <= g.Ihi; i++ {
		for j := g.Jlo; j <= g.Jhi; j++ {
			f := 0.5
			if span > 0 {
				f = (p.At(i, j) - lo) / span
			}
			x := float64(i-g.Ilo) * scale
			// y grows downward in SVG
			y := float64(g.Jhi-j) * scale
			sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>
`, x, y, scale, scale, theme.ColorAt(f)))
		}
	}
	sb.WriteString("</g>\n")

	if len(tracers) > 0 {
		sb.WriteString(`<g fill="#ffffff">
`)
		r := scale * 0.4
		for _, t := range tracers {
			cx := (t.X - g.Xmin) / (g.Xmax - g.Xmin) * width
			cy := (g.Ymax - t.Y) / (g.Ymax - g.Ymin) * height
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f"/>
`, cx, cy, r))
		}
		sb.WriteString("</g>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}
