// Package debugexport renders a finished support.Result to the debug
// image/vector formats spec.md §17 lists as supplementary collaborator
// output: SVG, PNG, and DXF, one layer at a time, for visually sanity
// checking a run without a full slicer preview.
package debugexport

import (
	"io"

	svg "github.com/ajstarks/svgo"

	"github.com/chazu/lignin/treesupport/pkg/geom2d"
	"github.com/chazu/lignin/treesupport/pkg/support"
)

// coordToPx converts micrometre coordinates to SVG pixels at the given
// scale (pixels per millimetre).
func coordToPx(c geom2d.Coord, scale float64) int {
	return int(float64(c) / float64(geom2d.MMToCoord) * scale)
}

// WriteSVG renders a single layer's support geometry to w as an SVG
// document, scale pixels per millimetre.
func WriteSVG(w io.Writer, layer support.Layer, bounds geom2d.Box, scale float64) error {
	width := coordToPx(bounds.Max.X-bounds.Min.X, scale)
	height := coordToPx(bounds.Max.Y-bounds.Min.Y, scale)
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}

	canvas := svg.New(w)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, "fill:white")

	project := func(p geom2d.Point) (int, int) {
		return coordToPx(p.X-bounds.Min.X, scale), coordToPx(p.Y-bounds.Min.Y, scale)
	}

	for _, part := range layer.InfillParts {
		drawPolygonSet(canvas, part.Polygon, project, "fill:none;stroke:black;stroke-width:1")
	}
	drawPolygonSet(canvas, layer.SupportRoof, project, "fill:none;stroke:red;stroke-width:1")
	drawPolygonSet(canvas, layer.SupportBottom, project, "fill:none;stroke:blue;stroke-width:1")

	canvas.End()
	return nil
}

func drawPolygonSet(canvas *svg.SVG, ps geom2d.PolygonSet, project func(geom2d.Point) (int, int), style string) {
	for _, contour := range ps.Contours {
		if len(contour) < 2 {
			continue
		}
		xs := make([]int, len(contour))
		ys := make([]int, len(contour))
		for i, v := range contour {
			xs[i], ys[i] = project(v)
		}
		canvas.Polygon(xs, ys, style)
	}
}
