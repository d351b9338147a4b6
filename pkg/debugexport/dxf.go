package debugexport

import (
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/drawing"

	"github.com/chazu/lignin/treesupport/pkg/geom2d"
	"github.com/chazu/lignin/treesupport/pkg/support"
)

// WriteDXF builds a drawing containing one layer's support geometry as
// line segments, in millimetres. Infill, roof, and floor regions are not
// separated into DXF layers — CAD viewers group by closed loop well
// enough for a debug export.
func WriteDXF(layer support.Layer) *drawing.Drawing {
	d := dxf.NewDrawing()

	for _, part := range layer.InfillParts {
		addPolygonSet(d, part.Polygon)
	}
	addPolygonSet(d, layer.SupportRoof)
	addPolygonSet(d, layer.SupportBottom)

	return d
}

func addPolygonSet(d *drawing.Drawing, ps geom2d.PolygonSet) {
	for _, contour := range ps.Contours {
		if len(contour) < 2 {
			continue
		}
		for i := range contour {
			a := contour[i]
			b := contour[(i+1)%len(contour)]
			d.Line(
				coordToMM(a.X), coordToMM(a.Y), 0,
				coordToMM(b.X), coordToMM(b.Y), 0,
			)
		}
	}
}

func coordToMM(c geom2d.Coord) float64 {
	return float64(c) / float64(geom2d.MMToCoord)
}
