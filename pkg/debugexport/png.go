package debugexport

import (
	"image"
	"image/color"

	"github.com/llgcode/draw2d/draw2dimg"

	"github.com/chazu/lignin/treesupport/pkg/geom2d"
	"github.com/chazu/lignin/treesupport/pkg/support"
)

// RenderPNG rasterizes a single layer's support geometry to an RGBA
// image, scale pixels per millimetre, suitable for draw2dimg.SaveToPngFile.
func RenderPNG(layer support.Layer, bounds geom2d.Box, scale float64) *image.RGBA {
	width := coordToPx(bounds.Max.X-bounds.Min.X, scale)
	height := coordToPx(bounds.Max.Y-bounds.Min.Y, scale)
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	gc := draw2dimg.NewGraphicContext(img)
	gc.SetFillColor(color.White)
	gc.MoveTo(0, 0)
	gc.LineTo(float64(width), 0)
	gc.LineTo(float64(width), float64(height))
	gc.LineTo(0, float64(height))
	gc.Close()
	gc.Fill()

	project := func(p geom2d.Point) (float64, float64) {
		return float64(coordToPx(p.X-bounds.Min.X, scale)), float64(coordToPx(p.Y-bounds.Min.Y, scale))
	}

	for _, part := range layer.InfillParts {
		strokePolygonSet(gc, part.Polygon, project, color.Black)
	}
	strokePolygonSet(gc, layer.SupportRoof, project, color.RGBA{R: 220, A: 255})
	strokePolygonSet(gc, layer.SupportBottom, project, color.RGBA{B: 220, A: 255})

	return img
}

func strokePolygonSet(gc *draw2dimg.GraphicContext, ps geom2d.PolygonSet, project func(geom2d.Point) (float64, float64), c color.Color) {
	gc.SetStrokeColor(c)
	gc.SetLineWidth(1)
	for _, contour := range ps.Contours {
		if len(contour) < 2 {
			continue
		}
		x, y := project(contour[0])
		gc.MoveTo(x, y)
		for _, v := range contour[1:] {
			x, y = project(v)
			gc.LineTo(x, y)
		}
		gc.Close()
		gc.Stroke()
	}
}
