// Package border computes the machine border: the permanent obstacle
// representing "outside the printable region", built once per run and fed
// into every collision volume as an unconditional union member.
package border

import (
	"fmt"
	"math"

	"github.com/chazu/lignin/treesupport/pkg/geom2d"
)

// Shape enumerates the supported build-plate shapes.
type Shape int

const (
	// ShapeRectangular is the default build plate shape.
	ShapeRectangular Shape = iota
	ShapeElliptical
)

// ellipseVertices is the vertex count used to approximate an elliptical
// build plate, matching spec.md §4.2's "approximate with 50 vertices".
const ellipseVertices = 50

// outerRingThickness is the thickness of the absolute-obstacle ring framing
// the printable area, per spec.md §4.2's "1-metre-thick outer ring".
const outerRingThickness = 1000 * geom2d.MMToCoord

// Machine describes the physical build volume the border is computed for.
type Machine struct {
	// Size is the plate's footprint: for ShapeRectangular, width/depth; for
	// ShapeElliptical, the major/minor diameters.
	Size  geom2d.Point
	Shape Shape
}

// Build returns the machine border polygon set: everything within a large
// square frame around the plate that is NOT the adhesion-inset printable
// region, per spec.md §4.2 ("a 1-metre-thick outer ring surrounding the
// printable area... and the reversed, adhesion-inset printable region
// itself"). The frame stands in for the unbounded exterior — a branch
// never travels far enough for the frame's outer edge to matter.
//
// adhesionInset is the width to shrink the printable region by to account
// for skirt/brim/raft; it must be >= 0.
func Build(m Machine, adhesionInset geom2d.Coord) (geom2d.PolygonSet, error) {
	if adhesionInset < 0 {
		return geom2d.PolygonSet{}, fmt.Errorf("border: negative adhesion inset %d", adhesionInset)
	}

	plate, err := plateContour(m)
	if err != nil {
		return geom2d.PolygonSet{}, err
	}
	plateSet := geom2d.PolygonSet{Contours: []geom2d.Contour{plate}}
	printable := geom2d.Inset(plateSet, adhesionInset)

	frame := geom2d.PolygonSet{Contours: []geom2d.Contour{frameContour(plate.BoundingBox())}}

	return geom2d.Difference(frame, printable), nil
}

// frameContour returns a large CCW square enclosing plateBounds by
// outerRingThickness, standing in for the machine's unbounded exterior.
func frameContour(plateBounds geom2d.Box) geom2d.Contour {
	f := plateBounds.Expand(outerRingThickness)
	return geom2d.Contour{
		{f.Min.X, f.Min.Y},
		{f.Max.X, f.Min.Y},
		{f.Max.X, f.Max.Y},
		{f.Min.X, f.Max.Y},
	}
}

func plateContour(m Machine) (geom2d.Contour, error) {
	halfW := m.Size.X / 2
	halfH := m.Size.Y / 2
	if halfW <= 0 || halfH <= 0 {
		return nil, fmt.Errorf("border: non-positive machine size %+v", m.Size)
	}

	switch m.Shape {
	case ShapeRectangular:
		return geom2d.Contour{
			{-halfW, -halfH},
			{halfW, -halfH},
			{halfW, halfH},
			{-halfW, halfH},
		}, nil
	case ShapeElliptical:
		c := make(geom2d.Contour, ellipseVertices)
		for i := 0; i < ellipseVertices; i++ {
			theta := 2 * math.Pi * float64(i) / float64(ellipseVertices)
			c[i] = geom2d.Point{
				X: geom2d.Coord(float64(halfW) * math.Cos(theta)),
				Y: geom2d.Coord(float64(halfH) * math.Sin(theta)),
			}
		}
		return c, nil
	default:
		return nil, fmt.Errorf("border: unknown build plate shape %d", m.Shape)
	}
}
