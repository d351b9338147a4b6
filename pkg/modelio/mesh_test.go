package modelio

import (
	"testing"

	"github.com/chazu/lignin/treesupport/pkg/geom2d"
)

// cubeMesh returns a unit 10mm cube centred at the origin, as 12 triangles.
func cubeMesh() *Mesh {
	const h = 5.0
	corners := [8][3]float64{
		{-h, -h, 0}, {h, -h, 0}, {h, h, 0}, {-h, h, 0},
		{-h, -h, 10}, {h, -h, 10}, {h, h, 10}, {-h, h, 10},
	}
	quad := func(a, b, c, d int) []Triangle {
		return []Triangle{
			{A: corners[a], B: corners[b], C: corners[c]},
			{A: corners[a], B: corners[c], C: corners[d]},
		}
	}
	var tris []Triangle
	tris = append(tris, quad(0, 1, 2, 3)...) // bottom
	tris = append(tris, quad(4, 5, 6, 7)...) // top
	tris = append(tris, quad(0, 1, 5, 4)...) // sides
	tris = append(tris, quad(1, 2, 6, 5)...)
	tris = append(tris, quad(2, 3, 7, 6)...)
	tris = append(tris, quad(3, 0, 4, 7)...)

	return &Mesh{Triangles: tris}
}

func TestSliceMidHeightProducesOneClosedContour(t *testing.T) {
	m := cubeMesh()
	outlines := Slice(m, 1.0, 10)

	mid := outlines[5]
	if len(mid.Contours) != 1 {
		t.Fatalf("expected exactly one contour at mid-height, got %d", len(mid.Contours))
	}
	if len(mid.Contours[0]) < 3 {
		t.Fatalf("expected a closed polygon, got %d vertices", len(mid.Contours[0]))
	}
}

func TestSliceContourCentredOnOrigin(t *testing.T) {
	m := cubeMesh()
	outlines := Slice(m, 1.0, 10)

	bb := outlines[5].Contours[0].BoundingBox()
	center := bb.Center()
	if abs64(float64(center.X)) > 100 || abs64(float64(center.Y)) > 100 {
		t.Errorf("expected slice centred near origin, got %v", center)
	}
}

func TestIntersectTriangleMissesFarPlane(t *testing.T) {
	tri := Triangle{A: [3]float64{0, 0, 0}, B: [3]float64{1, 0, 0}, C: [3]float64{0, 1, 0}}
	if _, ok := intersectTriangle(tri, 100); ok {
		t.Errorf("expected no intersection far above a flat triangle")
	}
}

func TestChainSegmentsClosesSquare(t *testing.T) {
	sq := []segment{
		{a: geom2d.Point{X: 0, Y: 0}, b: geom2d.Point{X: 1000, Y: 0}},
		{a: geom2d.Point{X: 1000, Y: 0}, b: geom2d.Point{X: 1000, Y: 1000}},
		{a: geom2d.Point{X: 1000, Y: 1000}, b: geom2d.Point{X: 0, Y: 1000}},
		{a: geom2d.Point{X: 0, Y: 1000}, b: geom2d.Point{X: 0, Y: 0}},
	}
	ps := chainSegments(sq)
	if len(ps.Contours) != 1 {
		t.Fatalf("expected one closed contour, got %d", len(ps.Contours))
	}
	if len(ps.Contours[0]) != 4 {
		t.Errorf("expected 4 vertices, got %d", len(ps.Contours[0]))
	}
}

func abs64(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
