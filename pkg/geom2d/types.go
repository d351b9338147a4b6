// Package geom2d provides the integer 2D polygon geometry that the tree
// support generator is built on: points on a fixed-point micrometre grid,
// polygon sets closed under union/difference/intersection/offset, and the
// point queries (inside, nearest boundary, move-inside/outside) the drop
// loop needs every layer.
//
// Boolean operations and offsetting are implemented by lifting contours
// into a github.com/deadsy/sdfx SDF2 (the 2D sibling of the SDF3 primitives
// pkg/kernel/sdfx already uses for solid modeling), composing there, and
// tracing contours back out with marching squares.
package geom2d

import "math"

// Coord is a signed fixed-point micrometre coordinate.
type Coord = int64

// MMToCoord is the number of Coord units (micrometres) per millimetre.
const MMToCoord Coord = 1000

// Point is a 2D point on the integer micrometre grid.
type Point struct {
	X, Y Coord
}

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Scale returns p scaled by s (rounded to nearest).
func (p Point) Scale(s float64) Point {
	return Point{
		X: roundCoord(float64(p.X) * s),
		Y: roundCoord(float64(p.Y) * s),
	}
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Sqrt(p.DistSq(q))
}

// DistSq returns the squared Euclidean distance between p and q, avoiding
// the sqrt when only comparison is needed (nearest-part lookups, etc).
func (p Point) DistSq(q Point) float64 {
	dx := float64(p.X - q.X)
	dy := float64(p.Y - q.Y)
	return dx*dx + dy*dy
}

// Vec returns p as a float64 (x, y) pair in coordinate units.
func (p Point) Vec() (float64, float64) { return float64(p.X), float64(p.Y) }

func roundCoord(f float64) Coord {
	if f >= 0 {
		return Coord(f + 0.5)
	}
	return Coord(f - 0.5)
}

// Box is an axis-aligned bounding box.
type Box struct {
	Min, Max Point
}

// Empty reports whether the box contains no area.
func (b Box) Empty() bool { return b.Min.X >= b.Max.X || b.Min.Y >= b.Max.Y }

// Union returns the smallest box containing both b and o.
func (b Box) Union(o Box) Box {
	if b.Empty() {
		return o
	}
	if o.Empty() {
		return b
	}
	return Box{
		Min: Point{minC(b.Min.X, o.Min.X), minC(b.Min.Y, o.Min.Y)},
		Max: Point{maxC(b.Max.X, o.Max.X), maxC(b.Max.Y, o.Max.Y)},
	}
}

// Contains reports whether p lies within the box, inclusive of the boundary.
func (b Box) Contains(p Point) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// Expand grows the box by d in every direction.
func (b Box) Expand(d Coord) Box {
	return Box{Min: Point{b.Min.X - d, b.Min.Y - d}, Max: Point{b.Max.X + d, b.Max.Y + d}}
}

// Center returns the box's midpoint.
func (b Box) Center() Point {
	return Point{(b.Min.X + b.Max.X) / 2, (b.Min.Y + b.Max.Y) / 2}
}

func minC(a, b Coord) Coord {
	if a < b {
		return a
	}
	return b
}

func maxC(a, b Coord) Coord {
	if a > b {
		return a
	}
	return b
}

// Contour is a single closed polygon loop, CCW-wound for an outer boundary
// and CW-wound for a hole. The first point is not repeated at the end.
type Contour []Point

// BoundingBox returns the contour's axis-aligned bounding box.
func (c Contour) BoundingBox() Box {
	if len(c) == 0 {
		return Box{}
	}
	b := Box{Min: c[0], Max: c[0]}
	for _, p := range c[1:] {
		b.Min.X = minC(b.Min.X, p.X)
		b.Min.Y = minC(b.Min.Y, p.Y)
		b.Max.X = maxC(b.Max.X, p.X)
		b.Max.Y = maxC(b.Max.Y, p.Y)
	}
	return b
}

// SignedArea2 returns twice the signed area of the contour (positive for
// CCW winding, negative for CW). Using 2x area avoids a division until
// it's actually needed.
func (c Contour) SignedArea2() float64 {
	var sum float64
	n := len(c)
	for i := 0; i < n; i++ {
		a := c[i]
		b := c[(i+1)%n]
		sum += float64(a.X)*float64(b.Y) - float64(b.X)*float64(a.Y)
	}
	return sum
}

// IsHole reports whether the contour is wound clockwise (a hole, by this
// package's convention).
func (c Contour) IsHole() bool { return c.SignedArea2() < 0 }

// PolygonSet is an unordered collection of contours, closed under boolean
// operations and offset. Outer boundaries are CCW; holes are CW.
type PolygonSet struct {
	Contours []Contour
}

// Empty reports whether the set has no contours.
func (ps PolygonSet) Empty() bool { return len(ps.Contours) == 0 }

// BoundingBox returns the union of all contour bounding boxes.
func (ps PolygonSet) BoundingBox() Box {
	var b Box
	for _, c := range ps.Contours {
		b = b.Union(c.BoundingBox())
	}
	return b
}

// Clone returns a deep copy of the polygon set.
func (ps PolygonSet) Clone() PolygonSet {
	out := PolygonSet{Contours: make([]Contour, len(ps.Contours))}
	for i, c := range ps.Contours {
		cc := make(Contour, len(c))
		copy(cc, c)
		out.Contours[i] = cc
	}
	return out
}
