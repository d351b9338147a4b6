package geom2d

import (
	"math"

	"github.com/dhconnelly/rtreego"
)

// Inside reports whether p lies inside the polygon set, using the
// even-odd ray-casting rule summed across all contours (outer boundaries
// and holes alike — a point inside an odd number of contours is inside
// the set).
func Inside(ps PolygonSet, p Point) bool {
	inside := false
	for _, c := range ps.Contours {
		if contourContains(c, p) {
			inside = !inside
		}
	}
	return inside
}

func contourContains(c Contour, p Point) bool {
	inside := false
	n := len(c)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := c[i], c[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			xCross := float64(b.X-a.X)*float64(p.Y-a.Y)/float64(b.Y-a.Y) + float64(a.X)
			if float64(p.X) < xCross {
				inside = !inside
			}
		}
	}
	return inside
}

// SplitParts splits a polygon set into its connected components: each
// outer contour paired with the holes nested directly inside it.
func SplitParts(ps PolygonSet) []PolygonSet {
	var outers, holes []Contour
	for _, c := range ps.Contours {
		if c.IsHole() {
			holes = append(holes, c)
		} else {
			outers = append(outers, c)
		}
	}

	parts := make([]PolygonSet, len(outers))
	for i, o := range outers {
		parts[i] = PolygonSet{Contours: []Contour{o}}
	}

	for _, h := range holes {
		if len(h) == 0 {
			continue
		}
		best := -1
		for i, o := range outers {
			if contourContains(o, h[0]) {
				if best == -1 || o.BoundingBox().Contains(h[0]) {
					best = i
				}
			}
		}
		if best >= 0 {
			parts[best].Contours = append(parts[best].Contours, h)
		}
	}
	return parts
}

// partBounds implements rtreego.Spatial for a connected polygon part, so
// Index can answer "which part is this point in/near" with an R-tree
// range query instead of a linear scan over every part every layer.
type partBounds struct {
	idx int
	box rtreego.Rect
}

func (pb *partBounds) Bounds() rtreego.Rect { return pb.box }

// Index is a spatial index over a slice of polygon-set parts (typically
// the connected components of avoidance(0, layer) during Phase A
// grouping). PartContaining narrows its candidates with the R-tree;
// NearestPart scans every part linearly.
type Index struct {
	parts []PolygonSet
	tree  *rtreego.Rtree
}

// NewIndex builds a spatial index over parts.
func NewIndex(parts []PolygonSet) *Index {
	idx := &Index{parts: parts, tree: rtreego.NewTree(2, 8, 32)}
	for i, p := range parts {
		bb := p.BoundingBox()
		if bb.Empty() {
			continue
		}
		rect, err := rtreego.NewRect(
			rtreego.Point{float64(bb.Min.X), float64(bb.Min.Y)},
			[]float64{float64(bb.Max.X - bb.Min.X), float64(bb.Max.Y - bb.Min.Y)},
		)
		if err != nil {
			continue
		}
		idx.tree.Insert(&partBounds{idx: i, box: rect})
	}
	return idx
}

// PartContaining returns the index of the part whose boundary contains p,
// or -1 if p is outside every part.
func (ix *Index) PartContaining(p Point) int {
	q := rtreego.Point{float64(p.X), float64(p.Y)}
	rect, err := rtreego.NewRect(q, []float64{1e-6, 1e-6})
	if err != nil {
		return ix.linearPartContaining(p)
	}
	for _, r := range ix.tree.SearchIntersect(rect) {
		pb := r.(*partBounds)
		if Inside(ix.parts[pb.idx], p) {
			return pb.idx
		}
	}
	return -1
}

func (ix *Index) linearPartContaining(p Point) int {
	for i, part := range ix.parts {
		if Inside(part, p) {
			return i
		}
	}
	return -1
}

// NearestPart returns the index of the part nearest to p (by squared
// distance from p to the part's boundary), breaking ties by lowest index,
// per spec.md's Phase A grouping rule.
func (ix *Index) NearestPart(p Point) int {
	best := -1
	bestDist := math.MaxFloat64
	for i, part := range ix.parts {
		_, d := NearestPointOnBoundary(part, p)
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// NearestPointOnBoundary returns the closest point on the polygon set's
// boundary to p, and the squared distance to it.
func NearestPointOnBoundary(ps PolygonSet, p Point) (Point, float64) {
	best := p
	bestDist := math.MaxFloat64
	for _, c := range ps.Contours {
		n := len(c)
		for i := 0; i < n; i++ {
			a := c[i]
			b := c[(i+1)%n]
			q := closestOnSegment(a, b, p)
			d := p.DistSq(q)
			if d < bestDist {
				bestDist = d
				best = q
			}
		}
	}
	return best, bestDist
}

func closestOnSegment(a, b, p Point) Point {
	ax, ay := a.Vec()
	bx, by := b.Vec()
	px, py := p.Vec()
	dx, dy := bx-ax, by-ay
	lenSq := dx*dx + dy*dy
	if lenSq < 1e-9 {
		return a
	}
	t := ((px-ax)*dx + (py-ay)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return Point{
		X: roundCoord(ax + t*dx),
		Y: roundCoord(ay + t*dy),
	}
}

// MoveInside returns p moved to the nearest boundary point plus a small
// step further inward if p is outside ps; if p is already inside, it is
// returned unchanged.
func MoveInside(ps PolygonSet, p Point, step Coord) Point {
	if Inside(ps, p) {
		return p
	}
	b, _ := NearestPointOnBoundary(ps, p)
	return stepToward(b, ps.BoundingBox().Center(), step)
}

// MoveOutside returns p pushed outward from ps by at least step if p is
// currently inside; if p is already outside, it is returned unchanged.
func MoveOutside(ps PolygonSet, p Point, step Coord) Point {
	if !Inside(ps, p) {
		return p
	}
	b, _ := NearestPointOnBoundary(ps, p)
	dir := p.Sub(b)
	dx, dy := dir.Vec()
	norm := math.Sqrt(dx*dx + dy*dy)
	if norm < 1e-6 {
		// Degenerate (p on boundary numerically); push away from centroid.
		return stepAway(b, ps.BoundingBox().Center(), step)
	}
	// dir points from the boundary into ps; step the other way.
	return Point{
		X: b.X - roundCoord(dx/norm*float64(step)),
		Y: b.Y - roundCoord(dy/norm*float64(step)),
	}
}

func stepToward(from, toward Point, step Coord) Point {
	dir := toward.Sub(from)
	dx, dy := dir.Vec()
	norm := math.Sqrt(dx*dx + dy*dy)
	if norm < 1e-6 {
		return from
	}
	return Point{
		X: from.X + roundCoord(dx/norm*float64(step)),
		Y: from.Y + roundCoord(dy/norm*float64(step)),
	}
}

func stepAway(from, away Point, step Coord) Point {
	return stepToward(from, Point{2*from.X - away.X, 2*from.Y - away.Y}, step)
}

// ClampToLimit returns t if t is within limit of p, otherwise p moved at
// most limit towards t.
func ClampToLimit(p, t Point, limit Coord) Point {
	return clampToLimit(p, t, limit)
}

// MoveToward implements spec.md §4.8's move-toward helper: moves p at
// most L towards target t, then pushes the result outside obstacle I if
// it landed inside it.
func MoveToward(p, t Point, obstacle PolygonSet, limit Coord) Point {
	candidate := clampToLimit(p, t, limit)
	if Inside(obstacle, candidate) {
		candidate = MoveOutside(obstacle, candidate, limit)
	}
	return candidate
}

func clampToLimit(p, t Point, limit Coord) Point {
	d := t.Sub(p)
	dist := p.Dist(t)
	if dist <= float64(limit) || dist < 1e-9 {
		return t
	}
	dx, dy := d.Vec()
	scale := float64(limit) / dist
	return Point{
		X: p.X + roundCoord(dx*scale),
		Y: p.Y + roundCoord(dy*scale),
	}
}

// Smooth removes micrometre slivers from a traced contour set by rounding
// sharp concave/convex corners: it is equivalent to a small open-then-close
// (erode then dilate) pass, approximated here directly on the polyline by
// a Chaikin corner-cut iterated `iterations` times.
func Smooth(ps PolygonSet, iterations int) PolygonSet {
	out := ps.Clone()
	for i := range out.Contours {
		c := out.Contours[i]
		for k := 0; k < iterations; k++ {
			c = chaikin(c)
		}
		out.Contours[i] = c
	}
	return out
}

// Simplify drops near-collinear vertices from every contour in ps, the
// inverse of Smooth: it reduces vertex count instead of adding it, used to
// keep the per-layer circle rasterization from accumulating vertices as
// identical circles stack across layers.
func Simplify(ps PolygonSet) PolygonSet {
	out := ps.Clone()
	for i, c := range out.Contours {
		out.Contours[i] = simplifyCollinear(c)
	}
	return out
}

func chaikin(c Contour) Contour {
	n := len(c)
	if n < 3 {
		return c
	}
	out := make(Contour, 0, 2*n)
	for i := 0; i < n; i++ {
		a := c[i]
		b := c[(i+1)%n]
		q := Point{
			X: a.X + (b.X-a.X)/4,
			Y: a.Y + (b.Y-a.Y)/4,
		}
		r := Point{
			X: a.X + 3*(b.X-a.X)/4,
			Y: a.Y + 3*(b.Y-a.Y)/4,
		}
		out = append(out, q, r)
	}
	return out
}
