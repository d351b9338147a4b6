package geom2d

import (
	"fmt"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// mmScale converts between this package's integer micrometre grid and the
// millimetre float64 units sdfx works in.
const mmScale = 1.0 / float64(MMToCoord)

// toSDF2 lifts a PolygonSet into an sdf.SDF2 by unioning the SDFs of its
// outer contours and subtracting the SDFs of its holes, mirroring how
// pkg/kernel/sdfx/sdfx.go composes sdf.Union3D/Difference3D over sdf.SDF3
// primitives, but in the 2D family (sdf.Polygon2D, sdf.Union2D,
// sdf.Difference2D) that mirrors it.
func toSDF2(ps PolygonSet) (sdf.SDF2, error) {
	var outers, holes []sdf.SDF2
	for _, c := range ps.Contours {
		if len(c) < 3 {
			continue
		}
		verts := make([]v2.Vec, len(c))
		for i, p := range c {
			x, y := p.Vec()
			verts[i] = v2.Vec{X: x * mmScale, Y: y * mmScale}
		}
		s, err := sdf.Polygon2D(verts)
		if err != nil {
			return nil, fmt.Errorf("geom2d: Polygon2D: %w", err)
		}
		if c.IsHole() {
			holes = append(holes, s)
		} else {
			outers = append(outers, s)
		}
	}
	if len(outers) == 0 {
		return nil, nil
	}
	result := outers[0]
	if len(outers) > 1 {
		result = sdf.Union2D(outers...)
	}
	for _, h := range holes {
		result = sdf.Difference2D(result, h)
	}
	return result, nil
}

// Union returns the union of all polygon sets.
func Union(sets ...PolygonSet) PolygonSet {
	var parts []sdf.SDF2
	for _, ps := range sets {
		s, err := toSDF2(ps)
		if err != nil || s == nil {
			continue
		}
		parts = append(parts, s)
	}
	if len(parts) == 0 {
		return PolygonSet{}
	}
	result := parts[0]
	if len(parts) > 1 {
		result = sdf.Union2D(parts...)
	}
	return traceSDF2(result, unionBounds(sets))
}

// Difference returns a minus b.
func Difference(a, b PolygonSet) PolygonSet {
	sa, err := toSDF2(a)
	if err != nil || sa == nil {
		return PolygonSet{}
	}
	sb, err := toSDF2(b)
	if err != nil || sb == nil {
		return a.Clone()
	}
	return traceSDF2(sdf.Difference2D(sa, sb), a.BoundingBox())
}

// Intersection returns the intersection of a and b.
func Intersection(a, b PolygonSet) PolygonSet {
	sa, err := toSDF2(a)
	if err != nil || sa == nil {
		return PolygonSet{}
	}
	sb, err := toSDF2(b)
	if err != nil || sb == nil {
		return PolygonSet{}
	}
	bb := a.BoundingBox()
	bb2 := b.BoundingBox()
	bb.Min.X = maxC(bb.Min.X, bb2.Min.X)
	bb.Min.Y = maxC(bb.Min.Y, bb2.Min.Y)
	bb.Max.X = minC(bb.Max.X, bb2.Max.X)
	bb.Max.Y = minC(bb.Max.Y, bb2.Max.Y)
	return traceSDF2(sdf.Intersect2D(sa, sb), bb)
}

// Offset returns the Minkowski sum of ps with a disk of radius delta
// (delta>0 grows the polygon set outward, delta<0 shrinks it).
func Offset(ps PolygonSet, delta Coord) PolygonSet {
	if ps.Empty() {
		return PolygonSet{}
	}
	s, err := toSDF2(ps)
	if err != nil || s == nil {
		return PolygonSet{}
	}
	offsetMM := float64(delta) * mmScale
	grown := sdf.Offset2D(s, offsetMM)
	bb := ps.BoundingBox().Expand(absCoord(delta) + 2*cellSizeFor(ps.BoundingBox()))
	return traceSDF2(grown, bb)
}

// Inset is shorthand for Offset(ps, -delta) with delta>=0, matching the
// spec's "inset(X, max_move)" phrasing for the avoidance recurrence.
func Inset(ps PolygonSet, delta Coord) PolygonSet {
	return Offset(ps, -delta)
}

func unionBounds(sets []PolygonSet) Box {
	var b Box
	for _, ps := range sets {
		b = b.Union(ps.BoundingBox())
	}
	return b.Expand(1)
}

func absCoord(c Coord) Coord {
	if c < 0 {
		return -c
	}
	return c
}
