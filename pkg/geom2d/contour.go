package geom2d

import (
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// marchingSquaresCells is the default number of grid cells along the
// longer axis of a traced region's bounding box. It trades contour
// fidelity for trace cost the same way pkg/kernel/sdfx/sdfx.go's
// defaultMeshCells trades marching-cubes resolution for mesh size.
const marchingSquaresCells = 256

// cellSizeFor returns a reasonable marching-squares cell size for a
// region of the given bounding box, in Coord units.
func cellSizeFor(b Box) Coord {
	w := b.Max.X - b.Min.X
	h := b.Max.Y - b.Min.Y
	span := w
	if h > span {
		span = h
	}
	if span <= 0 {
		span = MMToCoord
	}
	cell := span / marchingSquaresCells
	if cell < 1 {
		cell = 1
	}
	return cell
}

// traceSDF2 samples s on a regular grid covering bb and extracts its
// zero-isoline as a PolygonSet using marching squares, classifying each
// closed loop as an outer boundary or a hole by winding sign.
func traceSDF2(s sdf.SDF2, bb Box) PolygonSet {
	if s == nil || bb.Empty() {
		return PolygonSet{}
	}

	cell := cellSizeFor(bb)
	nx := int((bb.Max.X-bb.Min.X)/cell) + 3
	ny := int((bb.Max.Y-bb.Min.Y)/cell) + 3
	if nx < 3 || ny < 3 {
		return PolygonSet{}
	}

	origin := Point{bb.Min.X - cell, bb.Min.Y - cell}

	sample := func(ix, iy int) float64 {
		p := Point{origin.X + Coord(ix)*cell, origin.Y + Coord(iy)*cell}
		x, y := p.Vec()
		return s.Evaluate(v2.Vec{X: x * mmScale, Y: y * mmScale})
	}

	segments := marchingSquares(nx, ny, sample, origin, cell)
	loops := chainSegments(segments)

	var out PolygonSet
	for _, loop := range loops {
		c := simplifyCollinear(loop)
		if len(c) < 3 {
			continue
		}
		out.Contours = append(out.Contours, c)
	}
	return out
}

// segment is a single marching-squares edge crossing, in grid space.
type segment struct{ a, b Point }

// marchingSquares walks an (nx-1)x(ny-1) grid of cells, interpolating the
// zero-crossing on each of the four cell edges that straddles the sign
// change, and emits the resulting boundary segments oriented so the
// inside (negative field) is on the left.
func marchingSquares(nx, ny int, field func(ix, iy int) float64, origin Point, cell Coord) []segment {
	val := make([][]float64, ny)
	for iy := 0; iy < ny; iy++ {
		val[iy] = make([]float64, nx)
		for ix := 0; ix < nx; ix++ {
			val[iy][ix] = field(ix, iy)
		}
	}

	lerp := func(p0, p1 Point, v0, v1 float64) Point {
		if v0 == v1 {
			return p0
		}
		t := v0 / (v0 - v1)
		return Point{
			X: p0.X + roundCoord(t*float64(p1.X-p0.X)),
			Y: p0.Y + roundCoord(t*float64(p1.Y-p0.Y)),
		}
	}

	corner := func(ix, iy int) Point {
		return Point{origin.X + Coord(ix)*cell, origin.Y + Coord(iy)*cell}
	}

	var segs []segment
	for iy := 0; iy < ny-1; iy++ {
		for ix := 0; ix < nx-1; ix++ {
			v00 := val[iy][ix]
			v10 := val[iy][ix+1]
			v11 := val[iy+1][ix+1]
			v01 := val[iy+1][ix]

			idx := 0
			if v00 < 0 {
				idx |= 1
			}
			if v10 < 0 {
				idx |= 2
			}
			if v11 < 0 {
				idx |= 4
			}
			if v01 < 0 {
				idx |= 8
			}
			if idx == 0 || idx == 15 {
				continue
			}

			p00, p10, p11, p01 := corner(ix, iy), corner(ix+1, iy), corner(ix+1, iy+1), corner(ix, iy+1)

			bottom := func() Point { return lerp(p00, p10, v00, v10) }
			right := func() Point { return lerp(p10, p11, v10, v11) }
			top := func() Point { return lerp(p01, p11, v01, v11) }
			left := func() Point { return lerp(p00, p01, v00, v01) }

			start := len(segs)
			switch idx {
			case 1, 14:
				segs = append(segs, segment{left(), bottom()})
			case 2, 13:
				segs = append(segs, segment{bottom(), right()})
			case 3, 12:
				segs = append(segs, segment{left(), right()})
			case 4, 11:
				segs = append(segs, segment{right(), top()})
			case 6, 9:
				segs = append(segs, segment{bottom(), top()})
			case 7, 8:
				segs = append(segs, segment{left(), top()})
			case 5:
				segs = append(segs, segment{left(), bottom()}, segment{right(), top()})
			case 10:
				segs = append(segs, segment{bottom(), right()}, segment{top(), left()})
			}
			// Each case above shares its segments with its complement (idx^15),
			// written in the direction that keeps the inside on the left for
			// cases 8-14 other than 10; the other cases run the opposite way.
			if idx < 8 || idx == 10 {
				for k := start; k < len(segs); k++ {
					segs[k].a, segs[k].b = segs[k].b, segs[k].a
				}
			}
		}
	}
	return segs
}

// chainSegments links unordered marching-squares segments into closed
// point loops by snapping shared endpoints.
func chainSegments(segs []segment) []Contour {
	type key = Point
	next := make(map[key]Point)
	for _, s := range segs {
		next[s.a] = s.b
	}

	var loops []Contour
	visited := make(map[key]bool)
	for start := range next {
		if visited[start] {
			continue
		}
		var loop Contour
		cur := start
		for {
			if visited[cur] {
				break
			}
			visited[cur] = true
			loop = append(loop, cur)
			nxt, ok := next[cur]
			if !ok {
				break
			}
			cur = nxt
			if cur == start {
				break
			}
		}
		if len(loop) >= 3 {
			loops = append(loops, loop)
		}
	}
	return loops
}

// simplifyCollinear drops vertices that lie on the line through their
// neighbours, within a one-Coord tolerance.
func simplifyCollinear(c Contour) Contour {
	if len(c) < 3 {
		return c
	}
	var out Contour
	n := len(c)
	for i := 0; i < n; i++ {
		prev := c[(i-1+n)%n]
		cur := c[i]
		nxt := c[(i+1)%n]
		cross := float64(cur.X-prev.X)*float64(nxt.Y-prev.Y) - float64(cur.Y-prev.Y)*float64(nxt.X-prev.X)
		if cross > -1e-6 && cross < 1e-6 {
			continue
		}
		out = append(out, cur)
	}
	if len(out) < 3 {
		return c
	}
	return out
}
