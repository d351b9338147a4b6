// Package modelio provides the minimal "mesh slicer" collaborator spec.md
// §1 lists as external to the tree-support core: loading a triangle mesh
// from a 3MF model file and slicing it into per-layer 2D outlines, so the
// demo CLI in cmd/treesupport has something real to feed support.Generate.
// It deliberately does not attempt adaptive layering or multi-material
// meshes — the real mesh slicer is an external collaborator, not part of
// this module's scope.
package modelio

import (
	"fmt"
	"sort"

	"github.com/hpinc/go3mf"

	"github.com/chazu/lignin/treesupport/pkg/geom2d"
)

// Triangle is a single mesh triangle in millimetre-space model coordinates.
type Triangle struct {
	A, B, C [3]float64
}

// Mesh is a flattened triangle soup pulled out of a 3MF model, plus its
// plan-view AABB (needed by contact-point seeding, spec.md §4.5a).
type Mesh struct {
	Triangles []Triangle
	AABB      geom2d.Box
}

// LoadMesh3MF reads every triangle mesh object referenced by path's 3MF
// build and flattens it into one triangle soup in model space.
func LoadMesh3MF(path string) (*Mesh, error) {
	r, err := go3mf.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("modelio: open %s: %w", path, err)
	}
	defer r.Close()

	var model go3mf.Model
	if err := r.Decode(&model); err != nil {
		return nil, fmt.Errorf("modelio: decode %s: %w", path, err)
	}

	objects := make(map[uint32]*go3mf.Object, len(model.Resources.Objects))
	for _, o := range model.Resources.Objects {
		objects[o.ID] = o
	}

	m := &Mesh{AABB: geom2d.Box{}}
	first := true
	for _, item := range model.Build.Items {
		obj, ok := objects[item.ObjectID]
		if !ok || obj.Mesh == nil {
			continue
		}
		xf := item.Transform

		for _, tri := range obj.Mesh.Triangles.Triangle {
			verts := obj.Mesh.Vertices.Vertex
			if int(tri.V1) >= len(verts) || int(tri.V2) >= len(verts) || int(tri.V3) >= len(verts) {
				continue
			}
			t := Triangle{
				A: applyTransform(xf, verts[tri.V1]),
				B: applyTransform(xf, verts[tri.V2]),
				C: applyTransform(xf, verts[tri.V3]),
			}
			m.Triangles = append(m.Triangles, t)

			for _, v := range [][3]float64{t.A, t.B, t.C} {
				p := geom2d.Point{X: mmToCoord(v[0]), Y: mmToCoord(v[1])}
				if first {
					m.AABB = geom2d.Box{Min: p, Max: p}
					first = false
				} else {
					// Box.Union treats a single-point box as empty, so grow
					// the bounds directly.
					m.AABB.Min = geom2d.Point{X: min(m.AABB.Min.X, p.X), Y: min(m.AABB.Min.Y, p.Y)}
					m.AABB.Max = geom2d.Point{X: max(m.AABB.Max.X, p.X), Y: max(m.AABB.Max.Y, p.Y)}
				}
			}
		}
	}

	return m, nil
}

// applyTransform applies a 3MF build-item transform (row-major 3x4 affine
// matrix, identity if unset) to a vertex, returning millimetre coordinates.
func applyTransform(xf go3mf.Matrix, v go3mf.Point3D) [3]float64 {
	x, y, z := float64(v[0]), float64(v[1]), float64(v[2])
	if xf == (go3mf.Matrix{}) {
		return [3]float64{x, y, z}
	}
	return [3]float64{
		x*float64(xf[0]) + y*float64(xf[4]) + z*float64(xf[8]) + float64(xf[12]),
		x*float64(xf[1]) + y*float64(xf[5]) + z*float64(xf[9]) + float64(xf[13]),
		x*float64(xf[2]) + y*float64(xf[6]) + z*float64(xf[10]) + float64(xf[14]),
	}
}

func mmToCoord(mm float64) geom2d.Coord {
	return geom2d.Coord(mm * float64(geom2d.MMToCoord))
}

// Slice intersects every triangle with the horizontal plane at each layer's
// mid-height and chains the resulting segments into closed contours,
// producing the layer_outlines(ℓ) input contract spec.md §6 requires from
// its external mesh-slicer collaborator.
func Slice(m *Mesh, layerHeight float64, numLayers int) []geom2d.PolygonSet {
	outlines := make([]geom2d.PolygonSet, numLayers)
	for layer := 0; layer < numLayers; layer++ {
		z := (float64(layer) + 0.5) * layerHeight
		outlines[layer] = sliceAtHeight(m.Triangles, z)
	}
	return outlines
}

type segment struct{ a, b geom2d.Point }

func sliceAtHeight(tris []Triangle, z float64) geom2d.PolygonSet {
	var segs []segment
	for _, t := range tris {
		if s, ok := intersectTriangle(t, z); ok {
			segs = append(segs, s)
		}
	}
	return chainSegments(segs)
}

// intersectTriangle returns the segment where triangle t crosses the plane
// z=height, if any two of its edges straddle the plane.
func intersectTriangle(t Triangle, height float64) (segment, bool) {
	verts := [3][3]float64{t.A, t.B, t.C}
	var pts []geom2d.Point
	for i := 0; i < 3; i++ {
		a, b := verts[i], verts[(i+1)%3]
		if (a[2] < height) == (b[2] < height) {
			continue
		}
		frac := (height - a[2]) / (b[2] - a[2])
		x := a[0] + frac*(b[0]-a[0])
		y := a[1] + frac*(b[1]-a[1])
		pts = append(pts, geom2d.Point{X: mmToCoord(x), Y: mmToCoord(y)})
	}
	if len(pts) != 2 {
		return segment{}, false
	}
	return segment{a: pts[0], b: pts[1]}, true
}

// chainSegments links plane-intersection segments end to end into closed
// contours. Segments that cannot be closed within a small tolerance are
// dropped — the demo slicer favors robustness over watertightness.
func chainSegments(segs []segment) geom2d.PolygonSet {
	const tolerance = 10 // 10 micrometres

	type edge struct{ from, to geom2d.Point }
	edges := make([]edge, len(segs))
	for i, s := range segs {
		edges[i] = edge{s.a, s.b}
	}

	used := make([]bool, len(edges))
	var contours []geom2d.Contour

	near := func(p, q geom2d.Point) bool {
		dx, dy := p.X-q.X, p.Y-q.Y
		if dx < 0 {
			dx = -dx
		}
		if dy < 0 {
			dy = -dy
		}
		return dx <= tolerance && dy <= tolerance
	}

	for i := range edges {
		if used[i] {
			continue
		}
		used[i] = true
		chain := geom2d.Contour{edges[i].from, edges[i].to}
		for {
			extended := false
			tail := chain[len(chain)-1]
			for j := range edges {
				if used[j] {
					continue
				}
				switch {
				case near(edges[j].from, tail):
					chain = append(chain, edges[j].to)
				case near(edges[j].to, tail):
					chain = append(chain, edges[j].from)
				default:
					continue
				}
				used[j] = true
				extended = true
				break
			}
			if !extended {
				break
			}
			if near(chain[len(chain)-1], chain[0]) && len(chain) >= 3 {
				break
			}
		}
		if len(chain) >= 3 && near(chain[len(chain)-1], chain[0]) {
			contours = append(contours, chain[:len(chain)-1])
		}
	}

	sort.Slice(contours, func(i, j int) bool {
		return contours[i].BoundingBox().Min.X < contours[j].BoundingBox().Min.X
	})
	return geom2d.PolygonSet{Contours: contours}
}
