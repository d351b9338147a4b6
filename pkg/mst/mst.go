// Package mst builds a Euclidean minimum-spanning tree over a set of 2D
// points and exposes it as an adjacency lookup. It is used only for
// adjacency during the drop loop's merge-and-move phase, never for edge
// weights, so Prim's algorithm in its simplest O(|P|²) form is sufficient:
// the node counts per layer are small.
package mst

import (
	"sort"

	"github.com/chazu/lignin/treesupport/pkg/geom2d"
)

// Tree is a Euclidean minimum spanning tree over a fixed point set,
// answering "which other points is p directly joined to".
type Tree struct {
	points []geom2d.Point
	index  map[geom2d.Point]int
	adj    [][]int
}

// Build constructs the MST over points. Duplicate points are de-duplicated
// before building (an MST has no meaning over coincident points). Ties in
// edge weight are broken by lexicographic order of the candidate endpoint,
// making the result deterministic across runs and worker counts.
func Build(points []geom2d.Point) *Tree {
	uniq := dedupe(points)
	n := len(uniq)

	t := &Tree{
		points: uniq,
		index:  make(map[geom2d.Point]int, n),
		adj:    make([][]int, n),
	}
	for i, p := range uniq {
		t.index[p] = i
	}
	if n < 2 {
		return t
	}

	inTree := make([]bool, n)
	minDist := make([]float64, n)
	minFrom := make([]int, n)
	for i := range minDist {
		minDist[i] = -1
		minFrom[i] = -1
	}

	inTree[0] = true
	updateFrontier(uniq, 0, inTree, minDist, minFrom)

	for added := 1; added < n; added++ {
		next := pickNext(uniq, inTree, minDist)
		if next < 0 {
			break
		}
		inTree[next] = true
		from := minFrom[next]
		if from >= 0 {
			t.adj[next] = append(t.adj[next], from)
			t.adj[from] = append(t.adj[from], next)
		}
		updateFrontier(uniq, next, inTree, minDist, minFrom)
	}

	for i := range t.adj {
		sort.Slice(t.adj[i], func(a, b int) bool {
			return lessPoint(uniq[t.adj[i][a]], uniq[t.adj[i][b]])
		})
	}
	return t
}

// Adjacent returns the points directly connected to p in the tree, or nil
// if p is not a member of the point set the tree was built from.
func (t *Tree) Adjacent(p geom2d.Point) []geom2d.Point {
	i, ok := t.index[p]
	if !ok {
		return nil
	}
	out := make([]geom2d.Point, len(t.adj[i]))
	for k, j := range t.adj[i] {
		out[k] = t.points[j]
	}
	return out
}

// Degree returns the number of tree neighbours of p.
func (t *Tree) Degree(p geom2d.Point) int {
	i, ok := t.index[p]
	if !ok {
		return 0
	}
	return len(t.adj[i])
}

func updateFrontier(pts []geom2d.Point, added int, inTree []bool, minDist []float64, minFrom []int) {
	for j, p := range pts {
		if inTree[j] {
			continue
		}
		d := pts[added].DistSq(p)
		if minDist[j] < 0 || d < minDist[j] {
			minDist[j] = d
			minFrom[j] = added
		} else if d == minDist[j] && minFrom[j] >= 0 && lessPoint(pts[added], pts[minFrom[j]]) {
			minFrom[j] = added
		}
	}
}

func pickNext(pts []geom2d.Point, inTree []bool, minDist []float64) int {
	best := -1
	for j := range pts {
		if inTree[j] || minDist[j] < 0 {
			continue
		}
		if best < 0 || minDist[j] < minDist[best] ||
			(minDist[j] == minDist[best] && lessPoint(pts[j], pts[best])) {
			best = j
		}
	}
	return best
}

func lessPoint(a, b geom2d.Point) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Y < b.Y
}

func dedupe(points []geom2d.Point) []geom2d.Point {
	seen := make(map[geom2d.Point]bool, len(points))
	out := make([]geom2d.Point, 0, len(points))
	for _, p := range points {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return lessPoint(out[i], out[j]) })
	return out
}
