package mst

import (
	"testing"

	"github.com/chazu/lignin/treesupport/pkg/geom2d"
)

func TestBuildLine(t *testing.T) {
	pts := []geom2d.Point{{0, 0}, {10, 0}, {20, 0}}
	tree := Build(pts)

	if got := tree.Degree(geom2d.Point{0, 0}); got != 1 {
		t.Errorf("degree(0,0) = %d, want 1", got)
	}
	if got := tree.Degree(geom2d.Point{10, 0}); got != 2 {
		t.Errorf("degree(10,0) = %d, want 2", got)
	}
	if got := tree.Degree(geom2d.Point{20, 0}); got != 1 {
		t.Errorf("degree(20,0) = %d, want 1", got)
	}
}

func TestBuildSinglePoint(t *testing.T) {
	tree := Build([]geom2d.Point{{5, 5}})
	if got := tree.Degree(geom2d.Point{5, 5}); got != 0 {
		t.Errorf("degree = %d, want 0", got)
	}
}

func TestBuildEmpty(t *testing.T) {
	tree := Build(nil)
	if tree.Degree(geom2d.Point{0, 0}) != 0 {
		t.Errorf("expected zero degree on empty tree")
	}
}

func TestBuildDedupesCoincidentPoints(t *testing.T) {
	pts := []geom2d.Point{{0, 0}, {0, 0}, {10, 0}}
	tree := Build(pts)
	if got := tree.Degree(geom2d.Point{0, 0}); got != 1 {
		t.Errorf("degree(0,0) after dedupe = %d, want 1", got)
	}
}

func TestAdjacentUnknownPointReturnsNil(t *testing.T) {
	tree := Build([]geom2d.Point{{0, 0}, {1, 1}})
	if adj := tree.Adjacent(geom2d.Point{99, 99}); adj != nil {
		t.Errorf("Adjacent on unknown point = %v, want nil", adj)
	}
}

func TestBuildIsConnected(t *testing.T) {
	pts := []geom2d.Point{{0, 0}, {5, 5}, {-5, 5}, {5, -5}, {-5, -5}}
	tree := Build(pts)

	visited := map[geom2d.Point]bool{}
	var walk func(p geom2d.Point)
	walk = func(p geom2d.Point) {
		if visited[p] {
			return
		}
		visited[p] = true
		for _, n := range tree.Adjacent(p) {
			walk(n)
		}
	}
	walk(pts[0])

	if len(visited) != len(pts) {
		t.Errorf("MST is not connected: visited %d of %d points", len(visited), len(pts))
	}
}

func TestBuildEdgeCountIsNMinusOne(t *testing.T) {
	pts := []geom2d.Point{{0, 0}, {3, 0}, {3, 3}, {0, 3}, {6, 6}}
	tree := Build(pts)

	edges := 0
	for _, p := range pts {
		edges += tree.Degree(p)
	}
	edges /= 2

	if edges != len(pts)-1 {
		t.Errorf("edge count = %d, want %d", edges, len(pts)-1)
	}
}
