// Package contact generates the initial set of forest nodes: the points on
// each layer where a branch first touches an overhang region, per spec.md
// §4.5.
package contact

import (
	"math"
	"sort"

	"github.com/chazu/lignin/treesupport/pkg/geom2d"
)

// gridRotation is the empirically-chosen candidate-grid rotation (radians)
// that gives better coverage of diagonal overhang edges, per spec.md §4.5a.
const gridRotation = 22.0 * math.Pi / 180.0

// Overhangs supplies the overhang region of a mesh on a given layer.
type Overhangs func(layer int) geom2d.PolygonSet

// Params are the subset of the configuration contract (spec.md §4.1) seeding
// needs.
type Params struct {
	NumLayers      int
	LayerHeight    float64
	ZDistanceTop   float64
	BranchDistance geom2d.Coord
	SupportAngle   float64 // radians from vertical
	BranchRadius   geom2d.Coord
	RoofEnabled    bool
	RoofLayers     int
	AABB           geom2d.Box
}

// Seed is a single contact point: a leaf node not yet placed in a forest
// arena.
type Seed struct {
	Position        geom2d.Point
	Layer           int
	Radius          geom2d.Coord
	DistanceToTop   int
	SkinDirection   bool
	RoofLayersBelow int
	ToBuildplate    bool
}

// Seeds computes the full set of contact points for one mesh's overhang
// regions against its collision(0, ·) column, sorted by layer descending
// (§4.5 step 4; callers merging seeds from multiple meshes should
// re-sort the concatenation the same way).
func Seeds(overhang Overhangs, collision0 func(layer int) geom2d.PolygonSet, p Params) []Seed {
	zTopLayers := int(math.Ceil(p.ZDistanceTop/p.LayerHeight)) + 1
	halfOverhangDistance := p.BranchDistance / 2
	edgeMargin := geom2d.Coord(float64(p.BranchDistance) / 2 * math.Tan(p.SupportAngle) * p.LayerHeight)
	expandedAABB := p.AABB.Expand(edgeMargin)
	center := p.AABB.Center()

	var seeds []Seed

	for l := 1; l+zTopLayers < p.NumLayers; l++ {
		srcLayer := l + zTopLayers
		region := overhang(srcLayer)
		if region.Empty() {
			continue
		}

		roofLayersBelow := 0
		if p.RoofEnabled {
			roofLayersBelow = p.RoofLayers
		}
		skinDirection := (srcLayer)%2 == 1

		coll0 := collision0(l)

		for _, part := range geom2d.SplitParts(region) {
			accepted := seedPart(part, coll0, center, halfOverhangDistance, expandedAABB, p)
			for i := range accepted {
				accepted[i].Layer = l
				accepted[i].Radius = p.BranchRadius
				accepted[i].RoofLayersBelow = roofLayersBelow
				accepted[i].SkinDirection = skinDirection
				accepted[i].ToBuildplate = true
			}
			seeds = append(seeds, accepted...)
		}
	}

	sort.SliceStable(seeds, func(i, j int) bool { return seeds[i].Layer > seeds[j].Layer })
	return seeds
}

func seedPart(part, collision0 geom2d.PolygonSet, aabbCenter geom2d.Point, halfOverhangDistance geom2d.Coord, expandedAABB geom2d.Box, p Params) []Seed {
	var accepted []Seed

	for _, c := range gridCandidates(aabbCenter, p.BranchDistance, expandedAABB) {
		accept, ok := tryAcceptCandidate(c, part, collision0, halfOverhangDistance)
		if !ok {
			continue
		}
		accepted = append(accepted, Seed{Position: accept})
	}

	if len(accepted) == 0 {
		fallback := geom2d.MoveInside(part, aabbCenter, p.BranchDistance)
		if !geom2d.Inside(collision0, fallback) {
			accepted = append(accepted, Seed{Position: fallback})
		}
	}

	return accepted
}

func tryAcceptCandidate(c geom2d.Point, part, collision0 geom2d.PolygonSet, halfOverhangDistance geom2d.Coord) (geom2d.Point, bool) {
	if geom2d.Inside(part, c) {
		if !geom2d.Inside(collision0, c) {
			return c, true
		}
		return geom2d.Point{}, false
	}

	nearest, distSq := geom2d.NearestPointOnBoundary(part, c)
	if distSq > float64(halfOverhangDistance)*float64(halfOverhangDistance) {
		return geom2d.Point{}, false
	}
	moved := geom2d.MoveInside(part, nearest, halfOverhangDistance)
	if geom2d.Inside(collision0, moved) {
		return geom2d.Point{}, false
	}
	return moved, true
}

// gridCandidates returns a grid of candidate points spaced at spacing,
// rotated by gridRotation about center, restricted to bounds.
func gridCandidates(center geom2d.Point, spacing geom2d.Coord, bounds geom2d.Box) []geom2d.Point {
	if spacing <= 0 {
		return nil
	}
	cos, sin := math.Cos(gridRotation), math.Sin(gridRotation)

	// Cover the bounds' diagonal in rotated space so no corner is missed.
	diag := geom2d.Coord(math.Hypot(float64(bounds.Max.X-bounds.Min.X), float64(bounds.Max.Y-bounds.Min.Y)))
	steps := int(diag/spacing) + 2

	var out []geom2d.Point
	for i := -steps; i <= steps; i++ {
		for j := -steps; j <= steps; j++ {
			lx := float64(i) * float64(spacing)
			ly := float64(j) * float64(spacing)
			rx := lx*cos - ly*sin
			ry := lx*sin + ly*cos
			p := geom2d.Point{
				X: center.X + geom2d.Coord(rx),
				Y: center.Y + geom2d.Coord(ry),
			}
			if bounds.Contains(p) {
				out = append(out, p)
			}
		}
	}
	return out
}
