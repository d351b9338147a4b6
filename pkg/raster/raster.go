// Package raster converts a finished forest into per-layer polygon output:
// normal support, support roof, and support floor regions, per spec.md
// §4.7's drawCircles.
package raster

import (
	"math"

	"github.com/chazu/lignin/treesupport/pkg/forest"
	"github.com/chazu/lignin/treesupport/pkg/geom2d"
	"github.com/chazu/lignin/treesupport/pkg/volumes"
)

// canonicalVertices is the vertex count of the canonical support circle,
// per spec.md §4.7 step 1.
const canonicalVertices = 10

// floorRimOffset is the small outward offset applied to the accumulated
// floor union before subtracting it back out of the support layer, per
// spec.md §4.7 step 6 ("union offset outward by 10 units").
const floorRimOffset = 10

// Params are the subset of the configuration contract the rasterizer needs.
type Params struct {
	BranchRadius    geom2d.Coord
	TipLayers       int
	RadiusStep      float64
	LineWidth       geom2d.Coord
	WallCount       int
	LayerHeight     float64
	ZDistanceBottom float64
	FloorEnabled    bool
	FloorHeightMM   float64
	FloorSkip       int
}

// Part is one connected support region tagged with the wall parameters it
// should be printed with.
type Part struct {
	Polygon   geom2d.PolygonSet
	LineWidth geom2d.Coord
	WallCount int
}

// LayerResult is the drawCircles output for a single layer.
type LayerResult struct {
	Layer        int
	InfillParts  []Part
	SupportRoof  geom2d.PolygonSet
	SupportFloor geom2d.PolygonSet
}

// DrawLayer renders every alive node on layer into support/roof/floor
// regions. cache and layerOutlines back the collision gap-carving and
// floor-intersection steps.
func DrawLayer(f *forest.Forest, layer int, cache *volumes.Cache, layerOutlines volumes.LayerOutlines, p Params) LayerResult {
	indices := f.AliveLayerNodes(layer)

	var supportPolys, roofPolys []geom2d.PolygonSet
	for _, idx := range indices {
		n := f.Node(idx)
		poly := nodePolygon(*n, p)
		if n.RoofLayersBelow >= 0 {
			roofPolys = append(roofPolys, poly)
		} else {
			supportPolys = append(supportPolys, poly)
		}
	}

	support := geom2d.Union(supportPolys...)
	roof := geom2d.Union(roofPolys...)
	support = geom2d.Difference(support, roof)

	gapLayer := layer - int(math.Ceil(p.ZDistanceBottom/p.LayerHeight)) + 1
	if gapLayer < 0 {
		gapLayer = 0
	}
	gapCollision := cache.Collision(0, gapLayer)
	support = geom2d.Difference(support, gapCollision)
	roof = geom2d.Difference(roof, gapCollision)

	support = geom2d.Simplify(support)

	var floor geom2d.PolygonSet
	if p.FloorEnabled {
		support, floor = carveFloor(support, layer, layerOutlines, p)
	}

	var parts []Part
	for _, part := range geom2d.SplitParts(support) {
		parts = append(parts, Part{Polygon: part, LineWidth: p.LineWidth, WallCount: p.WallCount})
	}

	return LayerResult{
		Layer:        layer,
		InfillParts:  parts,
		SupportRoof:  roof,
		SupportFloor: floor,
	}
}

// nodePolygon computes a single node's footprint polygon, tapering through
// a chiral ellipse across the tip region and growing conically thereafter,
// per spec.md §4.7 step 2.
func nodePolygon(n forest.Node, p Params) geom2d.PolygonSet {
	var c geom2d.Contour
	if p.TipLayers > 0 && n.DistanceToTop < p.TipLayers {
		scale := float64(n.DistanceToTop+1) / float64(p.TipLayers)
		c = tipEllipse(p.BranchRadius, scale, n.SkinDirection)
	} else {
		growth := 1 + float64(n.DistanceToTop-p.TipLayers)*p.RadiusStep
		c = uniformCircle(geom2d.Coord(float64(p.BranchRadius) * growth))
	}
	c = translate(c, n.Position)
	return geom2d.PolygonSet{Contours: []geom2d.Contour{c}}
}

// tipEllipse returns a canonical-circle-derived ellipse scaled by scale,
// with its major/minor axes swapped depending on skinDirection. The two
// orientations are area-equal and rotated 90° apart, per spec.md §9's note
// that the two skin orientations must produce ellipses of equal area.
func tipEllipse(radius geom2d.Coord, scale float64, skinDirection bool) geom2d.Contour {
	const majorFactor = 1.4
	const minorFactor = 1.0 / majorFactor

	xFactor, yFactor := majorFactor, minorFactor
	if skinDirection {
		xFactor, yFactor = minorFactor, majorFactor
	}

	base := uniformCircle(radius)
	out := make(geom2d.Contour, len(base))
	for i, pt := range base {
		x, y := pt.Vec()
		out[i] = geom2d.Point{
			X: geom2d.Coord(x * scale * xFactor),
			Y: geom2d.Coord(y * scale * yFactor),
		}
	}
	return out
}

// uniformCircle returns the canonical support circle of the given radius,
// centred at the origin.
func uniformCircle(radius geom2d.Coord) geom2d.Contour {
	c := make(geom2d.Contour, canonicalVertices)
	for i := 0; i < canonicalVertices; i++ {
		theta := 2 * math.Pi * float64(i) / float64(canonicalVertices)
		c[i] = geom2d.Point{
			X: geom2d.Coord(float64(radius) * math.Cos(theta)),
			Y: geom2d.Coord(float64(radius) * math.Sin(theta)),
		}
	}
	return c
}

func translate(c geom2d.Contour, by geom2d.Point) geom2d.Contour {
	out := make(geom2d.Contour, len(c))
	for i, p := range c {
		out[i] = p.Add(by)
	}
	return out
}

// carveFloor implements spec.md §4.7 step 6: accumulates the intersection
// of the support layer with the model outline at successive depths below,
// unions those samples, and subtracts a slightly-expanded version of that
// union from the support layer to leave the floor region behind.
func carveFloor(support geom2d.PolygonSet, layer int, layerOutlines volumes.LayerOutlines, p Params) (geom2d.PolygonSet, geom2d.PolygonSet) {
	zGapLayers := int(math.Ceil(p.ZDistanceBottom / p.LayerHeight))
	floorHeightLayers := int(math.Round(p.FloorHeightMM / p.LayerHeight))
	skip := p.FloorSkip
	if skip <= 0 {
		skip = 1
	}

	sampleDepths := make([]int, 0, floorHeightLayers/skip+2)
	for d := 0; d <= floorHeightLayers; d += skip {
		sampleDepths = append(sampleDepths, d)
	}
	if len(sampleDepths) == 0 || sampleDepths[len(sampleDepths)-1] != floorHeightLayers {
		sampleDepths = append(sampleDepths, floorHeightLayers)
	}

	var samples []geom2d.PolygonSet
	for _, depth := range sampleDepths {
		srcLayer := layer - depth - zGapLayers
		if srcLayer < 0 {
			continue
		}
		outline := layerOutlines(srcLayer)
		samples = append(samples, geom2d.Intersection(support, outline))
	}

	floor := geom2d.Union(samples...)
	rim := geom2d.Offset(floor, floorRimOffset)
	remaining := geom2d.Difference(support, rim)
	return remaining, floor
}
