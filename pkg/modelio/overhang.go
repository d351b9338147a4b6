package modelio

import (
	"math"

	"github.com/chazu/lignin/treesupport/pkg/geom2d"
)

// Overhangs derives overhang_areas(mesh, ℓ) from a stack of per-layer
// outlines: the part of layer ℓ's outline that oversails layer ℓ-1's by
// more than what supportAngle would allow unsupported, per layer_height.
// Layer 0 is never an overhang — there is nothing below it to compare
// against.
func Overhangs(outlines []geom2d.PolygonSet, layerHeight, supportAngle float64) []geom2d.PolygonSet {
	areas := make([]geom2d.PolygonSet, len(outlines))
	if len(outlines) == 0 {
		return areas
	}

	maxOversail := geom2d.Coord(layerHeight * math.Tan(supportAngle) * float64(geom2d.MMToCoord))

	for layer := 1; layer < len(outlines); layer++ {
		supported := geom2d.Offset(outlines[layer-1], maxOversail)
		areas[layer] = geom2d.Difference(outlines[layer], supported)
	}
	return areas
}
