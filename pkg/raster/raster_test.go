package raster

import (
	"context"
	"testing"

	"github.com/chazu/lignin/treesupport/pkg/contact"
	"github.com/chazu/lignin/treesupport/pkg/forest"
	"github.com/chazu/lignin/treesupport/pkg/geom2d"
	"github.com/chazu/lignin/treesupport/pkg/volumes"
)

func buildEmptyCache(t *testing.T, numLayers int) *volumes.Cache {
	t.Helper()
	outline := func(layer int) geom2d.PolygonSet { return geom2d.PolygonSet{} }
	p := volumes.Params{NumLayers: numLayers, XYDistance: 300, RadiusSample: 250, MaxMove: 300, SmoothPasses: 1}
	cache, err := volumes.Build(context.Background(), outline, geom2d.PolygonSet{}, p, []geom2d.Coord{0})
	if err != nil {
		t.Fatalf("volumes.Build: %v", err)
	}
	return cache
}

func TestUniformCircleHasExpectedVertexCount(t *testing.T) {
	c := uniformCircle(1000)
	if len(c) != canonicalVertices {
		t.Errorf("uniformCircle vertex count = %d, want %d", len(c), canonicalVertices)
	}
}

func TestTipEllipseOrientationsHaveEqualArea(t *testing.T) {
	a := tipEllipse(1000, 0.5, false)
	b := tipEllipse(1000, 0.5, true)

	areaA := a.SignedArea2()
	areaB := b.SignedArea2()
	if areaA < 0 {
		areaA = -areaA
	}
	if areaB < 0 {
		areaB = -areaB
	}

	diff := areaA - areaB
	if diff < 0 {
		diff = -diff
	}
	if diff > areaA*0.01 {
		t.Errorf("tip ellipse orientations have unequal area: %.2f vs %.2f", areaA, areaB)
	}
}

func TestDrawLayerNoNodesProducesNoParts(t *testing.T) {
	f := forest.New()
	cache := buildEmptyCache(t, 3)
	outline := func(layer int) geom2d.PolygonSet { return geom2d.PolygonSet{} }

	result := DrawLayer(f, 0, cache, outline, Params{BranchRadius: 1000, TipLayers: 5, RadiusStep: 0.02, LayerHeight: 0.2, ZDistanceBottom: 0.2})
	if len(result.InfillParts) != 0 {
		t.Errorf("expected no infill parts for an empty layer, got %d", len(result.InfillParts))
	}
}

func TestDrawLayerSingleNodeProducesSupportPart(t *testing.T) {
	cache := buildEmptyCache(t, 2)
	outline := func(layer int) geom2d.PolygonSet { return geom2d.PolygonSet{} }

	// RoofLayersBelow < 0 keeps the node out of the roof region.
	seeds := []contact.Seed{{Position: geom2d.Point{0, 0}, Layer: 0, Radius: 1000, RoofLayersBelow: -1, ToBuildplate: true}}
	f, err := forest.Run(context.Background(), seeds, cache, forest.Params{
		MaxMove: 300, RadiusSample: 250, BranchRadius: 1000, TipLayers: 5, RadiusStep: 0.02,
	}, nil)
	if err != nil {
		t.Fatalf("forest.Run: %v", err)
	}

	result := DrawLayer(f, 0, cache, outline, Params{BranchRadius: 1000, TipLayers: 5, RadiusStep: 0.02, LayerHeight: 0.2, ZDistanceBottom: 0.2, LineWidth: 400, WallCount: 2})
	if len(result.InfillParts) == 0 {
		t.Fatalf("expected at least one infill part")
	}
	for _, part := range result.InfillParts {
		if part.LineWidth != 400 {
			t.Errorf("part.LineWidth = %d, want 400", part.LineWidth)
		}
		if part.WallCount != 2 {
			t.Errorf("part.WallCount = %d, want 2", part.WallCount)
		}
	}
}
