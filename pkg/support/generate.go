package support

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/chazu/lignin/treesupport/pkg/border"
	"github.com/chazu/lignin/treesupport/pkg/contact"
	"github.com/chazu/lignin/treesupport/pkg/forest"
	"github.com/chazu/lignin/treesupport/pkg/geom2d"
	"github.com/chazu/lignin/treesupport/pkg/raster"
	"github.com/chazu/lignin/treesupport/pkg/volumes"
)

// Mesh is one tree-support-enabled mesh: its overhang regions and its
// footprint AABB, per spec.md §6's overhang_areas(mesh, ℓ) and per-mesh
// settings. All meshes in a single Generate call share Config — a run is a
// print profile, not a per-object setting, which is how spec.md's meshes[i]
// .settings is exercised in practice for a single tree-support pass.
type Mesh struct {
	Overhangs contact.Overhangs
	AABB      geom2d.Box
}

// LayerPart is one connected support region tagged with print parameters.
type LayerPart struct {
	Polygon   geom2d.PolygonSet
	LineWidth geom2d.Coord
	WallCount int
}

// Layer is the drawCircles output for a single printed layer, per spec.md
// §6's outputs.
type Layer struct {
	Index         int
	InfillParts   []LayerPart
	SupportRoof   geom2d.PolygonSet
	SupportBottom geom2d.PolygonSet
}

// Result is the full output of a Generate call: spec.md §6's "per layer"
// outputs plus the two run-level scalars.
type Result struct {
	Layers []Layer
	// MaxFilledLayer is the highest layer index with any output, or -1 if
	// generation produced no support at all.
	MaxFilledLayer int
	Generated      bool
}

// Generate runs the whole pipeline — machine border, volumes, contact-point
// seeding, the top-down drop loop, and the circle rasterizer — for numLayers
// printed layers of layerOutlines, supporting every mesh in meshes under a
// single Config. It reports progress with spec.md §6's fixed stage
// weighting and honors ctx cancellation at every stage and layer boundary.
func Generate(ctx context.Context, cfg Config, numLayers int, layerOutlines volumes.LayerOutlines, meshes []Mesh, progress Progress) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if progress == nil {
		progress = noopProgress{}
	}

	overallTotal := collisionWeight + dropWeight*numLayers + drawWeight*numLayers

	select {
	case <-ctx.Done():
		return nil, &CancelledError{}
	default:
	}

	machineBorder, err := border.Build(border.Machine{
		Size:  geom2d.Point{X: mmToCoord(cfg.MachineWidth), Y: mmToCoord(cfg.MachineDepth)},
		Shape: cfg.borderShape(),
	}, cfg.adhesionInset())
	if err != nil {
		return nil, &GeometryError{Op: "border.Build", Layer: -1, Err: err}
	}

	volParams := volumes.Params{
		NumLayers:    numLayers,
		XYDistance:   mmToCoord(cfg.XYDistance),
		RadiusSample: mmToCoord(cfg.RadiusSample),
		MaxMove:      cfg.MaxMove(),
		SmoothPasses: 5, // per spec.md §4.3's avoidance(rq, ℓ) definition
	}
	radii := radiiFor(cfg, numLayers, volParams.RadiusSample)

	var cellsDone int64
	cellsTotal := int64(numLayers * len(radii))
	if cellsTotal == 0 {
		cellsTotal = 1
	}
	var progressMu sync.Mutex
	volParams.OnLayerDone = func() {
		progressMu.Lock()
		defer progressMu.Unlock()
		done := atomic.AddInt64(&cellsDone, 1)
		scaled := int(float64(done) / float64(cellsTotal) * collisionWeight)
		progress.Report("support", scaled, overallTotal)
	}

	cache, err := volumes.Build(ctx, layerOutlines, machineBorder, volParams, radii)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &CancelledError{}
		}
		return nil, &GeometryError{Op: "volumes.Build", Layer: -1, Err: err}
	}
	progress.Report("support", collisionWeight, overallTotal)

	seedParams := contact.Params{
		NumLayers:      numLayers,
		LayerHeight:    cfg.LayerHeight,
		ZDistanceTop:   cfg.ZDistanceTop,
		BranchDistance: mmToCoord(cfg.BranchDistance),
		SupportAngle:   cfg.SupportAngle,
		BranchRadius:   mmToCoord(cfg.BranchRadius),
		RoofEnabled:    cfg.RoofEnabled,
		RoofLayers:     roofLayers(cfg),
	}

	var seeds []contact.Seed
	for _, m := range meshes {
		seedParams.AABB = m.AABB
		collision0 := func(layer int) geom2d.PolygonSet { return cache.Collision(0, layer) }
		seeds = append(seeds, contact.Seeds(m.Overhangs, collision0, seedParams)...)
	}

	forestParams := forest.Params{
		MaxMove:      volParams.MaxMove,
		RadiusSample: volParams.RadiusSample,
		BranchRadius: mmToCoord(cfg.BranchRadius),
		TipLayers:    cfg.TipLayers(),
		RadiusStep:   cfg.RadiusStep(),
		SupportType:  forestSupportType(cfg.SupportType),
		PushEpsilon:  10,
	}

	progressAdapter := adapterProgress{
		report: func(done, total int) {
			scaled := collisionWeight + scaleWeight(done, total, dropWeight*numLayers)
			progress.Report("support", scaled, overallTotal)
		},
	}

	f, err := forest.Run(ctx, seeds, cache, forestParams, progressAdapter)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &CancelledError{}
		}
		return nil, &GeometryError{Op: "forest.Run", Layer: -1, Err: err}
	}
	cache.EvictAboveRadius(0)

	rasterParams := raster.Params{
		BranchRadius:    forestParams.BranchRadius,
		TipLayers:       forestParams.TipLayers,
		RadiusStep:      forestParams.RadiusStep,
		LineWidth:       mmToCoord(cfg.LineWidth),
		WallCount:       cfg.WallCount,
		LayerHeight:     cfg.LayerHeight,
		ZDistanceBottom: cfg.ZDistanceBottom,
		FloorEnabled:    cfg.FloorEnabled,
		FloorHeightMM:   cfg.FloorHeight,
		FloorSkip:       cfg.FloorSkip,
	}

	result := &Result{Layers: make([]Layer, 0, f.MaxLayer()+1), MaxFilledLayer: -1}
	for layer := 0; layer <= f.MaxLayer(); layer++ {
		select {
		case <-ctx.Done():
			return nil, &CancelledError{}
		default:
		}

		lr := raster.DrawLayer(f, layer, cache, layerOutlines, rasterParams)
		if len(lr.InfillParts) == 0 && lr.SupportRoof.Empty() && lr.SupportFloor.Empty() {
			progress.Report("support", collisionWeight+dropWeight*numLayers+scaleWeight(layer+1, numLayers, drawWeight*numLayers), overallTotal)
			continue
		}

		parts := make([]LayerPart, len(lr.InfillParts))
		for i, p := range lr.InfillParts {
			parts[i] = LayerPart{Polygon: p.Polygon, LineWidth: p.LineWidth, WallCount: p.WallCount}
		}
		result.Layers = append(result.Layers, Layer{
			Index:         layer,
			InfillParts:   parts,
			SupportRoof:   lr.SupportRoof,
			SupportBottom: lr.SupportFloor,
		})
		result.MaxFilledLayer = layer

		progress.Report("support", collisionWeight+dropWeight*numLayers+scaleWeight(layer+1, numLayers, drawWeight*numLayers), overallTotal)
	}

	result.Generated = true
	return result, nil
}

// radiiFor builds the quantized-radius ladder the volumes cache must build
// columns for: every multiple of radiusSample from 0 up to r_max, per
// spec.md §4.3's "clamped to [0, r_max] where r_max = branch_radius * (1 +
// n_layers * radius_step)".
func radiiFor(cfg Config, numLayers int, radiusSample geom2d.Coord) []geom2d.Coord {
	if radiusSample <= 0 {
		return []geom2d.Coord{0}
	}
	rMax := mmToCoord(cfg.BranchRadius * (1 + float64(numLayers)*cfg.RadiusStep()))
	var radii []geom2d.Coord
	for r := geom2d.Coord(0); r <= rMax; r += radiusSample {
		radii = append(radii, r)
	}
	if len(radii) == 0 || radii[len(radii)-1] != rMax {
		radii = append(radii, rMax)
	}
	return radii
}

func roofLayers(cfg Config) int {
	if !cfg.RoofEnabled || cfg.LayerHeight <= 0 {
		return 0
	}
	return int(cfg.RoofHeight/cfg.LayerHeight + 0.5)
}

func forestSupportType(t SupportType) forest.SupportType {
	if t == SupportBuildplateOnly {
		return forest.BuildplateOnly
	}
	return forest.Everywhere
}

func scaleWeight(done, total, weight int) int {
	if total <= 0 {
		return 0
	}
	return int(float64(done) / float64(total) * float64(weight))
}

// adapterProgress adapts a closure to forest.Progress's interface shape.
type adapterProgress struct {
	report func(done, total int)
}

func (a adapterProgress) Report(stage string, done, total int) {
	a.report(done, total)
}
