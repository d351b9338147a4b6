package support

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/chazu/lignin/treesupport/pkg/contact"
	"github.com/chazu/lignin/treesupport/pkg/geom2d"
)

// funcProgress adapts a plain func to the Progress interface.
type funcProgress func(stage string, done, total int)

func (f funcProgress) Report(stage string, done, total int) { f(stage, done, total) }

func baseConfig() Config {
	return Config{
		BranchRadius:    1,
		LayerHeight:     0.2,
		XYDistance:      0.3,
		SupportAngle:    40 * math.Pi / 180,
		RadiusAngle:     10 * math.Pi / 180,
		RadiusSample:    0.25,
		BranchDistance:  2,
		ZDistanceTop:    0.2,
		ZDistanceBottom: 0.2,
		LineWidth:       0.4,
		WallCount:       1,
		MachineWidth:    200,
		MachineDepth:    200,
	}
}

func TestValidateAcceptsBaseConfig(t *testing.T) {
	cfg := baseConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejectsNonPositiveBranchRadius(t *testing.T) {
	cfg := baseConfig()
	cfg.BranchRadius = 0
	var confErr *ConfigurationError
	if err := cfg.Validate(); !errors.As(err, &confErr) {
		t.Fatalf("expected *ConfigurationError, got %v", err)
	}
}

func TestValidateRejectsNegativeXYDistance(t *testing.T) {
	cfg := baseConfig()
	cfg.XYDistance = -1
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected an error for negative xy_distance")
	}
}

func TestValidateDefaultsUnknownBuildplateShape(t *testing.T) {
	cfg := baseConfig()
	cfg.BuildplateShape = BuildplateShape(99)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.BuildplateShape != BuildplateRectangular {
		t.Errorf("expected unknown buildplate_shape to default to rectangular, got %v", cfg.BuildplateShape)
	}
}

func TestValidateDefaultsUnknownAdhesionType(t *testing.T) {
	cfg := baseConfig()
	cfg.AdhesionType = AdhesionType(99)
	cfg.AdhesionSize = 5
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.AdhesionType != AdhesionNone || cfg.AdhesionSize != 0 {
		t.Errorf("expected unknown adhesion_type to default to none with zero size, got %v/%v", cfg.AdhesionType, cfg.AdhesionSize)
	}
}

func TestMaxMoveUnboundedPastRightAngle(t *testing.T) {
	cfg := baseConfig()
	cfg.SupportAngle = math.Pi / 2
	if cfg.MaxMove() != math.MaxInt32 {
		t.Errorf("expected unbounded max_move at support_angle = pi/2")
	}
}

func TestTipLayersDerivedFromRadiusOverLayerHeight(t *testing.T) {
	cfg := baseConfig()
	cfg.BranchRadius = 1
	cfg.LayerHeight = 0.2
	if got, want := cfg.TipLayers(), 5; got != want {
		t.Errorf("TipLayers() = %d, want %d", got, want)
	}
}

func TestGenerateRejectsInvalidConfig(t *testing.T) {
	cfg := baseConfig()
	cfg.LayerHeight = 0
	outline := func(layer int) geom2d.PolygonSet { return geom2d.PolygonSet{} }
	_, err := Generate(context.Background(), cfg, 10, outline, nil, nil)
	var confErr *ConfigurationError
	if !errors.As(err, &confErr) {
		t.Fatalf("expected *ConfigurationError, got %v", err)
	}
}

func TestGenerateRespectsPreCancelledContext(t *testing.T) {
	cfg := baseConfig()
	outline := func(layer int) geom2d.PolygonSet { return geom2d.PolygonSet{} }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Generate(ctx, cfg, 10, outline, nil, nil)
	var cancelled *CancelledError
	if !errors.As(err, &cancelled) {
		t.Fatalf("expected *CancelledError, got %v", err)
	}
}

func TestGenerateFlatOverhangProducesSupport(t *testing.T) {
	cfg := baseConfig()
	numLayers := 12

	// A 20mm-wide square overhang appears only at the topmost layer;
	// no model outline elsewhere, so nothing else obstructs the drop.
	overhangLayer := numLayers - 1
	square := geom2d.Contour{
		{X: -10 * geom2d.MMToCoord, Y: -10 * geom2d.MMToCoord},
		{X: 10 * geom2d.MMToCoord, Y: -10 * geom2d.MMToCoord},
		{X: 10 * geom2d.MMToCoord, Y: 10 * geom2d.MMToCoord},
		{X: -10 * geom2d.MMToCoord, Y: 10 * geom2d.MMToCoord},
	}
	overhang := func(layer int) geom2d.PolygonSet {
		if layer == overhangLayer {
			return geom2d.PolygonSet{Contours: []geom2d.Contour{square}}
		}
		return geom2d.PolygonSet{}
	}
	outline := func(layer int) geom2d.PolygonSet { return geom2d.PolygonSet{} }

	meshes := []Mesh{{
		Overhangs: contact.Overhangs(overhang),
		AABB:      geom2d.Box{Min: geom2d.Point{X: -10 * geom2d.MMToCoord, Y: -10 * geom2d.MMToCoord}, Max: geom2d.Point{X: 10 * geom2d.MMToCoord, Y: 10 * geom2d.MMToCoord}},
	}}

	var lastTotal int
	progress := funcProgress(func(stage string, done, total int) { lastTotal = total })

	result, err := Generate(context.Background(), cfg, numLayers, outline, meshes, progress)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !result.Generated {
		t.Fatalf("expected Generated = true")
	}
	if len(result.Layers) == 0 {
		t.Fatalf("expected at least one populated layer")
	}
	if lastTotal == 0 {
		t.Errorf("expected progress reporting to have run")
	}
}
