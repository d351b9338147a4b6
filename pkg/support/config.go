// Package support is the external-facing surface of the tree-support
// generator: the configuration contract, error kinds, progress reporting,
// and the top-level Generate orchestration tying together border, volumes,
// contact, forest, and raster, per spec.md §4.1 and §6.
package support

import (
	"log"
	"math"

	"github.com/chazu/lignin/treesupport/pkg/border"
	"github.com/chazu/lignin/treesupport/pkg/geom2d"
)

// AdhesionType enumerates the supported build-plate adhesion strategies.
type AdhesionType int

const (
	AdhesionNone AdhesionType = iota
	AdhesionSkirt
	AdhesionBrim
	AdhesionRaft
)

// BuildplateShape enumerates the supported build-plate shapes.
type BuildplateShape int

const (
	BuildplateRectangular BuildplateShape = iota
	BuildplateElliptical
)

// SupportType selects whether branches may rest on the model's interior or
// must always reach the build plate, mirrored from pkg/forest so callers
// need only import pkg/support.
type SupportType int

const (
	SupportEverywhere SupportType = iota
	SupportBuildplateOnly
)

// Config is the Go struct form of spec.md §4.1's configuration table,
// supplied by the caller and treated as immutable for a run.
type Config struct {
	BranchRadius    float64 // mm, tip radius r0
	LayerHeight     float64 // mm
	XYDistance      float64 // mm, safety offset in plan
	SupportAngle    float64 // radians from vertical; >= pi/2 means unbounded
	RadiusAngle     float64 // radians, conical growth angle
	RadiusSample    float64 // mm, quantization step for the volumes cache
	BranchDistance  float64 // mm, candidate contact point grid spacing
	ZDistanceTop    float64 // mm
	ZDistanceBottom float64 // mm

	RoofEnabled bool
	RoofHeight  float64 // mm

	FloorEnabled bool
	FloorHeight  float64 // mm
	FloorSkip    int

	SupportType SupportType

	BuildplateShape BuildplateShape
	AdhesionType    AdhesionType
	AdhesionSize    float64 // mm

	LineWidth float64 // mm
	WallCount int

	MachineWidth float64 // mm
	MachineDepth float64 // mm
}

// MaxMove returns tan(support_angle) * layer_height in micrometres, the
// per-layer slope budget of spec.md §4.1; an angle at or past 90 degrees is
// treated as unbounded and reported as a very large value rather than Inf,
// so downstream integer geometry never has to special-case it.
func (c Config) MaxMove() geom2d.Coord {
	if c.SupportAngle >= math.Pi/2 {
		return math.MaxInt32
	}
	return mmToCoord(math.Tan(c.SupportAngle) * c.LayerHeight)
}

// RadiusStep returns the per-layer fractional radius growth past the tip,
// sin(radius_angle) * layer_height / r0, per spec.md §4.1.
func (c Config) RadiusStep() float64 {
	if c.BranchRadius <= 0 {
		return 0
	}
	return math.Sin(c.RadiusAngle) * c.LayerHeight / c.BranchRadius
}

// TipLayers returns the derived tip-taper layer count, branch_radius /
// layer_height, per spec.md §4.1.
func (c Config) TipLayers() int {
	if c.LayerHeight <= 0 {
		return 0
	}
	return int(math.Round(c.BranchRadius / c.LayerHeight))
}

func mmToCoord(mm float64) geom2d.Coord {
	return geom2d.Coord(math.Round(mm * float64(geom2d.MMToCoord)))
}

// Validate checks Config against spec.md §4.1's failure rules: an
// unrecognized buildplate_shape or adhesion_type is a warning that reduces
// to the default; everything else out of range is a *ConfigurationError.
func (c *Config) Validate() error {
	if c.BranchRadius <= 0 {
		return &ConfigurationError{Field: "branch_radius", Reason: "must be positive"}
	}
	if c.LayerHeight <= 0 {
		return &ConfigurationError{Field: "layer_height", Reason: "must be positive"}
	}
	if c.XYDistance < 0 {
		return &ConfigurationError{Field: "xy_distance", Reason: "must be non-negative"}
	}
	if c.SupportAngle < 0 || c.SupportAngle > math.Pi {
		return &ConfigurationError{Field: "support_angle", Reason: "must be within [0, pi]"}
	}
	if c.RadiusAngle < 0 || c.RadiusAngle > math.Pi/2 {
		return &ConfigurationError{Field: "radius_angle", Reason: "must be within [0, pi/2]"}
	}
	if c.RadiusSample <= 0 {
		return &ConfigurationError{Field: "radius_sample", Reason: "must be positive"}
	}
	if c.BranchDistance <= 0 {
		return &ConfigurationError{Field: "branch_distance", Reason: "must be positive"}
	}
	if c.ZDistanceTop < 0 {
		return &ConfigurationError{Field: "z_distance_top", Reason: "must be non-negative"}
	}
	if c.ZDistanceBottom < 0 {
		return &ConfigurationError{Field: "z_distance_bottom", Reason: "must be non-negative"}
	}
	if c.RoofEnabled && c.RoofHeight < 0 {
		return &ConfigurationError{Field: "roof_height", Reason: "must be non-negative"}
	}
	if c.FloorEnabled && c.FloorHeight < 0 {
		return &ConfigurationError{Field: "floor_height", Reason: "must be non-negative"}
	}
	if c.FloorEnabled && c.FloorSkip < 0 {
		return &ConfigurationError{Field: "floor_skip", Reason: "must be non-negative"}
	}
	if c.AdhesionSize < 0 {
		return &ConfigurationError{Field: "adhesion_size", Reason: "must be non-negative"}
	}
	if c.LineWidth <= 0 {
		return &ConfigurationError{Field: "line_width", Reason: "must be positive"}
	}
	if c.WallCount < 0 {
		return &ConfigurationError{Field: "wall_count", Reason: "must be non-negative"}
	}
	if c.MachineWidth <= 0 || c.MachineDepth <= 0 {
		return &ConfigurationError{Field: "machine_size", Reason: "must be positive"}
	}

	if c.BuildplateShape != BuildplateRectangular && c.BuildplateShape != BuildplateElliptical {
		log.Printf("support: unrecognized buildplate_shape %d, defaulting to rectangular", c.BuildplateShape)
		c.BuildplateShape = BuildplateRectangular
	}
	if c.AdhesionType != AdhesionNone && c.AdhesionType != AdhesionSkirt &&
		c.AdhesionType != AdhesionBrim && c.AdhesionType != AdhesionRaft {
		log.Printf("support: unrecognized adhesion_type %d, defaulting to none", c.AdhesionType)
		c.AdhesionType = AdhesionNone
		c.AdhesionSize = 0
	}

	return nil
}

// adhesionInset returns the plan-view inset the configured adhesion type
// imposes on the printable region, in micrometres.
func (c Config) adhesionInset() geom2d.Coord {
	if c.AdhesionType == AdhesionNone {
		return 0
	}
	return mmToCoord(c.AdhesionSize)
}

func (c Config) borderShape() border.Shape {
	if c.BuildplateShape == BuildplateElliptical {
		return border.ShapeElliptical
	}
	return border.ShapeRectangular
}
