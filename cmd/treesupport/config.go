package main

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/chazu/lignin/treesupport/pkg/support"
)

// fileConfig is the TOML document shape a user edits on disk. Angles are
// expressed in degrees there and converted to radians when building a
// support.Config, since degrees are what a print-profile author expects
// to type.
type fileConfig struct {
	BranchRadius    float64 `toml:"branch_radius"`
	LayerHeight     float64 `toml:"layer_height"`
	XYDistance      float64 `toml:"xy_distance"`
	SupportAngleDeg float64 `toml:"support_angle"`
	RadiusAngleDeg  float64 `toml:"radius_angle"`
	RadiusSample    float64 `toml:"radius_sample"`
	BranchDistance  float64 `toml:"branch_distance"`
	ZDistanceTop    float64 `toml:"z_distance_top"`
	ZDistanceBottom float64 `toml:"z_distance_bottom"`

	RoofEnabled bool    `toml:"roof_enabled"`
	RoofHeight  float64 `toml:"roof_height"`

	FloorEnabled bool    `toml:"floor_enabled"`
	FloorHeight  float64 `toml:"floor_height"`
	FloorSkip    int     `toml:"floor_skip"`

	SupportType      string `toml:"support_type"`
	BuildplateShape  string `toml:"buildplate_shape"`
	AdhesionType     string `toml:"adhesion_type"`
	AdhesionSize     float64 `toml:"adhesion_size"`

	LineWidth float64 `toml:"line_width"`
	WallCount int     `toml:"wall_count"`

	MachineWidth float64 `toml:"machine_width"`
	MachineDepth float64 `toml:"machine_depth"`
}

func loadConfig(path string) (support.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return support.Config{}, fmt.Errorf("read config: %w", err)
	}

	var fc fileConfig
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fc); err != nil {
		return support.Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg := support.Config{
		BranchRadius:    fc.BranchRadius,
		LayerHeight:     fc.LayerHeight,
		XYDistance:      fc.XYDistance,
		SupportAngle:    fc.SupportAngleDeg * math.Pi / 180,
		RadiusAngle:     fc.RadiusAngleDeg * math.Pi / 180,
		RadiusSample:    fc.RadiusSample,
		BranchDistance:  fc.BranchDistance,
		ZDistanceTop:    fc.ZDistanceTop,
		ZDistanceBottom: fc.ZDistanceBottom,
		RoofEnabled:     fc.RoofEnabled,
		RoofHeight:      fc.RoofHeight,
		FloorEnabled:    fc.FloorEnabled,
		FloorHeight:     fc.FloorHeight,
		FloorSkip:       fc.FloorSkip,
		SupportType:     parseSupportType(fc.SupportType),
		BuildplateShape: parseBuildplateShape(fc.BuildplateShape),
		AdhesionType:    parseAdhesionType(fc.AdhesionType),
		AdhesionSize:    fc.AdhesionSize,
		LineWidth:       fc.LineWidth,
		WallCount:       fc.WallCount,
		MachineWidth:    fc.MachineWidth,
		MachineDepth:    fc.MachineDepth,
	}
	return cfg, nil
}

func parseSupportType(s string) support.SupportType {
	if s == "buildplate_only" {
		return support.SupportBuildplateOnly
	}
	return support.SupportEverywhere
}

func parseBuildplateShape(s string) support.BuildplateShape {
	if s == "elliptical" {
		return support.BuildplateElliptical
	}
	return support.BuildplateRectangular
}

func parseAdhesionType(s string) support.AdhesionType {
	switch s {
	case "skirt":
		return support.AdhesionSkirt
	case "brim":
		return support.AdhesionBrim
	case "raft":
		return support.AdhesionRaft
	default:
		return support.AdhesionNone
	}
}
