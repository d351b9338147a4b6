package modelio

import (
	"math"
	"testing"

	"github.com/chazu/lignin/treesupport/pkg/geom2d"
)

func squareOutline(half geom2d.Coord) geom2d.PolygonSet {
	return geom2d.PolygonSet{Contours: []geom2d.Contour{{
		{X: -half, Y: -half}, {X: half, Y: -half}, {X: half, Y: half}, {X: -half, Y: half},
	}}}
}

func TestOverhangsEmptyForStraightWall(t *testing.T) {
	outlines := []geom2d.PolygonSet{
		squareOutline(5 * geom2d.MMToCoord),
		squareOutline(5 * geom2d.MMToCoord),
	}
	areas := Overhangs(outlines, 0.2, 40*math.Pi/180)
	if !areas[1].Empty() {
		t.Errorf("expected no overhang for a vertical wall, got %+v", areas[1])
	}
}

func TestOverhangsDetectsSuddenLedge(t *testing.T) {
	outlines := []geom2d.PolygonSet{
		squareOutline(5 * geom2d.MMToCoord),
		squareOutline(10 * geom2d.MMToCoord),
	}
	areas := Overhangs(outlines, 0.2, 40*math.Pi/180)
	if areas[1].Empty() {
		t.Errorf("expected an overhang region where the outline suddenly widens")
	}
}

func TestOverhangsLayerZeroIsAlwaysEmpty(t *testing.T) {
	outlines := []geom2d.PolygonSet{squareOutline(5 * geom2d.MMToCoord)}
	areas := Overhangs(outlines, 0.2, 40*math.Pi/180)
	if !areas[0].Empty() {
		t.Errorf("expected layer 0 to never be an overhang, got %+v", areas[0])
	}
}
