// Package checkpoint serializes a finished support.Result to and from
// msgpack, the artifact handed to the downstream toolpath/G-code stage
// spec.md §1 names as an external collaborator this module does not
// implement.
package checkpoint

import (
	"io"

	"github.com/samber/lo"
	"github.com/ugorji/go/codec"

	"github.com/chazu/lignin/treesupport/pkg/geom2d"
	"github.com/chazu/lignin/treesupport/pkg/support"
)

var handle = &codec.MsgpackHandle{}

// point and polygonSet mirror geom2d's shapes with exported,
// codec-visible field names, so the wire format doesn't depend on
// geom2d.PolygonSet's internal layout staying stable.
type point struct {
	X, Y geom2d.Coord
}

type polygonSet struct {
	Contours [][]point
}

type layerPart struct {
	Polygon   polygonSet
	LineWidth geom2d.Coord
	WallCount int
}

type layer struct {
	Index         int
	InfillParts   []layerPart
	SupportRoof   polygonSet
	SupportBottom polygonSet
}

// document is the on-disk msgpack shape.
type document struct {
	Layers         []layer
	MaxFilledLayer int
	Generated      bool
}

// Save encodes result as msgpack to w.
func Save(w io.Writer, result *support.Result) error {
	doc := toDocument(result)
	enc := codec.NewEncoder(w, handle)
	return enc.Encode(doc)
}

// Load decodes a msgpack-encoded support.Result from r.
func Load(r io.Reader) (*support.Result, error) {
	var doc document
	dec := codec.NewDecoder(r, handle)
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return fromDocument(doc), nil
}

func toDocument(result *support.Result) document {
	return document{
		MaxFilledLayer: result.MaxFilledLayer,
		Generated:      result.Generated,
		Layers: lo.Map(result.Layers, func(l support.Layer, _ int) layer {
			return layer{
				Index: l.Index,
				InfillParts: lo.Map(l.InfillParts, func(p support.LayerPart, _ int) layerPart {
					return layerPart{
						Polygon:   toPolygonSet(p.Polygon),
						LineWidth: p.LineWidth,
						WallCount: p.WallCount,
					}
				}),
				SupportRoof:   toPolygonSet(l.SupportRoof),
				SupportBottom: toPolygonSet(l.SupportBottom),
			}
		}),
	}
}

func fromDocument(doc document) *support.Result {
	return &support.Result{
		MaxFilledLayer: doc.MaxFilledLayer,
		Generated:      doc.Generated,
		Layers: lo.Map(doc.Layers, func(l layer, _ int) support.Layer {
			return support.Layer{
				Index: l.Index,
				InfillParts: lo.Map(l.InfillParts, func(p layerPart, _ int) support.LayerPart {
					return support.LayerPart{
						Polygon:   fromPolygonSet(p.Polygon),
						LineWidth: p.LineWidth,
						WallCount: p.WallCount,
					}
				}),
				SupportRoof:   fromPolygonSet(l.SupportRoof),
				SupportBottom: fromPolygonSet(l.SupportBottom),
			}
		}),
	}
}

func toPolygonSet(ps geom2d.PolygonSet) polygonSet {
	return polygonSet{Contours: lo.Map(ps.Contours, func(c geom2d.Contour, _ int) []point {
		return lo.Map(c, func(v geom2d.Point, _ int) point { return point{X: v.X, Y: v.Y} })
	})}
}

func fromPolygonSet(ps polygonSet) geom2d.PolygonSet {
	return geom2d.PolygonSet{Contours: lo.Map(ps.Contours, func(c []point, _ int) geom2d.Contour {
		return lo.Map(c, func(v point, _ int) geom2d.Point { return geom2d.Point{X: v.X, Y: v.Y} })
	})}
}
