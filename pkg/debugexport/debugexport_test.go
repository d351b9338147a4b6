package debugexport

import (
	"bytes"
	"testing"

	"github.com/chazu/lignin/treesupport/pkg/geom2d"
	"github.com/chazu/lignin/treesupport/pkg/support"
)

func sampleLayer() support.Layer {
	square := geom2d.Contour{
		{X: 0, Y: 0}, {X: 5000, Y: 0}, {X: 5000, Y: 5000}, {X: 0, Y: 5000},
	}
	return support.Layer{
		Index: 3,
		InfillParts: []support.LayerPart{
			{Polygon: geom2d.PolygonSet{Contours: []geom2d.Contour{square}}, LineWidth: 400, WallCount: 2},
		},
		SupportRoof:   geom2d.PolygonSet{},
		SupportBottom: geom2d.PolygonSet{},
	}
}

func sampleBounds() geom2d.Box {
	return geom2d.Box{Min: geom2d.Point{X: 0, Y: 0}, Max: geom2d.Point{X: 5000, Y: 5000}}
}

func TestWriteSVGProducesNonEmptyDocument(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSVG(&buf, sampleLayer(), sampleBounds(), 10); err != nil {
		t.Fatalf("WriteSVG: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatalf("expected non-empty SVG output")
	}
	if !bytes.Contains(buf.Bytes(), []byte("<svg")) {
		t.Errorf("expected SVG output to contain an <svg> tag")
	}
}

func TestRenderPNGProducesImageOfExpectedSize(t *testing.T) {
	img := RenderPNG(sampleLayer(), sampleBounds(), 10)
	bounds := img.Bounds()
	if bounds.Dx() != 50 || bounds.Dy() != 50 {
		t.Errorf("expected a 50x50 image at scale 10px/mm over a 5mm box, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestWriteDXFProducesADrawing(t *testing.T) {
	d := WriteDXF(sampleLayer())
	if d == nil {
		t.Fatalf("expected a non-nil drawing")
	}
}
