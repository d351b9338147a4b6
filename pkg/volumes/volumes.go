// Package volumes builds and caches the three layered avoidance fields the
// drop loop consults every layer: collision, avoidance, and internal
// polygon sets, indexed by (quantized radius, layer). Per-radius columns
// are independent and are built concurrently with golang.org/x/sync/errgroup,
// mirroring the teacher's use of the same package for its own worker-pool
// stages.
package volumes

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/chazu/lignin/treesupport/pkg/geom2d"
)

// LayerOutlines supplies the model footprint per layer, read-only.
type LayerOutlines func(layer int) geom2d.PolygonSet

// Params are the subset of the configuration contract (spec.md §4.1) the
// volumes cache needs.
type Params struct {
	NumLayers    int
	XYDistance   geom2d.Coord
	RadiusSample geom2d.Coord
	MaxMove      geom2d.Coord
	SmoothPasses int

	// OnLayerDone, if set, is called once for every (radius, layer) cell
	// built, from whichever goroutine built it. It must be safe for
	// concurrent use — spec.md §5's "atomic increment and a critical
	// section around the progress callback".
	OnLayerDone func()
}

// Cache holds the fully-built collision/avoidance/internal grids for the
// radii actually requested via Radii. It is write-once: Build populates
// every cell up front, and all subsequent reads are safe for concurrent
// use without locking, matching spec.md §5's "write-once per (rq, ℓ)"
// resource model.
type Cache struct {
	params  Params
	radii   []geom2d.Coord
	index   map[geom2d.Coord]int
	border  geom2d.PolygonSet
	outline LayerOutlines

	collision [][]geom2d.PolygonSet // [radiusIndex][layer]
	avoidance [][]geom2d.PolygonSet
}

// QuantizeRadius rounds r to the nearest multiple of radiusSample, per
// spec.md §4.3's rq definition. radiusSample <= 0 disables quantization.
func QuantizeRadius(r, radiusSample geom2d.Coord) geom2d.Coord {
	if radiusSample <= 0 {
		return r
	}
	half := radiusSample / 2
	if r >= 0 {
		return ((r + half) / radiusSample) * radiusSample
	}
	return -((-r + half) / radiusSample) * radiusSample
}

// Build constructs collision and avoidance columns for every radius in
// radii, in parallel across radii, sequential within a column (layer ℓ
// depends on ℓ−1). Each column checks ctx before every 64th layer (layers
// 0, 64, 128, ...); a cancelled build returns ctx.Err().
func Build(ctx context.Context, outline LayerOutlines, machineBorder geom2d.PolygonSet, p Params, radii []geom2d.Coord) (*Cache, error) {
	c := &Cache{
		params:  p,
		radii:   dedupeSorted(radii),
		border:  machineBorder,
		outline: outline,
	}
	c.index = make(map[geom2d.Coord]int, len(c.radii))
	for i, r := range c.radii {
		c.index[r] = i
	}
	c.collision = make([][]geom2d.PolygonSet, len(c.radii))
	c.avoidance = make([][]geom2d.PolygonSet, len(c.radii))

	g, gctx := errgroup.WithContext(ctx)
	for i, r := range c.radii {
		i, r := i, r
		g.Go(func() error {
			return c.buildColumn(gctx, i, r)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Cache) buildColumn(ctx context.Context, i int, rq geom2d.Coord) error {
	col := make([]geom2d.PolygonSet, c.params.NumLayers)
	avoid := make([]geom2d.PolygonSet, c.params.NumLayers)

	for layer := 0; layer < c.params.NumLayers; layer++ {
		if layer%64 == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}

		outline := c.outline(layer)
		merged := geom2d.Union(outline, c.border)
		collisionOffset := c.params.XYDistance + rq
		col[layer] = geom2d.Offset(merged, collisionOffset)

		if err := validatePolygonSet(col[layer]); err != nil {
			return fmt.Errorf("volumes: collision(rq=%d, layer=%d): %w", rq, layer, err)
		}

		if layer == 0 {
			avoid[layer] = col[layer].Clone()
			if c.params.OnLayerDone != nil {
				c.params.OnLayerDone()
			}
			continue
		}
		insetPrev := geom2d.Inset(avoid[layer-1], c.params.MaxMove)
		smoothed := geom2d.Smooth(insetPrev, c.params.SmoothPasses)
		avoid[layer] = geom2d.Union(smoothed, col[layer])

		if err := validatePolygonSet(avoid[layer]); err != nil {
			return fmt.Errorf("volumes: avoidance(rq=%d, layer=%d): %w", rq, layer, err)
		}

		if c.params.OnLayerDone != nil {
			c.params.OnLayerDone()
		}
	}

	c.collision[i] = col
	c.avoidance[i] = avoid
	return nil
}

func validatePolygonSet(ps geom2d.PolygonSet) error {
	for _, ct := range ps.Contours {
		if len(ct) > 0 && len(ct) < 3 {
			return fmt.Errorf("malformed contour with %d vertices", len(ct))
		}
	}
	return nil
}

// Collision returns collision(rq, layer), quantizing r to the cache's
// nearest built radius.
func (c *Cache) Collision(r geom2d.Coord, layer int) geom2d.PolygonSet {
	i := c.nearestRadiusIndex(r)
	if i < 0 || layer < 0 || layer >= len(c.collision[i]) {
		return geom2d.PolygonSet{}
	}
	return c.collision[i][layer]
}

// Avoidance returns avoidance(rq, layer), quantizing r to the cache's
// nearest built radius.
func (c *Cache) Avoidance(r geom2d.Coord, layer int) geom2d.PolygonSet {
	i := c.nearestRadiusIndex(r)
	if i < 0 || layer < 0 || layer >= len(c.avoidance[i]) {
		return geom2d.PolygonSet{}
	}
	return c.avoidance[i][layer]
}

// Internal returns internal(rq, layer) = avoidance(rq, layer) \ collision(rq, layer).
func (c *Cache) Internal(r geom2d.Coord, layer int) geom2d.PolygonSet {
	return geom2d.Difference(c.Avoidance(r, layer), c.Collision(r, layer))
}

func (c *Cache) nearestRadiusIndex(r geom2d.Coord) int {
	if idx, ok := c.index[r]; ok {
		return idx
	}
	best := -1
	var bestDiff geom2d.Coord = -1
	for i, rq := range c.radii {
		d := rq - r
		if d < 0 {
			d = -d
		}
		if bestDiff < 0 || d < bestDiff {
			bestDiff = d
			best = i
		}
	}
	return best
}

// EvictAboveRadius drops every built column except the one nearest to
// keepRadius, per spec.md §5's memory discipline ("evict higher-radius
// columns after the drop loop completes, keeping only collision(0, ·)").
func (c *Cache) EvictAboveRadius(keepRadius geom2d.Coord) {
	keep := c.nearestRadiusIndex(keepRadius)
	for i := range c.collision {
		if i == keep {
			continue
		}
		c.collision[i] = nil
		c.avoidance[i] = nil
	}
}

func dedupeSorted(radii []geom2d.Coord) []geom2d.Coord {
	seen := make(map[geom2d.Coord]bool, len(radii))
	var out []geom2d.Coord
	for _, r := range radii {
		if seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
