package forest

import (
	"context"
	"sort"

	"github.com/chazu/lignin/treesupport/pkg/contact"
	"github.com/chazu/lignin/treesupport/pkg/geom2d"
	"github.com/chazu/lignin/treesupport/pkg/mst"
	"github.com/chazu/lignin/treesupport/pkg/volumes"
)

// SupportType selects whether branches may rest on the model's interior
// or must always reach the build plate, per spec.md §4.1's support_type.
type SupportType int

const (
	// Everywhere allows branches to rest on the model's interior.
	Everywhere SupportType = iota
	// BuildplateOnly requires every branch to reach the build plate.
	BuildplateOnly
)

// Progress reports drop-loop progress, stage-weighted per spec.md §6
// ("collision 50, drop 1, draw 1 per layer").
type Progress interface {
	Report(stage string, done, total int)
}

// noopProgress satisfies Progress when the caller supplies none.
type noopProgress struct{}

func (noopProgress) Report(string, int, int) {}

// Params are the subset of the configuration contract the drop loop needs.
type Params struct {
	MaxMove      geom2d.Coord
	RadiusSample geom2d.Coord
	BranchRadius geom2d.Coord
	TipLayers    int
	RadiusStep   float64 // per-layer fractional radius growth past the tip
	SupportType  SupportType
	// PushEpsilon is the small_ε of spec.md §4.6 Phase C step 3's
	// outward push budget (max_move + radius_sample + small_ε).
	PushEpsilon geom2d.Coord
}

// Run executes the top-down drop loop: seeds are added to the active set
// layer by layer (highest first) and dropped to layer 0, producing a
// populated Forest. Cancellation is checked at each layer boundary.
func Run(ctx context.Context, seeds []contact.Seed, cache *volumes.Cache, p Params, progress Progress) (*Forest, error) {
	if progress == nil {
		progress = noopProgress{}
	}

	f := New()
	if len(seeds) == 0 {
		return f, nil
	}

	byLayer := make(map[int][]contact.Seed)
	maxLayer := 0
	for _, s := range seeds {
		byLayer[s.Layer] = append(byLayer[s.Layer], s)
		if s.Layer > maxLayer {
			maxLayer = s.Layer
		}
	}

	active := make(map[geom2d.Point]NodeIndex)
	totalLayers := maxLayer + 1
	done := 0

	for layer := maxLayer; layer >= 0; layer-- {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		for _, s := range byLayer[layer] {
			if _, exists := active[s.Position]; exists {
				continue
			}
			idx := f.alloc(Node{
				Position:        s.Position,
				Layer:           s.Layer,
				Radius:          s.Radius,
				DistanceToTop:   s.DistanceToTop,
				SkinDirection:   s.SkinDirection,
				RoofLayersBelow: s.RoofLayersBelow,
				ToBuildplate:    s.ToBuildplate,
				Parent:          NoParent,
			})
			active[s.Position] = idx
		}

		done++
		progress.Report("drop", done, totalLayers)

		if layer == 0 {
			break
		}

		next, err := f.dropLayer(active, cache, p, layer)
		if err != nil {
			return nil, err
		}
		active = next
	}

	return f, nil
}

func (f *Forest) dropLayer(active map[geom2d.Point]NodeIndex, cache *volumes.Cache, p Params, layer int) (map[geom2d.Point]NodeIndex, error) {
	indices := make([]NodeIndex, 0, len(active))
	for _, idx := range active {
		indices = append(indices, idx)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })

	groups, partsByIndex := f.groupNodes(indices, cache, layer)
	pruneQueue := f.deadBranches(indices, partsByIndex, cache, p, layer)
	pruned := make(map[NodeIndex]bool, len(pruneQueue))
	for _, idx := range pruneQueue {
		pruned[idx] = true
	}

	newActive := make(map[geom2d.Point]NodeIndex)

	for groupID, members := range groups {
		live := members[:0:0]
		for _, ni := range members {
			if !pruned[ni] {
				live = append(live, ni)
			}
		}
		children := f.mergeAndMove(live, cache, p, layer, groupID)
		for _, child := range children {
			f.insertChild(newActive, child)
		}
	}

	for _, idx := range pruneQueue {
		f.Prune(idx)
	}

	return newActive, nil
}

// boundaryEpsilonSq is the squared-micrometre tolerance within which a node
// exactly on a part's boundary (rather than strictly inside or outside it)
// is still routed to that part, per spec.md §4.6 Phase A: "nodes on the
// boundary go to the nearest part by squared distance; ties broken by
// lowest part index." It absorbs the integer rounding noise MoveInside/
// MoveOutside leave behind, without being wide enough to misclassify a
// node that is genuinely clear of every part.
const boundaryEpsilonSq = 4 // (2 micrometres)^2

// groupNodes implements Phase A: split avoidance(0, layer) into connected
// parts and bucket active nodes by which part (if any) contains them.
// Group 0 is "outside every part" (on a path to the build plate); groups
// 1..k correspond to parts 0..k-1 (trapped inside the model).
func (f *Forest) groupNodes(indices []NodeIndex, cache *volumes.Cache, layer int) (map[int][]NodeIndex, map[NodeIndex]int) {
	avoidance0 := cache.Avoidance(0, layer)
	parts := geom2d.SplitParts(avoidance0)
	idx := geom2d.NewIndex(parts)

	groups := make(map[int][]NodeIndex)
	partOf := make(map[NodeIndex]int, len(indices))

	for _, ni := range indices {
		pos := f.nodes[ni].Position
		group := 0
		if partIdx := idx.PartContaining(pos); partIdx >= 0 {
			group = partIdx + 1
		} else if nearest := idx.NearestPart(pos); nearest >= 0 {
			if _, distSq := geom2d.NearestPointOnBoundary(parts[nearest], pos); distSq <= boundaryEpsilonSq {
				group = nearest + 1
			}
		}
		groups[group] = append(groups[group], ni)
		partOf[ni] = group
	}
	return groups, partOf
}

// deadBranches implements Phase B: collects nodes to prune either because
// support_type forbids resting on the model, or because a trapped node has
// been engulfed by the model.
func (f *Forest) deadBranches(indices []NodeIndex, groupOf map[NodeIndex]int, cache *volumes.Cache, p Params, layer int) []NodeIndex {
	var queue []NodeIndex
	collision0 := cache.Collision(0, layer)

	for _, ni := range indices {
		n := &f.nodes[ni]
		if p.SupportType == BuildplateOnly && !n.ToBuildplate {
			queue = append(queue, ni)
			continue
		}
		if groupOf[ni] == 0 {
			continue
		}
		if !geom2d.Inside(collision0, n.Position) {
			continue
		}
		_, distSq := geom2d.NearestPointOnBoundary(collision0, n.Position)
		radius := float64(n.Radius)
		if distSq > radius*radius {
			queue = append(queue, ni)
		}
	}
	return queue
}

// pendingChild is a child node computed by mergeAndMove, not yet inserted
// (insertion needs to dedupe by position across the whole layer, not just
// within one group).
type pendingChild struct {
	node    Node
	parents []NodeIndex
}

// mergeAndMove implements Phase C for a single group: build an MST over
// the group's positions, collapse dipoles and absorb close neighbours,
// then move every survivor toward layer-1 and route it around obstacles.
func (f *Forest) mergeAndMove(members []NodeIndex, cache *volumes.Cache, p Params, layer int, groupID int) []pendingChild {
	positions := make([]geom2d.Point, len(members))
	posToIdx := make(map[geom2d.Point]NodeIndex, len(members))
	for i, ni := range members {
		positions[i] = f.nodes[ni].Position
		posToIdx[positions[i]] = ni
	}
	tree := mst.Build(positions)

	type working struct {
		dtt       int
		roofBelow int
		skin      bool
		lineage   []NodeIndex
	}
	work := make(map[NodeIndex]*working, len(members))
	for _, ni := range members {
		n := &f.nodes[ni]
		work[ni] = &working{dtt: n.DistanceToTop, roofBelow: n.RoofLayersBelow, skin: n.SkinDirection, lineage: []NodeIndex{ni}}
	}

	deleted := make(map[NodeIndex]bool, len(members))
	var children []pendingChild

	maxMoveF := float64(p.MaxMove)

	for _, ni := range members {
		if deleted[ni] {
			continue
		}
		pos := f.nodes[ni].Position
		neigh := tree.Adjacent(pos)

		if len(neigh) == 1 {
			mIdx, ok := posToIdx[neigh[0]]
			if ok && !deleted[mIdx] && mIdx != ni {
				mPos := f.nodes[mIdx].Position
				if pos.Dist(mPos) < maxMoveF && len(tree.Adjacent(mPos)) == 1 {
					wN, wM := work[ni], work[mIdx]
					dtt := maxInt(wN.dtt, wM.dtt) + 1
					roofBelow := maxInt(wN.roofBelow, wM.roofBelow) - 1
					mid := geom2d.Point{X: (pos.X + mPos.X) / 2, Y: (pos.Y + mPos.Y) / 2}
					radius := RadiusForDistanceToTop(dtt, p)
					lineage := append(append([]NodeIndex{}, wN.lineage...), wM.lineage...)

					final := f.routeChild(mid, radius, cache, p, layer, groupID)
					children = append(children, pendingChild{
						node: Node{
							Position:        final,
							Layer:           layer - 1,
							Radius:          radius,
							DistanceToTop:   dtt,
							SkinDirection:   wN.skin,
							RoofLayersBelow: roofBelow,
							ToBuildplate:    !geom2d.Inside(cache.Avoidance(volumes.QuantizeRadius(radius, p.RadiusSample), layer-1), final),
							MergedLineage:   lineage,
						},
						parents: []NodeIndex{ni, mIdx},
					})
					deleted[ni] = true
					deleted[mIdx] = true
					continue
				}
			}
		}

		if len(neigh) >= 2 {
			w := work[ni]
			for _, np := range neigh {
				mIdx, ok := posToIdx[np]
				if !ok || mIdx == ni || deleted[mIdx] {
					continue
				}
				if pos.Dist(np) < maxMoveF {
					wM := work[mIdx]
					w.dtt = maxInt(w.dtt, wM.dtt)
					w.roofBelow = maxInt(w.roofBelow, wM.roofBelow)
					w.lineage = append(w.lineage, wM.lineage...)
					deleted[mIdx] = true
				}
			}
		}
	}

	for _, ni := range members {
		if deleted[ni] {
			continue
		}
		w := work[ni]
		pos := f.nodes[ni].Position

		target := pos
		neigh := tree.Adjacent(pos)
		if len(neigh) > 0 {
			var dx, dy float64
			for _, np := range neigh {
				ndx, ndy := np.Sub(pos).Vec()
				dx += ndx
				dy += ndy
			}
			target = geom2d.Point{X: pos.X + geom2d.Coord(dx), Y: pos.Y + geom2d.Coord(dy)}
		}
		target = geom2d.ClampToLimit(pos, target, p.MaxMove)

		dtt := w.dtt + 1
		radius := RadiusForDistanceToTop(dtt, p)

		var final geom2d.Point
		if groupID == 0 {
			final = f.routeOutward(target, radius, cache, p, layer)
		} else {
			final = f.routeInward(pos, target, radius, cache, p, layer)
		}

		rq := volumes.QuantizeRadius(radius, p.RadiusSample)
		toBuildplate := !geom2d.Inside(cache.Avoidance(rq, layer-1), final)

		children = append(children, pendingChild{
			node: Node{
				Position:        final,
				Layer:           layer - 1,
				Radius:          radius,
				DistanceToTop:   dtt,
				SkinDirection:   w.skin,
				RoofLayersBelow: w.roofBelow - 1,
				ToBuildplate:    toBuildplate,
				MergedLineage:   w.lineage[1:],
			},
			parents: w.lineage,
		})
	}

	return children
}

// routeChild applies the same obstacle routing a move-pass survivor gets
// to a freshly collapsed dipole child, so the merge pass's output still
// respects the collision invariant.
func (f *Forest) routeChild(pos geom2d.Point, radius geom2d.Coord, cache *volumes.Cache, p Params, layer int, groupID int) geom2d.Point {
	if groupID == 0 {
		return f.routeOutward(pos, radius, cache, p, layer)
	}
	return f.routeInward(pos, pos, radius, cache, p, layer)
}

// routeOutward implements Phase C step 3's group-0 case: push target
// outward from avoidance(rq, layer-1) if it landed inside it.
func (f *Forest) routeOutward(target geom2d.Point, radius geom2d.Coord, cache *volumes.Cache, p Params, layer int) geom2d.Point {
	rq := volumes.QuantizeRadius(radius, p.RadiusSample)
	avoid := cache.Avoidance(rq, layer-1)
	if !geom2d.Inside(avoid, target) {
		return target
	}
	step := p.MaxMove + p.RadiusSample + p.PushEpsilon
	return geom2d.MoveOutside(avoid, target, step)
}

// routeInward implements Phase C step 3's group>=1 case: retreat target
// one step deeper into internal(rq, layer-1)'s corridor, then clamp the
// resulting displacement from the original position to max_move.
func (f *Forest) routeInward(origin, target geom2d.Point, radius geom2d.Coord, cache *volumes.Cache, p Params, layer int) geom2d.Point {
	rq := volumes.QuantizeRadius(radius, p.RadiusSample)
	internal := cache.Internal(rq, layer-1)

	b, _ := geom2d.NearestPointOnBoundary(internal, origin)
	limit := geom2d.Coord(origin.Dist(b)) + p.MaxMove

	moved := geom2d.MoveInside(internal, target, limit)
	return geom2d.ClampToLimit(origin, moved, p.MaxMove)
}

// insertChild implements Phase D's insertion-time merge: a child colliding
// in position with one already inserted this layer is merged
// (component-wise max of distance_to_top and roof_layers_below) rather
// than inserted twice.
func (f *Forest) insertChild(active map[geom2d.Point]NodeIndex, pc pendingChild) {
	if existingIdx, ok := active[pc.node.Position]; ok {
		existing := &f.nodes[existingIdx]
		existing.DistanceToTop = maxInt(existing.DistanceToTop, pc.node.DistanceToTop)
		existing.RoofLayersBelow = maxInt(existing.RoofLayersBelow, pc.node.RoofLayersBelow)
		existing.MergedLineage = append(existing.MergedLineage, pc.node.MergedLineage...)
		existing.MergedLineage = append(existing.MergedLineage, pc.parents...)
		for _, parentIdx := range pc.parents {
			f.nodes[parentIdx].Children = append(f.nodes[parentIdx].Children, existingIdx)
		}
		return
	}

	// pc.node.Parent records one representative upper-layer contributor —
	// spec.md §9's "keep either, the output is invariant" — while every
	// contributor's Children gets the new child appended, keeping Parent
	// pointing toward the tip and Children toward the build plate.
	pc.node.Parent = pc.parents[0]
	childIdx := f.alloc(pc.node)
	active[pc.node.Position] = childIdx
	for _, parentIdx := range pc.parents {
		f.nodes[parentIdx].Children = append(f.nodes[parentIdx].Children, childIdx)
	}
}

// RadiusForDistanceToTop implements spec.md §4.6's radius-growth formula:
// a linear taper from 0 up to branch_radius across the tip region, then
// linear conical growth.
func RadiusForDistanceToTop(distanceToTop int, p Params) geom2d.Coord {
	if p.TipLayers > 0 && distanceToTop < p.TipLayers {
		return geom2d.Coord(float64(p.BranchRadius) * float64(distanceToTop) / float64(p.TipLayers))
	}
	return geom2d.Coord(float64(p.BranchRadius) * (1 + float64(distanceToTop)*p.RadiusStep))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
