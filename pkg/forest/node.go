// Package forest implements the node arena and top-down drop loop: the
// heart of the tree support generator, transforming contact-point leaves
// layer by layer into a forest of branches reaching the build plate.
//
// Nodes are held in a flat arena addressed by integer index rather than the
// raw-pointer-plus-side-channel-lists scheme of the original implementation
// (see _examples/original_source/src/TreeSupport.h's Tree::Node), per the
// redesign note: "A principled representation is an arena of nodes with
// integer indices; per-layer active sets store indices; 'merged lineage' is
// a forward list of indices; pruning walks indices and marks slots free."
package forest

import "github.com/chazu/lignin/treesupport/pkg/geom2d"

// NodeIndex addresses a node within a Forest's arena.
type NodeIndex int

// NoParent is the parent index of a node with no parent (a contact-point
// leaf at the tip of its branch, or a node not yet linked).
const NoParent NodeIndex = -1

// Node is one point in the forest. Parent points to the single node one
// layer above this one (toward the tip); Children are the nodes one layer
// below (toward the build plate) that this node was a parent contributor
// to. When several upper-layer nodes merge into a single lower-layer
// child, every contributing node's Children gets the shared child
// appended, but the child's own Parent records only one representative
// contributor — mirroring spec.md §9's note on Phase D's own analogous
// tie-break ("keep either — the output is invariant").
type Node struct {
	Position geom2d.Point
	Layer    int
	Radius   geom2d.Coord

	DistanceToTop   int
	SkinDirection   bool
	RoofLayersBelow int
	ToBuildplate    bool

	Parent   NodeIndex
	Children []NodeIndex

	// MergedLineage lists the indices of nodes absorbed into this one
	// during Phase C's merge pass, including transitively-absorbed nodes.
	// Pruning a node also prunes every node in its lineage.
	MergedLineage []NodeIndex

	Pruned bool
}

// Forest owns the node arena plus a per-layer index of every node ever
// inserted at that layer (used by the rasterizer; unaffected by later
// pruning so that tests and diagnostics can see what was dropped, not just
// what survived).
type Forest struct {
	nodes      []Node
	layerNodes map[int][]NodeIndex
}

// New returns an empty forest.
func New() *Forest {
	return &Forest{layerNodes: make(map[int][]NodeIndex)}
}

// alloc appends n to the arena and records it in its layer's index.
func (f *Forest) alloc(n Node) NodeIndex {
	idx := NodeIndex(len(f.nodes))
	f.nodes = append(f.nodes, n)
	f.layerNodes[n.Layer] = append(f.layerNodes[n.Layer], idx)
	return idx
}

// Node returns a pointer to the node at idx, for in-place mutation during
// the drop loop.
func (f *Forest) Node(idx NodeIndex) *Node {
	return &f.nodes[idx]
}

// NodeCount returns the number of nodes ever allocated, including pruned
// ones.
func (f *Forest) NodeCount() int {
	return len(f.nodes)
}

// LayerNodes returns the indices of every node ever inserted at layer,
// in insertion order, including nodes later pruned (callers that care
// should check Node(idx).Pruned).
func (f *Forest) LayerNodes(layer int) []NodeIndex {
	return f.layerNodes[layer]
}

// AliveLayerNodes returns LayerNodes(layer) filtered to non-pruned nodes.
func (f *Forest) AliveLayerNodes(layer int) []NodeIndex {
	all := f.layerNodes[layer]
	out := make([]NodeIndex, 0, len(all))
	for _, idx := range all {
		if !f.nodes[idx].Pruned {
			out = append(out, idx)
		}
	}
	return out
}

// MaxLayer returns the highest layer with any recorded node, or -1 if the
// forest is empty.
func (f *Forest) MaxLayer() int {
	max := -1
	for layer := range f.layerNodes {
		if layer > max {
			max = layer
		}
	}
	return max
}

// Prune marks idx and every node transitively reachable via its merged
// lineage and its ancestor chain (via Parent) as pruned, per spec.md
// §4.6 Phase D: "traverse from that node upward through its parent chain
// and along its merged-lineage siblings... Pruning is transitive."
func (f *Forest) Prune(idx NodeIndex) {
	f.pruneChain(idx, make(map[NodeIndex]bool))
}

func (f *Forest) pruneChain(idx NodeIndex, visited map[NodeIndex]bool) {
	for idx != NoParent && !visited[idx] {
		visited[idx] = true
		n := &f.nodes[idx]
		n.Pruned = true
		for _, m := range n.MergedLineage {
			f.pruneChain(m, visited)
		}
		idx = n.Parent
	}
}
