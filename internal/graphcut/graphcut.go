// Package graphcut implements the per-tile pixel-adjacency graph and
// the successive-augmenting-paths max-flow solver that turns a
// constraint image into a binary compositing mask. This is the core of
// the seam-optimization pipeline: everything else in the repository
// exists to build inputs for, and consume outputs from, this package.
package graphcut

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/wangtiles/wangtiles/internal/imagebuf"
	"github.com/wangtiles/wangtiles/internal/patch"
	"github.com/wangtiles/wangtiles/internal/pixel"
)

// InfiniteCapacity is the sentinel capacity value for source/sink
// terminal edges: it never constrains an augmenting path's bottleneck.
const InfiniteCapacity = -1.0

// Edge is one directed arc out of a Node. Rev is the index, within
// Nodes[To].Edges, of this edge's paired reverse edge — appending new
// edges only, never reordering, keeps every previously recorded Rev
// index valid (invariant I1 from spec.md).
type Edge struct {
	To       int
	Capacity float64
	Flow     float64
	Rev      int
}

// Node owns its outgoing edges plus BFS scratch state, reset at the
// start of every augmenting-path search.
type Node struct {
	Edges    []Edge
	Prev     int // node index of BFS predecessor; -1 = unvisited
	PrevEdge int // index into Nodes[Prev].Edges; -1 = none
}

// Graph is the per-tile flow network: patch_size^2 pixel nodes plus a
// source and a sink.
type Graph struct {
	Nodes     []Node
	Source    int
	Sink      int
	patchSize int
}

// Stats records one solve's iteration count and accumulated max-flow.
type Stats struct {
	Iterations int
	MaxFlow    float64
}

var (
	ErrInvalidPatchSize  = errors.New("graphcut: patch size must be >= 2")
	ErrPatchSizeMismatch = errors.New("graphcut: patch sizes must match")
	ErrNoSource          = errors.New("graphcut: constraints have no SOURCE pixel")
	ErrNoSink            = errors.New("graphcut: constraints have no SINK pixel")

	// ErrUnboundedAugmenting surfaces a degenerate constraint image
	// where source and sink are connected by a path of only
	// infinite-capacity terminal edges (source and sink effectively
	// touch). Solve returns it instead of looping forever chasing an
	// unbounded bottleneck.
	ErrUnboundedAugmenting = errors.New("graphcut: augmenting path has only infinite-capacity edges")
)

// pixelIndex maps a pixel coordinate within the patch to its node
// index; the last two nodes are source and sink.
func (g *Graph) pixelIndex(x, y int) int {
	return y*g.patchSize + x
}

// Build constructs the per-tile flow network for compositing patch A
// (source-side texture) over patch B (sink-side texture), given a
// constraints image at the same size as the patches. Both patches and
// constraints must share size, and size must be at least 2.
func Build(a *imagebuf.RGBImage, patchA patch.Patch, b *imagebuf.RGBImage, patchB patch.Patch, constraints *imagebuf.RGBImage) (*Graph, error) {
	size := patchA.Size
	if size < 2 {
		return nil, ErrInvalidPatchSize
	}
	if size != patchB.Size || size != constraints.Resolution {
		return nil, ErrPatchSizeMismatch
	}

	g := &Graph{
		patchSize: size,
		Source:    size * size,
		Sink:      size*size + 1,
	}
	g.Nodes = make([]Node, size*size+2)
	for i := range g.Nodes {
		g.Nodes[i].Prev = -1
		g.Nodes[i].PrevEdge = -1
	}

	addEdgePair := func(u, v int, capacity float64) {
		g.Nodes[u].Edges = append(g.Nodes[u].Edges, Edge{To: v, Capacity: capacity})
		g.Nodes[v].Edges = append(g.Nodes[v].Edges, Edge{To: u, Capacity: capacity})
		g.Nodes[u].Edges[len(g.Nodes[u].Edges)-1].Rev = len(g.Nodes[v].Edges) - 1
		g.Nodes[v].Edges[len(g.Nodes[v].Edges)-1].Rev = len(g.Nodes[u].Edges) - 1
	}

	seamCost := func(x0, y0, x1, y1 int) float64 {
		a0 := a.Get(patchA.X+x0, patchA.Y+y0).Vec()
		a1 := a.Get(patchA.X+x1, patchA.Y+y1).Vec()
		b0 := b.Get(patchB.X+x0, patchB.Y+y0).Vec()
		b1 := b.Get(patchB.X+x1, patchB.Y+y1).Vec()
		d0 := floats.Distance(a0[:], b0[:], 2)
		d1 := floats.Distance(a1[:], b1[:], 2)
		return d0 + d1 + 1.0
	}

	// Row-major scan, connecting each pixel only to its north and west
	// neighbor (the two neighbors with a strictly smaller node index).
	// Every adjacency is installed exactly once this way — the south
	// and east edges of a node are appended to its list later, when
	// its higher-indexed neighbor's own north/west step reaches it —
	// which is the index-order equivalent of the original's
	// pointer-address comparison and preserves the same per-node
	// append order (invariant I1, spec.md 4.3/9).
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			u := g.pixelIndex(x, y)
			if y > 0 {
				v := g.pixelIndex(x, y-1)
				addEdgePair(u, v, seamCost(x, y, x, y-1))
			}
			if x > 0 {
				v := g.pixelIndex(x-1, y)
				addEdgePair(u, v, seamCost(x, y, x-1, y))
			}
		}
	}

	sawSource, sawSink := false, false
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			label := constraints.Get(x, y)
			node := g.pixelIndex(x, y)
			switch label {
			case pixel.Source:
				sawSource = true
				addEdgePair(node, g.Source, InfiniteCapacity)
			case pixel.Sink:
				sawSink = true
				addEdgePair(node, g.Sink, InfiniteCapacity)
			}
		}
	}
	if !sawSource {
		return nil, ErrNoSource
	}
	if !sawSink {
		return nil, ErrNoSink
	}
	return g, nil
}

// residual returns the residual capacity of edge e: infinite for
// infinite-capacity edges, capacity-flow otherwise.
func residual(e Edge) float64 {
	if e.Capacity == InfiniteCapacity {
		return math.Inf(1)
	}
	return e.Capacity - e.Flow
}

// bfs runs a breadth-first search from Source over edges with positive
// residual capacity, resetting Prev/PrevEdge first. If stopOnSink,
// search halts as soon as Sink becomes visited.
func (g *Graph) bfs(stopOnSink bool) {
	for i := range g.Nodes {
		g.Nodes[i].Prev = -1
		g.Nodes[i].PrevEdge = -1
	}
	queue := make([]int, 0, len(g.Nodes))
	queue = append(queue, g.Source)
	g.Nodes[g.Source].Prev = g.Source

	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		for ei, e := range g.Nodes[cur].Edges {
			if g.Nodes[e.To].Prev != -1 {
				continue
			}
			if residual(e) > 0 {
				g.Nodes[e.To].Prev = cur
				g.Nodes[e.To].PrevEdge = ei
				queue = append(queue, e.To)
			}
		}
		if stopOnSink && g.Nodes[g.Sink].Prev != -1 {
			return
		}
	}
}

// Solve computes max-flow via successive BFS augmenting paths. It
// returns ErrUnboundedAugmenting if an augmenting path consists
// entirely of infinite-capacity edges (a malformed-constraints
// degenerate graph where source effectively touches sink).
func (g *Graph) Solve() (Stats, error) {
	var stats Stats
	for {
		stats.Iterations++
		g.bfs(true)
		if g.Nodes[g.Sink].Prev == -1 {
			break
		}

		bottleneck := math.Inf(1)
		for n := g.Sink; n != g.Source; {
			prev := g.Nodes[n].Prev
			e := g.Nodes[prev].Edges[g.Nodes[n].PrevEdge]
			r := residual(e)
			if r < bottleneck {
				bottleneck = r
			}
			n = prev
		}
		if math.IsInf(bottleneck, 1) {
			return stats, ErrUnboundedAugmenting
		}

		for n := g.Sink; n != g.Source; {
			prev := g.Nodes[n].Prev
			ei := g.Nodes[n].PrevEdge
			g.Nodes[prev].Edges[ei].Flow += bottleneck
			rev := g.Nodes[prev].Edges[ei]
			g.Nodes[rev.To].Edges[rev.Rev].Flow = -g.Nodes[prev].Edges[ei].Flow
			n = prev
		}
		stats.MaxFlow += bottleneck
	}
	return stats, nil
}

// ExtractCutMask performs one final unrestricted BFS from Source over
// the residual graph and writes 255 for every pixel node reachable
// (source side), 0 otherwise, into dst at the given patch offset.
func (g *Graph) ExtractCutMask(dst *imagebuf.Mask, at patch.Patch) {
	g.bfs(false)
	for y := 0; y < g.patchSize; y++ {
		for x := 0; x < g.patchSize; x++ {
			reachable := g.Nodes[g.pixelIndex(x, y)].Prev != -1
			var v uint8
			if reachable {
				v = 255
			}
			dst.Set(at.X+x, at.Y+y, v)
		}
	}
}
