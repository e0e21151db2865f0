package steiner

import (
	"log"
	"sync"

	"github.com/paulmach/orb"

	"steiner-planner/internal/geometry"
)

// Blocker decides whether the straight connection p–q is unusable.
// Implementations must be symmetric and safe for concurrent reads.
type Blocker interface {
	Blocks(p, q orb.Point) bool
}

// ObstacleSet blocks connections that cross any obstacle interior, with no
// bounding region. *FreeSpace is the stricter Blocker used by the pipeline.
type ObstacleSet []orb.Polygon

func (o ObstacleSet) Blocks(p, q orb.Point) bool {
	return !IsValidPath(p, q, o)
}

// IsValidPath reports whether the segment p–q avoids the interior of every
// obstacle. Touching an obstacle boundary, at a vertex or along an edge, is
// allowed. The result is the same for p–q and q–p.
func IsValidPath(p, q orb.Point, obstacles []orb.Polygon) bool {
	return geometry.IsPathClear(p, q, obstacles)
}

// NodeKind tells terminals from helper points.
type NodeKind int

const (
	NodeTerminal NodeKind = iota
	NodeHelper
)

// Node is a vertex of the visibility graph.
type Node struct {
	ID       int
	Point    orb.Point
	Kind     NodeKind
	Terminal int // index into the terminal slice, -1 for helper points
}

// Edge represents a connection between two nodes with a cost
type Edge struct {
	To   int     // Index of the destination node
	Cost float64 // Euclidean distance
}

// VisibilityGraph is an undirected graph over terminals and helper points.
// Terminal k is node k. The graph is read-only once built.
type VisibilityGraph struct {
	Nodes     []Node
	Edges     [][]Edge
	Terminals int
}

// GraphOptions tunes visibility graph construction.
type GraphOptions struct {
	// AvoidFootprints rejects connections that touch the footprint of any
	// terminal other than the connection's own endpoints.
	AvoidFootprints bool
	// Workers > 1 spreads the pairwise checks over that many goroutines.
	Workers int
	Logger  *log.Logger
}

// BuildVisibilityGraph connects every pair of nodes whose straight segment the
// blocker allows, weighting the edge by Euclidean distance. Helper points that
// coincide with a terminal or with each other collapse into one node.
//
// Complexity is O(N^2 * C) for N nodes, where C is the cost of one blocker
// query (O(M) obstacles without an index). Disconnected components are
// expected when obstacles separate regions and are left for callers to detect.
func BuildVisibilityGraph(terminals []Terminal, helpers []orb.Point, blocker Blocker, opts GraphOptions) *VisibilityGraph {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	graph := &VisibilityGraph{Terminals: len(terminals)}
	vertexToIdx := make(map[orb.Point]int)

	for i, t := range terminals {
		p := t.Position()
		graph.Nodes = append(graph.Nodes, Node{ID: i, Point: p, Kind: NodeTerminal, Terminal: i})
		if _, exists := vertexToIdx[p]; !exists {
			vertexToIdx[p] = i
		}
	}
	for _, h := range helpers {
		// Skip if vertex is already added (e.g., shared vertices)
		if _, exists := vertexToIdx[h]; exists {
			continue
		}
		id := len(graph.Nodes)
		graph.Nodes = append(graph.Nodes, Node{ID: id, Point: h, Kind: NodeHelper, Terminal: -1})
		vertexToIdx[h] = id
	}

	totalNodes := len(graph.Nodes)
	totalPossibleEdges := (totalNodes * (totalNodes - 1)) / 2
	logger.Printf("   Unique nodes: %d (%d terminals, %d helper points)\n",
		totalNodes, len(terminals), totalNodes-len(terminals))
	logger.Printf("   Checking up to %d possible edges...\n", totalPossibleEdges)
	if totalPossibleEdges > 100000 {
		logger.Printf("⚠️  WARNING: %d edge checks may take a while\n", totalPossibleEdges)
	}

	b := &graphBuilder{graph: graph, blocker: blocker}
	if opts.AvoidFootprints {
		b.indexFootprints(terminals)
	}

	rows := make([][]Edge, totalNodes)
	workers := opts.Workers
	if workers <= 1 {
		for i := range rows {
			rows[i] = b.row(i)
		}
	} else {
		jobs := make(chan int)
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					rows[i] = b.row(i)
				}
			}()
		}
		for i := range rows {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
	}

	// Merge rows in node order so the adjacency lists do not depend on scheduling
	graph.Edges = make([][]Edge, totalNodes)
	edgesAdded := 0
	for i, row := range rows {
		for _, e := range row {
			graph.Edges[i] = append(graph.Edges[i], e)
			graph.Edges[e.To] = append(graph.Edges[e.To], Edge{To: i, Cost: e.Cost})
			edgesAdded++
		}
	}
	logger.Printf("   Edges added: %d\n", edgesAdded)

	return graph
}

type graphBuilder struct {
	graph      *VisibilityGraph
	blocker    Blocker
	footprints []orb.Polygon // per terminal, nil when it has none
	fpIndex    *geometry.SpatialIndex
}

func (b *graphBuilder) indexFootprints(terminals []Terminal) {
	b.footprints = make([]orb.Polygon, len(terminals))
	b.fpIndex = geometry.NewSpatialIndex()
	for i, t := range terminals {
		if fp, ok := t.Footprint(); ok {
			b.footprints[i] = fp
			b.fpIndex.Insert(i, fp.Bound())
		}
	}
}

// row returns the edges from node i to every higher-numbered visible node.
func (b *graphBuilder) row(i int) []Edge {
	nodes := b.graph.Nodes
	var edges []Edge
	for j := i + 1; j < len(nodes); j++ {
		if !b.visible(nodes[i], nodes[j]) {
			continue
		}
		edges = append(edges, Edge{To: j, Cost: geometry.Distance(nodes[i].Point, nodes[j].Point)})
	}
	return edges
}

func (b *graphBuilder) visible(u, v Node) bool {
	if b.blocker != nil && b.blocker.Blocks(u.Point, v.Point) {
		return false
	}
	if b.fpIndex == nil || b.fpIndex.Len() == 0 {
		return true
	}

	seg := geometry.Segment{A: u.Point, B: v.Point}.Canonical()
	for _, k := range b.fpIndex.Query(seg.Bound()) {
		if k == u.Terminal || k == v.Terminal {
			continue
		}
		if geometry.SegmentIntersectsPolygon(seg, b.footprints[k]) {
			return false
		}
	}
	return true
}

// Len returns the number of nodes.
func (g *VisibilityGraph) Len() int {
	return len(g.Nodes)
}

// EdgeCount returns the number of undirected edges.
func (g *VisibilityGraph) EdgeCount() int {
	total := 0
	for _, adj := range g.Edges {
		total += len(adj)
	}
	return total / 2
}

// HasEdge reports whether nodes u and v are directly connected.
func (g *VisibilityGraph) HasEdge(u, v int) bool {
	if u < 0 || u >= len(g.Edges) {
		return false
	}
	for _, e := range g.Edges[u] {
		if e.To == v {
			return true
		}
	}
	return false
}

// Segments returns every edge once as a segment, for visualization
func (g *VisibilityGraph) Segments() []geometry.Segment {
	var out []geometry.Segment
	for i, adj := range g.Edges {
		for _, e := range adj {
			if i < e.To {
				out = append(out, geometry.Segment{A: g.Nodes[i].Point, B: g.Nodes[e.To].Point})
			}
		}
	}
	return out
}
