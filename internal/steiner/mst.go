package steiner

import (
	"sort"

	"github.com/paulmach/orb"

	"steiner-planner/internal/geometry"
)

// SpanningTree is a minimum spanning forest of the metric closure.
type SpanningTree struct {
	Edges  []ClosureEdge
	Weight float64
	// Forest is set when the closure is disconnected and the result spans
	// only its components.
	Forest bool
}

// disjointSet is a union-find with path compression and union by rank.
type disjointSet struct {
	parent []int
	rank   []int
}

func newDisjointSet(n int) *disjointSet {
	ds := &disjointSet{parent: make([]int, n), rank: make([]int, n)}
	for i := range ds.parent {
		ds.parent[i] = i
	}
	return ds
}

func (ds *disjointSet) find(x int) int {
	for ds.parent[x] != x {
		ds.parent[x] = ds.parent[ds.parent[x]]
		x = ds.parent[x]
	}
	return x
}

// union merges the sets of a and b and reports whether they were distinct.
func (ds *disjointSet) union(a, b int) bool {
	ra, rb := ds.find(a), ds.find(b)
	if ra == rb {
		return false
	}
	switch {
	case ds.rank[ra] < ds.rank[rb]:
		ds.parent[ra] = rb
	case ds.rank[ra] > ds.rank[rb]:
		ds.parent[rb] = ra
	default:
		ds.parent[rb] = ra
		ds.rank[ra]++
	}
	return true
}

// kruskal returns the minimum spanning forest of n vertices. Equal lengths
// are broken by (A, B), so the result depends only on the edge set.
func kruskal(n int, edges []ClosureEdge) SpanningTree {
	sorted := append([]ClosureEdge(nil), edges...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Length != sorted[j].Length {
			return sorted[i].Length < sorted[j].Length
		}
		if sorted[i].A != sorted[j].A {
			return sorted[i].A < sorted[j].A
		}
		return sorted[i].B < sorted[j].B
	})

	ds := newDisjointSet(n)
	var st SpanningTree
	for _, e := range sorted {
		if len(st.Edges) == n-1 {
			break
		}
		if ds.union(e.A, e.B) {
			st.Edges = append(st.Edges, e)
			st.Weight += e.Length
		}
	}
	st.Forest = n > 0 && len(st.Edges) < n-1
	return st
}

// MinimumSpanningTree reduces the metric closure to its minimum spanning
// tree, or a spanning forest when the closure is disconnected.
func MinimumSpanningTree(mc *MetricClosure) SpanningTree {
	return kruskal(mc.Terminals, mc.Edges)
}

// EuclideanMST returns the minimum spanning tree of points under straight-line
// distance, ignoring obstacles. Its weight bounds any obstacle-avoiding
// network over the same points from below.
func EuclideanMST(points []orb.Point) SpanningTree {
	var edges []ClosureEdge
	for a := range points {
		for b := a + 1; b < len(points); b++ {
			edges = append(edges, ClosureEdge{A: a, B: b, Length: geometry.Distance(points[a], points[b])})
		}
	}
	return kruskal(len(points), edges)
}
