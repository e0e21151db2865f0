package steiner

import (
	"fmt"
	"sort"

	"steiner-planner/internal/geometry"
)

// PathLookup returns a previously computed shortest path between terminals.
// *MetricClosure implements it.
type PathLookup interface {
	Path(a, b int) (Path, bool)
}

// Network is the final set of undirected segments connecting the terminals.
type Network struct {
	Segments  []geometry.Segment // canonical, sorted, each stored once
	Length    float64            // sum of segment lengths
	TreeEdges []ClosureEdge      // spanning tree edges the segments expand

	// Partial is set when the segments do not connect every terminal.
	// Components lists the closure components and Unreached the terminals
	// outside the largest one.
	Partial    bool
	Components [][]int
	Unreached  []int
}

// BuildNetwork reduces the closure to its minimum spanning tree and expands
// every tree edge into its visibility-graph path. Segments shared by several
// paths are kept once. A disconnected closure yields a partial network.
func BuildNetwork(g *VisibilityGraph, mc *MetricClosure, lookup PathLookup) (*Network, error) {
	st := MinimumSpanningTree(mc)
	nw := &Network{TreeEdges: st.Edges}

	type nodePair struct{ u, v int }
	seen := make(map[nodePair]bool)

	for _, e := range st.Edges {
		p, ok := lookup.Path(e.A, e.B)
		if !ok {
			return nil, fmt.Errorf("tree edge %d-%d: %w", e.A, e.B, &NoPathError{From: e.A, To: e.B})
		}
		for i := 0; i+1 < len(p.Nodes); i++ {
			u, v := p.Nodes[i], p.Nodes[i+1]
			if u > v {
				u, v = v, u
			}
			if seen[nodePair{u, v}] {
				continue
			}
			seen[nodePair{u, v}] = true

			seg := geometry.Segment{A: g.Nodes[u].Point, B: g.Nodes[v].Point}.Canonical()
			if seg.A == seg.B {
				continue // coincident terminals
			}
			nw.Segments = append(nw.Segments, seg)
			nw.Length += seg.Length()
		}
	}

	sort.Slice(nw.Segments, func(i, j int) bool {
		a, b := nw.Segments[i], nw.Segments[j]
		if a.A != b.A {
			return geometry.Less(a.A, b.A)
		}
		return geometry.Less(a.B, b.B)
	})

	if st.Forest {
		nw.Partial = true
		nw.Components = mc.Components()
		nw.Unreached = unreached(nw.Components)
	}
	return nw, nil
}

// unreached returns the terminals outside the largest component. Components
// are ordered by lowest terminal, so the first of equal size wins.
func unreached(components [][]int) []int {
	if len(components) == 0 {
		return nil
	}
	largest := 0
	for i, c := range components {
		if len(c) > len(components[largest]) {
			largest = i
		}
	}
	var out []int
	for i, c := range components {
		if i != largest {
			out = append(out, c...)
		}
	}
	sort.Ints(out)
	return out
}
