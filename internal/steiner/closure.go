package steiner

import (
	"sort"
	"sync"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// TerminalPair is an unordered pair of terminal indices with A < B.
type TerminalPair struct {
	A, B int
}

// ClosureEdge is a metric-closure edge: the shortest path length between two
// terminals through the visibility graph.
type ClosureEdge struct {
	A, B   int
	Length float64
}

// MetricClosure is the complete graph over terminals weighted by shortest
// path length. Pairs with no path are left out and listed in Missing.
type MetricClosure struct {
	Terminals int
	Edges     []ClosureEdge  // ordered by (A, B)
	Missing   []TerminalPair // ordered by (A, B)

	paths map[TerminalPair]Path
}

// BuildMetricClosure runs one single-source shortest-path search per terminal
// and records every terminal pair. T searches at O((V + E) log V) each replace
// the T^2/2 independent pair queries; the result is the same. With workers > 1
// the searches run concurrently and are merged in terminal order.
func BuildMetricClosure(g *VisibilityGraph, workers int) *MetricClosure {
	t := g.Terminals
	trees := make([]*ShortestPathTree, t)

	// The graph is read-only here, so searches share it freely.
	search := func(i int) {
		trees[i], _ = Dijkstra(g, i)
	}
	if workers <= 1 {
		for i := 0; i < t; i++ {
			search(i)
		}
	} else {
		jobs := make(chan int)
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					search(i)
				}
			}()
		}
		for i := 0; i < t; i++ {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
	}

	mc := &MetricClosure{Terminals: t, paths: make(map[TerminalPair]Path)}
	for a := 0; a < t; a++ {
		for b := a + 1; b < t; b++ {
			pair := TerminalPair{A: a, B: b}
			p, err := trees[a].PathTo(b)
			if err != nil {
				mc.Missing = append(mc.Missing, pair)
				continue
			}
			mc.paths[pair] = p
			mc.Edges = append(mc.Edges, ClosureEdge{A: a, B: b, Length: p.Length})
		}
	}
	return mc
}

// Path returns the shortest visibility-graph path between terminals a and b,
// oriented from a to b.
func (mc *MetricClosure) Path(a, b int) (Path, bool) {
	if a == b {
		return Path{Nodes: []int{a}}, a >= 0 && a < mc.Terminals
	}
	pair := TerminalPair{A: a, B: b}
	if a > b {
		pair = TerminalPair{A: b, B: a}
	}
	p, ok := mc.paths[pair]
	if !ok {
		return Path{}, false
	}
	if a > b {
		nodes := append([]int(nil), p.Nodes...)
		reverseInts(nodes)
		p = Path{Nodes: nodes, Length: p.Length}
	}
	return p, true
}

// Failures reports every missing pair as a *NoPathError.
func (mc *MetricClosure) Failures() []error {
	errs := make([]error, 0, len(mc.Missing))
	for _, m := range mc.Missing {
		errs = append(errs, &NoPathError{From: m.A, To: m.B})
	}
	return errs
}

// Components returns the connected components of the closure as sorted
// terminal index lists, ordered by their lowest terminal.
func (mc *MetricClosure) Components() [][]int {
	g := simple.NewWeightedUndirectedGraph(0, 0)
	for i := 0; i < mc.Terminals; i++ {
		g.AddNode(simple.Node(i))
	}
	for _, e := range mc.Edges {
		g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(e.A), simple.Node(e.B), e.Length))
	}

	var comps [][]int
	for _, cc := range topo.ConnectedComponents(g) {
		comps = append(comps, nodeIDs(cc))
	}
	sort.Slice(comps, func(i, j int) bool { return comps[i][0] < comps[j][0] })
	return comps
}

func nodeIDs(nodes []graph.Node) []int {
	ids := make([]int, len(nodes))
	for i, n := range nodes {
		ids[i] = int(n.ID())
	}
	sort.Ints(ids)
	return ids
}
