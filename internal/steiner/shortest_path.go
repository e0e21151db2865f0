package steiner

import (
	"container/heap"
	"math"

	"github.com/paulmach/orb"

	"steiner-planner/internal/geometry"
)

// Path is a walk through the visibility graph.
type Path struct {
	Nodes  []int
	Length float64
}

// Points resolves the path's nodes to coordinates.
func (p Path) Points(g *VisibilityGraph) []orb.Point {
	out := make([]orb.Point, len(p.Nodes))
	for i, id := range p.Nodes {
		out[i] = g.Nodes[id].Point
	}
	return out
}

// searchNode represents a node in the A* search
type searchNode struct {
	NodeID int
	G      float64 // Cost from start to this node
	H      float64 // Heuristic cost from this node to end
	F      float64 // Total cost (G + H)
	Parent *searchNode
	Index  int // Index in the heap
}

// priorityQueue implements heap.Interface. Ties on F go to the lower node id
// so equal-length alternatives resolve the same way on every run.
type priorityQueue []*searchNode

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].F != pq[j].F {
		return pq[i].F < pq[j].F
	}
	return pq[i].NodeID < pq[j].NodeID
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].Index = i
	pq[j].Index = j
}

func (pq *priorityQueue) Push(x interface{}) {
	n := len(*pq)
	node := x.(*searchNode)
	node.Index = n
	*pq = append(*pq, node)
}

func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.Index = -1
	*pq = old[0 : n-1]
	return node
}

// ShortestPath computes the shortest path between two nodes with A*. The
// straight-line heuristic never overestimates a Euclidean-weighted graph, so
// the result is exact. A missing path is reported as a *NoPathError.
func ShortestPath(graph *VisibilityGraph, source, target int) (Path, error) {
	if graph == nil || source < 0 || source >= graph.Len() || target < 0 || target >= graph.Len() {
		return Path{}, ErrNodeNotFound
	}

	endPoint := graph.Nodes[target].Point
	h := func(id int) float64 {
		return geometry.Distance(graph.Nodes[id].Point, endPoint)
	}

	openSet := &priorityQueue{}
	heap.Init(openSet)

	startNode := &searchNode{NodeID: source, H: h(source), F: h(source)}
	heap.Push(openSet, startNode)

	closedSet := make(map[int]bool)
	openSetMap := map[int]*searchNode{source: startNode}

	for openSet.Len() > 0 {
		current := heap.Pop(openSet).(*searchNode)
		delete(openSetMap, current.NodeID)

		if current.NodeID == target {
			var nodes []int
			for node := current; node != nil; node = node.Parent {
				nodes = append(nodes, node.NodeID)
			}
			reverseInts(nodes)
			return Path{Nodes: nodes, Length: current.G}, nil
		}

		closedSet[current.NodeID] = true

		for _, edge := range graph.Edges[current.NodeID] {
			neighborID := edge.To
			if closedSet[neighborID] {
				continue
			}

			tentativeG := current.G + edge.Cost

			neighbor, exists := openSetMap[neighborID]
			if !exists {
				neighbor = &searchNode{
					NodeID: neighborID,
					G:      tentativeG,
					H:      h(neighborID),
					Parent: current,
				}
				neighbor.F = neighbor.G + neighbor.H
				heap.Push(openSet, neighbor)
				openSetMap[neighborID] = neighbor
			} else if tentativeG < neighbor.G {
				// Found a better path to this neighbor
				neighbor.G = tentativeG
				neighbor.F = neighbor.G + neighbor.H
				neighbor.Parent = current
				heap.Fix(openSet, neighbor.Index)
			}
		}
	}

	return Path{}, &NoPathError{From: source, To: target}
}

// ShortestPathTree holds single-source shortest paths from Source.
type ShortestPathTree struct {
	Source int
	Dist   []float64 // +Inf for unreachable nodes
	Prev   []int     // -1 for the source and unreachable nodes
}

type distItem struct {
	node int
	dist float64
}

type distQueue []distItem

func (q distQueue) Len() int { return len(q) }

func (q distQueue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].node < q[j].node
}

func (q distQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *distQueue) Push(x interface{}) { *q = append(*q, x.(distItem)) }

func (q *distQueue) Pop() interface{} {
	old := *q
	item := old[len(old)-1]
	*q = old[:len(old)-1]
	return item
}

// Dijkstra computes shortest paths from source to every node, using a lazy
// heap (stale entries are skipped on pop). O((V + E) log V).
func Dijkstra(graph *VisibilityGraph, source int) (*ShortestPathTree, error) {
	if graph == nil || source < 0 || source >= graph.Len() {
		return nil, ErrNodeNotFound
	}

	n := graph.Len()
	tree := &ShortestPathTree{
		Source: source,
		Dist:   make([]float64, n),
		Prev:   make([]int, n),
	}
	for i := range tree.Dist {
		tree.Dist[i] = math.Inf(1)
		tree.Prev[i] = -1
	}
	tree.Dist[source] = 0

	visited := make([]bool, n)
	pq := &distQueue{{node: source}}
	for pq.Len() > 0 {
		item := heap.Pop(pq).(distItem)
		u := item.node
		if visited[u] {
			continue
		}
		visited[u] = true

		for _, e := range graph.Edges[u] {
			if visited[e.To] {
				continue
			}
			alt := tree.Dist[u] + e.Cost
			if alt < tree.Dist[e.To] {
				tree.Dist[e.To] = alt
				tree.Prev[e.To] = u
				heap.Push(pq, distItem{node: e.To, dist: alt})
			}
		}
	}
	return tree, nil
}

// PathTo rebuilds the path from the tree's source to target.
func (t *ShortestPathTree) PathTo(target int) (Path, error) {
	if target < 0 || target >= len(t.Dist) {
		return Path{}, ErrNodeNotFound
	}
	if math.IsInf(t.Dist[target], 1) {
		return Path{}, &NoPathError{From: t.Source, To: target}
	}

	var nodes []int
	for v := target; v != -1; v = t.Prev[v] {
		nodes = append(nodes, v)
	}
	reverseInts(nodes)
	return Path{Nodes: nodes, Length: t.Dist[target]}, nil
}

func reverseInts(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
