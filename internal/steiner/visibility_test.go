package steiner_test

import (
	"math/rand"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"steiner-planner/internal/geometry"
	"steiner-planner/internal/steiner"
)

func TestIsValidPath_Symmetric(t *testing.T) {
	fs := buildingsFreeSpace(t)
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 300; i++ {
		p := orb.Point{rng.Float64() * 12, rng.Float64() * 10}
		q := orb.Point{rng.Float64() * 12, rng.Float64() * 10}
		require.Equal(t,
			steiner.IsValidPath(p, q, fs.Obstacles),
			steiner.IsValidPath(q, p, fs.Obstacles),
			"IsValidPath(%v, %v)", p, q)
		require.Equal(t, fs.Blocks(p, q), fs.Blocks(q, p), "Blocks(%v, %v)", p, q)
	}

	// Obstacle corners exercise the touching cases.
	corners := fs.HelperPoints()
	for _, p := range corners {
		for _, q := range corners {
			require.Equal(t,
				steiner.IsValidPath(p, q, fs.Obstacles),
				steiner.IsValidPath(q, p, fs.Obstacles))
		}
	}
}

func TestIsValidPath_TouchingAllowed(t *testing.T) {
	obstacles := []orb.Polygon{geometry.Box(3, 3, 6, 6)}

	assert.True(t, steiner.IsValidPath(orb.Point{3, 3}, orb.Point{6, 3}, obstacles), "along an edge")
	assert.True(t, steiner.IsValidPath(orb.Point{0, 0}, orb.Point{3, 3}, obstacles), "to a corner")
	assert.False(t, steiner.IsValidPath(orb.Point{0, 4}, orb.Point{9, 4}, obstacles))
}

func TestBuildVisibilityGraph(t *testing.T) {
	terminals := []steiner.Terminal{steiner.PointTerminal{2, 2}, steiner.PointTerminal{8, 6}}
	obstacles := steiner.ObstacleSet{geometry.Box(4, 0, 6, 4)}
	helpers := geometry.Vertices(obstacles...)

	g := steiner.BuildVisibilityGraph(terminals, helpers, obstacles, steiner.GraphOptions{Logger: quietLogger()})

	require.Equal(t, 6, g.Len())
	assert.Equal(t, 2, g.Terminals)
	assert.Equal(t, steiner.NodeTerminal, g.Nodes[1].Kind)
	assert.Equal(t, steiner.NodeHelper, g.Nodes[2].Kind)
	assert.Equal(t, -1, g.Nodes[2].Terminal)

	corner := nodeAt(t, g, orb.Point{4, 4})
	assert.False(t, g.HasEdge(0, 1), "straight line crosses the obstacle")
	assert.True(t, g.HasEdge(0, corner))
	assert.True(t, g.HasEdge(corner, 1))
	assert.True(t, g.HasEdge(1, corner), "edges are undirected")

	for i, adj := range g.Edges {
		for _, e := range adj {
			assert.InDelta(t, geometry.Distance(g.Nodes[i].Point, g.Nodes[e.To].Point), e.Cost, 1e-12)
		}
	}
	assert.Len(t, g.Segments(), g.EdgeCount())
}

func TestBuildVisibilityGraph_CollapsesDuplicateHelpers(t *testing.T) {
	terminals := []steiner.Terminal{steiner.PointTerminal{1, 1}}
	helpers := []orb.Point{{1, 1}, {2, 2}, {2, 2}}

	g := steiner.BuildVisibilityGraph(terminals, helpers, nil, steiner.GraphOptions{Logger: quietLogger()})
	assert.Equal(t, 2, g.Len())
	assert.Equal(t, 1, g.EdgeCount())
}

func TestBuildVisibilityGraph_FootprintExclusion(t *testing.T) {
	terminals := []steiner.Terminal{
		steiner.SquareTerminal(orb.Point{1, 5}, 0.5),
		steiner.SquareTerminal(orb.Point{3, 5}, 0.5),
		steiner.SquareTerminal(orb.Point{5, 5}, 0.5),
	}
	helpers := []orb.Point{{3, 7}}

	plain := steiner.BuildVisibilityGraph(terminals, helpers, steiner.ObstacleSet{}, steiner.GraphOptions{Logger: quietLogger()})
	assert.True(t, plain.HasEdge(0, 2))

	avoiding := steiner.BuildVisibilityGraph(terminals, helpers, steiner.ObstacleSet{}, steiner.GraphOptions{
		AvoidFootprints: true,
		Logger:          quietLogger(),
	})
	assert.False(t, avoiding.HasEdge(0, 2), "passes through terminal 1")
	assert.True(t, avoiding.HasEdge(0, 1), "own footprints are exempt")
	assert.True(t, avoiding.HasEdge(1, 2))
	assert.True(t, avoiding.HasEdge(0, 3), "helper edges clear of other footprints")
}

func TestBuildVisibilityGraph_WorkersMatchSerial(t *testing.T) {
	fs := buildingsFreeSpace(t)
	terminals, err := steiner.GenerateTerminals(fs, steiner.TerminalSpec{
		Count: 12, Shape: steiner.ShapeSquare, Size: 0.5, MaxAttempts: 12000,
	}, rand.New(rand.NewSource(11)))
	require.NoError(t, err)

	helpers := fs.HelperPoints()
	serial := steiner.BuildVisibilityGraph(terminals, helpers, fs, steiner.GraphOptions{
		AvoidFootprints: true, Logger: quietLogger(),
	})
	parallel := steiner.BuildVisibilityGraph(terminals, helpers, fs, steiner.GraphOptions{
		AvoidFootprints: true, Workers: 4, Logger: quietLogger(),
	})

	assert.Equal(t, serial.Nodes, parallel.Nodes)
	assert.Equal(t, serial.Edges, parallel.Edges)
}

func nodeAt(t *testing.T, g *steiner.VisibilityGraph, p orb.Point) int {
	t.Helper()
	for _, n := range g.Nodes {
		if n.Point == p {
			return n.ID
		}
	}
	require.FailNow(t, "no node at point", "%v", p)
	return -1
}
