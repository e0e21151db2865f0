package geometry_test

import (
	"io"
	"log"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"steiner-planner/internal/geometry"
)

func totalArea(polys []orb.Polygon) float64 {
	sum := 0.0
	for _, p := range polys {
		sum += geometry.Area(p)
	}
	return sum
}

func TestUnion(t *testing.T) {
	merged := geometry.Union([]orb.Polygon{
		geometry.Box(0, 0, 2, 2),
		geometry.Box(1, 1, 3, 3),
	})
	require.Len(t, merged, 1)
	assert.InDelta(t, 7.0, totalArea(merged), 1e-9)

	disjoint := geometry.Union([]orb.Polygon{
		geometry.Box(0, 0, 1, 1),
		geometry.Box(5, 5, 6, 6),
	})
	assert.Len(t, disjoint, 2)
	assert.InDelta(t, 2.0, totalArea(disjoint), 1e-9)

	assert.Nil(t, geometry.Union(nil))
}

func TestIntersection(t *testing.T) {
	clipped := geometry.Intersection(geometry.Box(-1, -1, 1, 1), geometry.Box(0, 0, 10, 10))
	require.Len(t, clipped, 1)
	assert.InDelta(t, 1.0, totalArea(clipped), 1e-9)

	assert.Empty(t, geometry.Intersection(geometry.Box(20, 20, 21, 21), geometry.Box(0, 0, 10, 10)))
}

func TestDifference(t *testing.T) {
	free := geometry.Difference(geometry.Box(0, 0, 12, 10), []orb.Polygon{
		geometry.Square(orb.Point{6, 5}, 3),
	})
	require.Len(t, free, 1)
	assert.Len(t, free[0], 2, "obstacle becomes a hole")
	assert.InDelta(t, 111.0, totalArea(free), 1e-9)
	assert.Equal(t, orb.CCW, free[0][0].Orientation())
	assert.Equal(t, orb.CW, free[0][1].Orientation())

	split := geometry.Difference(geometry.Box(0, 0, 12, 4), []orb.Polygon{
		geometry.Box(4, 0, 8, 4),
	})
	assert.Len(t, split, 2, "a full-height obstacle splits the region")
	assert.InDelta(t, 32.0, totalArea(split), 1e-9)
}

func TestCombineObstacles(t *testing.T) {
	logger := log.New(io.Discard, "", 0)

	t.Run("contained obstacle is dropped", func(t *testing.T) {
		out := geometry.CombineObstacles([]orb.Polygon{
			geometry.Box(1, 1, 2, 2),
			geometry.Box(0, 0, 4, 4),
		}, logger)
		require.Len(t, out, 1)
		assert.InDelta(t, 16.0, geometry.Area(out[0]), 1e-9)
	})

	t.Run("overlapping obstacles are unioned", func(t *testing.T) {
		out := geometry.CombineObstacles([]orb.Polygon{
			geometry.Box(0, 0, 2, 2),
			geometry.Box(1, 1, 3, 3),
			geometry.Box(8, 8, 9, 9),
		}, logger)
		require.Len(t, out, 2)
		assert.InDelta(t, 7.0, geometry.Area(out[0]), 1e-9)
		assert.InDelta(t, 1.0, geometry.Area(out[1]), 1e-9)
	})

	t.Run("disjoint obstacles pass through", func(t *testing.T) {
		in := []orb.Polygon{geometry.Box(0, 0, 1, 1), geometry.Box(3, 3, 4, 4)}
		assert.Equal(t, in, geometry.CombineObstacles(in, logger))
	})
}

func TestSimplifyPolygon(t *testing.T) {
	noisy := orb.Polygon{{{0, 0}, {1, 0.001}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}}

	out := geometry.SimplifyPolygon(noisy, 0.01)
	require.Len(t, out, 1)
	assert.Equal(t, orb.Ring{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}, out[0])
	assert.Equal(t, orb.Ring{{0, 0}, {1, 0.001}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}, noisy[0], "input ring is left untouched")

	assert.Equal(t, noisy, geometry.SimplifyPolygon(noisy, 0), "zero epsilon disables")

	// A tolerance that would collapse the ring keeps the input.
	tri := orb.Polygon{{{0, 0}, {1, 0.001}, {2, 0}, {1, 0.002}, {0, 0}}}
	kept := geometry.SimplifyPolygon(tri, 10)
	assert.Equal(t, tri[0], kept[0])
}

func TestSpatialIndex(t *testing.T) {
	idx := geometry.NewPolygonIndex([]orb.Polygon{
		geometry.Box(0, 0, 1, 1),
		geometry.Box(5, 5, 6, 6),
		geometry.Box(0.5, 0.5, 2, 2),
	})
	assert.Equal(t, 3, idx.Len())

	assert.Equal(t, []int{0, 2}, idx.Query(orb.Bound{Min: orb.Point{0.8, 0.8}, Max: orb.Point{0.9, 0.9}}))
	assert.Equal(t, []int{1}, idx.Query(orb.Bound{Min: orb.Point{5.5, 5.5}, Max: orb.Point{5.5, 5.5}}))
	assert.Empty(t, idx.Query(orb.Bound{Min: orb.Point{3, 3}, Max: orb.Point{4, 4}}))

	// Boxes that only touch the query are still reported.
	assert.Equal(t, []int{1}, idx.Query(orb.Bound{Min: orb.Point{4, 4}, Max: orb.Point{5, 5}}))

	assert.Empty(t, geometry.NewSpatialIndex().Query(orb.Bound{Max: orb.Point{1, 1}}))
}
