package steiner_test

import (
	"errors"
	"io"
	"log"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"steiner-planner/internal/geometry"
	"steiner-planner/internal/steiner"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func mustFreeSpace(t *testing.T, bounds orb.Polygon, obstacles ...orb.Polygon) *steiner.FreeSpace {
	t.Helper()
	fs, err := steiner.NewFreeSpace(bounds, obstacles, quietLogger())
	require.NoError(t, err)
	return fs
}

func TestNewFreeSpace_Area(t *testing.T) {
	fs := mustFreeSpace(t, geometry.Box(0, 0, 12, 10), geometry.Square(orb.Point{6, 5}, 3))
	assert.InDelta(t, 111.0, fs.Area(), 1e-9)
	assert.Len(t, fs.Combined, 1)
}

func TestNewFreeSpace_ClipsPartiallyOutside(t *testing.T) {
	fs := mustFreeSpace(t, geometry.Box(0, 0, 10, 10), geometry.Box(8, 8, 12, 12))
	require.Len(t, fs.Obstacles, 1)
	assert.InDelta(t, 4.0, geometry.Area(fs.Obstacles[0]), 1e-9)
	assert.InDelta(t, 96.0, fs.Area(), 1e-9)
}

func TestNewFreeSpace_Errors(t *testing.T) {
	bounds := geometry.Box(0, 0, 10, 10)

	cases := []struct {
		name      string
		bounds    orb.Polygon
		obstacles []orb.Polygon
		op        string
		index     int
		cause     error
	}{
		{
			name:      "obstacle outside",
			bounds:    bounds,
			obstacles: []orb.Polygon{geometry.Box(1, 1, 2, 2), geometry.Box(20, 20, 21, 21)},
			op:        "clip", index: 1, cause: geometry.ErrOutsideBounds,
		},
		{
			name:      "degenerate obstacle",
			bounds:    bounds,
			obstacles: []orb.Polygon{{{{1, 1}, {2, 2}, {3, 3}, {1, 1}}}},
			op:        "obstacle", index: 0, cause: geometry.ErrDegenerate,
		},
		{
			name:      "self-intersecting obstacle",
			bounds:    bounds,
			obstacles: []orb.Polygon{{{{0, 0}, {4, 4}, {4, 0}, {0, 2}, {0, 0}}}},
			op:        "obstacle", index: 0, cause: geometry.ErrSelfIntersecting,
		},
		{
			name:   "degenerate bounds",
			bounds: orb.Polygon{{{0, 0}, {1, 0}, {0, 0}}},
			op:     "bounds", index: -1, cause: geometry.ErrDegenerate,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := steiner.NewFreeSpace(tc.bounds, tc.obstacles, quietLogger())
			require.Error(t, err)
			assert.True(t, errors.Is(err, steiner.ErrGeometry))
			assert.True(t, errors.Is(err, tc.cause), "got %v", err)

			var ge *steiner.GeometryError
			require.True(t, errors.As(err, &ge))
			assert.Equal(t, tc.op, ge.Op)
			assert.Equal(t, tc.index, ge.Index)
		})
	}
}

func TestFreeSpace_Contains(t *testing.T) {
	fs := mustFreeSpace(t, geometry.Box(0, 0, 12, 10), geometry.Box(3, 3, 6, 6))

	assert.True(t, fs.ContainsPoint(orb.Point{1, 1}))
	assert.True(t, fs.ContainsPoint(orb.Point{3, 4}), "obstacle boundary is free")
	assert.True(t, fs.ContainsPoint(orb.Point{0, 5}), "bounding boundary is free")
	assert.False(t, fs.ContainsPoint(orb.Point{4, 4}))
	assert.False(t, fs.ContainsPoint(orb.Point{13, 4}))

	assert.True(t, fs.Contains(steiner.SquareTerminal(orb.Point{1, 1}, 0.5)))
	assert.True(t, fs.Contains(steiner.SquareTerminal(orb.Point{2.75, 5}, 0.5)), "touching an obstacle edge")
	assert.False(t, fs.Contains(steiner.SquareTerminal(orb.Point{3, 5}, 0.5)), "overlapping an obstacle")
	assert.False(t, fs.Contains(steiner.SquareTerminal(orb.Point{11.9, 5}, 0.5)), "leaving the bounds")
	assert.True(t, fs.Contains(steiner.PointTerminal{6, 6}), "point on a corner")
}

func TestFreeSpace_HelperPoints(t *testing.T) {
	t.Run("overlapping obstacles hide buried corners", func(t *testing.T) {
		fs := mustFreeSpace(t, geometry.Box(0, 0, 12, 10), geometry.Box(2, 2, 5, 5), geometry.Box(4, 4, 7, 7))
		helpers := fs.HelperPoints()
		assert.Len(t, helpers, 6)
		assert.NotContains(t, helpers, orb.Point{5, 5})
		assert.NotContains(t, helpers, orb.Point{4, 4})
	})

	t.Run("shared corners appear once", func(t *testing.T) {
		fs := mustFreeSpace(t, geometry.Box(0, 0, 12, 10), geometry.Box(2, 2, 4, 4), geometry.Box(4, 2, 6, 4))
		assert.Len(t, fs.HelperPoints(), 6)
	})
}

func TestFreeSpace_Blocks(t *testing.T) {
	fs := mustFreeSpace(t, geometry.Box(0, 0, 12, 4),
		geometry.Box(2, 1, 4, 3),
		geometry.Box(4, 1, 6, 3),
		geometry.Box(8, 0, 10, 4),
	)

	cases := []struct {
		name string
		p, q orb.Point
		want bool
	}{
		{"open space", orb.Point{0, 0.5}, orb.Point{7, 0.5}, false},
		{"along an obstacle edge", orb.Point{2, 3}, orb.Point{6, 3}, false},
		{"along a shared edge", orb.Point{4, 1}, orb.Point{4, 3}, true},
		{"through an interior", orb.Point{1, 2}, orb.Point{7, 2}, true},
		{"along the bounds", orb.Point{0, 0}, orb.Point{7, 0}, false},
		{"obstacle edge on the bounds", orb.Point{8, 0}, orb.Point{10, 0}, true},
		{"outside the bounds", orb.Point{1, 1}, orb.Point{1, 5}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, fs.Blocks(tc.p, tc.q))
			assert.Equal(t, tc.want, fs.Blocks(tc.q, tc.p), "must be symmetric")
		})
	}
}
