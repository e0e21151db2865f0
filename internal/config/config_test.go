package config_test

import (
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"steiner-planner/internal/config"
	"steiner-planner/internal/steiner"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestDefault(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 10, cfg.TerminalCount)
	assert.Equal(t, 0.5, cfg.TerminalShapeSize)
	assert.Equal(t, 10000, cfg.MaxGenerationAttempts)
	assert.Equal(t, config.KindSquare, cfg.TerminalKind)
	assert.Equal(t, 1, cfg.Workers)
	require.NotNil(t, cfg.AvoidFootprints)
	assert.True(t, *cfg.AvoidFootprints)

	scene, err := cfg.Scene(quietLogger())
	require.NoError(t, err)
	assert.Len(t, scene.Obstacles, 3)
	require.Len(t, scene.Terminals, 2)
	center := scene.Terminals[0].Position()
	assert.InDelta(t, 1.25, center[0], 1e-9)
	assert.InDelta(t, 1.25, center[1], 1e-9)

	opts := cfg.Options(quietLogger())
	assert.Nil(t, opts.Rand, "no seed means clock seeding in the pipeline")
	assert.Equal(t, steiner.ShapeSquare, opts.Shape)
}

func TestParse(t *testing.T) {
	cfg, err := config.Parse([]byte(`{
		"bounding_region": [[0,0],[12,0],[12,10],[0,10]],
		"obstacles": [[[3,3],[6,3],[6,6],[3,6]]],
		"terminals": [[1,1], [[7,7],[7.5,7],[7.5,7.5],[7,7.5]]],
		"terminal_kind": "point",
		"terminal_count": 4,
		"min_terminal_spacing": 0.5,
		"random_seed": 42,
		"workers": 3,
		"avoid_terminal_footprints": false
	}`))
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.MaxGenerationAttempts)
	require.NotNil(t, cfg.RandomSeed)
	assert.Equal(t, int64(42), *cfg.RandomSeed)

	scene, err := cfg.Scene(quietLogger())
	require.NoError(t, err)
	require.Len(t, scene.Terminals, 2)
	_, hasFootprint := scene.Terminals[0].Footprint()
	assert.False(t, hasFootprint, "[x, y] is a point terminal")
	_, hasFootprint = scene.Terminals[1].Footprint()
	assert.True(t, hasFootprint, "a ring is a polygon terminal")

	opts := cfg.Options(quietLogger())
	assert.Equal(t, steiner.ShapePoint, opts.Shape)
	assert.Equal(t, 3, opts.Workers)
	assert.False(t, opts.AvoidFootprints)
	assert.Equal(t, 0.5, opts.MinSpacing)
	require.NotNil(t, opts.Rand)
}

func TestParse_Invalid(t *testing.T) {
	cases := []struct {
		name  string
		json  string
		field string
	}{
		{"unknown key", `{"bounding_region": [[0,0],[1,0],[1,1]], "terminal_count": 1, "colour": "red"}`, "colour"},
		{"short bounds", `{"bounding_region": [[0,0],[1,0]], "terminal_count": 1}`, "bounding_region"},
		{"short obstacle", `{"bounding_region": [[0,0],[1,0],[1,1]], "obstacles": [[[0,0],[1,1]]], "terminal_count": 1}`, "obstacles"},
		{"no terminals", `{"bounding_region": [[0,0],[1,0],[1,1]]}`, "terminal_count"},
		{"negative count", `{"bounding_region": [[0,0],[1,0],[1,1]], "terminal_count": -2}`, "terminal_count"},
		{"bad kind", `{"bounding_region": [[0,0],[1,0],[1,1]], "terminal_count": 1, "terminal_kind": "circle"}`, "terminal_kind"},
		{"negative size", `{"bounding_region": [[0,0],[1,0],[1,1]], "terminal_count": 1, "terminal_shape_size": -1}`, "terminal_shape_size"},
		{"negative spacing", `{"bounding_region": [[0,0],[1,0],[1,1]], "terminal_count": 1, "min_terminal_spacing": -1}`, "min_terminal_spacing"},
		{"negative attempts", `{"bounding_region": [[0,0],[1,0],[1,1]], "terminal_count": 1, "max_generation_attempts": -5}`, "max_generation_attempts"},
		{"negative workers", `{"bounding_region": [[0,0],[1,0],[1,1]], "terminal_count": 1, "workers": -1}`, "workers"},
		{"bad terminal", `{"bounding_region": [[0,0],[1,0],[1,1]], "terminals": ["x"]}`, "terminal"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := config.Parse([]byte(tc.json))
			require.Error(t, err)
			assert.True(t, errors.Is(err, config.ErrInvalidConfig), "got %v", err)
			assert.Contains(t, err.Error(), tc.field)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"bounding_region": [[0,0],[10,0],[10,10],[0,10]],
		"terminal_count": 3,
		"random_seed": 1
	}`), 0644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.TerminalCount)

	_, err = config.Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestScene_RunsThroughPipeline(t *testing.T) {
	seed := int64(9)
	cfg := config.Default()
	cfg.RandomSeed = &seed

	scene, err := cfg.Scene(quietLogger())
	require.NoError(t, err)
	res, err := steiner.Build(scene, cfg.Options(quietLogger()))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(res.Terminals), 2)
	assert.NotEmpty(t, res.Network.Segments)
}

func TestScene_InvalidPolygonTerminal(t *testing.T) {
	cfg := config.Default()
	cfg.Terminals = []config.TerminalConfig{{Polygon: [][2]float64{{0, 0}, {1, 1}, {2, 2}}}}

	_, err := cfg.Scene(quietLogger())
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}
