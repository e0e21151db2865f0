package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os"

	"github.com/paulmach/orb"

	"steiner-planner/internal/geometry"
	"steiner-planner/internal/steiner"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("config: invalid")

// Terminal kinds accepted by terminal_kind.
const (
	KindSquare = "square"
	KindPoint  = "point"
)

const (
	defaultShapeSize        = 0.5
	defaultAttemptsPerPoint = 1000
)

// Config is the configuration surface of a run.
type Config struct {
	BoundingRegion        [][2]float64     `json:"bounding_region"`
	Obstacles             [][][2]float64   `json:"obstacles,omitempty"`
	ObstaclesGeoJSON      []string         `json:"obstacles_geojson,omitempty"` // files or glob patterns
	Terminals             []TerminalConfig `json:"terminals,omitempty"`         // fixed, placed before generated ones
	TerminalKind          string           `json:"terminal_kind,omitempty"`
	TerminalCount         int              `json:"terminal_count"`
	TerminalShapeSize     float64          `json:"terminal_shape_size,omitempty"`
	MinTerminalSpacing    float64          `json:"min_terminal_spacing,omitempty"`
	MaxGenerationAttempts int              `json:"max_generation_attempts,omitempty"`
	RandomSeed            *int64           `json:"random_seed,omitempty"`
	SimplifyEpsilon       float64          `json:"simplify_epsilon,omitempty"`
	Workers               int              `json:"workers,omitempty"`
	AvoidFootprints       *bool            `json:"avoid_terminal_footprints,omitempty"`
}

// TerminalConfig is a fixed terminal, written either as a point [x, y] or as
// a polygon [[x, y], ...].
type TerminalConfig struct {
	Point   *[2]float64
	Polygon [][2]float64
}

func (t *TerminalConfig) UnmarshalJSON(data []byte) error {
	var p [2]float64
	if err := json.Unmarshal(data, &p); err == nil {
		t.Point, t.Polygon = &p, nil
		return nil
	}
	var poly [][2]float64
	if err := json.Unmarshal(data, &poly); err != nil {
		return fmt.Errorf("terminal must be [x, y] or [[x, y], ...]: %w", err)
	}
	t.Point, t.Polygon = nil, poly
	return nil
}

func (t TerminalConfig) MarshalJSON() ([]byte, error) {
	if t.Point != nil {
		return json.Marshal(t.Point)
	}
	return json.Marshal(t.Polygon)
}

// Default returns the built-in scene: a 12 by 10 map with three buildings,
// two predefined square terminals and ten generated ones.
func Default() *Config {
	cfg := &Config{
		BoundingRegion: [][2]float64{{0, 0}, {12, 0}, {12, 10}, {0, 10}},
		Obstacles: [][][2]float64{
			{{3, 3}, {6, 3}, {6, 6}, {3, 6}},
			{{8, 1}, {9, 1}, {9.5, 2}, {10, 4}, {8, 4}},
			{{1, 8}, {2, 7}, {3, 9}, {1.5, 9}},
		},
		Terminals: []TerminalConfig{
			{Polygon: [][2]float64{{1, 1}, {1.5, 1}, {1.5, 1.5}, {1, 1.5}}},
			{Polygon: [][2]float64{{7, 7}, {7.5, 7}, {7.5, 7.5}, {7, 7.5}}},
		},
		TerminalCount: 10,
	}
	cfg.applyDefaults()
	return cfg
}

// Load reads a JSON configuration file, fills in defaults and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes a JSON configuration, fills in defaults and validates it.
// Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.TerminalKind == "" {
		c.TerminalKind = KindSquare
	}
	if c.TerminalShapeSize == 0 {
		c.TerminalShapeSize = defaultShapeSize
	}
	if c.MaxGenerationAttempts == 0 {
		c.MaxGenerationAttempts = c.TerminalCount * defaultAttemptsPerPoint
	}
	if c.Workers == 0 {
		c.Workers = 1
	}
	if c.AvoidFootprints == nil {
		avoid := true
		c.AvoidFootprints = &avoid
	}
}

func fieldError(field, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidConfig, field, fmt.Sprintf(format, args...))
}

// Validate checks ranges and shapes of every option. Geometry validity
// (self-intersection, containment) is left to the pipeline.
func (c *Config) Validate() error {
	if len(c.BoundingRegion) < 3 {
		return fieldError("bounding_region", "needs at least 3 vertices, got %d", len(c.BoundingRegion))
	}
	for i, obs := range c.Obstacles {
		if len(obs) < 3 {
			return fieldError("obstacles", "obstacle %d needs at least 3 vertices, got %d", i, len(obs))
		}
	}
	for i, t := range c.Terminals {
		if t.Point == nil && len(t.Polygon) < 3 {
			return fieldError("terminals", "terminal %d needs a point or at least 3 vertices", i)
		}
	}
	switch c.TerminalKind {
	case KindSquare, KindPoint:
	default:
		return fieldError("terminal_kind", "must be %q or %q, got %q", KindSquare, KindPoint, c.TerminalKind)
	}
	if c.TerminalCount < 0 {
		return fieldError("terminal_count", "must not be negative, got %d", c.TerminalCount)
	}
	if c.TerminalCount == 0 && len(c.Terminals) == 0 {
		return fieldError("terminal_count", "must be positive when no terminals are given")
	}
	if c.TerminalShapeSize <= 0 {
		return fieldError("terminal_shape_size", "must be positive, got %g", c.TerminalShapeSize)
	}
	if c.MinTerminalSpacing < 0 {
		return fieldError("min_terminal_spacing", "must not be negative, got %g", c.MinTerminalSpacing)
	}
	if c.TerminalCount > 0 && c.MaxGenerationAttempts <= 0 {
		return fieldError("max_generation_attempts", "must be positive, got %d", c.MaxGenerationAttempts)
	}
	if c.SimplifyEpsilon < 0 {
		return fieldError("simplify_epsilon", "must not be negative, got %g", c.SimplifyEpsilon)
	}
	if c.Workers < 1 {
		return fieldError("workers", "must be at least 1, got %d", c.Workers)
	}
	return nil
}

func toPolygon(pts [][2]float64) orb.Polygon {
	ring := make(orb.Ring, len(pts))
	for i, p := range pts {
		ring[i] = orb.Point(p)
	}
	return orb.Polygon{geometry.NormalizeRing(ring)}
}

// Scene assembles the pipeline input: the bounding region, inline and
// GeoJSON obstacles (simplified when simplify_epsilon is set) and the fixed
// terminals.
func (c *Config) Scene(logger *log.Logger) (steiner.Scene, error) {
	scene := steiner.Scene{Bounds: toPolygon(c.BoundingRegion)}

	for _, obs := range c.Obstacles {
		scene.Obstacles = append(scene.Obstacles, toPolygon(obs))
	}
	if len(c.ObstaclesGeoJSON) > 0 {
		loaded, err := LoadObstacles(c.ObstaclesGeoJSON, logger)
		if err != nil {
			return steiner.Scene{}, err
		}
		scene.Obstacles = append(scene.Obstacles, loaded...)
	}
	if c.SimplifyEpsilon > 0 {
		scene.Obstacles = geometry.SimplifyPolygons(scene.Obstacles, c.SimplifyEpsilon)
	}

	for i, t := range c.Terminals {
		if t.Point != nil {
			scene.Terminals = append(scene.Terminals, steiner.PointTerminal(orb.Point(*t.Point)))
			continue
		}
		pt, err := steiner.NewPolygonTerminal(toPolygon(t.Polygon))
		if err != nil {
			return steiner.Scene{}, fieldError("terminals", "terminal %d: %v", i, err)
		}
		scene.Terminals = append(scene.Terminals, pt)
	}
	return scene, nil
}

// Shape maps terminal_kind to a terminal shape.
func (c *Config) Shape() steiner.Shape {
	if c.TerminalKind == KindPoint {
		return steiner.ShapePoint
	}
	return steiner.ShapeSquare
}

// Options converts the run options. Without random_seed the random source
// is left nil and the pipeline seeds one from the clock.
func (c *Config) Options(logger *log.Logger) steiner.Options {
	opts := steiner.Options{
		TerminalCount:   c.TerminalCount,
		Shape:           c.Shape(),
		ShapeSize:       c.TerminalShapeSize,
		MinSpacing:      c.MinTerminalSpacing,
		MaxAttempts:     c.MaxGenerationAttempts,
		AvoidFootprints: c.AvoidFootprints == nil || *c.AvoidFootprints,
		Workers:         c.Workers,
		Logger:          logger,
	}
	if c.RandomSeed != nil {
		opts.Rand = rand.New(rand.NewSource(*c.RandomSeed))
	}
	return opts
}
