package steiner

import (
	"fmt"

	"github.com/paulmach/orb"

	"steiner-planner/internal/geometry"
)

// Terminal is a required connection point. Point terminals have no footprint;
// polygon terminals are represented by their centroid.
type Terminal interface {
	// Position is the representative point used as the graph node.
	Position() orb.Point
	// Footprint returns the terminal polygon, if it has one.
	Footprint() (orb.Polygon, bool)
}

// Shape selects the footprint of generated terminals.
type Shape int

const (
	ShapeSquare Shape = iota
	ShapePoint
)

func (s Shape) String() string {
	switch s {
	case ShapeSquare:
		return "square"
	case ShapePoint:
		return "point"
	}
	return fmt.Sprintf("Shape(%d)", int(s))
}

// PointTerminal is a bare terminal location.
type PointTerminal orb.Point

func (p PointTerminal) Position() orb.Point { return orb.Point(p) }

func (p PointTerminal) Footprint() (orb.Polygon, bool) { return nil, false }

// PolygonTerminal is a terminal with an area footprint.
type PolygonTerminal struct {
	poly     orb.Polygon
	centroid orb.Point
}

// NewPolygonTerminal validates poly and wraps it as a terminal.
func NewPolygonTerminal(poly orb.Polygon) (PolygonTerminal, error) {
	if err := geometry.ValidatePolygon(poly); err != nil {
		return PolygonTerminal{}, err
	}
	return PolygonTerminal{poly: poly, centroid: geometry.Centroid(poly)}, nil
}

// SquareTerminal returns a square footprint of the given edge length centered on c.
func SquareTerminal(c orb.Point, size float64) PolygonTerminal {
	return PolygonTerminal{poly: geometry.Square(c, size), centroid: c}
}

func (t PolygonTerminal) Position() orb.Point { return t.centroid }

func (t PolygonTerminal) Footprint() (orb.Polygon, bool) { return t.poly, true }

// NewTerminal builds a terminal of the given shape centered on c.
func NewTerminal(shape Shape, c orb.Point, size float64) Terminal {
	if shape == ShapePoint {
		return PointTerminal(c)
	}
	return SquareTerminal(c, size)
}

// Positions returns the representative points of terminals in order.
func Positions(terminals []Terminal) []orb.Point {
	out := make([]orb.Point, len(terminals))
	for i, t := range terminals {
		out[i] = t.Position()
	}
	return out
}
