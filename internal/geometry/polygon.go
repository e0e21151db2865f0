package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

var (
	// ErrDegenerate is returned for rings with fewer than 3 distinct vertices or no area.
	ErrDegenerate = errors.New("geometry: degenerate polygon")

	// ErrSelfIntersecting is returned when two non-adjacent ring edges meet.
	ErrSelfIntersecting = errors.New("geometry: self-intersecting ring")

	// ErrOutsideBounds is returned when a polygon has no overlap with the bounding region.
	ErrOutsideBounds = errors.New("geometry: polygon outside bounding region")
)

// NewPolygon builds a closed, validated polygon from a list of vertices.
// The closing vertex is optional. The ring is oriented counter-clockwise.
func NewPolygon(vertices []orb.Point) (orb.Polygon, error) {
	ring := NormalizeRing(orb.Ring(vertices))
	if err := ValidateRing(ring); err != nil {
		return nil, err
	}
	if ring.Orientation() == orb.CW {
		ring.Reverse()
	}
	return orb.Polygon{ring}, nil
}

// Square returns the axis-aligned square of the given edge length centered on c.
func Square(c orb.Point, size float64) orb.Polygon {
	h := size / 2
	return orb.Polygon{{
		{c[0] - h, c[1] - h},
		{c[0] + h, c[1] - h},
		{c[0] + h, c[1] + h},
		{c[0] - h, c[1] + h},
		{c[0] - h, c[1] - h},
	}}
}

// Box returns the rectangle with the given corners as a polygon.
func Box(minX, minY, maxX, maxY float64) orb.Polygon {
	return orb.Polygon{{
		{minX, minY},
		{maxX, minY},
		{maxX, maxY},
		{minX, maxY},
		{minX, minY},
	}}
}

// NormalizeRing drops repeated consecutive vertices and closes the ring.
func NormalizeRing(r orb.Ring) orb.Ring {
	out := make(orb.Ring, 0, len(r)+1)
	for _, p := range r {
		if len(out) > 0 && Distance(out[len(out)-1], p) <= Epsilon {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && Distance(out[0], out[len(out)-1]) <= Epsilon {
		out = out[:len(out)-1]
	}
	if len(out) > 0 {
		out = append(out, out[0])
	}
	return out
}

// ValidateRing checks a closed ring for degeneracy and self-intersection.
// Checking self-intersection is O(n^2) in the vertex count.
func ValidateRing(r orb.Ring) error {
	n := len(r) - 1 // distinct vertices of a closed ring
	if n < 3 {
		return fmt.Errorf("%w: %d distinct vertices", ErrDegenerate, max(n, 0))
	}
	if ringArea(r) <= Epsilon {
		return fmt.Errorf("%w: zero area", ErrDegenerate)
	}

	for i := 0; i < n; i++ {
		ei := Segment{A: r[i], B: r[i+1]}
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue // adjacent through the closing vertex
			}
			ej := Segment{A: r[j], B: r[j+1]}
			if SegmentsIntersect(ei, ej) {
				return fmt.Errorf("%w: edges %d and %d meet", ErrSelfIntersecting, i, j)
			}
		}
	}
	return nil
}

// ValidatePolygon validates every ring of poly.
func ValidatePolygon(poly orb.Polygon) error {
	if len(poly) == 0 {
		return fmt.Errorf("%w: no rings", ErrDegenerate)
	}
	for i, ring := range poly {
		if err := ValidateRing(NormalizeRing(ring)); err != nil {
			return fmt.Errorf("ring %d: %w", i, err)
		}
	}
	return nil
}

// Centroid returns the area centroid of poly.
func Centroid(poly orb.Polygon) orb.Point {
	c, _ := planar.CentroidArea(poly)
	return c
}

// Area returns the area of poly with holes subtracted.
func Area(poly orb.Polygon) float64 {
	return planar.Area(poly)
}

// Vertices returns the distinct vertices of every ring of the polygons in
// order of first appearance. Equality is by coordinate value.
func Vertices(polys ...orb.Polygon) []orb.Point {
	seen := make(map[orb.Point]bool)
	var out []orb.Point
	for _, poly := range polys {
		for _, ring := range poly {
			for _, v := range ring {
				if seen[v] {
					continue
				}
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}

// ringArea is the unsigned area enclosed by r.
func ringArea(r orb.Ring) float64 {
	return math.Abs(planar.Area(r))
}
