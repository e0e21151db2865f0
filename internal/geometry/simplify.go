package geometry

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
)

// SimplifyPolygon reduces polygon complexity using Douglas-Peucker algorithm.
// A ring that would collapse below a valid triangle is kept as it was.
func SimplifyPolygon(polygon orb.Polygon, epsilon float64) orb.Polygon {
	if epsilon <= 0 {
		return polygon
	}

	dp := simplify.DouglasPeucker(epsilon)
	out := make(orb.Polygon, 0, len(polygon))
	for _, ring := range polygon {
		out = append(out, simplifyRing(dp, NormalizeRing(ring)))
	}
	return out
}

// SimplifyPolygons simplifies multiple polygons
func SimplifyPolygons(polygons []orb.Polygon, epsilon float64) []orb.Polygon {
	simplified := make([]orb.Polygon, len(polygons))
	for i, poly := range polygons {
		simplified[i] = SimplifyPolygon(poly, epsilon)
	}
	return simplified
}

// simplifyRing runs dp on a copy; the simplifier compacts its input in place.
func simplifyRing(dp *simplify.DouglasPeuckerSimplifier, ring orb.Ring) orb.Ring {
	if len(ring) <= 4 {
		return ring
	}

	simplified := NormalizeRing(dp.Ring(ring.Clone()))
	if ValidateRing(simplified) != nil {
		return ring
	}
	return simplified
}
